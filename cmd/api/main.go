package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/joymart/joymart-backend/api/routes"
	authsvc "github.com/joymart/joymart-backend/internal/auth"
	bookingsvc "github.com/joymart/joymart-backend/internal/bookings"
	categorysvc "github.com/joymart/joymart-backend/internal/categories"
	commentsvc "github.com/joymart/joymart-backend/internal/comments"
	paymentsvc "github.com/joymart/joymart-backend/internal/payments"
	productsvc "github.com/joymart/joymart-backend/internal/products"
	profilesvc "github.com/joymart/joymart-backend/internal/profiles"
	reportsvc "github.com/joymart/joymart-backend/internal/reports"
	reviewsvc "github.com/joymart/joymart-backend/internal/reviews"
	subscribersvc "github.com/joymart/joymart-backend/internal/subscribers"
	usersvc "github.com/joymart/joymart-backend/internal/users"
	"github.com/joymart/joymart-backend/pkg/config"
	"github.com/joymart/joymart-backend/pkg/db"
	"github.com/joymart/joymart-backend/pkg/logger"
	"github.com/joymart/joymart-backend/pkg/metrics"
	"github.com/joymart/joymart-backend/pkg/migrate"
	"github.com/joymart/joymart-backend/pkg/redis"
	"github.com/joymart/joymart-backend/pkg/sslcommerz"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	closeResources := func() {
		var errs error
		errs = multierr.Append(errs, redisClient.Close())
		errs = multierr.Append(errs, dbClient.Close())
		if errs != nil {
			logg.Error(context.Background(), "error closing resources", errs)
		}
	}
	defer closeResources()

	gateway, err := sslcommerz.NewClient(cfg.SSLCommerz, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build sslcommerz client", err)
		os.Exit(1)
	}

	svcs, err := buildServices(cfg, dbClient, gateway)
	if err != nil {
		logg.Error(context.Background(), "failed to build services", err)
		os.Exit(1)
	}

	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, dbClient, redisClient, httpMetrics, svcs),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			closeResources()
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

func buildServices(cfg *config.Config, dbClient *db.Client, gateway *sslcommerz.Client) (routes.Services, error) {
	conn := dbClient.DB()

	userRepo := usersvc.NewRepository(conn)
	profileRepo := profilesvc.NewRepository(conn)
	categoryRepo := categorysvc.NewRepository(conn)
	productRepo := productsvc.NewRepository(conn)
	bookingRepo := bookingsvc.NewRepository(conn)
	paymentRepo := paymentsvc.NewRepository(conn)
	reviewRepo := reviewsvc.NewRepository(conn)
	commentRepo := commentsvc.NewRepository(conn)
	reportRepo := reportsvc.NewRepository(conn)
	subscriberRepo := subscribersvc.NewRepository(conn)

	authService, err := authsvc.NewService(userRepo, cfg.JWT, cfg.Password)
	if err != nil {
		return routes.Services{}, err
	}
	userService, err := usersvc.NewService(userRepo)
	if err != nil {
		return routes.Services{}, err
	}
	profileService, err := profilesvc.NewService(profileRepo)
	if err != nil {
		return routes.Services{}, err
	}
	categoryService, err := categorysvc.NewService(categoryRepo)
	if err != nil {
		return routes.Services{}, err
	}
	productService, err := productsvc.NewService(productRepo, categoryRepo)
	if err != nil {
		return routes.Services{}, err
	}
	bookingService, err := bookingsvc.NewService(bookingRepo, productRepo, dbClient)
	if err != nil {
		return routes.Services{}, err
	}
	paymentService, err := paymentsvc.NewService(paymentRepo, bookingRepo, productRepo, dbClient, gateway, cfg.SSLCommerz)
	if err != nil {
		return routes.Services{}, err
	}
	reviewService, err := reviewsvc.NewService(reviewRepo, productRepo, dbClient)
	if err != nil {
		return routes.Services{}, err
	}
	commentService, err := commentsvc.NewService(commentRepo, productRepo, userRepo)
	if err != nil {
		return routes.Services{}, err
	}
	reportService, err := reportsvc.NewService(reportRepo, productRepo)
	if err != nil {
		return routes.Services{}, err
	}
	subscriberService, err := subscribersvc.NewService(subscriberRepo)
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Auth:        authService,
		Users:       userService,
		Profiles:    profileService,
		Products:    productService,
		Categories:  categoryService,
		Bookings:    bookingService,
		Payments:    paymentService,
		Reviews:     reviewService,
		Comments:    commentService,
		Reports:     reportService,
		Subscribers: subscriberService,
	}, nil
}
