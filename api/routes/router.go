package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/joymart/joymart-backend/api/controllers"
	"github.com/joymart/joymart-backend/api/middleware"
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
	"github.com/joymart/joymart-backend/pkg/enums"
	"github.com/joymart/joymart-backend/pkg/logger"
	"github.com/joymart/joymart-backend/pkg/metrics"
	"github.com/joymart/joymart-backend/pkg/redis"
)

// Services bundles every domain service the router exposes.
type Services struct {
	Auth        authsvc.Service
	Users       usersvc.Service
	Profiles    profilesvc.Service
	Products    productsvc.Service
	Categories  categorysvc.Service
	Bookings    bookingsvc.Service
	Payments    paymentsvc.Service
	Reviews     reviewsvc.Service
	Comments    commentsvc.Service
	Reports     reportsvc.Service
	Subscribers subscribersvc.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	httpMetrics *metrics.HTTPMetrics,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)
	if httpMetrics != nil {
		r.Use(httpMetrics.Middleware)
	}

	authed := middleware.Auth(cfg.JWT, logg)
	adminOnly := middleware.RequireRole(logg, string(enums.UserRoleAdmin), string(enums.UserRoleSuperAdmin))
	sellerOrAdmin := middleware.RequireRole(logg,
		string(enums.UserRoleSeller), string(enums.UserRoleAdmin), string(enums.UserRoleSuperAdmin))
	superAdminOnly := middleware.RequireRole(logg, string(enums.UserRoleSuperAdmin))

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, redisClient, logg))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg), middleware.Idempotency(redisClient, logg)).
				Post("/register", controllers.Register(svcs.Auth, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).
				Post("/login", controllers.Login(svcs.Auth, logg))
			r.Post("/refresh", controllers.Refresh(svcs.Auth, logg))
			r.With(authed).Post("/change-password", controllers.ChangePassword(svcs.Auth, logg))
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(authed)
			r.Get("/me", controllers.GetMe(svcs.Users, logg))
			r.With(adminOnly).Patch("/{id}/status", controllers.ChangeUserStatus(svcs.Users, logg))
		})

		r.Route("/profiles", func(r chi.Router) {
			r.Use(authed)
			r.Get("/me", controllers.GetMyProfile(svcs.Profiles, logg))
			r.Patch("/me", controllers.UpdateMyProfile(svcs.Profiles, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(svcs.Products, logg))
			r.With(authed, sellerOrAdmin).Get("/seller", controllers.ListSellerProducts(svcs.Products, logg))
			r.With(authed, adminOnly).Get("/admin", controllers.ListAdminProducts(svcs.Products, logg))
			r.Get("/{id}", controllers.GetProduct(svcs.Products, logg))
			r.With(authed, sellerOrAdmin).Post("/", controllers.CreateProduct(svcs.Products, logg))
			r.With(authed, sellerOrAdmin).Patch("/{id}", controllers.UpdateProduct(svcs.Products, logg))
			r.With(authed, sellerOrAdmin).Delete("/{id}", controllers.DeleteProduct(svcs.Products, logg))
			r.With(authed, superAdminOnly).Delete("/{id}/permanent", controllers.HardDeleteProduct(svcs.Products, logg))
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.ListCategories(svcs.Categories, logg))
			r.Get("/{id}", controllers.GetCategory(svcs.Categories, logg))
			r.With(authed, adminOnly).Post("/", controllers.CreateCategory(svcs.Categories, logg))
			r.With(authed, adminOnly).Patch("/{id}", controllers.UpdateCategory(svcs.Categories, logg))
			r.With(authed, adminOnly).Delete("/{id}", controllers.DeleteCategory(svcs.Categories, logg))
		})

		r.Route("/booking", func(r chi.Router) {
			r.Use(authed)
			r.Post("/", controllers.CreateBooking(svcs.Bookings, logg))
			r.Get("/", controllers.ListMyBookings(svcs.Bookings, logg))
			r.With(adminOnly).Get("/admin", controllers.ListAllBookings(svcs.Bookings, logg))
			r.Get("/{id}", controllers.GetBooking(svcs.Bookings, logg))
			r.Patch("/{id}/status", controllers.UpdateBookingStatus(svcs.Bookings, logg))
			r.Delete("/delete/{bookingId}", controllers.DeleteBooking(svcs.Bookings, logg))
		})

		r.Route("/payment", func(r chi.Router) {
			// Gateway callbacks land here without credentials.
			r.Post("/ipn", controllers.PaymentIPN(svcs.Payments, logg))
			r.Get("/success/{transactionId}", controllers.PaymentRedirect("success", logg))
			r.Get("/fail/{transactionId}", controllers.PaymentRedirect("fail", logg))
			r.Get("/cancel/{transactionId}", controllers.PaymentRedirect("cancel", logg))

			r.Group(func(r chi.Router) {
				r.Use(authed)
				r.With(middleware.Idempotency(redisClient, logg)).
					Post("/initiate", controllers.InitiatePayment(svcs.Payments, logg))
				r.Post("/validate/{transactionId}", controllers.ValidatePayment(svcs.Payments, logg))
				r.Get("/track/{transactionId}", controllers.TrackPayment(svcs.Payments, logg))
				r.Get("/history", controllers.PaymentHistory(svcs.Payments, logg))
			})
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/product/{productId}", controllers.ListProductReviews(svcs.Reviews, logg))
			r.Get("/{id}", controllers.GetReview(svcs.Reviews, logg))
			r.Group(func(r chi.Router) {
				r.Use(authed)
				r.Post("/", controllers.CreateReview(svcs.Reviews, logg))
				r.Patch("/{id}", controllers.UpdateReview(svcs.Reviews, logg))
				r.Delete("/{id}", controllers.DeleteReview(svcs.Reviews, logg))
			})
		})

		r.Route("/comments", func(r chi.Router) {
			r.Get("/product/{productId}", controllers.ListProductComments(svcs.Comments, logg))
			r.Group(func(r chi.Router) {
				r.Use(authed)
				r.Post("/", controllers.CreateComment(svcs.Comments, logg))
				r.Patch("/{id}", controllers.UpdateComment(svcs.Comments, logg))
				r.Delete("/{id}", controllers.DeleteComment(svcs.Comments, logg))
			})
		})

		r.Route("/reports", func(r chi.Router) {
			r.Use(authed)
			r.Post("/", controllers.CreateReport(svcs.Reports, logg))
			r.With(adminOnly).Get("/", controllers.ListReports(svcs.Reports, logg))
			r.With(adminOnly).Get("/{id}", controllers.GetReport(svcs.Reports, logg))
			r.With(adminOnly).Patch("/{id}/reply", controllers.ReplyToReport(svcs.Reports, logg))
		})

		r.Route("/subscribe", func(r chi.Router) {
			r.With(middleware.Idempotency(redisClient, logg)).Post("/", controllers.Subscribe(svcs.Subscribers, logg))
			r.Post("/unsubscribe", controllers.Unsubscribe(svcs.Subscribers, logg))
			r.With(authed, adminOnly).Get("/", controllers.ListSubscribers(svcs.Subscribers, logg))
		})
	})

	return r
}
