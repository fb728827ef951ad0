package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	SSLCommerz    SSLCommerzConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"JOYMART_APP_ENV" required:"true"`
	Port         string `envconfig:"JOYMART_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"JOYMART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"JOYMART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"JOYMART_DB_DSN"`
	Driver string `envconfig:"JOYMART_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"JOYMART_DB_HOST"`
	LegacyPort     int    `envconfig:"JOYMART_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"JOYMART_DB_USER"`
	LegacyPassword string `envconfig:"JOYMART_DB_PASSWORD"`
	LegacyName     string `envconfig:"JOYMART_DB_NAME"`
	LegacySSLMode  string `envconfig:"JOYMART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"JOYMART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"JOYMART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"JOYMART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"JOYMART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"JOYMART_REDIS_URL" required:"true"`
	Address      string        `envconfig:"JOYMART_REDIS_ADDR"`
	Password     string        `envconfig:"JOYMART_REDIS_PASSWORD"`
	DB           int           `envconfig:"JOYMART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"JOYMART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"JOYMART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"JOYMART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"JOYMART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"JOYMART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"JOYMART_JWT_SECRET" required:"true"`
	RefreshSecret     string `envconfig:"JOYMART_JWT_REFRESH_SECRET" required:"true"`
	Issuer            string `envconfig:"JOYMART_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"JOYMART_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTTLMinutes int    `envconfig:"JOYMART_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"JOYMART_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"JOYMART_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"JOYMART_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"JOYMART_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"JOYMART_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"JOYMART_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"JOYMART_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"JOYMART_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"JOYMART_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"JOYMART_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"JOYMART_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"JOYMART_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"JOYMART_AUTO_MIGRATE" default:"false"`
}

// SSLCommerzConfig carries the payment gateway credentials and redirect bases.
type SSLCommerzConfig struct {
	StoreID         string        `envconfig:"JOYMART_SSLCOMMERZ_STORE_ID"`
	StorePassword   string        `envconfig:"JOYMART_SSLCOMMERZ_STORE_PASSWORD"`
	Live            bool          `envconfig:"JOYMART_SSLCOMMERZ_LIVE" default:"false"`
	RedirectBaseURL string        `envconfig:"JOYMART_SSLCOMMERZ_REDIRECT_BASE_URL" default:"https://joy-mart.vercel.app"`
	HTTPTimeout     time.Duration `envconfig:"JOYMART_SSLCOMMERZ_HTTP_TIMEOUT" default:"15s"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
