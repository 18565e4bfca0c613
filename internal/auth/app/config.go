package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/marketauth/internal/auth/throttle"
)

type Config struct {
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 5m)

	DatabaseFile string // Path to SQLite database file (default: data/auth.db)
	PepperFile   string // Path to file containing pepper for password hashing (default: data/pepper)

	JWTSecret  string        // HS256 shared secret. Required in prod, random per process otherwise
	JWTIssuer  string        // iss claim (default: marketauth)
	AccessTTL  time.Duration // Access token lifetime (default: 15m)
	RefreshTTL time.Duration // Refresh token lifetime (default: 168h)

	AccessCookieName     string        // default: accessToken
	RefreshCookieName    string        // default: refreshToken
	AccessCookieMaxAge   time.Duration // default: AccessTTL
	RefreshCookieMaxAge  time.Duration // default: RefreshTTL
	RefreshCookiePath    string        // default: /api/auth
	CSRFSecret           string        // Optional: derived from JWTSecret when empty
	RequireActiveAccount bool          // Reject logins from inactive accounts (default: true)

	StrictLimit  throttle.Limit // default: 5 per 60s
	LenientLimit throttle.Limit // default: 100 per 60s

	// TrustProxyHeaders keys rate limits on the hop a reverse proxy appended
	// to X-Forwarded-For. Enable only when every request passes through one.
	TrustProxyHeaders bool // default: false

	RedisAddr     string // Optional: shared throttle backend
	RedisPassword string
	RedisDB       int
}

func LoadConfig() Config {
	cfg := Config{
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 5*time.Minute),

		DatabaseFile: getEnvOrDefault("AUTH_DATABASE_FILE", "data/auth.db"),
		PepperFile:   getEnvOrDefault("AUTH_PEPPER_FILE", "data/pepper"),

		JWTSecret:  os.Getenv("JWT_SECRET"),
		JWTIssuer:  getEnvOrDefault("JWT_ISSUER", "marketauth"),
		AccessTTL:  getEnvDurationOrDefault("JWT_ACCESS_TOKEN_EXPIRY", 15*time.Minute),
		RefreshTTL: getEnvDurationOrDefault("JWT_REFRESH_TOKEN_EXPIRY", 7*24*time.Hour),

		AccessCookieName:     getEnvOrDefault("JWT_ACCESS_COOKIE_NAME", "accessToken"),
		RefreshCookieName:    getEnvOrDefault("JWT_REFRESH_COOKIE_NAME", "refreshToken"),
		RefreshCookiePath:    getEnvOrDefault("JWT_REFRESH_COOKIE_PATH", "/api/auth"),
		CSRFSecret:           os.Getenv("CSRF_SECRET"),
		RequireActiveAccount: getEnvBoolOrDefault("REQUIRE_ACTIVE_ACCOUNT", true),

		StrictLimit: throttle.Limit{
			Requests: getEnvIntOrDefault("RATELIMIT_STRICT_REQUESTS", throttle.DefaultStrict.Requests),
			Window:   time.Duration(getEnvIntOrDefault("RATELIMIT_STRICT_WINDOW_SEC", 60)) * time.Second,
		},
		LenientLimit: throttle.Limit{
			Requests: getEnvIntOrDefault("RATELIMIT_LENIENT_REQUESTS", throttle.DefaultLenient.Requests),
			Window:   time.Duration(getEnvIntOrDefault("RATELIMIT_LENIENT_WINDOW_SEC", 60)) * time.Second,
		},

		TrustProxyHeaders: getEnvBoolOrDefault("TRUST_PROXY_HEADERS", false),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvIntOrDefault("REDIS_DB", 0),
	}

	// Cookie lifetimes follow the token lifetimes unless set explicitly
	cfg.AccessCookieMaxAge = getEnvDurationOrDefault("JWT_ACCESS_COOKIE_MAX_AGE", cfg.AccessTTL)
	cfg.RefreshCookieMaxAge = getEnvDurationOrDefault("JWT_REFRESH_COOKIE_MAX_AGE", cfg.RefreshTTL)

	return cfg
}

// IsProd reports whether the service runs with production settings.
func (c Config) IsProd() bool { return strings.EqualFold(c.Env, "prod") }

// Validate rejects configurations the service cannot run with.
func (c Config) Validate() error {
	var errs []error

	if c.IsProd() && c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required when ENV=prod"))
	}
	if c.JWTSecret != "" && len(c.JWTSecret) < 32 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 bytes"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d is out of range", c.Port))
	}
	if c.AccessTTL <= 0 {
		errs = append(errs, errors.New("JWT_ACCESS_TOKEN_EXPIRY must be positive"))
	}
	if c.RefreshTTL <= 0 {
		errs = append(errs, errors.New("JWT_REFRESH_TOKEN_EXPIRY must be positive"))
	}
	if c.AccessCookieMaxAge <= 0 || c.RefreshCookieMaxAge <= 0 {
		errs = append(errs, errors.New("cookie max-age must be positive"))
	}
	if !strings.HasPrefix(c.RefreshCookiePath, "/") {
		errs = append(errs, errors.New("JWT_REFRESH_COOKIE_PATH must start with /"))
	}
	if c.StrictLimit.Requests <= 0 || c.StrictLimit.Window <= 0 {
		errs = append(errs, errors.New("strict rate limit must be positive"))
	}
	if c.LenientLimit.Requests <= 0 || c.LenientLimit.Window <= 0 {
		errs = append(errs, errors.New("lenient rate limit must be positive"))
	}
	if c.HousekeepingInterval <= 0 {
		errs = append(errs, errors.New("HOUSEKEEPING_INTERVAL must be positive"))
	}

	return errors.Join(errs...)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are seconds, matching the cookie max-age convention
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
