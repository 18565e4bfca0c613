package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aussiebroadwan/marketauth/internal/auth/csrf"
	httpapi "github.com/aussiebroadwan/marketauth/internal/auth/http"
	"github.com/aussiebroadwan/marketauth/internal/auth/service"
	"github.com/aussiebroadwan/marketauth/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/marketauth/internal/auth/throttle"
	"github.com/aussiebroadwan/marketauth/pkg/cryptox"
	"github.com/aussiebroadwan/marketauth/pkg/httpx"
	"github.com/aussiebroadwan/marketauth/pkg/jwtx"
	"github.com/aussiebroadwan/marketauth/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags.
var BuildVersion = "v0.1.0"

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db        *sqlite.Store
	codec     *jwtx.Codec
	protector *csrf.Protector
	redis     redis.UniversalClient

	strict         throttle.Limiter
	lenient        throttle.Limiter
	throttleStatus func() string
	sweepers       []throttle.Sweeper

	// Services
	sessionService      *service.SessionService
	userService         *service.UserService
	rolesService        *service.RolesService
	permissionsService  *service.PermissionsService
	resolver            *service.PermissionResolver
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// NewLogger builds the process logger from the logging fields of cfg.
func NewLogger(cfg Config) *slog.Logger {
	return slogx.New(slogx.Config{
		Service: "marketauth",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
}

// OpenStore opens the sqlite database named by cfg and applies pending
// migrations. It also points password hashing at the configured pepper.
func OpenStore(cfg Config, logger *slog.Logger) (*sqlite.Store, error) {
	cryptox.SetPepperPath(cfg.PepperFile)

	if dir := filepath.Dir(cfg.DatabaseFile); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sqlite.NewStore(cfg.DatabaseFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply database migrations: %w", err)
	}

	logger.Info("database migrations applied successfully", "file", cfg.DatabaseFile)
	return db, nil
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg:    cfg,
		logger: NewLogger(cfg),
	}

	db, err := OpenStore(cfg, app.logger)
	if err != nil {
		return nil, err
	}
	app.db = db

	if err := app.initSecrets(); err != nil {
		_ = db.Close()
		return nil, err
	}

	app.initThrottle()
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		app.housekeepingService.Stop()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initSecrets builds the token codec and the CSRF protector. Without a
// configured secret a random one is generated, which invalidates every
// session on restart.
func (app *Application) initSecrets() error {
	secret := []byte(app.cfg.JWTSecret)
	if len(secret) == 0 {
		generated, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return fmt.Errorf("failed to generate JWT secret: %w", err)
		}
		secret = []byte(generated)
		app.logger.Warn("JWT_SECRET not set, using a random secret for this process")
	}

	codec, err := jwtx.NewCodec(secret, app.cfg.JWTIssuer)
	if err != nil {
		return fmt.Errorf("failed to initialize token codec: %w", err)
	}
	app.codec = codec

	csrfKey := cryptox.DeriveKey(secret, "csrf")
	if app.cfg.CSRFSecret != "" {
		csrfKey = []byte(app.cfg.CSRFSecret)
	}
	app.protector = csrf.New(csrfKey, app.cfg.IsProd())

	return nil
}

// initThrottle picks the limiter backend. With REDIS_ADDR set both tiers
// count in redis behind a breaker that falls back to in-process limits.
func (app *Application) initThrottle() {
	strictLocal := throttle.NewMemoryLimiter(app.cfg.StrictLimit, nil)
	lenientLocal := throttle.NewMemoryLimiter(app.cfg.LenientLimit, nil)
	app.sweepers = []throttle.Sweeper{strictLocal, lenientLocal}

	if app.cfg.RedisAddr == "" {
		app.strict, app.lenient = strictLocal, lenientLocal
		app.throttleStatus = func() string { return "memory" }
		return
	}

	app.redis = redis.NewClient(&redis.Options{
		Addr:     app.cfg.RedisAddr,
		Password: app.cfg.RedisPassword,
		DB:       app.cfg.RedisDB,
	})

	strict := throttle.NewBreakerLimiter("throttle-strict",
		throttle.NewRedisLimiter(app.redis, "marketauth:rl", app.cfg.StrictLimit), strictLocal, app.logger)
	lenient := throttle.NewBreakerLimiter("throttle-lenient",
		throttle.NewRedisLimiter(app.redis, "marketauth:rl", app.cfg.LenientLimit), lenientLocal, app.logger)

	app.strict, app.lenient = strict, lenient
	app.throttleStatus = func() string { return "redis breaker " + strict.State().String() }

	app.logger.Info("redis throttle backend enabled", "addr", app.cfg.RedisAddr)
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.sessionService = &service.SessionService{
		Store:                app.db,
		Codec:                app.codec,
		AccessTTL:            app.cfg.AccessTTL,
		RefreshTTL:           app.cfg.RefreshTTL,
		RequireActiveAccount: app.cfg.RequireActiveAccount,
	}
	app.userService = &service.UserService{
		Store:                app.db,
		RequireActiveAccount: app.cfg.RequireActiveAccount,
	}
	app.rolesService = &service.RolesService{Store: app.db}
	app.permissionsService = &service.PermissionsService{Store: app.db}
	app.resolver = &service.PermissionResolver{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.sweepers...,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	cookies := httpapi.CookieConfig{
		AccessName:    app.cfg.AccessCookieName,
		RefreshName:   app.cfg.RefreshCookieName,
		AccessMaxAge:  app.cfg.AccessCookieMaxAge,
		RefreshMaxAge: app.cfg.RefreshCookieMaxAge,
		RefreshPath:   app.cfg.RefreshCookiePath,
		Secure:        app.cfg.IsProd(),
	}

	router := httpapi.NewRouter(
		app.codec,
		app.protector,
		cookies,
		BuildVersion,
		app.db,
		app.logger,
	)

	// Wire services to router
	router.SessionService = app.sessionService
	router.UserService = app.userService
	router.RolesService = app.rolesService
	router.PermissionsService = app.permissionsService
	router.Resolver = app.resolver
	router.Strict = app.strict
	router.Lenient = app.lenient
	router.ThrottleStatus = app.throttleStatus
	if app.cfg.TrustProxyHeaders {
		router.ClientKey = httpx.IPKeyExtractor
	}
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
