package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	httpapi "github.com/tradelane/tradegate/internal/gate/http"
	"github.com/tradelane/tradegate/internal/gate/service"
	"github.com/tradelane/tradegate/internal/gate/store"
	"github.com/tradelane/tradegate/internal/gate/store/drivers/sqlite"
	"github.com/tradelane/tradegate/pkg/cryptox"
	"github.com/tradelane/tradegate/pkg/idpsdk"
	"github.com/tradelane/tradegate/pkg/ratelimit"
	"github.com/tradelane/tradegate/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the gate service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db         store.Store
	redis      *redis.Client // nil when rate limiting is in-memory
	limitStore ratelimit.Store
	memStore   *ratelimit.MemoryStore // set only for the in-memory backend

	sessionService   *service.SessionService
	identityService  *service.IdentityService
	twoFactorService *service.TwoFactorService
	housekeeping     *service.Housekeeping

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "tradegate",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	app.initLimitStore()

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeeping.Start(context.Background())

	app.logger.Info("gate service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
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

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down gate service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeeping.Stop()

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("gate service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations.
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initLimitStore picks the rate-limit backend: Redis when configured, so
// multiple gate replicas share windows, otherwise per-process memory.
func (app *Application) initLimitStore() {
	if app.cfg.RedisAddr != "" {
		app.redis = redis.NewClient(&redis.Options{Addr: app.cfg.RedisAddr})
		app.limitStore = ratelimit.NewRedisStore(app.redis, "tradegate")
		app.logger.Info("rate limiting backed by redis", "addr", app.cfg.RedisAddr)
		return
	}

	app.memStore = ratelimit.NewMemoryStore()
	app.limitStore = app.memStore
}

// initServices initializes all business logic services.
func (app *Application) initServices() error {
	sessions, err := service.NewSessionService(app.cfg.SessionSecret, app.cfg.Issuer, app.cfg.SessionTTL)
	if err != nil {
		return fmt.Errorf("failed to initialize session service: %w", err)
	}
	app.sessionService = sessions

	box, err := cryptox.NewSecretBox(app.cfg.MasterKey)
	if err != nil {
		return fmt.Errorf("failed to initialize secret box: %w", err)
	}

	providerOpts := []idpsdk.Option{}
	if app.cfg.IdentityAPIKey != "" {
		providerOpts = append(providerOpts, idpsdk.WithAPIKey(app.cfg.IdentityAPIKey))
	}
	provider := idpsdk.New(app.cfg.IdentityProviderURL, providerOpts...)

	app.identityService = service.NewIdentityService(
		provider,
		app.db.Subjects(),
		service.RetryConfig{
			MaxRetries:   app.cfg.RetryMaxAttempts,
			InitialDelay: app.cfg.RetryInitialDelay,
			MaxDelay:     app.cfg.RetryMaxDelay,
		},
	)

	app.twoFactorService = service.NewTwoFactorService(app.db, box, "TradeGate")

	app.housekeeping = service.NewHousekeeping(
		app.db, app.memStore, app.cfg.HousekeepingInterval, app.logger)

	return nil
}

// initHTTP wires the router and the HTTP server.
func (app *Application) initHTTP() {
	app.router = httpapi.NewRouter(
		app.sessionService,
		app.identityService,
		app.twoFactorService,
		app.db,
		app.limitStore,
		BuildVersion,
		app.logger,
	)
	app.router.ApplyRoutes()

	app.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", app.cfg.Port),
		Handler: app.router,
	}
}
