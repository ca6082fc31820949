package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adwaithkm1/web-code-generator/internal/codegen/federation"
	"github.com/adwaithkm1/web-code-generator/internal/codegen/generator"
	httpapi "github.com/adwaithkm1/web-code-generator/internal/codegen/http"
	"github.com/adwaithkm1/web-code-generator/internal/codegen/service"
	"github.com/adwaithkm1/web-code-generator/internal/codegen/store"
	"github.com/adwaithkm1/web-code-generator/internal/codegen/store/drivers/memory"
	"github.com/adwaithkm1/web-code-generator/internal/codegen/store/drivers/sqlite"
	"github.com/adwaithkm1/web-code-generator/pkg/sessionx"
	"github.com/adwaithkm1/web-code-generator/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the code-generator service with its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	signer *sessionx.Signer

	authService         *service.AuthService
	quotaService        *service.QuotaService
	shareService        *service.ShareService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "codegen-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if cfg.GeminiAPIKey == "" {
		return nil, errors.New("GEMINI_API_KEY is required")
	}

	if err := app.initStore(); err != nil {
		return nil, err
	}

	if err := app.initSigner(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.quotaService.Start()
	app.housekeepingService.Start()

	app.logger.Info("codegen service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
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

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down codegen service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.quotaService.Stop()
	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("codegen service stopped")
	return nil
}

func (app *Application) initStore() error {
	switch app.cfg.StoreDriver {
	case "memory":
		app.db = memory.NewStore()
		app.logger.Info("using in-memory store; state is lost on restart")
	case "sqlite":
		dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
		db, err := sqlite.NewStore(dsn)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		app.db = db
	default:
		return fmt.Errorf("unknown store driver %q", app.cfg.StoreDriver)
	}

	if err := app.db.ApplyMigrations(); err != nil {
		_ = app.db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("store ready", "driver", app.cfg.StoreDriver)
	return nil
}

func (app *Application) initSigner() error {
	key, err := sessionx.LoadOrGenerateKey(app.cfg.SessionKeyFile)
	if err != nil {
		return fmt.Errorf("failed to load session signing key: %w", err)
	}

	signer, err := sessionx.NewSigner(app.cfg.SessionIssuer, key)
	if err != nil {
		return err
	}
	app.signer = signer
	return nil
}

func (app *Application) initServices() {
	app.authService = &service.AuthService{
		Store:        app.db,
		Signer:       app.signer,
		QuotaCeiling: app.cfg.QuotaCeiling,
	}

	app.quotaService = service.NewQuotaService(
		app.db,
		app.logger,
		app.cfg.QuotaCeiling,
		app.cfg.QuotaResetInterval,
	)

	app.shareService = &service.ShareService{
		Store: app.db,
		TTL:   app.cfg.ShareTTL,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		BuildVersion,
		app.cfg.Env == "prod",
		app.db,
		app.logger,
	)

	router.AuthService = app.authService
	router.QuotaService = app.quotaService
	router.ShareService = app.shareService
	router.Generator = generator.NewClient(app.cfg.GeminiAPIKey)
	router.Federation = &federation.GoogleProvider{
		ClientID:     app.cfg.GoogleClientID,
		ClientSecret: app.cfg.GoogleClientSecret,
		RedirectURL:  app.cfg.BaseURL + "/auth/google/callback",
	}
	router.ApplyRoutes()

	if router.Federation.Enabled() {
		app.logger.Info("federated login enabled")
	}

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
