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

	"github.com/redis/go-redis/v9"

	"github.com/vistoriapro/vistoria/internal/access/gate"
	httpapi "github.com/vistoriapro/vistoria/internal/access/http"
	"github.com/vistoriapro/vistoria/internal/access/idp"
	"github.com/vistoriapro/vistoria/internal/access/obs"
	"github.com/vistoriapro/vistoria/internal/access/service"
	"github.com/vistoriapro/vistoria/internal/access/store"
	"github.com/vistoriapro/vistoria/internal/access/store/drivers/postgres"
	"github.com/vistoriapro/vistoria/internal/access/store/drivers/sqlite"
	"github.com/vistoriapro/vistoria/pkg/httpx"
	"github.com/vistoriapro/vistoria/pkg/slogx"
)

// BuildVersion is overridden at build time with -ldflags "-X".
var BuildVersion = "v0.1.0"

// Application holds the access service and everything it depends on.
type Application struct {
	cfg     Config
	logger  *slog.Logger
	metrics *obs.Metrics

	db      store.Store
	redis   *redis.Client
	limiter httpx.Limiter

	sessions     *idp.Verifier
	links        *service.LinkTokenService
	resolver     *service.EntitlementResolver
	credits      *service.CreditService
	disputes     *service.DisputeService
	housekeeping *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "vistoria-access",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		metrics: obs.NewMetrics(),
	}
	app.metrics.SetBuildInfo(BuildVersion)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initLimiter()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.sessions.Start()
	app.housekeeping.Start()

	app.logger.Info("access service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"db_driver", app.cfg.DBDriver,
		"ratelimit_backend", app.cfg.RateLimitBackend,
		"link_kid", app.links.KID(),
		"unlimited_emails", app.resolver.Policy.Size(),
	)

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

// Shutdown drains in-flight requests, stops background loops and closes
// connections.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down access service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeeping.Stop()
	app.sessions.Stop()

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("access service stopped")
	return nil
}

// Handler exposes the HTTP handler, mostly for tests.
func (app *Application) Handler() http.Handler { return app.router }

func (app *Application) initDatabase() error {
	var (
		db  store.Store
		err error
	)
	switch app.cfg.DBDriver {
	case DriverPostgres:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		db, err = postgres.NewStore(ctx, app.cfg.DatabaseURL, postgres.Options{
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		})
	default:
		dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
		db, err = sqlite.NewStore(dsn)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DBDriver)
	return nil
}

func (app *Application) initServices() error {
	sessions, err := idp.NewVerifier(idp.Config{
		JWKSURL:         app.cfg.IDPJWKSURL,
		Issuer:          app.cfg.IDPIssuer,
		Audience:        app.cfg.IDPAudience,
		RefreshInterval: app.cfg.IDPJWKSRefresh,
		Logger:          app.logger,
		Metrics:         app.metrics,
	})
	if err != nil {
		return err
	}
	app.sessions = sessions

	links, err := service.NewLinkTokenService(service.LinkTokenConfig{
		Secret:  []byte(app.cfg.LinkSecret),
		Issuer:  app.cfg.LinkIssuer,
		MaxTTL:  app.cfg.LinkMaxTTL,
		Metrics: app.metrics,
	})
	if err != nil {
		return err
	}
	app.links = links

	policy := service.NewEntitlementPolicy(app.cfg.UnlimitedEmails)
	app.resolver = &service.EntitlementResolver{Accounts: app.db.Accounts(), Policy: policy}
	app.credits = &service.CreditService{Accounts: app.db.Accounts(), Policy: policy, Metrics: app.metrics}
	app.disputes = &service.DisputeService{
		Store:       app.db,
		Links:       links,
		LinkBaseURL: app.cfg.LinkBaseURL,
		DefaultTTL:  app.cfg.LinkDefaultTTL,
	}
	app.housekeeping = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.GrantRetention,
	)
	return nil
}

func (app *Application) initLimiter() {
	if app.cfg.RateLimitBackend != LimiterRedis {
		app.limiter = httpx.NewMemoryLimiter()
		return
	}
	app.redis = redis.NewClient(&redis.Options{Addr: app.cfg.RedisAddr})
	app.limiter = httpx.NewRedisLimiter(app.redis, app.logger)
}

func (app *Application) initHTTP() {
	g := &gate.Gate{
		Sessions: app.sessions,
		Resolver: app.resolver,
		Links:    app.links,
		Grants:   app.db.Grants(),
		Metrics:  app.metrics,
	}

	router := httpapi.NewRouter(
		g,
		app.db,
		app.limiter,
		app.metrics,
		BuildVersion,
		app.cfg.IsProduction(),
		app.logger,
	)
	router.IdentityReady = app.sessions.Ready
	router.Resolver = app.resolver
	router.CreditService = app.credits
	router.DisputeService = app.disputes
	router.ApplyRoutes()
	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
