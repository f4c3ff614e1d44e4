// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/nvnfont/nvnfont-bot-go/internal/api"
	"github.com/nvnfont/nvnfont-bot-go/internal/bot"
	"github.com/nvnfont/nvnfont-bot-go/internal/buildinfo"
	"github.com/nvnfont/nvnfont-bot-go/internal/catalog"
	"github.com/nvnfont/nvnfont-bot-go/internal/config"
	"github.com/nvnfont/nvnfont-bot-go/internal/crawler"
	"github.com/nvnfont/nvnfont-bot-go/internal/logger"
	"github.com/nvnfont/nvnfont-bot-go/internal/messenger"
	"github.com/nvnfont/nvnfont-bot-go/internal/metrics"
	"github.com/nvnfont/nvnfont-bot-go/internal/r2client"
	"github.com/nvnfont/nvnfont-bot-go/internal/ratelimit"
	"github.com/nvnfont/nvnfont-bot-go/internal/scraper"
	"github.com/nvnfont/nvnfont-bot-go/internal/sentry"
	"github.com/nvnfont/nvnfont-bot-go/internal/snapshot"
	"github.com/nvnfont/nvnfont-bot-go/internal/storage"
	"github.com/nvnfont/nvnfont-bot-go/internal/webhook"
)

// Application manages the application lifecycle and dependencies.
type Application struct {
	cfg       *config.Config
	logger    *logger.Logger
	db        *storage.DB
	metrics   *metrics.Metrics
	registry  *prometheus.Registry
	catalog   *catalog.Catalog
	state     *bot.RuntimeState
	snapshots *snapshot.Manager // nil when object storage is disabled
	limiter   *ratelimit.KeyedLimiter
	router    *gin.Engine
	server    *http.Server
	wg        sync.WaitGroup // Track background goroutines for graceful shutdown
}

// Initialize creates and initializes a new application with all dependencies.
func Initialize(ctx context.Context, cfg *config.Config) (*Application, error) {
	log := logger.NewWithOptions(logger.Options{
		Level:               cfg.LogLevel,
		BetterStackToken:    cfg.BetterStackToken,
		BetterStackEndpoint: cfg.BetterStackEndpoint,
	})
	log = log.WithField("service", "nvnfont-bot").WithField("instance_id", cfg.ServerName)

	// Package-level slog.*Context calls pick up sender and request ids
	// through the ContextHandler.
	slog.SetDefault(log.Logger)

	log.WithField("version", buildinfo.String()).Info("Initializing application...")

	if err := sentry.Initialize(sentry.Config{
		Token:       cfg.SentryToken,
		Host:        cfg.SentryHost,
		Environment: cfg.SentryEnvironment,
		Release:     releaseName(cfg),
		SampleRate:  cfg.SentrySampleRate,
	}); err != nil {
		log.WithError(err).Warn("Sentry initialization failed")
	} else if sentry.IsEnabled() {
		log.WithField("host", cfg.SentryHost).Info("Sentry error reporting enabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewBuildInfoCollector(),
	)
	m := metrics.New(registry)

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	var snapshots *snapshot.Manager
	if cfg.R2.Enabled {
		mgr, err := newSnapshotManager(ctx, cfg, m)
		if err != nil {
			return nil, fmt.Errorf("snapshot: %w", err)
		}
		snapshots = mgr
		restoreIfMissing(ctx, log, snapshots, cfg.SQLitePath())
	}

	db, err := storage.New(ctx, cfg.SQLitePath())
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	log.WithField("path", cfg.SQLitePath()).Info("Database connected")

	cat := catalog.New(db)
	state := bot.NewRuntimeState(db)

	app := &Application{
		cfg:       cfg,
		logger:    log,
		db:        db,
		metrics:   m,
		registry:  registry,
		catalog:   cat,
		state:     state,
		snapshots: snapshots,
	}

	if err := app.reloadCatalog(ctx); err != nil {
		log.WithError(err).Warn("Initial catalog load failed")
	}
	if err := state.Reload(ctx); err != nil {
		log.WithError(err).Warn("Initial runtime state load failed")
	}

	scraperClient := scraper.NewClient(scraper.Options{
		Timeout:      cfg.Scraper.Timeout,
		MaxRetries:   cfg.Scraper.MaxRetries,
		InitialDelay: config.ScraperRetryInitial,
		MaxDelay:     config.ScraperRetryMax,
		Metrics:      m,
	})
	crawlers := crawler.New(scraperClient, crawler.Config{
		LotteryURL: cfg.Scraper.LotteryURL,
		YouTubeURL: cfg.Scraper.YouTubeURL,
		DiseaseURL: cfg.Scraper.DiseaseURL,
		SearchURL:  cfg.Scraper.SearchURL,
		Location:   cfg.Location(),
	}, m)

	graph := messenger.New(cfg.PageAccessToken,
		messenger.WithBaseURL(cfg.GraphAPIURL),
		messenger.WithVersion(cfg.GraphAPIVersion),
		messenger.WithTimeout(cfg.Bot.MessengerTimeout),
		messenger.WithMetrics(m),
	)

	dispatcher := bot.NewDispatcher(bot.Config{
		Location:         cfg.Location(),
		GreetingImageURL: cfg.Bot.GreetingImageURL,
		PageURL:          cfg.Bot.PageURL,
	}, bot.Deps{
		Store:    db,
		State:    state,
		Catalog:  cat,
		Sender:   graph,
		Profiles: graph,
		Crawlers: crawlers,
		Logger:   log,
		Metrics:  m,
	})

	webhookHandler := webhook.NewHandler(webhook.HandlerConfig{
		VerifyToken: cfg.VerifyToken,
		AppSecret:   cfg.AppSecret,
		Dispatcher:  dispatcher,
		Metrics:     m,
		Logger:      log,
	})
	if cfg.AppSecret == "" {
		log.Warn("Webhook signature verification disabled: app secret not set")
	}

	apiHandler := api.New(api.Config{
		Fonts:         db,
		Games:         db,
		Catalog:       cat,
		JWTSecret:     cfg.JWTSecret,
		Logger:        log,
		ReloadCatalog: app.reloadCatalog,
		ReloadState:   state.Reload,
	})

	app.limiter = newAPILimiter(cfg, m)

	gin.SetMode(gin.ReleaseMode)
	app.router = app.newRouter(webhookHandler, apiHandler)

	app.server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.router,
		ReadHeaderTimeout: config.WebhookHTTPRead,
		ReadTimeout:       config.WebhookHTTPRead,
		WriteTimeout:      config.WebhookHTTPWrite,
		IdleTimeout:       config.WebhookHTTPIdle,
	}

	log.Info("Initialization complete")
	return app, nil
}

func releaseName(cfg *config.Config) string {
	if cfg.SentryRelease != "" {
		return cfg.SentryRelease
	}
	return buildinfo.Version
}

func newSnapshotManager(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (*snapshot.Manager, error) {
	client, err := r2client.New(ctx, r2client.Config{
		Endpoint:    cfg.R2.Endpoint,
		AccessKeyID: cfg.R2.AccessKeyID,
		SecretKey:   cfg.R2.SecretAccessKey,
		BucketName:  cfg.R2.BucketName,
	})
	if err != nil {
		return nil, err
	}
	return snapshot.New(client, snapshot.Config{
		Prefix:  cfg.R2.SnapshotPrefix,
		Retain:  cfg.R2.SnapshotRetain,
		TempDir: cfg.DataDir,
		Metrics: m,
	}), nil
}

// restoreIfMissing seeds a fresh volume from the newest snapshot. An
// existing database file is never overwritten.
func restoreIfMissing(ctx context.Context, log *logger.Logger, mgr *snapshot.Manager, dbPath string) {
	if _, err := os.Stat(dbPath); err == nil {
		return
	}

	restoreCtx, cancel := context.WithTimeout(ctx, config.SnapshotJob)
	defer cancel()

	key, err := mgr.Restore(restoreCtx, dbPath)
	switch {
	case errors.Is(err, snapshot.ErrNotFound):
		log.Info("No snapshot to restore, starting with an empty database")
	case err != nil:
		log.WithError(err).Warn("Snapshot restore failed, starting with an empty database")
	default:
		log.WithField("key", key).Info("Database restored from snapshot")
	}
}

// reloadCatalog refreshes the catalog and records the outcome.
func (a *Application) reloadCatalog(ctx context.Context) error {
	err := a.catalog.Reload(ctx)
	fonts, responses := a.catalog.Counts()
	if a.metrics != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		a.metrics.RecordCatalogReload(status, fonts, responses)
	}
	return err
}

// Router exposes the HTTP handler, mainly for tests.
func (a *Application) Router() http.Handler {
	return a.router
}

// Run starts the HTTP server and background jobs, then blocks until
// SIGINT/SIGTERM.
//
// Shutdown order: cancel jobs and wait for them, stop the HTTP server
// (drains in-flight webhook dispatches), close the database, flush
// Sentry and the remote log sink.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.startBackgroundJobs(ctx)
	errCh := a.startHTTPServer()

	select {
	case sig := <-a.waitForShutdownSignal():
		a.logger.WithField("signal", sig.String()).Info("Received shutdown signal")
	case err := <-errCh:
		a.logger.WithError(err).Error("HTTP server stopped unexpectedly")
	}

	cancel()

	a.logger.Info("Waiting for background jobs to finish...")
	start := time.Now()
	a.wg.Wait()
	a.logger.WithField("duration_ms", time.Since(start).Milliseconds()).
		Info("All background jobs completed")

	return a.shutdown()
}

// startHTTPServer starts the HTTP server in a goroutine. The returned
// channel receives a listen error.
func (a *Application) startHTTPServer() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.WithField("port", a.cfg.Port).Info("Starting HTTP server")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	return errCh
}

func (a *Application) waitForShutdownSignal() <-chan os.Signal {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	return quit
}

// newAPILimiter builds the per-client limiter for the public REST routes.
func newAPILimiter(cfg *config.Config, m *metrics.Metrics) *ratelimit.KeyedLimiter {
	return ratelimit.NewKeyedLimiter(ratelimit.KeyedConfig{
		Name:       "api",
		Burst:      cfg.APIRateBurst,
		RefillRate: cfg.APIRateRefill,
		Metrics:    m,
	})
}

func (a *Application) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	a.logger.Info("Stopping HTTP server...")
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Error("HTTP server shutdown error")
	}

	a.logger.Info("Closing resources...")
	if a.limiter != nil {
		a.limiter.Stop()
	}
	var errs []error
	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).WithField("component", "database").Error("Component close error")
		errs = append(errs, err)
	}

	if sentry.IsEnabled() && !sentry.Flush(config.SentryFlush) {
		a.logger.Warn("Sentry flush timed out")
	}

	a.logger.Info("Shutdown complete")
	if err := a.logger.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("logger shutdown: %w", err))
	}
	return errors.Join(errs...)
}
