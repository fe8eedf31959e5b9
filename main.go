package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aurorawatch/internal/aggregator"
	"aurorawatch/internal/banner"
	"aurorawatch/internal/cache"
	"aurorawatch/internal/config"
	"aurorawatch/internal/derive"
	"aurorawatch/internal/fetchers"
	"aurorawatch/internal/logger"
	"aurorawatch/internal/metrics"
	"aurorawatch/internal/server"
	"aurorawatch/internal/storage"
)

const shutdownTimeout = 30 * time.Second

// App holds the wired pipeline for one process.
type App struct {
	config     *config.Config
	cache      *cache.SnapshotCache
	aggregator *aggregator.Aggregator
	scheduler  *aggregator.Scheduler
	banner     *banner.Loader
	store      storage.Client
	metrics    *metrics.Collector
	httpServer *http.Server
	log        *logger.Logger
}

// NewApp builds every component from cfg. The caller must Close the app.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	engine, err := derive.NewEngine(cfg.Derive.Thresholds())
	if err != nil {
		return nil, fmt.Errorf("failed to create derivation engine: %w", err)
	}

	store, err := storage.NewClient(ctx, storage.Backend(cfg.BannerStorage), storage.Options{
		BaseDir: ".",
		Bucket:  cfg.BannerBucket,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create banner storage: %w", err)
	}

	collector := metrics.NewCollector("aurorawatch")
	snapshots := cache.New()

	feeds := fetchers.NewFeedClient(cfg.FeedOptions())

	agg := aggregator.New(feeds, engine, snapshots, aggregator.WithRecorder(collector))
	loader := banner.NewLoader(store, cfg.BannerPath, cfg.BannerReloadInterval, collector)

	srv := server.NewServer(snapshots, loader, collector, config.GetVersion())

	return &App{
		config:     cfg,
		cache:      snapshots,
		aggregator: agg,
		scheduler:  aggregator.NewScheduler(agg, cfg.RefreshInterval, collector),
		banner:     loader,
		store:      store,
		metrics:    collector,
		httpServer: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      srv.SetupRoutes(),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		log: logger.Component("main"),
	}, nil
}

// Handler returns the HTTP handler serving the delivery routes.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run starts the scheduler, the banner loader and the HTTP server, and
// blocks until ctx is cancelled or the server fails.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	schedulerDone := make(chan struct{})
	go func() {
		defer close(schedulerDone)
		a.scheduler.Run(ctx)
	}()

	bannerDone := make(chan struct{})
	go func() {
		defer close(bannerDone)
		a.banner.Run(ctx)
	}()

	serverErr := make(chan error, 1)
	go func() {
		a.log.Infof("Server listening on %s", a.httpServer.Addr)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.log.Info("Shutting down server...")
	case err := <-serverErr:
		if err != nil {
			runErr = fmt.Errorf("HTTP server error: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.log.Error("Server shutdown error", err)
	}

	cancel()
	<-schedulerDone
	<-bannerDone

	a.log.Info("Server stopped")
	return runErr
}

// Close releases the storage client.
func (a *App) Close() error {
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", err)
	}
	logger.Configure(cfg.LogLevel, cfg.LogFormat)

	logger.Info("Starting aurora service", map[string]interface{}{
		"port":             cfg.Port,
		"environment":      cfg.Environment,
		"version":          config.GetVersion(),
		"refresh_interval": cfg.RefreshInterval.String(),
		"banner_storage":   cfg.BannerStorage,
	})

	app, err := NewApp(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to create application", err)
	}

	runErr := app.Run(ctx)
	if err := app.Close(); err != nil {
		logger.Error("Failed to close storage", err)
	}
	if runErr != nil {
		logger.Error("Service exited with error", runErr)
		os.Exit(1)
	}
}
