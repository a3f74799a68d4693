// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the channelscope ops HTTP server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis when configured.
//  5. Run database migrations (idempotent).
//  6. Wire the engine and the HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/taibuivan/channelscope/internal/aggregate"
	"github.com/taibuivan/channelscope/internal/api"
	"github.com/taibuivan/channelscope/internal/catalog"
	"github.com/taibuivan/channelscope/internal/classify"
	"github.com/taibuivan/channelscope/internal/competitor"
	"github.com/taibuivan/channelscope/internal/pipeline"
	"github.com/taibuivan/channelscope/internal/platform/config"
	"github.com/taibuivan/channelscope/internal/platform/constants"
	"github.com/taibuivan/channelscope/internal/platform/migration"
	pgstore "github.com/taibuivan/channelscope/internal/platform/postgres"
	redisstore "github.com/taibuivan/channelscope/internal/platform/redis"
	"github.com/taibuivan/channelscope/internal/platform/telemetry"
	"github.com/taibuivan/channelscope/internal/youtube"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.Bool("cache", cfg.HasCache()),
		slog.Bool("catalog_client", cfg.HasCatalogClient()),
	)

	defaults := pipeline.OptionsFromConfig(cfg.Run)
	must(log, defaults.Validate(), "validate run defaults")

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	var rdb *goredis.Client
	if cfg.HasCache() {
		rdb, err = redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing redis client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis close error", slog.Any("error", cerr))
			}
		}()
	}

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Engine Wiring ──────────────────────────────────────────────────
	metrics := telemetry.New()
	store := catalog.NewPostgresStore(pool)

	seed, err := classify.LoadSeed()
	must(log, err, "load classification lexicon")
	patterns := classify.NewRepository(seed, store)
	must(log, patterns.Load(startupCtx), "load classification patterns")

	var (
		cache  aggregate.Cache
		locker pipeline.Locker = pipeline.NewMemoryLocker()
	)
	if rdb != nil {
		cache = aggregate.NewRedisCache(rdb)
		locker = pipeline.NewRedisLocker(rdb)
	}
	metricsService := aggregate.NewService(store, cache, metrics)

	var client youtube.Client
	if cfg.HasCatalogClient() {
		apiClient, err := youtube.NewAPIClient(startupCtx, youtube.APIOptions{
			APIKey:  cfg.YouTubeAPIKey,
			QPS:     cfg.YouTubeQPS,
			Policy:  youtube.DefaultRetryPolicy,
			Logger:  log,
			Metrics: metrics,
		})
		must(log, err, "build youtube client")
		client = apiClient
	}

	latest := pipeline.NewLatestSink()
	runs := pipeline.NewPostgresRunRepository(pool)
	orchestrator := pipeline.NewOrchestrator(pipeline.Dependencies{
		Store:    store,
		Patterns: patterns,
		Seed:     seed,
		Client:   client,
		Cache:    metricsService,
		Locker:   locker,
		Runs:     runs,
		Progress: pipeline.MultiSink{pipeline.NewLogSink(log), latest},
		Metrics:  metrics,
		Logger:   log,
	})
	runService := pipeline.NewService(orchestrator, runs, latest, defaults, log)

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	health := api.HealthDependencies{
		Checks: []api.Check{{
			Name:  "postgres",
			Probe: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) },
		}},
		CatalogClient: client != nil,
	}
	if rdb != nil {
		health.Checks = append(health.Checks, api.Check{
			Name:     "redis",
			Probe:    func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) },
			Optional: true,
		})
	}
	liveness, readiness := api.NewHealthHandlers(health, log)

	// ── 8. HTTP Server ────────────────────────────────────────────────────
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, metrics, api.Handlers{
		Liveness:    liveness,
		Readiness:   readiness,
		Runs:        pipeline.NewHandler(runService),
		Patterns:    classify.NewHandler(patterns),
		Competitors: competitor.NewHandler(competitor.NewService(store, locker, metricsService, log)),
		Metrics:     aggregate.NewHandler(metricsService),
	})

	// ── 9. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
	}

	// A running pipeline stops at the next competitor and saves its report.
	runCtx, runCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer runCancel()
	if err := runService.Shutdown(runCtx); err != nil {
		log.Error("run shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// newLogger builds the JSON root logger tagged with the application name.
func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", constants.AppName))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned and
// handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
