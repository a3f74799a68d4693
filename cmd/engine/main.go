// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command engine runs the classification and metrics pipeline once and exits.
//
// # Usage
//
//	engine [-competitors id1,id2] [-offline] [-report run.json]
//
// Run defaults come from the same environment variables as the API server;
// flags override them for this run only. SIGINT stops the run at the next
// competitor boundary and the partial report is still written.
//
// Exit codes: 0 when every competitor succeeded, 1 on a startup or input
// error, 2 when the run finished partial, failed or cancelled.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/taibuivan/channelscope/internal/aggregate"
	"github.com/taibuivan/channelscope/internal/catalog"
	"github.com/taibuivan/channelscope/internal/classify"
	"github.com/taibuivan/channelscope/internal/pipeline"
	"github.com/taibuivan/channelscope/internal/platform/config"
	"github.com/taibuivan/channelscope/internal/platform/constants"
	"github.com/taibuivan/channelscope/internal/platform/migration"
	pgstore "github.com/taibuivan/channelscope/internal/platform/postgres"
	redisstore "github.com/taibuivan/channelscope/internal/platform/redis"
	"github.com/taibuivan/channelscope/internal/youtube"
	"github.com/taibuivan/channelscope/pkg/query"
)

// flags are the per-run overrides accepted on the command line.
type flags struct {
	competitors string
	sentinels   string
	reportPath  string
	offline     bool
	concurrency int
	resolver    string
	migrate     bool
}

func parseFlags(args []string, output io.Writer) (flags, error) {
	var parsed flags
	set := flag.NewFlagSet("engine", flag.ContinueOnError)
	set.SetOutput(output)
	set.StringVar(&parsed.competitors, "competitors", "", "comma separated competitor ids (default: all)")
	set.StringVar(&parsed.sentinels, "sentinel-dates", "", "comma separated YYYY-MM-DD import dates treated as corrupted")
	set.StringVar(&parsed.reportPath, "report", "", "write the JSON report to this file (default: stdout)")
	set.BoolVar(&parsed.offline, "offline", false, "skip every video catalog call")
	set.IntVar(&parsed.concurrency, "concurrency", 0, "competitors processed in parallel (default: RUN_CONCURRENCY)")
	set.StringVar(&parsed.resolver, "resolver", "", "corrupted dates resolver: catalog_first or refetch_only")
	set.BoolVar(&parsed.migrate, "migrate", true, "apply database migrations before the run")
	return parsed, set.Parse(args)
}

// overrides converts the flags into run overrides.
func (parsed flags) overrides() pipeline.Overrides {
	var overrides pipeline.Overrides
	if parsed.competitors != "" {
		overrides.CompetitorIDs = query.StringSlice(parsed.competitors)
	}
	if parsed.sentinels != "" {
		overrides.SentinelImportDates = query.StringSlice(parsed.sentinels)
	}
	if parsed.offline {
		overrides.Offline = &parsed.offline
	}
	if parsed.concurrency > 0 {
		overrides.Concurrency = &parsed.concurrency
	}
	if parsed.resolver != "" {
		overrides.CorruptedDatesResolver = &parsed.resolver
	}
	return overrides
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	parsed, err := parseFlags(args, os.Stderr)
	if err != nil {
		return 1
	}

	// Logs go to stderr so that stdout carries only the report.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("startup failure", slog.String("context", "load configuration"), slog.Any("error", err))
		return 1
	}
	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
	}

	options := parsed.overrides().Apply(pipeline.OptionsFromConfig(cfg.Run))
	if err := options.Validate(); err != nil {
		log.Error("invalid_run_options", slog.Any("error", err))
		return 1
	}

	context, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgstore.NewPool(context, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("startup failure", slog.String("context", "connect to postgres"), slog.Any("error", err))
		return 1
	}
	defer pool.Close()

	if parsed.migrate {
		if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log); err != nil {
			log.Error("startup failure", slog.String("context", "run migrations"), slog.Any("error", err))
			return 1
		}
	}

	store := catalog.NewPostgresStore(pool)
	deps := pipeline.Dependencies{
		Store:    store,
		Runs:     pipeline.NewPostgresRunRepository(pool),
		Progress: pipeline.NewLogSink(log),
		Logger:   log,
	}

	var rdb *goredis.Client
	if cfg.HasCache() {
		rdb, err = redisstore.NewClient(context, cfg.RedisURL, log)
		if err != nil {
			log.Error("startup failure", slog.String("context", "connect to redis"), slog.Any("error", err))
			return 1
		}
		defer rdb.Close()
		deps.Cache = aggregate.NewRedisCache(rdb)
		deps.Locker = pipeline.NewRedisLocker(rdb)
	}

	if cfg.HasCatalogClient() && !options.Offline {
		client, err := youtube.NewAPIClient(context, youtube.APIOptions{
			APIKey: cfg.YouTubeAPIKey,
			QPS:    cfg.YouTubeQPS,
			Policy: youtube.DefaultRetryPolicy,
			Logger: log,
		})
		if err != nil {
			log.Error("startup failure", slog.String("context", "build youtube client"), slog.Any("error", err))
			return 1
		}
		deps.Client = client
	} else if !options.Offline {
		log.Warn("catalog_client_disabled", slog.String("reason", "YOUTUBE_API_KEY is not set"))
	}

	seed, err := classify.LoadSeed()
	if err != nil {
		log.Error("startup failure", slog.String("context", "load classification lexicon"), slog.Any("error", err))
		return 1
	}
	deps.Seed = seed
	deps.Patterns = classify.NewRepository(seed, store)

	started := time.Now()
	report, err := pipeline.NewOrchestrator(deps).Run(context, "", options)
	if err != nil {
		log.Error("run_rejected", slog.Any("error", err))
		return 1
	}

	if err := writeReport(parsed.reportPath, report); err != nil {
		log.Error("report_write_failed", slog.Any("error", err))
		return 1
	}

	log.Info("run_done",
		slog.String("run_id", report.ID),
		slog.String("status", report.Status),
		slog.Duration("elapsed", time.Since(started)),
	)
	if report.Status != pipeline.StatusCompleted {
		return 2
	}
	return 0
}

// writeReport writes the indented report to path, or to stdout when path is empty.
func writeReport(path string, report *pipeline.Report) error {
	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	payload = append(payload, '\n')

	if path == "" {
		_, err = os.Stdout.Write(payload)
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}

func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", constants.AppName), slog.String("command", "engine"))
}
