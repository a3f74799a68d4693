// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config maps the environment onto [Config] with caarlos0/env.

Both binaries load it once at startup and pass it down through constructors.
The RUN_ keys are only defaults: every run may override them and is validated
on its own before the first phase starts.

	cfg, err := config.Load()
*/
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the engine and the ops API.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis). Empty disables the metric cache and distributed run locks.
	RedisURL string `env:"REDIS_URL"`

	// Video catalog (YouTube Data API v3). Empty disables catalog refresh.
	YouTubeAPIKey string  `env:"YOUTUBE_API_KEY"`
	YouTubeQPS    float64 `env:"YOUTUBE_QPS" envDefault:"5"`

	// Cross-Origin Resource Sharing
	AllowedOrigin string `env:"ALLOWED_ORIGIN_SUFFIX" envDefault:"channelscope.app"`

	// Run defaults
	Run RunDefaults `envPrefix:"RUN_"`
}

// RunDefaults are the process-wide defaults for a pipeline run.
type RunDefaults struct {
	PaidThreshold            int64    `env:"PAID_THRESHOLD"             envDefault:"10000"`
	HighPerformanceThreshold int64    `env:"HIGH_PERFORMANCE_THRESHOLD" envDefault:"100000"`
	MaxVideosPerChannel      int      `env:"MAX_VIDEOS_PER_CHANNEL"     envDefault:"1000"`
	SentinelImportDates      []string `env:"SENTINEL_IMPORT_DATES"      envSeparator:","`
	FrequencyCap             float64  `env:"FREQUENCY_CAP"              envDefault:"3.0"`
	ZeroHelpFixCap           int      `env:"ZERO_HELP_FIX_CAP"          envDefault:"50"`
	ZeroHeroFixCap           int      `env:"ZERO_HERO_FIX_CAP"          envDefault:"5"`
	CorruptedDatesResolver   string   `env:"CORRUPTED_DATES_RESOLVER"   envDefault:"catalog_first"`
	Concurrency              int      `env:"CONCURRENCY"                envDefault:"1"`
}

// # Configuration Loading

// Load parses the environment. DATABASE_URL is the only required key.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// AllowedOriginSuffix returns the origin suffix accepted by CORS outside development.
func (c *Config) AllowedOriginSuffix() string {
	return c.AllowedOrigin
}

// HasCache reports whether a Redis endpoint is configured.
func (c *Config) HasCache() bool {
	return c.RedisURL != ""
}

// HasCatalogClient reports whether the upstream video catalog can be reached.
func (c *Config) HasCatalogClient() bool {
	return c.YouTubeAPIKey != ""
}
