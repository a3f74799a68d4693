// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, engine caps, and cross-cutting keys that
are shared between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the ops HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Catalog Client: Retry window, batch size and request budget.
  - Engine Caps: Fixed correction limits and thresholds.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "channelscope"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second

	// StatementTimeout bounds a single SQL statement issued by the engine.
	StatementTimeout = 60 * time.Second

	// HealthCheckTimeout bounds one dependency probe of the readiness endpoint.
	HealthCheckTimeout = 2 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the read requests per second allowed per IP.
	DefaultRateLimitRPS = 20.0

	// DefaultRateLimitBurst is the read burst allowed per IP.
	DefaultRateLimitBurst = 40

	// MutationRateLimitRPS paces run triggers, cancels and registry edits per IP.
	MutationRateLimitRPS = 0.5

	// MutationRateLimitBurst is the mutation burst allowed per IP.
	MutationRateLimitBurst = 5

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Catalog Client

const (
	// CatalogRequestTimeout is the per-request budget of a catalog call.
	CatalogRequestTimeout = 30 * time.Second

	// CatalogMaxRetries is the number of retries after the first attempt.
	CatalogMaxRetries = 2

	// CatalogInitialBackoff is the wait before the first retry.
	CatalogInitialBackoff = 1 * time.Second

	// CatalogMaxBackoff caps the exponential backoff.
	CatalogMaxBackoff = 8 * time.Second

	// CatalogBatchSize is the maximum number of ids per contentDetails call.
	CatalogBatchSize = 50

	// CatalogPageSize is the page size used for list calls.
	CatalogPageSize = 50
)

// # Engine Caps

const (
	// HubMonopolyHeroCap is the number of top-view HUB videos promoted to HERO.
	HubMonopolyHeroCap = 3

	// HubMonopolyHeroMinViews is the view count a HUB video must exceed to be promoted.
	HubMonopolyHeroMinViews = 30000

	// HubMonopolyHelpCap is the number of lexicon-matching HUB videos moved to HELP.
	HubMonopolyHelpCap = 5

	// ZeroHeroViewThreshold qualifies a HUB video for HERO promotion on views alone.
	ZeroHeroViewThreshold = 50000

	// ShortMaxSeconds is the longest duration still considered a Short.
	ShortMaxSeconds = 60

	// FrequencyOutlierThreshold flags a raw weekly frequency as an outlier.
	FrequencyOutlierThreshold = 20.0

	// ImpossibleFrequencyThreshold is reported as an anomaly regardless of the cap.
	ImpossibleFrequencyThreshold = 50.0

	// MinWeeks is the floor applied to an active span before dividing by it.
	MinWeeks = 0.1
)

// # Request Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldMeta    = "meta"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldStatus  = "status"
	FieldChecks  = "checks"
)

// # Database Schemas

const (
	SchemaCatalog = "catalog"
	SchemaEngine  = "engine"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	// RedisPrefixMetrics is the root of every cached metric read model.
	RedisPrefixMetrics = "metrics:"

	RedisPrefixCompetitorMetrics = "metrics:competitor:"
	RedisPrefixCountryMetrics    = "metrics:country:"
	RedisKeyEuropeMetrics        = "metrics:europe"

	// RedisPrefixRunLock guards a competitor against overlapping runs.
	RedisPrefixRunLock = "run:lock:competitor:"

	// MetricsCacheTTL bounds staleness when an invalidation is missed.
	MetricsCacheTTL = 6 * time.Hour

	// RunLockTTL outlives the longest expected run.
	RunLockTTL = 2 * time.Hour
)
