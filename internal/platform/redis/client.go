// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package redis opens the optional Redis client of the engine.

Two concerns use it, both with expiring keys: the cache-aside read models of
competitor, country and Europe metrics, and the per-competitor run locks.
Without REDIS_URL both fall back to in-process implementations.
*/
package redis

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Default timeouts for Redis operations.
const (
	dialTimeout  = 3 * time.Second
	readTimeout  = 2 * time.Second
	writeTimeout = 2 * time.Second
	pingTimeout  = 2 * time.Second
)

// NewClient parses a Redis URL and returns a ready-to-use client.
//
// # Parameters
//   - context: Context for the initial ping.
//   - redisURL: Redis connection URL.
//   - logger: Structured logger for connection events.
func NewClient(context stdctx.Context, redisURL string, logger *slog.Logger) (*redis.Client, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}

	// Pool configuration: cache reads from the API plus one lock per running competitor.
	options.PoolSize = 8
	options.MinIdleConns = 1
	options.MaxIdleConns = 4

	options.DialTimeout = dialTimeout
	options.ReadTimeout = readTimeout
	options.WriteTimeout = writeTimeout

	client := redis.NewClient(options)

	// Validate connectivity immediately at startup.
	if err := Ping(context, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("redis_client_connected",
		slog.String("addr", options.Addr),
		slog.Int("pool_size", options.PoolSize),
	)

	return client, nil
}

// Ping verifies that the Redis client is healthy.
func Ping(context stdctx.Context, client *redis.Client) error {
	pingCtx, cancel := stdctx.WithTimeout(context, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis: ping failed: %w", err)
	}

	return nil
}

// scanBatch is the COUNT hint passed to SCAN.
const scanBatch = 200

// DeleteByPrefix removes every key starting with prefix and returns how many were deleted.
//
// It iterates with SCAN so a large keyspace never blocks the server the way KEYS would.
func DeleteByPrefix(context stdctx.Context, client redis.UniversalClient, prefix string) (int, error) {
	var (
		cursor  uint64
		deleted int
	)

	for {
		keys, next, err := client.Scan(context, cursor, prefix+"*", scanBatch).Result()
		if err != nil {
			return deleted, fmt.Errorf("redis: scan %q failed: %w", prefix, err)
		}

		if len(keys) > 0 {
			removed, err := client.Del(context, keys...).Result()
			if err != nil {
				return deleted, fmt.Errorf("redis: delete %q failed: %w", prefix, err)
			}
			deleted += int(removed)
		}

		if next == 0 {
			return deleted, nil
		}
		cursor = next
	}
}
