// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package aggregate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/channelscope/internal/platform/constants"
	redisutil "github.com/taibuivan/channelscope/internal/platform/redis"
)

// Cache stores metric read models as JSON documents.
type Cache interface {
	// Get decodes the entry at key into target and reports whether it existed.
	Get(context context.Context, key string, target any) (bool, error)
	Set(context context.Context, key string, value any) error
	// Invalidate removes every metric entry.
	Invalidate(context context.Context) (int, error)
}

// Cache keys.
func competitorKey(id string) string   { return constants.RedisPrefixCompetitorMetrics + id }
func countryKey(country string) string { return constants.RedisPrefixCountryMetrics + country }

// # Redis

// RedisCache is the shared metric cache.
type RedisCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisCache builds a cache with the default TTL.
func NewRedisCache(client redis.UniversalClient) *RedisCache {
	return &RedisCache{client: client, ttl: constants.MetricsCacheTTL}
}

func (cache *RedisCache) Get(context context.Context, key string, target any) (bool, error) {
	payload, err := cache.client.Get(context, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis_metrics_get_failed: %w", err)
	}

	if err := json.Unmarshal(payload, target); err != nil {
		// A document from an older layout is treated as a miss.
		return false, nil
	}
	return true, nil
}

func (cache *RedisCache) Set(context context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("redis_metrics_encode_failed: %w", err)
	}
	if err := cache.client.Set(context, key, payload, cache.ttl).Err(); err != nil {
		return fmt.Errorf("redis_metrics_set_failed: %w", err)
	}
	return nil
}

func (cache *RedisCache) Invalidate(context context.Context) (int, error) {
	return redisutil.DeleteByPrefix(context, cache.client, constants.RedisPrefixMetrics)
}

// # Memory

// MemoryCache is a process-local cache used when Redis is not configured.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

// NewMemoryCache returns an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string][]byte)}
}

func (cache *MemoryCache) Get(_ context.Context, key string, target any) (bool, error) {
	cache.mu.Lock()
	payload, ok := cache.entries[key]
	cache.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(payload, target)
}

func (cache *MemoryCache) Set(_ context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	cache.mu.Lock()
	defer cache.mu.Unlock()
	cache.entries[key] = payload
	return nil
}

func (cache *MemoryCache) Invalidate(_ context.Context) (int, error) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	removed := len(cache.entries)
	cache.entries = make(map[string][]byte)
	return removed, nil
}

// Len returns the number of cached entries.
func (cache *MemoryCache) Len() int {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	return len(cache.entries)
}
