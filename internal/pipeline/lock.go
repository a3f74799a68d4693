// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/channelscope/internal/platform/apperr"
	"github.com/taibuivan/channelscope/internal/platform/constants"
	"github.com/taibuivan/channelscope/pkg/slice"
)

// Locker keeps concurrent runs on overlapping competitor sets apart.
//
// Acquire takes every lock or none. A competitor already held yields a
// CONFLICT error naming it.
type Locker interface {
	Acquire(context context.Context, runID string, competitorIDs []string) error
	Release(context context.Context, runID string, competitorIDs []string) error
}

// # Redis

// releaseScript deletes a lock only while it still belongs to the run.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker stores one key per competitor, valued with the run id.
type RedisLocker struct {
	client redis.UniversalClient
}

// NewRedisLocker returns a locker backed by Redis.
func NewRedisLocker(client redis.UniversalClient) *RedisLocker {
	return &RedisLocker{client: client}
}

/*
Acquire locks competitorIDs for runID.

Description: Keys are taken in sorted order with SET NX and a TTL that
outlives a run. On the first competitor already held, every key taken so
far is released.

Returns:
  - error: CONFLICT when a competitor is held by another run
*/
func (locker *RedisLocker) Acquire(context context.Context, runID string, competitorIDs []string) error {
	ids := sortedUnique(competitorIDs)

	var taken []string
	for _, id := range ids {
		ok, err := locker.client.SetNX(context, lockKey(id), runID, constants.RunLockTTL).Result()
		if err != nil {
			_ = locker.Release(context, runID, taken)
			return fmt.Errorf("redis_lock_failed: %w", err)
		}
		if !ok {
			_ = locker.Release(context, runID, taken)
			return apperr.Conflict("Competitor " + id + " is locked by another run")
		}
		taken = append(taken, id)
	}
	return nil
}

// Release drops the locks of runID; locks held by other runs are untouched.
func (locker *RedisLocker) Release(context context.Context, runID string, competitorIDs []string) error {
	var errs []string
	for _, id := range competitorIDs {
		if err := releaseScript.Run(context, locker.client, []string{lockKey(id)}, runID).Err(); err != nil && !errors.Is(err, redis.Nil) {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("redis_unlock_failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func lockKey(competitorID string) string {
	return constants.RedisPrefixRunLock + competitorID
}

// # Memory

// MemoryLocker is the single-process locker used without Redis.
type MemoryLocker struct {
	mu    sync.Mutex
	owner map[string]string
}

// NewMemoryLocker returns an empty locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{owner: make(map[string]string)}
}

func (locker *MemoryLocker) Acquire(_ context.Context, runID string, competitorIDs []string) error {
	locker.mu.Lock()
	defer locker.mu.Unlock()

	ids := sortedUnique(competitorIDs)
	for _, id := range ids {
		if owner, held := locker.owner[id]; held && owner != runID {
			return apperr.Conflict("Competitor " + id + " is locked by another run")
		}
	}
	for _, id := range ids {
		locker.owner[id] = runID
	}
	return nil
}

func (locker *MemoryLocker) Release(_ context.Context, runID string, competitorIDs []string) error {
	locker.mu.Lock()
	defer locker.mu.Unlock()

	for _, id := range competitorIDs {
		if locker.owner[id] == runID {
			delete(locker.owner, id)
		}
	}
	return nil
}

func sortedUnique(values []string) []string {
	result := slice.UniqueBy(values, func(value string) string { return value })
	sort.Strings(result)
	return result
}
