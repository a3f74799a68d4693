// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package aggregate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/channelscope/internal/catalog"
	"github.com/taibuivan/channelscope/internal/platform/apperr"
	"github.com/taibuivan/channelscope/internal/platform/constants"
	"github.com/taibuivan/channelscope/internal/platform/ctxutil"
	"github.com/taibuivan/channelscope/internal/platform/telemetry"
)

// Service serves metric read models with cache-aside.
//
// Cache failures never fail a read: the value is recomputed from the store.
type Service struct {
	reader  catalog.Reader
	cache   Cache
	metrics *telemetry.Metrics
}

// NewService builds the metrics service.
func NewService(reader catalog.Reader, cache Cache, metrics *telemetry.Metrics) *Service {
	if cache == nil {
		cache = NewMemoryCache()
	}
	return &Service{reader: reader, cache: cache, metrics: metrics}
}

/*
CompetitorMetrics returns the stored snapshot of a competitor.

Parameters:
  - context: context.Context
  - competitorID: string

Returns:
  - *catalog.MetricsSnapshot
  - error: NotFound when no aggregation ran yet
*/
func (service *Service) CompetitorMetrics(context context.Context, competitorID string) (*catalog.MetricsSnapshot, error) {
	var snapshot catalog.MetricsSnapshot
	if service.lookup(context, competitorKey(competitorID), &snapshot) {
		return &snapshot, nil
	}

	stored, err := service.reader.GetSnapshot(context, competitorID)
	if err != nil {
		return nil, err
	}
	service.store(context, competitorKey(competitorID), stored)
	return stored, nil
}

/*
CountryMetrics returns the local and national-market scopes of a country.

Parameters:
  - context: context.Context
  - country: string (Name or two-letter code)

Returns:
  - *CountryMetrics
  - error: Input error for an unknown country
*/
func (service *Service) CountryMetrics(context context.Context, country string) (*CountryMetrics, error) {
	resolved, ok := ParseCountry(country)
	if !ok {
		return nil, apperr.Input(fmt.Sprintf("unknown country %q", country))
	}
	country = resolved

	var cached CountryMetrics
	if service.lookup(context, countryKey(country), &cached) {
		return &cached, nil
	}

	competitors, snapshots, err := service.load(context)
	if err != nil {
		return nil, err
	}

	metrics := ComputeCountry(country, competitors, snapshots)
	service.store(context, countryKey(country), metrics)
	return &metrics, nil
}

// EuropeMetrics returns the union scope of every country.
func (service *Service) EuropeMetrics(context context.Context) (*EuropeMetrics, error) {
	var cached EuropeMetrics
	if service.lookup(context, constants.RedisKeyEuropeMetrics, &cached) {
		return &cached, nil
	}

	competitors, snapshots, err := service.load(context)
	if err != nil {
		return nil, err
	}

	metrics := ComputeEurope(competitors, snapshots)
	service.store(context, constants.RedisKeyEuropeMetrics, metrics)
	return &metrics, nil
}

// Invalidate drops every cached metric. It is the last phase of a run.
func (service *Service) Invalidate(context context.Context) (int, error) {
	removed, err := service.cache.Invalidate(context)
	if err != nil {
		return removed, fmt.Errorf("metrics cache invalidation: %w", err)
	}
	return removed, nil
}

// # Internals

func (service *Service) load(context context.Context) ([]*catalog.Competitor, map[string]*catalog.MetricsSnapshot, error) {
	competitors, err := service.reader.ListCompetitors(context)
	if err != nil {
		return nil, nil, err
	}
	list, err := service.reader.ListSnapshots(context)
	if err != nil {
		return nil, nil, err
	}

	snapshots := make(map[string]*catalog.MetricsSnapshot, len(list))
	for _, snapshot := range list {
		snapshots[snapshot.CompetitorID] = snapshot
	}
	return competitors, snapshots, nil
}

func (service *Service) lookup(context context.Context, key string, target any) bool {
	hit, err := service.cache.Get(context, key, target)
	if err != nil {
		ctxutil.GetLogger(context).Warn("metrics_cache_read_failed", slog.String("key", key), slog.Any("error", err))
		hit = false
	}
	service.metrics.CacheLookup(hit)
	return hit
}

func (service *Service) store(context context.Context, key string, value any) {
	if err := service.cache.Set(context, key, value); err != nil {
		ctxutil.GetLogger(context).Warn("metrics_cache_write_failed", slog.String("key", key), slog.Any("error", err))
	}
}
