// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package telemetry owns the Prometheus collectors of the engine and the ops API.

Collectors are registered on an injected [prometheus.Registerer] instead of the
global default, so tests and the one-shot CLI can build isolated instances.

Every recording method is nil-safe: components accept a *Metrics and callers
that do not care about metrics simply pass nil.
*/
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "channelscope"

// Metrics holds all Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	requestDuration    *prometheus.HistogramVec
	phaseDuration      *prometheus.HistogramVec
	competitorsTotal   *prometheus.CounterVec
	fixesTotal         *prometheus.CounterVec
	protectedSkips     prometheus.Counter
	catalogCallsTotal  *prometheus.CounterVec
	cacheLookupsTotal  *prometheus.CounterVec
	runsTotal          *prometheus.CounterVec
	runInProgressGauge prometheus.Gauge
}

// New builds and registers every collector on a fresh registry, together with
// the standard Go runtime and process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	metrics := &Metrics{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "HTTP request duration in seconds, by route, method and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		phaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "phase_duration_seconds",
			Help:      "Duration of one pipeline phase for one competitor.",
			Buckets:   []float64{0.05, 0.25, 1, 5, 15, 60, 180, 600},
		}, []string{"phase"}),
		competitorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "competitors_processed_total",
			Help:      "Competitors processed by a run, by outcome.",
		}, []string{"outcome"}),
		fixesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fixes_applied_total",
			Help:      "Anomaly-driven corrections written, by anomaly kind.",
		}, []string{"kind"}),
		protectedSkips: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_human_protected_total",
			Help:      "Automatic writes dropped because the target carries a human label.",
		}),
		catalogCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_calls_total",
			Help:      "Calls to the upstream video catalog, by operation and outcome.",
		}, []string{"operation", "outcome"}),
		cacheLookupsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "metrics_cache_lookups_total",
			Help:      "Metric cache lookups, by result.",
		}, []string{"result"}),
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Pipeline runs, by final status.",
		}, []string{"status"}),
		runInProgressGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_in_progress",
			Help:      "1 while a pipeline run is executing in this process.",
		}),
	}

	registry.MustRegister(
		metrics.requestDuration,
		metrics.phaseDuration,
		metrics.competitorsTotal,
		metrics.fixesTotal,
		metrics.protectedSkips,
		metrics.catalogCallsTotal,
		metrics.cacheLookupsTotal,
		metrics.runsTotal,
		metrics.runInProgressGauge,
	)

	return metrics
}

// Handler exposes the registry for scraping.
func (metrics *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(metrics.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry, mainly for tests.
func (metrics *Metrics) Registry() *prometheus.Registry {
	return metrics.registry
}

// # Recording

// ObserveRequest implements the middleware request observer.
func (metrics *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if metrics == nil {
		return
	}
	metrics.requestDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// ObservePhase records how long a phase took for one competitor.
func (metrics *Metrics) ObservePhase(phase string, elapsed time.Duration) {
	if metrics == nil {
		return
	}
	metrics.phaseDuration.WithLabelValues(phase).Observe(elapsed.Seconds())
}

// CompetitorProcessed counts a competitor outcome ("ok", "failed", "cancelled").
func (metrics *Metrics) CompetitorProcessed(outcome string) {
	if metrics == nil {
		return
	}
	metrics.competitorsTotal.WithLabelValues(outcome).Inc()
}

// FixesApplied counts corrections written for an anomaly kind.
func (metrics *Metrics) FixesApplied(kind string, count int) {
	if metrics == nil || count == 0 {
		return
	}
	metrics.fixesTotal.WithLabelValues(kind).Add(float64(count))
}

// HumanProtectedSkipped counts writes dropped by the human-label guard.
func (metrics *Metrics) HumanProtectedSkipped(count int) {
	if metrics == nil || count == 0 {
		return
	}
	metrics.protectedSkips.Add(float64(count))
}

// CatalogCall counts one upstream call outcome ("ok", "transient", "permanent").
func (metrics *Metrics) CatalogCall(operation, outcome string) {
	if metrics == nil {
		return
	}
	metrics.catalogCallsTotal.WithLabelValues(operation, outcome).Inc()
}

// CacheLookup counts a metric cache hit or miss.
func (metrics *Metrics) CacheLookup(hit bool) {
	if metrics == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	metrics.cacheLookupsTotal.WithLabelValues(result).Inc()
}

// RunStarted flips the in-progress gauge.
func (metrics *Metrics) RunStarted() {
	if metrics == nil {
		return
	}
	metrics.runInProgressGauge.Set(1)
}

// RunFinished records the final status of a run and clears the gauge.
func (metrics *Metrics) RunFinished(status string) {
	if metrics == nil {
		return
	}
	metrics.runInProgressGauge.Set(0)
	metrics.runsTotal.WithLabelValues(status).Inc()
}
