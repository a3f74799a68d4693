// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pipeline

import (
	"sort"
	"sync"
	"time"

	"github.com/taibuivan/channelscope/internal/anomaly"
	"github.com/taibuivan/channelscope/internal/catalog"
	"github.com/taibuivan/channelscope/internal/fix"
	"github.com/taibuivan/channelscope/internal/platform/apperr"
)

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusPartial   = "partial"
	StatusCancelled = "cancelled"
	StatusFailed    = "failed"
)

// Competitor outcomes.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
	OutcomeSkipped   = "skipped"
)

// Report is the machine-readable result of one run.
type Report struct {
	ID          string              `json:"id"`
	Status      string              `json:"status"`
	StartedAt   time.Time           `json:"started_at"`
	FinishedAt  *time.Time          `json:"finished_at,omitempty"`
	Options     Options             `json:"options"`
	Stats       Stats               `json:"stats"`
	Competitors []CompetitorSummary `json:"competitors"`
	Anomalies   []anomaly.Anomaly   `json:"anomalies"`
	Fixes       []fix.Audit         `json:"fixes"`
	Notes       []string            `json:"notes,omitempty"`
	Errors      []ErrorRecord       `json:"errors,omitempty"`
}

// Stats are the run-wide counters.
type Stats struct {
	Competitors             int            `json:"competitors"`
	VideosUpdated           int            `json:"videos_updated"`
	VideosAdded             int            `json:"videos_added"`
	PlaylistsAdded          int            `json:"playlists_added"`
	DatesCorrected          int            `json:"dates_corrected"`
	DurationsFixed          int            `json:"durations_fixed"`
	ClassificationsApplied  int            `json:"classifications_applied"`
	Propagations            int            `json:"propagations"`
	MembershipsLinked       int            `json:"memberships_linked"`
	FixesByKind             map[string]int `json:"fixes_by_kind"`
	SkippedHumanProtected   int            `json:"skipped_human_protected"`
	FrequencyOutliers       int            `json:"frequency_outliers"`
	CacheEntriesInvalidated int            `json:"cache_entries_invalidated"`
}

// CompetitorSummary groups what happened to one competitor.
type CompetitorSummary struct {
	CompetitorID string `json:"competitor_id"`
	Name         string `json:"name"`
	Outcome      string `json:"outcome"`
	// Phase is the last phase committed.
	Phase int `json:"phase"`

	Anomalies  []anomaly.Anomaly `json:"anomalies"`
	Remaining  []anomaly.Kind    `json:"remaining,omitempty"`
	Fixes      int               `json:"fixes"`
	Skipped    int               `json:"skipped_human_protected"`
	Unresolved []string          `json:"unresolved,omitempty"`
	Notes      []string          `json:"notes,omitempty"`
	Error      *ErrorRecord      `json:"error,omitempty"`
}

// ErrorRecord is an unresolved error kept in the report.
type ErrorRecord struct {
	CompetitorID string `json:"competitor_id,omitempty"`
	Phase        string `json:"phase,omitempty"`
	Code         string `json:"code"`
	Message      string `json:"message"`
}

// newErrorRecord classifies err for the report.
func newErrorRecord(competitorID, phase string, err error) ErrorRecord {
	record := ErrorRecord{CompetitorID: competitorID, Phase: phase, Code: "INTERNAL_ERROR", Message: err.Error()}
	if appErr := apperr.As(err); appErr != nil {
		record.Code = appErr.Code
		if appErr.Cause != nil {
			record.Message = appErr.Message + ": " + appErr.Cause.Error()
		}
	}
	return record
}

// # Accumulation

// collector gathers competitor results while workers run concurrently.
type collector struct {
	mu     sync.Mutex
	report *Report
}

func newCollector(report *Report) *collector {
	if report.Stats.FixesByKind == nil {
		report.Stats.FixesByKind = make(map[string]int)
	}
	return &collector{report: report}
}

// add folds one competitor result into the report.
func (c *collector) add(result *competitorResult) Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	report := c.report
	stats := &report.Stats

	stats.Competitors++
	stats.VideosUpdated += result.stats.VideosUpdated
	stats.VideosAdded += result.stats.VideosAdded
	stats.PlaylistsAdded += result.stats.PlaylistsAdded
	stats.DatesCorrected += result.stats.DatesCorrected
	stats.DurationsFixed += result.stats.DurationsFixed
	stats.ClassificationsApplied += result.stats.ClassificationsApplied
	stats.Propagations += result.stats.Propagations
	stats.MembershipsLinked += result.stats.MembershipsLinked
	stats.SkippedHumanProtected += result.stats.SkippedHumanProtected
	stats.FrequencyOutliers += result.stats.FrequencyOutliers
	for kind, count := range result.stats.FixesByKind {
		stats.FixesByKind[kind] += count
	}

	report.Competitors = append(report.Competitors, result.summary)
	report.Anomalies = append(report.Anomalies, result.summary.Anomalies...)
	report.Fixes = append(report.Fixes, result.audits...)
	if result.summary.Error != nil {
		report.Errors = append(report.Errors, *result.summary.Error)
	}
	report.Errors = append(report.Errors, result.warnings...)

	return *stats
}

// finish orders the report so the output does not depend on worker timing.
func (c *collector) finish() {
	c.mu.Lock()
	defer c.mu.Unlock()

	report := c.report
	sort.SliceStable(report.Competitors, func(i, j int) bool {
		return report.Competitors[i].CompetitorID < report.Competitors[j].CompetitorID
	})
	sort.SliceStable(report.Anomalies, func(i, j int) bool {
		return report.Anomalies[i].CompetitorID < report.Anomalies[j].CompetitorID
	})
	sort.SliceStable(report.Fixes, func(i, j int) bool {
		return report.Fixes[i].CompetitorID < report.Fixes[j].CompetitorID
	})
	sort.SliceStable(report.Errors, func(i, j int) bool {
		return report.Errors[i].CompetitorID < report.Errors[j].CompetitorID
	})
}

// competitorResult is what one competitor contributes to the report.
type competitorResult struct {
	summary  CompetitorSummary
	stats    Stats
	audits   []fix.Audit
	warnings []ErrorRecord

	// pendingSnapshot is committed with the aggregate phase.
	pendingSnapshot *catalog.MetricsSnapshot
}

func newCompetitorResult(competitorID, name string) *competitorResult {
	return &competitorResult{
		summary: CompetitorSummary{CompetitorID: competitorID, Name: name, Outcome: OutcomeSucceeded},
		stats:   Stats{FixesByKind: make(map[string]int)},
	}
}

// record counts an applier outcome under kind.
func (result *competitorResult) record(kind string, outcome fix.Outcome) {
	applied := outcome.Applied()
	result.audits = append(result.audits, outcome.Audits...)
	result.summary.Fixes += applied
	result.summary.Skipped += outcome.SkippedProtected
	result.stats.SkippedHumanProtected += outcome.SkippedProtected

	switch anomaly.Kind(kind) {
	case anomaly.CorruptedDates:
		result.stats.DatesCorrected += applied
	case anomaly.InvalidDurations, anomaly.NoDurationData:
		result.stats.DurationsFixed += applied
	case anomaly.UncategorizedVideos:
		result.stats.ClassificationsApplied += applied
	}
	if kind == fix.KindPropagation {
		result.stats.Propagations += applied
		return
	}
	if applied > 0 {
		result.stats.FixesByKind[kind] += applied
	}
}

// fail marks the competitor as failed in phase.
func (result *competitorResult) fail(phase string, err error) {
	record := newErrorRecord(result.summary.CompetitorID, phase, err)
	result.summary.Outcome = OutcomeFailed
	result.summary.Error = &record
}

// warn keeps a non-fatal error, such as a skipped catalog batch.
func (result *competitorResult) warn(phase string, err error) {
	result.warnings = append(result.warnings, newErrorRecord(result.summary.CompetitorID, phase, err))
}
