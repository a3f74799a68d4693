// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Progress is published after every competitor.
type Progress struct {
	RunID        string    `json:"run_id"`
	Step         int       `json:"step"`
	Total        int       `json:"total"`
	CompetitorID string    `json:"competitor_id"`
	Action       string    `json:"action"`
	Outcome      string    `json:"outcome"`
	Stats        Stats     `json:"stats"`
	At           time.Time `json:"at"`
}

// ProgressSink receives progress records. Implementations must be safe for
// concurrent use.
type ProgressSink interface {
	Publish(context context.Context, progress Progress)
}

// # Sinks

// LogSink writes progress records to a logger.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink returns a sink logging to logger, or to the default logger when nil.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

func (sink *LogSink) Publish(context context.Context, progress Progress) {
	sink.logger.InfoContext(context, "run_progress",
		slog.String("run_id", progress.RunID),
		slog.Int("step", progress.Step),
		slog.Int("total", progress.Total),
		slog.String("competitor_id", progress.CompetitorID),
		slog.String("action", progress.Action),
		slog.String("outcome", progress.Outcome),
		slog.Int("fixes", fixCount(progress.Stats)),
	)
}

// LatestSink keeps the last record for status polling.
type LatestSink struct {
	mu     sync.RWMutex
	latest *Progress
}

// NewLatestSink returns an empty sink.
func NewLatestSink() *LatestSink {
	return &LatestSink{}
}

func (sink *LatestSink) Publish(_ context.Context, progress Progress) {
	sink.mu.Lock()
	defer sink.mu.Unlock()
	sink.latest = &progress
}

// Latest returns the last record, if any.
func (sink *LatestSink) Latest() (Progress, bool) {
	sink.mu.RLock()
	defer sink.mu.RUnlock()
	if sink.latest == nil {
		return Progress{}, false
	}
	return *sink.latest, true
}

// Reset forgets the last record.
func (sink *LatestSink) Reset() {
	sink.mu.Lock()
	sink.latest = nil
	sink.mu.Unlock()
}

// MultiSink fans a record out to several sinks.
type MultiSink []ProgressSink

func (sinks MultiSink) Publish(context context.Context, progress Progress) {
	for _, sink := range sinks {
		if sink != nil {
			sink.Publish(context, progress)
		}
	}
}

func fixCount(stats Stats) int {
	total := stats.Propagations
	for _, count := range stats.FixesByKind {
		total += count
	}
	return total
}
