// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pipeline

import (
	"strings"

	"github.com/taibuivan/channelscope/internal/fix"
	"github.com/taibuivan/channelscope/internal/platform/apperr"
	"github.com/taibuivan/channelscope/internal/platform/config"
	"github.com/taibuivan/channelscope/internal/platform/validate"
)

// maxConcurrency bounds competitor fan-out.
const maxConcurrency = 16

// Options are the settings of one run.
type Options struct {
	PaidThreshold            int64        `json:"paid_threshold"`
	HighPerformanceThreshold int64        `json:"high_performance_threshold"`
	MaxVideosPerChannel      int          `json:"max_videos_per_channel"`
	SentinelImportDates      []string     `json:"sentinel_import_dates"`
	FrequencyCap             float64      `json:"frequency_cap"`
	ZeroHelpFixCap           int          `json:"zero_help_fix_cap"`
	ZeroHeroFixCap           int          `json:"zero_hero_fix_cap"`
	CorruptedDatesResolver   fix.Resolver `json:"corrupted_dates_resolver"`
	Concurrency              int          `json:"concurrency"`

	// CompetitorIDs restricts the run; empty means every competitor.
	CompetitorIDs []string `json:"competitor_ids,omitempty"`
	// Offline skips every catalog call.
	Offline bool `json:"offline"`
}

// OptionsFromConfig returns the process defaults as run options.
func OptionsFromConfig(defaults config.RunDefaults) Options {
	return Options{
		PaidThreshold:            defaults.PaidThreshold,
		HighPerformanceThreshold: defaults.HighPerformanceThreshold,
		MaxVideosPerChannel:      defaults.MaxVideosPerChannel,
		SentinelImportDates:      trimAll(defaults.SentinelImportDates),
		FrequencyCap:             defaults.FrequencyCap,
		ZeroHelpFixCap:           defaults.ZeroHelpFixCap,
		ZeroHeroFixCap:           defaults.ZeroHeroFixCap,
		CorruptedDatesResolver:   fix.Resolver(strings.ToLower(strings.TrimSpace(defaults.CorruptedDatesResolver))),
		Concurrency:              defaults.Concurrency,
	}
}

// DefaultOptions are the documented defaults, used by tests and the offline CLI.
func DefaultOptions() Options {
	return Options{
		PaidThreshold:            10_000,
		HighPerformanceThreshold: 100_000,
		MaxVideosPerChannel:      1_000,
		FrequencyCap:             3.0,
		ZeroHelpFixCap:           50,
		ZeroHeroFixCap:           5,
		CorruptedDatesResolver:   fix.ResolverCatalogFirst,
		Concurrency:              1,
	}
}

/*
Validate rejects out-of-domain values before the first phase.

Returns:
  - error: InputError listing every failing field
*/
func (options Options) Validate() error {
	validator := &validate.Validator{}
	validator.
		Min("paid_threshold", options.PaidThreshold, 1).
		Min("high_performance_threshold", options.HighPerformanceThreshold, 1).
		Min("max_videos_per_channel", int64(options.MaxVideosPerChannel), 0).
		FloatRange("frequency_cap", options.FrequencyCap, 0.1, 100).
		Range("zero_help_fix_cap", options.ZeroHelpFixCap, 0, 10_000).
		Range("zero_hero_fix_cap", options.ZeroHeroFixCap, 0, 10_000).
		Range("concurrency", options.Concurrency, 1, maxConcurrency).
		OneOf("corrupted_dates_resolver", string(options.CorruptedDatesResolver),
			string(fix.ResolverCatalogFirst), string(fix.ResolverRefetchOnly))

	for _, date := range options.SentinelImportDates {
		validator.Date("sentinel_import_dates", date)
	}

	err := validator.Err()
	if err == nil {
		return nil
	}

	if appErr := apperr.As(err); appErr != nil {
		return apperr.Input("Invalid run options", appErr.Details...)
	}
	return apperr.Input(err.Error())
}

// Overrides are the per-run changes accepted by the ops API.
type Overrides struct {
	PaidThreshold            *int64   `json:"paid_threshold"`
	HighPerformanceThreshold *int64   `json:"high_performance_threshold"`
	MaxVideosPerChannel      *int     `json:"max_videos_per_channel"`
	SentinelImportDates      []string `json:"sentinel_import_dates"`
	FrequencyCap             *float64 `json:"frequency_cap"`
	ZeroHelpFixCap           *int     `json:"zero_help_fix_cap"`
	ZeroHeroFixCap           *int     `json:"zero_hero_fix_cap"`
	CorruptedDatesResolver   *string  `json:"corrupted_dates_resolver"`
	Concurrency              *int     `json:"concurrency"`
	CompetitorIDs            []string `json:"competitor_ids"`
	Offline                  *bool    `json:"offline"`
}

// Apply returns options with every set override replaced.
func (overrides Overrides) Apply(options Options) Options {
	if overrides.PaidThreshold != nil {
		options.PaidThreshold = *overrides.PaidThreshold
	}
	if overrides.HighPerformanceThreshold != nil {
		options.HighPerformanceThreshold = *overrides.HighPerformanceThreshold
	}
	if overrides.MaxVideosPerChannel != nil {
		options.MaxVideosPerChannel = *overrides.MaxVideosPerChannel
	}
	if overrides.SentinelImportDates != nil {
		options.SentinelImportDates = trimAll(overrides.SentinelImportDates)
	}
	if overrides.FrequencyCap != nil {
		options.FrequencyCap = *overrides.FrequencyCap
	}
	if overrides.ZeroHelpFixCap != nil {
		options.ZeroHelpFixCap = *overrides.ZeroHelpFixCap
	}
	if overrides.ZeroHeroFixCap != nil {
		options.ZeroHeroFixCap = *overrides.ZeroHeroFixCap
	}
	if overrides.CorruptedDatesResolver != nil {
		options.CorruptedDatesResolver = fix.Resolver(strings.ToLower(strings.TrimSpace(*overrides.CorruptedDatesResolver)))
	}
	if overrides.Concurrency != nil {
		options.Concurrency = *overrides.Concurrency
	}
	if overrides.CompetitorIDs != nil {
		options.CompetitorIDs = trimAll(overrides.CompetitorIDs)
	}
	if overrides.Offline != nil {
		options.Offline = *overrides.Offline
	}
	return options
}

func trimAll(values []string) []string {
	result := make([]string, 0, len(values))
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			result = append(result, value)
		}
	}
	return result
}
