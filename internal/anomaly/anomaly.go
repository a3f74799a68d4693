// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package anomaly detects data quality and distribution problems in the working
set of one competitor.

The detector is read-only. Some kinds drive a correction in package fix; the
others are reported for the analyst and never change data.
*/
package anomaly

// Kind names an anomaly. The set is closed.
type Kind string

const (
	NoVideos            Kind = "NO_VIDEOS"
	UncategorizedVideos Kind = "UNCATEGORIZED_VIDEOS"
	ZeroHero            Kind = "ZERO_HERO"
	ZeroHelp            Kind = "ZERO_HELP"
	HubMonopoly         Kind = "HUB_MONOPOLY"
	TooMuchHero         Kind = "TOO_MUCH_HERO"
	TooMuchHelp         Kind = "TOO_MUCH_HELP"
	InvalidDurations    Kind = "INVALID_DURATIONS"
	NoDurationData      Kind = "NO_DURATION_DATA"
	VeryLong            Kind = "VERY_LONG"
	VeryShort           Kind = "VERY_SHORT"
	CorruptedDates      Kind = "CORRUPTED_DATES"
	DateUniformity      Kind = "DATE_UNIFORMITY"
	NoPlaylists         Kind = "NO_PLAYLISTS"
	TooManyPlaylists    Kind = "TOO_MANY_PLAYLISTS"
	LowEngagement       Kind = "LOW_ENGAGEMENT"
	HighEngagement      Kind = "HIGH_ENGAGEMENT"
	ImpossibleFrequency Kind = "IMPOSSIBLE_FREQUENCY"
)

// Severity ranks an anomaly for the report.
type Severity string

const (
	Critical Severity = "CRITICAL"
	High     Severity = "HIGH"
	Medium   Severity = "MEDIUM"
	Low      Severity = "LOW"
)

var severities = map[Kind]Severity{
	NoVideos:            Critical,
	UncategorizedVideos: High,
	ZeroHero:            High,
	ZeroHelp:            High,
	HubMonopoly:         High,
	TooMuchHero:         Medium,
	TooMuchHelp:         Medium,
	InvalidDurations:    Medium,
	NoDurationData:      High,
	VeryLong:            Medium,
	VeryShort:           Medium,
	CorruptedDates:      High,
	DateUniformity:      Medium,
	NoPlaylists:         Medium,
	TooManyPlaylists:    Low,
	LowEngagement:       Medium,
	HighEngagement:      Low,
	ImpossibleFrequency: High,
}

// SeverityOf returns the fixed severity of a kind.
func SeverityOf(kind Kind) Severity {
	return severities[kind]
}

// IsDataRepair reports whether a kind is corrected from catalog evidence.
func (kind Kind) IsDataRepair() bool {
	switch kind {
	case CorruptedDates, InvalidDurations, NoDurationData:
		return true
	}
	return false
}

// IsLabelFix reports whether a kind is corrected by relabeling videos.
func (kind Kind) IsLabelFix() bool {
	switch kind {
	case UncategorizedVideos, ZeroHelp, ZeroHero, HubMonopoly:
		return true
	}
	return false
}

// Anomaly is one finding for one competitor.
type Anomaly struct {
	CompetitorID string   `json:"competitor_id"`
	Kind         Kind     `json:"kind"`
	Severity     Severity `json:"severity"`
	Details      string   `json:"details"`

	// Count is the number of affected rows, when that makes sense.
	Count int `json:"count,omitempty"`

	// VideoIDs lists the affected videos for data repairs.
	VideoIDs []string `json:"-"`
}
