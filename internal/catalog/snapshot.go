// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import "time"

// # Metrics Snapshot

// MetricsSnapshot is the denormalized per-competitor roll-up. It is replaced,
// never appended, on each aggregation.
type MetricsSnapshot struct {
	CompetitorID    string    `json:"competitor_id"`
	CompetitorName  string    `json:"competitor_name"`
	Country         string    `json:"country"`
	SubscriberCount int64     `json:"subscriber_count"`
	ComputedAt      time.Time `json:"computed_at"`
	PaidThreshold   int64     `json:"paid_threshold"`

	Totals     Totals           `json:"totals"`
	Means      Means            `json:"means"`
	Engagement float64          `json:"engagement_rate"`
	Duration   DurationStats    `json:"duration"`
	HHH        Distribution     `json:"hhh"`
	Organic    OrganicSplit     `json:"organic_vs_paid"`
	Shorts     ShortsSplit      `json:"shorts_vs_regular"`
	Frequency  Frequency        `json:"frequency"`
	Matrix     PerformanceTable `json:"performance_matrix"`
}

// Totals are raw sums over every video of the competitor.
type Totals struct {
	Videos   int   `json:"videos"`
	Views    int64 `json:"views"`
	Likes    int64 `json:"likes"`
	Comments int64 `json:"comments"`
}

// Means are per-video averages.
type Means struct {
	Views    float64 `json:"views_per_video"`
	Likes    float64 `json:"likes_per_video"`
	Comments float64 `json:"comments_per_video"`
}

// DurationStats summarizes positive durations in seconds. Count is the number
// of videos with a known duration.
type DurationStats struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean_seconds"`
	Min   int     `json:"min_seconds"`
	Max   int     `json:"max_seconds"`
}

// Distribution is the HHH breakdown over classified videos.
type Distribution struct {
	Classified int     `json:"classified"`
	Hero       int     `json:"hero"`
	Hub        int     `json:"hub"`
	Help       int     `json:"help"`
	HeroPct    float64 `json:"hero_pct"`
	HubPct     float64 `json:"hub_pct"`
	HelpPct    float64 `json:"help_pct"`
}

// Count returns the count recorded for c.
func (d Distribution) Count(c Category) int {
	switch c {
	case CategoryHero:
		return d.Hero
	case CategoryHub:
		return d.Hub
	case CategoryHelp:
		return d.Help
	default:
		return 0
	}
}

// OrganicSplit partitions videos with a known view count by the paid threshold.
type OrganicSplit struct {
	Known      int     `json:"known"`
	Organic    int     `json:"organic"`
	Paid       int     `json:"paid"`
	OrganicPct float64 `json:"organic_pct"`
	PaidPct    float64 `json:"paid_pct"`
}

// ShortsSplit partitions videos with a known duration into Shorts and regular videos.
type ShortsSplit struct {
	Known      int     `json:"known"`
	Shorts     int     `json:"shorts"`
	Regular    int     `json:"regular"`
	ShortsPct  float64 `json:"shorts_pct"`
	RegularPct float64 `json:"regular_pct"`
}

// Frequency is the publication cadence estimate.
//
// VideosPerWeek is nil when fewer than two distinct publication dates exist.
// When the raw value exceeds the outlier threshold it is replaced by the
// configured cap and Outlier is set.
type Frequency struct {
	ActiveWeeks       *float64         `json:"active_weeks"`
	RawVideosPerWeek  *float64         `json:"raw_videos_per_week"`
	VideosPerWeek     *float64         `json:"videos_per_week"`
	ShortsPerWeek     *float64         `json:"shorts_per_week"`
	ByCategory        *CategoryCadence `json:"category_videos_per_week"`
	Outlier           bool             `json:"frequency_outlier"`
	MostActiveWeekday string           `json:"most_active_weekday,omitempty"`
	DatedVideos       int              `json:"dated_videos"`
}

// CategoryCadence is the weekly publication rate of each HHH category over
// the competitor's active span, rounded to one decimal.
type CategoryCadence struct {
	Hero float64 `json:"hero"`
	Hub  float64 `json:"hub"`
	Help float64 `json:"help"`
}

// PerformanceCell is the organic/paid view profile of one HHH category.
type PerformanceCell struct {
	OrganicCount       int     `json:"organic_count"`
	PaidCount          int     `json:"paid_count"`
	OrganicMedianViews float64 `json:"organic_median_views"`
	PaidMedianViews    float64 `json:"paid_median_views"`
}

// PerformanceTable holds one cell per HHH category.
type PerformanceTable struct {
	Hero PerformanceCell `json:"hero"`
	Hub  PerformanceCell `json:"hub"`
	Help PerformanceCell `json:"help"`
}

// Cell returns a pointer to the cell for c, or nil for an unset category.
func (t *PerformanceTable) Cell(c Category) *PerformanceCell {
	switch c {
	case CategoryHero:
		return &t.Hero
	case CategoryHub:
		return &t.Hub
	case CategoryHelp:
		return &t.Help
	default:
		return nil
	}
}
