// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package anomaly

import (
	"fmt"
	"time"

	"github.com/taibuivan/channelscope/internal/aggregate"
	"github.com/taibuivan/channelscope/internal/catalog"
	"github.com/taibuivan/channelscope/internal/platform/constants"
)

// Thresholds of the distribution and quality checks.
const (
	zeroHelpMinClassified = 20
	hubMonopolyShare      = 95.0
	dominantShare         = 80.0
	veryLongMeanSeconds   = 3600.0
	veryShortMeanSeconds  = 30.0
	uniformityMinVideos   = 10
	uniformityMinDates    = 3
	tooManyPlaylists      = 100
	lowEngagementPercent  = 0.1
	highEngagementPercent = 10.0
)

// Detector scans a working set for anomalies.
type Detector struct {
	sentinels map[string]struct{}
}

// NewDetector builds a detector. sentinelDates are YYYY-MM-DD values that
// mark a publication date as a bulk-import artifact.
func NewDetector(sentinelDates []string) *Detector {
	sentinels := make(map[string]struct{}, len(sentinelDates))
	for _, date := range sentinelDates {
		sentinels[date] = struct{}{}
	}
	return &Detector{sentinels: sentinels}
}

// IsSentinel reports whether t falls on a sentinel import date.
func (detector *Detector) IsSentinel(t time.Time) bool {
	if t.IsZero() || len(detector.sentinels) == 0 {
		return false
	}
	_, ok := detector.sentinels[t.UTC().Format(time.DateOnly)]
	return ok
}

/*
Detect returns every anomaly of a competitor in a fixed kind order.

Description: Only the working set is read. Distribution checks run on
classified videos; quality checks run on durations, dates, playlists and
engagement.

Parameters:
  - state: *catalog.State

Returns:
  - []Anomaly: Empty when the competitor is healthy
*/
func (detector *Detector) Detect(state *catalog.State) []Anomaly {
	found := &collector{competitorID: state.Competitor.ID}

	if len(state.Videos) == 0 {
		found.add(NoVideos, 0, nil, "competitor has no videos")
		detector.checkPlaylists(state, found)
		return found.items
	}

	detector.checkLabels(state, found)
	detector.checkDurations(state, found)
	detector.checkDates(state, found)
	detector.checkPlaylists(state, found)
	detector.checkEngagement(state, found)

	return found.items
}

// Holds reports whether kind is currently present in state.
func (detector *Detector) Holds(state *catalog.State, kind Kind) bool {
	for _, anomaly := range detector.Detect(state) {
		if anomaly.Kind == kind {
			return true
		}
	}
	return false
}

// Find returns the anomaly of the given kind, if present.
func (detector *Detector) Find(state *catalog.State, kind Kind) (Anomaly, bool) {
	for _, anomaly := range detector.Detect(state) {
		if anomaly.Kind == kind {
			return anomaly, true
		}
	}
	return Anomaly{}, false
}

// # Checks

func (detector *Detector) checkLabels(state *catalog.State, found *collector) {
	var hero, hub, help int
	var uncategorized []string

	for _, video := range state.Videos {
		switch video.Category {
		case catalog.CategoryHero:
			hero++
		case catalog.CategoryHub:
			hub++
		case catalog.CategoryHelp:
			help++
		default:
			uncategorized = append(uncategorized, video.ID)
		}
	}

	if len(uncategorized) > 0 {
		found.add(UncategorizedVideos, len(uncategorized), uncategorized,
			fmt.Sprintf("%d videos (%.1f%%) are not classified", len(uncategorized), percent(len(uncategorized), len(state.Videos))))
	}

	classified := hero + hub + help
	if classified == 0 {
		return
	}

	heroShare := percent(hero, classified)
	helpShare := percent(help, classified)
	hubShare := percent(hub, classified)

	if hero == 0 {
		found.add(ZeroHero, classified, nil, fmt.Sprintf("no HERO content among %d classified videos", classified))
	} else if heroShare > dominantShare {
		found.add(TooMuchHero, hero, nil, fmt.Sprintf("%.1f%% HERO", heroShare))
	}

	if help == 0 && classified >= zeroHelpMinClassified {
		found.add(ZeroHelp, classified, nil, fmt.Sprintf("no HELP content among %d classified videos", classified))
	} else if helpShare > dominantShare {
		found.add(TooMuchHelp, help, nil, fmt.Sprintf("%.1f%% HELP", helpShare))
	}

	if hubShare > hubMonopolyShare {
		found.add(HubMonopoly, hub, nil, fmt.Sprintf("%.1f%% HUB", hubShare))
	}
}

func (detector *Detector) checkDurations(state *catalog.State, found *collector) {
	var invalid []string
	var total, known int

	for _, video := range state.Videos {
		if !video.HasDuration() {
			invalid = append(invalid, video.ID)
			continue
		}
		total += video.DurationSeconds
		known++
	}

	if len(invalid) > 0 {
		found.add(InvalidDurations, len(invalid), invalid,
			fmt.Sprintf("%d videos (%.1f%%) have no duration", len(invalid), percent(len(invalid), len(state.Videos))))
	}

	if known == 0 {
		found.add(NoDurationData, len(invalid), invalid, "no video has a valid duration")
		return
	}

	mean := float64(total) / float64(known)
	switch {
	case mean > veryLongMeanSeconds:
		found.add(VeryLong, known, nil, fmt.Sprintf("mean duration %.1f min", mean/60))
	case mean < veryShortMeanSeconds:
		found.add(VeryShort, known, nil, fmt.Sprintf("mean duration %.0f s", mean))
	}
}

func (detector *Detector) checkDates(state *catalog.State, found *collector) {
	var corrupted []string
	for _, video := range state.Videos {
		if detector.IsSentinel(video.PublishedAt) {
			corrupted = append(corrupted, video.ID)
		}
	}

	if len(corrupted) > 0 {
		found.add(CorruptedDates, len(corrupted), corrupted,
			fmt.Sprintf("%d videos (%.1f%%) carry an import date", len(corrupted), percent(len(corrupted), len(state.Videos))))
	}

	cadence := aggregate.MeasureCadence(state.Videos)
	if cadence.DistinctDates < uniformityMinDates && len(state.Videos) > uniformityMinVideos {
		found.add(DateUniformity, cadence.DistinctDates, nil,
			fmt.Sprintf("only %d distinct dates for %d videos", cadence.DistinctDates, len(state.Videos)))
	}

	if cadence.Known && cadence.PerWeek > constants.ImpossibleFrequencyThreshold {
		found.add(ImpossibleFrequency, cadence.Dated, nil, fmt.Sprintf("%.1f videos per week", cadence.PerWeek))
	}
}

func (detector *Detector) checkPlaylists(state *catalog.State, found *collector) {
	switch count := len(state.Playlists); {
	case count == 0:
		found.add(NoPlaylists, 0, nil, "competitor has no playlists")
	case count > tooManyPlaylists:
		found.add(TooManyPlaylists, count, nil, fmt.Sprintf("%d playlists", count))
	}
}

func (detector *Detector) checkEngagement(state *catalog.State, found *collector) {
	var views, likes int64
	for _, video := range state.Videos {
		if video.Views() <= 0 {
			continue
		}
		views += video.Views()
		likes += video.LikeCount
	}
	if views == 0 {
		return
	}

	rate := float64(likes) / float64(views) * 100
	switch {
	case rate < lowEngagementPercent:
		found.add(LowEngagement, 0, nil, fmt.Sprintf("like rate %.3f%%", rate))
	case rate > highEngagementPercent:
		found.add(HighEngagement, 0, nil, fmt.Sprintf("like rate %.3f%%", rate))
	}
}

// # Internals

type collector struct {
	competitorID string
	items        []Anomaly
}

func (c *collector) add(kind Kind, count int, videoIDs []string, details string) {
	c.items = append(c.items, Anomaly{
		CompetitorID: c.competitorID,
		Kind:         kind,
		Severity:     SeverityOf(kind),
		Details:      details,
		Count:        count,
		VideoIDs:     videoIDs,
	})
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
