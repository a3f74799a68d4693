// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package aggregate

import (
	"math"
	"time"

	"github.com/taibuivan/channelscope/internal/catalog"
	"github.com/taibuivan/channelscope/internal/platform/constants"
)

// Cadence is the raw publication cadence of a set of videos.
type Cadence struct {
	// Dated is the number of videos with a known publication date.
	Dated int
	// DistinctDates counts distinct calendar days (UTC).
	DistinctDates int
	// Weeks is the active span in weeks, floored to 0.1.
	Weeks float64
	// PerWeek is Dated divided by max(Weeks, 0.1).
	PerWeek float64
	// Shorts is the number of dated Shorts.
	Shorts int
	// Known is false when fewer than two distinct dates exist.
	Known bool
}

// MeasureCadence computes the active span and raw videos per week.
//
// The span is the number of whole days between the earliest and latest
// publication date, divided by seven and floored to one decimal.
func MeasureCadence(videos []*catalog.Video) Cadence {
	var cadence Cadence
	var earliest, latest time.Time
	days := make(map[string]struct{})

	for _, video := range videos {
		if video.PublishedAt.IsZero() {
			continue
		}
		published := video.PublishedAt.UTC()
		cadence.Dated++
		if video.IsShort {
			cadence.Shorts++
		}
		days[published.Format(time.DateOnly)] = struct{}{}

		if earliest.IsZero() || published.Before(earliest) {
			earliest = published
		}
		if latest.IsZero() || published.After(latest) {
			latest = published
		}
	}

	cadence.DistinctDates = len(days)
	if cadence.DistinctDates < 2 {
		return cadence
	}

	wholeDays := math.Floor(latest.Sub(earliest).Hours() / 24)
	cadence.Weeks = math.Floor(wholeDays*10/7) / 10
	cadence.PerWeek = float64(cadence.Dated) / math.Max(cadence.Weeks, constants.MinWeeks)
	cadence.Known = true
	return cadence
}

// IsOutlier reports whether a raw cadence is implausible enough to be capped.
func (cadence Cadence) IsOutlier() bool {
	return cadence.Known && cadence.PerWeek > constants.FrequencyOutlierThreshold
}
