// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package aggregate_test

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/channelscope/internal/aggregate"
	"github.com/taibuivan/channelscope/internal/catalog"
	"github.com/taibuivan/channelscope/pkg/pointer"
)

// Monday.
var day0 = time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)

var defaultParams = aggregate.Params{PaidThreshold: 10_000, FrequencyCap: 3.0}

// spread returns n dated videos whose first and last publications are exactly
// weeks apart.
func spread(competitorID string, n, weeks int) []*catalog.Video {
	videos := make([]*catalog.Video, 0, n)
	span := weeks * 7
	for i := range n {
		offset := 0
		if n > 1 {
			offset = i * span / (n - 1)
		}
		videos = append(videos, &catalog.Video{
			ID:              fmt.Sprintf("%s-%03d", competitorID, i),
			CompetitorID:    competitorID,
			DurationSeconds: 300,
			PublishedAt:     day0.AddDate(0, 0, offset),
			ViewCount:       pointer.To(int64(1000)),
			Category:        catalog.CategoryHub,
		})
	}
	return videos
}

/*
TestComputeSnapshot_BasicScenario checks the split figures of the three reference videos.
*/
func TestComputeSnapshot_BasicScenario(t *testing.T) {
	videos := []*catalog.Video{
		{ID: "v1", Title: "How to pack for your holiday", ViewCount: pointer.To[int64](5000), DurationSeconds: 420, Category: catalog.CategoryHelp, LikeCount: 50, CommentCount: 5},
		{ID: "v2", Title: "Discover our new resort", ViewCount: pointer.To[int64](250_000), DurationSeconds: 45, IsShort: true, Category: catalog.CategoryHero, LikeCount: 2000, CommentCount: 100},
		{ID: "v3", Title: "Summer vlog episode 3", ViewCount: pointer.To[int64](8000), DurationSeconds: 600, Category: catalog.CategoryHub, LikeCount: 40, CommentCount: 5},
	}
	competitor := &catalog.Competitor{ID: "x", Name: "X", Country: catalog.CountryFrance}
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	snapshot := aggregate.ComputeSnapshot(competitor, videos, defaultParams, now)

	assert.Equal(t, now, snapshot.ComputedAt)
	assert.Equal(t, catalog.Totals{Videos: 3, Views: 263_000, Likes: 2090, Comments: 110}, snapshot.Totals)
	assert.Equal(t, 87666.67, snapshot.Means.Views)
	assert.Equal(t, 0.84, snapshot.Engagement)

	assert.Equal(t, catalog.OrganicSplit{Known: 3, Organic: 2, Paid: 1, OrganicPct: 66.7, PaidPct: 33.3}, snapshot.Organic)
	assert.Equal(t, catalog.ShortsSplit{Known: 3, Shorts: 1, Regular: 2, ShortsPct: 33.3, RegularPct: 66.7}, snapshot.Shorts)
	assert.Equal(t, catalog.DurationStats{Count: 3, Mean: 355, Min: 45, Max: 600}, snapshot.Duration)
	assert.Equal(t, 1, snapshot.HHH.Help)
	assert.Equal(t, 1, snapshot.HHH.Hero)
	assert.Equal(t, 1, snapshot.HHH.Hub)

	assert.Nil(t, snapshot.Frequency.VideosPerWeek, "no dates, no frequency")
	assert.Equal(t, 1, snapshot.Matrix.Hero.PaidCount)
	assert.Equal(t, 250_000.0, snapshot.Matrix.Hero.PaidMedianViews)
	assert.Equal(t, 5000.0, snapshot.Matrix.Help.OrganicMedianViews)
}

/*
TestComputeSnapshot_Frequency checks the reported cadence and the outlier cap.
*/
func TestComputeSnapshot_Frequency(t *testing.T) {
	tests := []struct {
		name     string
		videos   int
		weeks    int
		raw      float64
		reported float64
		outlier  bool
	}{
		{name: "regular", videos: 14, weeks: 7, raw: 2.0, reported: 2.0},
		{name: "outlier", videos: 500, weeks: 10, raw: 50.0, reported: 3.0, outlier: true},
		{name: "edge", videos: 20, weeks: 1, raw: 20.0, reported: 20.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			competitor := &catalog.Competitor{ID: tt.name}
			snapshot := aggregate.ComputeSnapshot(competitor, spread(tt.name, tt.videos, tt.weeks), defaultParams, day0)

			frequency := snapshot.Frequency
			require.NotNil(t, frequency.VideosPerWeek)
			assert.Equal(t, float64(tt.weeks), *frequency.ActiveWeeks)
			assert.Equal(t, tt.raw, *frequency.RawVideosPerWeek)
			assert.Equal(t, tt.reported, *frequency.VideosPerWeek)
			assert.Equal(t, tt.outlier, frequency.Outlier)
			if frequency.Outlier {
				assert.LessOrEqual(t, *frequency.VideosPerWeek, defaultParams.FrequencyCap)
			}
		})
	}
}

/*
TestComputeSnapshot_CategoryFrequency spreads each category over the active span.
*/
func TestComputeSnapshot_CategoryFrequency(t *testing.T) {
	t.Run("regular", func(t *testing.T) {
		videos := spread("c", 14, 7)
		for _, video := range videos[:7] {
			video.Category = catalog.CategoryHelp
		}
		for _, video := range videos[7:10] {
			video.Category = catalog.CategoryHero
		}
		undated := &catalog.Video{ID: "c-undated", CompetitorID: "c", Category: catalog.CategoryHelp}
		videos = append(videos, undated)

		snapshot := aggregate.ComputeSnapshot(&catalog.Competitor{ID: "c"}, videos, defaultParams, day0)

		require.NotNil(t, snapshot.Frequency.ByCategory)
		assert.Equal(t, catalog.CategoryCadence{Hero: 0.4, Hub: 0.6, Help: 1.0}, *snapshot.Frequency.ByCategory)
	})

	t.Run("outlier keeps the category share of the cap", func(t *testing.T) {
		videos := spread("o", 500, 10)
		for _, video := range videos[:100] {
			video.Category = catalog.CategoryHelp
		}

		snapshot := aggregate.ComputeSnapshot(&catalog.Competitor{ID: "o"}, videos, defaultParams, day0)

		require.True(t, snapshot.Frequency.Outlier)
		require.NotNil(t, snapshot.Frequency.ByCategory)
		assert.Equal(t, catalog.CategoryCadence{Hero: 0, Hub: 2.4, Help: 0.6}, *snapshot.Frequency.ByCategory)
	})

	t.Run("unknown span", func(t *testing.T) {
		snapshot := aggregate.ComputeSnapshot(&catalog.Competitor{ID: "u"}, spread("u", 3, 0), defaultParams, day0)
		assert.Nil(t, snapshot.Frequency.ByCategory)
	})
}

/*
TestComputeSnapshot_FrequencyUnknown requires two distinct dates.
*/
func TestComputeSnapshot_FrequencyUnknown(t *testing.T) {
	videos := spread("c", 3, 0)
	snapshot := aggregate.ComputeSnapshot(&catalog.Competitor{ID: "c"}, videos, defaultParams, day0)

	assert.Nil(t, snapshot.Frequency.VideosPerWeek)
	assert.Nil(t, snapshot.Frequency.ActiveWeeks)
	assert.Equal(t, 3, snapshot.Frequency.DatedVideos)
	assert.Equal(t, "Monday", snapshot.Frequency.MostActiveWeekday)
}

/*
TestComputeSnapshot_Partitions checks that the split counts cover the known values.
*/
func TestComputeSnapshot_Partitions(t *testing.T) {
	videos := []*catalog.Video{
		{ID: "a", ViewCount: pointer.To[int64](9_999), DurationSeconds: 60, IsShort: true, Category: catalog.CategoryHero},
		{ID: "b", ViewCount: pointer.To[int64](10_000), DurationSeconds: 61, Category: catalog.CategoryHub},
		{ID: "c", DurationSeconds: 0},
		{ID: "d", ViewCount: pointer.To[int64](0), DurationSeconds: 30, IsShort: true, Category: catalog.CategoryHelp},
	}
	snapshot := aggregate.ComputeSnapshot(&catalog.Competitor{ID: "p"}, videos, defaultParams, day0)

	assert.Equal(t, 3, snapshot.Organic.Known)
	assert.Equal(t, snapshot.Organic.Known, snapshot.Organic.Organic+snapshot.Organic.Paid)
	assert.Equal(t, 1, snapshot.Organic.Paid, "the threshold itself is paid")
	assert.Equal(t, 3, snapshot.Shorts.Known)
	assert.Equal(t, snapshot.Shorts.Known, snapshot.Shorts.Shorts+snapshot.Shorts.Regular)
	assert.Equal(t, 2, snapshot.Shorts.Shorts)
}

/*
TestDistribute_SumsToHundred checks the rounding tolerance of the HHH percentages.
*/
func TestDistribute_SumsToHundred(t *testing.T) {
	for _, counts := range [][3]int{{1, 1, 1}, {1, 2, 4}, {7, 0, 0}, {2, 3, 6}, {33, 33, 34}, {1, 5, 1}} {
		distribution := aggregate.Distribute(counts[0], counts[1], counts[2])
		sum := distribution.HeroPct + distribution.HubPct + distribution.HelpPct
		assert.LessOrEqual(t, math.Abs(sum-100), 0.2, "counts %v", counts)
	}

	empty := aggregate.Distribute(0, 0, 0)
	assert.Zero(t, empty.HeroPct+empty.HubPct+empty.HelpPct)
}

/*
TestMeasureCadence covers the span rounding.
*/
func TestMeasureCadence(t *testing.T) {
	videos := []*catalog.Video{
		{ID: "a", PublishedAt: day0},
		{ID: "b", PublishedAt: day0.AddDate(0, 0, 10)},
		{ID: "c", PublishedAt: day0.AddDate(0, 0, 10)},
		{ID: "d"},
	}
	cadence := aggregate.MeasureCadence(videos)

	assert.True(t, cadence.Known)
	assert.Equal(t, 3, cadence.Dated)
	assert.Equal(t, 2, cadence.DistinctDates)
	assert.Equal(t, 1.4, cadence.Weeks)
	assert.InDelta(t, 2.142857, cadence.PerWeek, 1e-6)
	assert.False(t, cadence.IsOutlier())
}
