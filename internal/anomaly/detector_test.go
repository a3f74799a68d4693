// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package anomaly_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/channelscope/internal/anomaly"
	"github.com/taibuivan/channelscope/internal/catalog"
	"github.com/taibuivan/channelscope/pkg/pointer"
)

var day0 = time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)

// healthyVideos returns n videos spread over n days with a balanced mix.
func healthyVideos(n int) []*catalog.Video {
	categories := []catalog.Category{catalog.CategoryHero, catalog.CategoryHub, catalog.CategoryHub, catalog.CategoryHelp}
	videos := make([]*catalog.Video, 0, n)
	for i := range n {
		videos = append(videos, &catalog.Video{
			ID:              fmt.Sprintf("v%03d", i),
			CompetitorID:    "c1",
			DurationSeconds: 300,
			PublishedAt:     day0.AddDate(0, 0, i*3),
			ViewCount:       pointer.To(int64(10000)),
			LikeCount:       200,
			Category:        categories[i%len(categories)],
			Source:          catalog.PatternSource,
		})
	}
	return videos
}

func stateOf(videos []*catalog.Video, playlists int) *catalog.State {
	lists := make([]*catalog.Playlist, 0, playlists)
	for i := range playlists {
		lists = append(lists, &catalog.Playlist{ID: fmt.Sprintf("p%03d", i), CompetitorID: "c1"})
	}
	return catalog.NewState(&catalog.Competitor{ID: "c1"}, videos, lists, nil)
}

func kinds(anomalies []anomaly.Anomaly) []anomaly.Kind {
	out := make([]anomaly.Kind, 0, len(anomalies))
	for _, a := range anomalies {
		out = append(out, a.Kind)
	}
	return out
}

/*
TestDetect_Healthy verifies that a balanced competitor raises nothing.
*/
func TestDetect_Healthy(t *testing.T) {
	detector := anomaly.NewDetector(nil)
	assert.Empty(t, detector.Detect(stateOf(healthyVideos(24), 3)))
}

/*
TestDetect_NoVideos verifies the critical finding on an empty catalog.
*/
func TestDetect_NoVideos(t *testing.T) {
	detector := anomaly.NewDetector(nil)
	found := detector.Detect(stateOf(nil, 2))

	require.Len(t, found, 1)
	assert.Equal(t, anomaly.NoVideos, found[0].Kind)
	assert.Equal(t, anomaly.Critical, found[0].Severity)
	assert.Equal(t, "c1", found[0].CompetitorID)
}

/*
TestDetect_Labels covers the distribution checks.
*/
func TestDetect_Labels(t *testing.T) {
	relabel := func(n int, pick func(i int) catalog.Category) []*catalog.Video {
		videos := healthyVideos(n)
		for i, video := range videos {
			video.Category = pick(i)
		}
		return videos
	}

	tests := []struct {
		name    string
		videos  []*catalog.Video
		want    []anomaly.Kind
		without []anomaly.Kind
	}{
		{
			name:   "uncategorized",
			videos: relabel(8, func(i int) catalog.Category { return []catalog.Category{catalog.CategoryNone, catalog.CategoryHero, catalog.CategoryHub, catalog.CategoryHelp}[i%4] }),
			want:   []anomaly.Kind{anomaly.UncategorizedVideos},
		},
		{
			name:    "zero help needs twenty classified",
			videos:  relabel(19, func(i int) catalog.Category { return []catalog.Category{catalog.CategoryHero, catalog.CategoryHub}[i%2] }),
			without: []anomaly.Kind{anomaly.ZeroHelp},
		},
		{
			name:   "zero help",
			videos: relabel(20, func(i int) catalog.Category { return []catalog.Category{catalog.CategoryHero, catalog.CategoryHub}[i%2] }),
			want:   []anomaly.Kind{anomaly.ZeroHelp},
		},
		{
			name:   "zero hero",
			videos: relabel(4, func(i int) catalog.Category { return []catalog.Category{catalog.CategoryHub, catalog.CategoryHelp}[i%2] }),
			want:   []anomaly.Kind{anomaly.ZeroHero},
		},
		{
			name:   "hub monopoly",
			videos: relabel(40, func(i int) catalog.Category { return map[bool]catalog.Category{true: catalog.CategoryHelp, false: catalog.CategoryHub}[i == 0] }),
			want:   []anomaly.Kind{anomaly.HubMonopoly, anomaly.ZeroHero},
		},
		{
			name:   "too much hero",
			videos: relabel(10, func(i int) catalog.Category { return map[bool]catalog.Category{true: catalog.CategoryHelp, false: catalog.CategoryHero}[i == 0] }),
			want:   []anomaly.Kind{anomaly.TooMuchHero},
		},
		{
			name:   "too much help",
			videos: relabel(10, func(i int) catalog.Category { return map[bool]catalog.Category{true: catalog.CategoryHero, false: catalog.CategoryHelp}[i == 0] }),
			want:   []anomaly.Kind{anomaly.TooMuchHelp},
		},
	}

	detector := anomaly.NewDetector(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := kinds(detector.Detect(stateOf(tt.videos, 3)))
			for _, kind := range tt.want {
				assert.Contains(t, got, kind)
			}
			for _, kind := range tt.without {
				assert.NotContains(t, got, kind)
			}
		})
	}
}

/*
TestDetect_Durations covers missing and extreme durations.
*/
func TestDetect_Durations(t *testing.T) {
	detector := anomaly.NewDetector(nil)

	t.Run("invalid", func(t *testing.T) {
		videos := healthyVideos(8)
		videos[2].DurationSeconds = 0
		found, ok := detector.Find(stateOf(videos, 1), anomaly.InvalidDurations)
		require.True(t, ok)
		assert.Equal(t, []string{"v002"}, found.VideoIDs)
	})

	t.Run("none", func(t *testing.T) {
		videos := healthyVideos(4)
		for _, video := range videos {
			video.DurationSeconds = 0
		}
		got := kinds(detector.Detect(stateOf(videos, 1)))
		assert.Contains(t, got, anomaly.InvalidDurations)
		assert.Contains(t, got, anomaly.NoDurationData)
	})

	t.Run("very long", func(t *testing.T) {
		videos := healthyVideos(4)
		for _, video := range videos {
			video.DurationSeconds = 4000
		}
		assert.True(t, detector.Holds(stateOf(videos, 1), anomaly.VeryLong))
	})

	t.Run("very short", func(t *testing.T) {
		videos := healthyVideos(4)
		for _, video := range videos {
			video.DurationSeconds = 20
		}
		assert.True(t, detector.Holds(stateOf(videos, 1), anomaly.VeryShort))
	})
}

/*
TestDetect_Dates covers sentinel dates, uniformity and impossible cadence.
*/
func TestDetect_Dates(t *testing.T) {
	sentinel := time.Date(2025, 7, 5, 0, 0, 0, 0, time.UTC)

	t.Run("sentinel", func(t *testing.T) {
		videos := healthyVideos(8)
		videos[1].PublishedAt = sentinel.Add(13 * time.Hour)

		found, ok := anomaly.NewDetector([]string{"2025-07-05"}).Find(stateOf(videos, 1), anomaly.CorruptedDates)
		require.True(t, ok)
		assert.Equal(t, []string{"v001"}, found.VideoIDs)
		assert.Equal(t, anomaly.High, found.Severity)

		assert.False(t, anomaly.NewDetector(nil).Holds(stateOf(videos, 1), anomaly.CorruptedDates))
	})

	t.Run("uniformity", func(t *testing.T) {
		videos := healthyVideos(12)
		for i, video := range videos {
			video.PublishedAt = day0.AddDate(0, 0, i%2)
		}
		got := kinds(anomaly.NewDetector(nil).Detect(stateOf(videos, 1)))
		assert.Contains(t, got, anomaly.DateUniformity)
	})

	t.Run("impossible frequency", func(t *testing.T) {
		videos := healthyVideos(120)
		for i, video := range videos {
			video.PublishedAt = day0.Add(time.Duration(i) * time.Hour)
		}
		assert.True(t, anomaly.NewDetector(nil).Holds(stateOf(videos, 1), anomaly.ImpossibleFrequency))
	})
}

/*
TestDetect_PlaylistsAndEngagement covers the informational checks.
*/
func TestDetect_PlaylistsAndEngagement(t *testing.T) {
	detector := anomaly.NewDetector(nil)

	assert.True(t, detector.Holds(stateOf(healthyVideos(8), 0), anomaly.NoPlaylists))
	assert.True(t, detector.Holds(stateOf(healthyVideos(8), 101), anomaly.TooManyPlaylists))

	low := healthyVideos(8)
	for _, video := range low {
		video.LikeCount = 1
	}
	assert.True(t, detector.Holds(stateOf(low, 1), anomaly.LowEngagement))

	high := healthyVideos(8)
	for _, video := range high {
		video.LikeCount = 2000
	}
	assert.True(t, detector.Holds(stateOf(high, 1), anomaly.HighEngagement))
}

/*
TestKind_Groups verifies which kinds drive corrections.
*/
func TestKind_Groups(t *testing.T) {
	assert.True(t, anomaly.CorruptedDates.IsDataRepair())
	assert.True(t, anomaly.ZeroHelp.IsLabelFix())
	assert.False(t, anomaly.TooMuchHero.IsLabelFix())
	assert.False(t, anomaly.TooMuchHero.IsDataRepair())
	assert.Equal(t, anomaly.Low, anomaly.SeverityOf(anomaly.TooManyPlaylists))
}
