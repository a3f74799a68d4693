// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package aggregate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/channelscope/internal/aggregate"
	"github.com/taibuivan/channelscope/internal/catalog"
)

// marketFixture has two French competitors, two internationals present in
// France and one German competitor.
func marketFixture() ([]*catalog.Competitor, map[string]*catalog.MetricsSnapshot) {
	competitors := []*catalog.Competitor{
		{ID: "a", Country: catalog.CountryFrance},
		{ID: "b", Country: catalog.CountryFrance},
		{ID: "i1", Country: catalog.CountryInternational, Markets: []string{catalog.CountryFrance}},
		{ID: "i2", Country: catalog.CountryInternational, Markets: []string{catalog.CountryFrance, catalog.CountryGermany}},
		{ID: "g", Country: catalog.CountryGermany},
	}
	shape := map[string][2]int{"a": {14, 7}, "b": {30, 10}, "i1": {20, 4}, "i2": {10, 5}, "g": {8, 2}}

	snapshots := make(map[string]*catalog.MetricsSnapshot)
	for _, competitor := range competitors {
		videos := spread(competitor.ID, shape[competitor.ID][0], shape[competitor.ID][1])
		snapshots[competitor.ID] = aggregate.ComputeSnapshot(competitor, videos, defaultParams, day0)
	}
	return competitors, snapshots
}

/*
TestComputeCountry_DualScope checks both scopes and the weighted frequency.
*/
func TestComputeCountry_DualScope(t *testing.T) {
	competitors, snapshots := marketFixture()

	metrics := aggregate.ComputeCountry(catalog.CountryFrance, competitors, snapshots)

	assert.Equal(t, []string{"a", "b"}, metrics.Local.Competitors)
	assert.Equal(t, []string{"a", "b", "i1", "i2"}, metrics.National.Competitors)
	assert.Equal(t, 44, metrics.Local.Videos)
	assert.Equal(t, 74, metrics.National.Videos)

	// 44 / ((14*7 + 30*10) / 44)
	require.NotNil(t, metrics.Local.VideosPerWeek)
	assert.Equal(t, 4.86, *metrics.Local.VideosPerWeek)

	// 74 / ((14*7 + 30*10 + 20*4 + 10*5) / 74)
	require.NotNil(t, metrics.National.VideosPerWeek)
	assert.Equal(t, 10.37, *metrics.National.VideosPerWeek)

	require.NotNil(t, metrics.Gaps[aggregate.MetricVideosPerWeek])
	assert.Equal(t, -53, *metrics.Gaps[aggregate.MetricVideosPerWeek])
	require.NotNil(t, metrics.Gaps[aggregate.MetricHubPct])
	assert.Equal(t, 0, *metrics.Gaps[aggregate.MetricHubPct])
	assert.Nil(t, metrics.Gaps[aggregate.MetricShortsPct], "national shorts share is zero")

	assert.Equal(t, 100.0, metrics.National.HHH.HubPct)
	assert.Equal(t, 300.0, metrics.National.AvgDurationSeconds)
}

/*
TestComputeCountry_NoLocal reports no gap without local competitors.
*/
func TestComputeCountry_NoLocal(t *testing.T) {
	competitors, snapshots := marketFixture()

	metrics := aggregate.ComputeCountry(catalog.CountryNetherlands, competitors, snapshots)

	assert.Empty(t, metrics.Local.Competitors)
	assert.Empty(t, metrics.National.Competitors)
	assert.Nil(t, metrics.National.VideosPerWeek)
	assert.Empty(t, metrics.Gaps)
}

/*
TestComputeEurope unions every country once.
*/
func TestComputeEurope(t *testing.T) {
	competitors, snapshots := marketFixture()

	europe := aggregate.ComputeEurope(competitors, snapshots)

	assert.Equal(t, []string{"a", "b", "g", "i1", "i2"}, europe.Scope.Competitors)
	assert.Equal(t, 82, europe.Scope.Videos)
}

/*
TestParseCountry accepts names and codes.
*/
func TestParseCountry(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{raw: "France", want: catalog.CountryFrance, ok: true},
		{raw: "fr", want: catalog.CountryFrance, ok: true},
		{raw: "GB", want: catalog.CountryUnitedKingdom, ok: true},
		{raw: "united kingdom", want: catalog.CountryUnitedKingdom, ok: true},
		{raw: "International"},
		{raw: "Spain"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := aggregate.ParseCountry(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
