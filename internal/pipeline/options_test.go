// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/channelscope/internal/fix"
	"github.com/taibuivan/channelscope/internal/pipeline"
	"github.com/taibuivan/channelscope/internal/platform/apperr"
	"github.com/taibuivan/channelscope/internal/platform/config"
	"github.com/taibuivan/channelscope/pkg/pointer"
)

/*
TestOptionsFromConfig normalizes the environment values.
*/
func TestOptionsFromConfig(t *testing.T) {
	options := pipeline.OptionsFromConfig(config.RunDefaults{
		PaidThreshold:            5_000,
		HighPerformanceThreshold: 50_000,
		MaxVideosPerChannel:      200,
		SentinelImportDates:      []string{" 2025-07-05 ", ""},
		FrequencyCap:             2.5,
		ZeroHelpFixCap:           10,
		ZeroHeroFixCap:           2,
		CorruptedDatesResolver:   " Refetch_Only ",
		Concurrency:              4,
	})

	assert.Equal(t, []string{"2025-07-05"}, options.SentinelImportDates)
	assert.Equal(t, fix.ResolverRefetchOnly, options.CorruptedDatesResolver)
	assert.Equal(t, int64(5_000), options.PaidThreshold)
	assert.Equal(t, 4, options.Concurrency)
	require.NoError(t, options.Validate())
}

/*
TestOptions_Validate lists the rejected values.
*/
func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*pipeline.Options)
		valid  bool
	}{
		{"defaults", func(*pipeline.Options) {}, true},
		{"no caps", func(o *pipeline.Options) { o.ZeroHelpFixCap, o.ZeroHeroFixCap = 0, 0 }, true},
		{"zero paid threshold", func(o *pipeline.Options) { o.PaidThreshold = 0 }, false},
		{"negative high performance", func(o *pipeline.Options) { o.HighPerformanceThreshold = -1 }, false},
		{"zero frequency cap", func(o *pipeline.Options) { o.FrequencyCap = 0 }, false},
		{"negative fix cap", func(o *pipeline.Options) { o.ZeroHelpFixCap = -1 }, false},
		{"unknown resolver", func(o *pipeline.Options) { o.CorruptedDatesResolver = "guess" }, false},
		{"bad sentinel", func(o *pipeline.Options) { o.SentinelImportDates = []string{"05/07/2025"} }, false},
		{"no workers", func(o *pipeline.Options) { o.Concurrency = 0 }, false},
		{"too many workers", func(o *pipeline.Options) { o.Concurrency = 64 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			options := pipeline.DefaultOptions()
			tt.mutate(&options)

			err := options.Validate()
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperr.IsInput(err))
			assert.NotEmpty(t, apperr.As(err).Details)
		})
	}
}

/*
TestOverrides_Apply replaces only the fields that are set.
*/
func TestOverrides_Apply(t *testing.T) {
	base := pipeline.DefaultOptions()

	options := pipeline.Overrides{
		FrequencyCap:  pointer.To(5.0),
		CompetitorIDs: []string{"a"},
		Offline:       pointer.To(true),
	}.Apply(base)

	assert.Equal(t, 5.0, options.FrequencyCap)
	assert.Equal(t, []string{"a"}, options.CompetitorIDs)
	assert.True(t, options.Offline)
	assert.Equal(t, base.PaidThreshold, options.PaidThreshold)
	assert.Equal(t, base.CorruptedDatesResolver, options.CorruptedDatesResolver)

	assert.Equal(t, base, pipeline.Overrides{}.Apply(base))
}
