// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/channelscope/internal/catalog"
)

/*
TestSource_Order verifies the total order none < pattern < fix < propagated < human.
*/
func TestSource_Order(t *testing.T) {
	ordered := []catalog.Source{
		catalog.NoSource,
		catalog.PatternSource,
		catalog.FixSource("ZERO_HELP"),
		catalog.PropagatedSource,
		catalog.HumanSource,
	}

	for i := 1; i < len(ordered); i++ {
		assert.True(t, ordered[i].Outranks(ordered[i-1]), "%s should outrank %s", ordered[i], ordered[i-1])
		assert.False(t, ordered[i-1].Outranks(ordered[i]))
	}
}

/*
TestSource_MayOverwrite checks that nothing overwrites a human label and that
weaker sources never replace stronger ones.
*/
func TestSource_MayOverwrite(t *testing.T) {
	tests := []struct {
		name     string
		incoming catalog.Source
		current  catalog.Source
		want     bool
	}{
		{"pattern_over_none", catalog.PatternSource, catalog.NoSource, true},
		{"pattern_over_pattern", catalog.PatternSource, catalog.PatternSource, true},
		{"fix_over_pattern", catalog.FixSource("ZERO_HERO"), catalog.PatternSource, true},
		{"pattern_over_fix", catalog.PatternSource, catalog.FixSource("ZERO_HERO"), false},
		{"propagated_over_fix", catalog.PropagatedSource, catalog.FixSource("ZERO_HELP"), true},
		{"human_over_human", catalog.HumanSource, catalog.HumanSource, false},
		{"propagated_over_human", catalog.PropagatedSource, catalog.HumanSource, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.incoming.MayOverwrite(tt.current))
		})
	}
}

/*
TestParseSource covers stable spellings and legacy values.
*/
func TestParseSource(t *testing.T) {
	tests := []struct {
		raw  string
		want catalog.Source
	}{
		{"", catalog.NoSource},
		{"pattern", catalog.PatternSource},
		{"human", catalog.HumanSource},
		{"USER", catalog.HumanSource},
		{"manual", catalog.HumanSource},
		{"propagated_from_human_playlist", catalog.PropagatedSource},
		{"intelligent_zero_help_fix", catalog.FixSource("ZERO_HELP")},
		{"intelligent_fix_hub_monopoly", catalog.FixSource("HUB_MONOPOLY")},
		{"keyword", catalog.PatternSource},
		{"something_new", catalog.PatternSource},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, catalog.ParseSource(tt.raw))
		})
	}
}

/*
TestSource_JSON checks that provenance crosses JSON as its stable string.
*/
func TestSource_JSON(t *testing.T) {
	video := catalog.Video{ID: "v1", Source: catalog.FixSource("ZERO_HERO")}

	payload, err := json.Marshal(video)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"classification_source":"intelligent_zero_hero_fix"`)

	var decoded catalog.Video
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, video.Source, decoded.Source)
}
