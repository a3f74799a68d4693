// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package fix_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/channelscope/internal/catalog"
	"github.com/taibuivan/channelscope/internal/fix"
	"github.com/taibuivan/channelscope/internal/platform/apperr"
)

var fixedNow = time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func applierState() *catalog.State {
	videos := []*catalog.Video{
		{ID: "v1", CompetitorID: "c1", Category: catalog.CategoryHub, Source: catalog.PatternSource},
		{ID: "v2", CompetitorID: "c1", Category: catalog.CategoryHub, Source: catalog.HumanSource, IsHumanValidated: true},
		{ID: "v3", CompetitorID: "c1", Category: catalog.CategoryHelp, Source: catalog.PropagatedSource},
		{ID: "v4", CompetitorID: "c1", DurationSeconds: 0},
	}
	return catalog.NewState(&catalog.Competitor{ID: "c1"}, videos, nil, nil)
}

/*
TestApplier_Label verifies a relabel, its audit and the classification date.
*/
func TestApplier_Label(t *testing.T) {
	state := applierState()
	applier := fix.NewApplier(clock)

	outcome, err := applier.Apply(state, []fix.Patch{
		fix.LabelPatch{VideoID: "v1", Category: catalog.CategoryHelp, Source: catalog.FixSource("ZERO_HELP"), Reason: fix.Reason{Kind: "ZERO_HELP", Action: "relabel_hub_to_help"}},
	})
	require.NoError(t, err)

	require.Equal(t, 1, outcome.Applied())
	audit := outcome.Audits[0]
	assert.Equal(t, "v1", audit.VideoID)
	assert.Equal(t, "c1", audit.CompetitorID)
	assert.Equal(t, "HUB/pattern", audit.Before)
	assert.Equal(t, "HELP/intelligent_zero_help_fix", audit.After)
	assert.Equal(t, fixedNow, audit.Timestamp)
	assert.NotEmpty(t, audit.ID)

	video := state.Video("v1")
	assert.Equal(t, catalog.CategoryHelp, video.Category)
	require.NotNil(t, video.ClassificationDate)
	assert.Equal(t, fixedNow, *video.ClassificationDate)

	changes := state.TakeChanges()
	require.Len(t, changes.Videos, 1)
	assert.Equal(t, "v1", changes.Videos[0].ID)
}

/*
TestApplier_HumanProtection verifies protected labels are dropped and counted.
*/
func TestApplier_HumanProtection(t *testing.T) {
	state := applierState()
	applier := fix.NewApplier(clock)

	outcome, err := applier.Apply(state, []fix.Patch{
		fix.LabelPatch{VideoID: "v2", Category: catalog.CategoryHelp, Source: catalog.PatternSource},
		fix.LabelPatch{VideoID: "v3", Category: catalog.CategoryHero, Source: catalog.PropagatedSource, Validate: true},
	})
	require.NoError(t, err)

	assert.Equal(t, 0, outcome.Applied())
	assert.Equal(t, 1, outcome.SkippedProtected)
	assert.Equal(t, catalog.CategoryHub, state.Video("v2").Category)
	assert.True(t, state.TakeChanges().IsEmpty())
}

/*
TestApplier_Precedence verifies that a weaker provenance cannot overwrite a stronger one.
*/
func TestApplier_Precedence(t *testing.T) {
	state := applierState()
	state.Video("v3").IsHumanValidated = false
	state.Video("v3").Source = catalog.FixSource("ZERO_HERO")

	_, err := fix.NewApplier(clock).Apply(state, []fix.Patch{
		fix.LabelPatch{VideoID: "v3", Category: catalog.CategoryHub, Source: catalog.PatternSource},
	})
	require.Error(t, err)
	assert.True(t, apperr.IsInvariant(err))
}

/*
TestApplier_DataPatches covers dates, durations and unknown targets.
*/
func TestApplier_DataPatches(t *testing.T) {
	state := applierState()
	published := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	outcome, err := fix.NewApplier(clock).Apply(state, []fix.Patch{
		fix.DurationPatch{VideoID: "v4", Seconds: 42, Text: "00:00:42"},
		fix.DatePatch{VideoID: "v2", PublishedAt: published},
		fix.DurationPatch{VideoID: "v4", Seconds: 42, Text: "00:00:42"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, outcome.Applied(), "repeated patch is a no-op")

	video := state.Video("v4")
	assert.Equal(t, 42, video.DurationSeconds)
	assert.True(t, video.IsShort)
	assert.Equal(t, "00:00:42", video.DurationText)
	assert.Equal(t, published, state.Video("v2").PublishedAt, "dates are data, not labels")

	_, err = fix.NewApplier(clock).Apply(state, []fix.Patch{fix.DatePatch{VideoID: "missing"}})
	assert.True(t, apperr.IsInvariant(err))

	_, err = fix.NewApplier(clock).Apply(state, []fix.Patch{fix.DurationPatch{VideoID: "v4"}})
	assert.True(t, apperr.IsInvariant(err))
}
