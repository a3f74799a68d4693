// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/channelscope/internal/catalog"
	"github.com/taibuivan/channelscope/internal/platform/apperr"
)

func fixtureState() *catalog.State {
	competitor := &catalog.Competitor{ID: "c1", Name: "Alpha", Country: catalog.CountryFrance}
	videos := []*catalog.Video{
		{ID: "v2", CompetitorID: "c1", ExternalID: "ext-2"},
		{ID: "v1", CompetitorID: "c1", ExternalID: "ext-1"},
	}
	playlists := []*catalog.Playlist{{ID: "p1", CompetitorID: "c1", ExternalID: "pl-1"}}
	return catalog.NewState(competitor, videos, playlists, nil)
}

/*
TestNewState_OrdersByID verifies traversal order is independent of input order.
*/
func TestNewState_OrdersByID(t *testing.T) {
	state := fixtureState()

	require.Len(t, state.Videos, 2)
	assert.Equal(t, "v1", state.Videos[0].ID)
	assert.Equal(t, "v2", state.Videos[1].ID)
	assert.Equal(t, "v2", state.VideoByExternalID("ext-2").ID)
	assert.Nil(t, state.Video("missing"))
}

/*
TestState_AddMembership covers idempotence and the one-competitor rule.
*/
func TestState_AddMembership(t *testing.T) {
	state := fixtureState()
	state.AddVideo(&catalog.Video{ID: "foreign", CompetitorID: "c2"})

	added, err := state.AddMembership(catalog.Membership{PlaylistID: "p1", VideoID: "v1"})
	require.NoError(t, err)
	assert.True(t, added)

	added, err = state.AddMembership(catalog.Membership{PlaylistID: "p1", VideoID: "v1"})
	require.NoError(t, err)
	assert.False(t, added, "duplicate link is ignored")

	_, err = state.AddMembership(catalog.Membership{PlaylistID: "p1", VideoID: "foreign"})
	require.Error(t, err)
	assert.True(t, apperr.IsInvariant(err))

	assert.Equal(t, []string{"v1"}, state.MembersOf("p1"))
	assert.True(t, state.HasMembers("p1"))
}

/*
TestState_TakeChanges verifies that only marked rows are returned and that the
pending set is cleared afterwards.
*/
func TestState_TakeChanges(t *testing.T) {
	state := fixtureState()

	state.Video("v1").Category = catalog.CategoryHelp
	state.MarkVideo("v1")
	_, err := state.AddMembership(catalog.Membership{PlaylistID: "p1", VideoID: "v2"})
	require.NoError(t, err)

	changes := state.TakeChanges()
	assert.Equal(t, "c1", changes.CompetitorID)
	require.Len(t, changes.Videos, 1)
	assert.Equal(t, catalog.CategoryHelp, changes.Videos[0].Category)
	assert.Len(t, changes.Memberships, 1)
	assert.Nil(t, changes.Competitor)

	// Changes are copies.
	changes.Videos[0].Category = catalog.CategoryHub
	assert.Equal(t, catalog.CategoryHelp, state.Video("v1").Category)

	assert.True(t, state.TakeChanges().IsEmpty())
}

/*
TestChanges_Validate rejects rows of other competitors and inconsistent shorts.
*/
func TestChanges_Validate(t *testing.T) {
	tests := []struct {
		name    string
		video   *catalog.Video
		wantErr bool
	}{
		{"consistent_short", &catalog.Video{ID: "v", CompetitorID: "c1", DurationSeconds: 45, IsShort: true}, false},
		{"consistent_regular", &catalog.Video{ID: "v", CompetitorID: "c1", DurationSeconds: 61}, false},
		{"unknown_duration", &catalog.Video{ID: "v", CompetitorID: "c1"}, false},
		{"short_flag_mismatch", &catalog.Video{ID: "v", CompetitorID: "c1", DurationSeconds: 600, IsShort: true}, true},
		{"foreign_competitor", &catalog.Video{ID: "v", CompetitorID: "c2"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := catalog.Changes{CompetitorID: "c1", Videos: []*catalog.Video{tt.video}}.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperr.IsInvariant(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

/*
TestVideo_SetDuration keeps the shorts flag in sync with the duration.
*/
func TestVideo_SetDuration(t *testing.T) {
	video := &catalog.Video{}

	video.SetDuration(60, "00:01:00")
	assert.True(t, video.IsShort)

	video.SetDuration(61, "00:01:01")
	assert.False(t, video.IsShort)

	video.SetDuration(0, "")
	assert.False(t, video.IsShort)
}
