// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/channelscope/internal/catalog"
	"github.com/taibuivan/channelscope/internal/platform/apperr"
)

func seededStore(t *testing.T) *catalog.MemoryStore {
	t.Helper()
	store := catalog.NewMemoryStore()
	require.NoError(t, store.Seed(
		&catalog.Competitor{ID: "c1", Name: "Alpha", Country: catalog.CountryFrance},
		[]*catalog.Video{{ID: "v1", CompetitorID: "c1", ExternalID: "e1", Title: "Before"}},
		[]*catalog.Playlist{{ID: "p1", CompetitorID: "c1", ExternalID: "pl1"}},
		nil,
	))
	require.NoError(t, store.Seed(
		&catalog.Competitor{ID: "c2", Name: "Beta", Country: catalog.CountryGermany},
		[]*catalog.Video{{ID: "w1", CompetitorID: "c2", ExternalID: "f1"}},
		nil, nil,
	))
	return store
}

/*
TestMemoryStore_CommitRoundTrip writes a phase and reads it back through LoadState.
*/
func TestMemoryStore_CommitRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)

	state, err := store.LoadState(ctx, "c1")
	require.NoError(t, err)

	state.Video("v1").Title = "After"
	state.MarkVideo("v1")
	_, err = state.AddMembership(catalog.Membership{PlaylistID: "p1", VideoID: "v1"})
	require.NoError(t, err)

	require.NoError(t, store.Commit(ctx, state.TakeChanges()))

	reloaded, err := store.LoadState(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "After", reloaded.Video("v1").Title)
	assert.Equal(t, []string{"v1"}, reloaded.MembersOf("p1"))
}

/*
TestMemoryStore_CommitIsAtomic verifies a rejected commit leaves no partial write.
*/
func TestMemoryStore_CommitIsAtomic(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)

	changes := catalog.Changes{
		CompetitorID: "c1",
		Videos:       []*catalog.Video{{ID: "v1", CompetitorID: "c1", ExternalID: "e1", Title: "Changed"}},
		Memberships:  []catalog.Membership{{PlaylistID: "p1", VideoID: "w1"}},
	}

	err := store.Commit(ctx, changes)
	require.Error(t, err)
	assert.True(t, apperr.IsInvariant(err))

	state, err := store.LoadState(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Before", state.Video("v1").Title)
	assert.False(t, state.HasMembers("p1"))
}

/*
TestMemoryStore_RejectsForeignRows refuses rows whose id another competitor owns.
*/
func TestMemoryStore_RejectsForeignRows(t *testing.T) {
	ctx := context.Background()

	t.Run("seed", func(t *testing.T) {
		store := seededStore(t)
		err := store.Seed(
			&catalog.Competitor{ID: "c3", Name: "Gamma"},
			[]*catalog.Video{{ID: "v1", CompetitorID: "c3", ExternalID: "g1", Title: "Stolen"}},
			nil, nil,
		)
		require.Error(t, err)
		assert.True(t, apperr.IsInvariant(err))

		_, err = store.GetCompetitor(ctx, "c3")
		assert.True(t, apperr.IsNotFound(err))
	})

	t.Run("commit video", func(t *testing.T) {
		store := seededStore(t)
		err := store.Commit(ctx, catalog.Changes{
			CompetitorID: "c2",
			Videos:       []*catalog.Video{{ID: "v1", CompetitorID: "c2", ExternalID: "e1", Title: "Stolen"}},
		})
		require.Error(t, err)
		assert.True(t, apperr.IsInvariant(err))

		owner, err := store.LoadState(ctx, "c1")
		require.NoError(t, err)
		require.NotNil(t, owner.Video("v1"))
		assert.Equal(t, "Before", owner.Video("v1").Title)

		other, err := store.LoadState(ctx, "c2")
		require.NoError(t, err)
		assert.Nil(t, other.Video("v1"))
	})

	t.Run("commit playlist", func(t *testing.T) {
		store := seededStore(t)
		err := store.Commit(ctx, catalog.Changes{
			CompetitorID: "c2",
			Playlists:    []*catalog.Playlist{{ID: "p1", CompetitorID: "c2", ExternalID: "pl1"}},
		})
		require.Error(t, err)
		assert.True(t, apperr.IsInvariant(err))
	})
}

/*
TestMemoryStore_CommitFailureHook surfaces injected failures as store errors.
*/
func TestMemoryStore_CommitFailureHook(t *testing.T) {
	store := seededStore(t)
	store.BeforeCommit = func(catalog.Changes) error { return errors.New("disk full") }

	err := store.Commit(context.Background(), catalog.Changes{
		CompetitorID: "c1",
		Videos:       []*catalog.Video{{ID: "v1", CompetitorID: "c1", Title: "x"}},
	})
	require.Error(t, err)
	assert.True(t, apperr.IsStore(err))
}

/*
TestMemoryStore_Patterns checks idempotent add and case-insensitive remove.
*/
func TestMemoryStore_Patterns(t *testing.T) {
	ctx := context.Background()
	store := catalog.NewMemoryStore()
	pattern := catalog.Pattern{Language: "en", Category: catalog.CategoryHelp, Pattern: "walkthrough"}

	require.NoError(t, store.AddPattern(ctx, pattern))
	require.NoError(t, store.AddPattern(ctx, catalog.Pattern{Language: "en", Category: catalog.CategoryHelp, Pattern: "Walkthrough"}))

	patterns, err := store.ListPatterns(ctx)
	require.NoError(t, err)
	assert.Len(t, patterns, 1)

	require.NoError(t, store.RemovePattern(ctx, catalog.Pattern{Language: "en", Category: catalog.CategoryHelp, Pattern: "WALKTHROUGH"}))
	require.NoError(t, store.RemovePattern(ctx, pattern))

	patterns, err = store.ListPatterns(ctx)
	require.NoError(t, err)
	assert.Empty(t, patterns)
}

/*
TestMemoryStore_DeleteCompetitorCascades removes owned rows and snapshot.
*/
func TestMemoryStore_DeleteCompetitorCascades(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	require.NoError(t, store.Commit(ctx, catalog.Changes{
		CompetitorID: "c1",
		Snapshot:     &catalog.MetricsSnapshot{CompetitorID: "c1"},
	}))

	require.NoError(t, store.DeleteCompetitor(ctx, "c1"))

	_, err := store.LoadState(ctx, "c1")
	assert.True(t, apperr.IsNotFound(err))
	_, err = store.GetSnapshot(ctx, "c1")
	assert.True(t, apperr.IsNotFound(err))

	other, err := store.LoadState(ctx, "c2")
	require.NoError(t, err)
	assert.Len(t, other.Videos, 1)

	assert.True(t, apperr.IsNotFound(store.DeleteCompetitor(ctx, "c1")))
}
