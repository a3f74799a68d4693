// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package classify_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/channelscope/internal/catalog"
	"github.com/taibuivan/channelscope/internal/classify"
	"github.com/taibuivan/channelscope/internal/platform/apperr"
)

/*
TestSeed_Loads checks the embedded lexicon for every language.
*/
func TestSeed_Loads(t *testing.T) {
	seed, err := classify.LoadSeed()
	require.NoError(t, err)

	for _, language := range classify.Languages {
		set := seed.Patterns(language)
		assert.NotEmpty(t, set.Help, language)
		assert.NotEmpty(t, set.Hero, language)
		assert.NotEmpty(t, set.Hub, language)
	}

	assert.True(t, seed.Fixes.MatchesHelp("Museum Tour Amsterdam"))
	assert.True(t, seed.Fixes.MatchesInspirational("A BREATHTAKING view"))
	assert.False(t, seed.Fixes.MatchesHelp("Sunset"))
}

/*
TestParseSeed_RejectsUnknownCategory guards the lexicon format.
*/
func TestParseSeed_RejectsUnknownCategory(t *testing.T) {
	_, err := classify.ParseSeed([]byte("languages:\n  en:\n    promo:\n      - sale\n"))
	assert.Error(t, err)

	_, err = classify.ParseSeed([]byte("languages:\n  es:\n    help:\n      - guía\n"))
	assert.Error(t, err)
}

/*
TestRepository_AddIsIdempotent normalizes and deduplicates user patterns.
*/
func TestRepository_AddIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := catalog.NewMemoryStore()
	repository := classify.NewRepository(classify.MustLoadSeed(), store)

	before := repository.Patterns(classify.LanguageEnglish).Help

	require.NoError(t, repository.Add(ctx, catalog.Pattern{Language: "en", Category: catalog.CategoryHelp, Pattern: "  Walk-Through Video "}))
	require.NoError(t, repository.Add(ctx, catalog.Pattern{Language: "en", Category: catalog.CategoryHelp, Pattern: "walk-through video"}))
	require.NoError(t, repository.Add(ctx, catalog.Pattern{Language: "en", Category: catalog.CategoryHelp, Pattern: "HOW TO"}))

	after := repository.Patterns(classify.LanguageEnglish).Help
	assert.Len(t, after, len(before)+1)
	assert.Equal(t, "walk-through video", after[len(after)-1])

	stored, err := store.ListPatterns(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

/*
TestRepository_Remove drops user patterns and leaves the seed intact.
*/
func TestRepository_Remove(t *testing.T) {
	ctx := context.Background()
	repository := classify.NewRepository(classify.MustLoadSeed(), nil)
	pattern := catalog.Pattern{Language: "fr", Category: catalog.CategoryHub, Pattern: "making-of"}

	require.NoError(t, repository.Add(ctx, pattern))
	assert.Contains(t, repository.Patterns("fr").Hub, "making-of")

	require.NoError(t, repository.Remove(ctx, pattern))
	require.NoError(t, repository.Remove(ctx, pattern))
	assert.NotContains(t, repository.Patterns("fr").Hub, "making-of")

	require.NoError(t, repository.Remove(ctx, catalog.Pattern{Language: "fr", Category: catalog.CategoryHub, Pattern: "vlog"}))
	assert.Contains(t, repository.Patterns("fr").Hub, "vlog")
}

/*
TestRepository_OtherIsUnion merges every language.
*/
func TestRepository_OtherIsUnion(t *testing.T) {
	repository := classify.NewRepository(classify.MustLoadSeed(), nil)

	union := repository.Patterns(classify.LanguageOther)
	assert.Contains(t, union.Help, "anleitung")
	assert.Contains(t, union.Help, "how to")
	assert.Contains(t, union.Help, "tutoriel")
	assert.Contains(t, union.Help, "uitleg")

	assert.Equal(t, union, repository.Patterns("es"))

	seen := map[string]bool{}
	for _, pattern := range union.Hub {
		assert.False(t, seen[pattern], "duplicate %q", pattern)
		seen[pattern] = true
	}
}

/*
TestRepository_Validation rejects unknown languages, categories and blanks.
*/
func TestRepository_Validation(t *testing.T) {
	repository := classify.NewRepository(classify.MustLoadSeed(), nil)

	tests := []struct {
		name    string
		pattern catalog.Pattern
	}{
		{"blank", catalog.Pattern{Language: "en", Category: catalog.CategoryHelp, Pattern: "  "}},
		{"language", catalog.Pattern{Language: "es", Category: catalog.CategoryHelp, Pattern: "guía"}},
		{"category", catalog.Pattern{Language: "en", Pattern: "sale"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repository.Add(context.Background(), tt.pattern)
			require.Error(t, err)
			assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
		})
	}
}

/*
TestRepository_RunGuard refuses mutations while a run is active.
*/
func TestRepository_RunGuard(t *testing.T) {
	repository := classify.NewRepository(classify.MustLoadSeed(), nil)
	pattern := catalog.Pattern{Language: "en", Category: catalog.CategoryHub, Pattern: "q&a"}

	repository.BeginRun()
	err := repository.Add(context.Background(), pattern)
	assert.True(t, apperr.IsConflict(err))

	repository.EndRun()
	assert.NoError(t, repository.Add(context.Background(), pattern))
}
