// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package classify

import (
	"context"
	"sync"

	"github.com/taibuivan/channelscope/internal/catalog"
	"github.com/taibuivan/channelscope/internal/platform/apperr"
	"github.com/taibuivan/channelscope/internal/platform/validate"
	"github.com/taibuivan/channelscope/pkg/textnorm"
)

// # Pattern Sets

// PatternSet holds normalized patterns per category, in insertion order.
type PatternSet struct {
	Help []string `json:"HELP"`
	Hero []string `json:"HERO"`
	Hub  []string `json:"HUB"`
}

// For returns the patterns of one category.
func (set PatternSet) For(category catalog.Category) []string {
	switch category {
	case catalog.CategoryHelp:
		return set.Help
	case catalog.CategoryHero:
		return set.Hero
	case catalog.CategoryHub:
		return set.Hub
	default:
		return nil
	}
}

// Len counts every pattern of the set.
func (set PatternSet) Len() int {
	return len(set.Help) + len(set.Hero) + len(set.Hub)
}

// add appends a normalized pattern unless it is already present.
func (set *PatternSet) add(category catalog.Category, pattern string) bool {
	normalized := textnorm.Normalize(pattern)
	if normalized == "" {
		return false
	}

	target := set.slot(category)
	if target == nil {
		return false
	}
	for _, existing := range *target {
		if existing == normalized {
			return false
		}
	}
	*target = append(*target, normalized)
	return true
}

func (set *PatternSet) merge(other PatternSet) {
	for _, category := range catalog.Categories {
		for _, pattern := range other.For(category) {
			set.add(category, pattern)
		}
	}
}

func (set *PatternSet) slot(category catalog.Category) *[]string {
	switch category {
	case catalog.CategoryHelp:
		return &set.Help
	case catalog.CategoryHero:
		return &set.Hero
	case catalog.CategoryHub:
		return &set.Hub
	default:
		return nil
	}
}

func (set PatternSet) clone() PatternSet {
	return PatternSet{
		Help: append([]string(nil), set.Help...),
		Hero: append([]string(nil), set.Hero...),
		Hub:  append([]string(nil), set.Hub...),
	}
}

// # Repository

// Repository merges the built-in seed with user-added patterns.
//
// Reads are served from a per-language cache rebuilt after each mutation.
// Mutations are refused while a run holds the repository.
type Repository struct {
	seed  *Seed
	store catalog.PatternStore

	mu     sync.RWMutex
	custom []catalog.Pattern
	cache  map[string]PatternSet
	runs   int
}

// NewRepository builds a repository. store may be nil for a seed-only repository.
func NewRepository(seed *Seed, store catalog.PatternStore) *Repository {
	return &Repository{seed: seed, store: store, cache: make(map[string]PatternSet)}
}

// Load reads the user-added patterns from the store.
func (repository *Repository) Load(context context.Context) error {
	if repository.store == nil {
		return nil
	}

	patterns, err := repository.store.ListPatterns(context)
	if err != nil {
		return err
	}

	repository.mu.Lock()
	defer repository.mu.Unlock()

	repository.custom = repository.custom[:0]
	for _, pattern := range patterns {
		pattern.Pattern = textnorm.Normalize(pattern.Pattern)
		if pattern.Pattern == "" || !pattern.Category.IsSet() {
			continue
		}
		repository.custom = append(repository.custom, pattern)
	}
	repository.cache = make(map[string]PatternSet)
	return nil
}

/*
Patterns returns the active patterns for a language.

Description: Seed patterns come first, then user-added ones, each list
deduplicated after normalization. [LanguageOther] and unsupported languages
get the union of every language in [Languages] order.

Parameters:
  - language: string

Returns:
  - PatternSet: A copy the caller may keep
*/
func (repository *Repository) Patterns(language string) PatternSet {
	if !IsSupported(language) {
		language = LanguageOther
	}

	repository.mu.RLock()
	cached, ok := repository.cache[language]
	repository.mu.RUnlock()
	if ok {
		return cached.clone()
	}

	repository.mu.Lock()
	defer repository.mu.Unlock()

	set := repository.build(language)
	repository.cache[language] = set
	return set.clone()
}

// Add stores a user pattern. Adding a pattern that is already active is a no-op.
func (repository *Repository) Add(context context.Context, pattern catalog.Pattern) error {
	pattern, err := normalizePattern(pattern)
	if err != nil {
		return err
	}

	repository.mu.Lock()
	defer repository.mu.Unlock()

	if repository.runs > 0 {
		return apperr.Conflict("patterns cannot change while a run is in progress")
	}

	active := repository.build(pattern.Language)
	for _, existing := range active.For(pattern.Category) {
		if existing == pattern.Pattern {
			return nil
		}
	}

	if repository.store != nil {
		if err := repository.store.AddPattern(context, pattern); err != nil {
			return err
		}
	}

	repository.custom = append(repository.custom, pattern)
	repository.cache = make(map[string]PatternSet)
	return nil
}

// Remove deletes a user pattern. Seed patterns cannot be removed; removing an
// unknown pattern is a no-op.
func (repository *Repository) Remove(context context.Context, pattern catalog.Pattern) error {
	pattern, err := normalizePattern(pattern)
	if err != nil {
		return err
	}

	repository.mu.Lock()
	defer repository.mu.Unlock()

	if repository.runs > 0 {
		return apperr.Conflict("patterns cannot change while a run is in progress")
	}

	if repository.store != nil {
		if err := repository.store.RemovePattern(context, pattern); err != nil {
			return err
		}
	}

	kept := repository.custom[:0]
	for _, existing := range repository.custom {
		if existing != pattern {
			kept = append(kept, existing)
		}
	}
	repository.custom = kept
	repository.cache = make(map[string]PatternSet)
	return nil
}

// BeginRun marks a run as reading the repository.
func (repository *Repository) BeginRun() {
	repository.mu.Lock()
	repository.runs++
	repository.mu.Unlock()
}

// EndRun releases a [Repository.BeginRun].
func (repository *Repository) EndRun() {
	repository.mu.Lock()
	if repository.runs > 0 {
		repository.runs--
	}
	repository.mu.Unlock()
}

// build assembles the set of one language. Callers hold the lock.
func (repository *Repository) build(language string) PatternSet {
	languages := []string{language}
	if language == LanguageOther {
		languages = Languages
	}

	set := PatternSet{}
	for _, current := range languages {
		set.merge(repository.seed.patterns[current])
	}
	for _, current := range languages {
		for _, pattern := range repository.custom {
			if pattern.Language == current {
				set.add(pattern.Category, pattern.Pattern)
			}
		}
	}
	return set
}

func normalizePattern(pattern catalog.Pattern) (catalog.Pattern, error) {
	pattern.Pattern = textnorm.Normalize(pattern.Pattern)

	v := &validate.Validator{}
	v.Required("pattern", pattern.Pattern).
		MaxLen("pattern", pattern.Pattern, 120).
		OneOf("language", pattern.Language, Languages...).
		Custom("category", !pattern.Category.IsSet(), "Must be one of: HERO, HUB, HELP")

	return pattern, v.Err()
}
