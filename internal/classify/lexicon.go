// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package classify

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/taibuivan/channelscope/internal/catalog"
	"github.com/taibuivan/channelscope/pkg/textnorm"
)

//go:embed lexicon.yaml
var lexiconYAML []byte

type lexiconFile struct {
	Languages map[string]map[string][]string `yaml:"languages"`
	Fixes     struct {
		Help          []string `yaml:"help"`
		Inspirational []string `yaml:"inspirational"`
	} `yaml:"fixes"`
}

// Seed is the built-in lexicon: patterns per language and category, plus the
// restricted lexicons used by anomaly fixes.
type Seed struct {
	patterns map[string]PatternSet
	Fixes    *FixLexicon
}

// LoadSeed parses the embedded lexicon.
func LoadSeed() (*Seed, error) {
	return ParseSeed(lexiconYAML)
}

// MustLoadSeed is LoadSeed for package initialization and tests.
func MustLoadSeed() *Seed {
	seed, err := LoadSeed()
	if err != nil {
		panic(err)
	}
	return seed
}

// ParseSeed reads a lexicon document. Unknown languages or categories are rejected.
func ParseSeed(document []byte) (*Seed, error) {
	var file lexiconFile
	if err := yaml.Unmarshal(document, &file); err != nil {
		return nil, fmt.Errorf("classify: parse lexicon: %w", err)
	}

	seed := &Seed{patterns: make(map[string]PatternSet, len(Languages))}
	for language, categories := range file.Languages {
		if !IsSupported(language) {
			return nil, fmt.Errorf("classify: unsupported lexicon language %q", language)
		}

		set := PatternSet{}
		for name, patterns := range categories {
			category := catalog.ParseCategory(name)
			if !category.IsSet() {
				return nil, fmt.Errorf("classify: unknown category %q for %s", name, language)
			}
			for _, pattern := range patterns {
				set.add(category, pattern)
			}
		}
		seed.patterns[language] = set
	}

	seed.Fixes = NewFixLexicon(file.Fixes.Help, file.Fixes.Inspirational)
	return seed, nil
}

// Patterns returns a copy of the seed patterns of one language.
func (seed *Seed) Patterns(language string) PatternSet {
	return seed.patterns[language].clone()
}

// # Fix Lexicons

// FixLexicon holds the restricted word lists anomaly fixes match against.
type FixLexicon struct {
	help          []string
	inspirational []string
}

// NewFixLexicon normalizes and deduplicates both lists.
func NewFixLexicon(help, inspirational []string) *FixLexicon {
	return &FixLexicon{help: normalizeAll(help), inspirational: normalizeAll(inspirational)}
}

// MatchesHelp reports whether text contains a restricted HELP term.
func (lexicon *FixLexicon) MatchesHelp(text string) bool {
	return containsAny(textnorm.Normalize(text), lexicon.help)
}

// MatchesInspirational reports whether text contains an inspirational term.
func (lexicon *FixLexicon) MatchesInspirational(text string) bool {
	return containsAny(textnorm.Normalize(text), lexicon.inspirational)
}

func normalizeAll(patterns []string) []string {
	seen := make(map[string]struct{}, len(patterns))
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		normalized := textnorm.Normalize(pattern)
		if normalized == "" {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		result = append(result, normalized)
	}
	return result
}

func containsAny(text string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.Contains(text, pattern) {
			return true
		}
	}
	return false
}
