// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package classify labels videos with an HHH category.

Architecture:

  - Lexicon: an embedded multilingual seed (lexicon.yaml) plus the restricted
    word lists used by anomaly fixes.
  - Language: a stop-word detector mapping text to fr, en, de, nl or other.
  - Repository: merges the seed with user-added patterns.
  - Classifier: a pure function of its input and the active patterns.

Categories are probed HELP, HERO, HUB: the first category with at least one
matching pattern wins. Without any match, short duration or high views mean
HERO and everything else is HUB.
*/
package classify

import (
	"strings"

	"github.com/taibuivan/channelscope/internal/catalog"
	"github.com/taibuivan/channelscope/pkg/convert"
	"github.com/taibuivan/channelscope/pkg/textnorm"
)

// Method names how a label was reached.
type Method string

const (
	MethodPattern      Method = "pattern"
	MethodUnionPattern Method = "pattern_union"
	MethodShort        Method = "heuristic_short"
	MethodViews        Method = "heuristic_views"
	MethodDefault      Method = "default"
	MethodNone         Method = "none"
)

// Confidence levels of the non-pattern paths.
const (
	confidenceHeuristic = 0.4
	confidenceDefault   = 0.2
)

// PatternSource supplies the active patterns of a language.
type PatternSource interface {
	Patterns(language string) PatternSet
}

// Input is what the classifier sees of a video.
type Input struct {
	Title           string
	Description     string
	DurationSeconds int
	ViewCount       *int64
	Country         string

	// Language is the resolved language; empty means detect it from the text.
	Language string
}

// InputFromVideo builds an [Input] from a stored video.
func InputFromVideo(video *catalog.Video, country string) Input {
	return Input{
		Title:           video.Title,
		Description:     video.Description,
		DurationSeconds: video.DurationSeconds,
		ViewCount:       video.ViewCount,
		Country:         country,
	}
}

// Result is the label proposed for one video.
type Result struct {
	Category   catalog.Category `json:"category"`
	Source     catalog.Source   `json:"source"`
	Confidence float64          `json:"confidence"`
	Matches    []string         `json:"matches,omitempty"`
	Language   string           `json:"language"`
	Method     Method           `json:"method"`
}

// Classifier assigns HHH categories from lexical patterns and heuristics.
type Classifier struct {
	patterns                 PatternSource
	highPerformanceThreshold int64
}

// NewClassifier returns a classifier. A non-positive threshold disables the
// view-count heuristic.
func NewClassifier(patterns PatternSource, highPerformanceThreshold int64) *Classifier {
	return &Classifier{patterns: patterns, highPerformanceThreshold: highPerformanceThreshold}
}

/*
Classify labels one video.

Description: The normalized "title description" text is probed in the
detected language first, then in the union of every language. Without any
pattern hit, the duration and view heuristics apply, and HUB is the default.
A blank title yields no label.

Parameters:
  - input: Input

Returns:
  - Result: Same input, same result
*/
func (classifier *Classifier) Classify(input Input) Result {
	if strings.TrimSpace(input.Title) == "" {
		return Result{Category: catalog.CategoryNone, Source: catalog.NoSource, Language: LanguageOther, Method: MethodNone}
	}

	text := textnorm.Normalize(input.Title + " " + input.Description)

	language := input.Language
	if language == "" {
		language = DetectLanguage(text)
	}

	result := Result{Language: language, Source: catalog.PatternSource}

	if category, matches, ok := probe(text, classifier.patterns.Patterns(language)); ok {
		return result.withMatches(category, matches, MethodPattern)
	}
	if language != LanguageOther {
		if category, matches, ok := probe(text, classifier.patterns.Patterns(LanguageOther)); ok {
			return result.withMatches(category, matches, MethodUnionPattern)
		}
	}

	switch {
	case catalog.IsShortDuration(input.DurationSeconds):
		result.Category, result.Confidence, result.Method = catalog.CategoryHero, confidenceHeuristic, MethodShort
	case classifier.highPerformanceThreshold > 0 && input.ViewCount != nil && *input.ViewCount >= classifier.highPerformanceThreshold:
		result.Category, result.Confidence, result.Method = catalog.CategoryHero, confidenceHeuristic, MethodViews
	default:
		result.Category, result.Confidence, result.Method = catalog.CategoryHub, confidenceDefault, MethodDefault
	}
	return result
}

// ClassifyVideo is Classify over a stored video.
func (classifier *Classifier) ClassifyVideo(video *catalog.Video, country string) Result {
	return classifier.Classify(InputFromVideo(video, country))
}

func (result Result) withMatches(category catalog.Category, matches []string, method Method) Result {
	result.Category = category
	result.Matches = matches
	result.Method = method
	result.Confidence = convert.Round(min(1.0, 0.3+0.2*float64(len(matches))), 2)
	return result
}

// probe returns the first category in HELP, HERO, HUB order with at least one
// distinct pattern contained in text.
func probe(text string, set PatternSet) (catalog.Category, []string, bool) {
	for _, category := range catalog.Categories {
		var matches []string
		for _, pattern := range set.For(category) {
			if strings.Contains(text, pattern) {
				matches = append(matches, pattern)
			}
		}
		if len(matches) > 0 {
			return category, matches, true
		}
	}
	return catalog.CategoryNone, nil, false
}
