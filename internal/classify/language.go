// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package classify

import "github.com/taibuivan/channelscope/pkg/textnorm"

// Supported languages. [LanguageOther] stands for anything else and selects
// the union of every lexicon.
const (
	LanguageFrench  = "fr"
	LanguageEnglish = "en"
	LanguageGerman  = "de"
	LanguageDutch   = "nl"
	LanguageOther   = "other"
)

// Languages lists the supported languages in union order.
var Languages = []string{LanguageFrench, LanguageEnglish, LanguageGerman, LanguageDutch}

// IsSupported reports whether language has its own lexicon.
func IsSupported(language string) bool {
	for _, candidate := range Languages {
		if candidate == language {
			return true
		}
	}
	return false
}

// Stop words in folded form (lowercase, no accents).
var stopWords = map[string][]string{
	LanguageFrench: {
		"le", "la", "les", "des", "du", "et", "pour", "avec", "est", "une", "un",
		"nos", "notre", "votre", "vos", "dans", "sur", "au", "aux", "ce", "cette", "qui", "que",
	},
	LanguageEnglish: {
		"the", "and", "to", "of", "for", "your", "our", "with", "is", "you",
		"this", "how", "what", "on", "at", "from", "my", "are", "we",
	},
	LanguageGerman: {
		"der", "die", "das", "und", "mit", "fur", "ist", "ein", "eine", "unser",
		"unsere", "im", "den", "dem", "zu", "auf", "von", "nicht", "ich", "wir", "sie",
	},
	LanguageDutch: {
		"het", "een", "van", "voor", "ons", "onze", "je", "jouw", "naar",
		"bij", "wat", "hoe", "niet", "ook", "zijn", "deze", "dit", "wij",
	},
}

var stopWordIndex = buildStopWordIndex()

func buildStopWordIndex() map[string][]string {
	index := make(map[string][]string)
	for _, language := range Languages {
		for _, word := range stopWords[language] {
			index[word] = append(index[word], language)
		}
	}
	return index
}

// DetectLanguage maps text to one of the supported languages or [LanguageOther].
//
// Each token votes for every language whose stop-word list contains it. The
// language with strictly the most votes wins; a tie, no votes, or empty text
// yields [LanguageOther].
func DetectLanguage(text string) string {
	votes := make(map[string]int, len(Languages))
	for _, token := range textnorm.Tokens(text) {
		for _, language := range stopWordIndex[token] {
			votes[language]++
		}
	}

	best, bestVotes, tied := LanguageOther, 0, false
	for _, language := range Languages {
		switch {
		case votes[language] > bestVotes:
			best, bestVotes, tied = language, votes[language], false
		case votes[language] == bestVotes && bestVotes > 0:
			tied = true
		}
	}

	if bestVotes == 0 || tied {
		return LanguageOther
	}
	return best
}
