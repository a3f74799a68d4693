// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package classify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/channelscope/internal/classify"
)

/*
TestDetectLanguage covers each supported language and the fallbacks.
*/
func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"english", "How to pack for your holiday", classify.LanguageEnglish},
		{"french", "Découvrez nos cottages avec la famille pour les vacances", classify.LanguageFrench},
		{"german", "Unser Ferienpark für die ganze Familie und mit Kindern", classify.LanguageGerman},
		{"dutch", "Ontdek het park voor een weekend met onze kinderen", classify.LanguageDutch},
		{"empty", "", classify.LanguageOther},
		{"no_stop_words", "Summer vlog episode 3", classify.LanguageOther},
		{"tie", "the der", classify.LanguageOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify.DetectLanguage(tt.text))
		})
	}
}

/*
TestDetectLanguage_Deterministic returns the same answer for the same input.
*/
func TestDetectLanguage_Deterministic(t *testing.T) {
	text := "Le guide de la réservation pour votre séjour"
	first := classify.DetectLanguage(text)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, classify.DetectLanguage(text))
	}
}
