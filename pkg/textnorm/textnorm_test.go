// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package textnorm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/channelscope/pkg/textnorm"
)

/*
TestNormalize covers case folding, composition and whitespace collapsing.
*/
func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase", "How To Pack", "how to pack"},
		{"whitespace", "  summer\tvlog \n episode 3 ", "summer vlog episode 3"},
		{"decomposed_accent", "Découvrez", "découvrez"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, textnorm.Normalize(tt.in))
		})
	}
}

/*
TestTokens verifies accent stripping and punctuation splitting.
*/
func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"fur", "die", "familie"}, textnorm.Tokens("Für die Familie!"))
	assert.Equal(t, []string{"mode", "d", "emploi"}, textnorm.Tokens("Mode d'emploi"))
	assert.Empty(t, textnorm.Tokens("  -- "))
}
