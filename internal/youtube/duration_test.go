// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package youtube_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/channelscope/internal/youtube"
)

/*
TestParseISODuration covers the duration shapes the platform returns.
*/
func TestParseISODuration(t *testing.T) {
	tests := []struct {
		input  string
		want   int
		wantOK bool
	}{
		{"PT45S", 45, true},
		{"PT7M", 420, true},
		{"PT1H2M3S", 3723, true},
		{"PT10H", 36000, true},
		{"P1DT2H", 93600, true},
		{"P0D", 0, false},
		{"PT0S", 0, false},
		{"PT", 0, false},
		{"", 0, false},
		{"1:00", 0, false},
		{"PT1.5S", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := youtube.ParseISODuration(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

/*
TestFormatDuration renders HH:MM:SS.
*/
func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "00:00:45", youtube.FormatDuration(45))
	assert.Equal(t, "01:02:03", youtube.FormatDuration(3723))
	assert.Equal(t, "26:00:00", youtube.FormatDuration(93600))
	assert.Equal(t, "", youtube.FormatDuration(0))
}
