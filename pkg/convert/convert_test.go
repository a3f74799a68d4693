// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package convert_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/channelscope/pkg/convert"
)

/*
TestRound checks decimal rounding used by the metric percentages.
*/
func TestRound(t *testing.T) {
	assert.Equal(t, 33.3, convert.Round(100.0/3, 1))
	assert.Equal(t, 66.67, convert.Round(200.0/3, 2))
	assert.Equal(t, 2.0, convert.Round(2, 1))
}

/*
TestClampUint64 saturates oversized counters.
*/
func TestClampUint64(t *testing.T) {
	assert.Equal(t, int64(42), convert.ClampUint64(42))
	assert.Equal(t, int64(math.MaxInt64), convert.ClampUint64(math.MaxUint64))
}

/*
TestLooseParsing covers the query parameter helpers.
*/
func TestLooseParsing(t *testing.T) {
	assert.True(t, convert.ToBool("true"))
	assert.False(t, convert.ToBool("nope"))
	assert.Equal(t, 7, convert.ToIntD("7", 1))
	assert.Equal(t, 1, convert.ToIntD("x", 1))
}
