// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package youtube

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/taibuivan/channelscope/internal/platform/apperr"
)

var fastPolicy = RetryPolicy{
	MaxRetries:     2,
	InitialDelay:   time.Millisecond,
	MaxDelay:       4 * time.Millisecond,
	RequestTimeout: time.Second,
}

/*
TestClassify maps upstream failures onto the catalog taxonomy.
*/
func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		transient bool
	}{
		{"server_error", &googleapi.Error{Code: http.StatusInternalServerError}, true},
		{"unavailable", &googleapi.Error{Code: http.StatusServiceUnavailable}, true},
		{"too_many_requests", &googleapi.Error{Code: http.StatusTooManyRequests}, true},
		{"rate_limited_403", &googleapi.Error{Code: http.StatusForbidden, Errors: []googleapi.ErrorItem{{Reason: "rateLimitExceeded"}}}, true},
		{"quota_exceeded", &googleapi.Error{Code: http.StatusForbidden, Errors: []googleapi.ErrorItem{{Reason: "quotaExceeded"}}}, false},
		{"not_found", &googleapi.Error{Code: http.StatusNotFound}, false},
		{"bad_request", &googleapi.Error{Code: http.StatusBadRequest}, false},
		{"timeout", context.DeadlineExceeded, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify("videos.list", tt.err)
			assert.Equal(t, tt.transient, apperr.IsTransient(err))
			assert.Equal(t, !tt.transient, apperr.IsPermanent(err))
		})
	}
}

/*
TestRetryPolicy_RetriesTransient stops after MaxRetries additional attempts.
*/
func TestRetryPolicy_RetriesTransient(t *testing.T) {
	attempts := 0
	err := fastPolicy.do(context.Background(), "videos.list", func(context.Context) error {
		attempts++
		return &googleapi.Error{Code: http.StatusBadGateway}
	})

	require.Error(t, err)
	assert.True(t, apperr.IsTransient(err))
	assert.Equal(t, 3, attempts)
}

/*
TestRetryPolicy_RecoversAfterTransient returns nil once an attempt succeeds.
*/
func TestRetryPolicy_RecoversAfterTransient(t *testing.T) {
	attempts := 0
	err := fastPolicy.do(context.Background(), "videos.list", func(context.Context) error {
		attempts++
		if attempts == 1 {
			return &googleapi.Error{Code: http.StatusServiceUnavailable}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

/*
TestRetryPolicy_PermanentIsNotRetried fails on the first permanent error.
*/
func TestRetryPolicy_PermanentIsNotRetried(t *testing.T) {
	attempts := 0
	err := fastPolicy.do(context.Background(), "channels.list", func(context.Context) error {
		attempts++
		return &googleapi.Error{Code: http.StatusNotFound}
	})

	assert.True(t, apperr.IsPermanent(err))
	assert.Equal(t, 1, attempts)
}

/*
TestRetryPolicy_Cancellation returns the context error untouched.
*/
func TestRetryPolicy_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	err := fastPolicy.do(ctx, "videos.list", func(context.Context) error {
		cancel()
		return errors.New("connection reset")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, apperr.IsAppError(err))
}

/*
TestRetryPolicy_Backoff stays within the jittered window.
*/
func TestRetryPolicy_Backoff(t *testing.T) {
	policy := DefaultRetryPolicy

	for attempt := 1; attempt <= 6; attempt++ {
		delay := policy.backoff(attempt)
		assert.GreaterOrEqual(t, delay, time.Duration(float64(policy.InitialDelay)*0.75))
		assert.LessOrEqual(t, delay, time.Duration(float64(policy.MaxDelay)*1.25))
	}
}
