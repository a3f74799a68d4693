// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package youtube

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"net"
	"net/http"
	"time"

	"google.golang.org/api/googleapi"

	"github.com/taibuivan/channelscope/internal/platform/apperr"
	"github.com/taibuivan/channelscope/internal/platform/constants"
)

// RetryPolicy controls how catalog calls are retried.
type RetryPolicy struct {
	MaxRetries     int
	InitialDelay   time.Duration
	MaxDelay       time.Duration
	RequestTimeout time.Duration
}

// DefaultRetryPolicy retries twice between 1s and 8s with a 30s budget per attempt.
var DefaultRetryPolicy = RetryPolicy{
	MaxRetries:     constants.CatalogMaxRetries,
	InitialDelay:   constants.CatalogInitialBackoff,
	MaxDelay:       constants.CatalogMaxBackoff,
	RequestTimeout: constants.CatalogRequestTimeout,
}

// do runs call until it succeeds, fails permanently, or retries run out.
// Each attempt gets its own timeout derived from the parent context.
func (policy RetryPolicy) do(parent context.Context, operation string, call func(context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepWithContext(parent, policy.backoff(attempt)); err != nil {
				return err
			}
		}

		attemptCtx, cancel := context.WithTimeout(parent, policy.RequestTimeout)
		err := call(attemptCtx)
		cancel()

		if err == nil {
			return nil
		}
		if parentErr := parent.Err(); parentErr != nil {
			return parentErr
		}

		lastErr = classify(operation, err)
		if !apperr.IsTransient(lastErr) {
			return lastErr
		}
	}

	return lastErr
}

// backoff doubles from InitialDelay up to MaxDelay with ±25% jitter.
func (policy RetryPolicy) backoff(attempt int) time.Duration {
	base := float64(policy.InitialDelay) * math.Pow(2, float64(attempt-1))
	if base > float64(policy.MaxDelay) {
		base = float64(policy.MaxDelay)
	}
	jitter := base * 0.25 * (rand.Float64()*2 - 1) //nolint:gosec
	return time.Duration(base + jitter)
}

// classify tags err as a transient or permanent catalog error.
func classify(operation string, err error) error {
	if err == nil || apperr.IsAppError(err) {
		return err
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if isRetryableStatus(apiErr.Code) || isRateLimitReason(apiErr) {
			return apperr.TransientCatalog(operation, err)
		}
		return apperr.PermanentCatalog(operation, err)
	}

	if errors.Is(err, context.DeadlineExceeded) || isRetryableNetError(err) {
		return apperr.TransientCatalog(operation, err)
	}

	return apperr.PermanentCatalog(operation, err)
}

func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// isRateLimitReason detects short-window throttling reported as 403.
// A spent daily quota ("quotaExceeded") is permanent for the run.
func isRateLimitReason(apiErr *googleapi.Error) bool {
	if apiErr.Code != http.StatusForbidden {
		return false
	}
	for _, item := range apiErr.Errors {
		switch item.Reason {
		case "rateLimitExceeded", "userRateLimitExceeded":
			return true
		}
	}
	return false
}

func isRetryableNetError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

// sleepWithContext sleeps for d, returning early if the context is cancelled.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
