// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/channelscope/internal/platform/constants"
	"github.com/taibuivan/channelscope/internal/platform/ctxutil"
	"github.com/taibuivan/channelscope/internal/platform/middleware"
)

type recordingObserver struct {
	route  string
	status int
}

func (observer *recordingObserver) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	observer.route = route
	observer.status = status
}

/*
TestRequestID checks that an incoming ID is kept and a missing one is generated.
*/
func TestRequestID(t *testing.T) {
	var seen string
	handler := middleware.RequestID()(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetRequestID(request.Context())
	}))

	request := httptest.NewRequest(http.MethodGet, "/health", nil)
	request.Header.Set(constants.HeaderXRequestID, "given-id")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, "given-id", seen)
	assert.Equal(t, "given-id", recorder.Header().Get(constants.HeaderXRequestID))

	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.NotEmpty(t, seen)
	assert.NotEqual(t, "given-id", seen)
}

/*
TestPanicRecovery ensures a panicking handler produces a 500 JSON error.
*/
func TestPanicRecovery(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := middleware.PanicRecovery(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "INTERNAL_SERVER_ERROR")
}

/*
TestInstrument_UsesRoutePattern verifies metric labels use the chi route, not the raw path.
*/
func TestInstrument_UsesRoutePattern(t *testing.T) {
	observer := &recordingObserver{}

	router := chi.NewRouter()
	router.Use(middleware.Instrument(observer))
	router.Get("/runs/{runID}", func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusAccepted)
	})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/runs/0192", nil))

	require.Equal(t, http.StatusAccepted, recorder.Code)
	assert.Equal(t, "/runs/{runID}", observer.route)
	assert.Equal(t, http.StatusAccepted, observer.status)
}

/*
TestRealIP covers proxy header precedence.
*/
func TestRealIP(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", middleware.RealIP(request))

	request.Header.Set(constants.HeaderXForwardedFor, "203.0.113.7, 10.0.0.2")
	assert.Equal(t, "203.0.113.7", middleware.RealIP(request))

	request.Header.Set(constants.HeaderXRealIP, "198.51.100.4")
	assert.Equal(t, "198.51.100.4", middleware.RealIP(request))
}

/*
TestRateLimiter_SeparatesMutations checks that exhausting the mutation bucket
leaves reads from the same IP untouched and other IPs unaffected.
*/
func TestRateLimiter_SeparatesMutations(t *testing.T) {
	limiter := middleware.NewRateLimiter().WithLimits(
		middleware.Limit{PerSecond: 0.001, Burst: 3},
		middleware.Limit{PerSecond: 0.001, Burst: 1},
	)

	assert.True(t, limiter.Allow("198.51.100.1", http.MethodPost))
	assert.False(t, limiter.Allow("198.51.100.1", http.MethodDelete))
	assert.True(t, limiter.Allow("198.51.100.1", http.MethodGet))
	assert.True(t, limiter.Allow("198.51.100.2", http.MethodPut))
}

/*
TestRateLimiter_Middleware answers 429 once the bucket is empty.
*/
func TestRateLimiter_Middleware(t *testing.T) {
	limiter := middleware.NewRateLimiter().WithLimits(
		middleware.Limit{PerSecond: 0.001, Burst: 1},
		middleware.Limit{PerSecond: 0.001, Burst: 1},
	)
	handler := limiter.Middleware(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusAccepted)
	}))

	codes := make([]int, 0, 2)
	for range 2 {
		request := httptest.NewRequest(http.MethodPost, "/api/v1/runs", nil)
		request.RemoteAddr = "192.0.2.10:4000"
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)
		codes = append(codes, recorder.Code)
	}

	assert.Equal(t, []int{http.StatusAccepted, http.StatusTooManyRequests}, codes)
}

type corsConfig struct {
	development bool
	suffix      string
}

func (cfg corsConfig) IsDevelopment() bool         { return cfg.development }
func (cfg corsConfig) AllowedOriginSuffix() string { return cfg.suffix }

/*
TestCORS covers the origin allow-list and the pre-flight short circuit.
*/
func TestCORS(t *testing.T) {
	tests := []struct {
		name    string
		cfg     corsConfig
		origin  string
		allowed bool
	}{
		{name: "development allows any", cfg: corsConfig{development: true}, origin: "http://localhost:3000", allowed: true},
		{name: "suffix match", cfg: corsConfig{suffix: ".example.com"}, origin: "https://ops.example.com", allowed: true},
		{name: "suffix mismatch", cfg: corsConfig{suffix: ".example.com"}, origin: "https://evil.test", allowed: false},
		{name: "no suffix configured", cfg: corsConfig{}, origin: "https://ops.example.com", allowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reached := false
			handler := middleware.CORS(tt.cfg)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				reached = true
			}))

			request := httptest.NewRequest(http.MethodOptions, "/api/v1/competitors", nil)
			request.Header.Set(constants.HeaderOrigin, tt.origin)
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			assert.Equal(t, http.StatusNoContent, recorder.Code)
			assert.False(t, reached)
			if tt.allowed {
				assert.Equal(t, tt.origin, recorder.Header().Get("Access-Control-Allow-Origin"))
				assert.Contains(t, recorder.Header().Get("Access-Control-Allow-Methods"), http.MethodPut)
			} else {
				assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}
