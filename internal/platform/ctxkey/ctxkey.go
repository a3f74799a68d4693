// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxkey holds the context keys shared by the HTTP chain and the run engine.
// The key type is unexported so no other package can collide with them.
package ctxkey

type key string

const (
	// KeyRequestID carries the X-Request-ID of an ops API call.
	KeyRequestID key = "request_id"

	// KeyRunID carries the id of the run in progress.
	KeyRunID key = "run_id"

	// KeyCompetitorID carries the competitor a run worker is processing.
	KeyCompetitorID key = "competitor_id"

	// KeyLogger carries the request or run scoped [*log/slog.Logger].
	KeyLogger key = "logger"
)
