// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ctxutil_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/channelscope/internal/platform/ctxutil"
)

/*
TestContext_RequestID verifies that Request IDs can be injected and retrieved.
*/
func TestContext_RequestID(t *testing.T) {
	ctx := context.Background()
	requestID := "test-request-id"

	// 1. Initially should be empty
	assert.Empty(t, ctxutil.GetRequestID(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithRequestID(ctx, requestID)
	assert.Equal(t, requestID, ctxutil.GetRequestID(ctx))
}

/*
TestContext_Logger verifies that a custom logger can be stored in context.
*/
func TestContext_Logger(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// 1. Initially should return the default logger
	assert.Equal(t, slog.Default(), ctxutil.GetLogger(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithLogger(ctx, logger)
	assert.Equal(t, logger, ctxutil.GetLogger(ctx))
}

/*
TestContext_LoggerOr verifies the fallback is used only when nothing was attached.
*/
func TestContext_LoggerOr(t *testing.T) {
	fallback := slog.New(slog.NewTextHandler(io.Discard, nil))
	attached := slog.New(slog.NewJSONHandler(io.Discard, nil))

	assert.Same(t, fallback, ctxutil.LoggerOr(context.Background(), fallback))

	ctx := ctxutil.WithLogger(context.Background(), attached)
	assert.Same(t, attached, ctxutil.LoggerOr(ctx, fallback))
}

/*
TestContext_RunScope verifies run and competitor identifiers travel independently.
*/
func TestContext_RunScope(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, ctxutil.GetRunID(ctx))
	assert.Empty(t, ctxutil.GetCompetitorID(ctx))

	ctx = ctxutil.WithRunID(ctx, "run-1")
	ctx = ctxutil.WithCompetitorID(ctx, "competitor-9")

	assert.Equal(t, "run-1", ctxutil.GetRunID(ctx))
	assert.Equal(t, "competitor-9", ctxutil.GetCompetitorID(ctx))
	assert.Empty(t, ctxutil.GetRequestID(ctx))
}
