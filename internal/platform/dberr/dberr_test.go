// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dberr_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/channelscope/internal/platform/apperr"
	"github.com/taibuivan/channelscope/internal/platform/dberr"
)

/*
TestWrap classifies driver errors into the application taxonomy.
*/
func TestWrap(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"no_rows", pgx.ErrNoRows, "NOT_FOUND"},
		{"unique", &pgconn.PgError{Code: pgerrcode.UniqueViolation}, "CONFLICT"},
		{"foreign_key", &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, Message: "fk"}, apperr.CodeInvariantViolation},
		{"check", &pgconn.PgError{Code: pgerrcode.CheckViolation, Message: "category"}, apperr.CodeInvariantViolation},
		{"deadlock", &pgconn.PgError{Code: pgerrcode.DeadlockDetected}, apperr.CodeStore},
		{"other", errors.New("connection reset"), apperr.CodeStore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := dberr.Wrap(tt.err, "test_action")
			ae := apperr.As(wrapped)
			if assert.NotNil(t, ae) {
				assert.Equal(t, tt.code, ae.Code)
			}
		})
	}

	assert.Nil(t, dberr.Wrap(nil, "noop"))
}

/*
TestWrap_KeepsCancellation ensures callers can still detect a cancelled context.
*/
func TestWrap_KeepsCancellation(t *testing.T) {
	wrapped := dberr.Wrap(context.Canceled, "update_videos")
	assert.True(t, errors.Is(wrapped, context.Canceled))
	assert.True(t, apperr.IsStore(wrapped))
}
