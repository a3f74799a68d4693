// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the centralized error handling framework for channelscope.

It provides a rich error type that bridges low-level catalog, storage and
engine errors with the run report and the ops HTTP API.

Architecture:

  - AppError: A struct containing a machine-readable code and a safe message.
  - Taxonomy: Engine error classes (input, catalog, store, invariant) are codes,
    so a single type travels from the catalog client up to the run report.
  - Mapping: Explicit mapping from AppError to standard HTTP Status Codes.

Every error that leaves an engine phase should be wrapped as an [AppError] so the
orchestrator can decide between skipping a batch, rolling back a competitor, or
aborting the run.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is the canonical error type for the engine and its API.
//
// It carries an HTTP status code, a machine-readable code, a client-safe
// message, and an optional slice of field-level validation errors.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., SQL queries).
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND", "CONFLICT").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("Competitor") // Returns "Competitor not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       "NOT_FOUND",
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// Conflict creates a 409 [AppError] for duplicate or unique-constraint violations.
func Conflict(msg string) *AppError {
	return &AppError{
		Code:       "CONFLICT",
		Message:    msg,
		HTTPStatus: http.StatusConflict,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// RateLimited creates a 429 [AppError].
func RateLimited(retryAfterSeconds int) *AppError {
	return &AppError{
		Code:       "RATE_LIMITED",
		Message:    fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds),
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// Unprocessable creates a 422 [AppError] for semantically invalid input.
func Unprocessable(msg string) *AppError {
	return &AppError{
		Code:       "UNPROCESSABLE",
		Message:    msg,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// # Server Errors (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// ServiceUnavailable creates a 503 [AppError], used when a collaborator is not configured.
func ServiceUnavailable(msg string) *AppError {
	return &AppError{
		Code:       "SERVICE_UNAVAILABLE",
		Message:    msg,
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// # Engine Taxonomy

// Engine error codes. They classify failures for the orchestrator's recovery policy.
const (
	CodeInput              = "INPUT_ERROR"
	CodeTransientCatalog   = "TRANSIENT_CATALOG_ERROR"
	CodePermanentCatalog   = "PERMANENT_CATALOG_ERROR"
	CodeStore              = "STORE_ERROR"
	CodeInvariantViolation = "INVARIANT_VIOLATION"
)

// Input creates an INPUT_ERROR for an out-of-domain run option.
// It is the only error class that aborts a whole run.
func Input(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       CodeInput,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// TransientCatalog wraps a network, timeout or 5xx failure of the catalog client.
func TransientCatalog(op string, cause error) *AppError {
	return &AppError{
		Code:       CodeTransientCatalog,
		Message:    "catalog call failed transiently: " + op,
		HTTPStatus: http.StatusBadGateway,
		Cause:      cause,
	}
}

// PermanentCatalog wraps a 4xx answer of the catalog client (unknown channel, deleted video).
func PermanentCatalog(op string, cause error) *AppError {
	return &AppError{
		Code:       CodePermanentCatalog,
		Message:    "catalog call failed permanently: " + op,
		HTTPStatus: http.StatusBadGateway,
		Cause:      cause,
	}
}

// Store wraps a persistence failure. The current competitor phase is rolled back.
func Store(action string, cause error) *AppError {
	return &AppError{
		Code:       CodeStore,
		Message:    "store operation failed: " + action,
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// InvariantViolation signals a write that would break a catalog invariant.
// It is fatal to the current competitor and is never written.
func InvariantViolation(msg string) *AppError {
	return &AppError{
		Code:       CodeInvariantViolation,
		Message:    msg,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// # Helpers

// HasCode reports whether err carries an [*AppError] with the given code.
func HasCode(err error, code string) bool {
	ae := As(err)
	return ae != nil && ae.Code == code
}

// IsNotFound reports whether err is a NOT_FOUND error.
func IsNotFound(err error) bool { return HasCode(err, "NOT_FOUND") }

// IsConflict reports whether err is a CONFLICT error.
func IsConflict(err error) bool { return HasCode(err, "CONFLICT") }

// IsInput reports whether err is an INPUT_ERROR (or a VALIDATION_ERROR re-tagged as one).
func IsInput(err error) bool { return HasCode(err, CodeInput) }

// IsTransient reports whether err is a retryable catalog error.
func IsTransient(err error) bool { return HasCode(err, CodeTransientCatalog) }

// IsPermanent reports whether err is a non-retryable catalog error.
func IsPermanent(err error) bool { return HasCode(err, CodePermanentCatalog) }

// IsStore reports whether err is a persistence failure.
func IsStore(err error) bool { return HasCode(err, CodeStore) }

// IsInvariant reports whether err is an invariant violation.
func IsInvariant(err error) bool { return HasCode(err, CodeInvariantViolation) }

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}
