// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package api wires the ops HTTP server and its liveness and readiness probes.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/taibuivan/channelscope/internal/platform/constants"
	"github.com/taibuivan/channelscope/internal/platform/respond"
)

// Readiness states.
const (
	statusReady       = "ready"
	statusDegraded    = "degraded"
	statusUnavailable = "unavailable"
)

// Check is one dependency probe of the readiness endpoint.
type Check struct {
	Name  string
	Probe func(context context.Context) error

	// Optional dependencies degrade the service instead of taking it out of rotation.
	// The metric cache is optional: metrics are recomputed from the store without it.
	Optional bool
}

// HealthDependencies holds the probes of the /ready endpoint.
type HealthDependencies struct {
	Checks []Check

	// CatalogClient reports whether runs can reach the video catalog or only run offline.
	CatalogClient bool
}

type healthHandler struct {
	dependencies HealthDependencies
	logger       *slog.Logger
}

type checkResult struct {
	Name     string `json:"name"`
	IsOK     bool   `json:"ok"`
	Optional bool   `json:"optional,omitempty"`
	Error    string `json:"error,omitempty"`
}

// NewHealthHandlers creates the /health and /ready http.HandlerFuncs.
func NewHealthHandlers(deps HealthDependencies, logger *slog.Logger) (liveness, readiness http.HandlerFunc) {
	handler := &healthHandler{dependencies: deps, logger: logger}
	return handler.liveness, handler.readiness
}

// liveness handles GET /health.
func (handler *healthHandler) liveness(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, map[string]string{constants.FieldStatus: "ok", "version": constants.AppVersion})
}

// readiness handles GET /ready. A failing required probe answers 503; a
// failing optional probe answers 200 with a degraded status.
func (handler *healthHandler) readiness(writer http.ResponseWriter, request *http.Request) {
	results := make([]checkResult, 0, len(handler.dependencies.Checks))
	status := statusReady

	for _, check := range handler.dependencies.Checks {
		result := checkResult{Name: check.Name, IsOK: true, Optional: check.Optional}
		if err := probe(request.Context(), check); err != nil {
			result.IsOK = false
			result.Error = err.Error()
			handler.logger.Error("readiness_check_failed", slog.String("dependency", check.Name), slog.Any("error", err))

			switch {
			case !check.Optional:
				status = statusUnavailable
			case status == statusReady:
				status = statusDegraded
			}
		}
		results = append(results, result)
	}

	catalog := "offline"
	if handler.dependencies.CatalogClient {
		catalog = "configured"
	}

	httpStatus := http.StatusOK
	if status == statusUnavailable {
		httpStatus = http.StatusServiceUnavailable
	}

	respond.JSON(writer, httpStatus, respond.SuccessEnvelope{Data: map[string]any{
		constants.FieldStatus: status,
		constants.FieldChecks: results,
		"catalog_client":      catalog,
	}})
}

func probe(parent context.Context, check Check) error {
	ctx, cancel := context.WithTimeout(parent, constants.HealthCheckTimeout)
	defer cancel()
	return check.Probe(ctx)
}
