// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pipeline

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/channelscope/internal/platform/apperr"
	requestutil "github.com/taibuivan/channelscope/internal/platform/request"
	"github.com/taibuivan/channelscope/internal/platform/respond"
	"github.com/taibuivan/channelscope/pkg/pagination"
)

// Handler exposes run triggering and the run history.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/", handler.trigger)
	router.Get("/", handler.list)
	router.Get("/current", handler.current)
	router.Delete("/current", handler.cancel)
	router.Get("/{runID}", handler.get)
}

func (handler *Handler) trigger(writer http.ResponseWriter, request *http.Request) {
	var overrides Overrides
	if err := requestutil.DecodeJSON(request, &overrides); err != nil {
		respond.Error(writer, request, err)
		return
	}

	run, err := handler.service.Trigger(request.Context(), overrides)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Accepted(writer, run)
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	page := pagination.FromRequest(request)

	runs, total, err := handler.service.List(request.Context(), page)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, runs, page.Meta(total))
}

func (handler *Handler) current(writer http.ResponseWriter, request *http.Request) {
	run, ok := handler.service.Current()
	if !ok {
		respond.Error(writer, request, apperr.NotFound("Active run"))
		return
	}
	respond.OK(writer, run)
}

func (handler *Handler) cancel(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.Cancel(); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	report, err := handler.service.Get(request.Context(), requestutil.Param(request, "runID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, report)
}
