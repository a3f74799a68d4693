// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package competitor

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/channelscope/internal/platform/request"
	"github.com/taibuivan/channelscope/internal/platform/respond"
	"github.com/taibuivan/channelscope/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer of the competitor registry.
type Handler struct {
	service *Service
}

// NewHandler constructs a competitor [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the registry next to the metric routes of the same prefix.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/competitors", handler.list)
	router.Post("/competitors", handler.create)
	router.Get("/competitors/{competitorID}", handler.get)
	router.Put("/competitors/{competitorID}", handler.update)
	router.Delete("/competitors/{competitorID}", handler.remove)
}

/*
GET /api/v1/competitors.

Request:
  - q: string (Name substring)
  - country: string (Name or two-letter code)
  - limit, page: int

Response:
  - 200: []catalog.Competitor: Paginated list
  - 400: INPUT_ERROR: Unknown country
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	page := pagination.FromRequest(request)
	query := request.URL.Query()

	competitors, total, err := handler.service.List(request.Context(), Filter{
		Query:   query.Get("q"),
		Country: query.Get("country"),
	}, page)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, competitors, page.Meta(total))
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	competitor, err := handler.service.Get(request.Context(), requestutil.Param(request, "competitorID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, competitor)
}

/*
POST /api/v1/competitors.

Request (Body):
  - Input JSON object

Response:
  - 201: catalog.Competitor: Created object
  - 400: VALIDATION_ERROR: Invalid input data
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var input Input
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	competitor, err := handler.service.Create(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, competitor)
}

/*
PUT /api/v1/competitors/{competitorID}.

Response:
  - 200: catalog.Competitor: Updated object
  - 404: NOT_FOUND: Unknown competitor
  - 409: CONFLICT: A run holds the competitor
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	var input Input
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	competitor, err := handler.service.Update(request.Context(), requestutil.Param(request, "competitorID"), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, competitor)
}

func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.Delete(request.Context(), requestutil.Param(request, "competitorID")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
