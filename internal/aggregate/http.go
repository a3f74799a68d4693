// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package aggregate

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/channelscope/internal/platform/request"
	"github.com/taibuivan/channelscope/internal/platform/respond"
)

// Handler exposes the metric read models.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/competitors/{competitorID}/metrics", handler.competitorMetrics)
	router.Get("/countries/{country}/metrics", handler.countryMetrics)
	router.Get("/europe/metrics", handler.europeMetrics)
}

func (handler *Handler) competitorMetrics(writer http.ResponseWriter, request *http.Request) {
	snapshot, err := handler.service.CompetitorMetrics(request.Context(), requestutil.Param(request, "competitorID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, snapshot)
}

func (handler *Handler) countryMetrics(writer http.ResponseWriter, request *http.Request) {
	metrics, err := handler.service.CountryMetrics(request.Context(), requestutil.Param(request, "country"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, metrics)
}

func (handler *Handler) europeMetrics(writer http.ResponseWriter, request *http.Request) {
	metrics, err := handler.service.EuropeMetrics(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, metrics)
}
