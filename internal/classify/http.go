// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package classify

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/channelscope/internal/catalog"
	requestutil "github.com/taibuivan/channelscope/internal/platform/request"
	"github.com/taibuivan/channelscope/internal/platform/respond"
)

// Handler exposes the pattern repository over HTTP.
type Handler struct {
	repository *Repository
}

func NewHandler(repository *Repository) *Handler {
	return &Handler{repository: repository}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", handler.listPatterns)
	router.Post("/", handler.addPattern)
	router.Delete("/", handler.removePattern)
}

// patternRequest is the body of pattern mutations.
type patternRequest struct {
	Language string `json:"language"`
	Category string `json:"category"`
	Pattern  string `json:"pattern"`
}

func (body patternRequest) toPattern() catalog.Pattern {
	return catalog.Pattern{
		Language: body.Language,
		Category: catalog.ParseCategory(body.Category),
		Pattern:  body.Pattern,
	}
}

// patternsResponse is the active set of one language.
type patternsResponse struct {
	Language string     `json:"language"`
	Patterns PatternSet `json:"patterns"`
}

func (handler *Handler) listPatterns(writer http.ResponseWriter, request *http.Request) {
	language := request.URL.Query().Get("language")
	if !IsSupported(language) {
		language = LanguageOther
	}

	respond.OK(writer, patternsResponse{
		Language: language,
		Patterns: handler.repository.Patterns(language),
	})
}

func (handler *Handler) addPattern(writer http.ResponseWriter, request *http.Request) {
	var body patternRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	pattern := body.toPattern()
	if err := handler.repository.Add(request.Context(), pattern); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, patternsResponse{
		Language: pattern.Language,
		Patterns: handler.repository.Patterns(pattern.Language),
	})
}

func (handler *Handler) removePattern(writer http.ResponseWriter, request *http.Request) {
	var body patternRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.repository.Remove(request.Context(), body.toPattern()); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
