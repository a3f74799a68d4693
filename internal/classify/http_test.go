// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package classify_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/channelscope/internal/classify"
)

func newPatternRouter(repository *classify.Repository) http.Handler {
	router := chi.NewRouter()
	router.Route("/patterns", classify.NewHandler(repository).RegisterRoutes)
	return router
}

/*
TestHandler_PatternLifecycle adds, lists and removes a pattern over HTTP.
*/
func TestHandler_PatternLifecycle(t *testing.T) {
	router := newPatternRouter(classify.NewRepository(classify.MustLoadSeed(), nil))
	body := `{"language":"nl","category":"HELP","pattern":"Routebeschrijving"}`

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/patterns/", strings.NewReader(body)))
	assert.Equal(t, http.StatusCreated, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "routebeschrijving")

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/patterns/?language=nl", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "routebeschrijving")

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodDelete, "/patterns/", strings.NewReader(body)))
	assert.Equal(t, http.StatusNoContent, recorder.Code)
}

/*
TestHandler_RejectsInvalidPattern answers 400 for unknown categories.
*/
func TestHandler_RejectsInvalidPattern(t *testing.T) {
	router := newPatternRouter(classify.NewRepository(classify.MustLoadSeed(), nil))

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/patterns/",
		strings.NewReader(`{"language":"en","category":"PROMO","pattern":"sale"}`)))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

/*
TestHandler_RefusesDuringRun answers 409 while a run holds the repository.
*/
func TestHandler_RefusesDuringRun(t *testing.T) {
	repository := classify.NewRepository(classify.MustLoadSeed(), nil)
	repository.BeginRun()
	defer repository.EndRun()

	recorder := httptest.NewRecorder()
	newPatternRouter(repository).ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/patterns/",
		strings.NewReader(`{"language":"en","category":"HUB","pattern":"q&a"}`)))

	assert.Equal(t, http.StatusConflict, recorder.Code)
}
