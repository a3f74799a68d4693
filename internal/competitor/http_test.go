// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package competitor_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/channelscope/internal/catalog"
	"github.com/taibuivan/channelscope/internal/competitor"
)

/*
TestHandler_Registry walks the registry endpoints.
*/
func TestHandler_Registry(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.store.Seed(&catalog.Competitor{ID: "c1", Name: "Camping Azur", ChannelID: "UC1", Country: catalog.CountryFrance}, nil, nil, nil))

	router := chi.NewRouter()
	router.Group(competitor.NewHandler(f.service).RegisterRoutes)

	serve := func(method, target, body string) *httptest.ResponseRecorder {
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(method, target, strings.NewReader(body)))
		return recorder
	}

	listed := serve(http.MethodGet, "/competitors?country=fr", "")
	assert.Equal(t, http.StatusOK, listed.Code)
	assert.Contains(t, listed.Body.String(), "Camping Azur")

	assert.Equal(t, http.StatusOK, serve(http.MethodGet, "/competitors/c1", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(http.MethodGet, "/competitors/nope", "").Code)

	created := serve(http.MethodPost, "/competitors", `{"name":"Beach Club","channel_id":"UC2","country":"nl"}`)
	assert.Equal(t, http.StatusCreated, created.Code)
	assert.Contains(t, created.Body.String(), `"country":"Netherlands"`)

	assert.Equal(t, http.StatusBadRequest, serve(http.MethodPost, "/competitors", `{"name":"","channel_id":"UC3","country":"fr"}`).Code)

	updated := serve(http.MethodPut, "/competitors/c1", `{"name":"Camping Azur Plus","channel_id":"UC1","country":"fr"}`)
	assert.Equal(t, http.StatusOK, updated.Code)
	assert.Contains(t, updated.Body.String(), "Camping Azur Plus")

	assert.Equal(t, http.StatusNoContent, serve(http.MethodDelete, "/competitors/c1", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(http.MethodDelete, "/competitors/c1", "").Code)
}
