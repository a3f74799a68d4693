// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pipeline_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/channelscope/internal/catalog"
	"github.com/taibuivan/channelscope/internal/pipeline"
	"github.com/taibuivan/channelscope/internal/platform/apperr"
	"github.com/taibuivan/channelscope/pkg/pointer"
)

func newService(h *harness) *pipeline.Service {
	return pipeline.NewService(h.engine, h.runs, h.latest, offline(), nil)
}

// gate blocks the first commit until opened.
type gate struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGate(store *catalog.MemoryStore) *gate {
	g := &gate{entered: make(chan struct{}), release: make(chan struct{})}
	store.BeforeCommit = func(catalog.Changes) error {
		g.once.Do(func() {
			close(g.entered)
			<-g.release
		})
		return nil
	}
	return g
}

func waitFor(t *testing.T, service *pipeline.Service) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, service.Wait(ctx))
}

/*
TestService_TriggerAndHistory runs in the background and stores the report.
*/
func TestService_TriggerAndHistory(t *testing.T) {
	h := newHarness(false)
	h.seed(t, &catalog.Competitor{ID: "x"}, basicVideos("x"), nil, nil)
	service := newService(h)

	run, err := service.Trigger(context.Background(), pipeline.Overrides{})
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)
	assert.True(t, run.Options.Offline)

	waitFor(t, service)

	_, active := service.Current()
	assert.False(t, active)

	report, err := service.Get(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, pipeline.StatusCompleted, report.Status)
	assert.Equal(t, 3, report.Stats.ClassificationsApplied)
}

/*
TestService_SingleActiveRun refuses a second trigger and reports progress of
the first.
*/
func TestService_SingleActiveRun(t *testing.T) {
	h := newHarness(false)
	h.seed(t, &catalog.Competitor{ID: "x"}, basicVideos("x"), nil, nil)
	g := newGate(h.store)
	service := newService(h)

	run, err := service.Trigger(context.Background(), pipeline.Overrides{})
	require.NoError(t, err)
	<-g.entered

	current, active := service.Current()
	require.True(t, active)
	assert.Equal(t, run.ID, current.ID)
	assert.Nil(t, current.Progress, "no competitor finished yet")

	_, err = service.Trigger(context.Background(), pipeline.Overrides{})
	assert.True(t, apperr.IsConflict(err))

	close(g.release)
	waitFor(t, service)

	report, err := service.Get(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, pipeline.StatusCompleted, report.Status)

	_, err = service.Trigger(context.Background(), pipeline.Overrides{})
	assert.NoError(t, err, "idle again")
	waitFor(t, service)
}

/*
TestService_Cancel stops the active run and keeps its report.
*/
func TestService_Cancel(t *testing.T) {
	h := newHarness(false)
	h.seed(t, &catalog.Competitor{ID: "x"}, basicVideos("x"), nil, nil)
	g := newGate(h.store)
	service := newService(h)

	assert.True(t, apperr.IsNotFound(service.Cancel()))

	run, err := service.Trigger(context.Background(), pipeline.Overrides{})
	require.NoError(t, err)
	<-g.entered

	require.NoError(t, service.Cancel())
	close(g.release)
	waitFor(t, service)

	report, err := service.Get(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, pipeline.StatusCancelled, report.Status)
}

/*
TestService_RejectsInvalidOverrides validates synchronously.
*/
func TestService_RejectsInvalidOverrides(t *testing.T) {
	service := newService(newHarness(false))

	_, err := service.Trigger(context.Background(), pipeline.Overrides{Concurrency: pointer.To(0)})
	assert.True(t, apperr.IsInput(err))

	_, active := service.Current()
	assert.False(t, active)
}

/*
TestHandler_Runs maps the run endpoints to status codes.
*/
func TestHandler_Runs(t *testing.T) {
	h := newHarness(false)
	h.seed(t, &catalog.Competitor{ID: "x"}, basicVideos("x"), nil, nil)
	service := newService(h)

	router := chi.NewRouter()
	router.Route("/runs", pipeline.NewHandler(service).RegisterRoutes)

	serve := func(method, target, body string) *httptest.ResponseRecorder {
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(method, target, strings.NewReader(body)))
		return recorder
	}

	assert.Equal(t, http.StatusBadRequest, serve(http.MethodPost, "/runs/", `{"frequency_cap":0}`).Code)
	assert.Equal(t, http.StatusBadRequest, serve(http.MethodPost, "/runs/", `{"unknown":true}`).Code)
	assert.Equal(t, http.StatusNotFound, serve(http.MethodGet, "/runs/current", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(http.MethodDelete, "/runs/current", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(http.MethodGet, "/runs/unknown", "").Code)

	accepted := serve(http.MethodPost, "/runs/", `{"competitor_ids":["x"]}`)
	assert.Equal(t, http.StatusAccepted, accepted.Code)
	waitFor(t, service)

	listed := serve(http.MethodGet, "/runs/", "")
	assert.Equal(t, http.StatusOK, listed.Code)
	assert.Contains(t, listed.Body.String(), `"status":"completed"`)
}
