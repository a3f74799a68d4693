// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/taibuivan/channelscope/internal/platform/apperr"
	"github.com/taibuivan/channelscope/pkg/pagination"
	"github.com/taibuivan/channelscope/pkg/uuid"
)

// CurrentRun describes the run in progress.
type CurrentRun struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	Options   Options   `json:"options"`
	Progress  *Progress `json:"progress,omitempty"`
}

// Service triggers runs in the background and serves their history.
//
// One run at a time is accepted through the service; the competitor locks of
// the orchestrator still guard runs started elsewhere, such as the CLI.
type Service struct {
	orchestrator *Orchestrator
	runs         RunRepository
	latest       *LatestSink
	defaults     Options
	logger       *slog.Logger

	mu     sync.Mutex
	active *CurrentRun
	cancel context.CancelFunc
	done   chan struct{}
}

// NewService wires the run service. latest must be one of the progress sinks
// of the orchestrator for [Service.Current] to report progress.
func NewService(orchestrator *Orchestrator, runs RunRepository, latest *LatestSink, defaults Options, logger *slog.Logger) *Service {
	if runs == nil {
		runs = NewMemoryRunRepository()
	}
	if latest == nil {
		latest = NewLatestSink()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{orchestrator: orchestrator, runs: runs, latest: latest, defaults: defaults, logger: logger}
}

/*
Trigger starts a run in the background.

Description: Overrides are applied on the process defaults and validated
synchronously. The run outlives the request that triggered it.

Parameters:
  - context: context.Context (Request context; only its values are kept)
  - overrides: Overrides

Returns:
  - *CurrentRun: The accepted run
  - error: InputError, or CONFLICT while another run is active
*/
func (service *Service) Trigger(context context.Context, overrides Overrides) (*CurrentRun, error) {
	options := overrides.Apply(service.defaults)
	if err := options.Validate(); err != nil {
		return nil, err
	}

	service.mu.Lock()
	defer service.mu.Unlock()

	if service.active != nil {
		return nil, apperr.Conflict("Run " + service.active.ID + " is already in progress")
	}

	run := &CurrentRun{ID: uuid.New(), StartedAt: time.Now().UTC(), Options: options}
	runContext, cancel := contextWithCancel(detached(context))
	done := make(chan struct{})

	service.active = run
	service.cancel = cancel
	service.done = done
	service.latest.Reset()

	go func() {
		defer close(done)
		defer cancel()
		service.execute(runContext, run)
	}()

	clone := *run
	return &clone, nil
}

func (service *Service) execute(context context.Context, run *CurrentRun) {
	defer func() {
		service.mu.Lock()
		service.active = nil
		service.cancel = nil
		service.mu.Unlock()
	}()

	report, err := service.orchestrator.Run(context, run.ID, run.Options)
	if err == nil {
		service.logger.Info("run_completed", slog.String("run_id", report.ID), slog.String("status", report.Status))
		return
	}

	// A rejected run still leaves a record in the history.
	service.logger.Warn("run_rejected", slog.String("run_id", run.ID), slog.Any("error", err))
	finished := time.Now().UTC()
	rejected := &Report{
		ID:         run.ID,
		Status:     StatusFailed,
		StartedAt:  run.StartedAt,
		FinishedAt: &finished,
		Options:    run.Options,
		Stats:      Stats{FixesByKind: map[string]int{}},
		Errors:     []ErrorRecord{newErrorRecord("", "start", err)},
	}
	if saveErr := service.runs.Save(detached(context), rejected); saveErr != nil {
		service.logger.Error("run_report_save_failed", slog.String("run_id", run.ID), slog.Any("error", saveErr))
	}
}

// Current returns the active run with its latest progress record.
func (service *Service) Current() (*CurrentRun, bool) {
	service.mu.Lock()
	defer service.mu.Unlock()

	if service.active == nil {
		return nil, false
	}
	current := *service.active
	if progress, ok := service.latest.Latest(); ok && progress.RunID == current.ID {
		current.Progress = &progress
	}
	return &current, true
}

// Cancel asks the active run to stop at the next competitor boundary.
func (service *Service) Cancel() error {
	service.mu.Lock()
	defer service.mu.Unlock()

	if service.active == nil || service.cancel == nil {
		return apperr.NotFound("Active run")
	}
	service.cancel()
	return nil
}

// Get returns a stored report.
func (service *Service) Get(context context.Context, id string) (*Report, error) {
	return service.runs.Get(context, id)
}

// List returns a page of the run history.
func (service *Service) List(context context.Context, page pagination.Params) ([]RunSummary, int, error) {
	return service.runs.List(context, page)
}

// Wait blocks until the active run, if any, has finished or ctx is done.
func (service *Service) Wait(ctx context.Context) error {
	service.mu.Lock()
	done := service.done
	service.mu.Unlock()

	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown cancels the active run and waits for its report to be saved.
func (service *Service) Shutdown(ctx context.Context) error {
	_ = service.Cancel()
	return service.Wait(ctx)
}

func contextWithCancel(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithCancel(parent)
}
