// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package pipeline runs the engine end to end over a set of competitors.

Phases per competitor:

  - Phase 1: catalog refresh, then date and duration repair.
  - Phase 2: playlist link repair, propagation of human playlist labels,
    classification of uncategorized videos, then the anomaly-driven fixes.
  - Phase 3: the metrics snapshot.

Every phase ends with one store commit for the competitor, so a failure or a
cancellation leaves the competitor in the state of its last committed phase.
Phase 4 runs once per run and invalidates the cached metric read models.

Only an invalid option or a locked competitor aborts a run. Every other error
is recorded against the competitor it happened to, and the run moves on.
*/
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/channelscope/internal/aggregate"
	"github.com/taibuivan/channelscope/internal/anomaly"
	"github.com/taibuivan/channelscope/internal/catalog"
	"github.com/taibuivan/channelscope/internal/classify"
	"github.com/taibuivan/channelscope/internal/fix"
	"github.com/taibuivan/channelscope/internal/platform/apperr"
	"github.com/taibuivan/channelscope/internal/platform/ctxutil"
	"github.com/taibuivan/channelscope/internal/platform/telemetry"
	"github.com/taibuivan/channelscope/internal/propagate"
	"github.com/taibuivan/channelscope/internal/youtube"
	"github.com/taibuivan/channelscope/pkg/uuid"
)

// Phase names used in logs, metrics and error records.
const (
	PhaseLoad      = "load"
	PhaseRefresh   = "refresh"
	PhaseClassify  = "classify"
	PhaseAggregate = "aggregate"
	PhaseCache     = "cache"
)

// Repair and fix order inside phases 1 and 2.
var (
	repairOrder = []anomaly.Kind{anomaly.CorruptedDates, anomaly.InvalidDurations}
	fixOrder    = []anomaly.Kind{anomaly.UncategorizedVideos, anomaly.ZeroHelp, anomaly.ZeroHero, anomaly.HubMonopoly}
)

// Invalidator drops cached metric read models.
type Invalidator interface {
	Invalidate(context context.Context) (int, error)
}

// Dependencies are the collaborators of an [Orchestrator]. Client, Cache,
// Locker, Runs, Progress and Metrics are optional.
type Dependencies struct {
	Store    catalog.Store
	Patterns *classify.Repository
	Seed     *classify.Seed
	Client   youtube.Client
	Cache    Invalidator
	Locker   Locker
	Runs     RunRepository
	Progress ProgressSink
	Metrics  *telemetry.Metrics
	Logger   *slog.Logger
	Now      func() time.Time
}

// Orchestrator drives runs. It holds no per-run state and may run several
// runs on disjoint competitor sets at once.
type Orchestrator struct {
	deps Dependencies
}

// NewOrchestrator wires an orchestrator.
func NewOrchestrator(deps Dependencies) *Orchestrator {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Locker == nil {
		deps.Locker = NewMemoryLocker()
	}
	if deps.Seed == nil {
		deps.Seed = classify.MustLoadSeed()
	}
	if deps.Patterns == nil {
		deps.Patterns = classify.NewRepository(deps.Seed, deps.Store)
	}
	return &Orchestrator{deps: deps}
}

// runTools are the per-run collaborators built from the options.
type runTools struct {
	options    Options
	detector   *anomaly.Detector
	fixer      *fix.Fixer
	applier    *fix.Applier
	linker     *propagate.Linker
	propagator *propagate.Propagator
	refresher  *refresher
}

/*
Run executes one full run.

Description: Options are validated and the selected competitors are locked
before anything is written. Competitors are processed with bounded
parallelism; a cancelled context stops the run between competitors. The
report is saved even when the run is cancelled.

Parameters:
  - context: context.Context
  - runID: string (Empty generates one)
  - options: Options

Returns:
  - *Report: The run report, also when some competitors failed
  - error: InputError, CONFLICT, or a store error while listing competitors
*/
func (orchestrator *Orchestrator) Run(context context.Context, runID string, options Options) (*Report, error) {
	deps := orchestrator.deps

	if err := options.Validate(); err != nil {
		return nil, err
	}
	if runID == "" {
		runID = uuid.New()
	}

	logger := deps.Logger.With(slog.String("run_id", runID))
	context = ctxutil.WithLogger(ctxutil.WithRunID(context, runID), logger)

	competitors, err := orchestrator.selectCompetitors(context, options.CompetitorIDs)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(competitors))
	for _, competitor := range competitors {
		ids = append(ids, competitor.ID)
	}
	if err := deps.Locker.Acquire(context, runID, ids); err != nil {
		return nil, err
	}
	defer func() {
		if err := deps.Locker.Release(detached(context), runID, ids); err != nil {
			logger.Warn("run_lock_release_failed", slog.Any("error", err))
		}
	}()

	deps.Patterns.BeginRun()
	defer deps.Patterns.EndRun()
	if err := deps.Patterns.Load(context); err != nil {
		return nil, err
	}

	report := &Report{ID: runID, Status: StatusRunning, StartedAt: deps.Now().UTC(), Options: options}
	report.Notes = runNotes(options)
	results := newCollector(report)
	if deps.Runs != nil {
		if err := deps.Runs.Save(context, report); err != nil {
			logger.Warn("run_report_save_failed", slog.Any("error", err))
		}
	}
	tools := orchestrator.tools(options, logger)

	deps.Metrics.RunStarted()
	logger.Info("run_started", slog.Int("competitors", len(competitors)), slog.Bool("offline", options.Offline))

	group := errgroup.Group{}
	group.SetLimit(options.Concurrency)

	step := 0
	for _, competitor := range competitors {
		if context.Err() != nil {
			break
		}
		step++
		current := step
		group.Go(func() error {
			result := orchestrator.processCompetitor(context, tools, competitor)
			stats := results.add(result)
			deps.Metrics.CompetitorProcessed(result.summary.Outcome)

			if deps.Progress != nil {
				deps.Progress.Publish(context, Progress{
					RunID:        runID,
					Step:         current,
					Total:        len(competitors),
					CompetitorID: competitor.ID,
					Action:       fmt.Sprintf("phase %d committed", result.summary.Phase),
					Outcome:      result.summary.Outcome,
					Stats:        stats,
					At:           deps.Now().UTC(),
				})
			}
			return nil
		})
	}
	_ = group.Wait()

	orchestrator.invalidate(context, report)
	results.finish()

	finished := deps.Now().UTC()
	report.FinishedAt = &finished
	report.Status = finalStatus(context, report, len(competitors))

	deps.Metrics.RunFinished(report.Status)
	logger.Info("run_finished",
		slog.String("status", report.Status),
		slog.Int("competitors", report.Stats.Competitors),
		slog.Int("fixes", len(report.Fixes)),
		slog.Int("errors", len(report.Errors)),
		slog.Duration("elapsed", finished.Sub(report.StartedAt)),
	)

	if deps.Runs != nil {
		if err := deps.Runs.Save(detached(context), report); err != nil {
			logger.Error("run_report_save_failed", slog.Any("error", err))
		}
	}
	return report, nil
}

// selectCompetitors resolves the requested ids; an unknown id is an input error.
func (orchestrator *Orchestrator) selectCompetitors(context context.Context, requested []string) ([]*catalog.Competitor, error) {
	all, err := orchestrator.deps.Store.ListCompetitors(context)
	if err != nil {
		return nil, err
	}
	if len(requested) == 0 {
		return all, nil
	}

	byID := make(map[string]*catalog.Competitor, len(all))
	for _, competitor := range all {
		byID[competitor.ID] = competitor
	}

	var selected []*catalog.Competitor
	var missing []apperr.FieldError
	for _, id := range sortedUnique(requested) {
		competitor, ok := byID[id]
		if !ok {
			missing = append(missing, apperr.FieldError{Field: "competitor_ids", Message: "Unknown competitor " + id})
			continue
		}
		selected = append(selected, competitor)
	}
	if len(missing) > 0 {
		return nil, apperr.Input("Invalid run options", missing...)
	}
	return selected, nil
}

func (orchestrator *Orchestrator) tools(options Options, logger *slog.Logger) *runTools {
	deps := orchestrator.deps
	detector := anomaly.NewDetector(options.SentinelImportDates)
	classifier := classify.NewClassifier(deps.Patterns, options.HighPerformanceThreshold)
	applier := fix.NewApplier(deps.Now)

	tools := &runTools{
		options:  options,
		detector: detector,
		fixer: fix.NewFixer(classifier, deps.Seed.Fixes, detector, fix.Limits{
			ZeroHelpCap: options.ZeroHelpFixCap,
			ZeroHeroCap: options.ZeroHeroFixCap,
		}),
		applier:    applier,
		propagator: propagate.NewPropagator(applier),
	}
	if deps.Client != nil && !options.Offline {
		tools.linker = propagate.NewLinker(deps.Client, logger)
		tools.refresher = &refresher{client: deps.Client, maxVideos: options.MaxVideosPerChannel, now: deps.Now}
	}
	return tools
}

// # Competitor Phases

// phaseFunc patches the working set of one competitor for one phase.
type phaseFunc func(context.Context, *runTools, *catalog.State, *competitorResult) error

/*
processCompetitor runs phases 1 to 3 for one competitor.

Description: Each phase patches the working set in memory and ends with one
commit. The first failing phase stops the competitor; earlier commits stay.
*/
func (orchestrator *Orchestrator) processCompetitor(parent context.Context, tools *runTools, competitor *catalog.Competitor) *competitorResult {
	logger := ctxutil.GetLogger(parent).With(slog.String("competitor_id", competitor.ID))
	context := ctxutil.WithLogger(ctxutil.WithCompetitorID(parent, competitor.ID), logger)
	result := newCompetitorResult(competitor.ID, competitor.Name)

	state, err := orchestrator.deps.Store.LoadState(context, competitor.ID)
	if err != nil {
		orchestrator.stop(context, result, PhaseLoad, err)
		return result
	}

	phases := []struct {
		name string
		run  phaseFunc
	}{
		{PhaseRefresh, orchestrator.refreshAndRepair},
		{PhaseClassify, orchestrator.classifyAndFix},
		{PhaseAggregate, orchestrator.summarize},
	}

	for index, phase := range phases {
		if err := context.Err(); err != nil {
			orchestrator.stop(context, result, phase.name, err)
			return result
		}

		started := time.Now()
		err := phase.run(context, tools, state, result)
		if err == nil {
			err = orchestrator.commit(context, state, result.pendingSnapshot)
			result.pendingSnapshot = nil
		}
		orchestrator.deps.Metrics.ObservePhase(phase.name, time.Since(started))

		if err != nil {
			orchestrator.stop(context, result, phase.name, err)
			return result
		}
		result.summary.Phase = index + 1
		logger.Debug("competitor_phase_committed", slog.String("phase", phase.name))
	}

	for _, item := range tools.detector.Detect(state) {
		result.summary.Remaining = append(result.summary.Remaining, item.Kind)
	}
	return result
}

// refreshAndRepair is phase 1.
func (orchestrator *Orchestrator) refreshAndRepair(context context.Context, tools *runTools, state *catalog.State, result *competitorResult) error {
	logger := ctxutil.GetLogger(context)

	var listing []youtube.VideoItem
	if tools.refresher != nil {
		refreshed, err := tools.refresher.refresh(context, state)
		if err != nil {
			return err
		}
		listing = refreshed.Listing
		result.stats.VideosUpdated += refreshed.VideosUpdated
		result.stats.VideosAdded += refreshed.VideosAdded
		result.stats.PlaylistsAdded += refreshed.PlaylistsAdded
		for _, warning := range refreshed.Warnings {
			result.warn(PhaseRefresh, warning)
		}
	}

	found := tools.detector.Detect(state)
	result.summary.Anomalies = found

	var evidence *fix.Evidence
	if orchestrator.deps.Client != nil && !tools.options.Offline {
		gathered, err := fix.GatherEvidence(context, orchestrator.deps.Client, state, found, tools.detector, listing,
			tools.options.CorruptedDatesResolver, logger)
		if err != nil {
			return err
		}
		evidence = gathered
		for _, skipped := range evidence.Skipped {
			result.warn(PhaseRefresh, skipped)
		}
	} else {
		evidence = fix.NewEvidence()
	}

	return orchestrator.correct(tools, state, result, repairOrder, evidence)
}

// classifyAndFix is phase 2.
func (orchestrator *Orchestrator) classifyAndFix(context context.Context, tools *runTools, state *catalog.State, result *competitorResult) error {
	if tools.linker != nil {
		linked, err := tools.linker.Repair(context, state)
		if err != nil {
			return err
		}
		result.stats.MembershipsLinked += linked.Linked
		for _, playlistID := range linked.Unresolved {
			result.summary.Notes = append(result.summary.Notes, "playlist "+playlistID+" has no resolvable member")
		}
		for _, failure := range linked.Errors {
			result.warn(PhaseClassify, failure)
		}
	}

	outcome, err := tools.propagator.Propagate(state)
	if err != nil {
		return err
	}
	orchestrator.record(result, fix.KindPropagation, outcome)

	return orchestrator.correct(tools, state, result, fixOrder, nil)
}

// summarize is phase 3.
func (orchestrator *Orchestrator) summarize(_ context.Context, tools *runTools, state *catalog.State, result *competitorResult) error {
	snapshot := aggregate.ComputeSnapshot(state.Competitor, state.Videos, aggregate.Params{
		PaidThreshold: tools.options.PaidThreshold,
		FrequencyCap:  tools.options.FrequencyCap,
	}, orchestrator.deps.Now())

	if snapshot.Frequency.Outlier {
		result.stats.FrequencyOutliers++
		result.summary.Notes = append(result.summary.Notes, "frequency_outlier")
	}
	result.pendingSnapshot = snapshot
	return nil
}

/*
correct re-checks each kind on the current working set and applies its plan.

Description: A kind is only corrected when it still holds, so an earlier
correction in the same phase can make a later one unnecessary.
*/
func (orchestrator *Orchestrator) correct(tools *runTools, state *catalog.State, result *competitorResult, kinds []anomaly.Kind, evidence *fix.Evidence) error {
	for _, kind := range kinds {
		found, ok := tools.detector.Find(state, kind)
		if !ok {
			continue
		}

		plan := tools.fixer.Plan(state, found, evidence)
		outcome, err := tools.applier.Apply(state, plan.Patches)
		if err != nil {
			return err
		}
		orchestrator.record(result, string(kind), outcome)

		result.summary.Notes = append(result.summary.Notes, plan.Notes...)
		result.summary.Unresolved = append(result.summary.Unresolved, plan.Unresolved...)
	}
	return nil
}

func (orchestrator *Orchestrator) record(result *competitorResult, kind string, outcome fix.Outcome) {
	result.record(kind, outcome)
	orchestrator.deps.Metrics.FixesApplied(kind, outcome.Applied())
	orchestrator.deps.Metrics.HumanProtectedSkipped(outcome.SkippedProtected)
}

// commit writes the pending changes of a phase, plus an optional snapshot.
func (orchestrator *Orchestrator) commit(context context.Context, state *catalog.State, snapshot *catalog.MetricsSnapshot) error {
	changes := state.TakeChanges()
	changes.Snapshot = snapshot
	if changes.IsEmpty() {
		return nil
	}
	if err := changes.Validate(); err != nil {
		return err
	}
	return orchestrator.deps.Store.Commit(context, changes)
}

// stop records the failure that ends a competitor.
func (orchestrator *Orchestrator) stop(context context.Context, result *competitorResult, phase string, err error) {
	if isCancellation(err) {
		result.summary.Outcome = OutcomeSkipped
		record := ErrorRecord{CompetitorID: result.summary.CompetitorID, Phase: phase, Code: "CANCELLED", Message: "run cancelled before the phase committed"}
		result.summary.Error = &record
		return
	}

	result.fail(phase, err)
	ctxutil.GetLogger(context).Error("competitor_failed",
		slog.String("phase", phase),
		slog.String("code", result.summary.Error.Code),
		slog.Any("error", err),
	)
}

// # Run Completion

// invalidate is phase 4. A cache failure is recorded, never fatal.
func (orchestrator *Orchestrator) invalidate(context context.Context, report *Report) {
	if orchestrator.deps.Cache == nil || report.Stats.Competitors == 0 {
		return
	}

	deleted, err := orchestrator.deps.Cache.Invalidate(detached(context))
	if err != nil {
		ctxutil.GetLogger(context).Warn("metrics_cache_invalidation_failed", slog.Any("error", err))
		report.Errors = append(report.Errors, newErrorRecord("", PhaseCache, err))
		return
	}
	report.Stats.CacheEntriesInvalidated = deleted
}

func finalStatus(context context.Context, report *Report, selected int) string {
	switch {
	case context.Err() != nil || report.Stats.Competitors < selected:
		return StatusCancelled
	case selected > 0 && !slices.ContainsFunc(report.Competitors, succeeded):
		return StatusFailed
	case slices.ContainsFunc(report.Competitors, func(summary CompetitorSummary) bool { return !succeeded(summary) }):
		return StatusPartial
	default:
		return StatusCompleted
	}
}

func succeeded(summary CompetitorSummary) bool {
	return summary.Outcome == OutcomeSucceeded
}

// detached keeps the values of ctx but drops its cancellation, for cleanup
// that must run after a cancelled run.
func detached(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}

// runNotes lists the run settings that silently narrow what the run can detect.
func runNotes(options Options) []string {
	var notes []string
	if len(options.SentinelImportDates) == 0 {
		notes = append(notes, "sentinel_import_dates is empty: corrupted import dates are not detected")
	}
	if options.Offline {
		notes = append(notes, "offline: catalog refresh, date refetch and playlist link repair were skipped")
	}
	return notes
}
