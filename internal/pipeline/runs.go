// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/channelscope/internal/platform/apperr"
	"github.com/taibuivan/channelscope/internal/platform/database/schema"
	"github.com/taibuivan/channelscope/internal/platform/dberr"
	"github.com/taibuivan/channelscope/pkg/pagination"
)

// RunSummary is a run as listed in the history.
type RunSummary struct {
	ID         string     `json:"id"`
	Status     string     `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Stats      Stats      `json:"stats"`
}

// RunRepository stores run reports.
type RunRepository interface {
	// Save inserts or replaces a report.
	Save(context context.Context, report *Report) error
	Get(context context.Context, id string) (*Report, error)
	// List returns a page of runs, newest first, and the total count.
	List(context context.Context, page pagination.Params) ([]RunSummary, int, error)
}

func summaryOf(report *Report) RunSummary {
	return RunSummary{
		ID:         report.ID,
		Status:     report.Status,
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
		Stats:      report.Stats,
	}
}

// # Postgres

// PostgresRunRepository keeps reports as JSONB in engine.run.
type PostgresRunRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRunRepository returns a repository bound to pool.
func NewPostgresRunRepository(pool *pgxpool.Pool) *PostgresRunRepository {
	return &PostgresRunRepository{pool: pool}
}

func (repository *PostgresRunRepository) Save(context context.Context, report *Report) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return apperr.Store("encode_report", err)
	}

	table := schema.EngineRun
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (%s) DO UPDATE SET %s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = EXCLUDED.%s`,
		table.Table, table.ID, table.Status, table.StartedAt, table.FinishedAt, table.Report,
		table.ID,
		table.Status, table.Status,
		table.FinishedAt, table.FinishedAt,
		table.Report, table.Report,
	)

	_, err = repository.pool.Exec(context, query, report.ID, report.Status, report.StartedAt, report.FinishedAt, payload)
	return dberr.Wrap(err, "save_run")
}

func (repository *PostgresRunRepository) Get(context context.Context, id string) (*Report, error) {
	table := schema.EngineRun
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, table.Report, table.Table, table.ID)

	var payload []byte
	if err := repository.pool.QueryRow(context, query, id).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Run")
		}
		return nil, dberr.Wrap(err, "get_run")
	}

	report := &Report{}
	if err := json.Unmarshal(payload, report); err != nil {
		return nil, apperr.Store("decode_report", err)
	}
	return report, nil
}

func (repository *PostgresRunRepository) List(context context.Context, page pagination.Params) ([]RunSummary, int, error) {
	table := schema.EngineRun

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table.Table)
	if err := repository.pool.QueryRow(context, countQuery).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_runs")
	}

	query := fmt.Sprintf(`SELECT %s, %s, %s, %s, %s -> 'stats' FROM %s ORDER BY %s DESC LIMIT $1 OFFSET $2`,
		table.ID, table.Status, table.StartedAt, table.FinishedAt, table.Report,
		table.Table, table.StartedAt,
	)

	rows, err := repository.pool.Query(context, query, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_runs")
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var run RunSummary
		var stats []byte
		if err := rows.Scan(&run.ID, &run.Status, &run.StartedAt, &run.FinishedAt, &stats); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_run")
		}
		if len(stats) > 0 {
			if err := json.Unmarshal(stats, &run.Stats); err != nil {
				return nil, 0, apperr.Store("decode_run_stats", err)
			}
		}
		runs = append(runs, run)
	}

	return runs, total, dberr.Wrap(rows.Err(), "list_runs")
}

// # Memory

// MemoryRunRepository keeps reports in process, for the CLI and tests.
type MemoryRunRepository struct {
	mu      sync.RWMutex
	reports map[string]*Report
}

// NewMemoryRunRepository returns an empty repository.
func NewMemoryRunRepository() *MemoryRunRepository {
	return &MemoryRunRepository{reports: make(map[string]*Report)}
}

func (repository *MemoryRunRepository) Save(_ context.Context, report *Report) error {
	clone, err := cloneReport(report)
	if err != nil {
		return err
	}

	repository.mu.Lock()
	defer repository.mu.Unlock()
	repository.reports[report.ID] = clone
	return nil
}

func (repository *MemoryRunRepository) Get(_ context.Context, id string) (*Report, error) {
	repository.mu.RLock()
	report, ok := repository.reports[id]
	repository.mu.RUnlock()

	if !ok {
		return nil, apperr.NotFound("Run")
	}
	return cloneReport(report)
}

func (repository *MemoryRunRepository) List(_ context.Context, page pagination.Params) ([]RunSummary, int, error) {
	repository.mu.RLock()
	runs := make([]RunSummary, 0, len(repository.reports))
	for _, report := range repository.reports {
		runs = append(runs, summaryOf(report))
	}
	repository.mu.RUnlock()

	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].StartedAt.After(runs[j].StartedAt)
		}
		return runs[i].ID > runs[j].ID
	})

	start, end := page.Bounds(len(runs))
	return runs[start:end], len(runs), nil
}

// cloneReport deep-copies a report through its JSON form, which is also what
// the Postgres repository stores.
func cloneReport(report *Report) (*Report, error) {
	payload, err := json.Marshal(report)
	if err != nil {
		return nil, apperr.Store("encode_report", err)
	}
	clone := &Report{}
	if err := json.Unmarshal(payload, clone); err != nil {
		return nil, apperr.Store("decode_report", err)
	}
	return clone, nil
}
