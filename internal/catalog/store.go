// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import "context"

// Reader is the read side of the catalog used by the engine and the ops API.
type Reader interface {
	ListCompetitors(context context.Context) ([]*Competitor, error)
	GetCompetitor(context context.Context, id string) (*Competitor, error)
	LoadState(context context.Context, competitorID string) (*State, error)
	GetSnapshot(context context.Context, competitorID string) (*MetricsSnapshot, error)
	ListSnapshots(context context.Context) ([]*MetricsSnapshot, error)
}

// PatternStore persists user-added classification rules.
// Add and Remove are idempotent on the (language, category, pattern) triple.
type PatternStore interface {
	ListPatterns(context context.Context) ([]Pattern, error)
	AddPattern(context context.Context, pattern Pattern) error
	RemovePattern(context context.Context, pattern Pattern) error
}

// Store is the full catalog boundary.
type Store interface {
	Reader
	PatternStore

	// UpsertCompetitor creates or updates a competitor and replaces its market list.
	UpsertCompetitor(context context.Context, competitor *Competitor) error

	// DeleteCompetitor removes a competitor and, by cascade, everything it owns.
	DeleteCompetitor(context context.Context, id string) error

	// Commit writes the changes of one phase for one competitor atomically.
	// Memberships that already exist are ignored; the snapshot, when present,
	// replaces the previous one.
	Commit(context context.Context, changes Changes) error
}
