// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/taibuivan/channelscope/internal/platform/apperr"
	"github.com/taibuivan/channelscope/internal/platform/dberr"
)

// MemoryStore is an in-process [Store] used by tests and offline runs.
//
// Every Commit is applied under one lock after full validation, so a failed
// commit leaves no partial write behind, matching the Postgres transaction.
type MemoryStore struct {
	mu          sync.RWMutex
	competitors map[string]*Competitor
	videos      map[string]*Video
	playlists   map[string]*Playlist
	memberships map[Membership]struct{}
	order       []Membership
	patterns    []Pattern
	snapshots   map[string]*MetricsSnapshot

	// BeforeCommit, when set, runs before a commit is applied; a non-nil
	// error aborts the commit. Tests use it to simulate store failures.
	BeforeCommit func(changes Changes) error
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		competitors: make(map[string]*Competitor),
		videos:      make(map[string]*Video),
		playlists:   make(map[string]*Playlist),
		memberships: make(map[Membership]struct{}),
		snapshots:   make(map[string]*MetricsSnapshot),
	}
}

// Seed loads a competitor with its rows, bypassing change tracking. Rows must
// belong to the competitor and must not reuse an id owned by another one.
func (store *MemoryStore) Seed(competitor *Competitor, videos []*Video, playlists []*Playlist, memberships []Membership) error {
	changes := Changes{CompetitorID: competitor.ID, Videos: videos, Playlists: playlists}
	if err := changes.Validate(); err != nil {
		return err
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	if err := store.checkOwnership(changes); err != nil {
		return err
	}

	clone := *competitor
	store.competitors[competitor.ID] = &clone
	for _, video := range videos {
		store.videos[video.ID] = video.Clone()
	}
	for _, playlist := range playlists {
		store.playlists[playlist.ID] = playlist.Clone()
	}
	for _, membership := range memberships {
		store.addMembership(membership)
	}
	return nil
}

// # Reader

func (store *MemoryStore) ListCompetitors(_ context.Context) ([]*Competitor, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	result := make([]*Competitor, 0, len(store.competitors))
	for _, competitor := range store.competitors {
		clone := *competitor
		clone.Markets = append([]string(nil), competitor.Markets...)
		result = append(result, &clone)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (store *MemoryStore) GetCompetitor(_ context.Context, id string) (*Competitor, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	competitor, ok := store.competitors[id]
	if !ok {
		return nil, apperr.NotFound("Competitor")
	}
	clone := *competitor
	clone.Markets = append([]string(nil), competitor.Markets...)
	return &clone, nil
}

func (store *MemoryStore) LoadState(context context.Context, competitorID string) (*State, error) {
	competitor, err := store.GetCompetitor(context, competitorID)
	if err != nil {
		return nil, err
	}

	store.mu.RLock()
	defer store.mu.RUnlock()

	var videos []*Video
	for _, video := range store.videos {
		if video.CompetitorID == competitorID {
			videos = append(videos, video)
		}
	}

	var playlists []*Playlist
	for _, playlist := range store.playlists {
		if playlist.CompetitorID == competitorID {
			playlists = append(playlists, playlist)
		}
	}

	var memberships []Membership
	for _, membership := range store.order {
		if playlist, ok := store.playlists[membership.PlaylistID]; ok && playlist.CompetitorID == competitorID {
			memberships = append(memberships, membership)
		}
	}

	return NewState(competitor, videos, playlists, memberships), nil
}

func (store *MemoryStore) GetSnapshot(_ context.Context, competitorID string) (*MetricsSnapshot, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	snapshot, ok := store.snapshots[competitorID]
	if !ok {
		return nil, apperr.NotFound("Metrics snapshot")
	}
	clone := *snapshot
	return &clone, nil
}

func (store *MemoryStore) ListSnapshots(_ context.Context) ([]*MetricsSnapshot, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	result := make([]*MetricsSnapshot, 0, len(store.snapshots))
	for _, snapshot := range store.snapshots {
		clone := *snapshot
		result = append(result, &clone)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CompetitorID < result[j].CompetitorID })
	return result, nil
}

// # Patterns

func (store *MemoryStore) ListPatterns(_ context.Context) ([]Pattern, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return append([]Pattern(nil), store.patterns...), nil
}

func (store *MemoryStore) AddPattern(_ context.Context, pattern Pattern) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	for _, existing := range store.patterns {
		if samePattern(existing, pattern) {
			return nil
		}
	}
	store.patterns = append(store.patterns, pattern)
	return nil
}

func (store *MemoryStore) RemovePattern(_ context.Context, pattern Pattern) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	kept := store.patterns[:0]
	for _, existing := range store.patterns {
		if !samePattern(existing, pattern) {
			kept = append(kept, existing)
		}
	}
	store.patterns = kept
	return nil
}

// # Writer

func (store *MemoryStore) UpsertCompetitor(_ context.Context, competitor *Competitor) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	clone := *competitor
	clone.Markets = append([]string(nil), competitor.Markets...)
	if existing, ok := store.competitors[competitor.ID]; ok {
		clone.CreatedAt = existing.CreatedAt
	}
	clone.UpdatedAt = time.Now().UTC()
	store.competitors[competitor.ID] = &clone
	return nil
}

func (store *MemoryStore) DeleteCompetitor(_ context.Context, id string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if _, ok := store.competitors[id]; !ok {
		return dberr.ErrNotFound
	}
	delete(store.competitors, id)
	delete(store.snapshots, id)

	for videoID, video := range store.videos {
		if video.CompetitorID == id {
			delete(store.videos, videoID)
		}
	}
	for playlistID, playlist := range store.playlists {
		if playlist.CompetitorID == id {
			delete(store.playlists, playlistID)
		}
	}

	kept := store.order[:0]
	for _, membership := range store.order {
		_, playlistOK := store.playlists[membership.PlaylistID]
		_, videoOK := store.videos[membership.VideoID]
		if playlistOK && videoOK {
			kept = append(kept, membership)
			continue
		}
		delete(store.memberships, membership)
	}
	store.order = kept
	return nil
}

func (store *MemoryStore) Commit(context context.Context, changes Changes) error {
	if err := context.Err(); err != nil {
		return apperr.Store("commit", err)
	}
	if err := changes.Validate(); err != nil {
		return err
	}
	if store.BeforeCommit != nil {
		if err := store.BeforeCommit(changes); err != nil {
			return dberr.Wrap(err, "commit")
		}
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	if _, ok := store.competitors[changes.CompetitorID]; !ok && changes.Competitor == nil {
		return apperr.InvariantViolation(fmt.Sprintf("commit for unknown competitor %s", changes.CompetitorID))
	}

	if err := store.checkOwnership(changes); err != nil {
		return err
	}

	// Validate memberships against the post-commit row set before touching anything.
	pendingVideos := make(map[string]*Video, len(changes.Videos))
	for _, video := range changes.Videos {
		pendingVideos[video.ID] = video
	}
	pendingPlaylists := make(map[string]*Playlist, len(changes.Playlists))
	for _, playlist := range changes.Playlists {
		pendingPlaylists[playlist.ID] = playlist
	}
	for _, membership := range changes.Memberships {
		playlist := pendingPlaylists[membership.PlaylistID]
		if playlist == nil {
			playlist = store.playlists[membership.PlaylistID]
		}
		video := pendingVideos[membership.VideoID]
		if video == nil {
			video = store.videos[membership.VideoID]
		}
		if playlist == nil || video == nil || playlist.CompetitorID != video.CompetitorID {
			return apperr.InvariantViolation(fmt.Sprintf("membership %s→%s does not join rows of one competitor", membership.PlaylistID, membership.VideoID))
		}
	}

	if changes.Competitor != nil {
		clone := *changes.Competitor
		clone.UpdatedAt = time.Now().UTC()
		store.competitors[clone.ID] = &clone
	}
	for _, video := range changes.Videos {
		store.videos[video.ID] = video.Clone()
	}
	for _, playlist := range changes.Playlists {
		store.playlists[playlist.ID] = playlist.Clone()
	}
	for _, membership := range changes.Memberships {
		store.addMembership(membership)
	}
	if changes.Snapshot != nil {
		clone := *changes.Snapshot
		store.snapshots[changes.CompetitorID] = &clone
	}
	return nil
}

// # Internals

// checkOwnership refuses rows whose id is already owned by another competitor,
// the way the Postgres upsert is scoped to the owning competitor.
func (store *MemoryStore) checkOwnership(changes Changes) error {
	for _, video := range changes.Videos {
		if existing, ok := store.videos[video.ID]; ok && existing.CompetitorID != video.CompetitorID {
			return apperr.InvariantViolation(fmt.Sprintf("video %s is owned by competitor %s", video.ID, existing.CompetitorID))
		}
	}
	for _, playlist := range changes.Playlists {
		if existing, ok := store.playlists[playlist.ID]; ok && existing.CompetitorID != playlist.CompetitorID {
			return apperr.InvariantViolation(fmt.Sprintf("playlist %s is owned by competitor %s", playlist.ID, existing.CompetitorID))
		}
	}
	return nil
}

func (store *MemoryStore) addMembership(membership Membership) {
	if _, exists := store.memberships[membership]; exists {
		return
	}
	store.memberships[membership] = struct{}{}
	store.order = append(store.order, membership)
}

// samePattern compares triples the way the unique index does after normalization.
func samePattern(a, b Pattern) bool {
	return a.Language == b.Language && a.Category == b.Category && strings.EqualFold(a.Pattern, b.Pattern)
}
