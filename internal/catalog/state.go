// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"fmt"
	"sort"

	"github.com/taibuivan/channelscope/internal/platform/apperr"
)

// # Working Set

// State is the working set of one competitor during a run.
//
// Phases read and patch the State in memory; the changes recorded since the last
// [State.TakeChanges] are then written by one [Store.Commit] call, which is the
// transactional boundary of a phase. State is not safe for concurrent use; each
// competitor owns its own.
type State struct {
	Competitor  *Competitor
	Videos      []*Video
	Playlists   []*Playlist
	Memberships []Membership

	videoIndex    map[string]*Video
	externalIndex map[string]*Video
	playlistIndex map[string]*Playlist
	members       map[string][]string
	linked        map[Membership]struct{}

	competitorDirty bool
	dirtyVideos     map[string]struct{}
	dirtyPlaylists  map[string]struct{}
	newMemberships  []Membership
}

// Changes is everything a phase wants persisted for one competitor.
type Changes struct {
	CompetitorID string
	Competitor   *Competitor
	Videos       []*Video
	Playlists    []*Playlist
	Memberships  []Membership
	Snapshot     *MetricsSnapshot
}

// IsEmpty reports whether there is nothing to write.
func (c Changes) IsEmpty() bool {
	return c.Competitor == nil && len(c.Videos) == 0 && len(c.Playlists) == 0 &&
		len(c.Memberships) == 0 && c.Snapshot == nil
}

// Validate checks the row-level invariants a commit must never break.
func (c Changes) Validate() error {
	for _, video := range c.Videos {
		if video.CompetitorID != c.CompetitorID {
			return apperr.InvariantViolation(fmt.Sprintf("video %s belongs to competitor %s, not %s", video.ID, video.CompetitorID, c.CompetitorID))
		}
		if video.IsShort != IsShortDuration(video.DurationSeconds) {
			return apperr.InvariantViolation(fmt.Sprintf("video %s: is_short=%t with duration %ds", video.ID, video.IsShort, video.DurationSeconds))
		}
	}
	for _, playlist := range c.Playlists {
		if playlist.CompetitorID != c.CompetitorID {
			return apperr.InvariantViolation(fmt.Sprintf("playlist %s belongs to competitor %s, not %s", playlist.ID, playlist.CompetitorID, c.CompetitorID))
		}
	}
	return nil
}

// NewState builds a working set from stored rows. Inputs are copied; videos and
// playlists are ordered by id so every traversal is reproducible.
func NewState(competitor *Competitor, videos []*Video, playlists []*Playlist, memberships []Membership) *State {
	state := &State{
		videoIndex:     make(map[string]*Video, len(videos)),
		externalIndex:  make(map[string]*Video, len(videos)),
		playlistIndex:  make(map[string]*Playlist, len(playlists)),
		members:        make(map[string][]string),
		linked:         make(map[Membership]struct{}, len(memberships)),
		dirtyVideos:    make(map[string]struct{}),
		dirtyPlaylists: make(map[string]struct{}),
	}

	if competitor != nil {
		clone := *competitor
		clone.Markets = append([]string(nil), competitor.Markets...)
		state.Competitor = &clone
	}

	for _, video := range videos {
		state.insertVideo(video.Clone())
	}
	for _, playlist := range playlists {
		state.insertPlaylist(playlist.Clone())
	}
	state.sort()

	for _, membership := range memberships {
		state.link(membership)
	}

	return state
}

// # Lookups

// Video returns the video with the given id, or nil.
func (state *State) Video(id string) *Video { return state.videoIndex[id] }

// VideoByExternalID returns the video with the given upstream id, or nil.
func (state *State) VideoByExternalID(externalID string) *Video {
	return state.externalIndex[externalID]
}

// Playlist returns the playlist with the given id, or nil.
func (state *State) Playlist(id string) *Playlist { return state.playlistIndex[id] }

// PlaylistByExternalID returns the playlist with the given upstream id, or nil.
func (state *State) PlaylistByExternalID(externalID string) *Playlist {
	for _, playlist := range state.Playlists {
		if playlist.ExternalID == externalID {
			return playlist
		}
	}
	return nil
}

// MembersOf returns the video ids linked to a playlist, in link order.
func (state *State) MembersOf(playlistID string) []string {
	return state.members[playlistID]
}

// HasMembers reports whether a playlist has at least one membership.
func (state *State) HasMembers(playlistID string) bool {
	return len(state.members[playlistID]) > 0
}

// # Mutations

// AddVideo inserts a new video into the working set and marks it for writing.
func (state *State) AddVideo(video *Video) {
	state.insertVideo(video)
	state.sort()
	state.MarkVideo(video.ID)
}

// AddPlaylist inserts a new playlist and marks it for writing.
func (state *State) AddPlaylist(playlist *Playlist) {
	state.insertPlaylist(playlist)
	state.sort()
	state.MarkPlaylist(playlist.ID)
}

// AddMembership links a playlist to a video.
//
// It returns false without recording anything when the link already exists.
// A link between rows that are unknown or owned by different competitors is
// an invariant violation.
func (state *State) AddMembership(membership Membership) (bool, error) {
	playlist := state.playlistIndex[membership.PlaylistID]
	video := state.videoIndex[membership.VideoID]
	if playlist == nil || video == nil || playlist.CompetitorID != video.CompetitorID {
		return false, apperr.InvariantViolation(fmt.Sprintf("membership %s→%s does not join rows of one competitor", membership.PlaylistID, membership.VideoID))
	}

	if !state.link(membership) {
		return false, nil
	}
	state.newMemberships = append(state.newMemberships, membership)
	return true, nil
}

// MarkCompetitor flags the competitor row for writing.
func (state *State) MarkCompetitor() { state.competitorDirty = true }

// MarkVideo flags a video for writing.
func (state *State) MarkVideo(id string) { state.dirtyVideos[id] = struct{}{} }

// MarkPlaylist flags a playlist for writing.
func (state *State) MarkPlaylist(id string) { state.dirtyPlaylists[id] = struct{}{} }

// TakeChanges returns the pending changes and clears them.
func (state *State) TakeChanges() Changes {
	changes := Changes{}
	if state.Competitor != nil {
		changes.CompetitorID = state.Competitor.ID
		if state.competitorDirty {
			clone := *state.Competitor
			changes.Competitor = &clone
		}
	}

	for _, video := range state.Videos {
		if _, dirty := state.dirtyVideos[video.ID]; dirty {
			changes.Videos = append(changes.Videos, video.Clone())
		}
	}
	for _, playlist := range state.Playlists {
		if _, dirty := state.dirtyPlaylists[playlist.ID]; dirty {
			changes.Playlists = append(changes.Playlists, playlist.Clone())
		}
	}
	changes.Memberships = append(changes.Memberships, state.newMemberships...)

	state.competitorDirty = false
	state.dirtyVideos = make(map[string]struct{})
	state.dirtyPlaylists = make(map[string]struct{})
	state.newMemberships = nil

	return changes
}

// Clone returns an independent copy of the working set without pending changes.
func (state *State) Clone() *State {
	return NewState(state.Competitor, state.Videos, state.Playlists, state.Memberships)
}

// # Internals

func (state *State) insertVideo(video *Video) {
	state.Videos = append(state.Videos, video)
	state.videoIndex[video.ID] = video
	if video.ExternalID != "" {
		state.externalIndex[video.ExternalID] = video
	}
}

func (state *State) insertPlaylist(playlist *Playlist) {
	state.Playlists = append(state.Playlists, playlist)
	state.playlistIndex[playlist.ID] = playlist
}

func (state *State) link(membership Membership) bool {
	if _, exists := state.linked[membership]; exists {
		return false
	}
	state.linked[membership] = struct{}{}
	state.Memberships = append(state.Memberships, membership)
	state.members[membership.PlaylistID] = append(state.members[membership.PlaylistID], membership.VideoID)
	return true
}

func (state *State) sort() {
	sort.SliceStable(state.Videos, func(i, j int) bool { return state.Videos[i].ID < state.Videos[j].ID })
	sort.SliceStable(state.Playlists, func(i, j int) bool { return state.Playlists[i].ID < state.Playlists[j].ID })
}
