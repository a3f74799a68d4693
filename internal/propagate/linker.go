// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package propagate projects human playlist labels onto member videos.

Link repair runs first: a labeled playlist without stored memberships gets
its items from the video catalog, so that propagation sees every member.
*/
package propagate

import (
	"context"
	"log/slog"

	"github.com/taibuivan/channelscope/internal/catalog"
	"github.com/taibuivan/channelscope/internal/youtube"
)

// LinkReport summarizes one link repair.
type LinkReport struct {
	// Requested is the number of playlists whose items were fetched.
	Requested int `json:"requested"`
	// Linked is the number of memberships added.
	Linked int `json:"linked"`
	// Unresolved lists playlist ids that still have no member.
	Unresolved []string `json:"unresolved,omitempty"`
	// Errors are the fetch failures that remained after the retry.
	Errors []error `json:"-"`
}

// Linker restores missing playlist memberships from the video catalog.
type Linker struct {
	client youtube.Client
	logger *slog.Logger
}

// NewLinker builds a linker.
func NewLinker(client youtube.Client, logger *slog.Logger) *Linker {
	return &Linker{client: client, logger: logger}
}

/*
Repair links the members of every labeled playlist that has none.

Description: Upstream items are intersected with the stored videos of the
competitor by upstream id; unknown ids are ignored and existing links are
kept. A failed fetch is retried once, then recorded. Only a cancelled
context or an invariant violation is returned.

Parameters:
  - context: context.Context
  - state: *catalog.State

Returns:
  - LinkReport: Counters and unresolved playlists
  - error: Context error or InvariantViolation
*/
func (linker *Linker) Repair(context context.Context, state *catalog.State) (LinkReport, error) {
	var report LinkReport

	for _, playlist := range state.Playlists {
		if !playlist.Category.IsSet() || state.HasMembers(playlist.ID) {
			continue
		}
		if err := context.Err(); err != nil {
			return report, err
		}
		if playlist.ExternalID == "" {
			report.Unresolved = append(report.Unresolved, playlist.ID)
			continue
		}

		report.Requested++
		items, err := linker.fetch(context, playlist)
		if err != nil && context.Err() != nil {
			return report, context.Err()
		}
		if err != nil {
			report.Errors = append(report.Errors, err)
		}

		for _, externalID := range items {
			video := state.VideoByExternalID(externalID)
			if video == nil {
				continue
			}
			added, linkErr := state.AddMembership(catalog.Membership{PlaylistID: playlist.ID, VideoID: video.ID})
			if linkErr != nil {
				return report, linkErr
			}
			if added {
				report.Linked++
			}
		}

		if !state.HasMembers(playlist.ID) {
			report.Unresolved = append(report.Unresolved, playlist.ID)
		}
	}

	return report, nil
}

// fetch lists playlist items with one retry. A partial result is kept.
func (linker *Linker) fetch(context context.Context, playlist *catalog.Playlist) ([]string, error) {
	items, err := linker.client.ListPlaylistItems(context, playlist.ExternalID)
	if err == nil || youtube.IsPartial(err) || context.Err() != nil {
		return items, err
	}

	linker.logger.Warn("playlist_items_retry",
		slog.String("playlist_id", playlist.ID),
		slog.Any("error", err),
	)
	items, err = linker.client.ListPlaylistItems(context, playlist.ExternalID)
	if err != nil && !youtube.IsPartial(err) {
		linker.logger.Warn("playlist_items_unresolved",
			slog.String("playlist_id", playlist.ID),
			slog.Any("error", err),
		)
	}
	return items, err
}
