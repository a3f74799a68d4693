// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package propagate

import (
	"github.com/taibuivan/channelscope/internal/catalog"
	"github.com/taibuivan/channelscope/internal/fix"
)

// Propagator copies human playlist labels to member videos.
type Propagator struct {
	applier *fix.Applier
}

// NewPropagator builds a propagator writing through applier.
func NewPropagator(applier *fix.Applier) *Propagator {
	return &Propagator{applier: applier}
}

/*
Propagate applies the category of every human-validated playlist to its members.

Description: Playlists are visited by id ascending; a video in several such
playlists takes the category of the first one. Propagated videos become
human-validated. Videos that were already protected and carry a different
category are reported through the applier as protection drops.

Parameters:
  - state: *catalog.State

Returns:
  - fix.Outcome: Audits of propagated videos and protection drops
  - error: InvariantViolation
*/
func (propagator *Propagator) Propagate(state *catalog.State) (fix.Outcome, error) {
	claimed := make(map[string]struct{})
	var patches []fix.Patch

	for _, playlist := range state.Playlists {
		if !playlist.IsProtected() || !playlist.Category.IsSet() {
			continue
		}

		for _, videoID := range state.MembersOf(playlist.ID) {
			if _, done := claimed[videoID]; done {
				continue
			}
			video := state.Video(videoID)
			if video == nil {
				continue
			}
			claimed[videoID] = struct{}{}

			if video.IsProtected() && video.Category == playlist.Category {
				continue
			}
			patches = append(patches, fix.LabelPatch{
				VideoID:  videoID,
				Category: playlist.Category,
				Source:   catalog.PropagatedSource,
				Validate: true,
				Reason:   fix.Reason{Kind: fix.KindPropagation, Action: "propagate_from_" + playlist.ID},
			})
		}
	}

	return propagator.applier.Apply(state, patches)
}
