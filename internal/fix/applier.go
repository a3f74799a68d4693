// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package fix

import (
	"fmt"
	"strconv"
	"time"

	"github.com/taibuivan/channelscope/internal/catalog"
	"github.com/taibuivan/channelscope/internal/platform/apperr"
	"github.com/taibuivan/channelscope/pkg/uuid"
)

// Outcome summarizes one [Applier.Apply] call.
type Outcome struct {
	Audits []Audit
	// SkippedProtected counts label patches dropped on human-protected videos.
	SkippedProtected int
}

// Applied returns the number of patches that changed a video.
func (outcome Outcome) Applied() int {
	return len(outcome.Audits)
}

// Merge adds other into outcome.
func (outcome *Outcome) Merge(other Outcome) {
	outcome.Audits = append(outcome.Audits, other.Audits...)
	outcome.SkippedProtected += other.SkippedProtected
}

// Applier writes patches onto a working set.
type Applier struct {
	now func() time.Time
}

// NewApplier returns an applier stamping classification dates with now.
// A nil clock means time.Now.
func NewApplier(now func() time.Time) *Applier {
	if now == nil {
		now = time.Now
	}
	return &Applier{now: now}
}

/*
Apply writes patches in order and marks every changed video for commit.

Description: Label patches on a human-protected video are dropped and counted.
A label patch whose provenance is weaker than the current one is a bug in the
caller and aborts with an InvariantViolation; patches applied before it stay
in the working set, which the caller then discards. Patches that would not
change anything produce no audit.

Parameters:
  - state: *catalog.State
  - patches: []Patch

Returns:
  - Outcome: Audits and protection drops
  - error: InvariantViolation
*/
func (applier *Applier) Apply(state *catalog.State, patches []Patch) (Outcome, error) {
	var outcome Outcome
	now := applier.now().UTC()

	for _, patch := range patches {
		video := state.Video(patch.Target())
		if video == nil {
			return outcome, apperr.InvariantViolation(fmt.Sprintf("patch targets unknown video %q", patch.Target()))
		}

		var before, after string
		switch p := patch.(type) {
		case LabelPatch:
			if video.IsProtected() {
				outcome.SkippedProtected++
				continue
			}
			if !p.Source.MayOverwrite(video.Source) {
				return outcome, apperr.InvariantViolation(fmt.Sprintf("video %s: %s may not overwrite %s", video.ID, p.Source, video.Source))
			}
			if video.Category == p.Category && video.Source == p.Source && video.IsHumanValidated == p.Validate {
				continue
			}
			before, after = labelText(video.Category, video.Source), labelText(p.Category, p.Source)
			video.Category = p.Category
			video.Source = p.Source
			video.IsHumanValidated = p.Validate
			stamp := now
			video.ClassificationDate = &stamp

		case DatePatch:
			if video.PublishedAt.Equal(p.PublishedAt) {
				continue
			}
			before, after = dateText(video.PublishedAt), dateText(p.PublishedAt)
			video.PublishedAt = p.PublishedAt

		case DurationPatch:
			if p.Seconds <= 0 {
				return outcome, apperr.InvariantViolation(fmt.Sprintf("video %s: non-positive duration %d", video.ID, p.Seconds))
			}
			if video.DurationSeconds == p.Seconds {
				continue
			}
			before, after = strconv.Itoa(video.DurationSeconds), strconv.Itoa(p.Seconds)
			video.SetDuration(p.Seconds, p.Text)

		default:
			return outcome, apperr.InvariantViolation(fmt.Sprintf("unknown patch type %T", patch))
		}

		state.MarkVideo(video.ID)
		reason := patch.Why()
		outcome.Audits = append(outcome.Audits, Audit{
			ID:           uuid.New(),
			CompetitorID: video.CompetitorID,
			VideoID:      video.ID,
			Kind:         reason.Kind,
			Action:       reason.Action,
			Before:       before,
			After:        after,
			Timestamp:    now,
		})
	}

	return outcome, nil
}

func labelText(category catalog.Category, source catalog.Source) string {
	if category == catalog.CategoryNone {
		return "uncategorized"
	}
	if source.Kind == catalog.SourceNone {
		return string(category)
	}
	return string(category) + "/" + source.String()
}

func dateText(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
