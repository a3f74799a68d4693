// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package fix corrects anomalies with bounded, auditable patches.

Architecture:

  - Fixer: a pure function from a working set and one anomaly to a [Plan]
    of patches. It never writes.
  - Applier: the single writer of patches onto a working set. It drops
    patches on human-protected videos and rejects any label patch that
    would overwrite a stronger provenance.
  - Evidence: upstream durations and publication dates used by data repairs.

Every applied patch yields one [Audit] record.
*/
package fix

import (
	"time"

	"github.com/taibuivan/channelscope/internal/catalog"
)

// Reason ties a patch to the step that produced it.
type Reason struct {
	// Kind is an anomaly kind, or "PROPAGATION" for playlist label copies.
	Kind string
	// Action is a short machine-readable verb such as "relabel_hub_to_help".
	Action string
}

// KindPropagation marks patches produced by playlist propagation.
const KindPropagation = "PROPAGATION"

// Patch is one change to one video. It is a closed sum type: [LabelPatch],
// [DatePatch] or [DurationPatch].
type Patch interface {
	Target() string
	Why() Reason
	isPatch()
}

// LabelPatch sets the category of a video.
type LabelPatch struct {
	VideoID  string
	Category catalog.Category
	Source   catalog.Source
	// Validate also marks the video as human-validated.
	Validate bool
	Reason   Reason
}

// DatePatch replaces a publication date with an authoritative upstream value.
type DatePatch struct {
	VideoID     string
	PublishedAt time.Time
	Reason      Reason
}

// DurationPatch stores a duration read from upstream content details.
type DurationPatch struct {
	VideoID string
	Seconds int
	Text    string
	Reason  Reason
}

func (p LabelPatch) Target() string    { return p.VideoID }
func (p DatePatch) Target() string     { return p.VideoID }
func (p DurationPatch) Target() string { return p.VideoID }

func (p LabelPatch) Why() Reason    { return p.Reason }
func (p DatePatch) Why() Reason     { return p.Reason }
func (p DurationPatch) Why() Reason { return p.Reason }

func (LabelPatch) isPatch()    {}
func (DatePatch) isPatch()     {}
func (DurationPatch) isPatch() {}

// Audit records one applied patch.
type Audit struct {
	ID           string    `json:"id"`
	CompetitorID string    `json:"competitor_id"`
	VideoID      string    `json:"video_id"`
	Kind         string    `json:"kind"`
	Action       string    `json:"action"`
	Before       string    `json:"before"`
	After        string    `json:"after"`
	Timestamp    time.Time `json:"timestamp"`
}

// Plan is the outcome of planning one anomaly.
type Plan struct {
	Patches []Patch
	// Notes are report lines such as "zero_help_fix_cap reached".
	Notes []string
	// Unresolved lists video ids a data repair found no evidence for.
	Unresolved []string
}

// IsEmpty reports whether the plan changes nothing.
func (plan Plan) IsEmpty() bool {
	return len(plan.Patches) == 0
}
