// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"strings"
)

// # Classification Provenance

// SourceKind identifies the mechanism that produced a label.
// The numeric order is the precedence order: a larger value is stronger.
type SourceKind int

const (
	SourceNone SourceKind = iota
	SourcePattern
	SourceFix
	SourcePropagated
	SourceHuman
)

// Stable store spellings.
const (
	sourcePatternText    = "pattern"
	sourcePropagatedText = "propagated_from_human_playlist"
	sourceHumanText      = "human"
	sourceFixPrefix      = "intelligent_"
	sourceFixSuffix      = "_fix"
)

// Source is the provenance of a category label. For [SourceFix] it also names
// the anomaly kind that motivated the correction.
type Source struct {
	Kind    SourceKind
	FixKind string
}

var (
	NoSource         = Source{Kind: SourceNone}
	PatternSource    = Source{Kind: SourcePattern}
	PropagatedSource = Source{Kind: SourcePropagated}
	HumanSource      = Source{Kind: SourceHuman}
)

// FixSource returns the provenance of a correction driven by an anomaly kind
// such as "ZERO_HELP".
func FixSource(anomalyKind string) Source {
	return Source{Kind: SourceFix, FixKind: strings.ToLower(anomalyKind)}
}

// String serializes the provenance for the store.
func (s Source) String() string {
	switch s.Kind {
	case SourcePattern:
		return sourcePatternText
	case SourceFix:
		return sourceFixPrefix + s.FixKind + sourceFixSuffix
	case SourcePropagated:
		return sourcePropagatedText
	case SourceHuman:
		return sourceHumanText
	default:
		return ""
	}
}

// Outranks reports whether s is strictly stronger than other.
func (s Source) Outranks(other Source) bool {
	return s.Kind > other.Kind
}

// MayOverwrite reports whether a label with provenance s may replace one with
// provenance current: only equal or weaker provenance can be overwritten, and
// human labels never are.
func (s Source) MayOverwrite(current Source) bool {
	if current.Kind == SourceHuman {
		return false
	}
	return s.Kind >= current.Kind
}

// ParseSource reads a stored provenance string.
//
// Both "intelligent_<kind>_fix" and "intelligent_fix_<kind>" spellings are
// accepted. Legacy automatic tags ("keyword", "multilingual", "ai", "auto")
// read as pattern; "user" and "manual" read as human. Anything else unknown
// reads as pattern so that it can never outrank a real human label.
func ParseSource(raw string) Source {
	value := strings.ToLower(strings.TrimSpace(raw))

	switch value {
	case "":
		return NoSource
	case sourceHumanText, "user", "manual":
		return HumanSource
	case sourcePropagatedText:
		return PropagatedSource
	case sourcePatternText:
		return PatternSource
	}

	if rest, ok := strings.CutPrefix(value, sourceFixPrefix); ok {
		if kind, ok := strings.CutPrefix(rest, "fix_"); ok && kind != "" {
			return Source{Kind: SourceFix, FixKind: kind}
		}
		if kind, ok := strings.CutSuffix(rest, sourceFixSuffix); ok && kind != "" {
			return Source{Kind: SourceFix, FixKind: kind}
		}
	}

	return PatternSource
}

// MarshalText implements encoding.TextMarshaler so reports carry the stable spelling.
func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Source) UnmarshalText(text []byte) error {
	*s = ParseSource(string(text))
	return nil
}
