// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package fix

import (
	"sort"
	"strings"

	"github.com/taibuivan/channelscope/internal/anomaly"
	"github.com/taibuivan/channelscope/internal/catalog"
	"github.com/taibuivan/channelscope/internal/classify"
	"github.com/taibuivan/channelscope/internal/platform/constants"
	"github.com/taibuivan/channelscope/internal/youtube"
)

// Limits are the per-run relabel caps of the distribution fixes.
type Limits struct {
	ZeroHelpCap int
	ZeroHeroCap int
}

// Fixer plans corrections. It holds no mutable state.
type Fixer struct {
	classifier *classify.Classifier
	lexicon    *classify.FixLexicon
	detector   *anomaly.Detector
	limits     Limits
}

// NewFixer wires a fixer.
func NewFixer(classifier *classify.Classifier, lexicon *classify.FixLexicon, detector *anomaly.Detector, limits Limits) *Fixer {
	return &Fixer{classifier: classifier, lexicon: lexicon, detector: detector, limits: limits}
}

/*
Plan returns the patches that correct one anomaly.

Description: Kinds without a correction yield an empty plan. Data repairs
need evidence; label fixes ignore it. Human-protected videos are never
candidates of a distribution fix.

Parameters:
  - state: *catalog.State
  - found: anomaly.Anomaly
  - evidence: *Evidence (May be nil for label fixes)

Returns:
  - Plan: Patches, report notes and unresolved videos
*/
func (fixer *Fixer) Plan(state *catalog.State, found anomaly.Anomaly, evidence *Evidence) Plan {
	switch found.Kind {
	case anomaly.CorruptedDates:
		return fixer.planDates(state, found, evidence)
	case anomaly.InvalidDurations, anomaly.NoDurationData:
		return fixer.planDurations(state, found, evidence)
	case anomaly.UncategorizedVideos:
		return fixer.planUncategorized(state)
	case anomaly.ZeroHelp:
		return fixer.planZeroHelp(state)
	case anomaly.ZeroHero:
		return fixer.planZeroHero(state)
	case anomaly.HubMonopoly:
		return fixer.planHubMonopoly(state)
	default:
		return Plan{}
	}
}

// # Data Repairs

func (fixer *Fixer) planDates(state *catalog.State, found anomaly.Anomaly, evidence *Evidence) Plan {
	var plan Plan
	reason := Reason{Kind: string(anomaly.CorruptedDates), Action: "restore_published_at"}

	for _, id := range found.VideoIDs {
		video := state.Video(id)
		if video == nil {
			continue
		}
		details, ok := lookup(evidence, video.ExternalID)
		if !ok || details.PublishedAt.IsZero() || fixer.detector.IsSentinel(details.PublishedAt) {
			plan.Unresolved = append(plan.Unresolved, id)
			continue
		}
		plan.Patches = append(plan.Patches, DatePatch{VideoID: id, PublishedAt: details.PublishedAt.UTC(), Reason: reason})
	}
	return plan
}

func (fixer *Fixer) planDurations(state *catalog.State, found anomaly.Anomaly, evidence *Evidence) Plan {
	var plan Plan
	reason := Reason{Kind: string(found.Kind), Action: "refetch_duration"}

	for _, id := range found.VideoIDs {
		video := state.Video(id)
		if video == nil {
			continue
		}
		details, ok := lookup(evidence, video.ExternalID)
		if !ok {
			plan.Unresolved = append(plan.Unresolved, id)
			continue
		}
		seconds, ok := youtube.ParseISODuration(details.Duration)
		if !ok {
			plan.Unresolved = append(plan.Unresolved, id)
			continue
		}
		plan.Patches = append(plan.Patches, DurationPatch{
			VideoID: id,
			Seconds: seconds,
			Text:    youtube.FormatDuration(seconds),
			Reason:  reason,
		})
	}
	return plan
}

func lookup(evidence *Evidence, externalID string) (youtube.ContentDetails, bool) {
	if evidence == nil || externalID == "" {
		return youtube.ContentDetails{}, false
	}
	return evidence.Lookup(externalID)
}

// # Label Fixes

// planUncategorized classifies every unlabeled video. Protected videos are
// kept in the plan so that the applier counts them.
func (fixer *Fixer) planUncategorized(state *catalog.State) Plan {
	var plan Plan
	country := ""
	if state.Competitor != nil {
		country = state.Competitor.Country
	}

	for _, video := range state.Videos {
		if video.Category.IsSet() {
			continue
		}
		if !video.IsProtected() && !catalog.PatternSource.MayOverwrite(video.Source) {
			continue
		}
		result := fixer.classifier.ClassifyVideo(video, country)
		if !result.Category.IsSet() {
			continue
		}
		plan.Patches = append(plan.Patches, LabelPatch{
			VideoID:  video.ID,
			Category: result.Category,
			Source:   catalog.PatternSource,
			Reason:   Reason{Kind: string(anomaly.UncategorizedVideos), Action: "classify_" + string(result.Method)},
		})
	}
	return plan
}

func (fixer *Fixer) planZeroHelp(state *catalog.State) Plan {
	source := catalog.FixSource(string(anomaly.ZeroHelp))
	candidates := fixer.hubCandidates(state, source, func(video *catalog.Video) bool {
		return fixer.lexicon.MatchesHelp(video.Text())
	})

	return capped(candidates, fixer.limits.ZeroHelpCap, "zero_help_fix_cap reached", func(video *catalog.Video) Patch {
		return relabel(video, catalog.CategoryHelp, source, anomaly.ZeroHelp)
	})
}

func (fixer *Fixer) planZeroHero(state *catalog.State) Plan {
	source := catalog.FixSource(string(anomaly.ZeroHero))
	candidates := fixer.hubCandidates(state, source, func(video *catalog.Video) bool {
		return video.Views() > constants.ZeroHeroViewThreshold ||
			fixer.lexicon.MatchesInspirational(video.Text()) ||
			catalog.IsShortDuration(video.DurationSeconds)
	})

	return capped(candidates, fixer.limits.ZeroHeroCap, "zero_hero_fix_cap reached", func(video *catalog.Video) Patch {
		return relabel(video, catalog.CategoryHero, source, anomaly.ZeroHero)
	})
}

// planHubMonopoly promotes the top-view HUB videos above the view floor to
// HERO, then moves lexicon-matching HUB videos among the rest to HELP.
func (fixer *Fixer) planHubMonopoly(state *catalog.State) Plan {
	source := catalog.FixSource(string(anomaly.HubMonopoly))
	all := fixer.hubCandidates(state, source, func(*catalog.Video) bool { return true })
	popular := fixer.hubCandidates(state, source, func(video *catalog.Video) bool {
		return video.Views() > constants.HubMonopolyHeroMinViews
	})

	var plan Plan
	promoted := make(map[string]struct{})
	for _, video := range popular[:min(len(popular), constants.HubMonopolyHeroCap)] {
		promoted[video.ID] = struct{}{}
		plan.Patches = append(plan.Patches, relabel(video, catalog.CategoryHero, source, anomaly.HubMonopoly))
	}

	moved := 0
	for _, video := range all {
		if moved == constants.HubMonopolyHelpCap {
			break
		}
		if _, done := promoted[video.ID]; done || !fixer.lexicon.MatchesHelp(video.Text()) {
			continue
		}
		plan.Patches = append(plan.Patches, relabel(video, catalog.CategoryHelp, source, anomaly.HubMonopoly))
		moved++
	}
	return plan
}

// hubCandidates returns unprotected HUB videos that source may overwrite and
// that satisfy keep, ordered by views descending then id.
func (fixer *Fixer) hubCandidates(state *catalog.State, source catalog.Source, keep func(*catalog.Video) bool) []*catalog.Video {
	var candidates []*catalog.Video
	for _, video := range state.Videos {
		if video.Category != catalog.CategoryHub || video.IsProtected() || !source.MayOverwrite(video.Source) {
			continue
		}
		if keep(video) {
			candidates = append(candidates, video)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Views() != candidates[j].Views() {
			return candidates[i].Views() > candidates[j].Views()
		}
		return candidates[i].ID < candidates[j].ID
	})
	return candidates
}

func capped(candidates []*catalog.Video, limit int, note string, patch func(*catalog.Video) Patch) Plan {
	var plan Plan
	if limit < 0 {
		limit = 0
	}
	if len(candidates) > limit {
		candidates = candidates[:limit]
		plan.Notes = append(plan.Notes, note)
	}
	for _, video := range candidates {
		plan.Patches = append(plan.Patches, patch(video))
	}
	return plan
}

func relabel(video *catalog.Video, category catalog.Category, source catalog.Source, kind anomaly.Kind) LabelPatch {
	return LabelPatch{
		VideoID:  video.ID,
		Category: category,
		Source:   source,
		Reason: Reason{
			Kind:   string(kind),
			Action: "relabel_" + strings.ToLower(string(video.Category)) + "_to_" + strings.ToLower(string(category)),
		},
	}
}
