// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package fix

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taibuivan/channelscope/internal/anomaly"
	"github.com/taibuivan/channelscope/internal/catalog"
	"github.com/taibuivan/channelscope/internal/platform/apperr"
	"github.com/taibuivan/channelscope/internal/platform/constants"
	"github.com/taibuivan/channelscope/internal/youtube"
	"github.com/taibuivan/channelscope/pkg/slice"
)

// Resolver selects which upstream source is authoritative for data repairs.
type Resolver string

const (
	// ResolverCatalogFirst trusts the refresh listing and refetches only what it lacks.
	ResolverCatalogFirst Resolver = "catalog_first"
	// ResolverRefetchOnly ignores the listing and refetches content details.
	ResolverRefetchOnly Resolver = "refetch_only"
)

// ParseResolver validates a resolver name.
func ParseResolver(raw string) (Resolver, error) {
	switch Resolver(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ResolverCatalogFirst:
		return ResolverCatalogFirst, nil
	case ResolverRefetchOnly:
		return ResolverRefetchOnly, nil
	default:
		return "", apperr.Input(fmt.Sprintf("unknown corrupted_dates_resolver %q", raw))
	}
}

// Evidence holds upstream content details keyed by upstream video id.
type Evidence struct {
	details map[string]youtube.ContentDetails

	// Skipped holds the errors of batches that could not be fetched.
	Skipped []error
}

// NewEvidence returns an empty evidence set.
func NewEvidence() *Evidence {
	return &Evidence{details: make(map[string]youtube.ContentDetails)}
}

// Record stores details, keeping earlier non-empty fields.
func (evidence *Evidence) Record(details youtube.ContentDetails) {
	current, ok := evidence.details[details.VideoID]
	if ok {
		if details.Duration == "" {
			details.Duration = current.Duration
		}
		if details.PublishedAt.IsZero() {
			details.PublishedAt = current.PublishedAt
		}
	}
	evidence.details[details.VideoID] = details
}

// RecordListing stores the durations and dates of a refresh listing.
func (evidence *Evidence) RecordListing(items []youtube.VideoItem) {
	for _, item := range items {
		evidence.Record(youtube.ContentDetails{VideoID: item.VideoID, Duration: item.Duration, PublishedAt: item.PublishedAt})
	}
}

// Lookup returns the details of an upstream video id.
func (evidence *Evidence) Lookup(externalID string) (youtube.ContentDetails, bool) {
	details, ok := evidence.details[externalID]
	return details, ok
}

// Len returns the number of videos with evidence.
func (evidence *Evidence) Len() int {
	return len(evidence.details)
}

/*
Refetch loads content details for the given upstream ids in batches.

Description: A failed batch is logged, recorded in Skipped and does not stop
the remaining batches. Only a cancelled context is returned as an error.

Parameters:
  - context: context.Context
  - client: youtube.Client
  - externalIDs: []string
  - logger: *slog.Logger

Returns:
  - error: The context error when cancelled
*/
func (evidence *Evidence) Refetch(context context.Context, client youtube.Client, externalIDs []string, logger *slog.Logger) error {
	for _, batch := range slice.Chunk(externalIDs, constants.CatalogBatchSize) {
		if err := context.Err(); err != nil {
			return err
		}

		details, err := client.GetContentDetails(context, batch)
		if err != nil {
			if context.Err() != nil {
				return context.Err()
			}
			logger.Warn("content_details_batch_skipped",
				slog.Int("batch_size", len(batch)),
				slog.Any("error", err),
			)
			evidence.Skipped = append(evidence.Skipped, err)
			continue
		}

		for _, item := range details {
			evidence.Record(item)
		}
	}
	return nil
}

/*
GatherEvidence builds the evidence needed to repair the data anomalies found.

Description: With [ResolverCatalogFirst] the refresh listing is recorded first
and only videos it does not cover are refetched. A listed date that is itself
a sentinel import date covers nothing. With [ResolverRefetchOnly] every
affected video is refetched.

Parameters:
  - context: context.Context
  - client: youtube.Client
  - state: *catalog.State
  - found: []anomaly.Anomaly
  - detector: *anomaly.Detector (Knows the sentinel import dates)
  - listing: []youtube.VideoItem (Refresh listing, may be nil)
  - resolver: Resolver
  - logger: *slog.Logger

Returns:
  - *Evidence: Never nil
  - error: The context error when cancelled
*/
func GatherEvidence(context context.Context, client youtube.Client, state *catalog.State, found []anomaly.Anomaly,
	detector *anomaly.Detector, listing []youtube.VideoItem, resolver Resolver, logger *slog.Logger) (*Evidence, error) {

	evidence := NewEvidence()
	if resolver != ResolverRefetchOnly {
		evidence.RecordListing(listing)
	}

	seen := make(map[string]struct{})
	var targets []string
	for _, item := range found {
		if !item.Kind.IsDataRepair() {
			continue
		}
		for _, id := range item.VideoIDs {
			video := state.Video(id)
			if video == nil || video.ExternalID == "" {
				continue
			}
			if details, ok := evidence.Lookup(video.ExternalID); ok && covers(item.Kind, details, detector) {
				continue
			}
			if _, dup := seen[video.ExternalID]; dup {
				continue
			}
			seen[video.ExternalID] = struct{}{}
			targets = append(targets, video.ExternalID)
		}
	}

	if len(targets) == 0 {
		return evidence, nil
	}
	return evidence, evidence.Refetch(context, client, targets, logger)
}

// covers reports whether details can repair kind without a refetch.
func covers(kind anomaly.Kind, details youtube.ContentDetails, detector *anomaly.Detector) bool {
	switch kind {
	case anomaly.CorruptedDates:
		return !details.PublishedAt.IsZero() && !detector.IsSentinel(details.PublishedAt)
	default:
		_, ok := youtube.ParseISODuration(details.Duration)
		return ok
	}
}
