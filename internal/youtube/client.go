// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package youtube is the video catalog client consumed by the engine.

Architecture:

  - Client: the contract the engine depends on. Every method is a blocking
    network call and takes a context.
  - APIClient: the YouTube Data API v3 implementation with quota pacing,
    bounded retries and error classification.
  - FakeClient: a scripted in-memory implementation for tests and offline runs.

Errors leaving this package are [apperr.AppError] values tagged either
TRANSIENT_CATALOG_ERROR or PERMANENT_CATALOG_ERROR. Context cancellation is
returned untouched.
*/
package youtube

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Channel is the channel metadata of a competitor.
type Channel struct {
	ID                string
	Title             string
	Country           string
	SubscriberCount   int64
	UploadsPlaylistID string
}

// VideoItem is one video as listed from a channel. ViewCount is nil when the
// platform hides it. Duration is the raw ISO-8601 value.
type VideoItem struct {
	VideoID      string
	Title        string
	Description  string
	PublishedAt  time.Time
	Duration     string
	ViewCount    *int64
	LikeCount    int64
	CommentCount int64
	ThumbnailURL string
}

// PlaylistItem describes one playlist of a channel.
type PlaylistItem struct {
	PlaylistID  string
	Title       string
	Description string
	VideoCount  int
}

// ContentDetails is the authoritative duration and date of a video.
type ContentDetails struct {
	VideoID     string
	Duration    string
	PublishedAt time.Time
}

// Client fetches catalog data from the upstream video platform.
type Client interface {
	// GetChannel resolves a channel id or @handle.
	GetChannel(context context.Context, channelRef string) (*Channel, error)

	// ListChannelVideos lists up to max videos of a channel's uploads playlist,
	// as reported by [Channel.UploadsPlaylistID]. A max of zero means unlimited.
	ListChannelVideos(context context.Context, uploadsPlaylistID string, max int) ([]VideoItem, error)

	// ListPlaylists lists the public playlists of a channel.
	ListPlaylists(context context.Context, channelRef string) ([]PlaylistItem, error)

	// ListPlaylistItems returns the video ids of a playlist in playlist order.
	ListPlaylistItems(context context.Context, playlistID string) ([]string, error)

	// GetContentDetails fetches durations and dates of at most 50 videos.
	GetContentDetails(context context.Context, videoIDs []string) ([]ContentDetails, error)
}

// # Partial Results

// PartialError is returned next to usable results when some batches of a
// paged fetch were skipped after their retries ran out.
type PartialError struct {
	Operation string
	Skipped   []error
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("%s: %d batch(es) skipped: %v", e.Operation, len(e.Skipped), errors.Join(e.Skipped...))
}

// Unwrap exposes the skipped batch errors to errors.Is and errors.As.
func (e *PartialError) Unwrap() []error { return e.Skipped }

// IsPartial reports whether err only signals skipped batches.
func IsPartial(err error) bool {
	var partial *PartialError
	return errors.As(err, &partial)
}
