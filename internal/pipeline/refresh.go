// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/taibuivan/channelscope/internal/catalog"
	"github.com/taibuivan/channelscope/internal/platform/ctxutil"
	"github.com/taibuivan/channelscope/internal/youtube"
	"github.com/taibuivan/channelscope/pkg/pointer"
	"github.com/taibuivan/channelscope/pkg/uuid"
)

// refreshResult summarizes one catalog refresh.
type refreshResult struct {
	// Listing is the upstream listing, reused as repair evidence.
	Listing        []youtube.VideoItem
	VideosUpdated  int
	VideosAdded    int
	PlaylistsAdded int
	// Warnings are the catalog failures that were skipped.
	Warnings []error
}

// refresher pulls channel, video and playlist metadata into a working set.
type refresher struct {
	client    youtube.Client
	maxVideos int
	now       func() time.Time
}

/*
refresh updates the working set from the video catalog.

Description: Metadata and counters of known videos are replaced, unknown
publication dates are filled in, and new videos and playlists are inserted.
Stored durations and known dates only change through the audited repairs.
Catalog failures are recorded as warnings; only a cancelled context is
returned.
*/
func (refresher *refresher) refresh(context context.Context, state *catalog.State) (refreshResult, error) {
	var result refreshResult
	logger := ctxutil.GetLogger(context)
	competitor := state.Competitor
	channelRef := competitor.ChannelID

	// The video listing needs the uploads playlist, so an unknown channel skips it.
	var items []youtube.VideoItem
	channel, err := refresher.client.GetChannel(context, channelRef)
	if err != nil {
		if context.Err() != nil {
			return result, context.Err()
		}
		logger.Warn("channel_refresh_skipped", slog.String("channel", channelRef), slog.Any("error", err))
		result.Warnings = append(result.Warnings, err)
	} else {
		if channel.SubscriberCount != competitor.SubscriberCount {
			competitor.SubscriberCount = channel.SubscriberCount
			competitor.UpdatedAt = refresher.now()
			state.MarkCompetitor()
		}

		items, err = refresher.client.ListChannelVideos(context, channel.UploadsPlaylistID, refresher.maxVideos)
		if err != nil {
			if context.Err() != nil {
				return result, context.Err()
			}
			logger.Warn("video_listing_incomplete", slog.String("channel", channelRef), slog.Int("received", len(items)), slog.Any("error", err))
			result.Warnings = append(result.Warnings, err)
		}
	}
	result.Listing = items

	for _, item := range items {
		if item.VideoID == "" {
			continue
		}
		if video := state.VideoByExternalID(item.VideoID); video != nil {
			if mergeVideo(video, item) {
				state.MarkVideo(video.ID)
				result.VideosUpdated++
			}
			continue
		}
		video := newVideo(competitor.ID, item)
		state.AddVideo(video)
		state.MarkVideo(video.ID)
		result.VideosAdded++
	}

	playlists, err := refresher.client.ListPlaylists(context, channelRef)
	if err != nil {
		if context.Err() != nil {
			return result, context.Err()
		}
		logger.Warn("playlist_listing_incomplete", slog.String("channel", channelRef), slog.Any("error", err))
		result.Warnings = append(result.Warnings, err)
	}

	for _, item := range playlists {
		if item.PlaylistID == "" {
			continue
		}
		if playlist := state.PlaylistByExternalID(item.PlaylistID); playlist != nil {
			if mergePlaylist(playlist, item) {
				state.MarkPlaylist(playlist.ID)
			}
			continue
		}
		playlist := &catalog.Playlist{
			ID:           uuid.New(),
			CompetitorID: competitor.ID,
			ExternalID:   item.PlaylistID,
			Title:        item.Title,
			Description:  item.Description,
			VideoCount:   item.VideoCount,
		}
		state.AddPlaylist(playlist)
		state.MarkPlaylist(playlist.ID)
		result.PlaylistsAdded++
	}

	return result, nil
}

// mergeVideo copies upstream metadata onto a stored video and reports a change.
func mergeVideo(video *catalog.Video, item youtube.VideoItem) bool {
	changed := false
	set := func(target *string, value string) {
		if value != "" && *target != value {
			*target = value
			changed = true
		}
	}
	set(&video.Title, item.Title)
	set(&video.Description, item.Description)
	set(&video.ThumbnailURL, item.ThumbnailURL)

	if item.ViewCount != nil && !pointer.Equal(video.ViewCount, item.ViewCount) {
		video.ViewCount = pointer.Copy(item.ViewCount)
		changed = true
	}
	if video.LikeCount != item.LikeCount {
		video.LikeCount = item.LikeCount
		changed = true
	}
	if video.CommentCount != item.CommentCount {
		video.CommentCount = item.CommentCount
		changed = true
	}
	if video.PublishedAt.IsZero() && !item.PublishedAt.IsZero() {
		video.PublishedAt = item.PublishedAt.UTC()
		changed = true
	}
	return changed
}

func mergePlaylist(playlist *catalog.Playlist, item youtube.PlaylistItem) bool {
	if playlist.Title == item.Title && playlist.Description == item.Description && playlist.VideoCount == item.VideoCount {
		return false
	}
	playlist.Title = item.Title
	playlist.Description = item.Description
	playlist.VideoCount = item.VideoCount
	return true
}

// newVideo builds an unlabeled video from a listing item.
func newVideo(competitorID string, item youtube.VideoItem) *catalog.Video {
	video := &catalog.Video{
		ID:           uuid.New(),
		CompetitorID: competitorID,
		ExternalID:   item.VideoID,
		Title:        item.Title,
		Description:  item.Description,
		PublishedAt:  item.PublishedAt.UTC(),
		LikeCount:    item.LikeCount,
		CommentCount: item.CommentCount,
		ThumbnailURL: item.ThumbnailURL,
		ViewCount:    pointer.Copy(item.ViewCount),
	}
	if seconds, ok := youtube.ParseISODuration(item.Duration); ok && seconds > 0 {
		video.SetDuration(seconds, youtube.FormatDuration(seconds))
	}
	return video
}

// isCancellation reports whether err only signals a cancelled run.
func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
