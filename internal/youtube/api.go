// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package youtube

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"

	"github.com/taibuivan/channelscope/internal/platform/apperr"
	"github.com/taibuivan/channelscope/internal/platform/constants"
	"github.com/taibuivan/channelscope/internal/platform/telemetry"
	"github.com/taibuivan/channelscope/pkg/convert"
	"github.com/taibuivan/channelscope/pkg/slice"
)

// APIOptions configures an [APIClient].
type APIOptions struct {
	APIKey string

	// QPS paces outgoing calls to protect the daily quota. Zero disables pacing.
	QPS float64

	Policy  RetryPolicy
	Logger  *slog.Logger
	Metrics *telemetry.Metrics

	// Endpoint and HTTPClient override the upstream for tests.
	Endpoint   string
	HTTPClient *http.Client
}

// APIClient implements [Client] on the YouTube Data API v3.
type APIClient struct {
	service *ytapi.Service
	limiter *rate.Limiter
	policy  RetryPolicy
	logger  *slog.Logger
	metrics *telemetry.Metrics
}

var _ Client = (*APIClient)(nil)

// NewAPIClient builds the upstream service from options.
func NewAPIClient(context context.Context, options APIOptions) (*APIClient, error) {
	if options.APIKey == "" && options.HTTPClient == nil {
		return nil, apperr.Input("youtube api key is required")
	}

	clientOptions := []option.ClientOption{option.WithAPIKey(options.APIKey)}
	if options.Endpoint != "" {
		clientOptions = append(clientOptions, option.WithEndpoint(options.Endpoint))
	}
	if options.HTTPClient != nil {
		clientOptions = append(clientOptions, option.WithHTTPClient(options.HTTPClient))
	}

	service, err := ytapi.NewService(context, clientOptions...)
	if err != nil {
		return nil, apperr.PermanentCatalog("new_service", err)
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if options.QPS > 0 {
		burst := int(options.QPS)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(options.QPS), burst)
	}

	policy := options.Policy
	if policy.RequestTimeout == 0 {
		policy = DefaultRetryPolicy
	}

	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &APIClient{
		service: service,
		limiter: limiter,
		policy:  policy,
		logger:  logger,
		metrics: options.Metrics,
	}, nil
}

// # Channel

func (client *APIClient) GetChannel(context context.Context, channelRef string) (*Channel, error) {
	var response *ytapi.ChannelListResponse

	err := client.call(context, "channels.list", func(attemptCtx stdContext) error {
		call := client.service.Channels.List([]string{"snippet", "statistics", "contentDetails"})
		if handle, ok := strings.CutPrefix(channelRef, "@"); ok {
			call = call.ForHandle(handle)
		} else {
			call = call.Id(channelRef)
		}

		var err error
		response, err = call.Context(attemptCtx).Do()
		return err
	})
	if err != nil {
		return nil, err
	}

	if len(response.Items) == 0 {
		return nil, apperr.PermanentCatalog("channels.list", errors.New("channel not found: "+channelRef))
	}

	item := response.Items[0]
	channel := &Channel{ID: item.Id}
	if item.Snippet != nil {
		channel.Title = item.Snippet.Title
		channel.Country = item.Snippet.Country
	}
	if item.Statistics != nil {
		channel.SubscriberCount = convert.ClampUint64(item.Statistics.SubscriberCount)
	}
	if item.ContentDetails != nil && item.ContentDetails.RelatedPlaylists != nil {
		channel.UploadsPlaylistID = item.ContentDetails.RelatedPlaylists.Uploads
	}

	return channel, nil
}

// # Videos

/*
ListChannelVideos lists the uploads of a channel with full metadata.

Description: Video ids are paged from the uploads playlist until max is
reached, then their snippet, statistics and contentDetails are fetched in
batches of 50. A batch that still fails after its retries is skipped; the
videos of the other batches are returned together with a [PartialError].

Parameters:
  - context: context.Context
  - uploadsPlaylistID: string (From [Channel.UploadsPlaylistID])
  - max: int (0 means unlimited)

Returns:
  - []VideoItem: Videos in upload order
  - error: Catalog errors, or *PartialError next to usable results
*/
func (client *APIClient) ListChannelVideos(context context.Context, uploadsPlaylistID string, max int) ([]VideoItem, error) {
	if uploadsPlaylistID == "" {
		return nil, nil
	}

	ids, listErr := client.playlistVideoIDs(context, uploadsPlaylistID, max)
	if listErr != nil && len(ids) == 0 {
		return nil, listErr
	}

	partial := &PartialError{Operation: "videos.list"}
	if listErr != nil {
		partial.Skipped = append(partial.Skipped, listErr)
	}

	order := make(map[string]int, len(ids))
	for i, id := range ids {
		order[id] = i
	}

	items := make([]VideoItem, 0, len(ids))
	for _, batch := range slice.Chunk(ids, constants.CatalogBatchSize) {
		videos, err := client.videos(context, batch, []string{"snippet", "statistics", "contentDetails"})
		if err != nil {
			if context.Err() != nil {
				return nil, context.Err()
			}
			client.logger.Warn("catalog_batch_skipped",
				slog.String("operation", "videos.list"),
				slog.Int("batch_size", len(batch)),
				slog.Any("error", err),
			)
			partial.Skipped = append(partial.Skipped, err)
			continue
		}
		for _, video := range videos {
			items = append(items, toVideoItem(video))
		}
	}

	sortByOrder(items, order)

	if len(partial.Skipped) > 0 {
		return items, partial
	}
	return items, nil
}

// GetContentDetails fetches durations and publication dates of up to 50 videos.
// Ids the platform no longer knows are absent from the result.
func (client *APIClient) GetContentDetails(context context.Context, videoIDs []string) ([]ContentDetails, error) {
	if len(videoIDs) == 0 {
		return nil, nil
	}
	if len(videoIDs) > constants.CatalogBatchSize {
		return nil, apperr.Input("at most 50 video ids per contentDetails call")
	}

	videos, err := client.videos(context, videoIDs, []string{"snippet", "contentDetails"})
	if err != nil {
		return nil, err
	}

	details := make([]ContentDetails, 0, len(videos))
	for _, video := range videos {
		item := ContentDetails{VideoID: video.Id}
		if video.ContentDetails != nil {
			item.Duration = video.ContentDetails.Duration
		}
		if video.Snippet != nil {
			item.PublishedAt = parseTime(video.Snippet.PublishedAt)
		}
		details = append(details, item)
	}
	return details, nil
}

// # Playlists

func (client *APIClient) ListPlaylists(context context.Context, channelRef string) ([]PlaylistItem, error) {
	channelID := channelRef
	if strings.HasPrefix(channelRef, "@") {
		channel, err := client.GetChannel(context, channelRef)
		if err != nil {
			return nil, err
		}
		channelID = channel.ID
	}

	var playlists []PlaylistItem
	pageToken := ""
	for {
		var response *ytapi.PlaylistListResponse
		err := client.call(context, "playlists.list", func(attemptCtx stdContext) error {
			var err error
			response, err = client.service.Playlists.List([]string{"snippet", "contentDetails"}).
				ChannelId(channelID).
				MaxResults(constants.CatalogPageSize).
				PageToken(pageToken).
				Context(attemptCtx).
				Do()
			return err
		})
		if err != nil {
			if len(playlists) == 0 {
				return nil, err
			}
			return playlists, &PartialError{Operation: "playlists.list", Skipped: []error{err}}
		}

		for _, item := range response.Items {
			playlist := PlaylistItem{PlaylistID: item.Id}
			if item.Snippet != nil {
				playlist.Title = item.Snippet.Title
				playlist.Description = item.Snippet.Description
			}
			if item.ContentDetails != nil {
				playlist.VideoCount = int(item.ContentDetails.ItemCount)
			}
			playlists = append(playlists, playlist)
		}

		if response.NextPageToken == "" {
			return playlists, nil
		}
		pageToken = response.NextPageToken
	}
}

func (client *APIClient) ListPlaylistItems(context context.Context, playlistID string) ([]string, error) {
	ids, err := client.playlistVideoIDs(context, playlistID, 0)
	if err != nil && len(ids) > 0 {
		return ids, &PartialError{Operation: "playlistItems.list", Skipped: []error{err}}
	}
	return ids, err
}

// # Internals

// stdContext keeps the call closures readable next to the context parameters.
type stdContext = context.Context

// call paces, retries and records one upstream operation.
func (client *APIClient) call(parent context.Context, operation string, fn func(stdContext) error) error {
	err := client.policy.do(parent, operation, func(attemptCtx context.Context) error {
		if err := client.limiter.Wait(attemptCtx); err != nil {
			return err
		}
		return fn(attemptCtx)
	})

	client.metrics.CatalogCall(operation, outcome(err))
	return err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case apperr.IsTransient(err):
		return "transient"
	default:
		return "permanent"
	}
}

// playlistVideoIDs pages through a playlist. On a failed page it returns the
// ids collected so far with the error.
func (client *APIClient) playlistVideoIDs(context context.Context, playlistID string, max int) ([]string, error) {
	var ids []string
	pageToken := ""

	for {
		var response *ytapi.PlaylistItemListResponse
		err := client.call(context, "playlistItems.list", func(attemptCtx stdContext) error {
			var err error
			response, err = client.service.PlaylistItems.List([]string{"contentDetails"}).
				PlaylistId(playlistID).
				MaxResults(constants.CatalogPageSize).
				PageToken(pageToken).
				Context(attemptCtx).
				Do()
			return err
		})
		if err != nil {
			return ids, err
		}

		for _, item := range response.Items {
			if item.ContentDetails == nil || item.ContentDetails.VideoId == "" {
				continue
			}
			ids = append(ids, item.ContentDetails.VideoId)
			if max > 0 && len(ids) >= max {
				return ids, nil
			}
		}

		if response.NextPageToken == "" {
			return ids, nil
		}
		pageToken = response.NextPageToken
	}
}

func (client *APIClient) videos(context context.Context, ids []string, parts []string) ([]*ytapi.Video, error) {
	var response *ytapi.VideoListResponse
	err := client.call(context, "videos.list", func(attemptCtx stdContext) error {
		var err error
		response, err = client.service.Videos.List(parts).
			Id(ids...).
			MaxResults(int64(len(ids))).
			Context(attemptCtx).
			Do()
		return err
	})
	if err != nil {
		return nil, err
	}
	return response.Items, nil
}

func toVideoItem(video *ytapi.Video) VideoItem {
	item := VideoItem{VideoID: video.Id}

	if video.Snippet != nil {
		item.Title = video.Snippet.Title
		item.Description = video.Snippet.Description
		item.PublishedAt = parseTime(video.Snippet.PublishedAt)
		item.ThumbnailURL = thumbnail(video.Snippet.Thumbnails)
	}
	if video.ContentDetails != nil {
		item.Duration = video.ContentDetails.Duration
	}
	if video.Statistics != nil {
		views := convert.ClampUint64(video.Statistics.ViewCount)
		item.ViewCount = &views
		item.LikeCount = convert.ClampUint64(video.Statistics.LikeCount)
		item.CommentCount = convert.ClampUint64(video.Statistics.CommentCount)
	}

	return item
}

// sortByOrder restores the upload order the ids were listed in.
func sortByOrder(items []VideoItem, order map[string]int) {
	sort.SliceStable(items, func(i, j int) bool {
		return order[items[i].VideoID] < order[items[j].VideoID]
	})
}

func thumbnail(details *ytapi.ThumbnailDetails) string {
	if details == nil {
		return ""
	}
	for _, candidate := range []*ytapi.Thumbnail{details.Medium, details.High, details.Default} {
		if candidate != nil && candidate.Url != "" {
			return candidate.Url
		}
	}
	return ""
}

func parseTime(value string) time.Time {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return parsed.UTC()
}
