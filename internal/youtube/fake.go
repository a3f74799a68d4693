// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package youtube

import (
	"context"
	"strings"
	"sync"

	"github.com/taibuivan/channelscope/internal/platform/apperr"
	"github.com/taibuivan/channelscope/internal/platform/constants"
)

// FakeClient is a scripted [Client].
//
// Channels and Playlists are keyed by channel reference, Videos by uploads
// playlist id, PlaylistItems by playlist id and Details by video id. Failures are
// queued per key ("Operation" or "Operation:arg") and consumed one call at a
// time, so a test can make the first call fail and the retry succeed.
type FakeClient struct {
	mu sync.Mutex

	Channels      map[string]*Channel
	Videos        map[string][]VideoItem
	Playlists     map[string][]PlaylistItem
	PlaylistItems map[string][]string
	Details       map[string]ContentDetails

	failures map[string][]error
	calls    []string
}

var _ Client = (*FakeClient)(nil)

// NewFakeClient returns an empty fake.
func NewFakeClient() *FakeClient {
	return &FakeClient{
		Channels:      make(map[string]*Channel),
		Videos:        make(map[string][]VideoItem),
		Playlists:     make(map[string][]PlaylistItem),
		PlaylistItems: make(map[string][]string),
		Details:       make(map[string]ContentDetails),
		failures:      make(map[string][]error),
	}
}

// Fail queues errors for the next calls matching key.
func (fake *FakeClient) Fail(key string, errs ...error) {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	fake.failures[key] = append(fake.failures[key], errs...)
}

// Calls returns the recorded calls as "Operation:arg".
func (fake *FakeClient) Calls() []string {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	return append([]string(nil), fake.calls...)
}

// CallCount counts recorded calls starting with prefix.
func (fake *FakeClient) CallCount(prefix string) int {
	count := 0
	for _, call := range fake.Calls() {
		if strings.HasPrefix(call, prefix) {
			count++
		}
	}
	return count
}

func (fake *FakeClient) GetChannel(context context.Context, channelRef string) (*Channel, error) {
	if err := fake.enter(context, "GetChannel", channelRef); err != nil {
		return nil, err
	}
	fake.mu.Lock()
	defer fake.mu.Unlock()

	channel, ok := fake.Channels[channelRef]
	if !ok {
		return nil, apperr.PermanentCatalog("channels.list", apperr.NotFound("Channel "+channelRef))
	}
	clone := *channel
	return &clone, nil
}

func (fake *FakeClient) ListChannelVideos(context context.Context, uploadsPlaylistID string, max int) ([]VideoItem, error) {
	if err := fake.enter(context, "ListChannelVideos", uploadsPlaylistID); err != nil {
		return nil, err
	}
	fake.mu.Lock()
	defer fake.mu.Unlock()

	videos := fake.Videos[uploadsPlaylistID]
	if max > 0 && len(videos) > max {
		videos = videos[:max]
	}
	return append([]VideoItem(nil), videos...), nil
}

func (fake *FakeClient) ListPlaylists(context context.Context, channelRef string) ([]PlaylistItem, error) {
	if err := fake.enter(context, "ListPlaylists", channelRef); err != nil {
		return nil, err
	}
	fake.mu.Lock()
	defer fake.mu.Unlock()
	return append([]PlaylistItem(nil), fake.Playlists[channelRef]...), nil
}

func (fake *FakeClient) ListPlaylistItems(context context.Context, playlistID string) ([]string, error) {
	if err := fake.enter(context, "ListPlaylistItems", playlistID); err != nil {
		return nil, err
	}
	fake.mu.Lock()
	defer fake.mu.Unlock()
	return append([]string(nil), fake.PlaylistItems[playlistID]...), nil
}

func (fake *FakeClient) GetContentDetails(context context.Context, videoIDs []string) ([]ContentDetails, error) {
	if len(videoIDs) > constants.CatalogBatchSize {
		return nil, apperr.Input("at most 50 video ids per contentDetails call")
	}
	if err := fake.enter(context, "GetContentDetails", strings.Join(videoIDs, ",")); err != nil {
		return nil, err
	}
	fake.mu.Lock()
	defer fake.mu.Unlock()

	var details []ContentDetails
	for _, id := range videoIDs {
		if item, ok := fake.Details[id]; ok {
			details = append(details, item)
		}
	}
	return details, nil
}

// enter records the call and pops a queued failure, if any.
func (fake *FakeClient) enter(context context.Context, operation, arg string) error {
	if err := context.Err(); err != nil {
		return err
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()

	fake.calls = append(fake.calls, operation+":"+arg)
	for _, key := range []string{operation + ":" + arg, operation} {
		if queue := fake.failures[key]; len(queue) > 0 {
			fake.failures[key] = queue[1:]
			return queue[0]
		}
	}
	return nil
}
