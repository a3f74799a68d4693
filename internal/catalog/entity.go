// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package catalog holds the value types of the competitor catalog and the store
boundary that persists them.

Architecture:

  - Entities: Competitor, Video, Playlist, Membership, Pattern, MetricsSnapshot.
  - Provenance: [Source] is a tagged variant with a total order; it is turned
    into a string only when it crosses the store boundary.
  - State: [State] is the in-memory working set of one competitor that every
    engine phase reads and patches before a single transactional write.

Only the store implementations know about rows and columns.
*/
package catalog

import (
	"strings"
	"time"

	"github.com/taibuivan/channelscope/pkg/pointer"
)

// # Categories

// Category is the HHH content type of a video or playlist.
type Category string

const (
	CategoryNone Category = ""
	CategoryHero Category = "HERO"
	CategoryHub  Category = "HUB"
	CategoryHelp Category = "HELP"
)

// Categories lists the assignable categories in classifier probe order.
var Categories = []Category{CategoryHelp, CategoryHero, CategoryHub}

// ParseCategory reads a stored category. Legacy values such as "uncategorized"
// and lowercase spellings are accepted.
func ParseCategory(raw string) Category {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "HERO":
		return CategoryHero
	case "HUB":
		return CategoryHub
	case "HELP":
		return CategoryHelp
	default:
		return CategoryNone
	}
}

// IsSet reports whether c is one of HERO, HUB or HELP.
func (c Category) IsSet() bool {
	return c == CategoryHero || c == CategoryHub || c == CategoryHelp
}

// # Countries

// Country names as stored on competitors.
const (
	CountryFrance        = "France"
	CountryGermany       = "Germany"
	CountryNetherlands   = "Netherlands"
	CountryUnitedKingdom = "United Kingdom"
	CountryInternational = "International"
	CountryOther         = "other"
)

// # Entities

// Competitor is a tracked brand and its upstream channel.
//
// A competitor whose Country is [CountryInternational] is local nowhere; the
// countries it operates in are listed in Markets.
type Competitor struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	ChannelID       string    `json:"channel_id"`
	Country         string    `json:"country"`
	SubscriberCount int64     `json:"subscriber_count"`
	Markets         []string  `json:"markets,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// IsInternational reports whether the competitor is an international actor.
func (competitor *Competitor) IsInternational() bool {
	return competitor.Country == CountryInternational
}

// OperatesIn reports whether an international competitor is present in country.
func (competitor *Competitor) OperatesIn(country string) bool {
	for _, market := range competitor.Markets {
		if market == country {
			return true
		}
	}
	return false
}

// Video is a single upstream video of a competitor.
//
// ViewCount is nil when the upstream value is unknown. A zero PublishedAt
// means the date is unknown.
type Video struct {
	ID                 string     `json:"id"`
	CompetitorID       string     `json:"competitor_id"`
	ExternalID         string     `json:"external_id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	DurationSeconds    int        `json:"duration_seconds"`
	DurationText       string     `json:"duration_text"`
	PublishedAt        time.Time  `json:"published_at"`
	ViewCount          *int64     `json:"view_count"`
	LikeCount          int64      `json:"like_count"`
	CommentCount       int64      `json:"comment_count"`
	ThumbnailURL       string     `json:"thumbnail_url,omitempty"`
	Category           Category   `json:"category"`
	Source             Source     `json:"classification_source"`
	IsHumanValidated   bool       `json:"is_human_validated"`
	ClassificationDate *time.Time `json:"classification_date,omitempty"`
	IsShort            bool       `json:"is_short"`
}

// IsProtected reports whether the label of v is read-only for automatic steps.
func (v *Video) IsProtected() bool {
	return v.IsHumanValidated || v.Source.Kind == SourceHuman
}

// HasDuration reports whether the stored duration is usable.
func (v *Video) HasDuration() bool {
	return v.DurationSeconds > 0
}

// Views returns the view count, or zero when unknown.
func (v *Video) Views() int64 {
	return pointer.Val(v.ViewCount)
}

// Text returns the concatenation matched by lexical patterns.
func (v *Video) Text() string {
	return v.Title + " " + v.Description
}

// SetDuration stores seconds and keeps IsShort and DurationText consistent.
func (v *Video) SetDuration(seconds int, text string) {
	v.DurationSeconds = seconds
	v.DurationText = text
	v.IsShort = IsShortDuration(seconds)
}

// Clone returns a deep copy of v.
func (v *Video) Clone() *Video {
	clone := *v
	clone.ViewCount = pointer.Copy(v.ViewCount)
	clone.ClassificationDate = pointer.Copy(v.ClassificationDate)
	return &clone
}

// IsShortDuration reports whether a duration qualifies as a Short.
func IsShortDuration(seconds int) bool {
	return seconds > 0 && seconds <= 60
}

// Playlist is an upstream playlist of a competitor.
type Playlist struct {
	ID               string   `json:"id"`
	CompetitorID     string   `json:"competitor_id"`
	ExternalID       string   `json:"external_id"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	VideoCount       int      `json:"video_count"`
	Category         Category `json:"category"`
	Source           Source   `json:"classification_source"`
	IsHumanValidated bool     `json:"is_human_validated"`
}

// IsProtected reports whether the playlist label is read-only for automatic steps.
func (p *Playlist) IsProtected() bool {
	return p.IsHumanValidated || p.Source.Kind == SourceHuman
}

// Clone returns a copy of p.
func (p *Playlist) Clone() *Playlist {
	clone := *p
	return &clone
}

// Membership links a playlist to one of its videos.
type Membership struct {
	PlaylistID string `json:"playlist_id"`
	VideoID    string `json:"video_id"`
}

// Pattern is a user-added classification rule.
type Pattern struct {
	Language string   `json:"language"`
	Category Category `json:"category"`
	Pattern  string   `json:"pattern"`
}
