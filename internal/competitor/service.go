// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package competitor manages the tracked channels of the catalog.

# Core Responsibility

  - Registry: Create, update, list and delete [catalog.Competitor] rows.
  - Markets: International competitors declare the countries they operate in.
  - Consistency: Writes take the run lock of the competitor, so an engine
    run and an edit never interleave.

Deleting a competitor cascades to its videos, playlists and snapshot.
*/
package competitor

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/taibuivan/channelscope/internal/aggregate"
	"github.com/taibuivan/channelscope/internal/catalog"
	"github.com/taibuivan/channelscope/internal/platform/apperr"
	"github.com/taibuivan/channelscope/internal/platform/validate"
	"github.com/taibuivan/channelscope/pkg/pagination"
	"github.com/taibuivan/channelscope/pkg/uuid"
)

// Field identifiers.
const (
	FieldName      = "name"
	FieldChannelID = "channel_id"
	FieldCountry   = "country"
	FieldMarkets   = "markets"
)

// Locker serializes writes with engine runs.
type Locker interface {
	Acquire(context context.Context, runID string, competitorIDs []string) error
	Release(context context.Context, runID string, competitorIDs []string) error
}

// Invalidator drops cached metrics after a registry change.
type Invalidator interface {
	Invalidate(context context.Context) (int, error)
}

// Input is the writable part of a competitor.
type Input struct {
	Name      string   `json:"name"`
	ChannelID string   `json:"channel_id"`
	Country   string   `json:"country"`
	Markets   []string `json:"markets"`
}

// Filter narrows a listing.
type Filter struct {
	Query   string
	Country string
}

// # Service Layer

// Service applies registry rules on top of the catalog store.
type Service struct {
	store  catalog.Store
	locker Locker
	cache  Invalidator
	logger *slog.Logger
}

// NewService constructs a competitor [Service]. cache may be nil.
func NewService(store catalog.Store, locker Locker, cache Invalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, locker: locker, cache: cache, logger: logger}
}

/*
List returns one page of competitors sorted by name.

Parameters:
  - context: context.Context
  - filter: Filter (Name substring and country, both optional)
  - page: pagination.Params

Returns:
  - []*catalog.Competitor: The page
  - int: Total matching count
  - error: InputError for an unknown country, or a store failure
*/
func (service *Service) List(context context.Context, filter Filter, page pagination.Params) ([]*catalog.Competitor, int, error) {
	country := ""
	if filter.Country != "" {
		resolved, ok := normalizeCountry(filter.Country)
		if !ok {
			return nil, 0, apperr.Input("Unknown country " + filter.Country)
		}
		country = resolved
	}

	all, err := service.store.ListCompetitors(context)
	if err != nil {
		return nil, 0, err
	}

	query := strings.ToLower(strings.TrimSpace(filter.Query))
	matched := make([]*catalog.Competitor, 0, len(all))
	for _, competitor := range all {
		if country != "" && competitor.Country != country {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(competitor.Name), query) {
			continue
		}
		matched = append(matched, competitor)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Name != matched[j].Name {
			return matched[i].Name < matched[j].Name
		}
		return matched[i].ID < matched[j].ID
	})

	start, end := page.Bounds(len(matched))
	return matched[start:end], len(matched), nil
}

// Get returns one competitor.
func (service *Service) Get(context context.Context, id string) (*catalog.Competitor, error) {
	return service.store.GetCompetitor(context, id)
}

/*
Create registers a new competitor.

Parameters:
  - context: context.Context
  - input: Input

Returns:
  - *catalog.Competitor: The stored competitor with its new id
  - error: Validation or persistence failures
*/
func (service *Service) Create(context context.Context, input Input) (*catalog.Competitor, error) {
	competitor, err := build(input)
	if err != nil {
		return nil, err
	}
	competitor.ID = uuid.New()

	if err := service.store.UpsertCompetitor(context, competitor); err != nil {
		return nil, err
	}
	service.invalidate(context)

	service.logger.Info("competitor_created",
		slog.String("competitor_id", competitor.ID),
		slog.String("country", competitor.Country),
	)
	return service.store.GetCompetitor(context, competitor.ID)
}

/*
Update replaces the writable fields of a competitor.

Description: The subscriber count is catalog data and is kept. The update
is refused with CONFLICT while a run holds the competitor.

Parameters:
  - context: context.Context
  - id: string
  - input: Input

Returns:
  - *catalog.Competitor: The updated competitor
  - error: NotFound, validation, Conflict or persistence failures
*/
func (service *Service) Update(context context.Context, id string, input Input) (*catalog.Competitor, error) {
	existing, err := service.store.GetCompetitor(context, id)
	if err != nil {
		return nil, err
	}
	competitor, err := build(input)
	if err != nil {
		return nil, err
	}
	competitor.ID = existing.ID
	competitor.SubscriberCount = existing.SubscriberCount
	competitor.CreatedAt = existing.CreatedAt

	err = service.locked(context, id, func() error {
		return service.store.UpsertCompetitor(context, competitor)
	})
	if err != nil {
		return nil, err
	}
	service.invalidate(context)

	service.logger.Info("competitor_updated", slog.String("competitor_id", id))
	return service.store.GetCompetitor(context, id)
}

// Delete removes a competitor and everything it owns.
func (service *Service) Delete(context context.Context, id string) error {
	err := service.locked(context, id, func() error {
		return service.store.DeleteCompetitor(context, id)
	})
	if err != nil {
		return err
	}
	service.invalidate(context)

	service.logger.Info("competitor_deleted", slog.String("competitor_id", id))
	return nil
}

// # Internals

// locked runs write under the run lock of the competitor.
func (service *Service) locked(context context.Context, id string, write func() error) error {
	if service.locker == nil {
		return write()
	}

	owner := "edit-" + uuid.New()
	if err := service.locker.Acquire(context, owner, []string{id}); err != nil {
		return err
	}
	defer func() {
		if err := service.locker.Release(context, owner, []string{id}); err != nil {
			service.logger.Warn("competitor_lock_release_failed", slog.String("competitor_id", id), slog.Any("error", err))
		}
	}()
	return write()
}

func (service *Service) invalidate(context context.Context) {
	if service.cache == nil {
		return
	}
	if _, err := service.cache.Invalidate(context); err != nil {
		service.logger.Warn("metrics_cache_invalidate_failed", slog.Any("error", err))
	}
}

// build validates input and returns the normalized competitor.
func build(input Input) (*catalog.Competitor, error) {
	name := strings.TrimSpace(input.Name)
	channelID := strings.TrimSpace(input.ChannelID)
	country, countryOK := normalizeCountry(input.Country)

	validator := &validate.Validator{}
	validator.
		Required(FieldName, name).
		MaxLen(FieldName, name, 200).
		Required(FieldChannelID, channelID).
		MaxLen(FieldChannelID, channelID, 100).
		Custom(FieldCountry, !countryOK, "Must be a tracked country, International or other")

	markets := make([]string, 0, len(input.Markets))
	seen := make(map[string]struct{}, len(input.Markets))
	for _, raw := range input.Markets {
		market, ok := aggregate.ParseCountry(raw)
		if !ok {
			validator.Custom(FieldMarkets, true, "Unknown market "+raw)
			continue
		}
		if _, dup := seen[market]; dup {
			continue
		}
		seen[market] = struct{}{}
		markets = append(markets, market)
	}
	validator.Custom(FieldMarkets, len(markets) > 0 && country != catalog.CountryInternational,
		"Only international competitors declare markets")

	if err := validator.Err(); err != nil {
		return nil, err
	}

	sort.Strings(markets)
	return &catalog.Competitor{Name: name, ChannelID: channelID, Country: country, Markets: markets}, nil
}

// normalizeCountry accepts a tracked country or one of the two catch-all values.
func normalizeCountry(raw string) (string, bool) {
	if country, ok := aggregate.ParseCountry(raw); ok {
		return country, true
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case strings.ToLower(catalog.CountryInternational):
		return catalog.CountryInternational, true
	case catalog.CountryOther:
		return catalog.CountryOther, true
	}
	return "", false
}
