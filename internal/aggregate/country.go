// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package aggregate

import (
	"math"
	"sort"
	"strings"

	"github.com/taibuivan/channelscope/internal/catalog"
	"github.com/taibuivan/channelscope/internal/platform/constants"
	"github.com/taibuivan/channelscope/pkg/convert"
)

// Countries lists the countries with a market scope.
var Countries = []string{
	catalog.CountryFrance,
	catalog.CountryGermany,
	catalog.CountryNetherlands,
	catalog.CountryUnitedKingdom,
}

var countryAliases = map[string]string{
	"fr": catalog.CountryFrance,
	"de": catalog.CountryGermany,
	"nl": catalog.CountryNetherlands,
	"uk": catalog.CountryUnitedKingdom,
	"gb": catalog.CountryUnitedKingdom,
}

// ParseCountry resolves a country name or two-letter code. It returns false
// for anything outside [Countries].
func ParseCountry(raw string) (string, bool) {
	value := strings.TrimSpace(raw)
	if alias, ok := countryAliases[strings.ToLower(value)]; ok {
		return alias, true
	}
	for _, country := range Countries {
		if strings.EqualFold(country, value) {
			return country, true
		}
	}
	return "", false
}

// Metric names used as gap keys.
const (
	MetricAvgDuration   = "avg_duration_seconds"
	MetricVideosPerWeek = "videos_per_week"
	MetricShortsPct     = "shorts_pct"
	MetricOrganicPct    = "organic_pct"
	MetricHeroPct       = "hero_pct"
	MetricHubPct        = "hub_pct"
	MetricHelpPct       = "help_pct"
)

// ScopeMetrics aggregates a set of competitors.
type ScopeMetrics struct {
	Competitors []string `json:"competitors"`
	Videos      int      `json:"videos"`

	AvgDurationSeconds float64 `json:"avg_duration_seconds"`
	// VideosPerWeek is total dated videos over the video-weighted mean active span.
	VideosPerWeek *float64             `json:"videos_per_week"`
	ShortsPct     float64              `json:"shorts_pct"`
	OrganicPct    float64              `json:"organic_pct"`
	HHH           catalog.Distribution `json:"hhh"`
}

// CountryMetrics reports the local and national-market scopes of a country.
type CountryMetrics struct {
	Country  string       `json:"country"`
	Local    ScopeMetrics `json:"local"`
	National ScopeMetrics `json:"national_market"`

	// Gaps is round((local - national) / national * 100) per metric; nil when
	// either side is unknown or the national value is zero.
	Gaps map[string]*int `json:"gaps"`
}

// EuropeMetrics is the union of every country scope.
type EuropeMetrics struct {
	Countries []string     `json:"countries"`
	Scope     ScopeMetrics `json:"scope"`
}

/*
ComputeCountry builds both scopes of a country.

Description: The local scope holds competitors headquartered in the country.
The national-market scope adds international competitors whose markets
include it. Competitors without a snapshot are ignored.

Parameters:
  - country: string
  - competitors: []*catalog.Competitor
  - snapshots: map[string]*catalog.MetricsSnapshot (Keyed by competitor id)

Returns:
  - CountryMetrics
*/
func ComputeCountry(country string, competitors []*catalog.Competitor, snapshots map[string]*catalog.MetricsSnapshot) CountryMetrics {
	var local, national []*catalog.MetricsSnapshot
	for _, competitor := range competitors {
		snapshot := snapshots[competitor.ID]
		if snapshot == nil {
			continue
		}
		switch {
		case competitor.Country == country:
			local = append(local, snapshot)
			national = append(national, snapshot)
		case competitor.IsInternational() && competitor.OperatesIn(country):
			national = append(national, snapshot)
		}
	}

	metrics := CountryMetrics{
		Country:  country,
		Local:    ComputeScope(local),
		National: ComputeScope(national),
	}
	metrics.Gaps = gaps(metrics.Local, metrics.National)
	return metrics
}

// ComputeEurope unions the national-market scopes of every country.
func ComputeEurope(competitors []*catalog.Competitor, snapshots map[string]*catalog.MetricsSnapshot) EuropeMetrics {
	seen := make(map[string]struct{})
	var members []*catalog.MetricsSnapshot

	for _, country := range Countries {
		for _, competitor := range competitors {
			inScope := competitor.Country == country || (competitor.IsInternational() && competitor.OperatesIn(country))
			if !inScope {
				continue
			}
			if _, dup := seen[competitor.ID]; dup {
				continue
			}
			if snapshot := snapshots[competitor.ID]; snapshot != nil {
				seen[competitor.ID] = struct{}{}
				members = append(members, snapshot)
			}
		}
	}

	return EuropeMetrics{Countries: Countries, Scope: ComputeScope(members)}
}

/*
ComputeScope aggregates competitor snapshots.

Description: Sums are taken over raw counts, never as means of ratios.
Frequency is the total of dated videos over the mean active span weighted by
dated video count, considering only competitors with a known span.

Parameters:
  - snapshots: []*catalog.MetricsSnapshot

Returns:
  - ScopeMetrics
*/
func ComputeScope(snapshots []*catalog.MetricsSnapshot) ScopeMetrics {
	scope := ScopeMetrics{Competitors: make([]string, 0, len(snapshots))}

	var durationTotal float64
	var durationCount, shorts, shortsKnown, organic, organicKnown int
	var hero, hub, help int
	var dated int
	var weightedWeeks float64

	for _, snapshot := range snapshots {
		scope.Competitors = append(scope.Competitors, snapshot.CompetitorID)
		scope.Videos += snapshot.Totals.Videos

		durationTotal += snapshot.Duration.Mean * float64(snapshot.Duration.Count)
		durationCount += snapshot.Duration.Count

		shorts += snapshot.Shorts.Shorts
		shortsKnown += snapshot.Shorts.Known
		organic += snapshot.Organic.Organic
		organicKnown += snapshot.Organic.Known

		hero += snapshot.HHH.Hero
		hub += snapshot.HHH.Hub
		help += snapshot.HHH.Help

		if weeks := snapshot.Frequency.ActiveWeeks; weeks != nil && snapshot.Frequency.DatedVideos > 0 {
			dated += snapshot.Frequency.DatedVideos
			weightedWeeks += float64(snapshot.Frequency.DatedVideos) * math.Max(*weeks, constants.MinWeeks)
		}
	}
	sort.Strings(scope.Competitors)

	if durationCount > 0 {
		scope.AvgDurationSeconds = convert.Round(durationTotal/float64(durationCount), 2)
	}
	scope.ShortsPct = Percent(shorts, shortsKnown)
	scope.OrganicPct = Percent(organic, organicKnown)
	scope.HHH = Distribute(hero, hub, help)

	if dated > 0 {
		meanWeeks := weightedWeeks / float64(dated)
		perWeek := convert.Round(float64(dated)/meanWeeks, 2)
		scope.VideosPerWeek = &perWeek
	}

	return scope
}

func gaps(local, national ScopeMetrics) map[string]*int {
	if len(local.Competitors) == 0 {
		return map[string]*int{}
	}

	pairs := map[string][2]*float64{
		MetricAvgDuration:   {&local.AvgDurationSeconds, &national.AvgDurationSeconds},
		MetricVideosPerWeek: {local.VideosPerWeek, national.VideosPerWeek},
		MetricShortsPct:     {&local.ShortsPct, &national.ShortsPct},
		MetricOrganicPct:    {&local.OrganicPct, &national.OrganicPct},
		MetricHeroPct:       {&local.HHH.HeroPct, &national.HHH.HeroPct},
		MetricHubPct:        {&local.HHH.HubPct, &national.HHH.HubPct},
		MetricHelpPct:       {&local.HHH.HelpPct, &national.HHH.HelpPct},
	}

	result := make(map[string]*int, len(pairs))
	for name, pair := range pairs {
		result[name] = Gap(pair[0], pair[1])
	}
	return result
}

// Gap returns the signed percentage gap of local against national.
func Gap(local, national *float64) *int {
	if local == nil || national == nil || *national == 0 {
		return nil
	}
	gap := int(math.Round((*local - *national) / *national * 100))
	return &gap
}
