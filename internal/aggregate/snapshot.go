// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package aggregate computes the metric roll-ups of competitors, countries and
Europe.

Every figure is recomputed from stored rows: a competitor snapshot from its
videos, a country or Europe scope from competitor snapshots. Percentages are
rounded to one decimal, rates and means to two.

The service layer serves them over HTTP through a cache-aside store that the
engine invalidates at the end of each run.
*/
package aggregate

import (
	"math"
	"sort"
	"time"

	"github.com/taibuivan/channelscope/internal/catalog"
	"github.com/taibuivan/channelscope/internal/platform/constants"
	"github.com/taibuivan/channelscope/pkg/convert"
	"github.com/taibuivan/channelscope/pkg/slice"
)

// Params are the run options the snapshot depends on.
type Params struct {
	PaidThreshold int64
	FrequencyCap  float64
}

/*
ComputeSnapshot builds the metrics snapshot of one competitor.

Parameters:
  - competitor: *catalog.Competitor
  - videos: []*catalog.Video
  - params: Params
  - now: time.Time (Stamped as ComputedAt)

Returns:
  - *catalog.MetricsSnapshot
*/
func ComputeSnapshot(competitor *catalog.Competitor, videos []*catalog.Video, params Params, now time.Time) *catalog.MetricsSnapshot {
	snapshot := &catalog.MetricsSnapshot{
		CompetitorID:    competitor.ID,
		CompetitorName:  competitor.Name,
		Country:         competitor.Country,
		SubscriberCount: competitor.SubscriberCount,
		ComputedAt:      now.UTC(),
		PaidThreshold:   params.PaidThreshold,
	}

	snapshot.Totals = totals(videos)
	snapshot.Means = means(snapshot.Totals)
	snapshot.Engagement = engagement(snapshot.Totals)
	snapshot.Duration = durationStats(videos)
	snapshot.HHH = distribution(videos)
	snapshot.Organic = organicSplit(videos, params.PaidThreshold)
	snapshot.Shorts = shortsSplit(videos)
	snapshot.Frequency = frequency(videos, params.FrequencyCap)
	snapshot.Matrix = performanceMatrix(videos, params.PaidThreshold)

	return snapshot
}

func totals(videos []*catalog.Video) catalog.Totals {
	result := catalog.Totals{Videos: len(videos)}
	for _, video := range videos {
		result.Views += video.Views()
		result.Likes += video.LikeCount
		result.Comments += video.CommentCount
	}
	return result
}

func means(totals catalog.Totals) catalog.Means {
	if totals.Videos == 0 {
		return catalog.Means{}
	}
	count := float64(totals.Videos)
	return catalog.Means{
		Views:    convert.Round(float64(totals.Views)/count, 2),
		Likes:    convert.Round(float64(totals.Likes)/count, 2),
		Comments: convert.Round(float64(totals.Comments)/count, 2),
	}
}

// engagement is (likes + comments) / views over totals, as a percentage.
func engagement(totals catalog.Totals) float64 {
	if totals.Views <= 0 {
		return 0
	}
	return convert.Round(float64(totals.Likes+totals.Comments)/float64(totals.Views)*100, 2)
}

func durationStats(videos []*catalog.Video) catalog.DurationStats {
	var stats catalog.DurationStats
	total := 0
	for _, video := range videos {
		if !video.HasDuration() {
			continue
		}
		if stats.Count == 0 || video.DurationSeconds < stats.Min {
			stats.Min = video.DurationSeconds
		}
		if video.DurationSeconds > stats.Max {
			stats.Max = video.DurationSeconds
		}
		total += video.DurationSeconds
		stats.Count++
	}
	if stats.Count > 0 {
		stats.Mean = convert.Round(float64(total)/float64(stats.Count), 2)
	}
	return stats
}

// Distribute fills the percentages of a distribution from its counts.
func Distribute(hero, hub, help int) catalog.Distribution {
	result := catalog.Distribution{Hero: hero, Hub: hub, Help: help, Classified: hero + hub + help}
	if result.Classified > 0 {
		result.HeroPct = Percent(hero, result.Classified)
		result.HubPct = Percent(hub, result.Classified)
		result.HelpPct = Percent(help, result.Classified)
	}
	return result
}

func distribution(videos []*catalog.Video) catalog.Distribution {
	return Distribute(
		countCategory(videos, catalog.CategoryHero),
		countCategory(videos, catalog.CategoryHub),
		countCategory(videos, catalog.CategoryHelp),
	)
}

func countCategory(videos []*catalog.Video, category catalog.Category) int {
	return slice.Count(videos, func(video *catalog.Video) bool { return video.Category == category })
}

func organicSplit(videos []*catalog.Video, threshold int64) catalog.OrganicSplit {
	var split catalog.OrganicSplit
	for _, video := range videos {
		if video.ViewCount == nil {
			continue
		}
		split.Known++
		if *video.ViewCount < threshold {
			split.Organic++
		} else {
			split.Paid++
		}
	}
	split.OrganicPct = Percent(split.Organic, split.Known)
	split.PaidPct = Percent(split.Paid, split.Known)
	return split
}

func shortsSplit(videos []*catalog.Video) catalog.ShortsSplit {
	var split catalog.ShortsSplit
	for _, video := range videos {
		if !video.HasDuration() {
			continue
		}
		split.Known++
		if video.IsShort {
			split.Shorts++
		} else {
			split.Regular++
		}
	}
	split.ShortsPct = Percent(split.Shorts, split.Known)
	split.RegularPct = Percent(split.Regular, split.Known)
	return split
}

func frequency(videos []*catalog.Video, frequencyCap float64) catalog.Frequency {
	cadence := MeasureCadence(videos)
	result := catalog.Frequency{
		DatedVideos:       cadence.Dated,
		MostActiveWeekday: mostActiveWeekday(videos),
	}
	if !cadence.Known {
		return result
	}

	weeks := cadence.Weeks
	raw := convert.Round(cadence.PerWeek, 2)
	shorts := float64(cadence.Shorts) / math.Max(weeks, constants.MinWeeks)
	reported := raw

	if cadence.IsOutlier() {
		result.Outlier = true
		reported = frequencyCap
		shorts = frequencyCap * float64(cadence.Shorts) / float64(cadence.Dated)
	}

	shorts = convert.Round(shorts, 2)
	result.ActiveWeeks = &weeks
	result.RawVideosPerWeek = &raw
	result.VideosPerWeek = &reported
	result.ShortsPerWeek = &shorts
	result.ByCategory = categoryCadence(videos, cadence, frequencyCap)
	return result
}

// categoryCadence spreads the dated videos of each category over the active
// span. Under the outlier cap each category keeps its share of the capped rate.
func categoryCadence(videos []*catalog.Video, cadence Cadence, frequencyCap float64) *catalog.CategoryCadence {
	dated := slice.Filter(videos, func(video *catalog.Video) bool { return !video.PublishedAt.IsZero() })

	rate := func(category catalog.Category) float64 {
		count := float64(countCategory(dated, category))
		if cadence.IsOutlier() {
			return convert.Round(frequencyCap*count/float64(cadence.Dated), 1)
		}
		return convert.Round(count/math.Max(cadence.Weeks, constants.MinWeeks), 1)
	}

	return &catalog.CategoryCadence{
		Hero: rate(catalog.CategoryHero),
		Hub:  rate(catalog.CategoryHub),
		Help: rate(catalog.CategoryHelp),
	}
}

// mostActiveWeekday returns the weekday with most publications. Ties go to
// the earliest day of the week, Monday first.
func mostActiveWeekday(videos []*catalog.Video) string {
	var counts [7]int
	dated := 0
	for _, video := range videos {
		if video.PublishedAt.IsZero() {
			continue
		}
		counts[(int(video.PublishedAt.UTC().Weekday())+6)%7]++
		dated++
	}
	if dated == 0 {
		return ""
	}

	best := 0
	for day := 1; day < 7; day++ {
		if counts[day] > counts[best] {
			best = day
		}
	}
	return time.Weekday((best + 1) % 7).String()
}

func performanceMatrix(videos []*catalog.Video, threshold int64) catalog.PerformanceTable {
	var table catalog.PerformanceTable
	for _, category := range catalog.Categories {
		counted := slice.Filter(videos, func(video *catalog.Video) bool {
			return video.Category == category && video.ViewCount != nil
		})
		views := slice.Map(counted, func(video *catalog.Video) int64 { return *video.ViewCount })

		var organic, paid []int64
		for _, count := range views {
			if count < threshold {
				organic = append(organic, count)
			} else {
				paid = append(paid, count)
			}
		}

		cell := table.Cell(category)
		cell.OrganicCount = len(organic)
		cell.PaidCount = len(paid)
		cell.OrganicMedianViews = median(organic)
		cell.PaidMedianViews = median(paid)
	}
	return table
}

func median(values []int64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]int64(nil), values...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	middle := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return float64(sorted[middle])
	}
	return (float64(sorted[middle-1]) + float64(sorted[middle])) / 2
}

// Percent returns part/whole as a percentage rounded to one decimal, or zero.
func Percent(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return convert.Round(float64(part)/float64(whole)*100, 1)
}
