// Package stats contains statistics calculations and reporting.
package stats

import (
	"sort"

	"github.com/verte-zerg/retrostats/internal/model"
)

// Aggregate groups sessions by game and system and computes one Stats record per
// group, in order of first occurrence.
func Aggregate(sessions []model.Session) []model.Stats {
	if len(sessions) == 0 {
		return nil
	}
	order := make([]model.GameKey, 0)
	durations := map[model.GameKey][]int64{}
	for _, s := range sessions {
		key := s.Key()
		if _, ok := durations[key]; !ok {
			order = append(order, key)
		}
		durations[key] = append(durations[key], s.Duration())
	}

	out := make([]model.Stats, 0, len(order))
	for _, key := range order {
		out = append(out, statsFor(key, durations[key]))
	}
	return out
}

func statsFor(key model.GameKey, durations []int64) model.Stats {
	var total int64
	for _, d := range durations {
		total += d
	}
	count := len(durations)
	return model.Stats{
		Game:               key.Game,
		System:             key.System,
		TimesPlayed:        count,
		TotalTimePlayed:    total,
		AverageSessionTime: float64(total) / float64(count),
		MedianSessionTime:  Median(durations),
	}
}

// Median returns the median of values, averaging the two middle values for an
// even count. It returns 0 for an empty slice and does not modify values.
func Median(values []int64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]int64, n)
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	mid := n / 2
	if n%2 == 1 {
		return float64(sorted[mid])
	}
	return (float64(sorted[mid-1]) + float64(sorted[mid])) / 2
}

// Systems returns the distinct systems across stats with their summed session
// counts, ordered by name.
func Systems(all []model.Stats) []model.SystemCount {
	counts := map[string]int{}
	for _, s := range all {
		counts[s.System] += s.TimesPlayed
	}
	out := make([]model.SystemCount, 0, len(counts))
	for system, n := range counts {
		out = append(out, model.SystemCount{System: system, Sessions: n})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].System < out[j].System
	})
	return out
}
