// Package usage folds scanned log events into time-windowed cost and token
// aggregates: install-wide totals, per-workspace project costs, and the
// daily/hourly heatmap series.
package usage

import (
	"time"

	"github.com/claudewatch/claudewatch/internal/logscan"
	"github.com/claudewatch/claudewatch/internal/pricing"
)

// Totals is a single pass over every log event, bucketed into the rolling
// 5h and 7d windows plus the current local calendar day. An event may land
// in several windows at once. Token counters are kept for the 5h window
// only.
type Totals struct {
	Cost5h  float64 `json:"cost_5h"`
	CostDay float64 `json:"cost_day"`
	Cost7d  float64 `json:"cost_7d"`

	TokensIn5h          int `json:"tokens_in_5h"`
	TokensOut5h         int `json:"tokens_out_5h"`
	TokensCacheRead5h   int `json:"tokens_cache_read_5h"`
	TokensCacheCreate5h int `json:"tokens_cache_create_5h"`
}

// startOfDay is midnight in now's location. Day bucketing follows the
// local calendar day, not UTC: near midnight this changes which events
// count toward CostDay.
func startOfDay(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// Aggregate scans every log below the scanner's root once and returns the
// windowed totals relative to now.
func Aggregate(s *logscan.Scanner, now time.Time) Totals {
	var t Totals
	cutoff5h := now.Add(-5 * time.Hour)
	cutoff7d := now.Add(-7 * 24 * time.Hour)
	dayStart := startOfDay(now)

	s.Scan(time.Time{}, func(e logscan.Event) {
		cost := pricing.Cost(e.Usage)

		if !e.Timestamp.Before(cutoff7d) {
			t.Cost7d += cost
		}
		if !e.Timestamp.Before(dayStart) {
			t.CostDay += cost
		}
		if !e.Timestamp.Before(cutoff5h) {
			t.Cost5h += cost
			t.TokensIn5h += e.Usage.InputTokens
			t.TokensOut5h += e.Usage.OutputTokens
			t.TokensCacheRead5h += e.Usage.CacheReadInputTokens
			t.TokensCacheCreate5h += e.Usage.CacheCreationInputTokens
		}
	})

	return t
}
