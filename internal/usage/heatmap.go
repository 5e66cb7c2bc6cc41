package usage

import (
	"time"

	"github.com/claudewatch/claudewatch/internal/logscan"
	"github.com/claudewatch/claudewatch/internal/pricing"
)

// CostEvent is one assistant response reduced to what the heatmap and the
// burn-rate sampler need.
type CostEvent struct {
	Timestamp time.Time
	Cost      float64
	Tokens    int // input + output
	Hour      int // 0-23, local time
}

// DailyUsage is the activity of one local calendar day.
type DailyUsage struct {
	Date       string  `json:"date"` // "2006-01-02", local time
	Cost       float64 `json:"cost"`
	EntryCount int     `json:"entry_count"`
	Tokens     int     `json:"tokens"`
}

// HourlyUsage is the average spend profile of one hour-of-day slot.
type HourlyUsage struct {
	Hour    int     `json:"hour"`
	AvgCost float64 `json:"avg_cost"`
	Count   int     `json:"count"`
}

// Heatmap is the daily series over the requested window plus a 24-slot
// hourly profile over the trailing 30 days.
type Heatmap struct {
	Daily       []DailyUsage  `json:"daily"`
	Hourly      []HourlyUsage `json:"hourly"`
	GeneratedAt time.Time     `json:"generated_at"`
}

const hourlyProfileDays = 30

func localDateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// BuildHeatmap scans the trailing days of logs, using the scanner's mtime
// short-circuit so directories untouched since the cutoff are never read.
func BuildHeatmap(s *logscan.Scanner, days int, now time.Time) Heatmap {
	cutoff := now.Add(-time.Duration(days) * 24 * time.Hour)

	var events []CostEvent
	s.ScanSince(cutoff, func(e logscan.Event) {
		local := e.Timestamp.In(now.Location())
		events = append(events, CostEvent{
			Timestamp: local,
			Cost:      pricing.Cost(e.Usage),
			Tokens:    e.Usage.Total(),
			Hour:      local.Hour(),
		})
	})

	return Heatmap{
		Daily:       aggregateByDay(events, days, now),
		Hourly:      aggregateByHour(events, hourlyProfileDays, now),
		GeneratedAt: now,
	}
}

// aggregateByDay buckets events by local date and fills every day of the
// window, zero-activity days included, oldest first.
func aggregateByDay(events []CostEvent, days int, now time.Time) []DailyUsage {
	byDate := make(map[string]*DailyUsage)
	for _, e := range events {
		key := localDateKey(e.Timestamp)
		d, ok := byDate[key]
		if !ok {
			d = &DailyUsage{Date: key}
			byDate[key] = d
		}
		d.Cost += e.Cost
		d.Tokens += e.Tokens
		d.EntryCount++
	}

	out := make([]DailyUsage, 0, days)
	for i := days - 1; i >= 0; i-- {
		key := localDateKey(now.AddDate(0, 0, -i))
		if d, ok := byDate[key]; ok {
			out = append(out, *d)
		} else {
			out = append(out, DailyUsage{Date: key})
		}
	}
	return out
}

func aggregateByHour(events []CostEvent, days int, now time.Time) []HourlyUsage {
	cutoff := now.Add(-time.Duration(days) * 24 * time.Hour)

	totals := make([]float64, 24)
	counts := make([]int, 24)
	for _, e := range events {
		if e.Timestamp.Before(cutoff) {
			continue
		}
		totals[e.Hour] += e.Cost
		counts[e.Hour]++
	}

	out := make([]HourlyUsage, 24)
	for h := 0; h < 24; h++ {
		avg := 0.0
		if counts[h] > 0 {
			avg = totals[h] / float64(counts[h])
		}
		out[h] = HourlyUsage{Hour: h, AvgCost: avg, Count: counts[h]}
	}
	return out
}
