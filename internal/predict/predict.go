// Package predict derives burn-rate forecasts from a short recent cost
// sample: when the 5h rate-limit window will be exhausted at the current
// pace, and optionally when a daily budget runs out.
package predict

import (
	"sort"
	"time"

	"github.com/claudewatch/claudewatch/internal/logscan"
	"github.com/claudewatch/claudewatch/internal/pricing"
)

// BurnLookback is the sampling window behind now used to measure the
// current spend pace.
const BurnLookback = 30 * time.Minute

// safeSeconds is the remaining-time floor below which starting a heavy
// task is discouraged.
const safeSeconds = 1800

// Recommendation texts are matched verbatim by scenario tests downstream;
// do not reword them.
const (
	msgCritical  = "Less than 10 min remaining. Save your work and pause."
	msgWarning   = "Less than 30 min remaining. Wrap up current task."
	msgCaution   = "About 1 hour remaining. Plan your next task accordingly."
	msgSafe      = "Plenty of capacity. Safe to start heavy tasks."
	msgExhausted = "Rate limit reached. Wait for reset."
)

// Sample is one recent cost observation.
type Sample struct {
	Timestamp time.Time
	Cost      float64
}

// Prediction is the forecast derived from one unified snapshot. Nil
// pointer fields mean "unknown or not applicable", not zero.
type Prediction struct {
	ExhaustionTime       *time.Time `json:"exhaustion_time"`
	ExhaustionInSeconds  *float64   `json:"exhaustion_in_seconds"`
	BurnRateUSDPerHour   float64    `json:"burn_rate_usd_per_hour"`
	BudgetRemaining      *float64   `json:"budget_remaining"`
	BudgetExhaustionTime *time.Time `json:"budget_exhaustion_time"`
	SafeToStartHeavyTask bool       `json:"safe_to_start_heavy_task"`
	Recommendation       string     `json:"recommendation"`
}

// Inputs are the snapshot fields the forecast depends on.
type Inputs struct {
	Utilization5h float64
	ResetIn5h     float64 // seconds
	Cost5h        float64
	CostToday     float64
	DailyBudget   *float64 // nil when no budget is configured
}

// RecentSamples collects positive-cost events from the burn lookback
// window, oldest first.
func RecentSamples(s *logscan.Scanner, now time.Time) []Sample {
	cutoff := now.Add(-BurnLookback)

	var samples []Sample
	s.Scan(cutoff, func(e logscan.Event) {
		if cost := pricing.Cost(e.Usage); cost > 0 {
			samples = append(samples, Sample{Timestamp: e.Timestamp, Cost: cost})
		}
	})

	sort.Slice(samples, func(i, j int) bool {
		return samples[i].Timestamp.Before(samples[j].Timestamp)
	})
	return samples
}

// BurnRate returns the recent spend pace in USD per hour. Fewer than two
// samples is insufficient signal and yields exactly zero, which callers
// must not read as "zero usage".
func BurnRate(samples []Sample, now time.Time) float64 {
	if len(samples) < 2 {
		return 0
	}
	var total float64
	for _, s := range samples {
		total += s.Cost
	}
	spanHours := now.Sub(samples[0].Timestamp).Hours()
	if spanHours <= 0 {
		return 0
	}
	return total / spanHours
}

// Recommendation maps remaining seconds to the fixed advice tiers. The
// mapping is monotonic: less time never produces milder advice.
func Recommendation(seconds float64) string {
	switch {
	case seconds < 600:
		return msgCritical
	case seconds < 1800:
		return msgWarning
	case seconds < 3600:
		return msgCaution
	default:
		return msgSafe
	}
}

// Compute derives the forecast from the snapshot inputs and the recent
// sample set. Pure apart from the clock argument.
func Compute(in Inputs, samples []Sample, now time.Time) Prediction {
	burnRate := BurnRate(samples, now)

	p := Prediction{
		BurnRateUSDPerHour:   burnRate,
		SafeToStartHeavyTask: true,
		Recommendation:       msgSafe,
	}

	switch {
	case in.Utilization5h >= 1.0:
		at := now
		zero := 0.0
		p.ExhaustionTime = &at
		p.ExhaustionInSeconds = &zero
		p.SafeToStartHeavyTask = false
		p.Recommendation = msgExhausted

	case burnRate > 0 && in.Utilization5h > 0:
		// The window's total capacity is implied by the observed spend:
		// cost5h corresponds to the utilization5h fraction consumed.
		capacityUSD := in.Cost5h / in.Utilization5h
		remainingUSD := capacityUSD * (1.0 - in.Utilization5h)
		seconds := remainingUSD / burnRate * 3600

		// Exhaustion cannot land after the window itself resets.
		if seconds > in.ResetIn5h {
			seconds = in.ResetIn5h
		}

		at := now.Add(time.Duration(seconds * float64(time.Second)))
		p.ExhaustionTime = &at
		p.ExhaustionInSeconds = &seconds
		p.SafeToStartHeavyTask = seconds > safeSeconds
		p.Recommendation = Recommendation(seconds)
	}

	if in.DailyBudget != nil {
		remaining := *in.DailyBudget - in.CostToday
		clamped := remaining
		if clamped < 0 {
			clamped = 0
		}
		p.BudgetRemaining = &clamped

		if remaining <= 0 {
			at := now
			p.BudgetExhaustionTime = &at
		} else if burnRate > 0 {
			at := now.Add(time.Duration(remaining / burnRate * float64(time.Hour)))
			p.BudgetExhaustionTime = &at
		}
	}

	return p
}
