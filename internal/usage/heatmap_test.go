package usage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/claudewatch/claudewatch/internal/logscan"
)

func TestBuildHeatmapDailySeries(t *testing.T) {
	root := t.TempDir()
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.Local)

	writeLog(t, filepath.Join(root, "proj"), "s.jsonl",
		assistantLine(now.Add(-2*time.Hour), 1_000_000, 0, ""),
		assistantLine(now.Add(-3*time.Hour), 1_000_000, 0, ""),
		assistantLine(now.AddDate(0, 0, -2), 1_000_000, 0, ""),
	)

	hm := BuildHeatmap(logscan.New(root), 7, now)

	if len(hm.Daily) != 7 {
		t.Fatalf("expected 7 daily buckets, got %d", len(hm.Daily))
	}
	// Oldest first, today last.
	last := hm.Daily[6]
	if last.Date != now.Format("2006-01-02") {
		t.Errorf("last bucket date = %q, want today", last.Date)
	}
	if last.EntryCount != 2 || !approxEqual(last.Cost, 6.00) {
		t.Errorf("today bucket = %+v, want 2 entries costing 6.00", last)
	}
	if hm.Daily[4].EntryCount != 1 {
		t.Errorf("two-days-ago bucket = %+v, want 1 entry", hm.Daily[4])
	}
	// Zero-activity days are present, not skipped.
	if hm.Daily[0].EntryCount != 0 || hm.Daily[0].Cost != 0 {
		t.Errorf("expected empty bucket for oldest day, got %+v", hm.Daily[0])
	}
}

func TestBuildHeatmapHourlyProfile(t *testing.T) {
	root := t.TempDir()
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.Local)
	at9 := time.Date(2026, 8, 28, 9, 15, 0, 0, time.Local)

	writeLog(t, filepath.Join(root, "proj"), "s.jsonl",
		assistantLine(at9, 1_000_000, 0, ""),
		assistantLine(at9.Add(10*time.Minute), 3_000_000, 0, ""),
	)

	hm := BuildHeatmap(logscan.New(root), 7, now)

	if len(hm.Hourly) != 24 {
		t.Fatalf("expected 24 hourly slots, got %d", len(hm.Hourly))
	}
	slot := hm.Hourly[9]
	if slot.Count != 2 {
		t.Errorf("hour 9 count = %d, want 2", slot.Count)
	}
	if !approxEqual(slot.AvgCost, 6.00) { // (3.00 + 9.00) / 2
		t.Errorf("hour 9 avg = %v, want 6.00", slot.AvgCost)
	}
	if hm.Hourly[3].Count != 0 || hm.Hourly[3].AvgCost != 0 {
		t.Errorf("expected empty slot at hour 3, got %+v", hm.Hourly[3])
	}
}

func TestBuildHeatmapEmptyRoot(t *testing.T) {
	hm := BuildHeatmap(logscan.New(filepath.Join(t.TempDir(), "missing")), 5, time.Now())
	if len(hm.Daily) != 5 || len(hm.Hourly) != 24 {
		t.Errorf("expected zero-filled series, got %d daily / %d hourly", len(hm.Daily), len(hm.Hourly))
	}
}
