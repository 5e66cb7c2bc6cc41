package tui

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/claudewatch/claudewatch/internal/config"
	"github.com/claudewatch/claudewatch/internal/manager"
	"github.com/claudewatch/claudewatch/internal/predict"
	"github.com/claudewatch/claudewatch/internal/quota"
	"github.com/claudewatch/claudewatch/internal/usage"
)

func TestViewBeforeFirstSnapshot(t *testing.T) {
	m := NewModel(nil, config.DefaultConfig())
	if !strings.Contains(m.View(), "loading") {
		t.Errorf("expected loading placeholder, got %q", m.View())
	}
}

func TestViewRendersSnapshotSections(t *testing.T) {
	m := NewModel(nil, config.DefaultConfig())
	m.hasSnap = true
	m.snap = manager.Snapshot{
		Utilization5h: 0.42,
		Utilization7d: 0.10,
		ResetIn5h:     3600,
		ResetIn7d:     86400,
		LimitStatus:   quota.StatusAllowed,
		Totals: usage.Totals{
			Cost5h:      1.25,
			CostDay:     4.50,
			Cost7d:      20.00,
			TokensIn5h:  1_500_000,
			TokensOut5h: 42_000,
		},
		LastUpdated: time.Now(),
		DataSource:  manager.SourceAPI,
	}
	m.hasPred = true
	exhaust := 7200.0
	m.pred = predict.Prediction{
		BurnRateUSDPerHour:   0.40,
		ExhaustionInSeconds:  &exhaust,
		SafeToStartHeavyTask: true,
		Recommendation:       "Safe to start new tasks",
	}
	m.projects = []usage.ProjectCost{
		{ProjectName: "backend", CostToday: 3.00, Cost7d: 12.00, SessionCount: 4},
		{ProjectName: "frontend", CostToday: 1.50, Cost7d: 8.00, SessionCount: 2},
	}

	out := m.View()
	for _, want := range []string{
		"Rate Limits",
		"42.0%",
		"Spend",
		"$4.50",
		"1.5M",
		"42.0k",
		"$0.40/h",
		"Safe to start new tasks",
		"backend",
		"today $4.50 total",
		"source: api",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestViewDeniedBadgeAndCacheAge(t *testing.T) {
	m := NewModel(nil, config.DefaultConfig())
	m.hasSnap = true
	m.snap = manager.Snapshot{
		LimitStatus:     quota.StatusDenied,
		DataSource:      manager.SourceStale,
		CacheAgeSeconds: 420,
		LastUpdated:     time.Now(),
	}

	out := m.View()
	if !strings.Contains(out, "denied") {
		t.Error("expected denied badge")
	}
	if !strings.Contains(out, "source: stale (420s old)") {
		t.Errorf("expected stale source with age, got %q", out)
	}
}

func TestFormatTokens(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1_000, "1.0k"},
		{42_500, "42.5k"},
		{1_500_000, "1.5M"},
	}
	for _, tt := range tests {
		if got := formatTokens(tt.n); got != tt.want {
			t.Errorf("formatTokens(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "0m"},
		{90, "2m"},
		{3600, "1h 00m"},
		{5400, "1h 30m"},
		{93600, "26h 00m"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.seconds); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestPadRightTruncates(t *testing.T) {
	if got := padRight("short", 10); got != "short     " {
		t.Errorf("padRight pad = %q", got)
	}
	if got := padRight("a-very-long-project-name", 10); got != "a-very-lo…" {
		t.Errorf("padRight truncate = %q", got)
	}
}

func TestPadRightMultibyteNames(t *testing.T) {
	got := padRight("プロジェクト管理ツール", 8)
	if !utf8.ValidString(got) {
		t.Fatalf("padRight emitted invalid UTF-8: %q", got)
	}
	if got != "プロジェクト管…" {
		t.Errorf("padRight truncate = %q", got)
	}
	if got := padRight("café", 6); got != "café  " {
		t.Errorf("padRight pad = %q", got)
	}
}
