package quota

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func cachePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "quota-cache.json")
}

func TestCacheRoundTripUsesAbsoluteResets(t *testing.T) {
	path := cachePath(t)
	c := NewCache(path)
	wrote := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	c.Write(RateLimit{
		Utilization5h: 0.5,
		Utilization7d: 0.2,
		ResetIn5h:     3600,
		ResetIn7d:     86400,
		LimitStatus:   StatusAllowed,
	}, wrote)

	entry, ok := c.Read()
	if !ok {
		t.Fatal("expected cache hit after write")
	}

	// Read back 30 minutes later: remaining time must shrink by the gap,
	// which only works because resets are stored as absolute instants.
	later := wrote.Add(30 * time.Minute)
	rl := entry.RateLimit(later)
	if rl.ResetIn5h != 1800 {
		t.Errorf("ResetIn5h after 30m = %v, want 1800", rl.ResetIn5h)
	}
	if rl.Utilization5h != 0.5 || rl.LimitStatus != StatusAllowed {
		t.Errorf("unexpected reconstructed limit: %+v", rl)
	}

	// Read back after the reset has passed: floored at zero.
	muchLater := wrote.Add(2 * time.Hour)
	if got := entry.RateLimit(muchLater).ResetIn5h; got != 0 {
		t.Errorf("ResetIn5h after reset passed = %v, want 0", got)
	}
}

func TestCacheRejectsVersionOne(t *testing.T) {
	path := cachePath(t)
	// Version-1 payload used relative reset seconds; it must be a hard
	// miss regardless of field values, never a reinterpretation.
	v1 := `{"version":1,"updatedAt":"2026-08-28T12:00:00Z","usageData":{"utilization5h":0.9,"utilization7d":0.9,"resetIn5h":100,"resetIn7d":100,"limitStatus":"allowed"}}`
	if err := os.WriteFile(path, []byte(v1), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, ok := NewCache(path).Read(); ok {
		t.Error("expected version-1 cache to be rejected")
	}
}

func TestCacheReadMisses(t *testing.T) {
	tests := []struct {
		name    string
		content string
		absent  bool
	}{
		{name: "absent file", absent: true},
		{name: "garbage", content: "not json"},
		{name: "bad timestamp", content: `{"version":2,"updatedAt":"yesterday","usageData":{}}`},
		{name: "future version", content: `{"version":3,"updatedAt":"2026-08-28T12:00:00Z","usageData":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := cachePath(t)
			if !tt.absent {
				if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
					t.Fatal(err)
				}
			}
			if _, ok := NewCache(path).Read(); ok {
				t.Error("expected cache miss")
			}
		})
	}
}

func TestEntryValidBoundaryIsExclusive(t *testing.T) {
	wrote := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	entry := Entry{UpdatedAt: wrote}
	ttl := 300 * time.Second

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"well within ttl", wrote.Add(10 * time.Second), true},
		{"just under ttl", wrote.Add(ttl - time.Nanosecond), true},
		{"exactly at ttl", wrote.Add(ttl), false},
		{"past ttl", wrote.Add(ttl + time.Second), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := entry.Valid(ttl, tt.now); got != tt.want {
				t.Errorf("Valid at %v = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestEntryAge(t *testing.T) {
	wrote := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	entry := Entry{UpdatedAt: wrote}
	if got := entry.Age(wrote.Add(90 * time.Second)); got != 90 {
		t.Errorf("Age = %v, want 90", got)
	}
}

func TestCacheWriteFailureIsSwallowed(t *testing.T) {
	// Directory path cannot be written as a file; Write must not panic
	// or return anything.
	c := NewCache(t.TempDir())
	c.Write(RateLimit{Utilization5h: 0.1}, time.Now())
}
