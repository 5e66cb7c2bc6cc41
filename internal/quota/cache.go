package quota

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"time"
)

// CacheVersion tags the on-disk schema. Version 1 stored relative reset
// seconds; reading those fields as absolute timestamps would silently
// produce wrong remaining-time values, so any version other than the
// current one is a hard cache miss, never a migration.
const CacheVersion = 2

type cacheFile struct {
	Version   int            `json:"version"`
	UpdatedAt string         `json:"updatedAt"`
	UsageData cacheUsageData `json:"usageData"`
}

type cacheUsageData struct {
	Utilization5h float64 `json:"utilization5h"`
	Utilization7d float64 `json:"utilization7d"`
	Reset5hAt     int64   `json:"reset5hAt"` // absolute epoch seconds
	Reset7dAt     int64   `json:"reset7dAt"` // absolute epoch seconds
	LimitStatus   string  `json:"limitStatus"`
}

// Entry is a decoded cache record. Reset fields are absolute instants so
// "seconds remaining" stays correct however long ago the entry was
// written.
type Entry struct {
	UpdatedAt     time.Time
	Utilization5h float64
	Utilization7d float64
	Reset5hAt     time.Time
	Reset7dAt     time.Time
	LimitStatus   LimitStatus
}

// Valid reports whether the entry is fresh at now. The boundary is
// exclusive: an entry exactly at the TTL is already stale.
func (e Entry) Valid(ttl time.Duration, now time.Time) bool {
	return now.Sub(e.UpdatedAt) < ttl
}

// Age returns the entry's age in seconds at now.
func (e Entry) Age(now time.Time) float64 {
	return now.Sub(e.UpdatedAt).Seconds()
}

// RateLimit reconstructs a rate-limit observation from the entry,
// recomputing seconds remaining against now and flooring at zero.
func (e Entry) RateLimit(now time.Time) RateLimit {
	return RateLimit{
		Utilization5h: e.Utilization5h,
		Utilization7d: e.Utilization7d,
		ResetIn5h:     secondsUntil(e.Reset5hAt, now),
		ResetIn7d:     secondsUntil(e.Reset7dAt, now),
		LimitStatus:   LimitStatus(e.LimitStatus),
	}
}

func secondsUntil(at, now time.Time) float64 {
	s := at.Sub(now).Seconds()
	if s < 0 {
		return 0
	}
	return s
}

// Cache persists the last-known quota snapshot in a single versioned JSON
// file. It is strictly an optimization: read failures are cache misses
// and write failures are swallowed.
type Cache struct {
	path string
}

func NewCache(path string) *Cache {
	return &Cache{path: path}
}

// DefaultCachePath returns ~/.claude/claudewatch-quota-cache.json.
func DefaultCachePath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".claude", "claudewatch-quota-cache.json")
}

// Read loads the persisted entry. The second return is false when the
// file is absent, unparseable, or carries a different schema version.
func (c *Cache) Read() (Entry, bool) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return Entry{}, false
	}

	var cf cacheFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return Entry{}, false
	}
	if cf.Version != CacheVersion {
		return Entry{}, false
	}
	updatedAt, err := time.Parse(time.RFC3339, cf.UpdatedAt)
	if err != nil {
		return Entry{}, false
	}

	return Entry{
		UpdatedAt:     updatedAt,
		Utilization5h: cf.UsageData.Utilization5h,
		Utilization7d: cf.UsageData.Utilization7d,
		Reset5hAt:     time.Unix(cf.UsageData.Reset5hAt, 0),
		Reset7dAt:     time.Unix(cf.UsageData.Reset7dAt, 0),
		LimitStatus:   LimitStatus(cf.UsageData.LimitStatus),
	}, true
}

// Write persists a live observation, converting the relative reset
// countdowns into absolute timestamps anchored at now. Failures are
// logged and otherwise ignored.
func (c *Cache) Write(rl RateLimit, now time.Time) {
	cf := cacheFile{
		Version:   CacheVersion,
		UpdatedAt: now.UTC().Format(time.RFC3339),
		UsageData: cacheUsageData{
			Utilization5h: rl.Utilization5h,
			Utilization7d: rl.Utilization7d,
			Reset5hAt:     now.Add(time.Duration(rl.ResetIn5h * float64(time.Second))).Unix(),
			Reset7dAt:     now.Add(time.Duration(rl.ResetIn7d * float64(time.Second))).Unix(),
			LimitStatus:   string(rl.LimitStatus),
		},
	}

	data, err := json.MarshalIndent(cf, "", "  ")
	if err != nil {
		log.Printf("[quota] marshaling cache: %v", err)
		return
	}
	data = append(data, '\n')

	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		log.Printf("[quota] writing cache %s: %v", c.path, err)
	}
}
