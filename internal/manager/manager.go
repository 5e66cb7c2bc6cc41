// Package manager reconciles the two usage sources — the remote quota
// endpoint and the local conversation logs — into one unified snapshot,
// decides when a remote call is worth spending, and fans change
// notifications out to display collaborators.
package manager

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/claudewatch/claudewatch/internal/config"
	"github.com/claudewatch/claudewatch/internal/logscan"
	"github.com/claudewatch/claudewatch/internal/predict"
	"github.com/claudewatch/claudewatch/internal/quota"
	"github.com/claudewatch/claudewatch/internal/usage"
)

// DataSource explains where the quota half of a snapshot came from. It is
// the only externally visible degradation signal.
type DataSource string

const (
	SourceAPI           DataSource = "api"
	SourceCache         DataSource = "cache"
	SourceStale         DataSource = "stale"
	SourceNoCredentials DataSource = "no-credentials"
	SourceNoData        DataSource = "no-data"
)

// activityWindow gates remote calls when the cache has gone stale: with
// no log activity this recent, the user is idle and the call is not
// worth spending.
const activityWindow = 300 * time.Second

// Snapshot is the unified view handed to display collaborators. It is
// immutable once built; the manager replaces its retained copy wholesale.
type Snapshot struct {
	Utilization5h float64           `json:"utilization_5h"`
	Utilization7d float64           `json:"utilization_7d"`
	ResetIn5h     float64           `json:"reset_in_5h"`
	ResetIn7d     float64           `json:"reset_in_7d"`
	LimitStatus   quota.LimitStatus `json:"limit_status"`

	usage.Totals

	LastUpdated     time.Time  `json:"last_updated"`
	CacheAgeSeconds float64    `json:"cache_age_seconds"`
	DataSource      DataSource `json:"data_source"`
}

// QuotaFetcher is the remote endpoint dependency, satisfied by
// *quota.Client and by fakes in tests.
type QuotaFetcher interface {
	Fetch(ctx context.Context) (quota.RateLimit, error)
}

// Manager owns the current snapshot, project costs and prediction. All
// three are single-writer and replaced wholesale after each refresh, so
// readers never see a half-updated view.
type Manager struct {
	cfg     config.Config
	scanner *logscan.Scanner
	cache   *quota.Cache
	client  QuotaFetcher

	mu             sync.RWMutex
	lastSnapshot   *Snapshot
	lastProjects   []usage.ProjectCost
	lastPrediction *predict.Prediction
	subscribers    []func(Snapshot)
}

func New(cfg config.Config) *Manager {
	return &Manager{
		cfg:     cfg,
		scanner: logscan.New(cfg.LogRoot()),
		cache:   quota.NewCache(cfg.QuotaCachePath()),
		client:  quota.NewClient(cfg.ResolvedCredentialsPath()),
	}
}

// SetFetcher swaps the remote client. Used by tests.
func (m *Manager) SetFetcher(f QuotaFetcher) { m.client = f }

// Scanner exposes the log scanner for collaborators that need raw scans
// (heatmap rendering, one-shot CLI output).
func (m *Manager) Scanner() *logscan.Scanner { return m.scanner }

// Subscribe registers a change listener. Listeners are invoked in
// registration order after every completed refresh; there is no replay
// for late subscribers.
func (m *Manager) Subscribe(fn func(Snapshot)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = append(m.subscribers, fn)
}

// shouldCallRemote implements the cache-first policy: always call with no
// cache entry; with a stale entry only when the logs show recent
// activity; with a fresh entry never.
func (m *Manager) shouldCallRemote(entry quota.Entry, ok bool, now time.Time) bool {
	if !ok {
		return true
	}
	if !entry.Valid(m.ttl(), now) {
		return m.scanner.UpdatedWithin(activityWindow)
	}
	return false
}

func (m *Manager) ttl() time.Duration {
	return time.Duration(m.cfg.CacheTTLSeconds) * time.Second
}

// GetUsageData builds a fresh unified snapshot. It never fails: every
// I/O problem degrades into zeroed quota fields plus an explanatory
// DataSource. The result is retained for synchronous readers.
func (m *Manager) GetUsageData(ctx context.Context, forceRefresh bool) Snapshot {
	now := time.Now()

	// Local aggregation and cache read are independent; fan out, join.
	var (
		wg     sync.WaitGroup
		totals usage.Totals
		entry  quota.Entry
		hit    bool
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		totals = usage.Aggregate(m.scanner, now)
	}()
	go func() {
		defer wg.Done()
		entry, hit = m.cache.Read()
	}()
	wg.Wait()

	var (
		limit      *quota.RateLimit
		dataSource = SourceNoData
	)

	if forceRefresh || m.shouldCallRemote(entry, hit, now) {
		fetched, err := m.client.Fetch(ctx)
		if err == nil {
			m.cache.Write(fetched, now)
			limit = &fetched
			dataSource = SourceAPI
		} else {
			log.Printf("[manager] quota fetch failed: %v", err)
			if hit {
				cached := entry.RateLimit(now)
				limit = &cached
				dataSource = m.cacheSource(entry, now)
			} else {
				dataSource = SourceNoCredentials
			}
		}
	} else if hit {
		cached := entry.RateLimit(now)
		limit = &cached
		dataSource = m.cacheSource(entry, now)
	}

	snap := Snapshot{
		LimitStatus: quota.StatusAllowed,
		Totals:      totals,
		LastUpdated: now,
		DataSource:  dataSource,
	}
	if limit != nil {
		snap.Utilization5h = limit.Utilization5h
		snap.Utilization7d = limit.Utilization7d
		snap.ResetIn5h = limit.ResetIn5h
		snap.ResetIn7d = limit.ResetIn7d
		snap.LimitStatus = limit.LimitStatus
	}
	if hit {
		snap.CacheAgeSeconds = entry.Age(now)
	}

	m.mu.Lock()
	m.lastSnapshot = &snap
	m.mu.Unlock()

	return snap
}

func (m *Manager) cacheSource(entry quota.Entry, now time.Time) DataSource {
	if entry.Valid(m.ttl(), now) {
		return SourceCache
	}
	return SourceStale
}

// RefreshProjectCosts recomputes the per-workspace breakdown. Workspaces
// with no log data simply drop out of the list.
func (m *Manager) RefreshProjectCosts() {
	costs := usage.AllProjectCosts(m.scanner, m.cfg.Workspaces, time.Now())
	m.mu.Lock()
	m.lastProjects = costs
	m.mu.Unlock()
}

// Refresh runs the full pipeline: unified snapshot and project costs in
// parallel, then the prediction, then one notification to every
// subscriber.
func (m *Manager) Refresh(ctx context.Context) {
	m.refresh(ctx, false)
}

// ForceRefresh is Refresh with an unconditional remote call.
func (m *Manager) ForceRefresh(ctx context.Context) {
	m.refresh(ctx, true)
}

func (m *Manager) refresh(ctx context.Context, force bool) {
	var (
		wg   sync.WaitGroup
		snap Snapshot
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		snap = m.GetUsageData(ctx, force)
	}()
	go func() {
		defer wg.Done()
		m.RefreshProjectCosts()
	}()
	wg.Wait()

	// Recompute before notifying so listeners reading LastPrediction
	// inside the callback see fresh numbers.
	m.UpdatePrediction()

	m.mu.RLock()
	subs := make([]func(Snapshot), len(m.subscribers))
	copy(subs, m.subscribers)
	m.mu.RUnlock()

	for _, fn := range subs {
		fn(snap)
	}
}

// UpdatePrediction recomputes the forecast from the retained snapshot.
// Returns false while no snapshot has ever been built.
func (m *Manager) UpdatePrediction() bool {
	m.mu.RLock()
	snap := m.lastSnapshot
	m.mu.RUnlock()
	if snap == nil {
		return false
	}

	now := time.Now()
	samples := predict.RecentSamples(m.scanner, now)
	p := predict.Compute(predict.Inputs{
		Utilization5h: snap.Utilization5h,
		ResetIn5h:     snap.ResetIn5h,
		Cost5h:        snap.Cost5h,
		CostToday:     snap.CostDay,
		DailyBudget:   m.cfg.DailyBudgetUSD,
	}, samples, now)

	m.mu.Lock()
	m.lastPrediction = &p
	m.mu.Unlock()
	return true
}

// LastSnapshot returns the most recently built snapshot, if any.
func (m *Manager) LastSnapshot() (Snapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.lastSnapshot == nil {
		return Snapshot{}, false
	}
	return *m.lastSnapshot, true
}

// LastProjectCosts returns the most recent per-workspace breakdown.
func (m *Manager) LastProjectCosts() []usage.ProjectCost {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastProjects
}

// LastPrediction returns the most recent forecast, if any.
func (m *Manager) LastPrediction() (predict.Prediction, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.lastPrediction == nil {
		return predict.Prediction{}, false
	}
	return *m.lastPrediction, true
}

// Heatmap builds the activity heatmap over the configured window.
func (m *Manager) Heatmap() usage.Heatmap {
	return usage.BuildHeatmap(m.scanner, m.cfg.HeatmapDays, time.Now())
}

// Run refreshes immediately, then on every tick of the configured
// interval until the context is cancelled. Overlap with watcher-driven
// refreshes is harmless: each run replaces state wholesale, last writer
// wins.
func (m *Manager) Run(ctx context.Context) {
	m.Refresh(ctx)

	ticker := time.NewTicker(time.Duration(m.cfg.RefreshIntervalSeconds) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[manager] context cancelled, stopping refresh loop")
			return
		case <-ticker.C:
			m.Refresh(ctx)
		}
	}
}
