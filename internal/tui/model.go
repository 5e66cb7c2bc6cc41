// Package tui renders the unified snapshot, forecast, project costs and
// activity heatmap as a terminal dashboard. Purely a consumer: all data
// comes from the manager's produced outputs and its notification stream.
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/claudewatch/claudewatch/internal/config"
	"github.com/claudewatch/claudewatch/internal/manager"
	"github.com/claudewatch/claudewatch/internal/predict"
	"github.com/claudewatch/claudewatch/internal/usage"
)

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// SnapshotMsg carries a freshly built snapshot from the manager's
// notification stream into the program.
type SnapshotMsg manager.Snapshot

type heatmapMsg usage.Heatmap

type Model struct {
	mgr *manager.Manager
	cfg config.Config

	snap    manager.Snapshot
	hasSnap bool

	pred    predict.Prediction
	hasPred bool

	projects []usage.ProjectCost

	heatmap    usage.Heatmap
	hasHeatmap bool

	width  int
	height int

	refreshing bool
}

func NewModel(mgr *manager.Manager, cfg config.Config) Model {
	return Model{mgr: mgr, cfg: cfg}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.loadHeatmapCmd())
}

func (m Model) loadHeatmapCmd() tea.Cmd {
	return func() tea.Msg {
		return heatmapMsg(m.mgr.Heatmap())
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			m.refreshing = true
			mgr := m.mgr
			return m, func() tea.Msg {
				mgr.ForceRefresh(context.Background())
				return nil
			}
		}
		return m, nil

	case SnapshotMsg:
		m.snap = manager.Snapshot(msg)
		m.hasSnap = true
		m.refreshing = false
		if p, ok := m.mgr.LastPrediction(); ok {
			m.pred = p
			m.hasPred = true
		}
		m.projects = m.mgr.LastProjectCosts()
		return m, m.loadHeatmapCmd()

	case heatmapMsg:
		m.heatmap = usage.Heatmap(msg)
		m.hasHeatmap = true
		return m, nil

	case tickMsg:
		// Countdown fields in the view derive from the snapshot
		// timestamp; a ticking re-render keeps them moving.
		return m, tickCmd()
	}

	return m, nil
}

// Run wires the manager to a bubbletea program: refresh loop and file
// watcher in the background, snapshots forwarded as messages.
func Run(cfg config.Config, mgr *manager.Manager) error {
	m := NewModel(mgr, cfg)
	p := tea.NewProgram(m, tea.WithAltScreen())

	mgr.Subscribe(func(snap manager.Snapshot) {
		p.Send(SnapshotMsg(snap))
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go mgr.Run(ctx)
	go func() { _ = mgr.Watch(ctx) }()

	_, err := p.Run()
	return err
}
