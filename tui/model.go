package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hochfrequenz/team-board/internal/dashboard"
)

// Tab identifies one of the board views
type Tab int

const (
	TabBoard Tab = iota
	TabTasks
	TabAgents
	TabProjects
	TabActivity
)

var tabNames = []string{"Board", "Tasks", "Agents", "Projects", "Activity"}

// refreshInterval is how often the snapshot is reloaded from the store
const refreshInterval = 5 * time.Second

// SnapshotLoader produces a fresh read model on each refresh
type SnapshotLoader func() (*dashboard.Snapshot, error)

// Model is the bubbletea model for the terminal board
type Model struct {
	load SnapshotLoader

	snapshot *dashboard.Snapshot
	loadErr  error

	activeTab   Tab
	scroll      int
	width       int
	height      int
	lastRefresh time.Time
	quitting    bool
}

// NewModel creates a TUI model that refreshes through load
func NewModel(load SnapshotLoader) Model {
	return Model{
		load:   load,
		width:  120,
		height: 40,
	}
}

// Init starts the refresh loop with an immediate first load
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refreshCmd(), tickCmd())
}

// TickMsg triggers a periodic snapshot reload
type TickMsg time.Time

// snapshotMsg carries the result of one load
type snapshotMsg struct {
	snapshot *dashboard.Snapshot
	err      error
}

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) refreshCmd() tea.Cmd {
	load := m.load
	return func() tea.Msg {
		snap, err := load()
		return snapshotMsg{snapshot: snap, err: err}
	}
}

// rowCount returns how many scrollable rows the active tab holds
func (m Model) rowCount() int {
	if m.snapshot == nil {
		return 0
	}
	switch m.activeTab {
	case TabTasks:
		return len(m.snapshot.Tasks)
	case TabAgents:
		return len(m.snapshot.Agents)
	case TabProjects:
		return len(m.snapshot.Projects)
	case TabActivity:
		return len(m.snapshot.Activity)
	}
	return 0
}
