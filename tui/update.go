package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Update handles all incoming messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case TickMsg:
		return m, tea.Batch(m.refreshCmd(), tickCmd())

	case snapshotMsg:
		if msg.err != nil {
			m.loadErr = msg.err
			return m, nil
		}
		m.loadErr = nil
		m.snapshot = msg.snapshot
		m.lastRefresh = time.Now()
		m.clampScroll()
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "tab", "l", "right":
		m.activeTab = (m.activeTab + 1) % Tab(len(tabNames))
		m.scroll = 0
		return m, nil

	case "shift+tab", "h", "left":
		m.activeTab = (m.activeTab + Tab(len(tabNames)) - 1) % Tab(len(tabNames))
		m.scroll = 0
		return m, nil

	case "1", "2", "3", "4", "5":
		m.activeTab = Tab(int(msg.String()[0] - '1'))
		m.scroll = 0
		return m, nil

	case "j", "down":
		m.scroll++
		m.clampScroll()
		return m, nil

	case "k", "up":
		m.scroll--
		m.clampScroll()
		return m, nil

	case "g":
		m.scroll = 0
		return m, nil

	case "r":
		return m, m.refreshCmd()
	}

	return m, nil
}

func (m *Model) clampScroll() {
	max := m.rowCount() - 1
	if max < 0 {
		max = 0
	}
	if m.scroll > max {
		m.scroll = max
	}
	if m.scroll < 0 {
		m.scroll = 0
	}
}
