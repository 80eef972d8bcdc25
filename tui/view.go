package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hochfrequenz/team-board/internal/dashboard"
	"github.com/hochfrequenz/team-board/internal/domain"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243")).
				Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("237"))

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	statusColors = map[domain.TaskStatus]lipgloss.Style{
		domain.StatusTodo:       lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		domain.StatusInProgress: lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		domain.StatusReview:     lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		domain.StatusDone:       lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		domain.StatusBlocked:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}

	agentColors = map[domain.AgentStatus]lipgloss.Style{
		domain.AgentIdle:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		domain.AgentActive:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		domain.AgentBlocked: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		domain.AgentOffline: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
)

// View renders the full screen
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")

	if m.loadErr != nil {
		b.WriteString(errStyle.Render("load error: "+m.loadErr.Error()) + "\n")
	}
	if m.snapshot == nil {
		b.WriteString(headerStyle.Render("loading...") + "\n")
		return b.String()
	}

	var body string
	switch m.activeTab {
	case TabBoard:
		body = m.renderBoard()
	case TabTasks:
		body = m.renderTasks()
	case TabAgents:
		body = m.renderAgents()
	case TabProjects:
		body = m.renderProjects()
	case TabActivity:
		body = m.renderActivity()
	}
	b.WriteString(sectionStyle.Width(m.width - 2).Render(body))
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	return b.String()
}

func (m Model) renderHeader() string {
	title := titleStyle.Render("Team Board")
	if m.snapshot == nil {
		return title
	}
	s := m.snapshot.Stats
	stats := fmt.Sprintf(" │ Tasks: %d │ In Progress: %d │ Blocked: %d │ Agents: %d/%d active",
		s.TotalTasks, s.InProgressTasks, s.BlockedTasks, s.ActiveAgents, s.TotalAgents)
	return title + headerStyle.Render(stats)
}

func (m Model) renderTabs() string {
	parts := make([]string, 0, len(tabNames))
	for i, name := range tabNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if Tab(i) == m.activeTab {
			parts = append(parts, tabActiveStyle.Render(label))
		} else {
			parts = append(parts, tabInactiveStyle.Render(label))
		}
	}
	return strings.Join(parts, " ")
}

func (m Model) renderBoard() string {
	var b strings.Builder
	for i, col := range m.snapshot.Columns {
		if i > 0 {
			b.WriteString("\n")
		}
		style := statusColors[col.Status]
		b.WriteString(style.Bold(true).Render(fmt.Sprintf("%s (%d)", col.Label, len(col.Tasks))))
		b.WriteString("\n")
		for _, t := range col.Tasks {
			line := fmt.Sprintf("  #%-4d %s", t.ID, truncate(t.Title, 50))
			if t.AssigneeName != "" {
				line += headerStyle.Render("  " + dashboard.Initials(t.AssigneeName))
			}
			if col.Status == domain.StatusBlocked && t.BlockedReason != "" {
				line += errStyle.Render("  ⚠ " + truncate(t.BlockedReason, 30))
			}
			b.WriteString(line + "\n")
		}
		if len(col.Tasks) == 0 {
			b.WriteString(headerStyle.Render("  (empty)") + "\n")
		}
	}
	return b.String()
}

func (m Model) renderTasks() string {
	snap := m.snapshot
	if len(snap.Tasks) == 0 {
		return headerStyle.Render("no tasks")
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("  %-5s %-40s %-12s %-9s %-5s %-10s %s",
		"ID", "TITLE", "STATUS", "PRIORITY", "PROG", "DUE", "ASSIGNEE")))
	b.WriteString("\n")
	for i, t := range snap.Tasks {
		status := statusColors[t.Status].Render(fmt.Sprintf("%-12s", t.Status))
		line := fmt.Sprintf("  %-5d %-40s %s %-9s %3d%%  %-10s %s",
			t.ID, truncate(t.Title, 40), status, t.Priority, t.Progress,
			orDash(t.DueDate), orDash(t.AssigneeName))
		if i == m.scroll {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m Model) renderAgents() string {
	snap := m.snapshot
	if len(snap.Agents) == 0 {
		return headerStyle.Render("no agents")
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("  %-20s %-12s %-10s %-8s %-6s %s",
		"NAME", "ROLE", "STATUS", "ACTIVE", "DONE", "HEARTBEAT")))
	b.WriteString("\n")
	for i, a := range snap.Agents {
		status := agentColors[a.Status].Render(fmt.Sprintf("%-10s", a.Status))
		heartbeat := "-"
		if a.LastHeartbeat != nil {
			heartbeat = dashboard.RelativeTime(*a.LastHeartbeat)
		}
		line := fmt.Sprintf("  %-20s %-12s %s %-8d %-6d %s",
			truncate(a.Name, 20), truncate(a.Role, 12), status,
			a.ActiveTasks, a.TasksCompleted, heartbeat)
		if i == m.scroll {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m Model) renderProjects() string {
	snap := m.snapshot
	if len(snap.Projects) == 0 {
		return headerStyle.Render("no projects")
	}
	var b strings.Builder
	for i, p := range snap.Projects {
		line := fmt.Sprintf("  %-25s %-10s %s %3d%%  %d/%d done, %d blocked",
			truncate(p.Name, 25), p.Status, progressBar(p.ProgressPct, 20),
			p.ProgressPct, p.CompletedTasks, p.TotalTasks, p.BlockedTasks)
		if i == m.scroll {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m Model) renderActivity() string {
	snap := m.snapshot
	if len(snap.Activity) == 0 {
		return headerStyle.Render("no recent activity")
	}
	var b strings.Builder
	for i, e := range snap.Activity {
		action := domain.StatusLabel(string(e.Action))
		line := fmt.Sprintf("  %-12s %-14s #%-4d %-30s %s",
			dashboard.RelativeTime(e.Timestamp), action, e.TaskID,
			truncate(e.TaskTitle, 30), e.AgentName)
		if e.OldStatus != "" && e.NewStatus != "" {
			line += headerStyle.Render(fmt.Sprintf("  %s → %s", e.OldStatus, e.NewStatus))
		}
		if i == m.scroll {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m Model) renderStatusBar() string {
	refreshed := "never"
	if !m.lastRefresh.IsZero() {
		refreshed = dashboard.RelativeTime(m.lastRefresh)
	}
	return statusBarStyle.Render(fmt.Sprintf(
		"refreshed %s · tab/1-5 switch · j/k scroll · r refresh · q quit", refreshed))
}

func progressBar(pct, width int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := pct * width / 100
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
