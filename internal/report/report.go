// Package report renders team status reports as markdown.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/hochfrequenz/team-board/internal/domain"
)

// inProgressLimit caps the in-progress section of the daily report
const inProgressLimit = 5

// Reader is the subset of the task store reports are built from
type Reader interface {
	Stats() (domain.DashboardStats, error)
	CompletedOn(date time.Time) ([]domain.Task, error)
	TasksByStatus(status domain.TaskStatus) ([]domain.Task, error)
}

// Daily builds the markdown daily report for the given date
func Daily(r Reader, date time.Time) (string, error) {
	stats, err := r.Stats()
	if err != nil {
		return "", fmt.Errorf("loading stats: %w", err)
	}
	doneToday, err := r.CompletedOn(date)
	if err != nil {
		return "", fmt.Errorf("loading completed tasks: %w", err)
	}
	inProgress, err := r.TasksByStatus(domain.StatusInProgress)
	if err != nil {
		return "", fmt.Errorf("loading in-progress tasks: %w", err)
	}
	blocked, err := r.TasksByStatus(domain.StatusBlocked)
	if err != nil {
		return "", fmt.Errorf("loading blocked tasks: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Team Daily Report - %s\n\n", date.Format("2006-01-02"))

	b.WriteString("## Summary\n")
	fmt.Fprintf(&b, "- Total Tasks: %d\n", stats.TotalTasks)
	fmt.Fprintf(&b, "- Completed Today: %d\n", len(doneToday))
	fmt.Fprintf(&b, "- In Progress: %d\n", stats.InProgressTasks)
	fmt.Fprintf(&b, "- Blocked: %d\n", stats.BlockedTasks)
	fmt.Fprintf(&b, "- Active Agents: %d\n", stats.ActiveAgents)

	b.WriteString("\n## Completed Today\n")
	for _, t := range doneToday {
		fmt.Fprintf(&b, "- #%d: %s (by %s)\n", t.ID, t.Title, orDash(t.AssigneeName))
	}

	b.WriteString("\n## In Progress\n")
	for i, t := range inProgress {
		if i >= inProgressLimit {
			break
		}
		fmt.Fprintf(&b, "- #%d: %s (%d%%) - %s\n", t.ID, t.Title, t.Progress, orDash(t.AssigneeName))
	}

	b.WriteString("\n## Blocked\n")
	for _, t := range blocked {
		fmt.Fprintf(&b, "- #%d: %s - %s\n", t.ID, t.Title, orDash(t.AssigneeName))
	}

	return b.String(), nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
