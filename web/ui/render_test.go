package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/hochfrequenz/team-board/internal/dashboard"
	"github.com/hochfrequenz/team-board/internal/domain"
)

type fakeReader struct {
	stats    domain.DashboardStats
	agents   []domain.Agent
	projects []domain.Project
	tasks    []domain.Task
	activity []domain.HistoryEntry
}

func (f *fakeReader) Stats() (domain.DashboardStats, error)                 { return f.stats, nil }
func (f *fakeReader) Agents() ([]domain.Agent, error)                       { return f.agents, nil }
func (f *fakeReader) Projects() ([]domain.Project, error)                   { return f.projects, nil }
func (f *fakeReader) Tasks() ([]domain.Task, error)                         { return f.tasks, nil }
func (f *fakeReader) RecentActivity(limit int) ([]domain.HistoryEntry, error) {
	return f.activity, nil
}

func renderTo(t *testing.T, render func(*Page) (string, error), reader dashboard.Reader) string {
	t.Helper()
	snap, err := dashboard.Load(reader)
	if err != nil {
		t.Fatal(err)
	}
	out, err := render(NewPage("Team Board", 60, snap))
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func kanbanHTML(t *testing.T, reader dashboard.Reader) string {
	r := NewRenderer()
	return renderTo(t, func(p *Page) (string, error) {
		var buf bytes.Buffer
		err := r.RenderKanban(&buf, p)
		return buf.String(), err
	}, reader)
}

func tableHTML(t *testing.T, reader dashboard.Reader) string {
	r := NewRenderer()
	return renderTo(t, func(p *Page) (string, error) {
		var buf bytes.Buffer
		err := r.RenderTable(&buf, p)
		return buf.String(), err
	}, reader)
}

func TestRenderKanban_EscapesTaskTitle(t *testing.T) {
	html := kanbanHTML(t, &fakeReader{
		tasks: []domain.Task{{ID: 1, Title: `<script>alert("x")</script>`, Status: domain.StatusTodo}},
	})

	if strings.Contains(html, `<script>alert`) {
		t.Error("task title rendered unescaped")
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Error("escaped title not found in output")
	}
}

func TestRenderKanban_ColumnsAndCards(t *testing.T) {
	html := kanbanHTML(t, &fakeReader{
		tasks: []domain.Task{
			{ID: 7, Title: "Build login form", Status: domain.StatusInProgress, Priority: domain.PriorityHigh,
				ProjectName: "Website", AssigneeName: "Dana Smith", CreatedAt: time.Now().Add(-90 * time.Minute)},
			{ID: 8, Title: "Stuck task", Status: domain.StatusBlocked, BlockedReason: "waiting on API keys"},
		},
	})

	for _, want := range []string{
		"TODO", "IN PROGRESS", "REVIEW", "DONE", "BLOCKED",
		"Build login form", "#7", "Website",
		"DS",                  // initials avatar
		"1h 30m",              // elapsed age
		"waiting on API keys", // blocked reason callout
	} {
		if !strings.Contains(html, want) {
			t.Errorf("kanban output missing %q", want)
		}
	}
}

func TestRenderKanban_StatusButtonsOmitCurrentColumn(t *testing.T) {
	html := kanbanHTML(t, &fakeReader{
		tasks: []domain.Task{{ID: 1, Title: "Only task", Status: domain.StatusTodo}},
	})

	// Four move buttons for the card, none targeting its own column
	if n := strings.Count(html, `name="new_status"`); n != 4 {
		t.Errorf("move forms = %d, want 4", n)
	}
	if strings.Contains(html, `value="todo"`) {
		t.Error("card offers a move to its own column")
	}
}

func TestRenderKanban_StatsGrid(t *testing.T) {
	html := kanbanHTML(t, &fakeReader{
		stats: domain.DashboardStats{TotalTasks: 9, AvgProgress: 42, OverdueTasks: 3},
	})

	if n := strings.Count(html, `class="stat-card"`); n != 14 {
		t.Errorf("stat cards = %d, want 14", n)
	}
	if !strings.Contains(html, "42%") {
		t.Error("avg progress not rendered as percentage")
	}
}

func TestRenderKanban_EmptyBoard(t *testing.T) {
	html := kanbanHTML(t, &fakeReader{})

	if !strings.Contains(html, "Task Kanban Board (0 tasks)") {
		t.Error("empty board heading not rendered")
	}
	if !strings.Contains(html, `content="60"`) {
		t.Error("meta refresh not set")
	}
}

func TestRenderTable_RowsAndMoveSelect(t *testing.T) {
	html := tableHTML(t, &fakeReader{
		tasks: []domain.Task{
			{ID: 3, Title: "Write docs", Status: domain.StatusReview, Priority: domain.PriorityLow,
				DueDate: "2026-01-01", Progress: 80, AssigneeName: "Mo"},
		},
	})

	for _, want := range []string{
		"All Tasks (1)", "#3", "Write docs", "badge-review", "badge-low",
		"80%", "2026-01-01", "move to...",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("table output missing %q", want)
		}
	}
	// The select offers the other four states only
	if n := strings.Count(html, "<option"); n != 5 { // placeholder + 4 states
		t.Errorf("options = %d, want 5", n)
	}
}

func TestSortTasks(t *testing.T) {
	tasks := []domain.Task{
		{ID: 2, Title: "b", Priority: domain.PriorityLow, Progress: 10},
		{ID: 1, Title: "a", Priority: domain.PriorityCritical, Progress: 90},
	}

	SortTasks(tasks, "id")
	if tasks[0].ID != 1 {
		t.Errorf("sort by id: first = %d, want 1", tasks[0].ID)
	}

	SortTasks(tasks, "priority")
	if tasks[0].Priority != domain.PriorityCritical {
		t.Errorf("sort by priority: first = %s, want critical", tasks[0].Priority)
	}

	SortTasks(tasks, "progress")
	if tasks[0].Progress != 90 {
		t.Errorf("sort by progress: first = %d, want 90", tasks[0].Progress)
	}

	// Unknown key keeps order
	before := tasks[0].ID
	SortTasks(tasks, "bogus")
	if tasks[0].ID != before {
		t.Error("unknown sort key reordered tasks")
	}
}
