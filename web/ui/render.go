// Package ui serves the HTML dashboard: a kanban board and a flat table
// view over the same data, with a form-based status mutation path.
package ui

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"sort"
	"strings"

	"github.com/hochfrequenz/team-board/internal/dashboard"
	"github.com/hochfrequenz/team-board/internal/domain"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

// StatCard is one tile of the stats grid
type StatCard struct {
	Label string
	Value string
}

// Page carries everything a template render needs
type Page struct {
	Title          string
	RefreshSeconds int
	LastUpdated    string
	Message        string
	Error          string
	Snapshot       *dashboard.Snapshot
	Statuses       []domain.TaskStatus
	StatCards      []StatCard
}

// Renderer holds the parsed kanban and table templates
type Renderer struct {
	kanban *template.Template
	table  *template.Template
}

var templateFuncs = template.FuncMap{
	"badge":     func(v any) string { return dashboard.BadgeClass(fmt.Sprint(v)) },
	"prioColor": func(v any) string { return dashboard.PriorityColor(fmt.Sprint(v)) },
	"label":     func(v any) string { return domain.StatusLabel(fmt.Sprint(v)) },
	"initials":  dashboard.Initials,
	"elapsed":   dashboard.ElapsedSince,
	"urgency":   dashboard.DueUrgency,
	"relative":  dashboard.RelativeTime,
	"deref":     func(p *int) int { return *p },
}

// NewRenderer parses the embedded templates
func NewRenderer() *Renderer {
	base := func(main string) *template.Template {
		return template.Must(template.New("base").Funcs(templateFuncs).
			ParseFS(templateFS, "templates/base.gohtml", "templates/"+main))
	}
	return &Renderer{
		kanban: base("kanban.gohtml"),
		table:  base("table.gohtml"),
	}
}

// RenderKanban writes the kanban board page
func (r *Renderer) RenderKanban(w io.Writer, p *Page) error {
	return r.kanban.ExecuteTemplate(w, "base", p)
}

// RenderTable writes the flat table page
func (r *Renderer) RenderTable(w io.Writer, p *Page) error {
	return r.table.ExecuteTemplate(w, "base", p)
}

// NewPage assembles a Page from a snapshot
func NewPage(title string, refreshSeconds int, snap *dashboard.Snapshot) *Page {
	return &Page{
		Title:          title,
		RefreshSeconds: refreshSeconds,
		LastUpdated:    snap.GeneratedAt.Format("2006-01-02 15:04:05"),
		Snapshot:       snap,
		Statuses:       domain.AllTaskStatuses,
		StatCards:      statCards(snap.Stats),
	}
}

// statCards lays out the stats grid in the fixed dashboard order
func statCards(s domain.DashboardStats) []StatCard {
	n := func(v int) string { return fmt.Sprintf("%d", v) }
	return []StatCard{
		{"Total Agents", n(s.TotalAgents)},
		{"Active", n(s.ActiveAgents)},
		{"Idle", n(s.IdleAgents)},
		{"Blocked", n(s.BlockedAgents)},
		{"Total Projects", n(s.TotalProjects)},
		{"Active Projects", n(s.ActiveProjects)},
		{"Total Tasks", n(s.TotalTasks)},
		{"To Do", n(s.TodoTasks)},
		{"In Progress", n(s.InProgressTasks)},
		{"Completed", n(s.CompletedTasks)},
		{"Blocked", n(s.BlockedTasks)},
		{"Avg Progress", fmt.Sprintf("%d%%", s.AvgProgress)},
		{"Due Today", n(s.DueToday)},
		{"Overdue", n(s.OverdueTasks)},
	}
}

// priorityRank orders priorities most urgent first for table sorting
var priorityRank = map[domain.Priority]int{
	domain.PriorityCritical: 1,
	domain.PriorityHigh:     2,
	domain.PriorityNormal:   3,
	domain.PriorityLow:      4,
}

// SortTasks reorders tasks for the table view. Unknown keys keep the
// store's due-date ordering.
func SortTasks(tasks []domain.Task, key string) {
	switch key {
	case "id":
		sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	case "title":
		sort.SliceStable(tasks, func(i, j int) bool {
			return strings.ToLower(tasks[i].Title) < strings.ToLower(tasks[j].Title)
		})
	case "status":
		sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].Status < tasks[j].Status })
	case "priority":
		sort.SliceStable(tasks, func(i, j int) bool {
			return priorityRank[tasks[i].Priority] < priorityRank[tasks[j].Priority]
		})
	case "progress":
		sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].Progress > tasks[j].Progress })
	}
}
