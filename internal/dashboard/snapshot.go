package dashboard

import (
	"time"

	"github.com/hochfrequenz/team-board/internal/domain"
)

// activityLimit caps the recent-activity feed
const activityLimit = 20

// Reader is the read side of the team store needed to build a Snapshot
type Reader interface {
	Stats() (domain.DashboardStats, error)
	Agents() ([]domain.Agent, error)
	Projects() ([]domain.Project, error)
	Tasks() ([]domain.Task, error)
	RecentActivity(limit int) ([]domain.HistoryEntry, error)
}

// Snapshot is the complete read model for one page render. All slices are
// non-nil so renderers only test for presence.
type Snapshot struct {
	Stats       domain.DashboardStats
	Agents      []domain.Agent
	Projects    []domain.Project
	Tasks       []domain.Task
	Activity    []domain.HistoryEntry
	Columns     []Column
	GeneratedAt time.Time
}

// Column is one kanban bucket with its tasks in load order
type Column struct {
	Status domain.TaskStatus
	Label  string
	Tasks  []domain.Task
}

// Load issues the five dashboard queries in a fixed order and composes the
// result into a render-ready snapshot
func Load(r Reader) (*Snapshot, error) {
	stats, err := r.Stats()
	if err != nil {
		return nil, err
	}
	agents, err := r.Agents()
	if err != nil {
		return nil, err
	}
	projects, err := r.Projects()
	if err != nil {
		return nil, err
	}
	tasks, err := r.Tasks()
	if err != nil {
		return nil, err
	}
	activity, err := r.RecentActivity(activityLimit)
	if err != nil {
		return nil, err
	}

	if agents == nil {
		agents = []domain.Agent{}
	}
	if projects == nil {
		projects = []domain.Project{}
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	if activity == nil {
		activity = []domain.HistoryEntry{}
	}

	return &Snapshot{
		Stats:       stats,
		Agents:      agents,
		Projects:    projects,
		Tasks:       tasks,
		Activity:    activity,
		Columns:     groupColumns(tasks),
		GeneratedAt: time.Now(),
	}, nil
}

// groupColumns buckets tasks into the five fixed kanban columns. A task
// with an unknown status lands in todo rather than being dropped.
func groupColumns(tasks []domain.Task) []Column {
	byStatus := make(map[domain.TaskStatus][]domain.Task, len(domain.AllTaskStatuses))
	for _, t := range tasks {
		status := t.Status
		if !domain.ValidTaskStatus(string(status)) {
			status = domain.StatusTodo
		}
		byStatus[status] = append(byStatus[status], t)
	}

	columns := make([]Column, 0, len(domain.AllTaskStatuses))
	for _, status := range domain.AllTaskStatuses {
		tasks := byStatus[status]
		if tasks == nil {
			tasks = []domain.Task{}
		}
		columns = append(columns, Column{
			Status: status,
			Label:  domain.StatusLabel(string(status)),
			Tasks:  tasks,
		})
	}
	return columns
}
