package teamstore

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hochfrequenz/team-board/internal/domain"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when the database file does not exist
var ErrNotFound = errors.New("database not found")

// timeLayout is the canonical timestamp format, matching SQLite's
// CURRENT_TIMESTAMP so rows written by either side compare equal.
const timeLayout = "2006-01-02 15:04:05"

// Store provides SQLite-backed access to the team database.
// Read methods on a nil Store return empty results so callers can render
// an empty board without null checks; open and query errors still propagate.
type Store struct {
	db *sql.DB
}

// Open opens the database read-write, creating it and running migrations
// if needed
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// OpenReadOnly opens an existing database for reading only. It fails with
// ErrNotFound when the backing file is absent.
func OpenReadOnly(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}

	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Stats returns the single aggregate row behind the stats grid.
// An empty database yields all-zero counts.
func (s *Store) Stats() (domain.DashboardStats, error) {
	var st domain.DashboardStats
	if s == nil || s.db == nil {
		return st, nil
	}

	err := s.db.QueryRow(`SELECT total_agents, active_agents, idle_agents, blocked_agents,
		total_projects, active_projects, total_tasks, todo_tasks, in_progress_tasks,
		completed_tasks, blocked_tasks, avg_progress, due_today, overdue_tasks
		FROM v_dashboard_stats`).Scan(
		&st.TotalAgents, &st.ActiveAgents, &st.IdleAgents, &st.BlockedAgents,
		&st.TotalProjects, &st.ActiveProjects, &st.TotalTasks, &st.TodoTasks,
		&st.InProgressTasks, &st.CompletedTasks, &st.BlockedTasks,
		&st.AvgProgress, &st.DueToday, &st.OverdueTasks,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return st, nil
	}
	return st, err
}

// Agents returns all agents with workload counters, ordered by name
func (s *Store) Agents() ([]domain.Agent, error) {
	if s == nil || s.db == nil {
		return []domain.Agent{}, nil
	}

	rows, err := s.db.Query(`SELECT id, name, role, status, current_task_id,
		total_tasks_completed, last_heartbeat, active_tasks, in_progress_tasks, avg_progress
		FROM v_agent_workload ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	agents := []domain.Agent{}
	for rows.Next() {
		var a domain.Agent
		var status string
		var heartbeat sql.NullString
		if err := rows.Scan(&a.ID, &a.Name, &a.Role, &status, &a.CurrentTaskID,
			&a.TasksCompleted, &heartbeat, &a.ActiveTasks, &a.InProgressTasks, &a.AvgProgress); err != nil {
			return nil, err
		}
		a.Status = domain.AgentStatus(status)
		if t, ok := parseTime(heartbeat.String); ok {
			a.LastHeartbeat = &t
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}

// Projects returns all projects with task counts and completion percentage,
// ordered by name
func (s *Store) Projects() ([]domain.Project, error) {
	if s == nil || s.db == nil {
		return []domain.Project{}, nil
	}

	rows, err := s.db.Query(`SELECT id, name, status, total_tasks, completed_tasks,
		in_progress_tasks, blocked_tasks, progress_pct
		FROM v_project_status ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []domain.Project{}
	for rows.Next() {
		var p domain.Project
		var status string
		if err := rows.Scan(&p.ID, &p.Name, &status, &p.TotalTasks, &p.CompletedTasks,
			&p.InProgressTasks, &p.BlockedTasks, &p.ProgressPct); err != nil {
			return nil, err
		}
		p.Status = domain.ProjectStatus(status)
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// Tasks returns the full task summary join, ordered by due date then
// priority. Priority is a text column, so the ordering follows its label
// collation rather than severity.
func (s *Store) Tasks() ([]domain.Task, error) {
	if s == nil || s.db == nil {
		return []domain.Task{}, nil
	}

	rows, err := s.db.Query(taskSummaryColumns + ` FROM v_task_summary ORDER BY due_date, priority`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTasks(rows)
}

// TasksByStatus returns tasks in the given state, ordered like Tasks
func (s *Store) TasksByStatus(status domain.TaskStatus) ([]domain.Task, error) {
	if s == nil || s.db == nil {
		return []domain.Task{}, nil
	}

	rows, err := s.db.Query(taskSummaryColumns+` FROM v_task_summary WHERE status = ?
		ORDER BY due_date, priority`, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTasks(rows)
}

// GetTask retrieves one task by id, or nil when it does not exist
func (s *Store) GetTask(id int64) (*domain.Task, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}

	rows, err := s.db.Query(taskSummaryColumns+` FROM v_task_summary WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks, err := scanTasks(rows)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, nil
	}
	return &tasks[0], nil
}

// RecentActivity returns the newest history entries, capped at limit.
// Deleted task or agent references yield empty join fields rather than
// dropping the row.
func (s *Store) RecentActivity(limit int) ([]domain.HistoryEntry, error) {
	if s == nil || s.db == nil {
		return []domain.HistoryEntry{}, nil
	}

	rows, err := s.db.Query(`SELECT th.id, COALESCE(th.task_id, 0), COALESCE(th.agent_id, 0),
		th.action, COALESCE(th.old_status, ''), COALESCE(th.new_status, ''),
		th.old_progress, th.new_progress, COALESCE(th.notes, ''), th.timestamp,
		COALESCE(t.title, ''), COALESCE(a.name, '')
		FROM task_history th
		LEFT JOIN tasks t ON th.task_id = t.id
		LEFT JOIN agents a ON th.agent_id = a.id
		ORDER BY th.timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []domain.HistoryEntry{}
	for rows.Next() {
		var e domain.HistoryEntry
		var action string
		var oldProg, newProg sql.NullInt64
		var ts sql.NullString
		if err := rows.Scan(&e.ID, &e.TaskID, &e.AgentID, &action, &e.OldStatus, &e.NewStatus,
			&oldProg, &newProg, &e.Notes, &ts, &e.TaskTitle, &e.AgentName); err != nil {
			return nil, err
		}
		e.Action = domain.HistoryAction(action)
		if oldProg.Valid {
			v := int(oldProg.Int64)
			e.OldProgress = &v
		}
		if newProg.Valid {
			v := int(newProg.Int64)
			e.NewProgress = &v
		}
		if t, ok := parseTime(ts.String); ok {
			e.Timestamp = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

const taskSummaryColumns = `SELECT id, title, description, status, priority,
	assignee_id, project_id, progress, due_date, blocked_reason, notes,
	started_at, completed_at, created_at, updated_at, project_name, assignee_name`

func scanTasks(rows *sql.Rows) ([]domain.Task, error) {
	tasks := []domain.Task{}
	for rows.Next() {
		var t domain.Task
		var status, priority string
		var startedAt, completedAt, createdAt, updatedAt sql.NullString
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &status, &priority,
			&t.AssigneeID, &t.ProjectID, &t.Progress, &t.DueDate, &t.BlockedReason,
			&t.Notes, &startedAt, &completedAt, &createdAt, &updatedAt,
			&t.ProjectName, &t.AssigneeName); err != nil {
			return nil, err
		}
		t.Status = domain.TaskStatus(status)
		t.Priority = domain.Priority(priority)
		if ts, ok := parseTime(startedAt.String); ok {
			t.StartedAt = &ts
		}
		if ts, ok := parseTime(completedAt.String); ok {
			t.CompletedAt = &ts
		}
		if ts, ok := parseTime(createdAt.String); ok {
			t.CreatedAt = ts
		}
		if ts, ok := parseTime(updatedAt.String); ok {
			t.UpdatedAt = ts
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// parseTime parses a stored timestamp. SQLite's CURRENT_TIMESTAMP writes
// "2006-01-02 15:04:05"; RFC3339 is accepted for rows imported from
// elsewhere.
func parseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{timeLayout, time.RFC3339, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
