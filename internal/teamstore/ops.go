package teamstore

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/hochfrequenz/team-board/internal/domain"
)

// CreateTask inserts a new task in the todo state and logs its creation.
// Every task must belong to a project.
func (s *Store) CreateTask(t *domain.Task) (int64, error) {
	if s == nil || s.db == nil {
		return 0, errNoConnection
	}
	if t.ProjectID <= 0 {
		return 0, fmt.Errorf("project is required: every task must belong to a project")
	}
	if t.Priority == "" {
		t.Priority = domain.PriorityNormal
	}

	now := formatTime(time.Now())
	res, err := s.db.Exec(`INSERT INTO tasks (title, description, status, priority,
		assignee_id, project_id, due_date, created_at, updated_at)
		VALUES (?, ?, 'todo', ?, ?, ?, ?, ?, ?)`,
		t.Title, t.Description, string(t.Priority),
		nullID(t.AssigneeID), t.ProjectID, nullString(t.DueDate), now, now)
	if err != nil {
		return 0, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	_, err = s.db.Exec(`INSERT INTO task_history (task_id, action, notes, timestamp)
		VALUES (?, 'created', ?, ?)`,
		id, fmt.Sprintf("Task created with priority %s", t.Priority), now)
	return id, err
}

// AssignTask hands a task to an agent and marks the agent active
func (s *Store) AssignTask(taskID, agentID int64) error {
	if s == nil || s.db == nil {
		return errNoConnection
	}

	now := formatTime(time.Now())
	if _, err := s.db.Exec(`UPDATE tasks SET assignee_id = ?, status = 'todo', updated_at = ?
		WHERE id = ?`, agentID, now, taskID); err != nil {
		return err
	}

	if _, err := s.db.Exec(`UPDATE agents SET total_tasks_assigned = total_tasks_assigned + 1,
		current_task_id = ?, status = 'active', updated_at = ? WHERE id = ?`,
		taskID, now, agentID); err != nil {
		return err
	}

	_, err := s.db.Exec(`INSERT INTO task_history (task_id, agent_id, action, notes, timestamp)
		VALUES (?, ?, 'assigned', ?, ?)`,
		taskID, agentID, fmt.Sprintf("Assigned to agent #%d", agentID), now)
	return err
}

// StartTask moves a task to in_progress and stamps started_at
func (s *Store) StartTask(taskID int64) error {
	if s == nil || s.db == nil {
		return errNoConnection
	}

	task, err := s.GetTask(taskID)
	if err != nil {
		return err
	}
	if task == nil {
		return fmt.Errorf("task %d not found", taskID)
	}

	now := formatTime(time.Now())
	if _, err := s.db.Exec(`UPDATE tasks SET status = 'in_progress', started_at = ?,
		updated_at = ? WHERE id = ?`, now, now, taskID); err != nil {
		return err
	}

	_, err = s.db.Exec(`INSERT INTO task_history (task_id, action, old_status, new_status, timestamp)
		VALUES (?, 'started', ?, 'in_progress', ?)`, taskID, string(task.Status), now)
	return err
}

// SendToReview moves an in_progress task to review
func (s *Store) SendToReview(taskID int64) error {
	if s == nil || s.db == nil {
		return errNoConnection
	}

	task, err := s.GetTask(taskID)
	if err != nil {
		return err
	}
	if task == nil {
		return fmt.Errorf("task %d not found", taskID)
	}
	if task.Status != domain.StatusInProgress {
		return fmt.Errorf("task %d must be in_progress to send to review, is %s", taskID, task.Status)
	}

	now := formatTime(time.Now())
	if _, err := s.db.Exec(`UPDATE tasks SET status = 'review', updated_at = ? WHERE id = ?`,
		now, taskID); err != nil {
		return err
	}

	_, err = s.db.Exec(`INSERT INTO task_history (task_id, action, old_status, new_status, timestamp)
		VALUES (?, 'updated', 'in_progress', 'review', ?)`, taskID, now)
	return err
}

// UpdateProgress records a new progress percentage, optionally replacing
// the task notes
func (s *Store) UpdateProgress(taskID int64, progress int, notes string) error {
	if s == nil || s.db == nil {
		return errNoConnection
	}

	var oldProgress int
	err := s.db.QueryRow(`SELECT progress FROM tasks WHERE id = ?`, taskID).Scan(&oldProgress)
	if err == sql.ErrNoRows {
		return fmt.Errorf("task %d not found", taskID)
	}
	if err != nil {
		return err
	}

	now := formatTime(time.Now())
	if _, err := s.db.Exec(`UPDATE tasks SET progress = ?, updated_at = ?,
		notes = CASE WHEN ? != '' THEN ? ELSE notes END WHERE id = ?`,
		progress, now, notes, notes, taskID); err != nil {
		return err
	}

	_, err = s.db.Exec(`INSERT INTO task_history (task_id, action, old_progress, new_progress, notes, timestamp)
		VALUES (?, 'updated', ?, ?, ?, ?)`, taskID, oldProgress, progress, notes, now)
	return err
}

// CompleteTask marks a task done, records its actual duration when it was
// started, and returns its assignee to idle
func (s *Store) CompleteTask(taskID int64) error {
	if s == nil || s.db == nil {
		return errNoConnection
	}

	task, err := s.GetTask(taskID)
	if err != nil {
		return err
	}
	if task == nil {
		return fmt.Errorf("task %d not found", taskID)
	}

	now := time.Now()
	ts := formatTime(now)
	if task.StartedAt != nil {
		minutes := int64(now.UTC().Sub(*task.StartedAt).Round(time.Minute) / time.Minute)
		_, err = s.db.Exec(`UPDATE tasks SET status = 'done', progress = 100, completed_at = ?,
			updated_at = ?, actual_duration_minutes = ? WHERE id = ?`, ts, ts, minutes, taskID)
	} else {
		_, err = s.db.Exec(`UPDATE tasks SET status = 'done', progress = 100, completed_at = ?,
			updated_at = ? WHERE id = ?`, ts, ts, taskID)
	}
	if err != nil {
		return err
	}

	if _, err := s.db.Exec(`UPDATE agents SET total_tasks_completed = total_tasks_completed + 1,
		current_task_id = NULL, status = 'idle', updated_at = ?
		WHERE id = (SELECT assignee_id FROM tasks WHERE id = ?)`, ts, taskID); err != nil {
		return err
	}

	_, err = s.db.Exec(`INSERT INTO task_history (task_id, action, old_status, new_status, timestamp)
		VALUES (?, 'completed', ?, 'done', ?)`, taskID, string(task.Status), ts)
	return err
}

// BlockTask marks a task and its assignee blocked, recording the reason
func (s *Store) BlockTask(taskID int64, reason string) error {
	if s == nil || s.db == nil {
		return errNoConnection
	}

	now := formatTime(time.Now())
	if _, err := s.db.Exec(`UPDATE tasks SET status = 'blocked', blocked_reason = ?,
		updated_at = ? WHERE id = ?`, reason, now, taskID); err != nil {
		return err
	}

	if _, err := s.db.Exec(`UPDATE agents SET status = 'blocked', updated_at = ?
		WHERE id = (SELECT assignee_id FROM tasks WHERE id = ?)`, now, taskID); err != nil {
		return err
	}

	_, err := s.db.Exec(`INSERT INTO task_history (task_id, action, notes, timestamp)
		VALUES (?, 'blocked', ?, ?)`, taskID, reason, now)
	return err
}

// UnblockTask resumes a blocked task to in_progress
func (s *Store) UnblockTask(taskID int64) error {
	if s == nil || s.db == nil {
		return errNoConnection
	}

	task, err := s.GetTask(taskID)
	if err != nil {
		return err
	}
	if task == nil {
		return fmt.Errorf("task %d not found", taskID)
	}
	if task.Status != domain.StatusBlocked {
		return fmt.Errorf("task %d is not blocked", taskID)
	}

	now := formatTime(time.Now())
	if _, err := s.db.Exec(`UPDATE tasks SET status = 'in_progress', updated_at = ?
		WHERE id = ?`, now, taskID); err != nil {
		return err
	}

	if _, err := s.db.Exec(`UPDATE agents SET status = 'active', updated_at = ?
		WHERE id = (SELECT assignee_id FROM tasks WHERE id = ?)`, now, taskID); err != nil {
		return err
	}

	_, err = s.db.Exec(`INSERT INTO task_history (task_id, action, old_status, new_status, timestamp)
		VALUES (?, 'unblocked', 'blocked', 'in_progress', ?)`, taskID, now)
	return err
}

// Heartbeat stamps an agent's last_heartbeat
func (s *Store) Heartbeat(agentID int64) error {
	if s == nil || s.db == nil {
		return errNoConnection
	}

	now := formatTime(time.Now())
	res, err := s.db.Exec(`UPDATE agents SET last_heartbeat = ?, updated_at = ? WHERE id = ?`,
		now, now, agentID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("agent %d not found", agentID)
	}
	return nil
}

// IdleAgents returns agents with no current task, least-loaded first
func (s *Store) IdleAgents() ([]domain.Agent, error) {
	if s == nil || s.db == nil {
		return []domain.Agent{}, nil
	}

	rows, err := s.db.Query(`SELECT id, name, role, total_tasks_completed
		FROM agents
		WHERE status = 'idle' AND (current_task_id IS NULL OR current_task_id = 0)
		ORDER BY total_tasks_completed ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	agents := []domain.Agent{}
	for rows.Next() {
		var a domain.Agent
		if err := rows.Scan(&a.ID, &a.Name, &a.Role, &a.TasksCompleted); err != nil {
			return nil, err
		}
		a.Status = domain.AgentIdle
		agents = append(agents, a)
	}
	return agents, rows.Err()
}

// UnassignedTodoTasks returns todo tasks without an assignee, most urgent
// priority first, oldest first within a priority
func (s *Store) UnassignedTodoTasks() ([]domain.Task, error) {
	if s == nil || s.db == nil {
		return []domain.Task{}, nil
	}

	rows, err := s.db.Query(`SELECT id, title, COALESCE(description, ''), priority,
		COALESCE(project_id, 0)
		FROM tasks
		WHERE status = 'todo' AND (assignee_id IS NULL OR assignee_id = 0)
		ORDER BY CASE priority
			WHEN 'critical' THEN 1
			WHEN 'high' THEN 2
			WHEN 'normal' THEN 3
			WHEN 'low' THEN 4
		END, created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		var t domain.Task
		var priority string
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &priority, &t.ProjectID); err != nil {
			return nil, err
		}
		t.Status = domain.StatusTodo
		t.Priority = domain.Priority(priority)
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// AssignedIdleTodoTasks returns todo tasks that already have an assignee
// whose agent is sitting idle
func (s *Store) AssignedIdleTodoTasks() ([]domain.Task, error) {
	if s == nil || s.db == nil {
		return []domain.Task{}, nil
	}

	rows, err := s.db.Query(`SELECT t.id, t.title, t.assignee_id, a.name
		FROM tasks t
		JOIN agents a ON t.assignee_id = a.id
		WHERE t.status = 'todo' AND t.assignee_id IS NOT NULL AND a.status = 'idle'`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.AssigneeID, &t.AssigneeName); err != nil {
			return nil, err
		}
		t.Status = domain.StatusTodo
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// ActivateAgent marks an agent active on a task and stamps its heartbeat
func (s *Store) ActivateAgent(agentID, taskID int64) error {
	if s == nil || s.db == nil {
		return errNoConnection
	}

	now := formatTime(time.Now())
	_, err := s.db.Exec(`UPDATE agents SET status = 'active', current_task_id = ?,
		last_heartbeat = ?, updated_at = ? WHERE id = ?`, taskID, now, now, agentID)
	return err
}

// InProgressCount returns the number of in_progress tasks assigned to an agent
func (s *Store) InProgressCount(agentID int64) (int, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}

	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM tasks WHERE assignee_id = ? AND status = 'in_progress'`,
		agentID).Scan(&n)
	return n, err
}

// CompletedOn returns tasks whose completed_at falls on the given date
func (s *Store) CompletedOn(date time.Time) ([]domain.Task, error) {
	if s == nil || s.db == nil {
		return []domain.Task{}, nil
	}

	rows, err := s.db.Query(`SELECT t.id, t.title, COALESCE(a.name, '')
		FROM tasks t
		LEFT JOIN agents a ON t.assignee_id = a.id
		WHERE date(t.completed_at) = ?`, date.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.AssigneeName); err != nil {
			return nil, err
		}
		t.Status = domain.StatusDone
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// CreateAgent registers a new agent in the idle state
func (s *Store) CreateAgent(name, role string) (int64, error) {
	if s == nil || s.db == nil {
		return 0, errNoConnection
	}

	now := formatTime(time.Now())
	res, err := s.db.Exec(`INSERT INTO agents (name, role, status, created_at, updated_at)
		VALUES (?, ?, 'idle', ?, ?)`, name, role, now, now)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// CreateProject registers a new project
func (s *Store) CreateProject(name string, status domain.ProjectStatus) (int64, error) {
	if s == nil || s.db == nil {
		return 0, errNoConnection
	}
	if status == "" {
		status = domain.ProjectPlanning
	}

	now := formatTime(time.Now())
	res, err := s.db.Exec(`INSERT INTO projects (name, status, created_at, updated_at)
		VALUES (?, ?, ?, ?)`, name, string(status), now, now)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func nullID(id int64) interface{} {
	if id <= 0 {
		return nil
	}
	return id
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
