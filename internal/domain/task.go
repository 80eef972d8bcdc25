package domain

import (
	"strings"
	"time"
)

// Task represents a unit of work tracked on the board
type Task struct {
	ID            int64
	Title         string
	Description   string
	Status        TaskStatus
	Priority      Priority
	ProjectID     int64 // 0 when unset
	ProjectName   string
	AssigneeID    int64 // 0 when unassigned
	AssigneeName  string
	Progress      int    // 0-100
	DueDate       string // YYYY-MM-DD, empty when unset
	BlockedReason string
	Notes         string
	StartedAt     *time.Time
	CompletedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Agent is a tracked worker with a workload status and task counters
type Agent struct {
	ID              int64
	Name            string
	Role            string
	Status          AgentStatus
	CurrentTaskID   int64
	ActiveTasks     int
	InProgressTasks int
	TasksCompleted  int
	AvgProgress     float64
	LastHeartbeat   *time.Time
}

// Project groups tasks and carries aggregate completion figures
type Project struct {
	ID              int64
	Name            string
	Status          ProjectStatus
	TotalTasks      int
	CompletedTasks  int
	InProgressTasks int
	BlockedTasks    int
	ProgressPct     int // 0-100
}

// HistoryEntry is an append-only record of a task mutation.
// TaskTitle and AgentName come from left joins and stay empty when the
// referenced row has been deleted.
type HistoryEntry struct {
	ID          int64
	TaskID      int64
	AgentID     int64
	Action      HistoryAction
	OldStatus   string
	NewStatus   string
	OldProgress *int
	NewProgress *int
	Notes       string
	Timestamp   time.Time
	TaskTitle   string
	AgentName   string
}

// DashboardStats is the single aggregate row behind the stats grid
type DashboardStats struct {
	TotalAgents     int
	ActiveAgents    int
	IdleAgents      int
	BlockedAgents   int
	TotalProjects   int
	ActiveProjects  int
	TotalTasks      int
	TodoTasks       int
	InProgressTasks int
	CompletedTasks  int
	BlockedTasks    int
	AvgProgress     int
	DueToday        int
	OverdueTasks    int
}

// StatusLabel returns the display form of a status: underscores become
// spaces and the result is uppercased ("in_progress" -> "IN PROGRESS").
func StatusLabel(s string) string {
	return strings.ToUpper(strings.ReplaceAll(s, "_", " "))
}
