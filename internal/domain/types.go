package domain

// TaskStatus represents the lifecycle state of a task
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusReview     TaskStatus = "review"
	StatusDone       TaskStatus = "done"
	StatusBlocked    TaskStatus = "blocked"
)

// AllTaskStatuses lists the kanban buckets in board order
var AllTaskStatuses = []TaskStatus{
	StatusTodo,
	StatusInProgress,
	StatusReview,
	StatusDone,
	StatusBlocked,
}

// ValidTaskStatus reports whether s belongs to the closed status set
func ValidTaskStatus(s string) bool {
	switch TaskStatus(s) {
	case StatusTodo, StatusInProgress, StatusReview, StatusDone, StatusBlocked:
		return true
	}
	return false
}

// AgentStatus represents the workload state of an agent
type AgentStatus string

const (
	AgentIdle    AgentStatus = "idle"
	AgentActive  AgentStatus = "active"
	AgentBlocked AgentStatus = "blocked"
	AgentOffline AgentStatus = "offline"
)

// ProjectStatus represents the lifecycle state of a project
type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "planning"
	ProjectActive    ProjectStatus = "active"
	ProjectDone      ProjectStatus = "done"
	ProjectCancelled ProjectStatus = "cancelled"
)

// Priority represents task priority
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityNormal   Priority = "normal"
	PriorityLow      Priority = "low"
)

// HistoryAction identifies the kind of task history entry
type HistoryAction string

const (
	ActionCreated      HistoryAction = "created"
	ActionAssigned     HistoryAction = "assigned"
	ActionStarted      HistoryAction = "started"
	ActionUpdated      HistoryAction = "updated"
	ActionStatusChange HistoryAction = "status_change"
	ActionCompleted    HistoryAction = "completed"
	ActionBlocked      HistoryAction = "blocked"
	ActionUnblocked    HistoryAction = "unblocked"
)
