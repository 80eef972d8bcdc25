package teamstore

import (
	"testing"
	"time"

	"github.com/hochfrequenz/team-board/internal/domain"
)

func TestChangeStatus_Valid(t *testing.T) {
	store := newTestStore(t)

	projectID, _ := store.CreateProject("Launch", domain.ProjectActive)
	taskID, err := store.CreateTask(&domain.Task{Title: "Ship it", ProjectID: projectID})
	if err != nil {
		t.Fatal(err)
	}
	store.StartTask(taskID)

	msg, err := store.ChangeStatus(taskID, "done")
	if err != nil {
		t.Fatal(err)
	}
	want := "Task #1 moved to DONE"
	if msg != want {
		t.Errorf("confirmation = %q, want %q", msg, want)
	}

	task, _ := store.GetTask(taskID)
	if task.Status != domain.StatusDone {
		t.Errorf("Status = %q, want done", task.Status)
	}

	var count int
	store.db.QueryRow(`SELECT COUNT(*) FROM task_history
		WHERE task_id = ? AND action = 'status_change' AND new_status = 'done'`, taskID).Scan(&count)
	if count != 1 {
		t.Errorf("status_change history entries = %d, want 1", count)
	}
}

func TestChangeStatus_InvalidIsSilentNoop(t *testing.T) {
	store := newTestStore(t)

	projectID, _ := store.CreateProject("Launch", domain.ProjectActive)
	taskID, _ := store.CreateTask(&domain.Task{Title: "Ship it", ProjectID: projectID})

	tests := []struct {
		name   string
		id     int64
		status string
	}{
		{"unknown status", taskID, "cancelled"},
		{"empty status", taskID, ""},
		{"uppercase status", taskID, "DONE"},
		{"zero id", 0, "done"},
		{"negative id", -3, "done"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := store.ChangeStatus(tt.id, tt.status)
			if err != nil {
				t.Fatalf("error = %v, want nil", err)
			}
			if msg != "" {
				t.Errorf("confirmation = %q, want empty", msg)
			}
		})
	}

	task, _ := store.GetTask(taskID)
	if task.Status != domain.StatusTodo {
		t.Errorf("Status = %q, want todo (unchanged)", task.Status)
	}

	var count int
	store.db.QueryRow(`SELECT COUNT(*) FROM task_history WHERE action = 'status_change'`).Scan(&count)
	if count != 0 {
		t.Errorf("status_change history entries = %d, want 0", count)
	}
}

func TestCreateTask_RequiresProject(t *testing.T) {
	store := newTestStore(t)

	_, err := store.CreateTask(&domain.Task{Title: "Orphan"})
	if err == nil {
		t.Error("CreateTask without project: error = nil, want project required")
	}
}

func TestCreateTask_LogsCreation(t *testing.T) {
	store := newTestStore(t)

	projectID, _ := store.CreateProject("Launch", domain.ProjectActive)
	taskID, err := store.CreateTask(&domain.Task{
		Title:     "Write docs",
		ProjectID: projectID,
		Priority:  domain.PriorityHigh,
		DueDate:   "2026-09-15",
	})
	if err != nil {
		t.Fatal(err)
	}

	task, _ := store.GetTask(taskID)
	if task == nil {
		t.Fatal("task not found after create")
	}
	if task.Status != domain.StatusTodo {
		t.Errorf("Status = %q, want todo", task.Status)
	}
	if task.Priority != domain.PriorityHigh {
		t.Errorf("Priority = %q, want high", task.Priority)
	}
	if task.DueDate != "2026-09-15" {
		t.Errorf("DueDate = %q, want 2026-09-15", task.DueDate)
	}

	entries, _ := store.RecentActivity(5)
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if entries[0].Action != domain.ActionCreated {
		t.Errorf("Action = %q, want created", entries[0].Action)
	}
}

func TestAssignAndCompleteLifecycle(t *testing.T) {
	store := newTestStore(t)

	agentID, _ := store.CreateAgent("Ada Lovelace", "dev")
	projectID, _ := store.CreateProject("Launch", domain.ProjectActive)
	taskID, _ := store.CreateTask(&domain.Task{Title: "Build", ProjectID: projectID})

	if err := store.AssignTask(taskID, agentID); err != nil {
		t.Fatal(err)
	}

	agents, _ := store.Agents()
	if agents[0].Status != domain.AgentActive {
		t.Errorf("agent status after assign = %q, want active", agents[0].Status)
	}

	if err := store.StartTask(taskID); err != nil {
		t.Fatal(err)
	}
	task, _ := store.GetTask(taskID)
	if task.Status != domain.StatusInProgress {
		t.Errorf("status after start = %q, want in_progress", task.Status)
	}
	if task.StartedAt == nil {
		t.Error("StartedAt not set after start")
	}

	if err := store.CompleteTask(taskID); err != nil {
		t.Fatal(err)
	}
	task, _ = store.GetTask(taskID)
	if task.Status != domain.StatusDone {
		t.Errorf("status after complete = %q, want done", task.Status)
	}
	if task.Progress != 100 {
		t.Errorf("progress after complete = %d, want 100", task.Progress)
	}

	agents, _ = store.Agents()
	if agents[0].Status != domain.AgentIdle {
		t.Errorf("agent status after complete = %q, want idle", agents[0].Status)
	}
	if agents[0].TasksCompleted != 1 {
		t.Errorf("TasksCompleted = %d, want 1", agents[0].TasksCompleted)
	}
}

func TestSendToReview_RequiresInProgress(t *testing.T) {
	store := newTestStore(t)

	projectID, _ := store.CreateProject("Launch", domain.ProjectActive)
	taskID, _ := store.CreateTask(&domain.Task{Title: "Build", ProjectID: projectID})

	if err := store.SendToReview(taskID); err == nil {
		t.Error("SendToReview on todo task: error = nil, want refusal")
	}

	store.StartTask(taskID)
	if err := store.SendToReview(taskID); err != nil {
		t.Errorf("SendToReview on in_progress task: error = %v", err)
	}

	task, _ := store.GetTask(taskID)
	if task.Status != domain.StatusReview {
		t.Errorf("status = %q, want review", task.Status)
	}
}

func TestBlockAndUnblock(t *testing.T) {
	store := newTestStore(t)

	agentID, _ := store.CreateAgent("Ada Lovelace", "dev")
	projectID, _ := store.CreateProject("Launch", domain.ProjectActive)
	taskID, _ := store.CreateTask(&domain.Task{Title: "Build", ProjectID: projectID})
	store.AssignTask(taskID, agentID)
	store.StartTask(taskID)

	if err := store.BlockTask(taskID, "waiting on API keys"); err != nil {
		t.Fatal(err)
	}
	task, _ := store.GetTask(taskID)
	if task.Status != domain.StatusBlocked {
		t.Errorf("status = %q, want blocked", task.Status)
	}
	if task.BlockedReason != "waiting on API keys" {
		t.Errorf("BlockedReason = %q, want waiting on API keys", task.BlockedReason)
	}

	agents, _ := store.Agents()
	if agents[0].Status != domain.AgentBlocked {
		t.Errorf("agent status = %q, want blocked", agents[0].Status)
	}

	if err := store.UnblockTask(taskID); err != nil {
		t.Fatal(err)
	}
	task, _ = store.GetTask(taskID)
	if task.Status != domain.StatusInProgress {
		t.Errorf("status after unblock = %q, want in_progress", task.Status)
	}

	// Unblocking a task that is not blocked is an error
	if err := store.UnblockTask(taskID); err == nil {
		t.Error("UnblockTask on in_progress task: error = nil, want refusal")
	}
}

func TestUpdateProgress(t *testing.T) {
	store := newTestStore(t)

	projectID, _ := store.CreateProject("Launch", domain.ProjectActive)
	taskID, _ := store.CreateTask(&domain.Task{Title: "Build", ProjectID: projectID})

	if err := store.UpdateProgress(taskID, 40, "halfway through parsing"); err != nil {
		t.Fatal(err)
	}

	task, _ := store.GetTask(taskID)
	if task.Progress != 40 {
		t.Errorf("Progress = %d, want 40", task.Progress)
	}
	if task.Notes != "halfway through parsing" {
		t.Errorf("Notes = %q, want halfway through parsing", task.Notes)
	}

	entries, _ := store.RecentActivity(5)
	var found bool
	for _, e := range entries {
		if e.Action == domain.ActionUpdated && e.NewProgress != nil && *e.NewProgress == 40 {
			found = true
			if e.OldProgress == nil || *e.OldProgress != 0 {
				t.Errorf("OldProgress = %v, want 0", e.OldProgress)
			}
		}
	}
	if !found {
		t.Error("progress update not recorded in history")
	}
}

func TestHeartbeat(t *testing.T) {
	store := newTestStore(t)

	agentID, _ := store.CreateAgent("Ada Lovelace", "dev")

	if err := store.Heartbeat(agentID); err != nil {
		t.Fatal(err)
	}

	agents, _ := store.Agents()
	if agents[0].LastHeartbeat == nil {
		t.Error("LastHeartbeat not set after heartbeat")
	}

	if err := store.Heartbeat(999); err == nil {
		t.Error("Heartbeat for unknown agent: error = nil, want not found")
	}
}

func TestCompletedOn_FiltersByDate(t *testing.T) {
	store := newTestStore(t)

	agentID, _ := store.CreateAgent("Ada Lovelace", "dev")
	projectID, _ := store.CreateProject("Launch", domain.ProjectActive)
	taskID, _ := store.CreateTask(&domain.Task{Title: "Build", ProjectID: projectID})
	store.AssignTask(taskID, agentID)
	store.StartTask(taskID)
	if err := store.CompleteTask(taskID); err != nil {
		t.Fatal(err)
	}

	today, err := store.CompletedOn(time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if len(today) != 1 {
		t.Fatalf("CompletedOn(today) = %d tasks, want 1", len(today))
	}
	if today[0].Title != "Build" || today[0].AssigneeName != "Ada Lovelace" {
		t.Errorf("task = %q by %q, want Build by Ada Lovelace", today[0].Title, today[0].AssigneeName)
	}

	yesterday, err := store.CompletedOn(time.Now().AddDate(0, 0, -1))
	if err != nil {
		t.Fatal(err)
	}
	if len(yesterday) != 0 {
		t.Errorf("CompletedOn(yesterday) = %d tasks, want 0", len(yesterday))
	}
}
