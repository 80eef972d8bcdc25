package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/hochfrequenz/team-board/internal/dashboard"
	"github.com/hochfrequenz/team-board/internal/domain"
)

var (
	taskDescription string
	taskPriority    string
	taskProject     int64
	taskAssignee    int64
	taskDue         string
	progressNotes   string
	projectStatus   string
)

func init() {
	// task command group
	taskCmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}

	createCmd := &cobra.Command{
		Use:   "create TITLE",
		Short: "Create a task",
		Args:  cobra.ExactArgs(1),
		RunE:  runTaskCreate,
	}
	createCmd.Flags().StringVar(&taskDescription, "description", "", "task description")
	createCmd.Flags().StringVar(&taskPriority, "priority", "normal", "critical, high, normal or low")
	createCmd.Flags().Int64Var(&taskProject, "project", 0, "project id (required)")
	createCmd.Flags().Int64Var(&taskAssignee, "assignee", 0, "agent id")
	createCmd.Flags().StringVar(&taskDue, "due", "", "due date (YYYY-MM-DD)")
	taskCmd.AddCommand(createCmd)

	taskCmd.AddCommand(&cobra.Command{
		Use:   "assign TASK AGENT",
		Short: "Assign a task to an agent",
		Args:  cobra.ExactArgs(2),
		RunE:  runTaskAssign,
	})
	taskCmd.AddCommand(&cobra.Command{
		Use:   "start TASK",
		Short: "Move a task to in_progress",
		Args:  cobra.ExactArgs(1),
		RunE:  runTaskStart,
	})
	taskCmd.AddCommand(&cobra.Command{
		Use:   "review TASK",
		Short: "Send a task to review",
		Args:  cobra.ExactArgs(1),
		RunE:  runTaskReview,
	})

	progressCmd := &cobra.Command{
		Use:   "progress TASK PERCENT",
		Short: "Update task progress",
		Args:  cobra.ExactArgs(2),
		RunE:  runTaskProgress,
	}
	progressCmd.Flags().StringVar(&progressNotes, "notes", "", "progress notes")
	taskCmd.AddCommand(progressCmd)

	taskCmd.AddCommand(&cobra.Command{
		Use:   "done TASK",
		Short: "Complete a task",
		Args:  cobra.ExactArgs(1),
		RunE:  runTaskDone,
	})
	taskCmd.AddCommand(&cobra.Command{
		Use:   "block TASK REASON",
		Short: "Block a task",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runTaskBlock,
	})
	taskCmd.AddCommand(&cobra.Command{
		Use:   "unblock TASK",
		Short: "Unblock a task",
		Args:  cobra.ExactArgs(1),
		RunE:  runTaskUnblock,
	})
	taskCmd.AddCommand(&cobra.Command{
		Use:   "show TASK",
		Short: "Show task details",
		Args:  cobra.ExactArgs(1),
		RunE:  runTaskShow,
	})
	rootCmd.AddCommand(taskCmd)

	// agent command group
	agentCmd := &cobra.Command{
		Use:   "agent",
		Short: "Manage agents",
	}
	agentCmd.AddCommand(&cobra.Command{
		Use:   "create NAME ROLE",
		Short: "Register an agent",
		Args:  cobra.ExactArgs(2),
		RunE:  runAgentCreate,
	})
	agentCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List agents",
		RunE:  runAgentList,
	})
	agentCmd.AddCommand(&cobra.Command{
		Use:   "heartbeat AGENT",
		Short: "Record an agent heartbeat",
		Args:  cobra.ExactArgs(1),
		RunE:  runAgentHeartbeat,
	})
	rootCmd.AddCommand(agentCmd)

	// project command group
	projectCmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}
	projectCreateCmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a project",
		Args:  cobra.ExactArgs(1),
		RunE:  runProjectCreate,
	}
	projectCreateCmd.Flags().StringVar(&projectStatus, "status", "active", "planning, active, done or cancelled")
	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE:  runProjectList,
	})
	rootCmd.AddCommand(projectCmd)
}

func parseID(arg, kind string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", kind, arg)
	}
	return id, nil
}

func runTaskCreate(cmd *cobra.Command, args []string) error {
	store, _, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if taskDue != "" {
		if _, err := time.Parse("2006-01-02", taskDue); err != nil {
			return fmt.Errorf("invalid due date %q: %w", taskDue, err)
		}
	}

	task := &domain.Task{
		Title:       args[0],
		Description: taskDescription,
		Priority:    domain.Priority(taskPriority),
		ProjectID:   taskProject,
		AssigneeID:  taskAssignee,
		DueDate:     taskDue,
	}
	id, err := store.CreateTask(task)
	if err != nil {
		return err
	}

	fmt.Printf("Created task #%d: %s\n", id, task.Title)
	return nil
}

func runTaskAssign(cmd *cobra.Command, args []string) error {
	store, _, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	taskID, err := parseID(args[0], "task")
	if err != nil {
		return err
	}
	agentID, err := parseID(args[1], "agent")
	if err != nil {
		return err
	}

	if err := store.AssignTask(taskID, agentID); err != nil {
		return err
	}
	fmt.Printf("Task #%d assigned to agent #%d\n", taskID, agentID)
	return nil
}

func runTaskStart(cmd *cobra.Command, args []string) error {
	return taskTransition(args[0], "started", func(s taskStore, id int64) error {
		return s.StartTask(id)
	})
}

func runTaskReview(cmd *cobra.Command, args []string) error {
	return taskTransition(args[0], "sent to review", func(s taskStore, id int64) error {
		return s.SendToReview(id)
	})
}

func runTaskDone(cmd *cobra.Command, args []string) error {
	return taskTransition(args[0], "completed", func(s taskStore, id int64) error {
		return s.CompleteTask(id)
	})
}

func runTaskUnblock(cmd *cobra.Command, args []string) error {
	return taskTransition(args[0], "unblocked", func(s taskStore, id int64) error {
		return s.UnblockTask(id)
	})
}

// taskStore is the slice of the store the single-task transitions need
type taskStore interface {
	StartTask(taskID int64) error
	SendToReview(taskID int64) error
	CompleteTask(taskID int64) error
	UnblockTask(taskID int64) error
}

func taskTransition(arg, verb string, fn func(taskStore, int64) error) error {
	store, _, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := parseID(arg, "task")
	if err != nil {
		return err
	}
	if err := fn(store, id); err != nil {
		return err
	}
	fmt.Printf("Task #%d %s\n", id, verb)
	return nil
}

func runTaskProgress(cmd *cobra.Command, args []string) error {
	store, _, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := parseID(args[0], "task")
	if err != nil {
		return err
	}
	pct, err := strconv.Atoi(args[1])
	if err != nil || pct < 0 || pct > 100 {
		return fmt.Errorf("invalid progress %q: want 0-100", args[1])
	}

	if err := store.UpdateProgress(id, pct, progressNotes); err != nil {
		return err
	}
	fmt.Printf("Task #%d progress set to %d%%\n", id, pct)
	return nil
}

func runTaskBlock(cmd *cobra.Command, args []string) error {
	store, _, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := parseID(args[0], "task")
	if err != nil {
		return err
	}

	reason := args[1]
	for _, part := range args[2:] {
		reason += " " + part
	}

	if err := store.BlockTask(id, reason); err != nil {
		return err
	}
	fmt.Printf("Task #%d blocked: %s\n", id, reason)
	return nil
}

func runTaskShow(cmd *cobra.Command, args []string) error {
	store, _, err := openStoreReadOnly()
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := parseID(args[0], "task")
	if err != nil {
		return err
	}
	task, err := store.GetTask(id)
	if err != nil {
		return err
	}

	fmt.Printf("#%d %s\n", task.ID, task.Title)
	fmt.Printf("Status: %s | Priority: %s | Progress: %d%%\n",
		task.Status, task.Priority, task.Progress)
	fmt.Printf("Project: %s | Assignee: %s | Due: %s\n",
		orDash(task.ProjectName), orDash(task.AssigneeName), orDash(task.DueDate))
	if task.Description != "" {
		fmt.Printf("Description: %s\n", task.Description)
	}
	if task.BlockedReason != "" {
		fmt.Printf("Blocked: %s\n", task.BlockedReason)
	}
	if task.Notes != "" {
		fmt.Printf("Notes: %s\n", task.Notes)
	}
	fmt.Printf("Age: %s\n", dashboard.ElapsedSince(task.CreatedAt))
	return nil
}

func runAgentCreate(cmd *cobra.Command, args []string) error {
	store, _, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := store.CreateAgent(args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Printf("Created agent #%d: %s (%s)\n", id, args[0], args[1])
	return nil
}

func runAgentList(cmd *cobra.Command, args []string) error {
	store, _, err := openStoreReadOnly()
	if err != nil {
		return err
	}
	defer store.Close()

	agents, err := store.Agents()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tROLE\tSTATUS\tACTIVE\tDONE\tHEARTBEAT")
	for _, a := range agents {
		heartbeat := "-"
		if a.LastHeartbeat != nil {
			heartbeat = dashboard.RelativeTime(*a.LastHeartbeat)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\t%s\n",
			a.ID, a.Name, a.Role, a.Status, a.ActiveTasks, a.TasksCompleted, heartbeat)
	}
	w.Flush()

	return nil
}

func runAgentHeartbeat(cmd *cobra.Command, args []string) error {
	store, _, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := parseID(args[0], "agent")
	if err != nil {
		return err
	}
	if err := store.Heartbeat(id); err != nil {
		return err
	}
	fmt.Printf("Heartbeat recorded for agent #%d\n", id)
	return nil
}

func runProjectCreate(cmd *cobra.Command, args []string) error {
	store, _, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := store.CreateProject(args[0], domain.ProjectStatus(projectStatus))
	if err != nil {
		return err
	}
	fmt.Printf("Created project #%d: %s\n", id, args[0])
	return nil
}

func runProjectList(cmd *cobra.Command, args []string) error {
	store, _, err := openStoreReadOnly()
	if err != nil {
		return err
	}
	defer store.Close()

	projects, err := store.Projects()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTATUS\tTASKS\tDONE\tBLOCKED\tPROGRESS")
	for _, p := range projects {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%d\t%d%%\n",
			p.ID, p.Name, p.Status, p.TotalTasks, p.CompletedTasks,
			p.BlockedTasks, p.ProgressPct)
	}
	w.Flush()

	return nil
}
