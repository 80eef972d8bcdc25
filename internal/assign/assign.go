// Package assign hands unassigned todo tasks to idle agents based on
// keyword/role matching and per-agent load.
package assign

import (
	"fmt"
	"log"
	"strings"

	"github.com/hochfrequenz/team-board/internal/domain"
)

// roleMatch maps task keywords to the agent roles suited for them
var roleMatch = map[string][]string{
	"dev":      {"dev", "solo-dev"},
	"frontend": {"dev", "ux-designer"},
	"backend":  {"dev", "architect"},
	"database": {"architect", "dev"},
	"api":      {"dev", "architect"},
	"ui":       {"ux-designer"},
	"ux":       {"ux-designer"},
	"test":     {"qa"},
	"qa":       {"qa"},
	"doc":      {"tech-writer"},
	"document": {"tech-writer"},
	"design":   {"ux-designer"},
	"plan":     {"pm", "analyst"},
	"analyze":  {"analyst"},
	"review":   {"qa"},
}

const (
	roleMatchBonus = 10
	busyPenalty    = 5
)

// Store is the subset of the task store the engine needs
type Store interface {
	IdleAgents() ([]domain.Agent, error)
	UnassignedTodoTasks() ([]domain.Task, error)
	AssignedIdleTodoTasks() ([]domain.Task, error)
	InProgressCount(agentID int64) (int, error)
	AssignTask(taskID, agentID int64) error
	StartTask(taskID int64) error
	ActivateAgent(agentID, taskID int64) error
}

// Pair records one task-to-agent assignment made in a run
type Pair struct {
	TaskID    int64
	TaskTitle string
	Agent     string
}

// Result summarizes one auto-assign run
type Result struct {
	Assigned int
	Started  int
	Pairs    []Pair
}

// Engine runs the auto-assign cycle against a store
type Engine struct {
	store Store
}

// NewEngine creates an auto-assign engine
func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// Score rates how well an agent fits a task. Keyword/role matches add
// points, in-progress work subtracts them.
func Score(task domain.Task, agent domain.Agent, inProgress int) int {
	text := strings.ToLower(task.Title) + " " + strings.ToLower(task.Description)
	role := strings.ToLower(agent.Role)

	score := 0
	for keyword, roles := range roleMatch {
		if !strings.Contains(text, keyword) {
			continue
		}
		for _, r := range roles {
			if r == role {
				score += roleMatchBonus
				break
			}
		}
	}
	return score - inProgress*busyPenalty
}

// FindBestAgent picks the highest-scoring agent for a task. Returns nil
// when no agent scores above -1; callers fall back to the least-loaded
// idle agent in that case.
func (e *Engine) FindBestAgent(task domain.Task, agents []domain.Agent) (*domain.Agent, error) {
	var best *domain.Agent
	bestScore := -1

	for i := range agents {
		inProgress, err := e.store.InProgressCount(agents[i].ID)
		if err != nil {
			return nil, err
		}
		if score := Score(task, agents[i], inProgress); score > bestScore {
			bestScore = score
			best = &agents[i]
		}
	}
	return best, nil
}

// Run performs one auto-assign cycle: matches unassigned todo tasks to
// idle agents, then starts todo tasks whose assignee is idle.
func (e *Engine) Run() (*Result, error) {
	agents, err := e.store.IdleAgents()
	if err != nil {
		return nil, fmt.Errorf("listing idle agents: %w", err)
	}
	tasks, err := e.store.UnassignedTodoTasks()
	if err != nil {
		return nil, fmt.Errorf("listing unassigned tasks: %w", err)
	}

	result := &Result{}

	for _, task := range tasks {
		if len(agents) == 0 {
			break
		}

		best, err := e.FindBestAgent(task, agents)
		if err != nil {
			return nil, err
		}
		if best == nil {
			best = &agents[0]
		}

		if err := e.store.AssignTask(task.ID, best.ID); err != nil {
			log.Printf("assign task %d to agent %d failed: %v", task.ID, best.ID, err)
			continue
		}

		result.Assigned++
		result.Pairs = append(result.Pairs, Pair{TaskID: task.ID, TaskTitle: task.Title, Agent: best.Name})

		// Remove the agent from the pool for this cycle
		remaining := agents[:0]
		for _, a := range agents {
			if a.ID != best.ID {
				remaining = append(remaining, a)
			}
		}
		agents = remaining
	}

	started, err := e.startAssigned()
	if err != nil {
		return nil, err
	}
	result.Started = started

	return result, nil
}

// startAssigned starts todo tasks that already have an idle assignee
func (e *Engine) startAssigned() (int, error) {
	tasks, err := e.store.AssignedIdleTodoTasks()
	if err != nil {
		return 0, fmt.Errorf("listing assigned tasks: %w", err)
	}

	started := 0
	for _, task := range tasks {
		if err := e.store.StartTask(task.ID); err != nil {
			log.Printf("start task %d failed: %v", task.ID, err)
			continue
		}
		if err := e.store.ActivateAgent(task.AssigneeID, task.ID); err != nil {
			log.Printf("activate agent %d failed: %v", task.AssigneeID, err)
			continue
		}
		started++
	}
	return started, nil
}

// Summary renders a run result as a short human-readable message
func (r *Result) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Assigned %d, started %d", r.Assigned, r.Started)
	for _, p := range r.Pairs {
		fmt.Fprintf(&b, "\n  #%d %s -> %s", p.TaskID, p.TaskTitle, p.Agent)
	}
	return b.String()
}
