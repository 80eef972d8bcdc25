package assign

import (
	"testing"

	"github.com/hochfrequenz/team-board/internal/domain"
)

type fakeStore struct {
	agents     []domain.Agent
	tasks      []domain.Task
	assigned   []domain.Task
	inProgress map[int64]int

	assignCalls   [][2]int64 // taskID, agentID
	startCalls    []int64
	activateCalls [][2]int64 // agentID, taskID
}

func (f *fakeStore) IdleAgents() ([]domain.Agent, error)           { return f.agents, nil }
func (f *fakeStore) UnassignedTodoTasks() ([]domain.Task, error)   { return f.tasks, nil }
func (f *fakeStore) AssignedIdleTodoTasks() ([]domain.Task, error) { return f.assigned, nil }

func (f *fakeStore) InProgressCount(agentID int64) (int, error) {
	return f.inProgress[agentID], nil
}

func (f *fakeStore) AssignTask(taskID, agentID int64) error {
	f.assignCalls = append(f.assignCalls, [2]int64{taskID, agentID})
	return nil
}

func (f *fakeStore) StartTask(taskID int64) error {
	f.startCalls = append(f.startCalls, taskID)
	return nil
}

func (f *fakeStore) ActivateAgent(agentID, taskID int64) error {
	f.activateCalls = append(f.activateCalls, [2]int64{agentID, taskID})
	return nil
}

func TestScore_KeywordRoleMatch(t *testing.T) {
	task := domain.Task{Title: "Fix frontend login form", Description: "UI glitch on submit"}
	designer := domain.Agent{Role: "ux-designer"}
	writer := domain.Agent{Role: "tech-writer"}

	// "frontend" and "ui" both match ux-designer
	if got := Score(task, designer, 0); got != 20 {
		t.Errorf("Score(designer) = %d, want 20", got)
	}
	if got := Score(task, writer, 0); got != 0 {
		t.Errorf("Score(writer) = %d, want 0", got)
	}
}

func TestScore_BusyPenalty(t *testing.T) {
	task := domain.Task{Title: "Write test plan"}
	qa := domain.Agent{Role: "qa"}

	idle := Score(task, qa, 0)
	busy := Score(task, qa, 2)
	if busy != idle-10 {
		t.Errorf("Score with 2 in-progress = %d, want %d", busy, idle-10)
	}
}

func TestFindBestAgent_PrefersRoleMatch(t *testing.T) {
	store := &fakeStore{inProgress: map[int64]int{}}
	engine := NewEngine(store)

	task := domain.Task{Title: "Document the API"}
	agents := []domain.Agent{
		{ID: 1, Name: "dana", Role: "qa"},
		{ID: 2, Name: "wren", Role: "tech-writer"},
	}

	best, err := engine.FindBestAgent(task, agents)
	if err != nil {
		t.Fatal(err)
	}
	if best == nil || best.ID != 2 {
		t.Errorf("FindBestAgent = %v, want agent 2 (tech-writer)", best)
	}
}

func TestFindBestAgent_EmptyPool(t *testing.T) {
	engine := NewEngine(&fakeStore{inProgress: map[int64]int{}})
	best, err := engine.FindBestAgent(domain.Task{Title: "anything"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if best != nil {
		t.Errorf("FindBestAgent with empty pool = %v, want nil", best)
	}
}

func TestRun_AssignsAndRemovesAgentFromPool(t *testing.T) {
	store := &fakeStore{
		agents: []domain.Agent{
			{ID: 1, Name: "dana", Role: "qa"},
			{ID: 2, Name: "mo", Role: "dev"},
		},
		tasks: []domain.Task{
			{ID: 10, Title: "Review pull request"},
			{ID: 11, Title: "Implement backend endpoint"},
			{ID: 12, Title: "A third task with no takers"},
		},
		inProgress: map[int64]int{},
	}
	engine := NewEngine(store)

	result, err := engine.Run()
	if err != nil {
		t.Fatal(err)
	}
	if result.Assigned != 2 {
		t.Errorf("Assigned = %d, want 2", result.Assigned)
	}
	if len(store.assignCalls) != 2 {
		t.Fatalf("assign calls = %d, want 2", len(store.assignCalls))
	}
	// "review" matches qa, "backend" matches dev
	if store.assignCalls[0] != [2]int64{10, 1} {
		t.Errorf("first assignment = %v, want task 10 -> agent 1", store.assignCalls[0])
	}
	if store.assignCalls[1] != [2]int64{11, 2} {
		t.Errorf("second assignment = %v, want task 11 -> agent 2", store.assignCalls[1])
	}
}

func TestRun_FallsBackToFirstAgent(t *testing.T) {
	store := &fakeStore{
		agents:     []domain.Agent{{ID: 5, Name: "sam", Role: "pm"}},
		tasks:      []domain.Task{{ID: 20, Title: "Untitled chore"}},
		inProgress: map[int64]int{},
	}
	engine := NewEngine(store)

	result, err := engine.Run()
	if err != nil {
		t.Fatal(err)
	}
	if result.Assigned != 1 {
		t.Errorf("Assigned = %d, want 1", result.Assigned)
	}
}

func TestRun_StartsAssignedIdleTasks(t *testing.T) {
	store := &fakeStore{
		assigned: []domain.Task{
			{ID: 30, Title: "Queued work", AssigneeID: 7},
		},
		inProgress: map[int64]int{},
	}
	engine := NewEngine(store)

	result, err := engine.Run()
	if err != nil {
		t.Fatal(err)
	}
	if result.Started != 1 {
		t.Errorf("Started = %d, want 1", result.Started)
	}
	if len(store.startCalls) != 1 || store.startCalls[0] != 30 {
		t.Errorf("start calls = %v, want [30]", store.startCalls)
	}
	if len(store.activateCalls) != 1 || store.activateCalls[0] != [2]int64{7, 30} {
		t.Errorf("activate calls = %v, want [[7 30]]", store.activateCalls)
	}
}

func TestResult_Summary(t *testing.T) {
	r := &Result{Assigned: 1, Started: 2, Pairs: []Pair{{TaskID: 4, TaskTitle: "Ship it", Agent: "mo"}}}
	got := r.Summary()
	want := "Assigned 1, started 2\n  #4 Ship it -> mo"
	if got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}
}
