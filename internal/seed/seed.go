// Package seed imports agents, projects, and tasks from a YAML file into
// an empty or existing team database.
package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hochfrequenz/team-board/internal/domain"
)

// File is the root of a seed document
type File struct {
	Agents   []Agent   `yaml:"agents"`
	Projects []Project `yaml:"projects"`
	Tasks    []Task    `yaml:"tasks"`
}

// Agent declares an agent to create
type Agent struct {
	Name string `yaml:"name"`
	Role string `yaml:"role"`
}

// Project declares a project to create
type Project struct {
	Name   string `yaml:"name"`
	Status string `yaml:"status"`
}

// Task declares a task to create. Project and Assignee reference the
// names declared above.
type Task struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Priority    string `yaml:"priority"`
	Project     string `yaml:"project"`
	Assignee    string `yaml:"assignee"`
	DueDate     string `yaml:"due_date"`
}

// Store is the subset of the task store seeding writes through
type Store interface {
	CreateAgent(name, role string) (int64, error)
	CreateProject(name string, status domain.ProjectStatus) (int64, error)
	CreateTask(t *domain.Task) (int64, error)
	AssignTask(taskID, agentID int64) error
}

// Result counts what a seed run created
type Result struct {
	Agents   int
	Projects int
	Tasks    int
}

// Parse decodes a seed document
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}
	return &f, nil
}

// Load reads and decodes a seed file from disk
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Apply creates everything the file declares. Tasks referencing an
// unknown project or assignee fail the run.
func Apply(store Store, f *File) (*Result, error) {
	result := &Result{}

	agentIDs := map[string]int64{}
	for _, a := range f.Agents {
		if a.Name == "" {
			return result, fmt.Errorf("agent %d: name is required", result.Agents+1)
		}
		id, err := store.CreateAgent(a.Name, a.Role)
		if err != nil {
			return result, fmt.Errorf("creating agent %q: %w", a.Name, err)
		}
		agentIDs[a.Name] = id
		result.Agents++
	}

	projectIDs := map[string]int64{}
	for _, p := range f.Projects {
		if p.Name == "" {
			return result, fmt.Errorf("project %d: name is required", result.Projects+1)
		}
		id, err := store.CreateProject(p.Name, domain.ProjectStatus(p.Status))
		if err != nil {
			return result, fmt.Errorf("creating project %q: %w", p.Name, err)
		}
		projectIDs[p.Name] = id
		result.Projects++
	}

	for _, t := range f.Tasks {
		projectID, ok := projectIDs[t.Project]
		if !ok {
			return result, fmt.Errorf("task %q: unknown project %q", t.Title, t.Project)
		}

		task := &domain.Task{
			Title:       t.Title,
			Description: t.Description,
			Priority:    domain.Priority(t.Priority),
			ProjectID:   projectID,
			DueDate:     t.DueDate,
		}
		id, err := store.CreateTask(task)
		if err != nil {
			return result, fmt.Errorf("creating task %q: %w", t.Title, err)
		}
		result.Tasks++

		if t.Assignee != "" {
			agentID, ok := agentIDs[t.Assignee]
			if !ok {
				return result, fmt.Errorf("task %q: unknown assignee %q", t.Title, t.Assignee)
			}
			if err := store.AssignTask(id, agentID); err != nil {
				return result, fmt.Errorf("assigning task %q: %w", t.Title, err)
			}
		}
	}

	return result, nil
}
