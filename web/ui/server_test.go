package ui

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/hochfrequenz/team-board/internal/domain"
	"github.com/hochfrequenz/team-board/internal/teamstore"
)

func newTestServer(t *testing.T) (*Server, *teamstore.Store) {
	t.Helper()
	store, err := teamstore.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return NewServer(store, store, 60, 30), store
}

func get(t *testing.T, srv *Server, path string) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	resp := rec.Result()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func postForm(t *testing.T, srv *Server, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	resp := rec.Result()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func TestServer_KanbanEmptyDatabase(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := get(t, srv, "/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET / status = %d, want 200", resp.StatusCode)
	}
	for _, want := range []string{"Task Kanban Board (0 tasks)", "Agents (0)", "Projects (0)"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestServer_TableView(t *testing.T) {
	srv, store := newTestServer(t)

	projectID, err := store.CreateProject("Website", domain.ProjectActive)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.CreateTask(&domain.Task{Title: "Build login form", ProjectID: projectID}); err != nil {
		t.Fatal(err)
	}

	_, body := get(t, srv, "/table")
	for _, want := range []string{"All Tasks (1)", "Build login form", "Website", `content="30"`} {
		if !strings.Contains(body, want) {
			t.Errorf("table body missing %q", want)
		}
	}
}

func TestServer_UpdateStatus(t *testing.T) {
	srv, store := newTestServer(t)

	projectID, err := store.CreateProject("Website", domain.ProjectActive)
	if err != nil {
		t.Fatal(err)
	}
	taskID, err := store.CreateTask(&domain.Task{Title: "Build login form", ProjectID: projectID})
	if err != nil {
		t.Fatal(err)
	}

	_, body := postForm(t, srv, "/", url.Values{
		"action":     {"update_status"},
		"task_id":    {"1"},
		"new_status": {"done"},
	})

	if !strings.Contains(body, "Task #1 moved to DONE") {
		t.Error("confirmation message not rendered")
	}

	task, err := store.GetTask(taskID)
	if err != nil {
		t.Fatal(err)
	}
	if task.Status != domain.StatusDone {
		t.Errorf("task status = %s, want done", task.Status)
	}
}

func TestServer_UpdateStatusInvalidIsSilent(t *testing.T) {
	srv, store := newTestServer(t)

	projectID, _ := store.CreateProject("Website", domain.ProjectActive)
	store.CreateTask(&domain.Task{Title: "Task", ProjectID: projectID})

	resp, body := postForm(t, srv, "/", url.Values{
		"action":     {"update_status"},
		"task_id":    {"1"},
		"new_status": {"exploded"},
	})

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if strings.Contains(body, `<div class="success-message">`) {
		t.Error("invalid status rendered a confirmation")
	}
	if strings.Contains(body, "moved to") {
		t.Error("invalid status rendered a confirmation message")
	}
	if strings.Contains(body, `class="error"`) {
		t.Error("invalid status rendered an error panel")
	}

	task, err := store.GetTask(1)
	if err != nil {
		t.Fatal(err)
	}
	if task.Status != domain.StatusTodo {
		t.Errorf("task status = %s, want todo (unchanged)", task.Status)
	}
}

func TestServer_UnknownPathIs404(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := get(t, srv, "/nope")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET /nope status = %d, want 404", resp.StatusCode)
	}
}

func TestServer_ListenAndServeCleanShutdown(t *testing.T) {
	srv, _ := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx, "127.0.0.1:0") }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe() after cancel = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("ListenAndServe() did not return after context cancel")
	}
}
