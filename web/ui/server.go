package ui

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/hochfrequenz/team-board/internal/dashboard"
)

// Mutator is the write path the dashboard exposes: a single form-based
// status change
type Mutator interface {
	ChangeStatus(id int64, status string) (string, error)
}

// Server serves the kanban and table dashboard variants
type Server struct {
	reader        dashboard.Reader
	mutator       Mutator
	renderer      *Renderer
	kanbanRefresh int
	tableRefresh  int
	mux           *http.ServeMux
}

// NewServer creates a dashboard server. Refresh intervals are the
// meta-refresh seconds per view variant.
func NewServer(reader dashboard.Reader, mutator Mutator, kanbanRefresh, tableRefresh int) *Server {
	s := &Server{
		reader:        reader,
		mutator:       mutator,
		renderer:      NewRenderer(),
		kanbanRefresh: kanbanRefresh,
		tableRefresh:  tableRefresh,
		mux:           http.NewServeMux(),
	}
	s.mux.HandleFunc("/", s.kanbanHandler)
	s.mux.HandleFunc("/table", s.tableHandler)
	return s
}

// Handler returns the HTTP handler for the dashboard
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe runs the server until the context is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.mux}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) kanbanHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.renderPage(w, r, s.kanbanRefresh, "Team Board - Kanban", s.renderer.RenderKanban, "")
}

func (s *Server) tableHandler(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, s.tableRefresh, "Team Board - Tasks", s.renderer.RenderTable,
		r.URL.Query().Get("sort"))
}

// renderPage handles the optional status-change POST, loads a fresh
// snapshot, and renders the requested variant. The page always renders:
// mutation and load failures show up as an error panel, invalid mutation
// input is silently ignored.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, refresh int, title string,
	render func(w io.Writer, p *Page) error, sortKey string) {

	var message, errText string

	if r.Method == http.MethodPost && r.FormValue("action") == "update_status" && s.mutator != nil {
		taskID, _ := strconv.ParseInt(r.FormValue("task_id"), 10, 64)
		newStatus := r.FormValue("new_status")
		msg, err := s.mutator.ChangeStatus(taskID, newStatus)
		if err != nil {
			errText = err.Error()
		} else {
			message = msg
		}
	}

	page := &Page{Title: title, RefreshSeconds: refresh}
	snap, err := dashboard.Load(s.reader)
	if err != nil {
		page.Error = err.Error()
		page.LastUpdated = time.Now().Format("2006-01-02 15:04:05")
	} else {
		page = NewPage(title, refresh, snap)
		if sortKey != "" {
			SortTasks(page.Snapshot.Tasks, sortKey)
		}
	}
	page.Message = message
	if errText != "" {
		page.Error = errText
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render(w, page); err != nil {
		log.Printf("render failed: %v", err)
	}
}
