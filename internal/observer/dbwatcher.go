// Package observer watches the team database file and reports changes.
package observer

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeCallback is called after the database file settles following one
// or more writes
type ChangeCallback func()

// DBWatcher monitors the SQLite database file for writes. SQLite touches
// the -wal and -journal siblings as well, so the parent directory is
// watched and events are filtered by basename.
type DBWatcher struct {
	watcher  *fsnotify.Watcher
	callback ChangeCallback
	dbPath   string
	debounce time.Duration

	timer  *time.Timer
	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewDBWatcher creates a watcher for the given database file
func NewDBWatcher(dbPath string, callback ChangeCallback) (*DBWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &DBWatcher{
		watcher:  watcher,
		callback: callback,
		dbPath:   dbPath,
		debounce: 500 * time.Millisecond, // Debounce rapid writes
	}

	if err := watcher.Add(filepath.Dir(dbPath)); err != nil {
		watcher.Close()
		return nil, err
	}

	return w, nil
}

// Start begins watching for file changes
func (w *DBWatcher) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				w.handleEvent(event)
			case _, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				// Keep watching
			}
		}
	}()
}

// Stop stops watching for file changes
func (w *DBWatcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.watcher.Close()
}

func (w *DBWatcher) handleEvent(event fsnotify.Event) {
	if !w.matchesDB(event.Name) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

// matchesDB reports whether a path is the database file or one of its
// WAL/journal siblings
func (w *DBWatcher) matchesDB(path string) bool {
	base := filepath.Base(path)
	dbBase := filepath.Base(w.dbPath)
	return base == dbBase || strings.HasPrefix(base, dbBase+"-")
}

func (w *DBWatcher) flush() {
	if w.callback != nil {
		w.callback()
	}
}

// SetDebounce sets the debounce duration for batching writes
func (w *DBWatcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.debounce = d
}
