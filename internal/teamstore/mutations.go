package teamstore

import (
	"errors"
	"fmt"
	"time"

	"github.com/hochfrequenz/team-board/internal/domain"
)

var errNoConnection = errors.New("no database connection")

// ChangeStatus applies the board's status transition for a task.
//
// Invalid input (non-positive id or a status outside the closed set) is a
// silent no-op: no write, no history entry, empty confirmation. On success
// the task row and a status_change history entry are written as two
// separate statements; if the history insert fails the status change stays
// committed and the error is surfaced to the caller.
func (s *Store) ChangeStatus(id int64, status string) (string, error) {
	if s == nil || s.db == nil {
		return "", errNoConnection
	}
	if id <= 0 || !domain.ValidTaskStatus(status) {
		return "", nil
	}

	now := formatTime(time.Now())
	if _, err := s.db.Exec(`UPDATE tasks SET status = ?, updated_at = ? WHERE id = ?`,
		status, now, id); err != nil {
		return "", err
	}

	if _, err := s.db.Exec(`INSERT INTO task_history (task_id, action, new_status, timestamp)
		VALUES (?, 'status_change', ?, ?)`, id, status, now); err != nil {
		return "", fmt.Errorf("recording history: %w", err)
	}

	return fmt.Sprintf("Task #%d moved to %s", id, domain.StatusLabel(status)), nil
}
