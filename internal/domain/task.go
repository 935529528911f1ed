package domain

import "fmt"

// Task is a single roster entry. The description is the natural key: the
// reconciliation pass matches roster lines against stored tasks by exact
// description text, never by id.
type Task struct {
	ID          int64  `db:"id"`
	Description string `db:"description"`
	IsArchived  bool   `db:"is_archived"`
}

// Key returns the semantic identity of the task. Two tasks with equal keys
// are the same task regardless of their assigned ids.
func (t Task) Key() string {
	return t.Description
}

// TaskAssociation links one user to one task and carries the per-pair state.
// At most one association exists per (user, task) pair. TaskArchived mirrors
// the parent task's archived flag at the time associations are managed.
// TaskCompleted is monotonic: once true it is never reset.
type TaskAssociation struct {
	ID            int64 `db:"id"`
	UserID        int64 `db:"user_id"`
	TaskID        int64 `db:"task_id"`
	TaskCompleted bool  `db:"task_completed"`
	TaskArchived  bool  `db:"task_archived"`
}

// Key returns the semantic identity of the association.
func (a TaskAssociation) Key() string {
	return fmt.Sprintf("%d_%d", a.UserID, a.TaskID)
}

// ConfirmOutcome reports what a completion confirmation actually did, so the
// caller can tell the admin who pressed the button whether they caused the
// transition or merely observed it.
type ConfirmOutcome int

const (
	// ConfirmCompleted means this call flipped the association to completed.
	ConfirmCompleted ConfirmOutcome = iota
	// ConfirmAlreadyCompleted means another confirmation won the race.
	ConfirmAlreadyCompleted
	// ConfirmArchived means the task was archived before the admin acted.
	ConfirmArchived
)
