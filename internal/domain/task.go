package domain

import (
	"time"

	"github.com/google/uuid"
)

// Task is one independent unit of asynchronous download work.
// It is created queued, mutated only by the worker that owns it,
// and read concurrently by progress streams and the file endpoint.
type Task struct {
	ID         uuid.UUID  `json:"id"`
	URL        string     `json:"url"`
	Format     string     `json:"format"`
	Quality    int        `json:"quality,omitempty"`
	Status     TaskStatus `json:"status"`
	Downloaded int64      `json:"downloaded_bytes"`
	Total      int64      `json:"total_bytes,omitempty"`
	FilePath   string     `json:"-"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// TaskUpdate carries a partial update applied to a task by its owning worker.
// Nil fields are left untouched.
type TaskUpdate struct {
	Status     *TaskStatus
	Downloaded *int64
	Total      *int64
	FilePath   *string
	Error      *string
}

// Terminal reports whether the task has reached a final state.
func (t *Task) Terminal() bool {
	return t.Status.Terminal()
}
