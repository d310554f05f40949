package domain

import (
	"time"

	"github.com/google/uuid"
)

// DownloadRequest describes one item to download: the source URL, the
// requested output container and an optional quality cap (vertical
// resolution for video formats, bitrate in kbps for audio formats).
type DownloadRequest struct {
	URL     string `json:"url" validate:"omitempty,safe_url"`
	Format  string `json:"format" validate:"omitempty,alphanum,max=8"`
	Quality int    `json:"quality" validate:"omitempty,min=1,max=10000"`
}

// BatchRequest represents the request body for submitting several
// downloads at once. Items with an empty URL are skipped, not rejected.
type BatchRequest struct {
	Items []DownloadRequest `json:"items" validate:"required,min=1,max=50,dive"`
}

// TaskResponse is the representation of a task returned by the status endpoint.
type TaskResponse struct {
	ID         uuid.UUID  `json:"task_id"`
	URL        string     `json:"url"`
	Format     string     `json:"format"`
	Status     TaskStatus `json:"status"`
	Downloaded int64      `json:"downloaded_bytes"`
	Total      int64      `json:"total_bytes,omitempty"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// TaskSnapshot is one event on a progress stream.
type TaskSnapshot struct {
	ID         uuid.UUID  `json:"task_id"`
	Status     TaskStatus `json:"status"`
	Downloaded int64      `json:"downloaded_bytes"`
	Total      int64      `json:"total_bytes,omitempty"`
	Percent    float64    `json:"percent"`
	Error      string     `json:"error,omitempty"`
}

// Snapshot derives the stream event for the task's current state.
// Percent is clamped to [0,100] and stays 0 while the total is unknown.
func (t *Task) Snapshot() TaskSnapshot {
	var percent float64
	if t.Total > 0 {
		percent = float64(t.Downloaded) / float64(t.Total) * 100
		if percent > 100 {
			percent = 100
		}
	}
	return TaskSnapshot{
		ID:         t.ID,
		Status:     t.Status,
		Downloaded: t.Downloaded,
		Total:      t.Total,
		Percent:    percent,
		Error:      t.Error,
	}
}

// Response derives the status-endpoint representation of the task.
func (t *Task) Response() TaskResponse {
	return TaskResponse{
		ID:         t.ID,
		URL:        t.URL,
		Format:     t.Format,
		Status:     t.Status,
		Downloaded: t.Downloaded,
		Total:      t.Total,
		Error:      t.Error,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}
