package registry

import (
	"github.com/google/uuid"

	"github.com/okhomin/media-downloader/internal/domain"
)

// TaskRegistry defines the interface for task state storage.
//
// Each entry is written only by the worker that owns the task; reads may
// come from any number of concurrent observers.
type TaskRegistry interface {
	Create(req domain.DownloadRequest) uuid.UUID
	Get(id uuid.UUID) (domain.Task, error)
	Update(id uuid.UUID, update domain.TaskUpdate)
	IsTerminal(id uuid.UUID) bool
}
