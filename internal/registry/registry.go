package registry

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okhomin/media-downloader/internal/domain"
	errpkg "github.com/okhomin/media-downloader/internal/errors"
)

// Registry provides in-memory storage for tasks. State is process-lifetime
// only; nothing is persisted across restarts.
type Registry struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]*domain.Task
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		tasks: make(map[uuid.UUID]*domain.Task),
	}
}

// Create installs a new queued task for the given request and returns its id.
func (r *Registry) Create(req domain.DownloadRequest) uuid.UUID {
	now := time.Now()
	task := &domain.Task{
		ID:        uuid.New(),
		URL:       req.URL,
		Format:    req.Format,
		Quality:   req.Quality,
		Status:    domain.TaskStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}

	r.mu.Lock()
	r.tasks[task.ID] = task
	r.mu.Unlock()

	slog.Debug("task created", "task_id", task.ID, "url", req.URL, "format", req.Format)
	return task.ID
}

// Get returns a copy of the task with the given id. Callers never see the
// shared entry, so no lock is held while they inspect it.
func (r *Registry) Get(id uuid.UUID) (domain.Task, error) {
	r.mu.RLock()
	task, exists := r.tasks[id]
	if !exists {
		r.mu.RUnlock()
		return domain.Task{}, errpkg.ErrTaskNotFound
	}
	snapshot := *task
	r.mu.RUnlock()

	return snapshot, nil
}

// Update applies a partial update to the task. Terminal states are sticky:
// once a task is finished or failed every further update is a no-op.
// Status can only advance along the lifecycle, and the total counter never
// regresses when the source re-estimates it downward.
func (r *Registry) Update(id uuid.UUID, update domain.TaskUpdate) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, exists := r.tasks[id]
	if !exists {
		slog.Warn("update for unknown task dropped", "task_id", id)
		return
	}
	if task.Terminal() {
		return
	}

	if update.Status != nil && update.Status.Rank() > task.Status.Rank() {
		task.Status = *update.Status
	}
	if update.Total != nil && *update.Total > task.Total {
		task.Total = *update.Total
	}
	if update.Downloaded != nil && *update.Downloaded > task.Downloaded {
		task.Downloaded = *update.Downloaded
	}
	if task.Total > 0 && task.Downloaded > task.Total {
		task.Downloaded = task.Total
	}
	if update.FilePath != nil {
		task.FilePath = *update.FilePath
	}
	if update.Error != nil {
		task.Error = *update.Error
	}
	task.UpdatedAt = time.Now()
}

// IsTerminal reports whether the task exists and has reached a final state.
func (r *Registry) IsTerminal(id uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, exists := r.tasks[id]
	return exists && task.Terminal()
}
