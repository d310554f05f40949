package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okhomin/media-downloader/internal/domain"
	errpkg "github.com/okhomin/media-downloader/internal/errors"
	"github.com/okhomin/media-downloader/internal/metrics"
	"github.com/okhomin/media-downloader/internal/registry"
)

const defaultFormat = "mp4"

// dispatchLimit caps how many submissions are handed to the worker queue
// in parallel during a batch fan-out.
const dispatchLimit = 5

// Dispatcher hands a created task to an executor.
type Dispatcher interface {
	Dispatch(taskID uuid.UUID) error
}

// TaskService coordinates task creation: it fans a batch out into
// independent tasks and serves task lookups. A batch carries no state of
// its own; after fan-out only the individual tasks exist.
type TaskService struct {
	registry   registry.TaskRegistry
	dispatcher Dispatcher
}

// NewTaskService creates a TaskService.
func NewTaskService(reg registry.TaskRegistry, dispatcher Dispatcher) *TaskService {
	return &TaskService{registry: reg, dispatcher: dispatcher}
}

// Submit creates one independent task per usable item and dispatches each
// to the executor pool. Items without a source URL are skipped; the batch
// is rejected only when nothing remains. There is no joint outcome:
// partial success is normal.
func (s *TaskService) Submit(ctx context.Context, items []domain.DownloadRequest) ([]uuid.UUID, error) {
	accepted := make([]domain.DownloadRequest, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.URL) == "" {
			continue
		}
		item.Format = strings.ToLower(strings.TrimSpace(item.Format))
		if item.Format == "" {
			item.Format = defaultFormat
		}
		accepted = append(accepted, item)
	}
	if len(accepted) == 0 {
		return nil, errpkg.ErrNoValidItems
	}

	ids := make([]uuid.UUID, len(accepted))
	for i, item := range accepted {
		ids[i] = s.registry.Create(item)
	}
	metrics.TasksCreated.Add(float64(len(ids)))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(dispatchLimit)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			if err := s.dispatcher.Dispatch(id); err != nil {
				// A task that cannot be dispatched fails on its own;
				// the rest of the batch is unaffected.
				failed := domain.TaskStatusFailed
				msg := err.Error()
				s.registry.Update(id, domain.TaskUpdate{Status: &failed, Error: &msg})
				metrics.TasksFailed.Inc()
				slog.Error("dispatch failed", "task_id", id, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	slog.Info("batch submitted", "accepted", len(ids), "skipped", len(items)-len(ids))
	return ids, nil
}

// Get returns the current state of a task.
func (s *TaskService) Get(id uuid.UUID) (domain.Task, error) {
	return s.registry.Get(id)
}

// Artifact returns the path of a finished task's file. It reports
// ErrTaskNotReady while the task is still queued, running, or failed.
func (s *TaskService) Artifact(id uuid.UUID) (string, error) {
	task, err := s.registry.Get(id)
	if err != nil {
		return "", err
	}
	if task.Status != domain.TaskStatusFinished || task.FilePath == "" {
		return "", errpkg.ErrTaskNotReady
	}
	return task.FilePath, nil
}
