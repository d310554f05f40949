package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/okhomin/media-downloader/internal/domain"
	"github.com/okhomin/media-downloader/internal/metrics"
	"github.com/okhomin/media-downloader/internal/registry"
)

// ProgressService serves live progress streams by polling the registry.
// Observers are independent and read-only; a stream always ends with the
// task's first observed terminal snapshot.
type ProgressService struct {
	registry registry.TaskRegistry
	interval time.Duration
}

// NewProgressService creates a ProgressService polling at the given interval.
func NewProgressService(reg registry.TaskRegistry, interval time.Duration) *ProgressService {
	return &ProgressService{registry: reg, interval: interval}
}

// Stream opens a snapshot stream for the task. The first snapshot is
// emitted immediately, then one per poll tick whether or not anything
// changed. The channel is closed after the first terminal snapshot, or
// when ctx is cancelled. An unknown task id fails at open time.
func (s *ProgressService) Stream(ctx context.Context, taskID uuid.UUID) (<-chan domain.TaskSnapshot, error) {
	task, err := s.registry.Get(taskID)
	if err != nil {
		return nil, err
	}

	metrics.ProgressStreamsOpened.Inc()

	ch := make(chan domain.TaskSnapshot, 1)
	go func() {
		defer close(ch)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		current := task
		for {
			select {
			case ch <- current.Snapshot():
			case <-ctx.Done():
				return
			}
			if current.Terminal() {
				return
			}

			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}

			next, err := s.registry.Get(taskID)
			if err != nil {
				return
			}
			current = next
		}
	}()

	return ch, nil
}
