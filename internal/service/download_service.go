package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okhomin/media-downloader/internal/config"
	"github.com/okhomin/media-downloader/internal/domain"
	errpkg "github.com/okhomin/media-downloader/internal/errors"
	"github.com/okhomin/media-downloader/internal/fetcher"
	"github.com/okhomin/media-downloader/internal/metrics"
	"github.com/okhomin/media-downloader/internal/registry"
	"github.com/okhomin/media-downloader/internal/storage"
)

// DownloadService executes download tasks on a worker pool. Each task is
// run to completion by exactly one worker, which is the task's only writer
// in the registry.
type DownloadService struct {
	registry   registry.TaskRegistry
	fetcher    fetcher.Fetcher
	workDirs   *storage.WorkDirs
	transcoder *fetcher.Transcoder
	cfg        *config.Config

	jobs     chan uuid.UUID
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewDownloadService creates the service and starts its worker pool.
func NewDownloadService(
	reg registry.TaskRegistry,
	f fetcher.Fetcher,
	workDirs *storage.WorkDirs,
	transcoder *fetcher.Transcoder,
	cfg *config.Config,
) *DownloadService {
	s := &DownloadService{
		registry:   reg,
		fetcher:    f,
		workDirs:   workDirs,
		transcoder: transcoder,
		cfg:        cfg,
		jobs:       make(chan uuid.UUID, cfg.QueueSize),
		done:       make(chan struct{}),
	}

	for i := 0; i < cfg.WorkerPoolSize; i++ {
		s.wg.Add(1)
		go func(workerID int) {
			defer s.wg.Done()
			for {
				select {
				case taskID := <-s.jobs:
					s.execute(taskID)
					slog.Debug("worker finished task", "worker_id", workerID, "task_id", taskID)
				case <-s.done:
					// Drain whatever was queued before shutdown, then exit.
					for {
						select {
						case taskID := <-s.jobs:
							s.execute(taskID)
						default:
							return
						}
					}
				}
			}
		}(i + 1)
	}

	slog.Info("download service started", "workers", cfg.WorkerPoolSize)
	return s
}

// Dispatch hands a queued task to the worker pool. It blocks while the
// queue is full and fails once the service is shutting down. The jobs
// channel is never closed, so a dispatch racing shutdown errors out
// instead of panicking.
func (s *DownloadService) Dispatch(taskID uuid.UUID) error {
	select {
	case <-s.done:
		return fmt.Errorf("download service is shutting down")
	default:
	}

	select {
	case s.jobs <- taskID:
		return nil
	case <-s.done:
		return fmt.Errorf("download service is shutting down")
	}
}

// execute runs one task from queued to a terminal state. The task stays
// queued until the first progress callback arrives; every failure path
// records the error on the task rather than propagating it.
func (s *DownloadService) execute(taskID uuid.UUID) {
	task, err := s.registry.Get(taskID)
	if err != nil {
		slog.Error("dispatched task missing from registry", "task_id", taskID, "error", err)
		return
	}

	start := time.Now()

	workDir, err := s.workDirs.Create(taskID)
	if err != nil {
		s.fail(taskID, err)
		return
	}

	req, err := buildFetchRequest(task, workDir, s.cfg.AudioQuality, s.transcoder.Available())
	if err != nil {
		s.fail(taskID, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.DownloadTimeout)
	defer cancel()

	running := domain.TaskStatusRunning
	reported, err := s.fetcher.Fetch(ctx, req, func(u fetcher.ProgressUpdate) {
		if u.Phase != fetcher.PhaseDownloading {
			return
		}
		downloaded, total := u.Downloaded, u.Total
		s.registry.Update(taskID, domain.TaskUpdate{
			Status:     &running,
			Downloaded: &downloaded,
			Total:      &total,
		})
	})
	if err != nil {
		s.fail(taskID, err)
		return
	}

	path, err := s.resolveArtifact(taskID, task.Format, reported)
	if err != nil {
		s.fail(taskID, err)
		return
	}

	finished := domain.TaskStatusFinished
	s.registry.Update(taskID, domain.TaskUpdate{Status: &finished, FilePath: &path})

	metrics.TasksFinished.Inc()
	metrics.DownloadDuration.Observe(time.Since(start).Seconds())
	if info, err := os.Stat(path); err == nil {
		metrics.DownloadBytes.Add(float64(info.Size()))
	}

	slog.Info("task finished", "task_id", taskID, "file_path", path, "duration", time.Since(start))
}

// resolveArtifact locates the single file the download produced. The path
// reported by the fetcher wins when it exists; otherwise an exact match on
// the requested extension, then a lone remaining file. Nothing, or several
// candidates with no extension match, is a failure: the task's directory
// must identify its artifact unambiguously.
func (s *DownloadService) resolveArtifact(taskID uuid.UUID, format, reported string) (string, error) {
	if reported != "" {
		if _, err := os.Stat(reported); err == nil {
			return reported, nil
		}
	}

	files, err := s.workDirs.Files(taskID)
	if err != nil {
		return "", err
	}

	ext := "." + strings.ToLower(format)
	for _, f := range files {
		if strings.EqualFold(filepath.Ext(f), ext) {
			return f, nil
		}
	}
	if len(files) == 1 {
		return files[0], nil
	}

	return "", fmt.Errorf("%w: %d files in work dir", errpkg.ErrNoArtifact, len(files))
}

func (s *DownloadService) fail(taskID uuid.UUID, cause error) {
	failed := domain.TaskStatusFailed
	msg := cause.Error()
	s.registry.Update(taskID, domain.TaskUpdate{Status: &failed, Error: &msg})

	metrics.TasksFailed.Inc()
	slog.Error("task failed", "task_id", taskID, "error", cause)
}

// Shutdown stops accepting work and waits for in-flight tasks to reach a
// terminal state, or for the context to expire.
func (s *DownloadService) Shutdown(ctx context.Context) error {
	s.stopOnce.Do(func() {
		close(s.done)
	})

	finished := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		slog.Info("download service stopped")
		return nil
	case <-ctx.Done():
		slog.Warn("download service shutdown timed out")
		return ctx.Err()
	}
}
