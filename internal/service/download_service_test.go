package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okhomin/media-downloader/internal/config"
	"github.com/okhomin/media-downloader/internal/domain"
	errpkg "github.com/okhomin/media-downloader/internal/errors"
	"github.com/okhomin/media-downloader/internal/fetcher"
	"github.com/okhomin/media-downloader/internal/registry"
	"github.com/okhomin/media-downloader/internal/storage"
)

type fakeFetcher struct {
	fetch func(ctx context.Context, req fetcher.Request, onProgress fetcher.ProgressFunc) (string, error)
}

func (f *fakeFetcher) Probe(ctx context.Context, url string) ([]domain.StreamDescriptor, error) {
	return nil, nil
}

func (f *fakeFetcher) Fetch(ctx context.Context, req fetcher.Request, onProgress fetcher.ProgressFunc) (string, error) {
	return f.fetch(ctx, req, onProgress)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		WorkerPoolSize:  1,
		QueueSize:       10,
		DownloadTimeout: time.Minute,
		WorkDir:         t.TempDir(),
		AudioQuality:    "192K",
	}
}

func newTestService(t *testing.T, reg registry.TaskRegistry, f fetcher.Fetcher, transcoding bool) *DownloadService {
	t.Helper()
	cfg := testConfig(t)
	s := NewDownloadService(reg, f, storage.NewWorkDirs(cfg.WorkDir), fetcher.StaticTranscoder(transcoding), cfg)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	})
	return s
}

func waitTerminal(t *testing.T, reg registry.TaskRegistry, id uuid.UUID) domain.Task {
	t.Helper()
	require.Eventually(t, func() bool {
		return reg.IsTerminal(id)
	}, 2*time.Second, 5*time.Millisecond)

	task, err := reg.Get(id)
	require.NoError(t, err)
	return task
}

func TestDownloadService_SuccessfulTask(t *testing.T) {
	reg := registry.New()

	ff := &fakeFetcher{fetch: func(ctx context.Context, req fetcher.Request, onProgress fetcher.ProgressFunc) (string, error) {
		onProgress(fetcher.ProgressUpdate{Phase: fetcher.PhaseDownloading, Downloaded: 50, Total: 100})
		onProgress(fetcher.ProgressUpdate{Phase: fetcher.PhaseDownloading, Downloaded: 100, Total: 100})

		path := filepath.Join(filepath.Dir(req.OutputTemplate), "clip.mp4")
		if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
			return "", err
		}
		return path, nil
	}}

	s := newTestService(t, reg, ff, false)
	id := reg.Create(domain.DownloadRequest{URL: "http://a", Format: "mp4"})
	require.NoError(t, s.Dispatch(id))

	task := waitTerminal(t, reg, id)
	assert.Equal(t, domain.TaskStatusFinished, task.Status)
	assert.Equal(t, "clip.mp4", filepath.Base(task.FilePath))
	assert.FileExists(t, task.FilePath)
	assert.Equal(t, int64(100), task.Downloaded)
	assert.Equal(t, int64(100), task.Total)
	assert.Empty(t, task.Error)
}

func TestDownloadService_QueuedUntilFirstProgress(t *testing.T) {
	reg := registry.New()

	started := make(chan struct{})
	release := make(chan struct{})

	ff := &fakeFetcher{fetch: func(ctx context.Context, req fetcher.Request, onProgress fetcher.ProgressFunc) (string, error) {
		close(started)
		<-release
		onProgress(fetcher.ProgressUpdate{Phase: fetcher.PhaseDownloading, Downloaded: 1, Total: 2})

		path := filepath.Join(filepath.Dir(req.OutputTemplate), "clip.mp4")
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			return "", err
		}
		return path, nil
	}}

	s := newTestService(t, reg, ff, false)
	id := reg.Create(domain.DownloadRequest{URL: "http://a", Format: "mp4"})
	require.NoError(t, s.Dispatch(id))

	// The fetch is underway but has reported nothing yet.
	<-started
	task, err := reg.Get(id)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusQueued, task.Status)

	close(release)
	task = waitTerminal(t, reg, id)
	assert.Equal(t, domain.TaskStatusFinished, task.Status)
}

func TestDownloadService_CapabilityMissingFailsImmediately(t *testing.T) {
	reg := registry.New()

	ff := &fakeFetcher{fetch: func(ctx context.Context, req fetcher.Request, onProgress fetcher.ProgressFunc) (string, error) {
		assert.Fail(t, "fetch must not run without the transcoder")
		return "", nil
	}}

	s := newTestService(t, reg, ff, false)
	id := reg.Create(domain.DownloadRequest{URL: "http://a", Format: "mp3"})
	require.NoError(t, s.Dispatch(id))

	task := waitTerminal(t, reg, id)
	assert.Equal(t, domain.TaskStatusFailed, task.Status)
	assert.Contains(t, task.Error, errpkg.ErrTranscoderUnavailable.Error())
	assert.Empty(t, task.FilePath)
}

func TestDownloadService_FetchErrorIsRecorded(t *testing.T) {
	reg := registry.New()

	ff := &fakeFetcher{fetch: func(ctx context.Context, req fetcher.Request, onProgress fetcher.ProgressFunc) (string, error) {
		return "", errors.New("video unavailable")
	}}

	s := newTestService(t, reg, ff, false)
	id := reg.Create(domain.DownloadRequest{URL: "http://a", Format: "mp4"})
	require.NoError(t, s.Dispatch(id))

	task := waitTerminal(t, reg, id)
	assert.Equal(t, domain.TaskStatusFailed, task.Status)
	assert.Contains(t, task.Error, "video unavailable")
}

func TestDownloadService_ArtifactResolution(t *testing.T) {
	tests := []struct {
		name       string
		format     string
		files      []string
		wantStatus domain.TaskStatus
		wantFile   string
	}{
		{
			name:       "exact extension match wins",
			format:     "mp4",
			files:      []string{"clip.mp4", "clip.part"},
			wantStatus: domain.TaskStatusFinished,
			wantFile:   "clip.mp4",
		},
		{
			name:       "single renamed file is accepted",
			format:     "avi",
			files:      []string{"clip.mkv"},
			wantStatus: domain.TaskStatusFinished,
			wantFile:   "clip.mkv",
		},
		{
			name:       "empty directory fails",
			format:     "mp4",
			files:      nil,
			wantStatus: domain.TaskStatusFailed,
		},
		{
			name:       "ambiguous leftovers fail",
			format:     "mp4",
			files:      []string{"track.m4a", "video.webm"},
			wantStatus: domain.TaskStatusFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := registry.New()

			ff := &fakeFetcher{fetch: func(ctx context.Context, req fetcher.Request, onProgress fetcher.ProgressFunc) (string, error) {
				dir := filepath.Dir(req.OutputTemplate)
				for _, name := range tt.files {
					if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
						return "", err
					}
				}
				// The fetcher reports no final path, as happens when
				// post-processing renames the output.
				return "", nil
			}}

			s := newTestService(t, reg, ff, true)
			id := reg.Create(domain.DownloadRequest{URL: "http://a", Format: tt.format})
			require.NoError(t, s.Dispatch(id))

			task := waitTerminal(t, reg, id)
			assert.Equal(t, tt.wantStatus, task.Status)
			if tt.wantFile != "" {
				assert.Equal(t, tt.wantFile, filepath.Base(task.FilePath))
			}
			if tt.wantStatus == domain.TaskStatusFailed {
				assert.Contains(t, task.Error, errpkg.ErrNoArtifact.Error())
			}
		})
	}
}

func TestDownloadService_DispatchAfterShutdown(t *testing.T) {
	reg := registry.New()
	s := newTestService(t, reg, &fakeFetcher{fetch: func(ctx context.Context, req fetcher.Request, onProgress fetcher.ProgressFunc) (string, error) {
		return "", nil
	}}, false)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))

	// Every dispatch after shutdown must fail with an error, never panic.
	id := reg.Create(domain.DownloadRequest{URL: "http://a", Format: "mp4"})
	for i := 0; i < 100; i++ {
		assert.Error(t, s.Dispatch(id))
	}
}

func TestDownloadService_QueuedJobsDrainOnShutdown(t *testing.T) {
	reg := registry.New()

	ff := &fakeFetcher{fetch: func(ctx context.Context, req fetcher.Request, onProgress fetcher.ProgressFunc) (string, error) {
		path := filepath.Join(filepath.Dir(req.OutputTemplate), "clip.mp4")
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			return "", err
		}
		return path, nil
	}}

	s := newTestService(t, reg, ff, false)

	ids := make([]uuid.UUID, 3)
	for i := range ids {
		ids[i] = reg.Create(domain.DownloadRequest{URL: "http://a", Format: "mp4"})
		require.NoError(t, s.Dispatch(ids[i]))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))

	// Work accepted before shutdown still reaches a terminal state.
	for _, id := range ids {
		task, err := reg.Get(id)
		require.NoError(t, err)
		assert.True(t, task.Terminal())
	}
}
