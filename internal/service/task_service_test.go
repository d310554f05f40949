package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okhomin/media-downloader/internal/domain"
	errpkg "github.com/okhomin/media-downloader/internal/errors"
	"github.com/okhomin/media-downloader/internal/registry"
)

type fakeDispatcher struct {
	mu         sync.Mutex
	dispatched []uuid.UUID
	err        error
}

func (d *fakeDispatcher) Dispatch(taskID uuid.UUID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.dispatched = append(d.dispatched, taskID)
	return nil
}

func (d *fakeDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.dispatched)
}

func TestTaskService_SubmitSkipsEmptyURLs(t *testing.T) {
	reg := registry.New()
	dispatcher := &fakeDispatcher{}
	s := NewTaskService(reg, dispatcher)

	ids, err := s.Submit(context.Background(), []domain.DownloadRequest{
		{URL: "http://a", Format: "mp4"},
		{URL: ""},
		{URL: "http://b", Format: "mp3"},
	})

	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.Equal(t, 2, dispatcher.count())

	// Both tasks are independently tracked.
	for _, id := range ids {
		task, err := reg.Get(id)
		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusQueued, task.Status)
	}
	assert.NotEqual(t, ids[0], ids[1])
}

func TestTaskService_SubmitAllSkippedRejected(t *testing.T) {
	s := NewTaskService(registry.New(), &fakeDispatcher{})

	tests := [][]domain.DownloadRequest{
		{},
		{{URL: ""}, {URL: "   "}},
	}
	for _, items := range tests {
		ids, err := s.Submit(context.Background(), items)
		assert.ErrorIs(t, err, errpkg.ErrNoValidItems)
		assert.Empty(t, ids)
	}
}

func TestTaskService_SubmitDefaultsFormat(t *testing.T) {
	reg := registry.New()
	s := NewTaskService(reg, &fakeDispatcher{})

	ids, err := s.Submit(context.Background(), []domain.DownloadRequest{{URL: "http://a", Format: " MP3 "}})
	require.NoError(t, err)
	task, err := reg.Get(ids[0])
	require.NoError(t, err)
	assert.Equal(t, "mp3", task.Format)

	ids, err = s.Submit(context.Background(), []domain.DownloadRequest{{URL: "http://a"}})
	require.NoError(t, err)
	task, err = reg.Get(ids[0])
	require.NoError(t, err)
	assert.Equal(t, "mp4", task.Format)
}

func TestTaskService_DispatchFailureFailsOnlyThatTask(t *testing.T) {
	reg := registry.New()
	dispatcher := &fakeDispatcher{err: errors.New("queue closed")}
	s := NewTaskService(reg, dispatcher)

	ids, err := s.Submit(context.Background(), []domain.DownloadRequest{{URL: "http://a"}})
	require.NoError(t, err)
	require.Len(t, ids, 1)

	task, err := reg.Get(ids[0])
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusFailed, task.Status)
	assert.Contains(t, task.Error, "queue closed")
}

func TestTaskService_Artifact(t *testing.T) {
	reg := registry.New()
	s := NewTaskService(reg, &fakeDispatcher{})

	_, err := s.Artifact(uuid.New())
	assert.ErrorIs(t, err, errpkg.ErrTaskNotFound)

	id := reg.Create(domain.DownloadRequest{URL: "http://a", Format: "mp4"})
	_, err = s.Artifact(id)
	assert.ErrorIs(t, err, errpkg.ErrTaskNotReady)

	finished := domain.TaskStatusFinished
	path := "/tmp/clip.mp4"
	reg.Update(id, domain.TaskUpdate{Status: &finished, FilePath: &path})

	got, err := s.Artifact(id)
	require.NoError(t, err)
	assert.Equal(t, path, got)
}

func TestTaskService_ArtifactFailedTaskNotReady(t *testing.T) {
	reg := registry.New()
	s := NewTaskService(reg, &fakeDispatcher{})

	id := reg.Create(domain.DownloadRequest{URL: "http://a", Format: "mp4"})
	failed := domain.TaskStatusFailed
	msg := "boom"
	reg.Update(id, domain.TaskUpdate{Status: &failed, Error: &msg})

	_, err := s.Artifact(id)
	assert.ErrorIs(t, err, errpkg.ErrTaskNotReady)
}
