package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// WorkDirs manages per-task working directories under a common root.
// Each task owns its directory exclusively, so concurrent downloads never
// collide on output filenames.
type WorkDirs struct {
	root string
}

// NewWorkDirs creates a WorkDirs manager rooted at the given directory.
func NewWorkDirs(root string) *WorkDirs {
	return &WorkDirs{root: root}
}

// Create makes the working directory for a task and returns its path.
func (w *WorkDirs) Create(taskID uuid.UUID) (string, error) {
	dir := w.Path(taskID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create work dir %s: %w", dir, err)
	}
	return dir, nil
}

// Path returns the working directory path for a task.
func (w *WorkDirs) Path(taskID uuid.UUID) string {
	return filepath.Join(w.root, taskID.String())
}

// Files lists the regular files currently in a task's working directory.
func (w *WorkDirs) Files(taskID uuid.UUID) ([]string, error) {
	dir := w.Path(taskID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read work dir %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	return files, nil
}

// Remove deletes a task's working directory and everything in it.
func (w *WorkDirs) Remove(taskID uuid.UUID) error {
	return os.RemoveAll(w.Path(taskID))
}
