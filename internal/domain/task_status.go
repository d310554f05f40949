package domain

// TaskStatus represents the current state of a Task.
//
// Transitions are monotone: queued -> running -> finished|failed.
// finished and failed are terminal.
type TaskStatus string

const (
	TaskStatusQueued   TaskStatus = "queued"
	TaskStatusRunning  TaskStatus = "running"
	TaskStatusFinished TaskStatus = "finished"
	TaskStatusFailed   TaskStatus = "failed"
)

// Terminal reports whether the status allows no further transitions.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusFinished || s == TaskStatusFailed
}

// Rank orders statuses along the task lifecycle. Terminal states share
// the highest rank so neither can replace the other.
func (s TaskStatus) Rank() int {
	switch s {
	case TaskStatusQueued:
		return 0
	case TaskStatusRunning:
		return 1
	case TaskStatusFinished, TaskStatusFailed:
		return 2
	default:
		return -1
	}
}
