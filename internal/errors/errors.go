package errors

import "errors"

var (
	// ErrTaskNotFound is returned for an unknown task identifier.
	ErrTaskNotFound = errors.New("task not found")

	// ErrTaskNotReady is returned when the artifact is requested before
	// the task has finished.
	ErrTaskNotReady = errors.New("task is not finished yet")

	// ErrTranscoderUnavailable is recorded on tasks that need audio
	// extraction or container conversion while ffmpeg/ffprobe are missing.
	ErrTranscoderUnavailable = errors.New("ffmpeg/ffprobe not installed: audio extraction and format conversion are unavailable")

	// ErrNoValidItems is returned when every item in a batch lacked a source URL.
	ErrNoValidItems = errors.New("no valid items in batch")

	// ErrNoArtifact is recorded when the download reported success but no
	// unambiguous output file was found in the task's working directory.
	ErrNoArtifact = errors.New("no artifact found after download")
)
