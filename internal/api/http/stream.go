package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	errpkg "github.com/okhomin/media-downloader/internal/errors"
)

// StreamProgress handles GET /downloads/{taskID}/events as a server-sent
// event stream. One snapshot is written per poll tick; the stream closes
// itself right after the task's terminal snapshot, or when the client
// disconnects. A stream opened on an already-terminal task delivers that
// single snapshot and ends.
func (h *TaskHandler) StreamProgress(w http.ResponseWriter, r *http.Request) {
	taskID, ok := h.taskID(w, r)
	if !ok {
		return
	}

	flusher, canFlush := w.(http.Flusher)
	if !canFlush {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	snapshots, err := h.progress.Stream(r.Context(), taskID)
	if err != nil {
		if errors.Is(err, errpkg.ErrTaskNotFound) {
			writeError(w, http.StatusNotFound, "task not found")
			return
		}
		h.logger.Error("failed to open progress stream", "task_id", taskID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for snapshot := range snapshots {
		data, err := json.Marshal(snapshot)
		if err != nil {
			h.logger.Error("failed to encode snapshot", "task_id", taskID, "error", err)
			return
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}
}
