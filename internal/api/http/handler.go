package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/okhomin/media-downloader/internal/domain"
	errpkg "github.com/okhomin/media-downloader/internal/errors"
	"github.com/okhomin/media-downloader/internal/formats"
	"github.com/okhomin/media-downloader/internal/validation"
)

// TaskServiceI defines the task-related business logic used by the handlers.
type TaskServiceI interface {
	Submit(ctx context.Context, items []domain.DownloadRequest) ([]uuid.UUID, error)
	Get(id uuid.UUID) (domain.Task, error)
	Artifact(id uuid.UUID) (string, error)
}

// ProgressStreamerI opens live progress streams for tasks.
type ProgressStreamerI interface {
	Stream(ctx context.Context, taskID uuid.UUID) (<-chan domain.TaskSnapshot, error)
}

// ProberI lists the stream variants available for a source URL.
type ProberI interface {
	Probe(ctx context.Context, url string) ([]domain.StreamDescriptor, error)
}

// TaskHandler handles HTTP requests for downloads.
type TaskHandler struct {
	taskService TaskServiceI
	progress    ProgressStreamerI
	prober      ProberI
	validator   *validator.Validate
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler with the provided services and logger.
func NewTaskHandler(taskService TaskServiceI, progress ProgressStreamerI, prober ProberI, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		progress:    progress,
		prober:      prober,
		validator:   validation.New(),
		logger:      logger,
	}
}

// ListFormats handles GET /formats?url= and returns the resolved quality
// options for the source.
func (h *TaskHandler) ListFormats(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if err := h.validator.Var(url, "required,safe_url"); err != nil {
		writeError(w, http.StatusBadRequest, "invalid url parameter")
		return
	}

	streams, err := h.prober.Probe(r.Context(), url)
	if err != nil {
		h.logger.Error("failed to probe source", "url", url, "error", err)
		writeError(w, http.StatusBadGateway, "failed to inspect source")
		return
	}

	writeJSON(w, http.StatusOK, formats.Resolve(streams))
}

// SubmitDownload handles POST /downloads for a single item.
func (h *TaskHandler) SubmitDownload(w http.ResponseWriter, r *http.Request) {
	var req domain.DownloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.logger.Warn("validation failed", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ids, err := h.taskService.Submit(r.Context(), []domain.DownloadRequest{req})
	if err != nil {
		h.submitError(w, err)
		return
	}

	h.logger.Info("download submitted", "task_id", ids[0], "url", req.URL, "format", req.Format)
	writeJSON(w, http.StatusCreated, map[string]any{"task_id": ids[0]})
}

// SubmitBatch handles POST /downloads/batch. Items without a URL produce
// no task and no error; only an entirely unusable batch is rejected.
func (h *TaskHandler) SubmitBatch(w http.ResponseWriter, r *http.Request) {
	var req domain.BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.logger.Warn("validation failed", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ids, err := h.taskService.Submit(r.Context(), req.Items)
	if err != nil {
		h.submitError(w, err)
		return
	}

	h.logger.Info("batch submitted", "count", len(ids))
	writeJSON(w, http.StatusCreated, map[string]any{"task_ids": ids})
}

// GetTask handles GET /downloads/{taskID} and returns the task's state.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := h.taskID(w, r)
	if !ok {
		return
	}

	task, err := h.taskService.Get(taskID)
	if err != nil {
		h.taskError(w, taskID, err)
		return
	}

	writeJSON(w, http.StatusOK, task.Response())
}

// GetFile handles GET /downloads/{taskID}/file. The artifact is only
// available once the task has finished.
func (h *TaskHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	taskID, ok := h.taskID(w, r)
	if !ok {
		return
	}

	path, err := h.taskService.Artifact(taskID)
	if err != nil {
		h.taskError(w, taskID, err)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	w.Header().Set("Content-Type", "application/octet-stream")
	http.ServeFile(w, r, path)
}

func (h *TaskHandler) taskID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	taskID, err := uuid.Parse(chi.URLParam(r, "taskID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task ID")
		return uuid.Nil, false
	}
	return taskID, true
}

func (h *TaskHandler) submitError(w http.ResponseWriter, err error) {
	if errors.Is(err, errpkg.ErrNoValidItems) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.logger.Error("failed to submit", "error", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func (h *TaskHandler) taskError(w http.ResponseWriter, taskID uuid.UUID, err error) {
	switch {
	case errors.Is(err, errpkg.ErrTaskNotFound):
		writeError(w, http.StatusNotFound, "task not found")
	case errors.Is(err, errpkg.ErrTaskNotReady):
		writeError(w, http.StatusConflict, "task is not finished yet")
	default:
		h.logger.Error("failed to serve task", "task_id", taskID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}
