package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates the HTTP router with configured routes, middleware,
// and handlers: submission, status, progress streaming, artifact retrieval,
// health check, and Prometheus metrics.
func NewRouter(taskService TaskServiceI, progress ProgressStreamerI, prober ProberI, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	taskHandler := NewTaskHandler(taskService, progress, prober, logger)

	r.Get("/", taskHandler.Home)
	r.Get("/formats", taskHandler.ListFormats)

	r.Route("/downloads", func(r chi.Router) {
		r.Post("/", taskHandler.SubmitDownload)
		r.Post("/batch", taskHandler.SubmitBatch)
		r.Get("/{taskID}", taskHandler.GetTask)
		r.Get("/{taskID}/events", taskHandler.StreamProgress)
		r.Get("/{taskID}/file", taskHandler.GetFile)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
