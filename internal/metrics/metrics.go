package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TasksCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "media_downloader_tasks_created_total",
		Help: "Total number of tasks created",
	})

	TasksFinished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "media_downloader_tasks_finished_total",
		Help: "Total number of tasks finished successfully",
	})

	TasksFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "media_downloader_tasks_failed_total",
		Help: "Total number of tasks failed",
	})

	DownloadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "media_downloader_download_duration_seconds",
		Help:    "Download duration in seconds",
		Buckets: prometheus.DefBuckets,
	})

	DownloadBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "media_downloader_download_bytes_total",
		Help: "Total bytes of produced artifacts",
	})

	ProgressStreamsOpened = promauto.NewCounter(prometheus.CounterOpts{
		Name: "media_downloader_progress_streams_opened_total",
		Help: "Total number of progress streams opened",
	})
)
