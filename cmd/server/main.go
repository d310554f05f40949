package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	h "github.com/okhomin/media-downloader/internal/api/http"
	cfgpkg "github.com/okhomin/media-downloader/internal/config"
	"github.com/okhomin/media-downloader/internal/fetcher"
	"github.com/okhomin/media-downloader/internal/registry"
	svc "github.com/okhomin/media-downloader/internal/service"
	"github.com/okhomin/media-downloader/internal/storage"
)

func main() {

	cfg, err := cfgpkg.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	cfgpkg.SetupLogger(cfg)
	slog.Info("configuration loaded successfully")

	taskRegistry := registry.New()
	workDirs := storage.NewWorkDirs(cfg.WorkDir)
	transcoder := fetcher.DetectTranscoder(cfg.FFmpegBin, cfg.FFprobeBin)
	ytdlp := fetcher.NewYTDLP(cfg.YTDLPBin, slog.Default())

	downloadService := svc.NewDownloadService(taskRegistry, ytdlp, workDirs, transcoder, cfg)
	taskService := svc.NewTaskService(taskRegistry, downloadService)
	progressService := svc.NewProgressService(taskRegistry, cfg.PollInterval)

	router := h.NewRouter(taskService, progressService, ytdlp, slog.Default())
	server := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:     router,
		ReadTimeout: cfg.HTTPTimeout,
		IdleTimeout: cfg.HTTPTimeout,
		// No write timeout: progress streams stay open for the life of a task.
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	if err := downloadService.Shutdown(shutdownCtx); err != nil {
		slog.Error("download service shutdown failed", "error", err)
	} else {
		slog.Info("server stopped gracefully")
	}
}
