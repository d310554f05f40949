package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration settings.
type Config struct {
	Environment string `envconfig:"MD_ENV" default:"development"`

	HTTPPort    int           `envconfig:"MD_HTTP_PORT" default:"8080"`
	HTTPTimeout time.Duration `envconfig:"MD_HTTP_TIMEOUT" default:"15s"`

	WorkerPoolSize  int           `envconfig:"MD_WORKER_POOL_SIZE" default:"4"`
	QueueSize       int           `envconfig:"MD_QUEUE_SIZE" default:"100"`
	DownloadTimeout time.Duration `envconfig:"MD_DOWNLOAD_TIMEOUT" default:"30m"`
	MaxBatchItems   int           `envconfig:"MD_MAX_BATCH_ITEMS" default:"50"`

	WorkDir      string        `envconfig:"MD_WORK_DIR" default:"./downloads"`
	PollInterval time.Duration `envconfig:"MD_POLL_INTERVAL" default:"500ms"`
	AudioQuality string        `envconfig:"MD_AUDIO_QUALITY" default:"192K"`

	YTDLPBin   string `envconfig:"MD_YTDLP_BIN" default:"yt-dlp"`
	FFmpegBin  string `envconfig:"MD_FFMPEG_BIN" default:"ffmpeg"`
	FFprobeBin string `envconfig:"MD_FFPROBE_BIN" default:"ffprobe"`

	ShutdownTimeout time.Duration `envconfig:"MD_SHUTDOWN_TIMEOUT" default:"30s"`

	LogLevel  string `envconfig:"MD_LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"MD_LOG_FORMAT" default:"json"`
}

// Validate checks the configuration for invalid or missing values.
// Returns an error describing the first invalid setting found.
func (c *Config) Validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}

	if c.WorkerPoolSize <= 0 {
		return fmt.Errorf("worker pool size must be positive: %d", c.WorkerPoolSize)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("queue size must be positive: %d", c.QueueSize)
	}
	if c.MaxBatchItems <= 0 {
		return fmt.Errorf("max batch items must be positive: %d", c.MaxBatchItems)
	}

	if c.WorkDir == "" {
		return fmt.Errorf("work directory cannot be empty")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive: %s", c.PollInterval)
	}
	if c.YTDLPBin == "" {
		return fmt.Errorf("yt-dlp binary cannot be empty")
	}

	return nil
}
