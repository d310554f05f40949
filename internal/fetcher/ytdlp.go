package fetcher

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"

	"github.com/okhomin/media-downloader/internal/domain"
)

// progressTemplate makes yt-dlp emit machine-readable progress lines on
// stdout, one per update. Fields may be "NA" when unknown.
const progressTemplate = "download:dl|%(progress.downloaded_bytes)s|%(progress.total_bytes)s|%(progress.total_bytes_estimate)s"

const progressPrefix = "dl|"

// pathTemplate tags the final filepath print so it can be told apart from
// informational stdout lines such as "Deleting original file ...".
const pathTemplate = "after_move:path|%(filepath)s"

const pathPrefix = "path|"

// YTDLP drives the yt-dlp binary. Post-processing (audio extraction,
// container conversion) is delegated to yt-dlp's ffmpeg postprocessors.
type YTDLP struct {
	bin    string
	logger *slog.Logger
}

// NewYTDLP creates a YTDLP fetcher using the given binary name or path.
func NewYTDLP(bin string, logger *slog.Logger) *YTDLP {
	if bin == "" {
		bin = "yt-dlp"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &YTDLP{bin: bin, logger: logger}
}

// Probe lists the available stream variants for the URL via `yt-dlp -J`.
func (y *YTDLP) Probe(ctx context.Context, url string) ([]domain.StreamDescriptor, error) {
	cmd := exec.CommandContext(ctx, y.bin, "-J", "--no-playlist", "--no-warnings", url)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w: %s", url, err, lastLine(stderr.String()))
	}

	var info struct {
		Formats []struct {
			Vcodec string  `json:"vcodec"`
			Acodec string  `json:"acodec"`
			Height int     `json:"height"`
			ABR    float64 `json:"abr"`
			TBR    float64 `json:"tbr"`
		} `json:"formats"`
	}
	if err := json.Unmarshal(out, &info); err != nil {
		return nil, fmt.Errorf("parse probe output: %w", err)
	}

	streams := make([]domain.StreamDescriptor, 0, len(info.Formats))
	for _, f := range info.Formats {
		streams = append(streams, domain.StreamDescriptor{
			HasVideo:     f.Vcodec != "" && f.Vcodec != "none",
			HasAudio:     f.Acodec != "" && f.Acodec != "none",
			Height:       f.Height,
			AudioBitrate: int(f.ABR),
			Bitrate:      int(f.TBR),
		})
	}
	return streams, nil
}

// Fetch runs yt-dlp for the request, forwarding progress lines to
// onProgress, and returns the final file path reported after post-processing.
func (y *YTDLP) Fetch(ctx context.Context, req Request, onProgress ProgressFunc) (string, error) {
	args := []string{
		"--no-playlist",
		"--no-warnings",
		"--newline",
		"--no-quiet",
		"-o", req.OutputTemplate,
		"--progress-template", progressTemplate,
		"--print", pathTemplate,
	}
	if req.Selector != "" {
		args = append(args, "-f", req.Selector)
	}
	if req.ExtractAudio != "" {
		args = append(args, "-x", "--audio-format", req.ExtractAudio)
		if req.AudioQuality != "" {
			args = append(args, "--audio-quality", req.AudioQuality)
		}
	}
	if req.RecodeVideo != "" {
		args = append(args, "--recode-video", req.RecodeVideo)
	}
	args = append(args, req.URL)

	y.logger.Debug("starting fetch", "url", req.URL, "selector", req.Selector,
		"extract_audio", req.ExtractAudio, "recode_video", req.RecodeVideo)

	cmd := exec.CommandContext(ctx, y.bin, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("pipe stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("start %s: %w", y.bin, err)
	}

	var path string
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if update, ok := parseProgressLine(line); ok {
			if onProgress != nil {
				onProgress(update)
			}
			continue
		}
		if p, ok := parsePathLine(line); ok {
			path = p
		}
	}

	if err := cmd.Wait(); err != nil {
		return "", fmt.Errorf("yt-dlp failed: %w: %s", err, lastLine(stderr.String()))
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read yt-dlp output: %w", err)
	}

	if onProgress != nil {
		onProgress(ProgressUpdate{Phase: PhaseFinished, Path: path})
	}
	return path, nil
}

// parseProgressLine decodes a line produced by progressTemplate. The exact
// total is preferred over the estimate when both are present.
func parseProgressLine(line string) (ProgressUpdate, bool) {
	if !strings.HasPrefix(line, progressPrefix) {
		return ProgressUpdate{}, false
	}

	fields := strings.Split(line[len(progressPrefix):], "|")
	if len(fields) != 3 {
		return ProgressUpdate{}, false
	}

	update := ProgressUpdate{
		Phase:      PhaseDownloading,
		Downloaded: parseBytes(fields[0]),
	}
	if total := parseBytes(fields[1]); total > 0 {
		update.Total = total
	} else {
		update.Total = parseBytes(fields[2])
	}
	return update, true
}

// parsePathLine decodes the final filepath line produced by pathTemplate.
// Untagged stdout lines are ignored.
func parsePathLine(line string) (string, bool) {
	if !strings.HasPrefix(line, pathPrefix) {
		return "", false
	}
	path := strings.TrimSpace(line[len(pathPrefix):])
	if path == "" {
		return "", false
	}
	return path, true
}

// parseBytes tolerates "NA" and float-formatted byte counts.
func parseBytes(s string) int64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 {
		return 0
	}
	return int64(v)
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}
