package fetcher

import (
	"log/slog"
	"os/exec"
)

// Transcoder reports whether the external transcoding tools are present.
// The probe runs once at startup; the result is read-only afterwards.
type Transcoder struct {
	available bool
}

// DetectTranscoder looks up ffmpeg and ffprobe in PATH. Audio extraction
// and container conversion need both.
func DetectTranscoder(ffmpegBin, ffprobeBin string) *Transcoder {
	_, ffmpegErr := exec.LookPath(ffmpegBin)
	_, ffprobeErr := exec.LookPath(ffprobeBin)

	available := ffmpegErr == nil && ffprobeErr == nil
	if !available {
		slog.Warn("ffmpeg/ffprobe not found: audio extraction and non-mp4 conversion are disabled",
			"ffmpeg", ffmpegBin, "ffprobe", ffprobeBin)
	}

	return &Transcoder{available: available}
}

// StaticTranscoder returns a Transcoder with fixed availability, for
// wiring where no probe is wanted.
func StaticTranscoder(available bool) *Transcoder {
	return &Transcoder{available: available}
}

// Available reports whether transcoding-dependent operations may run.
func (t *Transcoder) Available() bool {
	return t.available
}
