package service

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/okhomin/media-downloader/internal/domain"
	errpkg "github.com/okhomin/media-downloader/internal/errors"
	"github.com/okhomin/media-downloader/internal/fetcher"
)

// outputTemplate names the produced file after the source title, inside the
// task's private working directory.
const outputTemplate = "%(title)s.%(ext)s"

var audioFormats = map[string]struct{}{
	"mp3":  {},
	"aac":  {},
	"wav":  {},
	"m4a":  {},
	"flac": {},
	"opus": {},
}

func isAudioFormat(format string) bool {
	_, ok := audioFormats[format]
	return ok
}

// buildFetchRequest translates a task's coarse format and quality choice
// into a concrete stream selector and post-processing steps.
//
// Audio formats take the best audio-only stream, optionally capped at the
// requested bitrate, and extract to the requested codec. mp4 is served
// natively from the best muxed stream. Every other video container takes
// the best video+audio pair and converts, which needs the transcoder.
func buildFetchRequest(task domain.Task, workDir, audioQuality string, transcoding bool) (fetcher.Request, error) {
	req := fetcher.Request{
		URL:            task.URL,
		OutputTemplate: filepath.Join(workDir, outputTemplate),
	}

	format := strings.ToLower(task.Format)
	switch {
	case isAudioFormat(format):
		if !transcoding {
			return fetcher.Request{}, errpkg.ErrTranscoderUnavailable
		}
		if task.Quality > 0 {
			req.Selector = fmt.Sprintf("bestaudio[abr<=%d]/bestaudio/best", task.Quality)
		} else {
			req.Selector = "bestaudio/best"
		}
		req.ExtractAudio = format
		req.AudioQuality = audioQuality

	case format == "mp4":
		if task.Quality > 0 {
			req.Selector = fmt.Sprintf("best[ext=mp4][height<=%d]/best[height<=%d]/best", task.Quality, task.Quality)
		} else {
			req.Selector = "best[ext=mp4]/best"
		}

	default:
		if !transcoding {
			return fetcher.Request{}, errpkg.ErrTranscoderUnavailable
		}
		if task.Quality > 0 {
			req.Selector = fmt.Sprintf("bestvideo[height<=%d]+bestaudio/best[height<=%d]", task.Quality, task.Quality)
		} else {
			req.Selector = "bestvideo+bestaudio/best"
		}
		req.RecodeVideo = format
	}

	return req, nil
}
