package fetcher

import (
	"context"

	"github.com/okhomin/media-downloader/internal/domain"
)

// Phase identifies what a progress update reports on.
type Phase string

const (
	PhaseDownloading Phase = "downloading"
	PhaseFinished    Phase = "finished"
)

// ProgressUpdate is one callback from a running fetch. Total is zero while
// the source has not reported a size; it may be an estimate that is later
// revised. Path is set only on the finished phase.
type ProgressUpdate struct {
	Phase      Phase
	Downloaded int64
	Total      int64
	Path       string
}

// ProgressFunc receives progress updates from a running fetch. It is
// invoked zero or more times, from the fetch's own goroutine.
type ProgressFunc func(ProgressUpdate)

// Request describes one fetch operation: the source URL, where output
// lands, the stream selector expression, and optional post-processing.
type Request struct {
	URL            string
	OutputTemplate string
	Selector       string

	// ExtractAudio names the target audio codec ("mp3", "m4a", ...) when
	// the fetched stream must be reduced to an audio file; empty otherwise.
	ExtractAudio string
	AudioQuality string

	// RecodeVideo names the target container when the fetched streams must
	// be converted to a non-native format; empty otherwise.
	RecodeVideo string
}

// Fetcher is the boundary with the external download/extraction tool.
type Fetcher interface {
	// Probe lists the encoded stream variants available for the URL.
	Probe(ctx context.Context, url string) ([]domain.StreamDescriptor, error)

	// Fetch downloads the selected streams, reporting progress through
	// onProgress, and returns the path of the produced file.
	Fetch(ctx context.Context, req Request, onProgress ProgressFunc) (string, error)
}
