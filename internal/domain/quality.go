package domain

import "fmt"

// StreamDescriptor is metadata for one encoded variant of a source item.
// Video quality is the vertical resolution in pixels, audio quality the
// bitrate in kbps. Bitrate is the overall bitrate used as a tie-breaker.
type StreamDescriptor struct {
	HasVideo     bool
	HasAudio     bool
	Height       int
	AudioBitrate int
	Bitrate      int
}

// QualityOption is a user-facing selectable quality tier derived from
// deduplicated stream descriptors. Options are emitted best-first, so
// their position in the slice is the ranking.
type QualityOption struct {
	Key   int    `json:"key"`
	Label string `json:"label"`
}

// QualityCatalog groups resolved quality options per media class.
type QualityCatalog struct {
	Video []QualityOption `json:"video"`
	Audio []QualityOption `json:"audio"`
}

// VideoLabel maps a vertical resolution to its marketing band.
func VideoLabel(height int) string {
	switch {
	case height >= 2160:
		return "4K"
	case height >= 1440:
		return "2K"
	case height >= 1080:
		return "1080p"
	case height >= 720:
		return "720p"
	default:
		return fmt.Sprintf("%dp", height)
	}
}

// AudioLabel maps an audio bitrate in kbps to its display label.
func AudioLabel(bitrate int) string {
	return fmt.Sprintf("%d kbps", bitrate)
}
