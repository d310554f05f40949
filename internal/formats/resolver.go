package formats

import (
	"sort"

	"github.com/okhomin/media-downloader/internal/domain"
)

// Resolve reduces a catalog of stream descriptors to the selectable quality
// tiers per media class. Muxed streams carry both classes and cannot be
// cleanly bitrate-limited, so they are excluded from either list.
//
// Within a class, streams sharing a quality metric collapse to the one with
// the highest overall bitrate (first seen wins ties), and the result is
// ordered best-first.
func Resolve(catalog []domain.StreamDescriptor) domain.QualityCatalog {
	video := make(map[int]domain.StreamDescriptor)
	audio := make(map[int]domain.StreamDescriptor)

	for _, s := range catalog {
		switch {
		case s.HasVideo && !s.HasAudio && s.Height > 0:
			if best, ok := video[s.Height]; !ok || s.Bitrate > best.Bitrate {
				video[s.Height] = s
			}
		case s.HasAudio && !s.HasVideo && s.AudioBitrate > 0:
			if best, ok := audio[s.AudioBitrate]; !ok || s.Bitrate > best.Bitrate {
				audio[s.AudioBitrate] = s
			}
		}
	}

	return domain.QualityCatalog{
		Video: options(video, domain.VideoLabel),
		Audio: options(audio, domain.AudioLabel),
	}
}

func options(byMetric map[int]domain.StreamDescriptor, label func(int) string) []domain.QualityOption {
	metrics := make([]int, 0, len(byMetric))
	for m := range byMetric {
		metrics = append(metrics, m)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(metrics)))

	opts := make([]domain.QualityOption, 0, len(metrics))
	for _, m := range metrics {
		opts = append(opts, domain.QualityOption{Key: m, Label: label(m)})
	}
	return opts
}
