// Package selection implements the deterministic stream selection rules.
package selection

import (
	"github.com/tubegrab/tubegrab/internal/domain"
)

// Select picks one stream from the catalog for the given intent. Audio-only
// intents take the highest-bitrate audio stream; progressive intents match
// the requested resolution exactly, with no fallback to a nearby one. A nil
// result means no matching stream exists, which is a normal outcome and not
// an error.
func Select(catalog *domain.StreamCatalog, intent domain.DownloadIntent) *domain.StreamDescriptor {
	if catalog == nil {
		return nil
	}

	switch intent.Kind {
	case domain.StreamAudioOnly:
		return catalog.BestAudio()
	case domain.StreamProgressive:
		return catalog.ProgressiveAt(intent.Resolution)
	default:
		return nil
	}
}

// DefaultIntent is the selection the caller starts from: the highest
// available progressive resolution, or audio-only when the catalog has no
// progressive streams. The second return is false when the catalog offers
// nothing downloadable.
func DefaultIntent(catalog *domain.StreamCatalog) (domain.DownloadIntent, bool) {
	if catalog == nil {
		return domain.DownloadIntent{}, false
	}

	if resolutions := catalog.AvailableProgressiveResolutions(); len(resolutions) > 0 {
		return domain.DownloadIntent{
			Kind:       domain.StreamProgressive,
			Resolution: resolutions[0],
		}, true
	}

	if catalog.BestAudio() != nil {
		return domain.DownloadIntent{Kind: domain.StreamAudioOnly}, true
	}

	return domain.DownloadIntent{}, false
}
