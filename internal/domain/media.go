package domain

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"

	errs "github.com/tubegrab/tubegrab/internal/errors"
)

// StreamKind distinguishes the two downloadable variant families.
type StreamKind string

const (
	StreamAudioOnly   StreamKind = "audio_only"
	StreamProgressive StreamKind = "progressive_video"
)

// ProgressiveResolutions is the fixed set of supported progressive labels,
// highest first.
var ProgressiveResolutions = []string{"720p", "480p", "360p", "240p"}

// MediaItem holds resolved metadata for one remote media item. Immutable.
type MediaItem struct {
	URL         string
	Title       string
	DurationSec int
}

const displayTitleMax = 50

// DisplayTitle returns the title truncated to 50 characters with an ellipsis.
func (m MediaItem) DisplayTitle() string {
	runes := []rune(m.Title)
	if len(runes) <= displayTitleMax {
		return m.Title
	}
	return string(runes[:displayTitleMax]) + "..."
}

// DurationString formats the duration as m:ss, or h:mm:ss past one hour.
func (m MediaItem) DurationString() string {
	hours := m.DurationSec / 3600
	minutes := (m.DurationSec % 3600) / 60
	seconds := m.DurationSec % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// StreamSource is the opaque transport behind a descriptor. Open yields the
// byte stream and the total size in bytes (0 when unknown).
type StreamSource interface {
	Open(ctx context.Context) (io.ReadCloser, int64, error)
	Filename() string
}

// StreamDescriptor describes one encoded variant of a media item. The
// descriptor itself is immutable; its download handle may be opened once.
type StreamDescriptor struct {
	Kind       StreamKind
	Resolution string // progressive only, e.g. "480p"
	Bitrate    int    // bits per second, meaningful for audio ranking
	SizeBytes  int64  // 0 when unknown
	MimeType   string

	source   StreamSource
	consumed atomic.Bool
}

// NewStreamDescriptor builds a descriptor around an unconsumed source.
func NewStreamDescriptor(kind StreamKind, resolution string, bitrate int, size int64, mimeType string, src StreamSource) *StreamDescriptor {
	return &StreamDescriptor{
		Kind:       kind,
		Resolution: resolution,
		Bitrate:    bitrate,
		SizeBytes:  size,
		MimeType:   mimeType,
		source:     src,
	}
}

// Open consumes the descriptor's handle and returns the byte stream with its
// total size. A second call fails with ErrHandleConsumed.
func (d *StreamDescriptor) Open(ctx context.Context) (io.ReadCloser, int64, error) {
	if !d.consumed.CompareAndSwap(false, true) {
		return nil, 0, errs.ErrHandleConsumed
	}
	return d.source.Open(ctx)
}

// Filename is the stream's native output filename.
func (d *StreamDescriptor) Filename() string {
	return d.source.Filename()
}
