// Package resolver turns a YouTube URL into resolved metadata and a stream
// catalog using the youtube client library.
package resolver

import (
	"context"
	"io"
	"log/slog"
	"mime"
	"strings"

	"github.com/kkdai/youtube/v2"

	"github.com/tubegrab/tubegrab/internal/domain"
	errs "github.com/tubegrab/tubegrab/internal/errors"
	"github.com/tubegrab/tubegrab/internal/metrics"
)

// YouTubeResolver resolves media metadata with a single metadata round trip.
type YouTubeResolver struct {
	client *youtube.Client
	logger *slog.Logger
}

// New creates a resolver with a default youtube client.
func New(logger *slog.Logger) *YouTubeResolver {
	return &YouTubeResolver{
		client: &youtube.Client{},
		logger: logger,
	}
}

// Resolve fetches title, duration and the variant list for the given URL.
// An empty URL fails with an invalid-input ResolveError before any network
// activity; transport and parsing failures are wrapped, never panicked.
func (r *YouTubeResolver) Resolve(ctx context.Context, rawURL string) (domain.MediaItem, *domain.StreamCatalog, error) {
	metrics.ResolvesTotal.Inc()

	url := strings.TrimSpace(rawURL)
	if url == "" {
		metrics.ResolvesFailed.Inc()
		return domain.MediaItem{}, nil, errs.NewResolveError(errs.ResolveInvalidInput, errs.ErrEmptyURL)
	}

	videoID, err := youtube.ExtractVideoID(url)
	if err != nil {
		metrics.ResolvesFailed.Inc()
		return domain.MediaItem{}, nil, errs.NewResolveError(errs.ResolveParseFailure, err)
	}

	video, err := r.client.GetVideoContext(ctx, videoID)
	if err != nil {
		metrics.ResolvesFailed.Inc()
		r.logger.Error("metadata fetch failed", "url", url, "error", err)
		return domain.MediaItem{}, nil, errs.NewResolveError(errs.ResolveNetworkFailure, err)
	}

	item := domain.MediaItem{
		URL:         url,
		Title:       video.Title,
		DurationSec: int(video.Duration.Seconds()),
	}

	catalog := r.buildCatalog(video)
	r.logger.Info("media resolved",
		"url", url,
		"title", item.DisplayTitle(),
		"streams", catalog.Len(),
	)

	return item, catalog, nil
}

// buildCatalog normalizes the raw format list into stream descriptors,
// preserving the order the service reported them. Adaptive video-only
// formats are skipped: they cannot be played without a merge step.
func (r *YouTubeResolver) buildCatalog(video *youtube.Video) *domain.StreamCatalog {
	var streams []*domain.StreamDescriptor

	for i := range video.Formats {
		format := &video.Formats[i]
		mimeType := baseMimeType(format.MimeType)

		switch {
		case isAudioOnly(format):
			streams = append(streams, domain.NewStreamDescriptor(
				domain.StreamAudioOnly,
				"",
				format.Bitrate,
				format.ContentLength,
				mimeType,
				newStreamSource(r.client, video, format, mimeType),
			))
		case isProgressive(format):
			streams = append(streams, domain.NewStreamDescriptor(
				domain.StreamProgressive,
				format.QualityLabel,
				format.Bitrate,
				format.ContentLength,
				mimeType,
				newStreamSource(r.client, video, format, mimeType),
			))
		}
	}

	return domain.NewStreamCatalog(streams)
}

func isAudioOnly(f *youtube.Format) bool {
	return strings.HasPrefix(f.MimeType, "audio/")
}

func isProgressive(f *youtube.Format) bool {
	return f.QualityLabel != "" && f.AudioChannels > 0
}

func baseMimeType(raw string) string {
	mediaType, _, err := mime.ParseMediaType(raw)
	if err != nil {
		return raw
	}
	return mediaType
}

// streamSource is the opaque transport handle behind a descriptor.
type streamSource struct {
	client   *youtube.Client
	video    *youtube.Video
	format   *youtube.Format
	filename string
}

func newStreamSource(client *youtube.Client, video *youtube.Video, format *youtube.Format, mimeType string) *streamSource {
	return &streamSource{
		client:   client,
		video:    video,
		format:   format,
		filename: sanitizeFilename(video.Title) + extensionFor(mimeType),
	}
}

func (s *streamSource) Open(ctx context.Context) (io.ReadCloser, int64, error) {
	return s.client.GetStreamContext(ctx, s.video, s.format)
}

func (s *streamSource) Filename() string {
	return s.filename
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "audio/mp4":
		return ".m4a"
	case "audio/webm":
		return ".webm"
	case "video/mp4":
		return ".mp4"
	case "video/webm":
		return ".webm"
	default:
		return ".bin"
	}
}

// sanitizeFilename strips path separators and characters that are invalid on
// common filesystems, keeping the title readable.
func sanitizeFilename(title string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return '_'
		}
		return r
	}, title)

	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return "download"
	}
	return cleaned
}
