package domain

import "time"

// ResolveRequest is the request body for resolving media metadata.
type ResolveRequest struct {
	URL string `json:"url" validate:"required,youtube_url"`
}

// StreamInfo is the wire representation of one catalog entry.
type StreamInfo struct {
	Kind       StreamKind `json:"kind"`
	Resolution string     `json:"resolution,omitempty"`
	Bitrate    int        `json:"bitrate,omitempty"`
	SizeBytes  int64      `json:"size_bytes,omitempty"`
	MimeType   string     `json:"mime_type"`
}

// ResolveResponse carries resolved metadata and the variant catalog summary.
type ResolveResponse struct {
	URL                  string       `json:"url"`
	Title                string       `json:"title"`
	DisplayTitle         string       `json:"display_title"`
	DurationSec          int          `json:"duration_sec"`
	Duration             string       `json:"duration"`
	Streams              []StreamInfo `json:"streams"`
	AvailableResolutions []string     `json:"available_resolutions"`
	DefaultKind          StreamKind   `json:"default_kind,omitempty"`
	DefaultResolution    string       `json:"default_resolution,omitempty"`
}

// StartDownloadRequest is the request body for starting a download session.
type StartDownloadRequest struct {
	URL            string `json:"url" validate:"required,youtube_url"`
	DestinationDir string `json:"destination_dir,omitempty"`
	Kind           string `json:"kind" validate:"required,oneof=audio_only progressive_video"`
	Resolution     string `json:"resolution,omitempty" validate:"omitempty,oneof=720p 480p 360p 240p"`
}

// SessionResponse is the snapshot of a download session returned to callers.
type SessionResponse struct {
	ID         string       `json:"session_id"`
	State      SessionState `json:"state"`
	URL        string       `json:"url"`
	Title      string       `json:"title,omitempty"`
	Percent    int          `json:"percent"`
	SpeedBPS   float64      `json:"speed_bps"`
	Bytes      int64        `json:"bytes"`
	OutputPath string       `json:"output_path,omitempty"`
	Error      string       `json:"error,omitempty"`
	StartedAt  time.Time    `json:"started_at"`
}
