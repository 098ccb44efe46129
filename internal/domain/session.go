package domain

// SessionState is one node of the download session state machine.
type SessionState string

const (
	StateIdle              SessionState = "idle"
	StateResolving         SessionState = "resolving"
	StateAwaitingSelection SessionState = "awaiting_selection"
	StateDownloading       SessionState = "downloading"
	StateCompleted         SessionState = "completed"
	StateFailed            SessionState = "failed"
)

func (s SessionState) String() string {
	return string(s)
}

// IsActive reports whether the session holds the single-flight slot.
func (s SessionState) IsActive() bool {
	return s == StateResolving || s == StateAwaitingSelection || s == StateDownloading
}

// IsTerminal reports whether the session has reached a final outcome.
func (s SessionState) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed
}

// DownloadIntent is the caller's per-attempt choice of variant.
type DownloadIntent struct {
	Kind       StreamKind
	Resolution string // used only when Kind is StreamProgressive
}

// EventType tags session events.
type EventType string

const (
	EventProgress  EventType = "progress"
	EventCompleted EventType = "completed"
	EventFailed    EventType = "failed"
)

// Event is one entry of a session's event stream: zero or more progress
// events followed by exactly one terminal (completed or failed) event.
type Event struct {
	Type EventType

	// progress fields
	Percent  int     // 0..100, -1 when total size is unknown
	SpeedBPS float64 // cumulative average, 0 before the second chunk
	Bytes    int64   // bytes transferred so far

	// terminal fields
	FilePath string // completed only
	Err      error  // failed only
}

// IsTerminal reports whether this event ends the session's stream.
func (e Event) IsTerminal() bool {
	return e.Type == EventCompleted || e.Type == EventFailed
}
