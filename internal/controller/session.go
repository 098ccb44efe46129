package controller

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/tubegrab/tubegrab/internal/domain"
	"github.com/tubegrab/tubegrab/internal/progress"
)

// atomicGuard is the process-wide single-flight guard: a check-and-set from
// Idle to busy. Contention is rare, so no lock is needed beyond the CAS.
type atomicGuard struct {
	busy atomic.Bool
}

func (g *atomicGuard) acquire() bool {
	return g.busy.CompareAndSwap(false, true)
}

func (g *atomicGuard) release() {
	g.busy.Store(false)
}

// sessionSlot holds the most recent session for observers.
type sessionSlot struct {
	mu      sync.RWMutex
	current *Session
}

func (s *sessionSlot) set(session *Session) {
	s.mu.Lock()
	s.current = session
	s.mu.Unlock()
}

func (s *sessionSlot) get() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Session is the live state of one download attempt. It is created by
// Controller.Start and mutated only by the session's own goroutine; readers
// take snapshots.
type Session struct {
	ID        uuid.UUID
	startedAt time.Time

	url     string
	destDir string
	intent  domain.DownloadIntent
	cancel  context.CancelFunc

	events   chan domain.Event
	done     chan struct{}
	finish   sync.Once
	terminal domain.Event

	mu         sync.RWMutex
	state      domain.SessionState
	item       domain.MediaItem
	percent    int
	speedBPS   float64
	bytes      int64
	outputPath string
	err        error
}

func newSession(url, destDir string, intent domain.DownloadIntent, eventBuffer int, cancel context.CancelFunc) *Session {
	return &Session{
		ID:        uuid.New(),
		startedAt: time.Now(),
		url:       url,
		destDir:   destDir,
		intent:    intent,
		cancel:    cancel,
		events:    make(chan domain.Event, eventBuffer),
		done:      make(chan struct{}),
		state:     domain.StateResolving,
	}
}

// Events returns the session's event stream. The channel is closed after the
// terminal event. Progress events may be dropped when the subscriber lags;
// the terminal outcome is always available through Wait or Snapshot.
func (s *Session) Events() <-chan domain.Event {
	return s.events
}

// Wait blocks until the session reaches a terminal state or the context is
// canceled, and returns the terminal event.
func (s *Session) Wait(ctx context.Context) (domain.Event, error) {
	select {
	case <-s.done:
		return s.terminal, nil
	case <-ctx.Done():
		return domain.Event{}, ctx.Err()
	}
}

// URL returns the session's source URL.
func (s *Session) URL() string {
	return s.url
}

// DestinationDir returns the session's destination directory.
func (s *Session) DestinationDir() string {
	return s.destDir
}

// Intent returns the caller's variant choice for this attempt.
func (s *Session) Intent() domain.DownloadIntent {
	return s.intent
}

// State returns the session's current state.
func (s *Session) State() domain.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SpeedBPS returns the last derived throughput figure.
func (s *Session) SpeedBPS() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.speedBPS
}

// Snapshot returns a consistent view of the session for display.
func (s *Session) Snapshot() domain.SessionResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	resp := domain.SessionResponse{
		ID:        s.ID.String(),
		State:     s.state,
		URL:       s.url,
		Title:     s.item.Title,
		Percent:   s.percent,
		SpeedBPS:  s.speedBPS,
		Bytes:     s.bytes,
		StartedAt: s.startedAt,
	}
	if s.outputPath != "" {
		resp.OutputPath = s.outputPath
	}
	if s.err != nil {
		resp.Error = s.err.Error()
	}
	return resp
}

func (s *Session) setState(state domain.SessionState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *Session) setResolved(item domain.MediaItem) {
	s.mu.Lock()
	s.item = item
	s.mu.Unlock()
}

func (s *Session) recordProgress(sample progress.Sample) {
	s.mu.Lock()
	if sample.Percent >= 0 {
		s.percent = sample.Percent
	}
	if sample.SpeedBPS > 0 {
		s.speedBPS = sample.SpeedBPS
	}
	s.bytes = sample.Bytes
	s.mu.Unlock()
}

// emit delivers a progress event without blocking the transfer; a lagging
// subscriber loses samples, never the terminal outcome.
func (s *Session) emit(event domain.Event) {
	select {
	case s.events <- event:
	default:
	}
}

// emitTerminal always lands the terminal event on the stream, evicting stale
// progress events if the buffer is full. Only the session goroutine sends, so
// draining one slot guarantees the next attempt succeeds.
func (s *Session) emitTerminal(event domain.Event) {
	for {
		select {
		case s.events <- event:
			return
		default:
			select {
			case <-s.events:
			default:
			}
		}
	}
}

// complete records the successful outcome and closes the event stream.
// Exactly one terminal event is ever delivered.
func (s *Session) complete(path string) {
	s.finish.Do(func() {
		s.mu.Lock()
		s.state = domain.StateCompleted
		s.outputPath = path
		s.mu.Unlock()

		s.terminal = domain.Event{Type: domain.EventCompleted, FilePath: path}
		s.emitTerminal(s.terminal)
		close(s.done)
		close(s.events)
	})
}

// failWith records the failure outcome and closes the event stream.
func (s *Session) failWith(err error) {
	s.finish.Do(func() {
		s.mu.Lock()
		s.state = domain.StateFailed
		s.err = err
		s.mu.Unlock()

		s.terminal = domain.Event{Type: domain.EventFailed, Err: err}
		s.emitTerminal(s.terminal)
		close(s.done)
		close(s.events)
	})
}
