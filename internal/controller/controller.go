// Package controller orchestrates download sessions: it owns the
// single-flight guard, runs resolution, selection and the byte transfer on a
// background goroutine, and streams progress and terminal events to the
// caller.
package controller

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/tubegrab/tubegrab/internal/config"
	"github.com/tubegrab/tubegrab/internal/domain"
	errs "github.com/tubegrab/tubegrab/internal/errors"
	"github.com/tubegrab/tubegrab/internal/metrics"
	"github.com/tubegrab/tubegrab/internal/progress"
	"github.com/tubegrab/tubegrab/internal/selection"
	"github.com/tubegrab/tubegrab/internal/storage"
)

// Resolver is the metadata resolution collaborator.
type Resolver interface {
	Resolve(ctx context.Context, url string) (domain.MediaItem, *domain.StreamCatalog, error)
}

// Controller runs at most one download session at a time.
type Controller struct {
	resolver Resolver
	cfg      *config.Config
	logger   *slog.Logger

	// guard is the single shared mutable resource: an atomic Idle/busy
	// transition, engaged only after the cheap precondition checks pass.
	guard atomicGuard

	sessions sessionSlot
}

// New creates a controller around the given resolver.
func New(resolver Resolver, cfg *config.Config, logger *slog.Logger) *Controller {
	return &Controller{
		resolver: resolver,
		cfg:      cfg,
		logger:   logger,
	}
}

// Start validates preconditions, engages the single-flight guard and hands
// the transfer to a background goroutine. It returns the session handle
// immediately; the session's event stream carries zero or more progress
// events followed by exactly one terminal event.
//
// Rejections are checked in order: empty URL, empty or unusable destination,
// session already in flight. A rejected Start has no other effect.
func (c *Controller) Start(url, destinationDir string, intent domain.DownloadIntent) (*Session, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errs.ErrEmptyURL
	}

	destinationDir = strings.TrimSpace(destinationDir)
	if destinationDir == "" {
		return nil, errs.ErrEmptyDestination
	}
	info, err := os.Stat(destinationDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", errs.ErrDestinationNotDir, destinationDir)
	}

	if !c.guard.acquire() {
		metrics.DownloadsRejected.Inc()
		return nil, errs.ErrAlreadyInProgress
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.DownloadTimeout)
	session := newSession(url, destinationDir, intent, c.cfg.EventBufferSize, cancel)
	c.sessions.set(session)

	metrics.DownloadsStarted.Inc()
	c.logger.Info("download session started",
		"session_id", session.ID,
		"url", url,
		"destination", destinationDir,
		"kind", intent.Kind,
	)

	go c.run(ctx, session)
	return session, nil
}

// Current returns the most recent session, or nil when none was ever started.
// The returned session may already be terminal.
func (c *Controller) Current() *Session {
	return c.sessions.get()
}

// Cancel aborts the in-flight session's transfer. The session still ends
// with exactly one (failed) terminal event. Returns ErrNoActiveSession when
// nothing is in flight.
func (c *Controller) Cancel() error {
	session := c.sessions.get()
	if session == nil || !session.State().IsActive() {
		return errs.ErrNoActiveSession
	}
	session.cancel()
	return nil
}

// run executes one session end to end. Whatever happens, the guard returns
// to Idle and the session receives exactly one terminal event.
func (c *Controller) run(ctx context.Context, session *Session) {
	defer session.cancel()
	defer c.guard.release()
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("session panicked", "session_id", session.ID, "panic", r)
			c.fail(session, fmt.Errorf("internal fault: %v", r))
		}
	}()

	resolveCtx, cancelResolve := context.WithTimeout(ctx, c.cfg.ResolveTimeout)
	item, catalog, err := c.resolver.Resolve(resolveCtx, session.URL())
	cancelResolve()
	if err != nil {
		c.fail(session, err)
		return
	}
	session.setResolved(item)

	session.setState(domain.StateAwaitingSelection)
	stream := selection.Select(catalog, session.Intent())
	if stream == nil {
		c.fail(session, errs.ErrNoMatchingStream)
		return
	}

	session.setState(domain.StateDownloading)
	c.transfer(ctx, session, stream)
}

func (c *Controller) transfer(ctx context.Context, session *Session, stream *domain.StreamDescriptor) {
	started := time.Now()

	src, total, err := stream.Open(ctx)
	if err != nil {
		c.fail(session, fmt.Errorf("open stream: %w", err))
		return
	}
	defer src.Close()

	if total <= 0 {
		total = stream.SizeBytes
	}

	monitor := progress.NewMonitor()
	store := storage.NewFileStorage(session.DestinationDir(), c.cfg.CopyBufferSize)

	// Partial output is left in place on failure; callers decide what to do
	// with it.
	path, written, err := store.SaveStream(ctx, src, stream.Filename(), func(written int64) {
		sample, ok := monitor.OnChunk(total, total-written)
		if !ok {
			return
		}
		session.recordProgress(sample)
		session.emit(domain.Event{
			Type:     domain.EventProgress,
			Percent:  sample.Percent,
			SpeedBPS: sample.SpeedBPS,
			Bytes:    sample.Bytes,
		})
	})
	if err != nil {
		c.fail(session, err)
		return
	}

	metrics.DownloadBytes.Add(float64(written))
	metrics.DownloadDuration.Observe(time.Since(started).Seconds())
	metrics.DownloadsCompleted.Inc()

	// Completion forces a final 100% progress event even when the stream
	// size was unknown during the transfer.
	final := progress.Sample{Percent: 100, SpeedBPS: session.SpeedBPS(), Bytes: written}
	session.recordProgress(final)
	session.emit(domain.Event{
		Type:     domain.EventProgress,
		Percent:  final.Percent,
		SpeedBPS: final.SpeedBPS,
		Bytes:    final.Bytes,
	})

	session.complete(path)
	c.logger.Info("download completed",
		"session_id", session.ID,
		"path", path,
		"bytes", written,
	)
}

func (c *Controller) fail(session *Session, err error) {
	metrics.DownloadsFailed.Inc()
	session.failWith(err)
	c.logger.Error("download failed", "session_id", session.ID, "url", session.URL(), "error", err)
}
