package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/tubegrab/tubegrab/internal/config"
	"github.com/tubegrab/tubegrab/internal/controller"
	"github.com/tubegrab/tubegrab/internal/domain"
	errs "github.com/tubegrab/tubegrab/internal/errors"
	"github.com/tubegrab/tubegrab/internal/selection"
	"github.com/tubegrab/tubegrab/internal/validation"
)

// ResolverI defines the metadata resolution dependency.
type ResolverI interface {
	Resolve(ctx context.Context, url string) (domain.MediaItem, *domain.StreamCatalog, error)
}

// ControllerI defines the download orchestration dependency.
type ControllerI interface {
	Start(url, destinationDir string, intent domain.DownloadIntent) (*controller.Session, error)
	Current() *controller.Session
	Cancel() error
}

// DownloadHandler handles HTTP requests for resolution and downloads.
type DownloadHandler struct {
	resolver   ResolverI
	controller ControllerI
	cfg        *config.Config
	validator  *validator.Validate
	logger     *slog.Logger
}

// NewDownloadHandler creates a handler with the shared validator.
func NewDownloadHandler(resolver ResolverI, ctrl ControllerI, cfg *config.Config, logger *slog.Logger) *DownloadHandler {
	return &DownloadHandler{
		resolver:   resolver,
		controller: ctrl,
		cfg:        cfg,
		validator:  validation.New(),
		logger:     logger,
	}
}

// Resolve handles POST /api/v1/resolve.
func (h *DownloadHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req domain.ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.logger.Warn("validation failed", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.ResolveTimeout)
	defer cancel()

	item, catalog, err := h.resolver.Resolve(ctx, req.URL)
	if err != nil {
		h.logger.Error("resolve failed", "url", req.URL, "error", err)
		writeError(w, resolveStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resolveResponse(item, catalog))
}

// StartDownload handles POST /api/v1/downloads.
func (h *DownloadHandler) StartDownload(w http.ResponseWriter, r *http.Request) {
	var req domain.StartDownloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.logger.Warn("validation failed", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	intent := domain.DownloadIntent{
		Kind:       domain.StreamKind(req.Kind),
		Resolution: req.Resolution,
	}
	if intent.Kind == domain.StreamProgressive && intent.Resolution == "" {
		writeError(w, http.StatusBadRequest, "resolution is required for progressive video")
		return
	}

	destination := req.DestinationDir
	if destination == "" {
		destination = h.cfg.DownloadDir
	}

	session, err := h.controller.Start(req.URL, destination, intent)
	if err != nil {
		h.logger.Warn("start rejected", "url", req.URL, "error", err)
		writeError(w, startStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"session_id": session.ID,
	})
}

// CurrentSession handles GET /api/v1/downloads/current.
func (h *DownloadHandler) CurrentSession(w http.ResponseWriter, r *http.Request) {
	session := h.controller.Current()
	if session == nil {
		writeError(w, http.StatusNotFound, "no download session")
		return
	}
	writeJSON(w, http.StatusOK, session.Snapshot())
}

// CancelDownload handles DELETE /api/v1/downloads/current.
func (h *DownloadHandler) CancelDownload(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.Cancel(); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// eventPayload is the wire form of a session event.
type eventPayload struct {
	Type     domain.EventType `json:"type"`
	Percent  int              `json:"percent,omitempty"`
	SpeedBPS float64          `json:"speed_bps,omitempty"`
	Bytes    int64            `json:"bytes,omitempty"`
	FilePath string           `json:"file_path,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// SessionEvents handles GET /api/v1/downloads/current/events as a
// server-sent-event stream: progress events followed by the terminal event,
// after which the stream ends.
func (h *DownloadHandler) SessionEvents(w http.ResponseWriter, r *http.Request) {
	session := h.controller.Current()
	if session == nil {
		writeError(w, http.StatusNotFound, "no download session")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-session.Events():
			if !open {
				return
			}
			payload := eventPayload{
				Type:     ev.Type,
				Percent:  ev.Percent,
				SpeedBPS: ev.SpeedBPS,
				Bytes:    ev.Bytes,
				FilePath: ev.FilePath,
			}
			if ev.Err != nil {
				payload.Error = ev.Err.Error()
			}
			data, err := json.Marshal(payload)
			if err != nil {
				h.logger.Error("failed to marshal event", "error", err)
				return
			}
			if _, err := w.Write(append(append([]byte("data: "), data...), '\n', '\n')); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func resolveResponse(item domain.MediaItem, catalog *domain.StreamCatalog) domain.ResolveResponse {
	resp := domain.ResolveResponse{
		URL:                  item.URL,
		Title:                item.Title,
		DisplayTitle:         item.DisplayTitle(),
		DurationSec:          item.DurationSec,
		Duration:             item.DurationString(),
		AvailableResolutions: catalog.AvailableProgressiveResolutions(),
	}
	if intent, ok := selection.DefaultIntent(catalog); ok {
		resp.DefaultKind = intent.Kind
		resp.DefaultResolution = intent.Resolution
	}
	for _, s := range catalog.All() {
		resp.Streams = append(resp.Streams, domain.StreamInfo{
			Kind:       s.Kind,
			Resolution: s.Resolution,
			Bitrate:    s.Bitrate,
			SizeBytes:  s.SizeBytes,
			MimeType:   s.MimeType,
		})
	}
	return resp
}

func resolveStatus(err error) int {
	re, ok := errs.AsResolveError(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch re.Kind {
	case errs.ResolveInvalidInput, errs.ResolveParseFailure:
		return http.StatusBadRequest
	case errs.ResolveNetworkFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func startStatus(err error) int {
	switch {
	case errors.Is(err, errs.ErrAlreadyInProgress):
		return http.StatusConflict
	case errors.Is(err, errs.ErrEmptyURL),
		errors.Is(err, errs.ErrEmptyDestination),
		errors.Is(err, errs.ErrDestinationNotDir):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}
