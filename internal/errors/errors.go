package errors

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyURL          = errors.New("url is empty")
	ErrEmptyDestination  = errors.New("destination directory is empty")
	ErrDestinationNotDir = errors.New("destination is not a writable directory")
	ErrAlreadyInProgress = errors.New("a download is already in progress")
	ErrNoMatchingStream  = errors.New("no stream matches the requested selection")
	ErrNoActiveSession   = errors.New("no active download session")
	ErrHandleConsumed    = errors.New("stream handle already consumed")
)

// ResolveKind classifies why metadata resolution failed.
type ResolveKind string

const (
	ResolveInvalidInput   ResolveKind = "invalid_input"
	ResolveNetworkFailure ResolveKind = "network_failure"
	ResolveParseFailure   ResolveKind = "parse_failure"
)

// ResolveError wraps a metadata resolution failure with its classification.
type ResolveError struct {
	Kind  ResolveKind
	Cause error
}

func (e *ResolveError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("resolve failed: %s", e.Kind)
	}
	return fmt.Sprintf("resolve failed (%s): %v", e.Kind, e.Cause)
}

func (e *ResolveError) Unwrap() error {
	return e.Cause
}

// NewResolveError builds a ResolveError of the given kind.
func NewResolveError(kind ResolveKind, cause error) *ResolveError {
	return &ResolveError{Kind: kind, Cause: cause}
}

// AsResolveError extracts a ResolveError from an error chain.
func AsResolveError(err error) (*ResolveError, bool) {
	var re *ResolveError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
