package manager

import (
	"errors"
	"net/http"
	"strings"
)

// Backpressure reasons carried by too-busy errors.
const (
	ReasonQueueFull   = "queue_full"
	ReasonWaitTimeout = "wait_timeout"
	ReasonDraining    = "draining"
)

// tooBusyError signals queue timeout/overflow for 429 mapping.
type tooBusyError struct{ reason string }

func (e tooBusyError) Error() string { return "too busy: " + strings.ReplaceAll(e.reason, "_", " ") }

// IsTooBusy reports whether err indicates backpressure (return 429).
func IsTooBusy(err error) bool {
	var e tooBusyError
	return errors.As(err, &e)
}

// TooBusyReason returns the backpressure reason of err, or "" if err is not
// a too-busy error.
func TooBusyReason(err error) string {
	var e tooBusyError
	if errors.As(err, &e) {
		return e.reason
	}
	return ""
}

// presetNotFoundError is returned when a requested preset id is not in the registry.
type presetNotFoundError struct{ id string }

func (e presetNotFoundError) Error() string { return "preset not found: " + e.id }

// ErrPresetNotFound returns an error for a missing preset id.
func ErrPresetNotFound(id string) error { return presetNotFoundError{id: id} }

// IsPresetNotFound reports whether the error indicates a missing preset id.
func IsPresetNotFound(err error) bool {
	var e presetNotFoundError
	return errors.As(err, &e)
}

// invalidRequestError wraps a request the simulator cannot run. It carries
// its HTTP status so the API layer can map it without importing the
// simulation packages.
type invalidRequestError struct{ err error }

func (e invalidRequestError) Error() string   { return "invalid request: " + e.err.Error() }
func (e invalidRequestError) Unwrap() error   { return e.err }
func (e invalidRequestError) StatusCode() int { return http.StatusBadRequest }

// ErrInvalidRequest wraps err as an invalid request.
func ErrInvalidRequest(err error) error { return invalidRequestError{err: err} }

// IsInvalidRequest reports whether err indicates a rejected request (return 400).
func IsInvalidRequest(err error) bool {
	var e invalidRequestError
	return errors.As(err, &e)
}
