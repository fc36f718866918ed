// Package apierrors holds the shared error taxonomy used across the
// meta-learning core (trace, points, guideline, optimizer, orchestrator):
// sentinel errors plus typed wrappers that carry field-specific context
// while still satisfying errors.Is against the sentinels.
package apierrors

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks a malformed insight, illegal category, or a
	// violated invariant on caller input.
	ErrValidation = errors.New("validation error")

	// ErrConflict is returned when a caller tries to add a point whose
	// exact content already exists as an inactive, replaced-by-marked
	// point (a soft "already replaced" result).
	ErrConflict = errors.New("conflict error")

	// ErrUnknownTrace is returned when a trace id is not in the live set.
	ErrUnknownTrace = errors.New("unknown trace")

	// ErrDuplicateTrace is returned when startTrace is called with an id
	// already live.
	ErrDuplicateTrace = errors.New("duplicate trace")

	// ErrExternalTransient marks a retriable external failure: LLM rate
	// limit, network hiccup.
	ErrExternalTransient = errors.New("external transient error")

	// ErrExternalFatal marks a non-retriable external failure: repeated
	// LLM parse failure, missing API key, unreadable storage.
	ErrExternalFatal = errors.New("external fatal error")

	// ErrCancelled marks cooperative cancellation.
	ErrCancelled = errors.New("cancelled")

	// ErrRateLimited is the distinguished sentinel callers back off on,
	// detected from the LLM backend's HTTP 429 status.
	ErrRateLimited = errors.New("rate limited")
)

// ValidationError wraps a field-specific validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %q: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError builds a ValidationError wrapping ErrValidation.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// ConflictError carries the id of the point this add already lost to.
type ConflictError struct {
	PointID    string
	ReplacedBy string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("point %q already replaced by %q", e.PointID, e.ReplacedBy)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// NewConflictError builds a ConflictError wrapping ErrConflict.
func NewConflictError(pointID, replacedBy string) error {
	return &ConflictError{PointID: pointID, ReplacedBy: replacedBy}
}

// TraceError wraps a trace-store precondition failure with the offending id.
type TraceError struct {
	TraceID string
	Err     error
}

func (e *TraceError) Error() string {
	return fmt.Sprintf("trace %q: %v", e.TraceID, e.Err)
}

func (e *TraceError) Unwrap() error { return e.Err }

// NewUnknownTraceError builds a TraceError wrapping ErrUnknownTrace.
func NewUnknownTraceError(traceID string) error {
	return &TraceError{TraceID: traceID, Err: ErrUnknownTrace}
}

// NewDuplicateTraceError builds a TraceError wrapping ErrDuplicateTrace.
func NewDuplicateTraceError(traceID string) error {
	return &TraceError{TraceID: traceID, Err: ErrDuplicateTrace}
}

// ExternalError wraps an external-collaborator failure (LLM, oracle, tool
// surface) tagging it transient or fatal per propagation policy.
type ExternalError struct {
	Component string
	Err       error
	Fatal     bool
}

func (e *ExternalError) Error() string {
	kind := "transient"
	if e.Fatal {
		kind = "fatal"
	}
	return fmt.Sprintf("%s: %s external error: %v", e.Component, kind, e.Err)
}

func (e *ExternalError) Unwrap() error {
	if e.Fatal {
		return ErrExternalFatal
	}
	return ErrExternalTransient
}

// NewExternalTransientError builds a transient ExternalError.
func NewExternalTransientError(component string, err error) error {
	return &ExternalError{Component: component, Err: err, Fatal: false}
}

// NewExternalFatalError builds a fatal ExternalError.
func NewExternalFatalError(component string, err error) error {
	return &ExternalError{Component: component, Err: err, Fatal: true}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConflictError reports whether err is (or wraps) a ConflictError.
func IsConflictError(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsTransient reports whether err is, or wraps, a transient external error.
func IsTransient(err error) bool {
	return errors.Is(err, ErrExternalTransient) || errors.Is(err, ErrRateLimited)
}

// IsFatal reports whether err is, or wraps, a fatal external error.
func IsFatal(err error) bool {
	return errors.Is(err, ErrExternalFatal)
}
