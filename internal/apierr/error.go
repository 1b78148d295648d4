// Package apierr defines the transport-independent error kinds used
// across the query engine and group service.
package apierr

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// Kind classifies an error independent of HTTP or any other transport.
type Kind int

const (
	// Internal indicates an unexpected, non-retriable-at-this-layer failure
	// (database I/O, unexpected row counts).
	Internal Kind = iota
	// BadRequest indicates malformed input: DSL parse failure, revision
	// mismatch, cycle, own-parent, bad path, invalid name, unknown field.
	BadRequest
	// NotFound indicates a missing entity or parent.
	NotFound
	// Conflict indicates a uniqueness violation or a delete blocked by children.
	Conflict
	// PreconditionRequired indicates a missing If-Match header on update.
	PreconditionRequired
)

func (k Kind) String() string {
	switch k {
	case BadRequest:
		return "BadRequest"
	case NotFound:
		return "NotFound"
	case Conflict:
		return "Conflict"
	case PreconditionRequired:
		return "PreconditionRequired"
	default:
		return "Internal"
	}
}

// Status maps a Kind to the HTTP status code in spec.md §7.
func (k Kind) Status() int {
	switch k {
	case BadRequest:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case PreconditionRequired:
		return http.StatusPreconditionFailed
	default:
		return http.StatusInternalServerError
	}
}

// Error is the error type returned by every component in this module.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap lets errors.Is/errors.As see through to the cause.
func (e *Error) Unwrap() error { return e.cause }

// New builds an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a Kind to an underlying cause, preserving its stack via
// github.com/pkg/errors so store-layer failures keep a trace up to the
// service boundary. Wrap returns a true nil error for a nil cause
// (note the `error` return type, not `*Error`: a nil *Error boxed into
// an error interface is non-nil), matching the errors.Wrap convention so
// callers can wrap rows.Err() unconditionally.
func Wrap(kind Kind, cause error, format string, args ...any) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), cause: errors.WithStack(cause)}
}

// KindOf extracts the Kind from err, defaulting to Internal for any
// error that didn't originate in this module.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}
