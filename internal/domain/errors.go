package domain

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed set of failure categories the application reports.
// Every error that crosses a service boundary can be classified into exactly
// one kind with KindOf.
type ErrorKind uint8

// Error kinds. KindInternal is the zero value so that unclassified errors
// are never mistaken for client errors.
const (
	KindInternal ErrorKind = iota
	KindUnauthenticated
	KindForbidden
	KindInvalidArgument
	KindNotFound
)

// String returns the name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Error is the application error type. Message is written for API clients;
// Err holds the underlying cause and is only ever logged.
type Error struct {
	Kind    ErrorKind
	Op      string // operation that failed, e.g. "task.update"
	Field   string // offending input field for InvalidArgument errors
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Field != "" {
		msg = e.Field + " " + msg
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the bare sentinel of the same kind, so that
// errors.Is(err, domain.ErrForbidden) matches any forbidden error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Field == "" && t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// Kind sentinels for use with errors.Is.
var (
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated}
	ErrForbidden       = &Error{Kind: KindForbidden}
	ErrInvalidArgument = &Error{Kind: KindInvalidArgument}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrInternal        = &Error{Kind: KindInternal}
)

// KindOf classifies err. Errors that carry no *Error in their chain are
// internal.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// MessageOf returns the client-facing message of the first *Error in the
// chain, or an empty string.
func MessageOf(err error) string {
	var de *Error
	if !errors.As(err, &de) {
		return ""
	}
	if de.Field != "" {
		return de.Field + " " + de.Message
	}
	return de.Message
}

// NewValidationError creates an InvalidArgument error for a single field.
func NewValidationError(field, message string) *Error {
	return &Error{Kind: KindInvalidArgument, Field: field, Message: message}
}

// Forbidden creates a Forbidden error for the given operation.
func Forbidden(op, message string) *Error {
	return &Error{Kind: KindForbidden, Op: op, Message: message}
}

// InvalidArgument creates an InvalidArgument error for the given operation.
func InvalidArgument(op, message string) *Error {
	return &Error{Kind: KindInvalidArgument, Op: op, Message: message}
}

// NotFound creates a NotFound error wrapping err.
func NotFound(op, message string, err error) *Error {
	return &Error{Kind: KindNotFound, Op: op, Message: message, Err: err}
}

// Internal wraps an unexpected failure.
func Internal(op string, err error) *Error {
	return &Error{Kind: KindInternal, Op: op, Message: "internal error", Err: err}
}
