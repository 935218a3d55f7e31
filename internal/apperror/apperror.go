// Package apperror defines the error kinds returned by validation and the
// service layer. Handlers map a Kind to an HTTP status.
package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an error by what the caller did wrong.
type Kind string

const (
	Internal          Kind = "internal"
	NotFound          Kind = "not_found"
	Conflict          Kind = "conflict"
	MissingArgument   Kind = "missing_argument"
	ExcessArgument    Kind = "excess_argument"
	ForbiddenMutation Kind = "forbidden_mutation"
	InvalidArgument   Kind = "invalid_argument"
)

// Error is a client-facing error with a kind and a message safe to return.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target is an *Error of the same kind, so callers can
// write errors.Is(err, apperror.ErrNotFound).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// Kind-only sentinels for errors.Is checks.
var (
	ErrNotFound          = &Error{Kind: NotFound}
	ErrConflict          = &Error{Kind: Conflict}
	ErrMissingArgument   = &Error{Kind: MissingArgument}
	ErrExcessArgument    = &Error{Kind: ExcessArgument}
	ErrForbiddenMutation = &Error{Kind: ForbiddenMutation}
	ErrInvalidArgument   = &Error{Kind: InvalidArgument}
)

// New returns an *Error of the given kind.
func New(kind Kind, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Newf is New with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain, or Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Message returns the client-facing message of err. Errors without a kind
// never leak their text.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "Internal server error"
}
