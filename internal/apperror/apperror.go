// Package apperror defines the error kinds that request handlers translate into HTTP statuses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindUnauthenticated Kind = "UNAUTHENTICATED"
	KindNotFound        Kind = "NOT_FOUND"
	KindForbidden       Kind = "FORBIDDEN"
	KindInvalidInput    Kind = "INVALID_INPUT"
	KindUnexpected      Kind = "UNEXPECTED"
)

// Error carries a kind, a client-safe message, and an optional internal cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status maps the kind to an HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(err error, kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Unauthenticated(message string) *Error { return New(KindUnauthenticated, message) }
func NotFound(message string) *Error        { return New(KindNotFound, message) }
func Forbidden(message string) *Error       { return New(KindForbidden, message) }
func InvalidInput(message string) *Error    { return New(KindInvalidInput, message) }

// Unexpected wraps a lower-layer failure. The message stays generic.
func Unexpected(err error, message string) *Error {
	return Wrap(err, KindUnexpected, message)
}

// KindOf reports the kind of err, treating anything that is not an *Error as unexpected.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnexpected
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
