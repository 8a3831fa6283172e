// Package errors provides a kind-based error type shared by the store backends,
// the to-do operations and the HTTP layer.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	Is     = errors.Is
	As     = errors.As
	Join   = errors.Join
	Unwrap = errors.Unwrap
)

// StatusCode represents an HTTP status code error
type StatusCode int

// Error implements error
func (status StatusCode) Error() string {
	return http.StatusText(int(status))
}

func Status(code int) *Error {
	return &Error{Kind: http.StatusText(code), status: StatusCode(code)}
}

var (
	Invalid     *Error = Status(http.StatusBadRequest)
	NotFound    *Error = Status(http.StatusNotFound)
	Conflict    *Error = Status(http.StatusConflict)
	Unavailable *Error = Status(http.StatusServiceUnavailable)
	Internal    *Error = Status(http.StatusInternalServerError)
)

// Error is a error type for passing more information
type Error struct {
	// Kind is the returned error type
	Kind string `json:"kind"`
	// Message is the human readable string that indicate the error
	Message string `json:"message"`

	status StatusCode
	cause  error
}

var _ error = (*Error)(nil)

// Error implements error
func (e *Error) Error() string {
	str := fmt.Sprintf("[%s] ", e.Kind)
	if e.Message != "" {
		str += e.Message
	}
	if e.cause != nil {
		str += fmt.Sprintf(" (%s)", e.cause)
	}
	return str
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Wrap returns a copy of the error with the given cause. Sentinels are shared,
// so the receiver is never modified.
func (e *Error) Wrap(cause error) *Error {
	err := *e
	err.cause = cause
	return &err
}

// Explain makes a copy of the error with given message
func (e *Error) Explain(message string, args ...any) *Error {
	err := *e
	err.Message = fmt.Sprintf(message, args...)
	return &err
}

// Is implements the needed interface for errors.Is
// It checks kind for equality
func (e *Error) Is(target error) bool {
	if e == nil {
		return target == nil
	}
	if other, ok := target.(*Error); ok {
		return other.Kind == e.Kind
	}
	if e.cause != nil {
		return Is(e.cause, target)
	}
	return false
}

// HTTPStatus returns the status code carried by err, or 500 when err has no
// status kind attached.
func HTTPStatus(err error) int {
	var e *Error
	if As(err, &e) && e.status != 0 {
		return int(e.status)
	}
	var code StatusCode
	if As(err, &code) {
		return int(code)
	}
	return http.StatusInternalServerError
}
