package core

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrNotFound is returned when the Course/Schedule Service does not know the requested resource.
var ErrNotFound = errors.New("not found")

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

func (err ValidationError) Unwrap() error { return err.Err }

// RemoteError reports a failed call to the Course/Schedule Service: a rejection or a network failure.
// Re-issuing the same request is always safe.
type RemoteError struct {
	Op         string
	StatusCode int // 0 when no response was received
	Err        error
}

func NewRemoteError(op string, statusCode int, err error) error {
	return &RemoteError{Op: op, StatusCode: statusCode, Err: err}
}

func (err *RemoteError) Error() string {
	if err.StatusCode != 0 {
		return fmt.Sprintf("%s: remote error (status %d): %v", err.Op, err.StatusCode, err.Err)
	}
	return fmt.Sprintf("%s: remote error: %v", err.Op, err.Err)
}

func (err *RemoteError) Unwrap() error { return err.Err }

// IsRemote reports whether err (or any error it wraps) is a RemoteError.
func IsRemote(err error) bool {
	var rErr *RemoteError
	return errors.As(err, &rErr)
}

// AsRemote returns err unchanged if it already carries a RemoteError, or wraps it into one.
func AsRemote(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsRemote(err) {
		return err
	}
	return NewRemoteError(op, 0, err)
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
