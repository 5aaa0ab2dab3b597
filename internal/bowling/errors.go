package bowling

import (
	"errors"
	"strings"
)

// Code is a machine-readable error category.
type Code string

const (
	CodeGameNotFound       Code = "game_not_found"
	CodeGameAlreadyEnded   Code = "game_already_ended"
	CodeScoreOutOfRange    Code = "score_out_of_range"
	CodeInvalidFrame       Code = "invalid_frame"
	CodeInvalidThrow       Code = "invalid_throw"
	CodeFrameScoreExceeded Code = "frame_score_exceeded"
	CodeConflict           Code = "conflict"
	CodeStorage            Code = "storage"
)

// Error is a domain error carrying every human-readable message collected
// while handling one request.
type Error struct {
	Code     Code     // Category of the first failure
	Messages []string // Client-facing messages, in the order they were found
	Cause    error    // Wrapped underlying error, never shown to clients
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := strings.Join(e.Messages, "; ")
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// NewError creates a domain error with a code and messages.
func NewError(code Code, msgs ...string) *Error {
	return &Error{Code: code, Messages: msgs}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, msg string, cause error) *Error {
	return &Error{Code: code, Messages: []string{msg}, Cause: cause}
}

var (
	ErrGameNotFound       = NewError(CodeGameNotFound, "Game not found")
	ErrGameAlreadyEnded   = NewError(CodeGameAlreadyEnded, "Game has already ended")
	ErrScoreOutOfRange    = NewError(CodeScoreOutOfRange, "Score must be in range [0, 10]")
	ErrFrameScoreExceeded = NewError(CodeFrameScoreExceeded, "Maximum frame score exceeded")
)

// violations accumulates messages under the code of the first failure.
type violations struct {
	code Code
	msgs []string
}

func (v *violations) add(code Code, msgs ...string) {
	if len(msgs) == 0 {
		return
	}
	if v.code == "" {
		v.code = code
	}
	v.msgs = append(v.msgs, msgs...)
}

func (v *violations) err() error {
	if len(v.msgs) == 0 {
		return nil
	}
	return NewError(v.code, v.msgs...)
}

// Messages extracts the client-facing messages of err.
func Messages(err error) []string {
	var e *Error
	if errors.As(err, &e) {
		return e.Messages
	}
	return nil
}

// CodeOf returns the code of err, or "" if err is not a domain error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
