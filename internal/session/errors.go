package session

import (
	"errors"
	"fmt"
)

// Error is a session-level failure. Failures of the command itself are
// returned as the dom or naming errors they are.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Command names the command involved, if any.
	Command string

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes session errors.
type ErrorCode string

const (
	// ErrCodeClosed indicates the session no longer accepts commands.
	ErrCodeClosed ErrorCode = "CLOSED"

	// ErrCodeNothingToUndo indicates an undo with an empty history.
	ErrCodeNothingToUndo ErrorCode = "NOTHING_TO_UNDO"

	// ErrCodeNothingToRedo indicates a redo with nothing undone.
	ErrCodeNothingToRedo ErrorCode = "NOTHING_TO_REDO"

	// ErrCodeInvalidReplace indicates a replacement document that changes
	// the root or is not a valid Dom.
	ErrCodeInvalidReplace ErrorCode = "INVALID_REPLACE"

	// ErrCodePersist indicates the change could not be recorded in the
	// store. The session state is unchanged.
	ErrCodePersist ErrorCode = "PERSIST"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Command != "" {
		return fmt.Sprintf("%s: %s (command=%s)", e.Code, e.Message, e.Command)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

func hasCode(err error, code ErrorCode) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

// IsClosed reports whether err is a closed-session error.
func IsClosed(err error) bool { return hasCode(err, ErrCodeClosed) }

// IsNothingToUndo reports whether err is an empty-undo error.
func IsNothingToUndo(err error) bool { return hasCode(err, ErrCodeNothingToUndo) }

// IsNothingToRedo reports whether err is an empty-redo error.
func IsNothingToRedo(err error) bool { return hasCode(err, ErrCodeNothingToRedo) }

// IsInvalidReplace reports whether err rejected a Replace command.
func IsInvalidReplace(err error) bool { return hasCode(err, ErrCodeInvalidReplace) }

// IsPersist reports whether err came from the store.
func IsPersist(err error) bool { return hasCode(err, ErrCodePersist) }
