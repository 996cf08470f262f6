package domain

import (
	"errors"
	"fmt"
)

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Two failure classes are kept apart on purpose: a client mutation that
// would break an invariant, and an operation the terminal/communication
// state machine does not allow right now.

var (
	// ErrInvalidState reports that a Client mutation would violate an
	// invariant (name length, points range, friend quota, missing terminal).
	ErrInvalidState = errors.New("invalid state")

	// ErrInvalidTransition reports that a Terminal or Communication
	// operation was invoked in a mode that forbids it.
	ErrInvalidTransition = errors.New("invalid transition")

	// Registry errors
	ErrClientNotFound   = errors.New("client not found")
	ErrClientExists     = errors.New("client already exists")
	ErrTerminalNotFound = errors.New("terminal not found")
	ErrTerminalExists   = errors.New("terminal already exists")

	// ErrCommunicationNotFound reports that no settlement is stored
	// under the requested id.
	ErrCommunicationNotFound = errors.New("communication not found")
)

func invalidState(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}

func invalidTransition(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidTransition, fmt.Sprintf(format, args...))
}

// ErrorKind classifies err into one of the two domain failure classes.
// It returns "" for errors that are neither.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrClientNotFound), errors.Is(err, ErrTerminalNotFound),
		errors.Is(err, ErrCommunicationNotFound):
		return "not_found"
	case errors.Is(err, ErrClientExists), errors.Is(err, ErrTerminalExists):
		return "conflict"
	default:
		return ""
	}
}
