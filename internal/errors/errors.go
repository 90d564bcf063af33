// Package errors defines typed errors with categories for user-friendly reporting.
// Every failure that crosses a package boundary in the client carries a
// machine-readable Kind so commands can decide how to present it: auth
// failures are printed with the backend's message, network failures get
// troubleshooting hints and an expired session turns into a login prompt.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// Validation indicates input rejected locally before any request was sent.
	Validation Kind = "validation"
	// Auth indicates the backend rejected a login or registration.
	Auth Kind = "auth"
	// Network indicates a timeout or transport failure talking to the backend.
	Network Kind = "network"
	// SessionExpired indicates the stored session could not be recovered
	// and the user has to log in again.
	SessionExpired Kind = "session_expired"
	// Status indicates an unexpected HTTP status from the backend.
	Status Kind = "status"
)

// E wraps an error with kind and human-friendly message.
// Status is the HTTP status code when the error came from a response.
type E struct {
	Kind    Kind
	Message string
	Status  int
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// WithStatus returns an error of kind Status for an HTTP response.
func WithStatus(status int, msg string) *E {
	return &E{Kind: Status, Message: msg, Status: status}
}

// KindOf returns the Kind of the first *E in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind anywhere in its chain.
func Is(err error, kind Kind) bool {
	for err != nil {
		var e *E
		if !stderrors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Err
	}
	return false
}

// StatusCode returns the first HTTP status recorded in err's chain, or 0.
func StatusCode(err error) int {
	for err != nil {
		var e *E
		if !stderrors.As(err, &e) {
			return 0
		}
		if e.Status != 0 {
			return e.Status
		}
		err = e.Err
	}
	return 0
}

// Message returns the human-friendly message of the outermost *E,
// falling back to err.Error().
func Message(err error) string {
	var e *E
	if stderrors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
