package api

import (
	"errors"
	"fmt"
)

// Sentinel errors for collaborator calls.
var (
	ErrNetwork         = errors.New("network error")
	ErrRemote          = errors.New("remote service error")
	ErrMalformedResult = errors.New("malformed response")
	ErrInvalidBaseURL  = errors.New("invalid base URL")
)

// Error is a failure reported by the remote service itself.
type Error struct {
	Status  int    // HTTP status code
	Message string // server-provided error text
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: HTTP %d", ErrRemote, e.Status)
	}
	return fmt.Sprintf("%s: HTTP %d: %s", ErrRemote, e.Status, e.Message)
}

// Unwrap lets callers match the error with errors.Is(err, ErrRemote).
func (e *Error) Unwrap() error { return ErrRemote }
