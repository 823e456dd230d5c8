package orchestrator

import (
	"errors"

	"github.com/RaulAraujoSilva/SEI-sub000/internal/importsession"
)

// ErrPending is returned when the same operation is already in flight for the current attempt.
// The repeated request is ignored.
var ErrPending = errors.New("operation already in progress")

// ErrStaleAttempt is returned when a response arrives for an attempt that was superseded.
// The response was discarded and the session was not touched.
var ErrStaleAttempt = importsession.ErrStaleAttempt

// FetchError is a failed preview fetch. The session is in Failed(fetch).
type FetchError struct {
	Reference string
	Err       error
}

func (e *FetchError) Error() string {
	return e.Err.Error()
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// CommitError is a failed save. The session is back in Loaded with its staged data.
// Message is the backend's text, verbatim.
type CommitError struct {
	Message string
	Err     error
}

func (e *CommitError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "commit failed"
}

func (e *CommitError) Unwrap() error {
	return e.Err
}
