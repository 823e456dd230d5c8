package importsession

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is wrapped by every TransitionError.
var ErrInvalidTransition = errors.New("invalid import session transition")

// ErrStaleAttempt is returned when a callback belongs to an attempt that is no longer current.
var ErrStaleAttempt = errors.New("stale import attempt")

// TransitionError reports an action that is not allowed from the current state.
type TransitionError struct {
	Action string
	From   State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s while import is %s", e.Action, e.From)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// InvalidReferenceError is the local pre-flight rejection of a source reference.
// No network call is made when it is returned.
type InvalidReferenceError struct {
	Reference string
	Reason    string
}

func (e *InvalidReferenceError) Error() string {
	if e.Reference == "" {
		return "invalid source reference: " + e.Reason
	}
	return fmt.Sprintf("invalid source reference %q: %s", e.Reference, e.Reason)
}
