package portal

import (
	"errors"
	"fmt"
)

// ErrEmptyResponse indicates the backend answered 2xx without a body.
var ErrEmptyResponse = errors.New("backend returned an empty response")

// StatusError is a non-2xx answer from the backend. Message carries the backend's
// own error text, which is shown to the user unchanged.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend returned HTTP %d", e.StatusCode)
}
