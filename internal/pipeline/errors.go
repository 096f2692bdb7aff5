package pipeline

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoTitles means the catalog returned no titles for the keyword.
var ErrNoTitles = errors.New("no catalog titles found for keyword")

// InputError rejects a request before any work is done.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// UpstreamError wraps a transport failure from the scraper or the model.
type UpstreamError struct {
	Stage string
	Cause error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Cause)
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// TimeoutError means the model call did not finish within its deadline.
type TimeoutError struct {
	Stage   string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Stage, e.Timeout)
}
