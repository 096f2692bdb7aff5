package llm

import (
	"errors"
	"fmt"
)

// ErrEmptyResponse means the model returned no text.
var ErrEmptyResponse = errors.New("empty response from model")

// APICallError represents a failed call to a Gemini backend.
type APICallError struct {
	Backend string
	Model   string
	Cause   error
}

func (e *APICallError) Error() string {
	return fmt.Sprintf("API call failed (%s, %s): %v", e.Backend, e.Model, e.Cause)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}
