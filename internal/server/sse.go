package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jonathan/salon-copy/internal/pipeline"
	"github.com/jonathan/salon-copy/internal/types"
)

// SSE event names.
const (
	EventProgress = "progress"
	EventComplete = "complete"
	EventError    = "error"
)

// SSEWriter helps write Server-Sent Events
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter creates a new SSE writer. CORS headers are left to the
// surrounding middleware.
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent sends an SSE event
func (s *SSEWriter) WriteEvent(event string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, jsonData); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteProgress sends one pipeline progress event.
func (s *SSEWriter) WriteProgress(event pipeline.ProgressEvent) error {
	return s.WriteEvent(EventProgress, event)
}

// WriteError sends the error envelope as the final event.
func (s *SSEWriter) WriteError(resp types.ErrorResponse) {
	s.WriteEvent(EventError, resp) //nolint:errcheck
}

// WriteComplete sends the success envelope as the final event.
func (s *SSEWriter) WriteComplete(resp types.GenerateResponse) {
	s.WriteEvent(EventComplete, resp) //nolint:errcheck
}
