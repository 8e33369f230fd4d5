package sse

import (
	"fmt"
	"net/http"
	"sync"
)

// Writer serializes SSE frames onto one response. Keep-alive pings run on
// their own goroutine, so every write takes the lock.
type Writer struct {
	mu       sync.Mutex
	w        http.ResponseWriter
	flusher  http.Flusher
	clientID string
}

// NewWriter creates a new SSE writer
func NewWriter(w http.ResponseWriter, flusher http.Flusher, clientID string) *Writer {
	return &Writer{
		w:        w,
		flusher:  flusher,
		clientID: clientID,
	}
}

// WriteKeepAlive writes an SSE comment (: keepalive\n\n) and flushes
func (s *Writer) WriteKeepAlive() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Lines starting with : are comments and ignored by EventSource
	if _, err := fmt.Fprint(s.w, ": keepalive\n\n"); err != nil {
		return fmt.Errorf("client %s: write keepalive: %w", s.clientID, err)
	}
	s.flusher.Flush()
	return nil
}

// WriteEvent writes one named event. data must be a single line (compact JSON).
func (s *Writer) WriteEvent(id, event string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" {
		if _, err := fmt.Fprintf(s.w, "id: %s\n", id); err != nil {
			return fmt.Errorf("client %s: write event id: %w", s.clientID, err)
		}
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return fmt.Errorf("client %s: write event %s: %w", s.clientID, event, err)
	}
	s.flusher.Flush()
	return nil
}
