package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sandiips/schoolfinder/internal/chat"
)

// SSEFramer emits chat events as server-sent events. Each event is one
// frame: a "data: " line carrying the JSON body, a blank line, then a flush
// so frames reach the client as they happen rather than when the handler
// returns.
type SSEFramer struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEFramer prepares w for streaming and writes the SSE headers. It
// fails if the ResponseWriter cannot flush, since buffered SSE defeats the
// point.
func NewSSEFramer(w http.ResponseWriter) (*SSEFramer, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support flushing")
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("Access-Control-Allow-Origin", "*")

	return &SSEFramer{w: w, flusher: flusher}, nil
}

// Emit writes one event frame and flushes it.
func (f *SSEFramer) Emit(ev chat.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	if _, err := fmt.Fprintf(f.w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("writing event frame: %w", err)
	}
	f.flusher.Flush()
	return nil
}
