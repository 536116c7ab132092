package httpadapter

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// sseWriter frames streamed conversation turns as server-sent events:
// "delta" events while text arrives, one terminal "done" or "error" event.
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func newSSEWriter(w http.ResponseWriter) (*sseWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support streaming")
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	return &sseWriter{w: w, flusher: flusher}, nil
}

func (s *sseWriter) event(name string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", name, data); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

func (s *sseWriter) delta(text string) error {
	return s.event("delta", map[string]string{"text": text})
}

func (s *sseWriter) done(payload any) {
	_ = s.event("done", payload)
}

func (s *sseWriter) fail(msg string) {
	_ = s.event("error", map[string]string{"error": msg})
}
