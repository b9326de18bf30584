package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/yourusername/gammon/pkg/game"
	"github.com/yourusername/gammon/pkg/match"
)

// Events handles Server-Sent Events for observing a match.
// GET /api/matches/{id}/events
func (h *Handlers) Events(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeSSEError(w, "streaming not supported")
		return
	}

	// Send the current state first so late joiners are not blind
	// until the next action.
	_ = sess.Do(func(m *match.Match, g *game.Game) error {
		writeSSEEvent(w, "state", Event{Type: "state", MatchID: m.ID, State: stateResponse(g)})
		return nil
	})
	flusher.Flush()

	events := sess.Subscribe()
	defer sess.Unsubscribe(events)

	for {
		select {
		case ev, open := <-events:
			if !open {
				writeSSEEvent(w, "done", nil)
				flusher.Flush()
				return
			}
			writeSSEEvent(w, ev.Type, ev)
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

// writeSSEEvent writes a Server-Sent Event to the response.
func writeSSEEvent(w http.ResponseWriter, event string, data interface{}) {
	fmt.Fprintf(w, "event: %s\n", event)
	if data != nil {
		jsonData, _ := json.Marshal(data)
		fmt.Fprintf(w, "data: %s\n", jsonData)
	}
	fmt.Fprintf(w, "\n")
}

// writeSSEError writes an error event and closes the stream.
func writeSSEError(w http.ResponseWriter, message string) {
	writeSSEEvent(w, "error", map[string]string{"error": message})
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}
