package handlers

import (
	"net/http"

	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/history"
)

// HistoryReader exposes the recorded detections.
type HistoryReader interface {
	All() []history.Entry
}

// HistoryFeed is a HistoryReader that also pushes new entries to listeners.
// Follow returns the snapshot and the listener together.
type HistoryFeed interface {
	HistoryReader
	Follow() ([]history.Entry, chan history.Entry)
	RemoveListener(ch chan history.Entry)
}

// DetectionsHandler serves the detection history
type DetectionsHandler struct {
	history HistoryFeed
}

// NewDetectionsHandler creates a new detections handler
func NewDetectionsHandler(h HistoryFeed) *DetectionsHandler {
	return &DetectionsHandler{history: h}
}

// List returns the history oldest first. An empty history is [].
func (h *DetectionsHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, nonNil(h.history.All()))
}

func nonNil(entries []history.Entry) []history.Entry {
	if entries == nil {
		return []history.Entry{}
	}
	return entries
}

// Events streams the history as server-sent events: one "history" event
// with the current entries, then a "detection" event per recorded entry
// until the client disconnects.
func (h *DetectionsHandler) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := setupSSEConnection(w)
	if !ok {
		return
	}

	entries, eventCh := h.history.Follow()
	defer h.history.RemoveListener(eventCh)

	sendSSEEvent(w, flusher, "history", nonNil(entries))

	for {
		select {
		case <-r.Context().Done():
			return
		case entry, ok := <-eventCh:
			if !ok {
				return
			}
			sendSSEEvent(w, flusher, "detection", entry)
		}
	}
}
