package handlers

import (
	"net/http"

	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/api/events"
)

type EventsHandler struct {
	hub *events.Hub
}

func NewEventsHandler(hub *events.Hub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// Stream upgrades to a WebSocket carrying the session's history events.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionParam(w, r)
	if !ok {
		return
	}
	h.hub.Serve(w, r, session)
}
