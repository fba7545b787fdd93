package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/service"
	"go.uber.org/zap"
)

const maxInputBytes = 64 << 10

type DeliberationHandler struct {
	nav    *service.Navigator
	logger *zap.Logger
}

func NewDeliberationHandler(nav *service.Navigator, logger *zap.Logger) *DeliberationHandler {
	return &DeliberationHandler{nav: nav, logger: logger}
}

type createDeliberationRequest struct {
	Text string `json:"text"`
}

// Create submits text to the council. A successful deliberation answers 201;
// a fallback node answers 200 so clients can tell the two apart.
func (h *DeliberationHandler) Create(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionParam(w, r)
	if !ok {
		return
	}

	var req createDeliberationRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxInputBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	node, err := h.nav.Submit(r.Context(), session, req.Text)
	if err != nil {
		if r.Context().Err() != nil {
			h.logger.Info("client went away during deliberation", zap.String("session_id", session))
			return
		}
		writeServiceError(w, err, "failed to deliberate")
		return
	}

	status := http.StatusCreated
	if node.IsError {
		status = http.StatusOK
	}
	writeJSON(w, status, node)
}
