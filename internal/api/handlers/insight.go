package handlers

import (
	"net/http"

	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/service"
)

type InsightHandler struct {
	nav *service.Navigator
}

func NewInsightHandler(nav *service.Navigator) *InsightHandler {
	return &InsightHandler{nav: nav}
}

func (h *InsightHandler) Create(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionParam(w, r)
	if !ok {
		return
	}

	report, err := h.nav.Insight(r.Context(), session)
	if err != nil {
		writeServiceError(w, err, "failed to generate insight report")
		return
	}
	writeJSON(w, http.StatusOK, report)
}
