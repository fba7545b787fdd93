package handlers

import (
	"net/http"
	"time"

	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/domain"
	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/service"
	"github.com/go-chi/chi/v5"
)

type HistoryHandler struct {
	nav *service.Navigator
	now func() time.Time
}

func NewHistoryHandler(nav *service.Navigator) *HistoryHandler {
	return &HistoryHandler{nav: nav, now: time.Now}
}

type historyResponse struct {
	Nodes []domain.SoulStateNode `json:"nodes"`
	Count int                    `json:"count"`
	Total int                    `json:"total"`
}

// List returns the session's history, optionally narrowed by the search,
// zone, verdict and range query parameters.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionParam(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := service.HistoryFilter{
		Search:  q.Get("search"),
		Zone:    q.Get("zone"),
		Verdict: q.Get("verdict"),
		Range:   q.Get("range"),
	}
	if err := filter.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	nodes, err := h.nav.History().Snapshot(r.Context(), session)
	if err != nil {
		writeServiceError(w, err, "failed to load history")
		return
	}

	matched := service.FilterHistory(nodes, filter, h.now())
	writeJSON(w, http.StatusOK, historyResponse{Nodes: matched, Count: len(matched), Total: len(nodes)})
}

func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionParam(w, r)
	if !ok {
		return
	}

	node, err := h.nav.History().Get(r.Context(), session, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err, "failed to load history")
		return
	}
	writeJSON(w, http.StatusOK, node)
}

// Purge erases the session's history. It refuses without ?confirm=true.
func (h *HistoryHandler) Purge(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionParam(w, r)
	if !ok {
		return
	}
	if r.URL.Query().Get("confirm") != "true" {
		writeError(w, http.StatusBadRequest, "purge requires confirm=true")
		return
	}

	if err := h.nav.Purge(r.Context(), session); err != nil {
		writeServiceError(w, err, "failed to purge history")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Tension returns the chart series over the session's answered nodes.
func (h *HistoryHandler) Tension(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionParam(w, r)
	if !ok {
		return
	}

	nodes, err := h.nav.History().Snapshot(r.Context(), session)
	if err != nil {
		writeServiceError(w, err, "failed to load history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"points": service.TensionSeries(nodes)})
}
