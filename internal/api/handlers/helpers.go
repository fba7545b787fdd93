package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/domain"
	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/service"
	"github.com/go-chi/chi/v5"
)

const codeQuotaExhausted = "quota_exhausted"

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError maps service and domain errors onto HTTP statuses. Quota
// exhaustion gets its own code so clients can prompt for new credentials.
func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrQuotaExhausted):
		w.Header().Set("Retry-After", "60")
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "model quota exhausted", Code: codeQuotaExhausted})
	case errors.Is(err, service.ErrEmptyInput), errors.Is(err, service.ErrInvalidSession):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNodeNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrEmptyHistory):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInsightFailed), errors.Is(err, service.ErrDeliberationFailed):
		writeError(w, http.StatusBadGateway, fallback)
	default:
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

// sessionParam returns the {session} route parameter, writing a 400 when it
// is not a valid session id.
func sessionParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	session := chi.URLParam(r, "session")
	if !service.ValidSession(session) {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return "", false
	}
	return session, true
}
