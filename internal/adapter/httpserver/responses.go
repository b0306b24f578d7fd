// Package httpserver contains the HTTP handlers and middleware for the
// analysis API. It keeps HTTP concerns separate from the pipeline logic in
// usecase.
package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/careerpilot/insights/internal/domain"
)

// envelope is the uniform response shape for every analysis endpoint.
// Upstream/model failures never produce success=false; they resolve to
// success=true with usedFallback=true upstream of this layer.
type envelope struct {
	Success      bool   `json:"success"`
	ID           string `json:"id,omitempty"`
	Data         any    `json:"data,omitempty"`
	UsedFallback *bool  `json:"usedFallback,omitempty"`
	Error        string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, id string, data any, usedFallback *bool) {
	writeJSON(w, http.StatusOK, envelope{Success: true, ID: id, Data: data, UsedFallback: usedFallback})
}

func writeError(w http.ResponseWriter, _ *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrInvalidQuestionIndex):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrRateLimited):
		status = http.StatusTooManyRequests
	case errors.Is(err, domain.ErrUpstreamUnavailable),
		errors.Is(err, domain.ErrUpstreamTimeout),
		errors.Is(err, domain.ErrUpstream):
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, envelope{Success: false, Error: err.Error()})
}

func boolPtr(b bool) *bool { return &b }
