package feed

import (
	"encoding/json"
	"net/http"

	"github.com/user/gitfeed/pkg/logger"
)

// Handler serves GET /events.
type Handler struct {
	service *Service
}

// NewHandler creates a new events handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ServeHTTP writes the recent events as a JSON array.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	events, err := h.service.Recent(r.Context())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load events")
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status": "error",
			"error":  "failed to load events",
		})
		return
	}

	writeJSON(w, http.StatusOK, events)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error().Err(err).Msg("Failed to write response")
	}
}
