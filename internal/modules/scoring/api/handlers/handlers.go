// Package handlers provides HTTP handlers for buy-timing scores.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/compass/internal/modules/scoring"
)

// Handler handles scoring HTTP requests
type Handler struct {
	service *scoring.Service
	log     zerolog.Logger
}

// NewHandler creates a new scoring handler
func NewHandler(service *scoring.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "scoring").Logger(),
	}
}

// HandleScore handles GET /api/scoring/{symbol}
func (h *Handler) HandleScore(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	result, err := h.service.ScoreSymbol(symbol)
	if err != nil {
		if errors.Is(err, scoring.ErrNotEnoughHistory) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to score symbol")
		http.Error(w, "Failed to score symbol", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"data": result,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleList handles GET /api/scoring
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	results, err := h.service.Latest()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list scores")
		http.Error(w, "Failed to list scores", http.StatusInternalServerError)
		return
	}
	if results == nil {
		results = []scoring.Result{}
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"scores": results,
			"count":  len(results),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
