// Package handlers provides HTTP handlers for risk simulation operations.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/compass/internal/modules/simulation"
)

// Handler handles simulation HTTP requests
type Handler struct {
	service *simulation.Service
	log     zerolog.Logger
}

// NewHandler creates a new simulation handler
func NewHandler(service *simulation.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "simulation").Logger(),
	}
}

// HandleRun handles POST /api/simulation/run
func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	var req simulation.RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.service.Run(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
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

// HandleDefaults handles GET /api/simulation/defaults
func (h *Handler) HandleDefaults(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"data": h.service.Defaults(),
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// writeError maps pipeline failures onto HTTP statuses: bad requests are
// 400, windows that cannot support a projection are 422, and missing market
// data is 503 so the dashboard can say "try again after the next sync".
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := "INTERNAL"
	switch {
	case errors.Is(err, simulation.ErrInvalidParams):
		status = http.StatusBadRequest
		code = "INVALID_PARAMS"
	case errors.Is(err, simulation.ErrInvalidBaseline):
		status = http.StatusUnprocessableEntity
		code = "INVALID_BASELINE"
	case errors.Is(err, simulation.ErrInsufficientHistory):
		status = http.StatusUnprocessableEntity
		code = "INSUFFICIENT_HISTORY"
	case errors.Is(err, simulation.ErrDataUnavailable):
		status = http.StatusServiceUnavailable
		code = "DATA_UNAVAILABLE"
	}

	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Msg("Simulation run failed")
	} else {
		h.log.Warn().Err(err).Str("code", code).Msg("Simulation run rejected")
	}

	h.writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": err.Error(),
			"code":    code,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
