// Package handlers provides HTTP handlers for digest subscriptions.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/compass/internal/modules/subscribers"
)

// Handler handles subscriber HTTP requests
type Handler struct {
	service *subscribers.Service
	log     zerolog.Logger
}

// NewHandler creates a new subscriber handler
func NewHandler(service *subscribers.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "subscribers").Logger(),
	}
}

// SubscribeRequest is the signup payload.
type SubscribeRequest struct {
	Email string `json:"email"`
}

// HandleSubscribe handles POST /api/subscribers
func (h *Handler) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	var req SubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	sub, err := h.service.Subscribe(req.Email)
	if err != nil {
		if errors.Is(err, subscribers.ErrInvalidEmail) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.log.Error().Err(err).Msg("Failed to add subscriber")
		http.Error(w, "Failed to subscribe", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"data": sub,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusCreated, response)
}

// HandleCount handles GET /api/subscribers/count
func (h *Handler) HandleCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.Count()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to count subscribers")
		http.Error(w, "Failed to count subscribers", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"count": count,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleUnsubscribe handles DELETE /api/subscribers/{token}
func (h *Handler) HandleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	if err := h.service.Unsubscribe(token); err != nil {
		if errors.Is(err, subscribers.ErrUnknownToken) {
			http.Error(w, "Unknown unsubscribe token", http.StatusNotFound)
			return
		}
		h.log.Error().Err(err).Msg("Failed to unsubscribe")
		http.Error(w, "Failed to unsubscribe", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"unsubscribed": true,
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
