// Package handlers provides HTTP handlers for the report archive.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/compass/internal/modules/reports"
)

// Handler handles report HTTP requests
type Handler struct {
	service *reports.Service
	repo    *reports.Repository
	log     zerolog.Logger
}

// NewHandler creates a new report handler
func NewHandler(service *reports.Service, repo *reports.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		repo:    repo,
		log:     log.With().Str("handler", "reports").Logger(),
	}
}

// HandleList handles GET /api/reports?limit=
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 200 {
			http.Error(w, "limit must be between 1 and 200", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	list, err := h.repo.List(limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list reports")
		http.Error(w, "Failed to list reports", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []reports.Report{}
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"reports": list,
			"count":   len(list),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleLatest handles GET /api/reports/latest
func (h *Handler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	date, err := h.repo.LatestDate()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get latest report date")
		http.Error(w, "Failed to load reports", http.StatusInternalServerError)
		return
	}
	if date == nil {
		http.Error(w, "No reports archived yet", http.StatusNotFound)
		return
	}

	list, err := h.repo.ForDate(*date)
	if err != nil {
		h.log.Error().Err(err).Str("date", *date).Msg("Failed to load reports")
		http.Error(w, "Failed to load reports", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"date":    *date,
			"reports": list,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleTrigger handles POST /api/reports/trigger. The pipeline runs in the
// background since a full run takes minutes; the response just acknowledges
// the start.
func (h *Handler) HandleTrigger(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		http.Error(w, "Report pipeline is not configured", http.StatusServiceUnavailable)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
		defer cancel()

		if _, err := h.service.Run(ctx); err != nil {
			h.log.Error().Err(err).Msg("Manual report run failed")
		}
	}()

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"status": "started",
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusAccepted, response)
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
