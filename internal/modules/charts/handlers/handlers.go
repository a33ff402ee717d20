// Package handlers provides HTTP handlers for dashboard charts.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/compass/internal/modules/charts"
)

// Handler handles chart HTTP requests
type Handler struct {
	service *charts.Service
	log     zerolog.Logger
}

// NewHandler creates a new charts handler
func NewHandler(service *charts.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "charts").Logger(),
	}
}

// HandlePriceLine handles GET /api/charts/price/{symbol}?days=
func (h *Handler) HandlePriceLine(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	days, ok := h.parseDays(w, r)
	if !ok {
		return
	}

	points, err := h.service.PriceLine(symbol, days)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to build price line")
		http.Error(w, "Failed to load chart data", http.StatusInternalServerError)
		return
	}
	if points == nil {
		points = []charts.ChartDataPoint{}
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"symbol": symbol,
			"points": points,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandlePricePNG handles GET /api/charts/price/{symbol}.png?days=
func (h *Handler) HandlePricePNG(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	days, ok := h.parseDays(w, r)
	if !ok {
		return
	}

	points, err := h.service.PriceLine(symbol, days)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to build price line")
		http.Error(w, "Failed to load chart data", http.StatusInternalServerError)
		return
	}
	if len(points) < 2 {
		http.Error(w, "Not enough price history to chart", http.StatusNotFound)
		return
	}

	img, err := h.service.RenderPriceLine(symbol, points)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to render price chart")
		http.Error(w, "Failed to render chart", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "max-age=3600")
	if _, err := w.Write(img); err != nil {
		h.log.Error().Err(err).Msg("Failed to write chart image")
	}
}

// HistogramRequest carries a simulated terminal distribution to bin.
type HistogramRequest struct {
	Values []float64 `json:"values"`
}

// HandleHistogram handles POST /api/charts/histogram. The dashboard posts
// the terminal values of a simulation run and gets back plot-ready bins.
func (h *Handler) HandleHistogram(w http.ResponseWriter, r *http.Request) {
	var req HistogramRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	bins, err := h.service.Histogram(req.Values)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"bins": bins,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// parseDays validates the optional days query parameter.
func (h *Handler) parseDays(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return 365, true
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 1 || days > 3650 {
		http.Error(w, "days must be between 1 and 3650", http.StatusBadRequest)
		return 0, false
	}
	return days, true
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
