// Package handlers provides HTTP handlers for exchange rate lookups.
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/compass/internal/domain"
	"github.com/aristath/compass/internal/modules/currency"
)

// Handler handles currency HTTP requests
type Handler struct {
	service *currency.Service
	log     zerolog.Logger
}

// NewHandler creates a new currency handler
func NewHandler(service *currency.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "currency").Logger(),
	}
}

// HandleLatest handles GET /api/currency/latest/{code}
func (h *Handler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	code, ok := parseCurrency(w, r)
	if !ok {
		return
	}

	latest, err := h.service.Latest(code)
	if err != nil {
		h.log.Error().Err(err).Str("currency", string(code)).Msg("Failed to fetch spot rate")
		http.Error(w, "Failed to fetch spot rate", http.StatusBadGateway)
		return
	}

	response := map[string]interface{}{
		"data": latest,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleSeries handles GET /api/currency/series/{code}?from=&to=
func (h *Handler) HandleSeries(w http.ResponseWriter, r *http.Request) {
	code, ok := parseCurrency(w, r)
	if !ok {
		return
	}
	if code == h.service.HomeCurrency() {
		http.Error(w, "series against the home currency is constant", http.StatusBadRequest)
		return
	}

	to := r.URL.Query().Get("to")
	if to == "" {
		to = time.Now().UTC().Format("2006-01-02")
	}
	from := r.URL.Query().Get("from")
	if from == "" {
		toDay, err := time.Parse("2006-01-02", to)
		if err != nil {
			http.Error(w, "invalid to date", http.StatusBadRequest)
			return
		}
		from = toDay.AddDate(0, 0, -365).Format("2006-01-02")
	}

	points, err := h.service.Series(r.Context(), code, h.service.HomeCurrency(), from, to)
	if err != nil {
		h.log.Error().Err(err).Str("currency", string(code)).Msg("Failed to load rate series")
		http.Error(w, "Failed to load rate series", http.StatusBadGateway)
		return
	}
	if points == nil {
		points = []currency.RatePoint{}
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"pair":  domain.Pair(code, h.service.HomeCurrency()),
			"from":  from,
			"to":    to,
			"rates": points,
			"count": len(points),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// parseCurrency reads and validates the {code} path parameter, writing a 400
// itself when the code is unusable.
func parseCurrency(w http.ResponseWriter, r *http.Request) (domain.Currency, bool) {
	code := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "code")))
	if len(code) != 3 {
		http.Error(w, "currency must be a 3-letter code", http.StatusBadRequest)
		return "", false
	}
	return domain.Currency(code), true
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
