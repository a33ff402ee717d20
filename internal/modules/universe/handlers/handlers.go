// Package handlers provides HTTP handlers for the instrument catalog.
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/compass/internal/domain"
	"github.com/aristath/compass/internal/modules/universe"
)

// Handler handles instrument catalog HTTP requests
type Handler struct {
	instruments *universe.InstrumentRepository
	prices      *universe.PriceRepository
	sync        *universe.SyncService
	log         zerolog.Logger
}

// NewHandler creates a new universe handler
func NewHandler(
	instruments *universe.InstrumentRepository,
	prices *universe.PriceRepository,
	sync *universe.SyncService,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		instruments: instruments,
		prices:      prices,
		sync:        sync,
		log:         log.With().Str("handler", "universe").Logger(),
	}
}

// AddInstrumentRequest represents a request to track a new symbol
type AddInstrumentRequest struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
	Kind     string `json:"kind,omitempty"`
}

// HandleList handles GET /api/universe
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	instruments, err := h.instruments.List()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list instruments")
		http.Error(w, "Failed to list instruments", http.StatusInternalServerError)
		return
	}
	if instruments == nil {
		instruments = []universe.Instrument{}
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"instruments": instruments,
			"count":       len(instruments),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleGet handles GET /api/universe/{symbol}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	inst, err := h.instruments.Get(symbol)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to get instrument")
		http.Error(w, "Failed to get instrument", http.StatusInternalServerError)
		return
	}
	if inst == nil {
		http.Error(w, "Instrument not found", http.StatusNotFound)
		return
	}

	response := map[string]interface{}{
		"data": inst,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleAdd handles POST /api/universe
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var req AddInstrumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	req.Symbol = strings.TrimSpace(req.Symbol)
	if req.Symbol == "" {
		http.Error(w, "symbol is required", http.StatusBadRequest)
		return
	}
	currency := domain.Currency(strings.ToUpper(strings.TrimSpace(req.Currency)))
	if len(currency) != 3 {
		http.Error(w, "currency must be a 3-letter code", http.StatusBadRequest)
		return
	}
	kind := domain.Kind(strings.ToUpper(strings.TrimSpace(req.Kind)))
	if kind == "" {
		kind = domain.KindEquity
	}

	inst := universe.Instrument{
		Symbol:   req.Symbol,
		Name:     req.Name,
		Currency: currency,
		Kind:     kind,
	}
	if err := h.instruments.Add(inst); err != nil {
		h.log.Error().Err(err).Str("symbol", req.Symbol).Msg("Failed to add instrument")
		http.Error(w, "Failed to add instrument", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"data": inst,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusCreated, response)
}

// HandleRemove handles DELETE /api/universe/{symbol}
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	if err := h.instruments.Remove(symbol); err != nil {
		h.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to remove instrument")
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	deleted, err := h.prices.DeleteSymbol(symbol)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to delete price history")
		http.Error(w, "Instrument removed but price cleanup failed", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"symbol":         symbol,
			"prices_deleted": deleted,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandlePrices handles GET /api/universe/{symbol}/prices?from=&to=
func (h *Handler) HandlePrices(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

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

	prices, err := h.prices.PriceSeries(symbol, from, to)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to load prices")
		http.Error(w, "Failed to load prices", http.StatusBadRequest)
		return
	}
	if prices == nil {
		prices = []universe.DailyPrice{}
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"symbol": symbol,
			"from":   from,
			"to":     to,
			"prices": prices,
			"count":  len(prices),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleSync handles POST /api/universe/{symbol}/sync
func (h *Handler) HandleSync(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	result, err := h.sync.SyncSymbol(r.Context(), symbol)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Manual sync failed")
		http.Error(w, err.Error(), http.StatusBadGateway)
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

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
