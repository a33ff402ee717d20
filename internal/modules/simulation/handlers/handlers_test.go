package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/compass/internal/config"
	"github.com/aristath/compass/internal/domain"
	"github.com/aristath/compass/internal/modules/simulation"
)

type stubMarket struct {
	prices map[string]simulation.TimeSeries
}

func (s *stubMarket) InstrumentCurrency(symbol string) (domain.Currency, bool, error) {
	_, ok := s.prices[symbol]
	return domain.CurrencyUSD, ok, nil
}

func (s *stubMarket) PriceSeries(symbol, from, to string) (simulation.TimeSeries, error) {
	return s.prices[symbol], nil
}

type stubRates struct {
	series simulation.TimeSeries
}

func (s *stubRates) RateSeries(ctx context.Context, from, to domain.Currency, fromDate, toDate string) (simulation.TimeSeries, error) {
	return s.series, nil
}

func newTestRouter(t *testing.T, rates *stubRates) chi.Router {
	t.Helper()

	dates := []string{"2024-01-02", "2024-01-03", "2024-01-04"}
	series, err := simulation.NewTimeSeries(dates, []float64{100, 110, 120})
	require.NoError(t, err)

	market := &stubMarket{prices: map[string]simulation.TimeSeries{"AAA.US": series}}
	cfg := config.SimulationConfig{
		MinHorizonDays:     1,
		MaxHorizonDays:     60,
		DefaultHorizonDays: 20,
		MinPaths:           1,
		MaxPaths:           50000,
		DefaultPaths:       2000,
	}
	service := simulation.NewService(market, rates, domain.CurrencyKRW, cfg, zerolog.Nop())

	r := chi.NewRouter()
	NewHandler(service, zerolog.Nop()).RegisterRoutes(r)
	return r
}

func flatStubRates(t *testing.T) *stubRates {
	t.Helper()
	series, err := simulation.NewTimeSeries(
		[]string{"2024-01-02", "2024-01-03", "2024-01-04"},
		[]float64{1300, 1300, 1300},
	)
	require.NoError(t, err)
	return &stubRates{series: series}
}

func postRun(t *testing.T, router chi.Router, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/simulation/run", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleRunSuccess(t *testing.T) {
	router := newTestRouter(t, flatStubRates(t))

	rec := postRun(t, router, `{
		"symbols": ["AAA.US"],
		"investment": 1000000,
		"horizon_days": 5,
		"path_count": 16,
		"seed": 42
	}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var payload struct {
		Data struct {
			Summary struct {
				CurrentValue float64 `json:"current_value"`
				VaR95        float64 `json:"var_95"`
				PathCount    int     `json:"path_count"`
			} `json:"summary"`
			Seed int64 `json:"seed"`
		} `json:"data"`
		Metadata struct {
			Timestamp string `json:"timestamp"`
		} `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))

	assert.Equal(t, int64(42), payload.Data.Seed)
	assert.Equal(t, 16, payload.Data.Summary.PathCount)
	assert.Greater(t, payload.Data.Summary.CurrentValue, 0.0)
	assert.Greater(t, payload.Data.Summary.VaR95, 0.0)
	assert.NotEmpty(t, payload.Metadata.Timestamp)
}

func TestHandleRunMalformedBody(t *testing.T) {
	router := newTestRouter(t, flatStubRates(t))

	rec := postRun(t, router, `{"symbols": [`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleRunInvalidParams(t *testing.T) {
	router := newTestRouter(t, flatStubRates(t))

	rec := postRun(t, router, `{"symbols": [], "investment": 1000}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "INVALID_PARAMS", payload.Error.Code)
}

func TestHandleRunUnknownSymbol(t *testing.T) {
	router := newTestRouter(t, flatStubRates(t))

	rec := postRun(t, router, `{"symbols": ["NOPE.US"], "investment": 1000}`)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "DATA_UNAVAILABLE", payload.Error.Code)
}

func TestHandleRunMissingRates(t *testing.T) {
	router := newTestRouter(t, &stubRates{})

	rec := postRun(t, router, `{"symbols": ["AAA.US"], "investment": 1000000}`)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "DATA_UNAVAILABLE", payload.Error.Code)
	assert.Contains(t, payload.Error.Message, "exchange rate")
}

func TestHandleDefaults(t *testing.T) {
	router := newTestRouter(t, flatStubRates(t))

	req := httptest.NewRequest(http.MethodGet, "/simulation/defaults", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Data struct {
			DefaultHorizonDays int    `json:"default_horizon_days"`
			DefaultPaths       int    `json:"default_paths"`
			HomeCurrency       string `json:"home_currency"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, 20, payload.Data.DefaultHorizonDays)
	assert.Equal(t, 2000, payload.Data.DefaultPaths)
	assert.Equal(t, "KRW", payload.Data.HomeCurrency)
}
