package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/compass/internal/config"
	"github.com/aristath/compass/internal/di"
	"github.com/aristath/compass/internal/scheduler"
)

func setupTestServer(t *testing.T) (*Server, *di.JobInstances) {
	t.Helper()

	cfg := &config.Config{
		DataDir:           t.TempDir(),
		Port:              8080,
		DevMode:           true,
		PortfolioCurrency: "KRW",
		Simulation: config.SimulationConfig{
			MinHorizonDays:     30,
			MaxHorizonDays:     3650,
			DefaultHorizonDays: 365,
			MinPaths:           100,
			MaxPaths:           20000,
			DefaultPaths:       5000,
		},
		Schedules: config.ScheduleConfig{
			PriceSync:     "0 30 6 * * MON-FRI",
			DailyReport:   "0 0 7 * * MON-FRI",
			CacheCleanup:  "0 15 * * * *",
			WALCheckpoint: "0 0 3 * * *",
		},
	}

	sched := scheduler.New(zerolog.Nop())
	container, jobs, err := di.Wire(cfg, sched, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(container.Close)

	srv := New(Config{
		Log:       zerolog.Nop(),
		Config:    cfg,
		Port:      cfg.Port,
		DevMode:   true,
		Container: container,
	})
	return srv, jobs
}

func TestHandleHealth(t *testing.T) {
	srv, _ := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])

	checks, ok := body["databases"].(map[string]interface{})
	require.True(t, ok)
	assert.Len(t, checks, 4)
	for name, status := range checks {
		assert.Equal(t, "ok", status, name)
	}
}

func TestSimulationDefaultsRoute(t *testing.T) {
	srv, _ := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/simulation/defaults", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReportTriggerDisabledPipeline(t *testing.T) {
	srv, _ := setupTestServer(t)

	// No search or summarizer keys in the test config, so the pipeline is off.
	req := httptest.NewRequest(http.MethodPost, "/api/reports/trigger", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	srv, _ := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
