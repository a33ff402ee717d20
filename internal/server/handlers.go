package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/aristath/compass/internal/database"
)

// handleHealth handles health check requests. Each database gets a quick
// ping; a single unreachable database flips the whole status to degraded.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	databases := map[string]*database.DB{
		"history":    s.container.HistoryDB,
		"app":        s.container.AppDB,
		"reports":    s.container.ReportsDB,
		"clientdata": s.container.ClientDataDB,
	}

	status := "healthy"
	checks := make(map[string]string, len(databases))
	for name, db := range databases {
		if err := db.QuickCheck(ctx); err != nil {
			checks[name] = "unreachable"
			status = "degraded"
			continue
		}
		checks[name] = "ok"
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}

	s.writeJSON(w, code, map[string]interface{}{
		"status":         status,
		"service":        "compass",
		"databases":      checks,
		"uptime_seconds": int64(time.Since(s.startedAt).Seconds()),
	})
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
