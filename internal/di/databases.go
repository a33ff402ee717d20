// Package di provides dependency injection for database connections.
package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/compass/internal/config"
	"github.com/aristath/compass/internal/database"
)

// InitializeDatabases initializes all 4 databases and applies schemas
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	// 1. history.db - Historical time-series data (daily prices, exchange rates)
	historyDB, err := database.New(database.Config{
		Path:    cfg.DataDir + "/history.db",
		Profile: database.ProfileStandard,
		Name:    "history",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize history database: %w", err)
	}
	container.HistoryDB = historyDB

	// 2. app.db - Application state (instrument catalog, scores, subscribers)
	appDB, err := database.New(database.Config{
		Path:    cfg.DataDir + "/app.db",
		Profile: database.ProfileStandard,
		Name:    "app",
	})
	if err != nil {
		container.Close()
		return nil, fmt.Errorf("failed to initialize app database: %w", err)
	}
	container.AppDB = appDB

	// 3. reports.db - Append-only report archive
	reportsDB, err := database.New(database.Config{
		Path:    cfg.DataDir + "/reports.db",
		Profile: database.ProfileArchive, // Maximum safety for the append-only archive
		Name:    "reports",
	})
	if err != nil {
		container.Close()
		return nil, fmt.Errorf("failed to initialize reports database: %w", err)
	}
	container.ReportsDB = reportsDB

	// 4. clientdata.db - External API response cache (EODHD, exchange rates, search)
	clientDataDB, err := database.New(database.Config{
		Path:    cfg.DataDir + "/clientdata.db",
		Profile: database.ProfileCache, // Maximum speed for cache data
		Name:    "clientdata",
	})
	if err != nil {
		container.Close()
		return nil, fmt.Errorf("failed to initialize clientdata database: %w", err)
	}
	container.ClientDataDB = clientDataDB

	// Apply schemas to all databases (single source of truth)
	for _, db := range []*database.DB{historyDB, appDB, reportsDB, clientDataDB} {
		if err := db.Migrate(); err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to apply schema to %s: %w", db.Name(), err)
		}
	}

	log.Info().Msg("All databases initialized and schemas applied")

	return container, nil
}
