// Package di provides dependency injection for repositories.
package di

import (
	"github.com/rs/zerolog"

	"github.com/aristath/compass/internal/clientdata"
	"github.com/aristath/compass/internal/modules/currency"
	"github.com/aristath/compass/internal/modules/reports"
	"github.com/aristath/compass/internal/modules/scoring"
	"github.com/aristath/compass/internal/modules/subscribers"
	"github.com/aristath/compass/internal/modules/universe"
)

// InitializeRepositories initializes all repositories in the container.
// Databases must be initialized first.
func InitializeRepositories(container *Container, log zerolog.Logger) error {
	container.InstrumentRepo = universe.NewInstrumentRepository(container.AppDB.Conn(), log)
	container.PriceRepo = universe.NewPriceRepository(container.HistoryDB.Conn(), log)
	container.RateRepo = currency.NewRateRepository(container.HistoryDB.Conn(), log)
	container.ScoreRepo = scoring.NewScoreRepository(container.AppDB.Conn(), log)
	container.SubscriberRepo = subscribers.NewRepository(container.AppDB.Conn(), log)
	container.ReportRepo = reports.NewRepository(container.ReportsDB.Conn(), log)
	container.ClientDataRepo = clientdata.NewRepository(container.ClientDataDB.Conn())

	log.Info().Msg("All repositories initialized")

	return nil
}
