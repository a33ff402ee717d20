// Package di provides dependency injection for services.
package di

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/compass/internal/clients/eodhd"
	"github.com/aristath/compass/internal/clients/exchangerate"
	"github.com/aristath/compass/internal/clients/gemini"
	"github.com/aristath/compass/internal/clients/websearch"
	"github.com/aristath/compass/internal/config"
	"github.com/aristath/compass/internal/domain"
	"github.com/aristath/compass/internal/mailer"
	"github.com/aristath/compass/internal/modules/charts"
	"github.com/aristath/compass/internal/modules/currency"
	"github.com/aristath/compass/internal/modules/reports"
	"github.com/aristath/compass/internal/modules/scoring"
	"github.com/aristath/compass/internal/modules/simulation"
	"github.com/aristath/compass/internal/modules/subscribers"
	"github.com/aristath/compass/internal/modules/universe"
)

// InitializeServices initializes all clients and services in the container.
// Repositories must be initialized first.
//
// The report pipeline needs both the search and the summarizer API keys;
// when either is missing the pipeline stays nil and everything else runs
// normally.
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	home := domain.Currency(cfg.PortfolioCurrency)

	// External API clients
	container.EODHDClient = eodhd.NewClient(cfg.EODHDAPIKey, container.ClientDataRepo, log)
	container.ExchangeRateClient = exchangerate.NewClient(container.ClientDataRepo, log)

	if cfg.GoogleSearchAPIKey != "" && cfg.GoogleSearchEngineID != "" {
		container.SearchClient = websearch.NewClient(cfg.GoogleSearchAPIKey, cfg.GoogleSearchEngineID, container.ClientDataRepo, log)
	} else {
		log.Warn().Msg("Web search API key or engine ID missing, report discovery disabled")
	}

	if cfg.GeminiAPIKey != "" {
		geminiClient, err := gemini.NewClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, log)
		if err != nil {
			return fmt.Errorf("failed to initialize gemini client: %w", err)
		}
		container.GeminiClient = geminiClient
	} else {
		log.Warn().Msg("Gemini API key missing, report summarization disabled")
	}

	// Currency service (read-through rate store over the FX provider)
	container.CurrencyService = currency.NewService(
		&rateFetcherAdapter{client: container.ExchangeRateClient},
		container.RateRepo,
		home,
		log,
	)

	// Simulation service (Monte Carlo risk lab)
	container.SimulationService = simulation.NewService(
		&marketDataAdapter{instruments: container.InstrumentRepo, prices: container.PriceRepo},
		&rateSourceAdapter{currency: container.CurrencyService},
		home,
		cfg.Simulation,
		log,
	)

	// Scoring service (buy-timing scores over stored history)
	container.ScoringService = scoring.NewService(
		&barSourceAdapter{prices: container.PriceRepo},
		container.ScoreRepo,
		log,
	)

	// Price sync service (vendor history into the history database)
	container.SyncService = universe.NewSyncService(
		&priceFetcherAdapter{client: container.EODHDClient},
		container.PriceRepo,
		container.InstrumentRepo,
		universe.NewPriceValidator(log),
		log,
	)

	// Charts service (PNG rendering over stored history)
	container.ChartsService = charts.NewService(container.PriceRepo, log)

	// Subscribers and mail
	container.SubscriberService = subscribers.NewService(container.SubscriberRepo, log)
	container.Mailer = mailer.New(cfg.Mail, log)

	// Report pipeline, only when both discovery and summarization are available
	if container.SearchClient != nil && container.GeminiClient != nil {
		container.ReportService = reports.NewService(
			container.SearchClient,
			container.GeminiClient,
			container.ReportRepo,
			container.SubscriberService,
			container.Mailer,
			cfg.Reports,
			log,
		)
	} else {
		log.Warn().Msg("Report pipeline disabled")
	}

	log.Info().Msg("All services initialized")

	return nil
}
