/**
 * Package di provides dependency injection type definitions.
 *
 * This package defines the Container type which holds all application dependencies.
 * The Container is the single source of truth for all service instances and is
 * passed to handlers for access to services.
 */
package di

import (
	"github.com/aristath/compass/internal/clientdata"
	"github.com/aristath/compass/internal/clients/eodhd"
	"github.com/aristath/compass/internal/clients/exchangerate"
	"github.com/aristath/compass/internal/clients/gemini"
	"github.com/aristath/compass/internal/clients/websearch"
	"github.com/aristath/compass/internal/database"
	"github.com/aristath/compass/internal/mailer"
	"github.com/aristath/compass/internal/modules/charts"
	"github.com/aristath/compass/internal/modules/currency"
	"github.com/aristath/compass/internal/modules/reports"
	"github.com/aristath/compass/internal/modules/scoring"
	"github.com/aristath/compass/internal/modules/simulation"
	"github.com/aristath/compass/internal/modules/subscribers"
	"github.com/aristath/compass/internal/modules/universe"
)

/**
 * Container holds all dependencies for the application.
 *
 * This is the single source of truth for all service instances.
 * The container is created by Wire() and passed to handlers for access to services.
 *
 * Architecture:
 * - Databases: 4-database architecture (history, app, reports, clientdata)
 * - Clients: External API clients (price vendor, FX provider, summarizer, web search)
 * - Repositories: Data access layer (instruments, prices, rates, scores, subscribers, reports)
 * - Services: Business logic layer (simulation, scoring, sync, currency, reports, charts)
 *
 * All dependencies are injected via constructor injection following clean architecture principles.
 */
type Container struct {
	// Databases (4-database architecture)
	// Each database uses SQLite with WAL mode and profile-specific PRAGMAs.
	HistoryDB    *database.DB // Historical time-series data (prices, exchange rates)
	AppDB        *database.DB // Application state (instruments, scores, subscribers)
	ReportsDB    *database.DB // Append-only report archive
	ClientDataDB *database.DB // External API response cache (EODHD, exchange rates, search)

	// Clients - External API integrations.
	// GeminiClient and SearchClient are nil when their API keys are not
	// configured; the report pipeline is disabled in that case.
	EODHDClient        *eodhd.Client
	ExchangeRateClient *exchangerate.Client
	GeminiClient       *gemini.Client
	SearchClient       *websearch.Client

	// Repositories - Data access layer
	InstrumentRepo *universe.InstrumentRepository
	PriceRepo      *universe.PriceRepository
	RateRepo       *currency.RateRepository
	ScoreRepo      *scoring.ScoreRepository
	SubscriberRepo *subscribers.Repository
	ReportRepo     *reports.Repository
	ClientDataRepo *clientdata.Repository

	// Services - Business logic layer
	CurrencyService   *currency.Service
	SimulationService *simulation.Service
	ScoringService    *scoring.Service
	SyncService       *universe.SyncService
	ChartsService     *charts.Service
	SubscriberService *subscribers.Service
	ReportService     *reports.Service // nil when search or summarizer keys are missing
	Mailer            *mailer.Mailer
}

// Close closes all database connections. Safe to call on a partially
// initialized container.
func (c *Container) Close() {
	for _, db := range []*database.DB{c.HistoryDB, c.AppDB, c.ReportsDB, c.ClientDataDB} {
		if db != nil {
			db.Close()
		}
	}
}
