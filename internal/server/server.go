// Package server provides the HTTP server and routing for Compass.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/compass/internal/config"
	"github.com/aristath/compass/internal/di"
	chartshandlers "github.com/aristath/compass/internal/modules/charts/handlers"
	currencyhandlers "github.com/aristath/compass/internal/modules/currency/handlers"
	reportshandlers "github.com/aristath/compass/internal/modules/reports/handlers"
	scoringhandlers "github.com/aristath/compass/internal/modules/scoring/api/handlers"
	simulationhandlers "github.com/aristath/compass/internal/modules/simulation/handlers"
	subscribershandlers "github.com/aristath/compass/internal/modules/subscribers/handlers"
	universehandlers "github.com/aristath/compass/internal/modules/universe/handlers"
)

// Config holds server configuration
type Config struct {
	Log       zerolog.Logger
	Config    *config.Config
	Port      int
	DevMode   bool
	Container *di.Container // DI container with all services
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            *config.Config
	container      *di.Container
	systemHandlers *SystemHandlers
	startedAt      time.Time
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		log:       cfg.Log.With().Str("component", "server").Logger(),
		cfg:       cfg.Config,
		container: cfg.Container,
		startedAt: time.Now(),
	}

	s.systemHandlers = NewSystemHandlers(cfg.Log, cfg.Config.DataDir, cfg.Container)

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // long enough for a large simulation run
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// SetJobs registers job instances for manual triggering via API
func (s *Server) SetJobs(jobs *di.JobInstances) {
	s.systemHandlers.SetJobs(jobs)
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// Timeout
	s.router.Use(middleware.Timeout(120 * time.Second))

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	// Health check
	s.router.Get("/health", s.handleHealth)

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		// System monitoring and manual job triggers
		r.Route("/system", func(r chi.Router) {
			r.Get("/stats", s.systemHandlers.HandleSystemStats)
			r.Get("/database/stats", s.systemHandlers.HandleDatabaseStats)
			r.Get("/disk", s.systemHandlers.HandleDiskUsage)

			r.Route("/jobs", func(r chi.Router) {
				r.Post("/price-sync", s.systemHandlers.HandleTriggerPriceSync)
				r.Post("/daily-report", s.systemHandlers.HandleTriggerDailyReport)
				r.Post("/cache-cleanup", s.systemHandlers.HandleTriggerCacheCleanup)
				r.Post("/wal-checkpoint", s.systemHandlers.HandleTriggerWALCheckpoint)
			})
		})

		// Simulation module (Monte Carlo risk lab)
		simulationHandler := simulationhandlers.NewHandler(s.container.SimulationService, s.log)
		simulationHandler.RegisterRoutes(r)

		// Universe module (instrument catalog, price history)
		universeHandler := universehandlers.NewHandler(
			s.container.InstrumentRepo,
			s.container.PriceRepo,
			s.container.SyncService,
			s.log,
		)
		universeHandler.RegisterRoutes(r)

		// Currency module (exchange rates)
		currencyHandler := currencyhandlers.NewHandler(s.container.CurrencyService, s.log)
		currencyHandler.RegisterRoutes(r)

		// Scoring module (buy-timing scores)
		scoringHandler := scoringhandlers.NewHandler(s.container.ScoringService, s.log)
		scoringHandler.RegisterRoutes(r)

		// Subscribers module (digest recipients)
		subscriberHandler := subscribershandlers.NewHandler(s.container.SubscriberService, s.log)
		subscriberHandler.RegisterRoutes(r)

		// Reports module (archive plus manual pipeline trigger).
		// The service is nil when the pipeline is disabled; the archive
		// endpoints still work.
		reportsHandler := reportshandlers.NewHandler(s.container.ReportService, s.container.ReportRepo, s.log)
		reportsHandler.RegisterRoutes(r)

		// Charts module (PNG rendering)
		chartsHandler := chartshandlers.NewHandler(s.container.ChartsService, s.log)
		chartsHandler.RegisterRoutes(r)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
