package simulation

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/compass/internal/config"
	"github.com/aristath/compass/internal/domain"
	"github.com/aristath/compass/internal/utils"
)

// defaultLookbackDays is the history window used when the request does not
// pin one.
const defaultLookbackDays = 365

// fanLevels are the percentile bands returned for the projection fan chart.
var fanLevels = []float64{5, 25, 50, 75, 95}

// MarketData supplies instrument metadata and daily price history. The
// production implementation sits over the universe repositories.
type MarketData interface {
	// InstrumentCurrency reports the trading currency of a symbol; ok is
	// false for symbols not in the catalog.
	InstrumentCurrency(symbol string) (currency domain.Currency, ok bool, err error)
	// PriceSeries returns daily closes between from and to inclusive,
	// dates ascending. An empty series means no history in the window.
	PriceSeries(symbol, from, to string) (TimeSeries, error)
}

// RateSource supplies daily exchange rates between two currencies, dates
// ascending. An empty series means no rates are known for the window.
// Implementations may reach out to the rate provider, so calls honor the
// context.
type RateSource interface {
	RateSeries(ctx context.Context, from, to domain.Currency, fromDate, toDate string) (TimeSeries, error)
}

// RunRequest describes one risk projection.
//
// When Allocations is empty the Investment amount is split equally across
// Symbols; when Allocations is set it defines the invested amounts and must
// cover exactly the requested symbols. Horizon and path count fall back to
// the configured defaults when zero. A nil Seed draws a fresh one; the seed
// actually used is echoed in the result.
type RunRequest struct {
	Symbols     []string           `json:"symbols"`
	Allocations map[string]float64 `json:"allocations,omitempty"`
	Investment  float64            `json:"investment,omitempty"`
	HorizonDays int                `json:"horizon_days,omitempty"`
	PathCount   int                `json:"path_count,omitempty"`
	Seed        *int64             `json:"seed,omitempty"`
	From        string             `json:"from,omitempty"`
	To          string             `json:"to,omitempty"`
}

// RunResult is the full projection payload for the dashboard.
type RunResult struct {
	Summary      *RiskSummary       `json:"summary"`
	Correlations *CorrelationMatrix `json:"correlations"`
	Values       *ValueSeries       `json:"portfolio_values"`
	Quantiles    *PathQuantiles     `json:"path_quantiles"`
	Seed         int64              `json:"seed"`
	From         string             `json:"from"`
	To           string             `json:"to"`
}

// Defaults reports the tunable ranges so the dashboard can build its
// controls without hardcoding them.
type Defaults struct {
	MinHorizonDays     int    `json:"min_horizon_days"`
	MaxHorizonDays     int    `json:"max_horizon_days"`
	DefaultHorizonDays int    `json:"default_horizon_days"`
	MinPaths           int    `json:"min_paths"`
	MaxPaths           int    `json:"max_paths"`
	DefaultPaths       int    `json:"default_paths"`
	HomeCurrency       string `json:"home_currency"`
}

// Service wires the pipeline end to end: load, align, value, extract
// returns, simulate, summarize.
type Service struct {
	market       MarketData
	rates        RateSource
	aligner      *Aligner
	valuator     *Valuator
	simulator    *Simulator
	homeCurrency domain.Currency
	cfg          config.SimulationConfig
	log          zerolog.Logger
}

// NewService creates the simulation service.
func NewService(market MarketData, rates RateSource, homeCurrency domain.Currency, cfg config.SimulationConfig, log zerolog.Logger) *Service {
	serviceLog := log.With().Str("component", "simulation").Logger()
	return &Service{
		market:       market,
		rates:        rates,
		aligner:      NewAligner(serviceLog),
		valuator:     NewValuator(serviceLog),
		simulator:    NewSimulator(serviceLog),
		homeCurrency: homeCurrency,
		cfg:          cfg,
		log:          serviceLog,
	}
}

// Defaults returns the configured tunable ranges.
func (s *Service) Defaults() Defaults {
	return Defaults{
		MinHorizonDays:     s.cfg.MinHorizonDays,
		MaxHorizonDays:     s.cfg.MaxHorizonDays,
		DefaultHorizonDays: s.cfg.DefaultHorizonDays,
		MinPaths:           s.cfg.MinPaths,
		MaxPaths:           s.cfg.MaxPaths,
		DefaultPaths:       s.cfg.DefaultPaths,
		HomeCurrency:       string(s.homeCurrency),
	}
}

// Run executes one projection. Validation failures surface before any data
// is loaded; data gaps surface before any simulation runs.
func (s *Service) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	defer utils.NewTimer("simulation_run", s.log).Stop()

	if err := s.normalize(&req); err != nil {
		return nil, err
	}

	frame, err := s.loadFrame(ctx, &req)
	if err != nil {
		return nil, err
	}

	alloc := Allocation(req.Allocations)
	if len(alloc) == 0 {
		alloc = EqualSplit(req.Symbols, req.Investment)
	}

	series, err := s.valuator.Valuate(frame, alloc)
	if err != nil {
		return nil, err
	}

	pool, err := LogReturns(series.Values)
	if err != nil {
		return nil, err
	}

	current, ok := series.Last()
	if !ok {
		return nil, fmt.Errorf("portfolio has no valid value in the window: %w", ErrInsufficientHistory)
	}

	paths, err := s.simulator.Simulate(pool, SimConfig{
		StartValue: current,
		Horizon:    req.HorizonDays,
		PathCount:  req.PathCount,
		Seed:       req.Seed,
	})
	if err != nil {
		return nil, err
	}

	summary, err := Summarize(paths, current)
	if err != nil {
		return nil, err
	}

	correlations, err := Correlations(frame)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Strs("symbols", req.Symbols).
		Int("horizon_days", req.HorizonDays).
		Int("paths", req.PathCount).
		Float64("current_value", summary.CurrentValue).
		Float64("var_95", summary.VaR95).
		Float64("loss_amount", summary.LossAmount).
		Msg("Risk projection complete")

	return &RunResult{
		Summary:      summary,
		Correlations: correlations,
		Values:       series,
		Quantiles:    QuantileBands(paths, fanLevels),
		Seed:         paths.Seed,
		From:         req.From,
		To:           req.To,
	}, nil
}

// normalize validates the request and fills defaults in place.
func (s *Service) normalize(req *RunRequest) error {
	if len(req.Symbols) == 0 {
		return fmt.Errorf("no symbols requested: %w", ErrInvalidParams)
	}
	seen := make(map[string]struct{}, len(req.Symbols))
	for i, symbol := range req.Symbols {
		symbol = strings.TrimSpace(symbol)
		if symbol == "" {
			return fmt.Errorf("empty symbol at index %d: %w", i, ErrInvalidParams)
		}
		if _, dup := seen[symbol]; dup {
			return fmt.Errorf("duplicate symbol %s: %w", symbol, ErrInvalidParams)
		}
		seen[symbol] = struct{}{}
		req.Symbols[i] = symbol
	}

	if len(req.Allocations) > 0 {
		if len(req.Allocations) != len(req.Symbols) {
			return fmt.Errorf("allocations cover %d symbols but %d were requested: %w", len(req.Allocations), len(req.Symbols), ErrInvalidParams)
		}
		for symbol, amount := range req.Allocations {
			if _, ok := seen[symbol]; !ok {
				return fmt.Errorf("allocation for unrequested symbol %s: %w", symbol, ErrInvalidParams)
			}
			if !(amount > 0) {
				return fmt.Errorf("allocation for %s must be positive, got %v: %w", symbol, amount, ErrInvalidParams)
			}
		}
	} else if !(req.Investment > 0) {
		return fmt.Errorf("investment must be positive, got %v: %w", req.Investment, ErrInvalidParams)
	}

	if req.HorizonDays == 0 {
		req.HorizonDays = s.cfg.DefaultHorizonDays
	}
	if req.HorizonDays < s.cfg.MinHorizonDays || req.HorizonDays > s.cfg.MaxHorizonDays {
		return fmt.Errorf("horizon %d outside [%d, %d]: %w", req.HorizonDays, s.cfg.MinHorizonDays, s.cfg.MaxHorizonDays, ErrInvalidParams)
	}
	if req.PathCount == 0 {
		req.PathCount = s.cfg.DefaultPaths
	}
	if req.PathCount < s.cfg.MinPaths || req.PathCount > s.cfg.MaxPaths {
		return fmt.Errorf("path count %d outside [%d, %d]: %w", req.PathCount, s.cfg.MinPaths, s.cfg.MaxPaths, ErrInvalidParams)
	}

	if req.To == "" {
		req.To = time.Now().UTC().Format(DateLayout)
	}
	to, err := time.Parse(DateLayout, req.To)
	if err != nil {
		return fmt.Errorf("invalid to date %q: %w", req.To, ErrInvalidParams)
	}
	if req.From == "" {
		req.From = to.AddDate(0, 0, -defaultLookbackDays).Format(DateLayout)
	}
	from, err := time.Parse(DateLayout, req.From)
	if err != nil {
		return fmt.Errorf("invalid from date %q: %w", req.From, ErrInvalidParams)
	}
	if from.After(to) {
		return fmt.Errorf("window %s..%s is inverted: %w", req.From, req.To, ErrInvalidParams)
	}
	return nil
}

// loadFrame resolves instruments, loads their history and the exchange rate
// series, and aligns everything onto one date axis.
func (s *Service) loadFrame(ctx context.Context, req *RunRequest) (*MarketFrame, error) {
	prices := make(PriceSet, len(req.Symbols))
	var native domain.Currency
	for _, symbol := range req.Symbols {
		currency, ok, err := s.market.InstrumentCurrency(symbol)
		if err != nil {
			return nil, fmt.Errorf("looking up %s: %w", symbol, err)
		}
		if !ok {
			return nil, fmt.Errorf("symbol %s is not in the catalog: %w", symbol, ErrDataUnavailable)
		}
		if native == "" {
			native = currency
		} else if native != currency {
			return nil, fmt.Errorf("mixed instrument currencies %s and %s: %w", native, currency, ErrInvalidParams)
		}

		series, err := s.market.PriceSeries(symbol, req.From, req.To)
		if err != nil {
			return nil, fmt.Errorf("loading prices for %s: %w", symbol, err)
		}
		if series.Len() == 0 {
			return nil, fmt.Errorf("no price history for %s in %s..%s: %w", symbol, req.From, req.To, ErrDataUnavailable)
		}
		prices[symbol] = series
	}

	fx, err := s.fxSeries(ctx, native, prices, req)
	if err != nil {
		return nil, err
	}
	return s.aligner.Align(prices, fx)
}

// fxSeries loads the conversion series from the instruments' currency to
// the home currency. Identical currencies use a constant series of 1 so the
// pipeline has a single shape.
func (s *Service) fxSeries(ctx context.Context, native domain.Currency, prices PriceSet, req *RunRequest) (TimeSeries, error) {
	if native == s.homeCurrency {
		return unitRateSeries(prices), nil
	}
	series, err := s.rates.RateSeries(ctx, native, s.homeCurrency, req.From, req.To)
	if err != nil {
		return TimeSeries{}, fmt.Errorf("loading %s rates: %w", domain.Pair(native, s.homeCurrency), err)
	}
	return series, nil
}

// unitRateSeries builds a rate of 1.0 on the union of the asset dates.
func unitRateSeries(prices PriceSet) TimeSeries {
	dateSet := make(map[string]struct{})
	for _, series := range prices {
		for _, date := range series.Dates {
			dateSet[date] = struct{}{}
		}
	}
	dates := make([]string, 0, len(dateSet))
	for date := range dateSet {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	values := make([]float64, len(dates))
	for i := range values {
		values[i] = 1
	}
	return TimeSeries{Dates: dates, Values: values}
}
