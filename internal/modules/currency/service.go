package currency

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/compass/internal/domain"
)

// headSlackDays tolerates weekends and holiday runs at the start of a
// requested window before treating the stored series as missing its head.
const headSlackDays = 5

// RateFetcher fetches exchange rates from the external provider. Implemented
// by the exchangerate client through an adapter.
type RateFetcher interface {
	SpotRate(from, to domain.Currency) (float64, error)
	DailyRates(ctx context.Context, from, to domain.Currency, fromDate, toDate string) ([]RatePoint, error)
}

// Service serves exchange rates read-through: stored observations first, the
// provider only for the part of the window the store does not cover yet.
// Fetched rates are persisted so the next read is local.
type Service struct {
	fetcher RateFetcher
	rates   *RateRepository
	home    domain.Currency
	log     zerolog.Logger
}

// NewService creates the currency service.
func NewService(fetcher RateFetcher, rates *RateRepository, home domain.Currency, log zerolog.Logger) *Service {
	return &Service{
		fetcher: fetcher,
		rates:   rates,
		home:    home,
		log:     log.With().Str("component", "currency").Logger(),
	}
}

// HomeCurrency reports the currency portfolio values are expressed in.
func (s *Service) HomeCurrency() domain.Currency {
	return s.home
}

// Latest returns the spot rate from the given currency to the home currency
// and records it as today's observation. Persisting is best effort; a full
// store does not fail a quote.
func (s *Service) Latest(from domain.Currency) (*LatestRate, error) {
	if from == s.home {
		return &LatestRate{Pair: domain.Pair(from, s.home), From: from, To: s.home, Rate: 1}, nil
	}

	rate, err := s.fetcher.SpotRate(from, s.home)
	if err != nil {
		return nil, fmt.Errorf("fetching spot rate for %s: %w", domain.Pair(from, s.home), err)
	}

	today := time.Now().UTC().Format("2006-01-02")
	if _, err := s.rates.UpsertRates(from, s.home, []RatePoint{{Date: today, Rate: rate}}); err != nil {
		s.log.Warn().Err(err).Str("pair", domain.Pair(from, s.home)).Msg("Failed to store spot rate")
	}

	return &LatestRate{Pair: domain.Pair(from, s.home), From: from, To: s.home, Rate: rate}, nil
}

// Series returns daily rates for a pair between two dates inclusive, oldest
// first. Missing spans are fetched from the provider and stored; when the
// provider is unreachable the stored observations are served as is.
func (s *Service) Series(ctx context.Context, from, to domain.Currency, fromDate, toDate string) ([]RatePoint, error) {
	if from == to {
		return nil, fmt.Errorf("cannot build a rate series for %s against itself", from)
	}
	if fromDate > toDate {
		return nil, fmt.Errorf("rate window %s..%s is inverted", fromDate, toDate)
	}

	stored, err := s.rates.RateSeries(from, to, fromDate, toDate)
	if err != nil {
		return nil, err
	}

	fetchFrom, fetchTo, ok := s.missingSpan(stored, fromDate, toDate)
	if !ok {
		return stored, nil
	}

	fetched, err := s.fetcher.DailyRates(ctx, from, to, fetchFrom, fetchTo)
	if err != nil {
		if len(stored) > 0 {
			s.log.Warn().Err(err).
				Str("pair", domain.Pair(from, to)).
				Str("from", fetchFrom).
				Str("to", fetchTo).
				Msg("Rate fetch failed, serving stored observations")
			return stored, nil
		}
		return nil, fmt.Errorf("fetching rates for %s: %w", domain.Pair(from, to), err)
	}

	if _, err := s.rates.UpsertRates(from, to, fetched); err != nil {
		return nil, err
	}
	return s.rates.RateSeries(from, to, fromDate, toDate)
}

// Refresh pulls the window for a pair from the provider unconditionally and
// stores it. Used by the scheduled sync so interactive reads stay local.
func (s *Service) Refresh(ctx context.Context, from, to domain.Currency, fromDate, toDate string) (int, error) {
	fetched, err := s.fetcher.DailyRates(ctx, from, to, fromDate, toDate)
	if err != nil {
		return 0, fmt.Errorf("fetching rates for %s: %w", domain.Pair(from, to), err)
	}
	return s.rates.UpsertRates(from, to, fetched)
}

// missingSpan decides what, if anything, must be fetched to cover the
// requested window. A tail gap is the everyday case and fetches only the
// dates after the last stored observation. A head gap means the window
// reaches further back than anything stored, so the whole window is
// refetched rather than stitched; the upsert makes that idempotent.
func (s *Service) missingSpan(stored []RatePoint, fromDate, toDate string) (string, string, bool) {
	if len(stored) == 0 {
		return fromDate, toDate, true
	}
	if stored[0].Date > addDays(fromDate, headSlackDays) {
		return fromDate, toDate, true
	}
	next := addDays(stored[len(stored)-1].Date, 1)
	if next > toDate {
		return "", "", false
	}
	return next, toDate, true
}

// addDays shifts a YYYY-MM-DD date. Malformed input comes back unchanged;
// the repository rejects it with a real error on the next touch.
func addDays(date string, days int) string {
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return parsed.AddDate(0, 0, days).Format("2006-01-02")
}
