package universe

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// defaultBackfillDays is the history depth fetched for a symbol with no
// stored bars. It comfortably covers the one-year window the risk pipeline
// reads.
const defaultBackfillDays = 400

// PriceFetcher fetches daily bars from a market data vendor. Implemented by
// the EODHD client through an adapter.
type PriceFetcher interface {
	FetchDailyPrices(ctx context.Context, symbol, from, to string) ([]DailyPrice, error)
}

// SyncResult reports one symbol's sync outcome.
type SyncResult struct {
	Symbol  string `json:"symbol"`
	From    string `json:"from"`
	To      string `json:"to"`
	Fetched int    `json:"fetched"`
	Dropped int    `json:"dropped"`
	Stored  int    `json:"stored"`
}

// SyncReport aggregates a full catalog sync.
type SyncReport struct {
	Synced      int      `json:"synced"`
	UpToDate    int      `json:"up_to_date"`
	Failed      []string `json:"failed,omitempty"`
	TotalStored int      `json:"total_stored"`
}

// SyncService pulls missing price history from the vendor into the history
// database: incremental from the last stored bar, full backfill for new
// symbols.
type SyncService struct {
	fetcher     PriceFetcher
	prices      *PriceRepository
	instruments *InstrumentRepository
	validator   *PriceValidator
	log         zerolog.Logger
}

// NewSyncService creates a new price sync service.
func NewSyncService(
	fetcher PriceFetcher,
	prices *PriceRepository,
	instruments *InstrumentRepository,
	validator *PriceValidator,
	log zerolog.Logger,
) *SyncService {
	return &SyncService{
		fetcher:     fetcher,
		prices:      prices,
		instruments: instruments,
		validator:   validator,
		log:         log.With().Str("service", "price_sync").Logger(),
	}
}

// SyncSymbol fetches and stores bars newer than the last stored date. A
// symbol that is already current returns a zero result without calling the
// vendor.
func (s *SyncService) SyncSymbol(ctx context.Context, symbol string) (*SyncResult, error) {
	inst, err := s.instruments.Get(symbol)
	if err != nil {
		return nil, err
	}
	if inst == nil {
		return nil, fmt.Errorf("symbol %s is not in the catalog", symbol)
	}

	today := time.Now().UTC().Format("2006-01-02")
	from := time.Now().UTC().AddDate(0, 0, -defaultBackfillDays).Format("2006-01-02")

	latest, err := s.prices.LatestDate(symbol)
	if err != nil {
		return nil, err
	}
	if latest != nil {
		latestDay, err := time.Parse("2006-01-02", *latest)
		if err != nil {
			return nil, fmt.Errorf("stored date %q for %s is malformed: %w", *latest, symbol, err)
		}
		next := latestDay.AddDate(0, 0, 1).Format("2006-01-02")
		if next > today {
			s.log.Debug().Str("symbol", symbol).Msg("Price history already current")
			return &SyncResult{Symbol: symbol, From: next, To: today}, nil
		}
		from = next
	}

	fetched, err := s.fetcher.FetchDailyPrices(ctx, symbol, from, today)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", symbol, err)
	}

	clean, drops := s.validator.Sanitize(symbol, fetched)
	stored, err := s.prices.UpsertPrices(symbol, clean)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("symbol", symbol).
		Str("from", from).
		Str("to", today).
		Int("fetched", len(fetched)).
		Int("dropped", len(drops)).
		Int("stored", stored).
		Msg("Synced price history")

	return &SyncResult{
		Symbol:  symbol,
		From:    from,
		To:      today,
		Fetched: len(fetched),
		Dropped: len(drops),
		Stored:  stored,
	}, nil
}

// SyncAll syncs every catalog instrument, continuing past individual
// failures so one bad symbol does not starve the rest.
func (s *SyncService) SyncAll(ctx context.Context) (*SyncReport, error) {
	instruments, err := s.instruments.List()
	if err != nil {
		return nil, err
	}

	report := &SyncReport{}
	for _, inst := range instruments {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		result, err := s.SyncSymbol(ctx, inst.Symbol)
		if err != nil {
			s.log.Error().Err(err).Str("symbol", inst.Symbol).Msg("Symbol sync failed")
			report.Failed = append(report.Failed, inst.Symbol)
			continue
		}
		if result.Stored == 0 && result.Fetched == 0 {
			report.UpToDate++
		} else {
			report.Synced++
		}
		report.TotalStored += result.Stored
	}

	s.log.Info().
		Int("synced", report.Synced).
		Int("up_to_date", report.UpToDate).
		Int("failed", len(report.Failed)).
		Int("total_stored", report.TotalStored).
		Msg("Catalog price sync complete")
	return report, nil
}
