package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/compass/internal/domain"
	"github.com/aristath/compass/internal/modules/currency"
	"github.com/aristath/compass/internal/modules/universe"
)

// How far back the rate refresh looks. The read-through store only fetches
// the part of this window it does not already hold.
const rateRefreshDays = 30

// PriceSyncJob pulls missing daily bars for every catalog instrument and
// refreshes the exchange rates the valuation needs. Runs on weekday mornings
// after the vendor has published the previous close.
type PriceSyncJob struct {
	sync        *universe.SyncService
	currency    *currency.Service
	instruments *universe.InstrumentRepository
	home        domain.Currency
	timeout     time.Duration
	log         zerolog.Logger
}

// PriceSyncConfig holds dependencies for the price sync job
type PriceSyncConfig struct {
	Sync        *universe.SyncService
	Currency    *currency.Service
	Instruments *universe.InstrumentRepository
	Home        domain.Currency
	Log         zerolog.Logger
}

// NewPriceSyncJob creates a new price sync job
func NewPriceSyncJob(cfg PriceSyncConfig) *PriceSyncJob {
	return &PriceSyncJob{
		sync:        cfg.Sync,
		currency:    cfg.Currency,
		instruments: cfg.Instruments,
		home:        cfg.Home,
		timeout:     10 * time.Minute,
		log:         cfg.Log.With().Str("job", "price_sync").Logger(),
	}
}

// Name returns the job name
func (j *PriceSyncJob) Name() string {
	return "price_sync"
}

// Run executes the price sync job
func (j *PriceSyncJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	report, err := j.sync.SyncAll(ctx)
	if err != nil {
		return err
	}

	if err := j.refreshRates(ctx); err != nil {
		j.log.Error().Err(err).Msg("Exchange rate refresh failed")
	}

	j.log.Info().
		Int("synced", report.Synced).
		Int("up_to_date", report.UpToDate).
		Int("failed", len(report.Failed)).
		Dur("duration", time.Since(start)).
		Msg("Price sync complete")
	return nil
}

// refreshRates tops up the stored rate series for every foreign trading
// currency in the catalog.
func (j *PriceSyncJob) refreshRates(ctx context.Context) error {
	instruments, err := j.instruments.List()
	if err != nil {
		return err
	}

	seen := map[domain.Currency]bool{}
	to := time.Now().UTC().Format("2006-01-02")
	from := time.Now().UTC().AddDate(0, 0, -rateRefreshDays).Format("2006-01-02")

	for _, inst := range instruments {
		if inst.Currency == j.home || seen[inst.Currency] {
			continue
		}
		seen[inst.Currency] = true

		stored, err := j.currency.Refresh(ctx, inst.Currency, j.home, from, to)
		if err != nil {
			j.log.Error().
				Err(err).
				Str("from", string(inst.Currency)).
				Str("to", string(j.home)).
				Msg("Rate refresh failed")
			continue
		}
		if stored > 0 {
			j.log.Debug().
				Str("pair", string(inst.Currency)+"/"+string(j.home)).
				Int("stored", stored).
				Msg("Exchange rates refreshed")
		}
	}
	return nil
}
