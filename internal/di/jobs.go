// Package di provides dependency injection for background jobs.
package di

import (
	"github.com/rs/zerolog"

	"github.com/aristath/compass/internal/clientdata"
	"github.com/aristath/compass/internal/config"
	"github.com/aristath/compass/internal/database"
	"github.com/aristath/compass/internal/domain"
	"github.com/aristath/compass/internal/scheduler"
)

// JobInstances holds the background job instances so the server can expose
// manual triggers for them. DailyReport is nil when the report pipeline is
// disabled.
type JobInstances struct {
	PriceSync     scheduler.Job
	DailyReport   scheduler.Job
	CacheCleanup  scheduler.Job
	WALCheckpoint scheduler.Job
}

// RegisterJobs creates all background jobs and registers them with the
// scheduler. Services must be initialized first.
func RegisterJobs(container *Container, cfg *config.Config, sched *scheduler.Scheduler, log zerolog.Logger) (*JobInstances, error) {
	jobs := &JobInstances{}

	jobs.PriceSync = scheduler.NewPriceSyncJob(scheduler.PriceSyncConfig{
		Sync:        container.SyncService,
		Currency:    container.CurrencyService,
		Instruments: container.InstrumentRepo,
		Home:        domain.Currency(cfg.PortfolioCurrency),
		Log:         log,
	})
	if err := sched.AddJob(cfg.Schedules.PriceSync, jobs.PriceSync); err != nil {
		return nil, err
	}

	if container.ReportService != nil {
		jobs.DailyReport = scheduler.NewDailyReportJob(container.ReportService, log)
		if err := sched.AddJob(cfg.Schedules.DailyReport, jobs.DailyReport); err != nil {
			return nil, err
		}
	} else {
		log.Warn().Msg("Report pipeline disabled, daily report job not registered")
	}

	jobs.CacheCleanup = clientdata.NewCleanupJob(container.ClientDataRepo, log)
	if err := sched.AddJob(cfg.Schedules.CacheCleanup, jobs.CacheCleanup); err != nil {
		return nil, err
	}

	jobs.WALCheckpoint = scheduler.NewWALCheckpointJob([]*database.DB{
		container.HistoryDB,
		container.AppDB,
		container.ReportsDB,
		container.ClientDataDB,
	}, log)
	if err := sched.AddJob(cfg.Schedules.WALCheckpoint, jobs.WALCheckpoint); err != nil {
		return nil, err
	}

	log.Info().Msg("Background jobs registered")

	return jobs, nil
}
