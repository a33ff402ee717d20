package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/compass/internal/modules/reports"
)

// DailyReportJob runs the full report pipeline: discover market reports,
// summarize them, archive the results and email the subscriber digest.
// Runs weekday mornings after the price sync.
type DailyReportJob struct {
	service *reports.Service
	timeout time.Duration
	log     zerolog.Logger
}

// NewDailyReportJob creates a new daily report job
func NewDailyReportJob(service *reports.Service, log zerolog.Logger) *DailyReportJob {
	return &DailyReportJob{
		service: service,
		timeout: 15 * time.Minute,
		log:     log.With().Str("job", "daily_report").Logger(),
	}
}

// Name returns the job name
func (j *DailyReportJob) Name() string {
	return "daily_report"
}

// Run executes the report pipeline
func (j *DailyReportJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	run, err := j.service.Run(ctx)
	if err != nil {
		return err
	}

	j.log.Info().
		Int("searched", run.Searched).
		Int("summarized", run.Summarized).
		Int("skipped", run.Skipped).
		Int("emailed", run.Emailed).
		Dur("duration", time.Since(start)).
		Msg("Daily report run complete")
	return nil
}
