package scheduler

import (
	"github.com/rs/zerolog"

	"github.com/aristath/compass/internal/database"
)

// WALCheckpointJob truncates the WAL file of every database during the
// nightly quiet window so the files never grow unbounded.
type WALCheckpointJob struct {
	dbs []*database.DB
	log zerolog.Logger
}

// NewWALCheckpointJob creates a new WAL checkpoint job
func NewWALCheckpointJob(dbs []*database.DB, log zerolog.Logger) *WALCheckpointJob {
	return &WALCheckpointJob{
		dbs: dbs,
		log: log.With().Str("job", "wal_checkpoint").Logger(),
	}
}

// Name returns the job name
func (j *WALCheckpointJob) Name() string {
	return "wal_checkpoint"
}

// Run checkpoints every database, continuing past individual failures
func (j *WALCheckpointJob) Run() error {
	var lastErr error
	for _, db := range j.dbs {
		if db == nil {
			continue
		}
		if err := db.WALCheckpoint("TRUNCATE"); err != nil {
			j.log.Error().Err(err).Str("database", db.Name()).Msg("WAL checkpoint failed")
			lastErr = err
			continue
		}
		j.log.Debug().Str("database", db.Name()).Msg("WAL checkpointed")
	}
	return lastErr
}
