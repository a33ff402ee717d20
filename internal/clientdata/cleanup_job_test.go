package clientdata

import (
	"testing"
	"time"

	_ "modernc.org/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCleanupJob(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)
	job := NewCleanupJob(repo, zerolog.Nop())

	assert.NotNil(t, job)
}

func TestCleanupJobName(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)
	job := NewCleanupJob(repo, zerolog.Nop())

	assert.Equal(t, "client_data_cleanup", job.Name())
}

func TestCleanupJobRun(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)
	job := NewCleanupJob(repo, zerolog.Nop())

	now := time.Now()
	expiredAt := now.Add(-time.Hour).Unix()
	freshAt := now.Add(time.Hour).Unix()

	insertExpiredAndFresh(t, db, "eod_prices", "symbol", expiredAt, freshAt)
	insertExpiredAndFresh(t, db, "exchangerate", "pair", expiredAt, freshAt)
	insertExpiredAndFresh(t, db, "websearch", "query", expiredAt, freshAt)

	var countBefore int
	require.NoError(t, db.QueryRow(
		"SELECT (SELECT COUNT(*) FROM eod_prices) + (SELECT COUNT(*) FROM exchangerate) + (SELECT COUNT(*) FROM websearch)",
	).Scan(&countBefore))
	assert.Equal(t, 6, countBefore)

	err := job.Run()
	require.NoError(t, err)

	var countAfter int
	require.NoError(t, db.QueryRow(
		"SELECT (SELECT COUNT(*) FROM eod_prices) + (SELECT COUNT(*) FROM exchangerate) + (SELECT COUNT(*) FROM websearch)",
	).Scan(&countAfter))
	assert.Equal(t, 3, countAfter, "only fresh entries should survive cleanup")
}
