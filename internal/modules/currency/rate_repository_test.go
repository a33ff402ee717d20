package currency

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/compass/internal/domain"
)

const testSchema = `
CREATE TABLE exchange_rates (
	from_currency TEXT NOT NULL,
	to_currency TEXT NOT NULL,
	date INTEGER NOT NULL,
	rate REAL NOT NULL,
	PRIMARY KEY (from_currency, to_currency, date)
);
`

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(testSchema)
	require.NoError(t, err)
	return db
}

func newTestRepo(t *testing.T) *RateRepository {
	t.Helper()
	return NewRateRepository(setupTestDB(t), zerolog.Nop())
}

func usdkrw(t *testing.T, repo *RateRepository, points ...RatePoint) {
	t.Helper()
	stored, err := repo.UpsertRates(domain.CurrencyUSD, domain.CurrencyKRW, points)
	require.NoError(t, err)
	require.Equal(t, len(points), stored)
}

func TestUpsertAndReadSeries(t *testing.T) {
	repo := newTestRepo(t)
	usdkrw(t, repo,
		RatePoint{Date: "2024-01-03", Rate: 1310},
		RatePoint{Date: "2024-01-02", Rate: 1300},
		RatePoint{Date: "2024-01-04", Rate: 1320},
	)

	points, err := repo.RateSeries(domain.CurrencyUSD, domain.CurrencyKRW, "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, []RatePoint{
		{Date: "2024-01-02", Rate: 1300},
		{Date: "2024-01-03", Rate: 1310},
		{Date: "2024-01-04", Rate: 1320},
	}, points)
}

func TestUpsertReplacesSameDate(t *testing.T) {
	repo := newTestRepo(t)
	usdkrw(t, repo, RatePoint{Date: "2024-01-02", Rate: 1300})
	usdkrw(t, repo, RatePoint{Date: "2024-01-02", Rate: 1305.5})

	points, err := repo.RateSeries(domain.CurrencyUSD, domain.CurrencyKRW, "2024-01-02", "2024-01-02")
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, 1305.5, points[0].Rate)
}

func TestSeriesWindowIsInclusive(t *testing.T) {
	repo := newTestRepo(t)
	usdkrw(t, repo,
		RatePoint{Date: "2024-01-01", Rate: 1295},
		RatePoint{Date: "2024-01-02", Rate: 1300},
		RatePoint{Date: "2024-01-03", Rate: 1310},
		RatePoint{Date: "2024-01-04", Rate: 1320},
	)

	points, err := repo.RateSeries(domain.CurrencyUSD, domain.CurrencyKRW, "2024-01-02", "2024-01-03")
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "2024-01-02", points[0].Date)
	assert.Equal(t, "2024-01-03", points[1].Date)
}

func TestSeriesKeepsPairsApart(t *testing.T) {
	repo := newTestRepo(t)
	usdkrw(t, repo, RatePoint{Date: "2024-01-02", Rate: 1300})
	_, err := repo.UpsertRates(domain.CurrencyEUR, domain.CurrencyKRW, []RatePoint{{Date: "2024-01-02", Rate: 1420}})
	require.NoError(t, err)

	points, err := repo.RateSeries(domain.CurrencyEUR, domain.CurrencyKRW, "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, 1420.0, points[0].Rate)
}

func TestUpsertEmptyBatchIsNoop(t *testing.T) {
	repo := newTestRepo(t)
	stored, err := repo.UpsertRates(domain.CurrencyUSD, domain.CurrencyKRW, nil)
	require.NoError(t, err)
	assert.Zero(t, stored)
}

func TestUpsertRejectsMalformedDate(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.UpsertRates(domain.CurrencyUSD, domain.CurrencyKRW, []RatePoint{{Date: "01/02/2024", Rate: 1300}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "01/02/2024")

	points, err := repo.RateSeries(domain.CurrencyUSD, domain.CurrencyKRW, "2024-01-01", "2024-12-31")
	require.NoError(t, err)
	assert.Empty(t, points, "failed batch must not leave partial rows")
}

func TestLatestStoredRate(t *testing.T) {
	repo := newTestRepo(t)

	latest, err := repo.LatestStoredRate(domain.CurrencyUSD, domain.CurrencyKRW)
	require.NoError(t, err)
	assert.Nil(t, latest)

	usdkrw(t, repo,
		RatePoint{Date: "2024-01-02", Rate: 1300},
		RatePoint{Date: "2024-01-04", Rate: 1320},
	)

	latest, err = repo.LatestStoredRate(domain.CurrencyUSD, domain.CurrencyKRW)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "2024-01-04", latest.Date)
	assert.Equal(t, 1320.0, latest.Rate)
}

func TestDeleteRatesBefore(t *testing.T) {
	repo := newTestRepo(t)
	usdkrw(t, repo,
		RatePoint{Date: "2022-01-03", Rate: 1190},
		RatePoint{Date: "2024-01-02", Rate: 1300},
	)

	deleted, err := repo.DeleteRatesBefore("2023-01-01")
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	points, err := repo.RateSeries(domain.CurrencyUSD, domain.CurrencyKRW, "2020-01-01", "2024-12-31")
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, "2024-01-02", points[0].Date)
}
