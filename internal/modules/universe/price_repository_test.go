package universe

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func i64(v int64) *int64 {
	return &v
}

func samplePrices() []DailyPrice {
	return []DailyPrice{
		{Date: "2024-01-02", Open: 99, High: 101, Low: 98, Close: 100, Volume: i64(1000)},
		{Date: "2024-01-03", Open: 100, High: 103, Low: 100, Close: 102, Volume: i64(1200)},
		{Date: "2024-01-04", Open: 102, High: 105, Low: 101, Close: 104, Volume: i64(900)},
	}
}

func TestUpsertAndReadPriceSeries(t *testing.T) {
	repo := NewPriceRepository(setupTestDB(t), zerolog.Nop())

	stored, err := repo.UpsertPrices("AAPL.US", samplePrices())
	require.NoError(t, err)
	assert.Equal(t, 3, stored)

	prices, err := repo.PriceSeries("AAPL.US", "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	require.Len(t, prices, 3)

	assert.Equal(t, "2024-01-02", prices[0].Date)
	assert.Equal(t, "2024-01-04", prices[2].Date)
	assert.Equal(t, 100.0, prices[0].Close)
	require.NotNil(t, prices[0].Volume)
	assert.Equal(t, int64(1000), *prices[0].Volume)
	assert.Equal(t, 100.0, prices[0].AdjustedClose, "missing adjusted close falls back to close")
}

func TestUpsertReplacesSameDate(t *testing.T) {
	repo := NewPriceRepository(setupTestDB(t), zerolog.Nop())

	_, err := repo.UpsertPrices("AAPL.US", samplePrices())
	require.NoError(t, err)

	_, err = repo.UpsertPrices("AAPL.US", []DailyPrice{
		{Date: "2024-01-03", Open: 100, High: 104, Low: 100, Close: 103.5},
	})
	require.NoError(t, err)

	prices, err := repo.PriceSeries("AAPL.US", "2024-01-03", "2024-01-03")
	require.NoError(t, err)
	require.Len(t, prices, 1)
	assert.Equal(t, 103.5, prices[0].Close)
}

func TestPriceSeriesWindowIsInclusive(t *testing.T) {
	repo := NewPriceRepository(setupTestDB(t), zerolog.Nop())

	_, err := repo.UpsertPrices("AAPL.US", samplePrices())
	require.NoError(t, err)

	prices, err := repo.PriceSeries("AAPL.US", "2024-01-03", "2024-01-04")
	require.NoError(t, err)
	require.Len(t, prices, 2)
	assert.Equal(t, "2024-01-03", prices[0].Date)
	assert.Equal(t, "2024-01-04", prices[1].Date)
}

func TestPriceSeriesSeparatesSymbols(t *testing.T) {
	repo := NewPriceRepository(setupTestDB(t), zerolog.Nop())

	_, err := repo.UpsertPrices("AAPL.US", samplePrices())
	require.NoError(t, err)
	_, err = repo.UpsertPrices("MSFT.US", samplePrices()[:1])
	require.NoError(t, err)

	prices, err := repo.PriceSeries("MSFT.US", "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	assert.Len(t, prices, 1)
}

func TestRecentPricesReturnsChronologicalTail(t *testing.T) {
	repo := NewPriceRepository(setupTestDB(t), zerolog.Nop())

	_, err := repo.UpsertPrices("AAPL.US", samplePrices())
	require.NoError(t, err)

	prices, err := repo.RecentPrices("AAPL.US", 2)
	require.NoError(t, err)
	require.Len(t, prices, 2)
	assert.Equal(t, "2024-01-03", prices[0].Date)
	assert.Equal(t, "2024-01-04", prices[1].Date)
}

func TestLatestDate(t *testing.T) {
	repo := NewPriceRepository(setupTestDB(t), zerolog.Nop())

	latest, err := repo.LatestDate("AAPL.US")
	require.NoError(t, err)
	assert.Nil(t, latest)

	_, err = repo.UpsertPrices("AAPL.US", samplePrices())
	require.NoError(t, err)

	latest, err = repo.LatestDate("AAPL.US")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "2024-01-04", *latest)
}

func TestLatestClose(t *testing.T) {
	repo := NewPriceRepository(setupTestDB(t), zerolog.Nop())

	price, err := repo.LatestClose("AAPL.US")
	require.NoError(t, err)
	assert.Nil(t, price)

	_, err = repo.UpsertPrices("AAPL.US", samplePrices())
	require.NoError(t, err)

	price, err = repo.LatestClose("AAPL.US")
	require.NoError(t, err)
	require.NotNil(t, price)
	assert.Equal(t, "2024-01-04", price.Date)
	assert.Equal(t, 104.0, price.Close)
}

func TestDeleteSymbol(t *testing.T) {
	repo := NewPriceRepository(setupTestDB(t), zerolog.Nop())

	_, err := repo.UpsertPrices("AAPL.US", samplePrices())
	require.NoError(t, err)

	deleted, err := repo.DeleteSymbol("AAPL.US")
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	prices, err := repo.PriceSeries("AAPL.US", "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	assert.Empty(t, prices)
}

func TestUpsertRejectsMalformedDate(t *testing.T) {
	repo := NewPriceRepository(setupTestDB(t), zerolog.Nop())

	_, err := repo.UpsertPrices("AAPL.US", []DailyPrice{{Date: "bad", Close: 100}})
	assert.Error(t, err)
}
