package di

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/compass/internal/domain"
	"github.com/aristath/compass/internal/modules/universe"
	"github.com/aristath/compass/internal/scheduler"
)

func wireTestContainer(t *testing.T) *Container {
	t.Helper()
	container, _, err := Wire(testConfig(t), scheduler.New(zerolog.Nop()), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(container.Close)
	return container
}

func TestMarketDataAdapter(t *testing.T) {
	container := wireTestContainer(t)

	require.NoError(t, container.InstrumentRepo.Add(universe.Instrument{
		Symbol:   "005930.KRX",
		Name:     "Samsung Electronics",
		Currency: "KRW",
		Kind:     domain.KindEquity,
	}))
	_, err := container.PriceRepo.UpsertPrices("005930.KRX", []universe.DailyPrice{
		{Date: "2024-01-02", Close: 71000},
		{Date: "2024-01-03", Close: 71500},
	})
	require.NoError(t, err)

	adapter := &marketDataAdapter{
		instruments: container.InstrumentRepo,
		prices:      container.PriceRepo,
	}

	cur, ok, err := adapter.InstrumentCurrency("005930.KRX")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, domain.Currency("KRW"), cur)

	_, ok, err = adapter.InstrumentCurrency("UNKNOWN")
	require.NoError(t, err)
	assert.False(t, ok)

	series, err := adapter.PriceSeries("005930.KRX", "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	require.Equal(t, 2, series.Len())
	assert.Equal(t, []float64{71000, 71500}, series.Values)
}

func TestBarSourceAdapter(t *testing.T) {
	container := wireTestContainer(t)

	vol := int64(1000)
	_, err := container.PriceRepo.UpsertPrices("AAPL.US", []universe.DailyPrice{
		{Date: "2024-01-02", Close: 185, Volume: &vol},
		{Date: "2024-01-03", Close: 186},
	})
	require.NoError(t, err)

	adapter := &barSourceAdapter{prices: container.PriceRepo}
	dates, closes, volumes, err := adapter.RecentBars("AAPL.US", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-02", "2024-01-03"}, dates)
	assert.Equal(t, []float64{185, 186}, closes)
	assert.Equal(t, []float64{1000, 0}, volumes, "missing volume reads as zero")
}
