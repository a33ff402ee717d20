package simulation

import (
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSeries(t *testing.T, dates []string, values []float64) TimeSeries {
	t.Helper()
	s, err := NewTimeSeries(dates, values)
	require.NoError(t, err)
	return s
}

func TestAlignOuterJoinsDates(t *testing.T) {
	aligner := NewAligner(zerolog.Nop())

	prices := PriceSet{
		"AAA": mustSeries(t, []string{"2024-01-02", "2024-01-04"}, []float64{100, 104}),
		"BBB": mustSeries(t, []string{"2024-01-03", "2024-01-04"}, []float64{50, 51}),
	}
	fx := mustSeries(t, []string{"2024-01-02", "2024-01-03", "2024-01-04"}, []float64{1300, 1310, 1320})

	frame, err := aligner.Align(prices, fx)
	require.NoError(t, err)

	assert.Equal(t, []string{"2024-01-02", "2024-01-03", "2024-01-04"}, frame.Dates)
	assert.Equal(t, []string{"AAA", "BBB"}, frame.Symbols)

	// AAA did not trade on the 3rd: the gap stays missing.
	assert.Equal(t, 100.0, frame.Prices["AAA"][0])
	assert.True(t, math.IsNaN(frame.Prices["AAA"][1]))
	assert.Equal(t, 104.0, frame.Prices["AAA"][2])

	// BBB has no observation on the 2nd.
	assert.True(t, math.IsNaN(frame.Prices["BBB"][0]))
	assert.Equal(t, 50.0, frame.Prices["BBB"][1])
	assert.Equal(t, 51.0, frame.Prices["BBB"][2])

	assert.Equal(t, []float64{1300, 1310, 1320}, frame.Fx)
}

func TestAlignFillsExchangeRateGaps(t *testing.T) {
	aligner := NewAligner(zerolog.Nop())

	prices := PriceSet{
		"AAA": mustSeries(t,
			[]string{"2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05"},
			[]float64{100, 101, 102, 103}),
	}
	// Rates observed only in the middle of the window: the leading gap is
	// backfilled from the first observation, the trailing gap carried
	// forward from the last.
	fx := mustSeries(t, []string{"2024-01-03", "2024-01-04"}, []float64{1310, 1320})

	frame, err := aligner.Align(prices, fx)
	require.NoError(t, err)

	assert.Equal(t, []float64{1310, 1310, 1320, 1320}, frame.Fx)
	for i, v := range frame.Fx {
		assert.False(t, math.IsNaN(v), "fx row %d should be filled", i)
	}
}

func TestAlignForwardFillWinsOverBackfill(t *testing.T) {
	aligner := NewAligner(zerolog.Nop())

	prices := PriceSet{
		"AAA": mustSeries(t,
			[]string{"2024-01-02", "2024-01-03", "2024-01-04"},
			[]float64{100, 101, 102}),
	}
	fx := mustSeries(t, []string{"2024-01-02", "2024-01-04"}, []float64{1300, 1400})

	frame, err := aligner.Align(prices, fx)
	require.NoError(t, err)

	// The interior gap takes the earlier observation, not the later one.
	assert.Equal(t, []float64{1300, 1300, 1400}, frame.Fx)
}

func TestAlignEmptyExchangeRates(t *testing.T) {
	aligner := NewAligner(zerolog.Nop())

	prices := PriceSet{
		"AAA": mustSeries(t, []string{"2024-01-02"}, []float64{100}),
	}

	_, err := aligner.Align(prices, TimeSeries{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFxUnavailable)
	assert.ErrorIs(t, err, ErrDataUnavailable)
}

func TestAlignNoInstruments(t *testing.T) {
	aligner := NewAligner(zerolog.Nop())

	_, err := aligner.Align(PriceSet{}, mustSeries(t, []string{"2024-01-02"}, []float64{1300}))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDataUnavailable)
	assert.NotErrorIs(t, err, ErrFxUnavailable)
}

func TestFillGaps(t *testing.T) {
	nan := math.NaN()

	t.Run("interior and edges", func(t *testing.T) {
		values := []float64{nan, 2, nan, nan, 5, nan}
		filled := fillGaps(values)
		assert.Equal(t, []float64{2, 2, 2, 2, 5, 5}, values)
		assert.Equal(t, 4, filled)
	})

	t.Run("no observations", func(t *testing.T) {
		values := []float64{nan, nan}
		filled := fillGaps(values)
		assert.Equal(t, 0, filled)
		assert.True(t, math.IsNaN(values[0]))
		assert.True(t, math.IsNaN(values[1]))
	})

	t.Run("complete column untouched", func(t *testing.T) {
		values := []float64{1, 2, 3}
		filled := fillGaps(values)
		assert.Equal(t, 0, filled)
		assert.Equal(t, []float64{1, 2, 3}, values)
	})
}
