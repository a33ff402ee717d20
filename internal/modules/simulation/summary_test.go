package simulation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pathsFromTerminals(start float64, terminals []float64) *SimulationPaths {
	values := [][]float64{
		make([]float64, len(terminals)),
		append([]float64(nil), terminals...),
	}
	for i := range values[0] {
		values[0][i] = start
	}
	return &SimulationPaths{
		StartValue: start,
		Horizon:    1,
		PathCount:  len(terminals),
		Seed:       1,
		Values:     values,
	}
}

func TestSummarizeKnownTerminals(t *testing.T) {
	paths := pathsFromTerminals(1000000, []float64{900000, 950000, 1000000, 1050000, 1100000})

	summary, err := Summarize(paths, 1000000)
	require.NoError(t, err)

	// Interpolated 5th percentile of five points: rank 0.2 between the two
	// lowest values.
	assert.InDelta(t, 910000, summary.VaR95, 1e-6)
	assert.InDelta(t, 90000, summary.LossAmount, 1e-6)
	assert.InDelta(t, 1000000, summary.MeanFinal, 1e-6)
	assert.Equal(t, 1000000.0, summary.CurrentValue)
	assert.Equal(t, 1, summary.Horizon)
	assert.Equal(t, 5, summary.PathCount)
}

func TestSummarizeLossCanBeNegative(t *testing.T) {
	// Every simulated outcome beats the current value: the "loss" is a
	// gain and must not be clamped to zero.
	paths := pathsFromTerminals(1000000, []float64{1100000, 1150000, 1200000})

	summary, err := Summarize(paths, 1000000)
	require.NoError(t, err)

	assert.Less(t, summary.LossAmount, 0.0)
	assert.InDelta(t, 1105000, summary.VaR95, 1e-6)
	assert.InDelta(t, -105000, summary.LossAmount, 1e-6)
}

func TestSummarizeValidation(t *testing.T) {
	paths := pathsFromTerminals(100, []float64{90, 110})

	_, err := Summarize(nil, 100)
	assert.ErrorIs(t, err, ErrInvalidParams)

	_, err = Summarize(paths, 0)
	assert.ErrorIs(t, err, ErrInvalidParams)

	_, err = Summarize(paths, math.NaN())
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestPercentile(t *testing.T) {
	values := []float64{900000, 950000, 1000000, 1050000, 1100000}

	t.Run("interpolates between ranks", func(t *testing.T) {
		assert.InDelta(t, 910000, Percentile(values, 5), 1e-6)
		assert.InDelta(t, 1000000, Percentile(values, 50), 1e-6)
		assert.InDelta(t, 1090000, Percentile(values, 95), 1e-6)
	})

	t.Run("edges clamp to extremes", func(t *testing.T) {
		assert.Equal(t, 900000.0, Percentile(values, 0))
		assert.Equal(t, 1100000.0, Percentile(values, 100))
		assert.Equal(t, 900000.0, Percentile(values, -3))
		assert.Equal(t, 1100000.0, Percentile(values, 250))
	})

	t.Run("does not modify the input", func(t *testing.T) {
		shuffled := []float64{1100000, 900000, 1000000}
		Percentile(shuffled, 50)
		assert.Equal(t, []float64{1100000, 900000, 1000000}, shuffled)
	})

	t.Run("single value", func(t *testing.T) {
		assert.Equal(t, 42.0, Percentile([]float64{42}, 5))
		assert.Equal(t, 42.0, Percentile([]float64{42}, 95))
	})

	t.Run("even count median", func(t *testing.T) {
		assert.InDelta(t, 15, Percentile([]float64{10, 20}, 50), 1e-12)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.True(t, math.IsNaN(Percentile(nil, 50)))
	})
}

func TestQuantileBands(t *testing.T) {
	paths := pathsFromTerminals(100, []float64{90, 95, 100, 105, 110})

	bands := QuantileBands(paths, []float64{5, 50, 95})
	require.Len(t, bands.Steps, 2)
	assert.Equal(t, []float64{5, 50, 95}, bands.Levels)

	// Row 0 is the same value on every path, so every band collapses to it.
	assert.Equal(t, []float64{100, 100, 100}, bands.Steps[0])

	assert.InDelta(t, 91, bands.Steps[1][0], 1e-9)
	assert.InDelta(t, 100, bands.Steps[1][1], 1e-9)
	assert.InDelta(t, 109, bands.Steps[1][2], 1e-9)
}
