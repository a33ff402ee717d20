package scorers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVolumeProfilePriceUnderTheMass(t *testing.T) {
	// Thirty bars traded around 100, then a drop to 50.
	var closes, volumes []float64
	for i := 0; i < 30; i++ {
		closes = append(closes, 100)
		volumes = append(volumes, 1000)
	}
	closes = append(closes, 50)
	volumes = append(volumes, 1000)

	points, position, ok := VolumeProfileScorer{Bins: 12}.Score(closes, volumes)
	require.True(t, ok)
	assert.Less(t, position, 0.30)
	assert.Equal(t, 25.0, points)
}

func TestVolumeProfilePriceAboveTheMass(t *testing.T) {
	var closes, volumes []float64
	for i := 0; i < 30; i++ {
		closes = append(closes, 50)
		volumes = append(volumes, 1000)
	}
	closes = append(closes, 100)
	volumes = append(volumes, 1000)

	points, position, ok := VolumeProfileScorer{Bins: 12}.Score(closes, volumes)
	require.True(t, ok)
	assert.Greater(t, position, 0.50)
	assert.Equal(t, 5.0, points)
}

func TestVolumeProfileMidRange(t *testing.T) {
	var closes, volumes []float64
	for i := 0; i < 10; i++ {
		closes = append(closes, 50, 100)
		volumes = append(volumes, 100, 100)
	}
	closes = append(closes, 75)
	volumes = append(volumes, 0)

	points, position, ok := VolumeProfileScorer{Bins: 12}.Score(closes, volumes)
	require.True(t, ok)
	assert.Equal(t, 0.5, position, "half the traded volume sits below the current price")
	assert.Equal(t, 15.0, points)
}

func TestVolumeProfileDegenerateSeries(t *testing.T) {
	_, _, ok := VolumeProfileScorer{}.Score([]float64{100, 100, 100}, []float64{1, 1, 1})
	assert.False(t, ok, "flat series has no price range")

	_, _, ok = VolumeProfileScorer{}.Score(nil, nil)
	assert.False(t, ok)

	_, _, ok = VolumeProfileScorer{}.Score([]float64{1, 2}, []float64{1})
	assert.False(t, ok)

	_, _, ok = VolumeProfileScorer{}.Score([]float64{50, 100}, []float64{0, 0})
	assert.False(t, ok, "zero traded volume carries no information")
}
