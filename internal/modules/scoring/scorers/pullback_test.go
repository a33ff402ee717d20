package scorers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPullbackStreakOnly(t *testing.T) {
	closes := []float64{100, 100, 100, 100, 99.5, 99, 98.5}

	points, streak, drop := PullbackScorer{}.Score(closes)
	assert.Equal(t, 3, streak)
	assert.Less(t, drop, 0.04)
	assert.Equal(t, 20.0, points)
}

func TestPullbackDropOnly(t *testing.T) {
	closes := []float64{100, 95, 96, 95.5, 96.2, 95.9}

	points, streak, drop := PullbackScorer{}.Score(closes)
	assert.Equal(t, 1, streak)
	assert.GreaterOrEqual(t, drop, 0.04)
	assert.Equal(t, 15.0, points)
}

func TestPullbackBoth(t *testing.T) {
	closes := []float64{100, 100, 99, 97, 95, 93}

	points, streak, drop := PullbackScorer{}.Score(closes)
	assert.Equal(t, 4, streak)
	assert.InDelta(t, 0.07, drop, 1e-9)
	assert.Equal(t, 25.0, points)
}

func TestPullbackNone(t *testing.T) {
	closes := []float64{100, 101, 102, 103, 104, 105}

	points, streak, drop := PullbackScorer{}.Score(closes)
	assert.Zero(t, streak)
	assert.Negative(t, drop)
	assert.Zero(t, points)
}

func TestPullbackEqualCloseBreaksStreak(t *testing.T) {
	_, streak, _ := PullbackScorer{}.Score([]float64{100, 99, 99})
	assert.Zero(t, streak)
}

func TestPullbackShortSeriesSkipsDrop(t *testing.T) {
	points, streak, drop := PullbackScorer{}.Score([]float64{100, 99, 98})
	assert.Equal(t, 2, streak)
	assert.Zero(t, drop)
	assert.Zero(t, points)
}
