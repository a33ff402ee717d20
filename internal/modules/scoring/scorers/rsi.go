// Package scorers provides the buy-timing score components.
package scorers

import (
	"math"

	"github.com/markcheno/go-talib"
)

// RSIScorer awards points as the RSI falls into oversold bands.
type RSIScorer struct {
	Period int
}

// Score computes RSI over the closes and maps the latest value onto the
// point bands. ok is false when the series is too short for the period.
func (s RSIScorer) Score(closes []float64) (points float64, rsi float64, ok bool) {
	period := s.Period
	if period == 0 {
		period = 14
	}
	if len(closes) < period+1 {
		return 0, 0, false
	}

	values := talib.Rsi(closes, period)
	rsi = values[len(values)-1]
	if math.IsNaN(rsi) {
		return 0, 0, false
	}

	switch {
	case rsi <= 30:
		points = 35
	case rsi <= 40:
		points = 25
	case rsi <= 50:
		points = 12
	case rsi >= 70:
		points = 0
	default:
		points = 5
	}
	return points, rsi, true
}
