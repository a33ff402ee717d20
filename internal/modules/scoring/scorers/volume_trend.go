package scorers

import (
	"math"

	"github.com/markcheno/go-talib"
)

// VolumeTrendScorer awards points when current volume runs below its moving
// average, reading fading activity on the way down as seller exhaustion.
type VolumeTrendScorer struct {
	Period int
}

// Score reports the current volume as a ratio of its SMA. ok is false when
// the series is too short or the average is degenerate.
func (s VolumeTrendScorer) Score(volumes []float64) (points float64, ratio float64, ok bool) {
	period := s.Period
	if period == 0 {
		period = 20
	}
	if len(volumes) < period {
		return 0, 0, false
	}

	sma := talib.Sma(volumes, period)
	average := sma[len(sma)-1]
	if math.IsNaN(average) || average <= 0 {
		return 0, 0, false
	}

	ratio = volumes[len(volumes)-1] / average
	if ratio < 1 {
		points = 15
	}
	return points, ratio, true
}
