package scorers

import (
	"gonum.org/v1/gonum/floats"
)

// VolumeProfileScorer scores where the current price sits inside the
// volume-by-price histogram. Prices under the bulk of traded volume score
// high: most past activity happened above them.
type VolumeProfileScorer struct {
	Bins int
}

// Score builds the histogram and reports the volume-weighted mass below the
// current price (position in [0, 1], current bin counted half). ok is false
// for empty, mismatched, or flat series.
func (s VolumeProfileScorer) Score(closes, volumes []float64) (points float64, position float64, ok bool) {
	bins := s.Bins
	if bins == 0 {
		bins = 12
	}
	if len(closes) == 0 || len(closes) != len(volumes) {
		return 0, 0, false
	}

	lo := floats.Min(closes)
	hi := floats.Max(closes)
	if hi <= lo {
		return 0, 0, false
	}

	width := (hi - lo) / float64(bins)
	hist := make([]float64, bins)
	for i, close := range closes {
		idx := int((close - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		hist[idx] += volumes[i]
	}

	total := floats.Sum(hist)
	if total <= 0 {
		return 0, 0, false
	}

	current := closes[len(closes)-1]
	currentBin := int((current - lo) / width)
	if currentBin >= bins {
		currentBin = bins - 1
	}
	position = (floats.Sum(hist[:currentBin]) + hist[currentBin]/2) / total

	switch {
	case position <= 0.30:
		points = 25
	case position <= 0.50:
		points = 15
	default:
		points = 5
	}
	return points, position, true
}
