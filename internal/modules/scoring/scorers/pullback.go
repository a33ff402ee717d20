package scorers

// PullbackScorer rewards short-term weakness: a run of down closes, a
// meaningful five-day drop, or both.
type PullbackScorer struct{}

// Score reports the trailing down-close streak and the five-day drop as a
// fraction of the earlier close.
func (PullbackScorer) Score(closes []float64) (points float64, downStreak int, fiveDayDrop float64) {
	for i := len(closes) - 1; i > 0; i-- {
		if closes[i] >= closes[i-1] {
			break
		}
		downStreak++
	}

	if len(closes) >= 6 {
		earlier := closes[len(closes)-6]
		if earlier > 0 {
			fiveDayDrop = (earlier - closes[len(closes)-1]) / earlier
		}
	}

	switch {
	case downStreak >= 3 && fiveDayDrop >= 0.04:
		points = 25
	case downStreak >= 3:
		points = 20
	case fiveDayDrop >= 0.04:
		points = 15
	}
	return points, downStreak, fiveDayDrop
}
