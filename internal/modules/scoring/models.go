// Package scoring rates buy timing for catalog instruments from their
// recent daily history.
package scoring

import (
	"errors"
)

// minBars is the history floor below which no score is computed. Every
// component needs warm-up bars; 30 covers the longest one with room.
const minBars = 30

// ErrNotEnoughHistory reports a symbol with too few bars to score.
var ErrNotEnoughHistory = errors.New("not enough price history to score")

// Verdict labels for score bands.
const (
	VerdictStrongBuy    = "strong buy zone"
	VerdictAccumulation = "accumulation zone"
	VerdictNeutral      = "neutral"
	VerdictWait         = "wait"
)

// Result is one buy-timing score with its component breakdown.
type Result struct {
	Symbol     string             `json:"symbol"`
	Score      float64            `json:"score"`
	Verdict    string             `json:"verdict"`
	Components map[string]float64 `json:"components"`
	LastBar    string             `json:"last_bar"`
	ComputedAt int64              `json:"computed_at"`
}

// verdictFor maps a total score onto its band label.
func verdictFor(score float64) string {
	switch {
	case score >= 80:
		return VerdictStrongBuy
	case score >= 60:
		return VerdictAccumulation
	case score >= 40:
		return VerdictNeutral
	default:
		return VerdictWait
	}
}
