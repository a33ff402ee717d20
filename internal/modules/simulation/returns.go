package simulation

import (
	"fmt"
	"math"
)

// LogReturns extracts daily log returns ln(V[t]/V[t-1]) from a value series.
// Pairs where either value is missing or not positive are skipped, so a NaN
// row drops both the return into it and the return out of it; the gap is
// never bridged. At least one valid return must survive, otherwise the
// result is ErrInsufficientHistory.
func LogReturns(values []float64) ([]float64, error) {
	returns := make([]float64, 0, len(values))
	for i := 1; i < len(values); i++ {
		prev, curr := values[i-1], values[i]
		if math.IsNaN(prev) || math.IsNaN(curr) || prev <= 0 || curr <= 0 {
			continue
		}
		returns = append(returns, math.Log(curr/prev))
	}
	if len(returns) == 0 {
		return nil, fmt.Errorf("need at least two consecutive valid portfolio values: %w", ErrInsufficientHistory)
	}
	return returns, nil
}
