package simulation

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Summarize condenses simulated paths into the dashboard numbers: mean
// terminal value, the 5th percentile of terminal values (95% VaR), and the
// potential loss against the current value. The loss is reported as-is and
// may be negative when the 5th percentile still beats the current value.
func Summarize(paths *SimulationPaths, currentValue float64) (*RiskSummary, error) {
	if paths == nil || len(paths.Values) == 0 || paths.PathCount < 1 {
		return nil, fmt.Errorf("no simulated paths to summarize: %w", ErrInvalidParams)
	}
	if math.IsNaN(currentValue) || currentValue <= 0 {
		return nil, fmt.Errorf("current value must be positive, got %v: %w", currentValue, ErrInvalidParams)
	}

	terminal := paths.Terminal()
	var95 := Percentile(terminal, 5)
	return &RiskSummary{
		CurrentValue: currentValue,
		MeanFinal:    stat.Mean(terminal, nil),
		VaR95:        var95,
		LossAmount:   currentValue - var95,
		Horizon:      paths.Horizon,
		PathCount:    paths.PathCount,
	}, nil
}

// Percentile returns the p-th percentile (0..100) of values using linear
// interpolation between closest ranks: with n sorted values the rank is
// h = (n-1) * p/100 and the result interpolates between floor(h) and
// ceil(h). Five values {900, 950, 1000, 1050, 1100} therefore give 910 at
// p=5. The input is not modified. Empty input yields NaN.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	h := float64(len(sorted)-1) * p / 100
	lower := int(math.Floor(h))
	if lower >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := h - float64(lower)
	return sorted[lower] + frac*(sorted[lower+1]-sorted[lower])
}

// PathQuantiles are per-step percentile bands across paths, the data behind
// the projection fan chart.
type PathQuantiles struct {
	Levels []float64   `json:"levels"`
	Steps  [][]float64 `json:"steps"` // one row per step, one value per level
}

// QuantileBands computes the given percentile levels at every simulation
// step, row 0 included.
func QuantileBands(paths *SimulationPaths, levels []float64) *PathQuantiles {
	steps := make([][]float64, len(paths.Values))
	for t, step := range paths.Values {
		bands := make([]float64, len(levels))
		for i, level := range levels {
			bands[i] = Percentile(step, level)
		}
		steps[t] = bands
	}
	return &PathQuantiles{Levels: levels, Steps: steps}
}
