package simulation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Correlations computes pairwise Pearson correlations over the frame's
// asset columns plus the exchange rate column. Each pair uses only rows
// where both columns are observed; a pair with fewer than two such rows, or
// with a constant column, yields NaN for that cell. The diagonal is 1.
func Correlations(frame *MarketFrame) (*CorrelationMatrix, error) {
	labels := make([]string, 0, len(frame.Symbols)+1)
	labels = append(labels, frame.Symbols...)
	labels = append(labels, FxLabel)
	if len(labels) < 2 {
		return nil, fmt.Errorf("correlation needs at least two columns, got %d: %w", len(labels), ErrInvalidParams)
	}

	columns := make([][]float64, 0, len(labels))
	for _, symbol := range frame.Symbols {
		columns = append(columns, frame.Prices[symbol])
	}
	columns = append(columns, frame.Fx)

	n := len(columns)
	values := make([][]float64, n)
	for i := range values {
		values[i] = make([]float64, n)
		values[i][i] = 1
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r := pairwiseCorrelation(columns[i], columns[j])
			values[i][j] = r
			values[j][i] = r
		}
	}

	return &CorrelationMatrix{Labels: labels, Values: values}, nil
}

// pairwiseCorrelation drops rows where either value is NaN before
// correlating. gonum returns NaN for constant input, which is kept.
func pairwiseCorrelation(x, y []float64) float64 {
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for k := range x {
		if math.IsNaN(x[k]) || math.IsNaN(y[k]) {
			continue
		}
		xs = append(xs, x[k])
		ys = append(ys, y[k])
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}
