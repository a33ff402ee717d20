// Package charts prepares dashboard chart data and renders PNG charts.
package charts

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/aristath/compass/internal/modules/universe"
)

// histogramBins is the bin count for terminal-value distributions. Matches
// the dashboard's distribution plot.
const histogramBins = 30

// ChartDataPoint represents a single point on a chart
type ChartDataPoint struct {
	Time  string  `json:"time"`  // YYYY-MM-DD format
	Value float64 `json:"value"` // Close price
}

// HistogramBin is one bar of a distribution plot. Label is the bin's lower
// edge, formatted for the x axis.
type HistogramBin struct {
	Label string  `json:"label"`
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count float64 `json:"count"`
}

// Service provides chart data operations
type Service struct {
	prices *universe.PriceRepository
	log    zerolog.Logger
}

// NewService creates a new charts service
func NewService(prices *universe.PriceRepository, log zerolog.Logger) *Service {
	return &Service{
		prices: prices,
		log:    log.With().Str("service", "charts").Logger(),
	}
}

// PriceLine returns daily closes for a symbol over the trailing window,
// oldest first.
func (s *Service) PriceLine(symbol string, days int) ([]ChartDataPoint, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol cannot be empty")
	}
	if days <= 0 {
		days = 365
	}

	to := time.Now().UTC().Format("2006-01-02")
	from := time.Now().UTC().AddDate(0, 0, -days).Format("2006-01-02")

	prices, err := s.prices.PriceSeries(symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load prices for %s: %w", symbol, err)
	}

	points := make([]ChartDataPoint, 0, len(prices))
	for _, p := range prices {
		points = append(points, ChartDataPoint{Time: p.Date, Value: p.Close})
	}
	return points, nil
}

// Histogram bins a simulated terminal-value distribution for the
// distribution plot. Needs at least two values to form a range.
func (s *Service) Histogram(values []float64) ([]HistogramBin, error) {
	if len(values) < 2 {
		return nil, fmt.Errorf("need at least 2 values to build a histogram, got %d", len(values))
	}

	min := floats.Min(values)
	max := floats.Max(values)
	if min == max {
		// Degenerate distribution: one bar holding everything.
		return []HistogramBin{{
			Label: formatBinLabel(min),
			Low:   min,
			High:  max,
			Count: float64(len(values)),
		}}, nil
	}

	dividers := make([]float64, histogramBins+1)
	floats.Span(dividers, min, max)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	counts := stat.Histogram(nil, dividers, sorted, nil)

	bins := make([]HistogramBin, len(counts))
	for i, count := range counts {
		bins[i] = HistogramBin{
			Label: formatBinLabel(dividers[i]),
			Low:   dividers[i],
			High:  dividers[i+1],
			Count: count,
		}
	}
	return bins, nil
}

// formatBinLabel compacts a bin edge for axis labels.
func formatBinLabel(v float64) string {
	switch {
	case v >= 1e9 || v <= -1e9:
		return fmt.Sprintf("%.1fB", v/1e9)
	case v >= 1e6 || v <= -1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case v >= 1e3 || v <= -1e3:
		return fmt.Sprintf("%.0fK", v/1e3)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}
