package simulation

import (
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"
)

// Aligner builds a MarketFrame from raw per-symbol price series and one
// exchange rate series. Dates are outer-joined; asset gaps stay NaN while
// the exchange rate column is forward- then backward-filled so every row
// can be converted to the home currency.
type Aligner struct {
	log zerolog.Logger
}

// NewAligner creates an Aligner.
func NewAligner(log zerolog.Logger) *Aligner {
	return &Aligner{
		log: log.With().Str("component", "aligner").Logger(),
	}
}

// Align joins all series onto the union of their dates.
//
// An empty exchange rate series fails with ErrFxUnavailable: a missing rate
// cannot be guessed without silently distorting every valuation after it.
// A price set with no instruments fails with ErrDataUnavailable.
func (a *Aligner) Align(prices PriceSet, fx TimeSeries) (*MarketFrame, error) {
	if len(prices) == 0 {
		return nil, fmt.Errorf("no instruments to align: %w", ErrDataUnavailable)
	}
	if fx.Len() == 0 {
		return nil, fmt.Errorf("aligning market frame: %w", ErrFxUnavailable)
	}

	dateSet := make(map[string]struct{})
	for _, series := range prices {
		for _, date := range series.Dates {
			dateSet[date] = struct{}{}
		}
	}
	for _, date := range fx.Dates {
		dateSet[date] = struct{}{}
	}

	dates := make([]string, 0, len(dateSet))
	for date := range dateSet {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	dateIndex := make(map[string]int, len(dates))
	for i, date := range dates {
		dateIndex[date] = i
	}

	symbols := sortedKeys(prices)
	columns := make(map[string][]float64, len(symbols))
	for _, symbol := range symbols {
		columns[symbol] = alignToDates(prices[symbol], dates, dateIndex)
	}

	fxColumn := alignToDates(fx, dates, dateIndex)
	filled := fillGaps(fxColumn)

	a.log.Debug().
		Int("dates", len(dates)).
		Int("symbols", len(symbols)).
		Int("fx_observed", fx.Len()).
		Int("fx_filled", filled).
		Msg("Aligned market frame")

	return &MarketFrame{
		Dates:   dates,
		Symbols: symbols,
		Prices:  columns,
		Fx:      fxColumn,
	}, nil
}

// alignToDates places a series onto the shared axis, NaN where unobserved.
func alignToDates(series TimeSeries, dates []string, dateIndex map[string]int) []float64 {
	column := make([]float64, len(dates))
	for i := range column {
		column[i] = math.NaN()
	}
	for i, date := range series.Dates {
		if idx, ok := dateIndex[date]; ok {
			column[idx] = series.Values[i]
		}
	}
	return column
}

// fillGaps replaces NaN in place: forward fill from the last observation,
// then backward fill for any leading gap. Returns how many cells were
// filled. A column with at least one observation comes out complete.
func fillGaps(values []float64) int {
	filled := 0

	var lastValid float64
	hasLastValid := false
	for i := 0; i < len(values); i++ {
		if !math.IsNaN(values[i]) {
			lastValid = values[i]
			hasLastValid = true
		} else if hasLastValid {
			values[i] = lastValid
			filled++
		}
	}

	var nextValid float64
	hasNextValid := false
	for i := len(values) - 1; i >= 0; i-- {
		if !math.IsNaN(values[i]) {
			nextValid = values[i]
			hasNextValid = true
		} else if hasNextValid {
			values[i] = nextValid
			filled++
		}
	}

	return filled
}
