// Package simulation implements the portfolio risk lab: it aligns per-symbol
// price history and exchange rates onto a shared date axis, values the
// portfolio in the home currency, extracts daily log returns, and runs a
// bootstrap Monte Carlo projection summarized as mean outcome, 95% VaR and
// potential loss.
package simulation

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"
)

// DateLayout is the wire format for all dates handled by the engine.
const DateLayout = "2006-01-02"

// FxLabel names the exchange rate column in correlation output.
const FxLabel = "FX"

// TimeSeries is an observed daily series: one value per date, dates strictly
// ascending. It carries raw observations; gaps simply have no entry.
type TimeSeries struct {
	Dates  []string
	Values []float64
}

// NewTimeSeries validates and builds a TimeSeries. Dates must parse as
// YYYY-MM-DD and be strictly ascending, and lengths must match. An empty
// series is valid.
func NewTimeSeries(dates []string, values []float64) (TimeSeries, error) {
	if len(dates) != len(values) {
		return TimeSeries{}, fmt.Errorf("series has %d dates but %d values: %w", len(dates), len(values), ErrInvalidParams)
	}
	prev := ""
	for i, d := range dates {
		if _, err := time.Parse(DateLayout, d); err != nil {
			return TimeSeries{}, fmt.Errorf("invalid date %q at index %d: %w", d, i, ErrInvalidParams)
		}
		// YYYY-MM-DD sorts lexicographically in date order.
		if i > 0 && d <= prev {
			return TimeSeries{}, fmt.Errorf("dates not strictly ascending at index %d (%q after %q): %w", i, d, prev, ErrInvalidParams)
		}
		prev = d
	}
	return TimeSeries{Dates: dates, Values: values}, nil
}

// Len returns the number of observations.
func (s TimeSeries) Len() int {
	return len(s.Dates)
}

// PriceSet holds one price series per instrument symbol.
type PriceSet map[string]TimeSeries

// MarketFrame is the aligned view of a PriceSet plus one exchange rate
// series on the union of their dates. Asset columns keep NaN where an
// instrument did not trade; the Fx column is gap-filled and complete.
type MarketFrame struct {
	Dates   []string
	Symbols []string             // sorted, fixes column order
	Prices  map[string][]float64 // per symbol, len(Dates), NaN = missing
	Fx      []float64            // len(Dates), no NaN
}

// Len returns the number of rows on the shared date axis.
func (f *MarketFrame) Len() int {
	return len(f.Dates)
}

// Allocation maps instrument symbols to invested amounts in the home
// currency. Amounts are the capital assigned at the start of the window.
type Allocation map[string]float64

// Total returns the summed invested amount.
func (a Allocation) Total() float64 {
	total := 0.0
	for _, amount := range a {
		total += amount
	}
	return total
}

// EqualSplit divides an investment evenly across symbols.
func EqualSplit(symbols []string, investment float64) Allocation {
	alloc := make(Allocation, len(symbols))
	if len(symbols) == 0 {
		return alloc
	}
	share := investment / float64(len(symbols))
	for _, symbol := range symbols {
		alloc[symbol] = share
	}
	return alloc
}

// ValueSeries is the portfolio value in the home currency on the aligned
// date axis. Values may be NaN on dates where an asset price was missing.
type ValueSeries struct {
	Dates  []string  `json:"dates"`
	Values []float64 `json:"values"`
}

// Last returns the most recent non-NaN value, or false when every value is
// missing.
func (v *ValueSeries) Last() (float64, bool) {
	for i := len(v.Values) - 1; i >= 0; i-- {
		if !math.IsNaN(v.Values[i]) {
			return v.Values[i], true
		}
	}
	return 0, false
}

// MarshalJSON renders NaN values as null so the series survives JSON
// encoding.
func (v *ValueSeries) MarshalJSON() ([]byte, error) {
	values := make([]*float64, len(v.Values))
	for i := range v.Values {
		if !math.IsNaN(v.Values[i]) {
			values[i] = &v.Values[i]
		}
	}
	return json.Marshal(struct {
		Dates  []string   `json:"dates"`
		Values []*float64 `json:"values"`
	}{Dates: v.Dates, Values: values})
}

// SimulationPaths holds the projected portfolio values: row t is simulation
// step t across all paths, row 0 is the current value on every path.
type SimulationPaths struct {
	StartValue float64
	Horizon    int
	PathCount  int
	Seed       int64 // seed actually used, echoed for reproducibility
	Values     [][]float64
}

// Terminal returns a copy of the final row, the simulated end values.
func (p *SimulationPaths) Terminal() []float64 {
	last := p.Values[len(p.Values)-1]
	out := make([]float64, len(last))
	copy(out, last)
	return out
}

// RiskSummary condenses simulated terminal values into the dashboard
// headline numbers. LossAmount may be negative when even the pessimistic
// outcome sits above the current value; it is never clamped.
type RiskSummary struct {
	CurrentValue float64 `json:"current_value"`
	MeanFinal    float64 `json:"mean_final"`
	VaR95        float64 `json:"var_95"`
	LossAmount   float64 `json:"loss_amount"`
	Horizon      int     `json:"horizon_days"`
	PathCount    int     `json:"path_count"`
}

// CorrelationMatrix is a symmetric matrix of pairwise Pearson correlations
// over the aligned asset columns plus the FX column. Cells with fewer than
// two complete observation pairs are NaN and serialize as null.
type CorrelationMatrix struct {
	Labels []string
	Values [][]float64
}

// MarshalJSON renders the matrix with NaN cells as null.
func (m *CorrelationMatrix) MarshalJSON() ([]byte, error) {
	rows := make([][]*float64, len(m.Values))
	for i, row := range m.Values {
		cells := make([]*float64, len(row))
		for j := range row {
			if !math.IsNaN(row[j]) {
				cells[j] = &m.Values[i][j]
			}
		}
		rows[i] = cells
	}
	return json.Marshal(struct {
		Labels []string     `json:"labels"`
		Values [][]*float64 `json:"values"`
	}{Labels: m.Labels, Values: rows})
}

func sortedKeys(prices PriceSet) []string {
	keys := make([]string, 0, len(prices))
	for symbol := range prices {
		keys = append(keys, symbol)
	}
	sort.Strings(keys)
	return keys
}
