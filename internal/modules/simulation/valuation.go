package simulation

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
)

// Valuator converts an aligned market frame into a portfolio value series in
// the home currency. Each position is scaled by its price ratio against the
// first aligned date and by the exchange rate ratio against the same date,
// so the series starts at exactly the invested amount.
type Valuator struct {
	log zerolog.Logger
}

// NewValuator creates a Valuator.
func NewValuator(log zerolog.Logger) *Valuator {
	return &Valuator{
		log: log.With().Str("component", "valuator").Logger(),
	}
}

// Valuate computes V[t] = sum over positions of
// amount * price[t]/price[0] * fx[t]/fx[0].
//
// Every allocated symbol must have a positive price on the first aligned
// date, and the exchange rate baseline must be positive; otherwise the
// whole window would be scaled against garbage, so it fails with
// ErrInvalidBaseline naming the offender. Rows where any allocated asset
// price is missing produce NaN rather than a fabricated value.
func (v *Valuator) Valuate(frame *MarketFrame, alloc Allocation) (*ValueSeries, error) {
	if len(alloc) == 0 {
		return nil, fmt.Errorf("allocation is empty: %w", ErrInvalidParams)
	}
	for symbol, amount := range alloc {
		if _, ok := frame.Prices[symbol]; !ok {
			return nil, fmt.Errorf("allocation references %s which is not in the frame: %w", symbol, ErrInvalidParams)
		}
		if !(amount > 0) {
			return nil, fmt.Errorf("allocation for %s must be positive, got %v: %w", symbol, amount, ErrInvalidParams)
		}
	}

	baseDate := frame.Dates[0]
	fxBase := frame.Fx[0]
	if math.IsNaN(fxBase) || fxBase <= 0 {
		return nil, fmt.Errorf("exchange rate on %s is %v: %w", baseDate, fxBase, ErrInvalidBaseline)
	}
	priceBase := make(map[string]float64, len(alloc))
	for symbol := range alloc {
		p0 := frame.Prices[symbol][0]
		if math.IsNaN(p0) || p0 <= 0 {
			return nil, fmt.Errorf("price for %s on %s is %v: %w", symbol, baseDate, p0, ErrInvalidBaseline)
		}
		priceBase[symbol] = p0
	}

	values := make([]float64, frame.Len())
	missing := 0
	for t := range frame.Dates {
		total := 0.0
		// Iterate in frame order so the summation order is deterministic.
		for _, symbol := range frame.Symbols {
			amount, held := alloc[symbol]
			if !held {
				continue
			}
			price := frame.Prices[symbol][t]
			if math.IsNaN(price) {
				total = math.NaN()
				break
			}
			total += amount * (price / priceBase[symbol]) * (frame.Fx[t] / fxBase)
		}
		if math.IsNaN(total) {
			missing++
		}
		values[t] = total
	}

	v.log.Debug().
		Str("base_date", baseDate).
		Int("rows", len(values)).
		Int("missing_rows", missing).
		Float64("initial_value", values[0]).
		Msg("Valued portfolio")

	return &ValueSeries{Dates: frame.Dates, Values: values}, nil
}
