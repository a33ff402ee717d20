package universe

import (
	"time"

	"github.com/rs/zerolog"
)

const (
	// Change thresholds against the previous kept bar.
	maxPriceChangePercent = 1000.0 // >1000% day-over-day is a vendor glitch
	minPriceChangePercent = -90.0  // <-90% day-over-day is a vendor glitch
)

// DropLog records one rejected bar and why.
type DropLog struct {
	Date   string `json:"date"`
	Reason string `json:"reason"`
}

// PriceValidator screens vendor bars before storage. Bad bars are dropped,
// never repaired: a dropped date becomes a gap, and gaps stay visible to
// the risk pipeline instead of turning into invented prices.
type PriceValidator struct {
	log zerolog.Logger
}

// NewPriceValidator creates a new price validator.
func NewPriceValidator(log zerolog.Logger) *PriceValidator {
	return &PriceValidator{
		log: log.With().Str("component", "price_validator").Logger(),
	}
}

// Sanitize returns the bars that pass validation, oldest first, plus a log
// of what was dropped. Input is expected in ascending date order; out of
// order and duplicate dates are dropped as well.
func (v *PriceValidator) Sanitize(symbol string, prices []DailyPrice) ([]DailyPrice, []DropLog) {
	kept := make([]DailyPrice, 0, len(prices))
	var drops []DropLog

	lastDate := ""
	lastClose := 0.0
	for _, price := range prices {
		if reason := v.checkBar(price, lastDate, lastClose); reason != "" {
			drops = append(drops, DropLog{Date: price.Date, Reason: reason})
			v.log.Warn().
				Str("symbol", symbol).
				Str("date", price.Date).
				Str("reason", reason).
				Float64("close", price.Close).
				Msg("Dropped abnormal price bar")
			continue
		}
		kept = append(kept, price)
		lastDate = price.Date
		lastClose = price.Close
	}

	if len(drops) > 0 {
		v.log.Info().
			Str("symbol", symbol).
			Int("kept", len(kept)).
			Int("dropped", len(drops)).
			Msg("Sanitized price batch")
	}
	return kept, drops
}

func (v *PriceValidator) checkBar(price DailyPrice, lastDate string, lastClose float64) string {
	if _, err := time.Parse("2006-01-02", price.Date); err != nil {
		return "malformed_date"
	}
	if lastDate != "" && price.Date <= lastDate {
		return "out_of_order"
	}
	if price.Close <= 0 {
		return "non_positive_close"
	}

	// OHLC consistency, only when the vendor filled all four fields.
	if price.Open > 0 && price.High > 0 && price.Low > 0 {
		if price.High < price.Low {
			return "high_below_low"
		}
		if price.High < price.Open || price.High < price.Close {
			return "high_below_body"
		}
		if price.Low > price.Open || price.Low > price.Close {
			return "low_above_body"
		}
	}

	if lastClose > 0 {
		changePercent := ((price.Close - lastClose) / lastClose) * 100.0
		if changePercent > maxPriceChangePercent {
			return "spike_detected"
		}
		if changePercent < minPriceChangePercent {
			return "crash_detected"
		}
	}
	return ""
}
