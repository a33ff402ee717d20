// Package universe manages the instrument catalog and its daily price
// history: which symbols the dashboard tracks, their metadata, and the
// sanitized OHLC series every other module reads.
package universe

import (
	"github.com/aristath/compass/internal/domain"
)

// Instrument is one tracked symbol in the catalog.
type Instrument struct {
	Symbol    string          `json:"symbol"`
	Name      string          `json:"name"`
	Currency  domain.Currency `json:"currency"`
	Kind      domain.Kind     `json:"kind"`
	CreatedAt int64           `json:"-"`
}

// DailyPrice is one OHLC bar. Volume is a pointer because some vendors omit
// it for indices.
type DailyPrice struct {
	Date          string  `json:"date"`
	Open          float64 `json:"open"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Close         float64 `json:"close"`
	AdjustedClose float64 `json:"adjusted_close,omitempty"`
	Volume        *int64  `json:"volume,omitempty"`
}
