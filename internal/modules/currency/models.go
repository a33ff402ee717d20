// Package currency stores observed exchange rates and serves both the
// dashboard's spot-rate widget and the daily series the risk pipeline
// converts portfolio values with.
package currency

import (
	"github.com/aristath/compass/internal/domain"
)

// RatePoint is one observed daily exchange rate.
type RatePoint struct {
	Date string  `json:"date"`
	Rate float64 `json:"rate"`
}

// LatestRate is the spot-rate widget payload.
type LatestRate struct {
	Pair string          `json:"pair"`
	From domain.Currency `json:"from"`
	To   domain.Currency `json:"to"`
	Rate float64         `json:"rate"`
}
