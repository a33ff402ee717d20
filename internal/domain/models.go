// Package domain provides core domain models and types.
package domain

// Currency represents a currency code
type Currency string

const (
	CurrencyKRW Currency = "KRW"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyJPY Currency = "JPY"
)

// Kind represents the type of financial instrument
type Kind string

const (
	// KindEquity represents individual stocks/shares
	KindEquity Kind = "EQUITY"
	// KindETF represents Exchange Traded Funds
	KindETF Kind = "ETF"
	// KindIndex represents market indices (non-tradeable)
	KindIndex Kind = "INDEX"
	// KindCurrency represents a currency tracked as an instrument
	KindCurrency Kind = "CURRENCY"
	// KindUnknown represents unknown type
	KindUnknown Kind = "UNKNOWN"
)

// Pair formats a currency pair the way cache keys and the rates API use it
func Pair(from, to Currency) string {
	return string(from) + "/" + string(to)
}
