package clientdata

import "time"

// TTL constants for different data types.
// These are added to time.Now() when storing to calculate expires_at.
const (
	// Daily data (refreshed once per trading day)
	TTLDailyPrices = 12 * time.Hour // EOD price history responses
	TTLRateSeries  = 12 * time.Hour // Dated FX rate series

	// Short-lived data (changes frequently)
	TTLExchangeRate = time.Hour // Latest currency exchange rates

	// Search results (upstream quota is the scarce resource, not freshness)
	TTLSearchResults = 6 * time.Hour
)
