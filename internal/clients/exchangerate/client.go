// Package exchangerate provides currency exchange rate fetching and caching:
// spot rates from exchangerate-api.com and daily historical series from
// frankfurter.app.
package exchangerate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/compass/internal/clientdata"
	"github.com/aristath/compass/internal/domain"
)

// Client for exchange rate APIs
type Client struct {
	latestURL string
	seriesURL string
	client    *http.Client
	log       zerolog.Logger
	cacheRepo *clientdata.Repository
}

// NewClient creates a new exchange rate client.
// cacheRepo is optional - if nil, caching is disabled
func NewClient(cacheRepo *clientdata.Repository, log zerolog.Logger) *Client {
	return &Client{
		latestURL: "https://api.exchangerate-api.com/v4/latest",
		seriesURL: "https://api.frankfurter.app",
		client:    &http.Client{Timeout: 10 * time.Second},
		log:       log.With().Str("client", "exchangerate").Logger(),
		cacheRepo: cacheRepo,
	}
}

// RatePoint is one observed daily rate.
type RatePoint struct {
	Date string  `json:"date"`
	Rate float64 `json:"rate"`
}

// cachedExchangeRate is the structure stored in the cache
type cachedExchangeRate struct {
	Rate float64 `json:"rate"`
}

// GetRate fetches the current exchange rate with cache.
// If the API fails, returns stale cached data if available (stale data > no data).
func (c *Client) GetRate(from, to domain.Currency) (float64, error) {
	if from == to {
		return 1.0, nil
	}

	cacheKey := domain.Pair(from, to)

	if c.cacheRepo != nil {
		data, err := c.cacheRepo.GetIfFresh("exchangerate", cacheKey)
		if err == nil && data != nil {
			var cached cachedExchangeRate
			if err := json.Unmarshal(data, &cached); err == nil {
				c.log.Debug().
					Str("pair", cacheKey).
					Float64("rate", cached.Rate).
					Msg("Cache hit")
				return cached.Rate, nil
			}
		}
	}

	endpoint := fmt.Sprintf("%s/%s", c.latestURL, from)
	c.log.Debug().Str("url", endpoint).Msg("Fetching rates")

	resp, err := c.client.Get(endpoint)
	if err != nil {
		if staleRate, ok := c.staleRate(cacheKey); ok {
			c.log.Warn().Err(err).Str("pair", cacheKey).Float64("rate", staleRate).
				Msg("API failed, using stale cached rate")
			return staleRate, nil
		}
		return 0, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if staleRate, ok := c.staleRate(cacheKey); ok {
			c.log.Warn().Int("status", resp.StatusCode).Str("pair", cacheKey).Float64("rate", staleRate).
				Msg("API error, using stale cached rate")
			return staleRate, nil
		}
		return 0, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var result struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		if staleRate, ok := c.staleRate(cacheKey); ok {
			c.log.Warn().Err(err).Str("pair", cacheKey).Float64("rate", staleRate).
				Msg("Failed to parse API response, using stale cached rate")
			return staleRate, nil
		}
		return 0, fmt.Errorf("failed to parse response: %w", err)
	}

	rate, exists := result.Rates[string(to)]
	if !exists {
		if staleRate, ok := c.staleRate(cacheKey); ok {
			c.log.Warn().Str("pair", cacheKey).Float64("rate", staleRate).
				Msg("Rate not in API response, using stale cached rate")
			return staleRate, nil
		}
		return 0, fmt.Errorf("rate not found for %s", cacheKey)
	}

	if c.cacheRepo != nil {
		cached := cachedExchangeRate{Rate: rate}
		if err := c.cacheRepo.Store("exchangerate", cacheKey, cached, clientdata.TTLExchangeRate); err != nil {
			c.log.Warn().Err(err).Str("pair", cacheKey).Msg("Failed to cache exchange rate")
		}
	}

	c.log.Info().Str("pair", cacheKey).Float64("rate", rate).Msg("Fetched rate")
	return rate, nil
}

// FetchRateSeries fetches observed daily rates between two dates inclusive
// (YYYY-MM-DD), oldest first. Weekends and bank holidays have no entry.
// A stale cached copy of the same window is returned when the API fails:
// the series is historical fact, only its tail can be missing.
func (c *Client) FetchRateSeries(ctx context.Context, from, to domain.Currency, fromDate, toDate string) ([]RatePoint, error) {
	cacheKey := fmt.Sprintf("%s:%s:%s", domain.Pair(from, to), fromDate, toDate)

	if c.cacheRepo != nil {
		data, err := c.cacheRepo.GetIfFresh("exchangerate_series", cacheKey)
		if err == nil && data != nil {
			var points []RatePoint
			if err := json.Unmarshal(data, &points); err == nil {
				c.log.Debug().Str("key", cacheKey).Int("points", len(points)).Msg("Cache hit")
				return points, nil
			}
		}
	}

	endpoint := fmt.Sprintf("%s/%s..%s", c.seriesURL, fromDate, toDate)
	query := url.Values{}
	query.Set("from", string(from))
	query.Set("to", string(to))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	c.log.Debug().Str("pair", domain.Pair(from, to)).Str("from", fromDate).Str("to", toDate).
		Msg("Fetching rate series")

	resp, err := c.client.Do(req)
	if err != nil {
		if stale, ok := c.staleSeries(cacheKey); ok {
			c.log.Warn().Err(err).Str("key", cacheKey).Msg("API failed, using stale cached series")
			return stale, nil
		}
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if stale, ok := c.staleSeries(cacheKey); ok {
			c.log.Warn().Int("status", resp.StatusCode).Str("key", cacheKey).
				Msg("API error, using stale cached series")
			return stale, nil
		}
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var result struct {
		Rates map[string]map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	points := make([]RatePoint, 0, len(result.Rates))
	for date, rates := range result.Rates {
		rate, ok := rates[string(to)]
		if !ok {
			continue
		}
		points = append(points, RatePoint{Date: date, Rate: rate})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })

	if c.cacheRepo != nil {
		if err := c.cacheRepo.Store("exchangerate_series", cacheKey, points, clientdata.TTLRateSeries); err != nil {
			c.log.Warn().Err(err).Str("key", cacheKey).Msg("Failed to cache rate series")
		}
	}

	c.log.Info().Str("pair", domain.Pair(from, to)).Int("points", len(points)).Msg("Fetched rate series")
	return points, nil
}

// staleRate retrieves a cached rate even if expired.
// Use this as a fallback when API calls fail - stale data is better than no data.
func (c *Client) staleRate(cacheKey string) (float64, bool) {
	if c.cacheRepo == nil {
		return 0, false
	}

	data, err := c.cacheRepo.Get("exchangerate", cacheKey)
	if err != nil || data == nil {
		return 0, false
	}

	var cached cachedExchangeRate
	if err := json.Unmarshal(data, &cached); err != nil {
		return 0, false
	}
	return cached.Rate, true
}

// staleSeries retrieves a cached series even if expired.
func (c *Client) staleSeries(cacheKey string) ([]RatePoint, bool) {
	if c.cacheRepo == nil {
		return nil, false
	}

	data, err := c.cacheRepo.Get("exchangerate_series", cacheKey)
	if err != nil || data == nil {
		return nil, false
	}

	var points []RatePoint
	if err := json.Unmarshal(data, &points); err != nil {
		return nil, false
	}
	return points, true
}
