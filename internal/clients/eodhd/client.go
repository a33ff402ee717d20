// Package eodhd provides daily OHLC history fetching from the EODHD API
// with persistent caching and a daily request budget.
package eodhd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/compass/internal/clientdata"
)

// dailyRequestLimit caps vendor calls per UTC day. The free tier allows 20
// requests a day; the cache absorbs the rest.
const dailyRequestLimit = 20

// Client for eodhd.com end-of-day data
type Client struct {
	baseURL   string
	apiKey    string
	client    *http.Client
	cacheRepo *clientdata.Repository
	log       zerolog.Logger

	mu           sync.Mutex
	requestCount int
	requestDay   string
}

// NewClient creates a new EODHD client.
// cacheRepo is optional - if nil, caching is disabled
func NewClient(apiKey string, cacheRepo *clientdata.Repository, log zerolog.Logger) *Client {
	return &Client{
		baseURL:   "https://eodhd.com/api",
		apiKey:    apiKey,
		client:    &http.Client{Timeout: 15 * time.Second},
		cacheRepo: cacheRepo,
		log:       log.With().Str("client", "eodhd").Logger(),
	}
}

// Bar is one daily OHLC row as the vendor returns it.
type Bar struct {
	Date          string  `json:"date"`
	Open          float64 `json:"open"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Close         float64 `json:"close"`
	AdjustedClose float64 `json:"adjusted_close"`
	Volume        int64   `json:"volume"`
}

// FetchDailyBars returns daily bars for a symbol between from and to
// inclusive (YYYY-MM-DD), oldest first. Identical requests within the cache
// TTL are served from the cache without touching the vendor or the request
// budget.
func (c *Client) FetchDailyBars(ctx context.Context, symbol, from, to string) ([]Bar, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}

	cacheKey := fmt.Sprintf("%s:%s:%s", symbol, from, to)
	if c.cacheRepo != nil {
		data, err := c.cacheRepo.GetIfFresh("eod_prices", cacheKey)
		if err == nil && data != nil {
			var bars []Bar
			if err := json.Unmarshal(data, &bars); err == nil {
				c.log.Debug().Str("symbol", symbol).Int("bars", len(bars)).Msg("Cache hit")
				return bars, nil
			}
		}
	}

	if err := c.checkRequestBudget(); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/eod/%s", c.baseURL, url.PathEscape(symbol))
	query := url.Values{}
	query.Set("api_token", c.apiKey)
	query.Set("fmt", "json")
	query.Set("period", "d")
	if from != "" {
		query.Set("from", from)
	}
	if to != "" {
		query.Set("to", to)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	c.log.Debug().Str("symbol", symbol).Str("from", from).Str("to", to).Msg("Fetching daily bars")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var bars []Bar
	if err := json.NewDecoder(resp.Body).Decode(&bars); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if c.cacheRepo != nil {
		if err := c.cacheRepo.Store("eod_prices", cacheKey, bars, clientdata.TTLDailyPrices); err != nil {
			c.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to cache daily bars")
		}
	}

	c.log.Info().Str("symbol", symbol).Int("bars", len(bars)).Msg("Fetched daily bars")
	return bars, nil
}

// checkRequestBudget counts one vendor call against the daily budget,
// resetting at UTC midnight.
func (c *Client) checkRequestBudget() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	day := time.Now().UTC().Format("2006-01-02")
	if day != c.requestDay {
		c.requestDay = day
		c.requestCount = 0
	}
	if c.requestCount >= dailyRequestLimit {
		return fmt.Errorf("daily request budget (%d) exhausted, retry after UTC midnight", dailyRequestLimit)
	}
	c.requestCount++
	return nil
}
