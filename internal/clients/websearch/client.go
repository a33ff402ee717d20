// Package websearch finds report documents through the Google Programmable
// Search JSON API.
package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/compass/internal/clientdata"
)

// maxResultsPerQuery is the API's page size ceiling.
const maxResultsPerQuery = 10

// Result is one search hit.
type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet,omitempty"`
	Mime    string `json:"mime,omitempty"`
}

// Client for the Google Programmable Search JSON API
type Client struct {
	baseURL   string
	apiKey    string
	engineID  string
	client    *http.Client
	cacheRepo *clientdata.Repository
	log       zerolog.Logger
}

// NewClient creates a new search client.
// cacheRepo is optional - if nil, caching is disabled
func NewClient(apiKey, engineID string, cacheRepo *clientdata.Repository, log zerolog.Logger) *Client {
	return &Client{
		baseURL:   "https://www.googleapis.com/customsearch/v1",
		apiKey:    apiKey,
		engineID:  engineID,
		client:    &http.Client{Timeout: 15 * time.Second},
		cacheRepo: cacheRepo,
		log:       log.With().Str("client", "websearch").Logger(),
	}
}

// Search runs a query and returns up to limit hits, restricted to PDF
// documents since that is all the report pipeline can read. Repeat queries
// within the cache TTL are served from the cache.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}
	if c.apiKey == "" || c.engineID == "" {
		return nil, fmt.Errorf("search API key and engine ID are required")
	}
	if limit < 1 || limit > maxResultsPerQuery {
		limit = maxResultsPerQuery
	}

	cacheKey := fmt.Sprintf("%s:%d", query, limit)
	if c.cacheRepo != nil {
		data, err := c.cacheRepo.GetIfFresh("websearch", cacheKey)
		if err == nil && data != nil {
			var results []Result
			if err := json.Unmarshal(data, &results); err == nil {
				c.log.Debug().Str("query", query).Int("results", len(results)).Msg("Cache hit")
				return results, nil
			}
		}
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("cx", c.engineID)
	params.Set("q", query)
	params.Set("num", fmt.Sprintf("%d", limit))
	params.Set("fileType", "pdf")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	c.log.Debug().Str("query", query).Int("limit", limit).Msg("Searching")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Items []Result `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if c.cacheRepo != nil {
		if err := c.cacheRepo.Store("websearch", cacheKey, payload.Items, clientdata.TTLSearchResults); err != nil {
			c.log.Warn().Err(err).Str("query", query).Msg("Failed to cache search results")
		}
	}

	c.log.Info().Str("query", query).Int("results", len(payload.Items)).Msg("Search complete")
	return payload.Items, nil
}
