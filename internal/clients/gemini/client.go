// Package gemini wraps the Gemini API for report summarization.
package gemini

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

const (
	// maxAttempts bounds retries on rate-limited calls.
	maxAttempts = 3
	// defaultBackoff is used when the error carries no suggested delay.
	defaultBackoff = 30 * time.Second
	// callTimeout caps a single generation call.
	callTimeout = 2 * time.Minute
)

// Client calls the Gemini generation API.
type Client struct {
	client *genai.Client
	model  string
	log    zerolog.Logger
}

// NewClient creates a Gemini client for the given model.
func NewClient(ctx context.Context, apiKey, model string, log zerolog.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	return &Client{
		client: client,
		model:  model,
		log:    log.With().Str("client", "gemini").Logger(),
	}, nil
}

// Summarize generates a completion for the given text under the given system
// instruction. Rate-limited calls back off and retry a bounded number of
// times, honoring the delay the API suggests.
func (c *Client) Summarize(ctx context.Context, instruction, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("text to summarize is empty")
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			delay := retryDelay(lastErr)
			c.log.Warn().
				Err(lastErr).
				Int("attempt", attempt).
				Dur("backoff", delay).
				Msg("Gemini rate limited, backing off")
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}

		out, err := c.generate(ctx, instruction, text)
		if err == nil {
			return out, nil
		}
		if !isRateLimited(err) {
			return "", err
		}
		lastErr = err
	}
	return "", fmt.Errorf("gemini still rate limited after %d attempts: %w", maxAttempts, lastErr)
}

func (c *Client) generate(ctx context.Context, instruction, text string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.2)),
	}
	if instruction != "" {
		config.SystemInstruction = genai.NewContentFromText(instruction, genai.RoleUser)
	}

	started := time.Now()
	contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}
	resp, err := c.client.Models.GenerateContent(callCtx, c.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}

	var out strings.Builder
	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					out.WriteString(part.Text)
				}
			}
			if out.Len() > 0 {
				break
			}
		}
	}
	if out.Len() == 0 {
		return "", fmt.Errorf("gemini returned no text")
	}

	c.log.Debug().
		Str("model", c.model).
		Int("prompt_chars", len(text)).
		Int("response_chars", out.Len()).
		Dur("elapsed", time.Since(started)).
		Msg("Generated summary")
	return out.String(), nil
}

// isRateLimited matches 429 and quota-exhaustion responses.
func isRateLimited(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "RESOURCE_EXHAUSTED") ||
		strings.Contains(msg, "quota")
}

// retryDelayPattern matches the "Please retry in Xs" hint in quota errors.
var retryDelayPattern = regexp.MustCompile(`(?i)(?:Please retry in |retryDelay[:\s]+)(\d+(?:\.\d+)?)\s*s`)

// retryDelay extracts the API-suggested delay from a rate limit error,
// falling back to defaultBackoff when none is present.
func retryDelay(err error) time.Duration {
	if err == nil {
		return defaultBackoff
	}
	matches := retryDelayPattern.FindStringSubmatch(err.Error())
	if len(matches) < 2 {
		return defaultBackoff
	}
	seconds, parseErr := strconv.ParseFloat(matches[1], 64)
	if parseErr != nil {
		return defaultBackoff
	}
	return time.Duration(seconds*float64(time.Second)) + 5*time.Second
}
