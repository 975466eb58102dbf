// Package botapi is an HTTP client for the bot's operational endpoints.
package botapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Health mirrors the bot's health endpoint response.
type Health struct {
	Status        string `json:"status"`
	Timestamp     string `json:"timestamp"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Pending       int    `json:"pending"`
}

// JournalStats mirrors the journal aggregates in the stats response.
type JournalStats struct {
	Total       int            `json:"total"`
	Delivered   int            `json:"delivered"`
	Rejected    int            `json:"rejected"`
	Failed      int            `json:"failed"`
	BytesSent   int64          `json:"bytes_sent"`
	PerPlatform map[string]int `json:"per_platform"`
	PerReason   map[string]int `json:"per_reason"`
}

// Stats mirrors the bot's stats endpoint response.
type Stats struct {
	Pending          int           `json:"pending"`
	ScratchFreeBytes int64         `json:"scratch_free_bytes"`
	Journal          *JournalStats `json:"journal"`
}

// Client talks to a running bot instance.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a client for the given base URL.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Health fetches the liveness state. An error means the bot is unreachable.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.get(ctx, "/health", &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Ready fetches the readiness state, which includes queue depth.
func (c *Client) Ready(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.get(ctx, "/ready", &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Stats fetches aggregate usage counters.
func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var s Stats
	if err := c.get(ctx, "/api/v1/stats", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
