// Package upstream talks to the DonutSMP v1 API. The client forwards the
// caller's Authorization header as-is and returns response bodies as raw
// JSON; it never reshapes what the upstream sends.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the public DonutSMP API root.
const DefaultBaseURL = "https://api.donutsmp.net/v1"

// StatusError is returned when the upstream answers with a non-2xx status.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.StatusCode)
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// Client is a thin HTTP client for the DonutSMP auction and stats endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an upstream client. An empty baseURL falls back to the
// public API; a zero timeout disables the client-side deadline.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Transactions fetches one page of recent auction sales.
func (c *Client) Transactions(ctx context.Context, auth string, page int) (json.RawMessage, error) {
	return c.get(ctx, auth, fmt.Sprintf("/auction/transactions/%d", page))
}

// Listings fetches one page of active auction listings.
func (c *Client) Listings(ctx context.Context, auth string, page int) (json.RawMessage, error) {
	return c.get(ctx, auth, fmt.Sprintf("/auction/list/%d", page))
}

// PlayerStats fetches the stats of one player. The username is escaped so
// Bedrock names (leading dot) and other oddities survive the URL.
func (c *Client) PlayerStats(ctx context.Context, auth, username string) (json.RawMessage, error) {
	return c.get(ctx, auth, "/stats/"+url.PathEscape(username))
}

func (c *Client) get(ctx context.Context, auth, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build upstream request: %w", err)
	}
	req.Header.Set("Authorization", auth)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach upstream: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read upstream response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}
	return json.RawMessage(body), nil
}
