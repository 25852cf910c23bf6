// Package search queries SerpAPI for organic web results.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aiox-platform/travelbot/internal/config"
	"github.com/aiox-platform/travelbot/internal/metrics"
)

// ErrNotConfigured is returned when no SerpAPI key is set.
var ErrNotConfigured = errors.New("SerpAPI credentials not configured")

// Result is one ranked organic result.
type Result struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

// Client calls the SerpAPI search endpoint.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	engine     string
	count      int
}

func NewClient(cfg config.SearchConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		endpoint:   cfg.Endpoint,
		apiKey:     strings.TrimSpace(cfg.SerpAPIKey),
		engine:     cfg.Engine,
		count:      cfg.Count,
	}
}

// Search returns up to the configured number of organic results for query.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	reqURL, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid search endpoint: %w", err)
	}
	params := reqURL.Query()
	params.Set("q", query)
	params.Set("api_key", c.apiKey)
	params.Set("engine", c.engine)
	params.Set("num", strconv.Itoa(c.count))
	reqURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("building search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.ProviderCallDuration.WithLabelValues("search").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading search response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, httpError(resp.StatusCode, body)
	}

	var raw struct {
		OrganicResults []Result `json:"organic_results"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("invalid search response: %w", err)
	}
	return raw.OrganicResults, nil
}

func httpError(statusCode int, body []byte) error {
	var payload struct {
		Error string `json:"error"`
	}
	detail := ""
	if json.Unmarshal(body, &payload) == nil {
		detail = payload.Error
	}
	if detail == "" {
		detail = strings.TrimSpace(string(body))
	}
	if len(detail) > 200 {
		detail = detail[:200] + "..."
	}
	if detail != "" {
		return fmt.Errorf("search request failed (HTTP %d): %s", statusCode, detail)
	}
	return fmt.Errorf("search request failed (HTTP %d)", statusCode)
}
