// Package visualcrossing implements the fallback weather source using the
// Visual Crossing timeline API. It is only queried for dates the bulk GSOD
// dataset does not cover.
package visualcrossing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/weather-ingest/internal/domain"
	"github.com/sony/gobreaker"
)

// Client implements ingest.FallbackSource against the timeline endpoint.
// Requests run through a circuit breaker so a rate-limited or downed API
// fails fast during long backfills instead of burning the timeout per date.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	lat, lon   float64
	breaker    *gobreaker.CircuitBreaker
	logger     *slog.Logger
}

// NewClient creates a timeline API client for a fixed location.
func NewClient(apiKey string, lat, lon float64, timeout time.Duration, logger *slog.Logger) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "visualcrossing",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://weather.visualcrossing.com/VisualCrossingWebServices/rest/services/timeline",
		lat:     lat,
		lon:     lon,
		breaker: cb,
		logger:  logger,
	}
}

// FetchDay fetches the metric-unit payload for one date. Returns nil when the
// API responds without any day data.
func (c *Client) FetchDay(ctx context.Context, date time.Time) (*domain.TimelineDay, error) {
	location := fmt.Sprintf("%.4f,%.4f", c.lat, c.lon)
	u := fmt.Sprintf("%s/%s/%s", c.baseURL, url.PathEscape(location), date.Format(time.DateOnly))
	params := url.Values{
		"key":       {c.apiKey},
		"unitGroup": {"metric"},
		"include":   {"days"},
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.doRequest(ctx, u+"?"+params.Encode())
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.TimelineDay), nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (*domain.TimelineDay, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("timeline request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("visualcrossing API error: status %d: %s", resp.StatusCode, body)
	}

	var tr timelineResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(tr.Days) == 0 {
		return nil, nil
	}

	day := tr.Days[0]
	return &day, nil
}

// Timeline API response envelope.
type timelineResponse struct {
	Days []domain.TimelineDay `json:"days"`
}
