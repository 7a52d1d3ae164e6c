// SPDX-License-Identifier: Apache-2.0

// Package enrich holds thin request/response clients for the external
// lookup services. They carry no local state and are never involved in
// reconciliation: a failed lookup is surfaced to the caller and nothing
// is cached or retried.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Place is a resolved geocoding result.
type Place struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Country   string  `json:"country,omitempty"`
}

// Forecast is a point-in-time weather snapshot for a location.
type Forecast struct {
	TemperatureC float64   `json:"temperature_c"`
	Condition    string    `json:"condition"`
	ObservedAt   time.Time `json:"observed_at"`
}

type ClientConfig struct {
	GeocodeBaseURL string
	WeatherBaseURL string
	Timeout        time.Duration
}

// Client proxies geocoding and weather lookups.
type Client struct {
	geocode *resty.Client
	weather *resty.Client
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Client{
		geocode: resty.New().
			SetBaseURL(strings.TrimRight(cfg.GeocodeBaseURL, "/")).
			SetTimeout(cfg.Timeout),
		weather: resty.New().
			SetBaseURL(strings.TrimRight(cfg.WeatherBaseURL, "/")).
			SetTimeout(cfg.Timeout),
	}
}

// Geocode resolves a free-form place query to coordinates.
func (c *Client) Geocode(ctx context.Context, query string) (Place, error) {
	resp, err := c.geocode.R().
		SetContext(ctx).
		SetQueryParam("q", query).
		Get("/geocode")
	if err != nil {
		return Place{}, fmt.Errorf("geocode request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return Place{}, fmt.Errorf("geocode: http %d", resp.StatusCode())
	}

	var place Place
	if err = json.Unmarshal(resp.Body(), &place); err != nil {
		return Place{}, fmt.Errorf("decode geocode response: %w", err)
	}
	return place, nil
}

// Forecast fetches current weather for the given coordinates.
func (c *Client) Forecast(ctx context.Context, lat, lon float64) (Forecast, error) {
	resp, err := c.weather.R().
		SetContext(ctx).
		SetQueryParam("lat", strconv.FormatFloat(lat, 'f', -1, 64)).
		SetQueryParam("lon", strconv.FormatFloat(lon, 'f', -1, 64)).
		Get("/forecast")
	if err != nil {
		return Forecast{}, fmt.Errorf("forecast request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return Forecast{}, fmt.Errorf("forecast: http %d", resp.StatusCode())
	}

	var forecast Forecast
	if err = json.Unmarshal(resp.Body(), &forecast); err != nil {
		return Forecast{}, fmt.Errorf("decode forecast response: %w", err)
	}
	return forecast, nil
}
