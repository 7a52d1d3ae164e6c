// SPDX-License-Identifier: Apache-2.0

package enrich

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Geocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/geocode", r.URL.Path)
		assert.Equal(t, "Lisbon", r.URL.Query().Get("q"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"Lisbon","latitude":38.7223,"longitude":-9.1393,"country":"PT"}`))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{GeocodeBaseURL: srv.URL})

	place, err := c.Geocode(context.Background(), "Lisbon")
	require.NoError(t, err)

	assert.Equal(t, "Lisbon", place.Name)
	assert.InDelta(t, 38.7223, place.Latitude, 0.0001)
	assert.Equal(t, "PT", place.Country)
}

func TestClient_Geocode_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{GeocodeBaseURL: srv.URL})

	_, err := c.Geocode(context.Background(), "anywhere")
	assert.Error(t, err)
}

func TestClient_Forecast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forecast", r.URL.Path)
		assert.Equal(t, "38.7223", r.URL.Query().Get("lat"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"temperature_c":24.5,"condition":"clear","observed_at":"2026-08-20T12:00:00Z"}`))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{WeatherBaseURL: srv.URL})

	forecast, err := c.Forecast(context.Background(), 38.7223, -9.1393)
	require.NoError(t, err)

	assert.InDelta(t, 24.5, forecast.TemperatureC, 0.0001)
	assert.Equal(t, "clear", forecast.Condition)
}

func TestClient_Forecast_BadPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{WeatherBaseURL: srv.URL})

	_, err := c.Forecast(context.Background(), 1, 2)
	assert.Error(t, err)
}
