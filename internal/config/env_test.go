// SPDX-License-Identifier: Apache-2.0

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnvVars(t *testing.T, vars map[string]string) {
	t.Helper()
	for key, value := range vars {
		t.Setenv(key, value)
	}
}

func TestParseEnv_AllFields(t *testing.T) {
	setEnvVars(t, map[string]string{
		"CONFIG": "/path/to/config.json",

		"REMOTE_BASE_URL":        "http://records.local:8080",
		"REMOTE_REQUEST_TIMEOUT": "30s",

		"STORAGE_DB_DATABASE_URI": "tripkeeper.db",

		"ENGINE_QUIET_PERIOD": "2s",

		"ENRICH_GEOCODE_BASE_URL": "http://geo.local",
		"ENRICH_WEATHER_BASE_URL": "http://weather.local",

		"WORKERS_REFRESH_INTERVAL": "5m",

		"DEVSERVER_ADDRESS": "localhost:9090",
	})

	cfg := &StructuredConfig{}
	err := parseEnv(cfg)
	require.NoError(t, err)

	assert.Equal(t, "/path/to/config.json", cfg.JSONFilePath)
	assert.Equal(t, "http://records.local:8080", cfg.Remote.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Remote.RequestTimeout)
	assert.Equal(t, "tripkeeper.db", cfg.Storage.DB.DSN)
	assert.Equal(t, 2*time.Second, cfg.Engine.QuietPeriod)
	assert.Equal(t, "http://geo.local", cfg.Enrich.GeocodeBaseURL)
	assert.Equal(t, "http://weather.local", cfg.Enrich.WeatherBaseURL)
	assert.Equal(t, 5*time.Minute, cfg.Workers.RefreshInterval)
	assert.Equal(t, "localhost:9090", cfg.DevServer.HTTPAddress)
}

func TestParseEnv_EmptyEnvironmentYieldsZeroConfig(t *testing.T) {
	cfg := &StructuredConfig{}
	err := parseEnv(cfg)

	require.NoError(t, err)
	assert.Empty(t, cfg.Remote.BaseURL)
	assert.Zero(t, cfg.Engine.QuietPeriod)
}

func TestParseEnv_InvalidDurationFails(t *testing.T) {
	setEnvVars(t, map[string]string{
		"ENGINE_QUIET_PERIOD": "not-a-duration",
	})

	err := parseEnv(&StructuredConfig{})
	assert.Error(t, err)
}
