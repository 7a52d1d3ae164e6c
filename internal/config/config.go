// SPDX-License-Identifier: Apache-2.0

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for the
// go-trip-keeper engine. It aggregates all sub-configurations and is
// populated by merging values from environment variables, command-line
// flags, and an optional JSON file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// Remote holds settings for the remote record store the engine
	// reconciles against.
	Remote Remote `envPrefix:"REMOTE_"`

	// Storage holds configuration for the durable local store.
	Storage Storage `envPrefix:"STORAGE_"`

	// Engine holds reconciliation engine tunables such as the write
	// scheduler's quiet period.
	Engine Engine `envPrefix:"ENGINE_"`

	// Enrich holds endpoints for the stateless enrichment proxies
	// (geocoding, weather).
	Enrich Enrich `envPrefix:"ENRICH_"`

	// Workers holds configuration for background worker processes.
	Workers Workers `envPrefix:"WORKERS_"`

	// DevServer holds the listen address for the development record server.
	DevServer DevServer `envPrefix:"DEVSERVER_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// Remote holds connection settings for the remote record store.
type Remote struct {
	// BaseURL is the root URL of the record API
	// (e.g. "http://localhost:8080").
	// Env: REMOTE_BASE_URL
	BaseURL string `env:"BASE_URL"`

	// RequestTimeout is the per-request timeout for outbound remote calls
	// (e.g. "15s"). A timed-out call is treated the same as an explicit
	// offline signal.
	// Env: REMOTE_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Storage groups the configuration for the durable local store.
type Storage struct {
	// DB holds the local database connection settings.
	DB DB `envPrefix:"DB_"`
}

// DB holds connection settings for the local SQLite database.
type DB struct {
	// DSN is the SQLite file path used for the local key-value store
	// (e.g. "tripkeeper.db").
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Engine holds reconciliation engine tunables.
type Engine struct {
	// QuietPeriod is the debounce interval after the last edit before a
	// write is dispatched. A single constant for all write streams.
	// Env: ENGINE_QUIET_PERIOD
	QuietPeriod time.Duration `env:"QUIET_PERIOD"`
}

// Enrich holds endpoints for third-party data enrichment proxies.
type Enrich struct {
	// GeocodeBaseURL is the root URL of the geocoding service.
	// Env: ENRICH_GEOCODE_BASE_URL
	GeocodeBaseURL string `env:"GEOCODE_BASE_URL"`

	// WeatherBaseURL is the root URL of the weather forecast service.
	// Env: ENRICH_WEATHER_BASE_URL
	WeatherBaseURL string `env:"WEATHER_BASE_URL"`
}

// Workers holds configuration for background worker processes.
type Workers struct {
	// RefreshInterval defines how often the list aggregator refreshes the
	// collection snapshot while online. Zero disables periodic refresh;
	// the flush worker still refreshes on every reconnect.
	// Env: WORKERS_REFRESH_INTERVAL
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL"`
}

// DevServer holds settings for the development record server binary.
type DevServer struct {
	// HTTPAddress is the TCP address the dev server listens on,
	// in "host:port" format (e.g. "127.0.0.1:8080").
	// Env: DEVSERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`
}

// GetStructuredConfig loads, merges, and validates the engine configuration
// from all available sources in the following priority order (first source
// wins for non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//
// Returns a fully populated *StructuredConfig or an error if any source
// fails to load or the final config fails validation.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		build()
}
