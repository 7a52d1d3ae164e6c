// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"time"
)

// Default values applied by [GetEngineConfig] when a tunable was not set by
// any configuration source.
const (
	DefaultRequestTimeout = 15 * time.Second
	DefaultQuietPeriod    = 1500 * time.Millisecond
)

// EngineRemote holds network settings used by the remote store adapter.
type EngineRemote struct {
	// BaseURL is the root URL of the record API.
	BaseURL string
	// RequestTimeout is the default timeout for outbound remote requests.
	RequestTimeout time.Duration
}

// EngineDB contains local database connection settings for the engine.
type EngineDB struct {
	// DSN is the SQLite file path used by the durable local store.
	DSN string
}

// EngineStorage groups engine storage backend settings.
type EngineStorage struct {
	// DB holds local database settings.
	DB EngineDB
}

// EngineTunables contains reconciliation engine settings.
type EngineTunables struct {
	// QuietPeriod is the write scheduler debounce interval.
	QuietPeriod time.Duration
}

// EngineWorkers contains background worker settings.
type EngineWorkers struct {
	// RefreshInterval defines how often the list aggregator refreshes
	// while online. Zero disables periodic refresh.
	RefreshInterval time.Duration
}

// EngineEnrich contains enrichment proxy endpoints. Both may be empty when
// enrichment is not configured; the proxies are optional collaborators.
type EngineEnrich struct {
	GeocodeBaseURL string
	WeatherBaseURL string
}

// EngineConfig is the top-level engine configuration assembled from
// [StructuredConfig].
type EngineConfig struct {
	// Remote contains remote store adapter settings.
	Remote EngineRemote
	// Storage contains local storage settings.
	Storage EngineStorage
	// Engine contains reconciliation tunables.
	Engine EngineTunables
	// Workers contains background job settings.
	Workers EngineWorkers
	// Enrich contains enrichment proxy endpoints.
	Enrich EngineEnrich
}

// GetEngineConfig builds and validates an engine-specific config view from
// the merged structured configuration.
//
// It loads the base config via [GetStructuredConfig], maps only the fields
// relevant to the engine runtime, applies defaults for unset tunables, and
// validates the resulting [EngineConfig].
func GetEngineConfig() (*EngineConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	engineCfg := &EngineConfig{
		Remote: EngineRemote{
			BaseURL:        cfg.Remote.BaseURL,
			RequestTimeout: cfg.Remote.RequestTimeout,
		},
		Storage: EngineStorage{
			DB: EngineDB{
				DSN: cfg.Storage.DB.DSN,
			},
		},
		Engine: EngineTunables{
			QuietPeriod: cfg.Engine.QuietPeriod,
		},
		Workers: EngineWorkers{
			RefreshInterval: cfg.Workers.RefreshInterval,
		},
		Enrich: EngineEnrich{
			GeocodeBaseURL: cfg.Enrich.GeocodeBaseURL,
			WeatherBaseURL: cfg.Enrich.WeatherBaseURL,
		},
	}
	engineCfg.applyDefaults()

	return engineCfg, engineCfg.validate()
}

func (cfg *EngineConfig) applyDefaults() {
	if cfg.Remote.RequestTimeout <= 0 {
		cfg.Remote.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Engine.QuietPeriod <= 0 {
		cfg.Engine.QuietPeriod = DefaultQuietPeriod
	}
}
