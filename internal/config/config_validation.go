// SPDX-License-Identifier: Apache-2.0

package config

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup.
//
// The merged structured config is deliberately permissive: binaries derive
// role-specific views (engine, dev server) and validate those instead.
//
// Returns nil if the configuration is valid, or a descriptive error otherwise.
func (cfg *StructuredConfig) validate() error {
	return nil
}

func (cfg *EngineConfig) validate() error {
	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Remote.BaseURL == "" || cfg.Remote.RequestTimeout <= 0 {
		return ErrInvalidRemoteConfigs
	}

	if cfg.Engine.QuietPeriod <= 0 {
		return ErrInvalidEngineConfigs
	}

	return nil
}
