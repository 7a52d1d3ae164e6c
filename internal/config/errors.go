// SPDX-License-Identifier: Apache-2.0

package config

import "errors"

// Validation errors returned by [EngineConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidRemoteConfigs indicates invalid remote store settings
	// (for example, missing base URL or request timeout).
	ErrInvalidRemoteConfigs = errors.New("invalid remote configuration")
	// ErrInvalidStorageConfigs indicates invalid local storage settings
	// (for example, an empty database path).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidEngineConfigs indicates invalid engine tunables
	// (for example, a non-positive quiet period).
	ErrInvalidEngineConfigs = errors.New("invalid engine configuration")
)
