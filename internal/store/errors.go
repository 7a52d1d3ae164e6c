// SPDX-License-Identifier: Apache-2.0

package store

import "errors"

// Sentinel errors returned by storage methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrKeyNotFound is returned by [KVStore.Get] when no value is stored
	// under the requested key.
	ErrKeyNotFound = errors.New("key not found")

	// ErrStorageUnavailable is returned by [NewStorages] when the durable
	// local store cannot be opened or migrated (e.g. the host denies
	// persistence). Advisory, not fatal: the returned Storages runs
	// memory-only for the session and reports Degraded.
	ErrStorageUnavailable = errors.New("local storage unavailable")
)
