// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"

	"github.com/tripkeep/go-trip-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// KVStore is the durable local store port: a namespaced key-value facility
// that survives process restarts. It is the only shared mutable resource in
// the engine and is accessed exclusively through the RecordCache,
// PendingQueue, ListSnapshot, and DiagnosticsStore abstractions.
type KVStore interface {
	// Get returns the value stored under key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys returns every stored key with the given prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// GetMany returns the stored values for the given keys. Absent keys are
	// simply missing from the result map.
	GetMany(ctx context.Context, keys []string) (map[string][]byte, error)

	// Close releases the underlying storage handle.
	Close() error
}

// RecordCache is per-record full-record storage: the "last known good"
// client-side copy of each record.
type RecordCache interface {
	// Get returns the cache entry for id. A miss is a normal, expected
	// outcome reported by ok=false, not an error.
	Get(ctx context.Context, id string) (entry models.CacheEntry, ok bool, err error)

	// Put totally overwrites the entry for id, stamping the write time.
	// It never merges fields; callers pass a fully merged record when
	// partial semantics are desired.
	Put(ctx context.Context, id string, record models.Record) error

	// Delete removes the entry for id.
	Delete(ctx context.Context, id string) error

	// KnownIDs returns the IDs of every cached record. Used for diagnostics
	// and for reconstructing a list snapshot when it is lost while
	// per-record entries survive.
	KnownIDs(ctx context.Context) ([]string, error)

	// GetMany returns cache entries for the given IDs, skipping misses.
	GetMany(ctx context.Context, ids []string) (map[string]models.CacheEntry, error)

	// Purge removes every cached record.
	Purge(ctx context.Context) error
}

// PendingQueue is the ordered, durable log of not-yet-confirmed partial
// updates, persisted as a single value.
type PendingQueue interface {
	// Enqueue appends an item. It never deduplicates or collapses entries
	// for the same record; replay correctness depends on order.
	Enqueue(ctx context.Context, id string, patch models.RecordPatch) error

	// Snapshot returns a read-only copy of all queued items in order.
	Snapshot(ctx context.Context) ([]models.PendingWrite, error)

	// Ack drops the first n items after a flush in which every snapshotted
	// item replayed successfully. Items enqueued while the replay was in
	// flight stay queued for the next flush.
	Ack(ctx context.Context, n int) error

	// Clear atomically removes the whole queue, replayed or not. Used only
	// for the full local-data reset.
	Clear(ctx context.Context) error

	// IsEmpty reports whether the queue holds no items.
	IsEmpty(ctx context.Context) (bool, error)

	// Len returns the number of queued items.
	Len(ctx context.Context) (int, error)
}

// ListSnapshot is the denormalized full-collection cache used by listing
// screens.
type ListSnapshot interface {
	// Get returns the cached collection in order. A never-written snapshot
	// returns an empty slice.
	Get(ctx context.Context) ([]models.Record, error)

	// Put replaces the snapshot.
	Put(ctx context.Context, records []models.Record) error

	// Purge removes the snapshot.
	Purge(ctx context.Context) error
}

// DiagnosticsStore persists the lightweight health record.
type DiagnosticsStore interface {
	// Load returns the last persisted diagnostics, or a zero value if none
	// was ever written.
	Load(ctx context.Context) (models.Diagnostics, error)

	// Save replaces the persisted diagnostics.
	Save(ctx context.Context, diag models.Diagnostics) error

	// Purge removes the persisted diagnostics.
	Purge(ctx context.Context) error
}
