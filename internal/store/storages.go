// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"fmt"

	"github.com/tripkeep/go-trip-keeper/internal/config"
	"github.com/tripkeep/go-trip-keeper/internal/logger"
)

// Storages groups all engine-side storage surfaces into a single value that
// can be passed around the engine layer.
type Storages struct {
	// RecordCache is the per-record "last known good" cache.
	RecordCache RecordCache
	// PendingQueue is the durable log of unconfirmed partial updates.
	PendingQueue PendingQueue
	// ListSnapshot is the denormalized full-collection cache.
	ListSnapshot ListSnapshot
	// Diagnostics persists the lightweight health record.
	Diagnostics DiagnosticsStore

	// Degraded is set when the durable store could not be opened and the
	// surfaces run on a memory-only fallback for this session.
	Degraded bool

	kv KVStore
}

// NewStorages initialises the local storage layer using the supplied
// configuration and logger. It performs the following steps:
//  1. Opens an SQLite connection to the file path in cfg.DB.DSN, creating
//     the database file if it does not yet exist.
//  2. Runs pending schema migrations via [DB.Migrate].
//  3. Constructs a [Storages] value wiring every surface to the shared
//     key-value table.
//
// Storage unavailability is not fatal: when the database cannot be opened
// or migrated, the surfaces are backed by an in-memory store for the
// current session, Degraded is set, and the returned error wraps
// [ErrStorageUnavailable]. Callers that can live with a memory-only
// session check the error with errors.Is and carry on with the returned
// (fully usable) Storages value.
func NewStorages(cfg config.EngineStorage, logger *logger.Logger) (*Storages, error) {
	logger.Info().Msg("creating new storages...")

	kv, degradedErr := openKV(cfg, logger)

	storages := &Storages{
		RecordCache:  NewRecordCache(kv, logger),
		PendingQueue: NewPendingQueue(kv, logger),
		ListSnapshot: NewListSnapshot(kv, logger),
		Diagnostics:  NewDiagnosticsStore(kv, logger),
		Degraded:     degradedErr != nil,
		kv:           kv,
	}
	return storages, degradedErr
}

func openKV(cfg config.EngineStorage, log *logger.Logger) (KVStore, error) {
	db, err := NewConnectSQLite(context.Background(), cfg.DB, log)
	if err != nil {
		log.Warn().Err(err).Msg("local database unavailable, running memory-only for this session")
		return NewMemoryKVStore(), fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	if err = db.Migrate(); err != nil {
		log.Warn().Err(fmt.Errorf("migration failed: %w", err)).
			Msg("local database unusable, running memory-only for this session")
		db.DB.Close()
		return NewMemoryKVStore(), fmt.Errorf("%w: migration failed: %w", ErrStorageUnavailable, err)
	}

	return NewSQLiteKVStore(db, log), nil
}

// Close releases the underlying storage handle.
func (s *Storages) Close() error {
	return s.kv.Close()
}
