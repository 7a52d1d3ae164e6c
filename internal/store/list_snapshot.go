// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tripkeep/go-trip-keeper/internal/logger"
	"github.com/tripkeep/go-trip-keeper/models"
)

const listSnapshotKey = "list"

type listSnapshot struct {
	kv     KVStore
	logger *logger.Logger
}

// NewListSnapshot builds the full-collection cache surface on top of the
// durable local store.
func NewListSnapshot(kv KVStore, logger *logger.Logger) ListSnapshot {
	return &listSnapshot{
		kv:     kv,
		logger: logger,
	}
}

func (s *listSnapshot) Get(ctx context.Context) ([]models.Record, error) {
	raw, err := s.kv.Get(ctx, listSnapshotKey)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return []models.Record{}, nil
		}
		return nil, fmt.Errorf("load list snapshot: %w", err)
	}

	var records []models.Record
	if err = json.Unmarshal(raw, &records); err != nil {
		s.logger.Err(err).
			Str("func", "listSnapshot.Get").
			Msg("failed to decode list snapshot")
		return nil, fmt.Errorf("decode list snapshot: %w", err)
	}
	if records == nil {
		records = []models.Record{}
	}
	return records, nil
}

func (s *listSnapshot) Put(ctx context.Context, records []models.Record) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode list snapshot: %w", err)
	}

	if err = s.kv.Put(ctx, listSnapshotKey, raw); err != nil {
		s.logger.Err(err).
			Str("func", "listSnapshot.Put").
			Int("records", len(records)).
			Msg("failed to persist list snapshot")
		return fmt.Errorf("persist list snapshot: %w", err)
	}
	return nil
}

func (s *listSnapshot) Purge(ctx context.Context) error {
	if err := s.kv.Delete(ctx, listSnapshotKey); err != nil {
		return fmt.Errorf("purge list snapshot: %w", err)
	}
	return nil
}
