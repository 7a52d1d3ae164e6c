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

const diagnosticsKey = "diag"

type diagnosticsStore struct {
	kv     KVStore
	logger *logger.Logger
}

// NewDiagnosticsStore builds the health-record surface on top of the durable
// local store.
func NewDiagnosticsStore(kv KVStore, logger *logger.Logger) DiagnosticsStore {
	return &diagnosticsStore{
		kv:     kv,
		logger: logger,
	}
}

func (s *diagnosticsStore) Load(ctx context.Context) (models.Diagnostics, error) {
	raw, err := s.kv.Get(ctx, diagnosticsKey)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return models.Diagnostics{}, nil
		}
		return models.Diagnostics{}, fmt.Errorf("load diagnostics: %w", err)
	}

	var diag models.Diagnostics
	if err = json.Unmarshal(raw, &diag); err != nil {
		return models.Diagnostics{}, fmt.Errorf("decode diagnostics: %w", err)
	}
	return diag, nil
}

func (s *diagnosticsStore) Save(ctx context.Context, diag models.Diagnostics) error {
	raw, err := json.Marshal(diag)
	if err != nil {
		return fmt.Errorf("encode diagnostics: %w", err)
	}

	if err = s.kv.Put(ctx, diagnosticsKey, raw); err != nil {
		s.logger.Err(err).
			Str("func", "diagnosticsStore.Save").
			Msg("failed to persist diagnostics")
		return fmt.Errorf("persist diagnostics: %w", err)
	}
	return nil
}

func (s *diagnosticsStore) Purge(ctx context.Context) error {
	if err := s.kv.Delete(ctx, diagnosticsKey); err != nil {
		return fmt.Errorf("purge diagnostics: %w", err)
	}
	return nil
}
