// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tripkeep/go-trip-keeper/internal/logger"
	"github.com/tripkeep/go-trip-keeper/models"
)

const recordKeyPrefix = "record/"

func recordKey(id string) string {
	return recordKeyPrefix + id
}

type recordCache struct {
	kv     KVStore
	logger *logger.Logger
	now    func() time.Time
}

// NewRecordCache builds the per-record cache surface on top of the durable
// local store.
func NewRecordCache(kv KVStore, logger *logger.Logger) RecordCache {
	return &recordCache{
		kv:     kv,
		logger: logger,
		now:    time.Now,
	}
}

func (c *recordCache) Get(ctx context.Context, id string) (models.CacheEntry, bool, error) {
	raw, err := c.kv.Get(ctx, recordKey(id))
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return models.CacheEntry{}, false, nil
		}
		return models.CacheEntry{}, false, fmt.Errorf("get cache entry (id=%s): %w", id, err)
	}

	var entry models.CacheEntry
	if err = json.Unmarshal(raw, &entry); err != nil {
		c.logger.Err(err).
			Str("func", "recordCache.Get").
			Str("record_id", id).
			Msg("failed to decode cache entry")
		return models.CacheEntry{}, false, fmt.Errorf("decode cache entry (id=%s): %w", id, err)
	}

	return entry, true, nil
}

func (c *recordCache) Put(ctx context.Context, id string, record models.Record) error {
	entry := models.CacheEntry{
		Record:      record,
		LastWriteAt: c.now().UTC(),
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry (id=%s): %w", id, err)
	}

	if err = c.kv.Put(ctx, recordKey(id), raw); err != nil {
		c.logger.Err(err).
			Str("func", "recordCache.Put").
			Str("record_id", id).
			Msg("failed to persist cache entry")
		return fmt.Errorf("put cache entry (id=%s): %w", id, err)
	}

	return nil
}

func (c *recordCache) Delete(ctx context.Context, id string) error {
	if err := c.kv.Delete(ctx, recordKey(id)); err != nil {
		return fmt.Errorf("delete cache entry (id=%s): %w", id, err)
	}
	return nil
}

func (c *recordCache) KnownIDs(ctx context.Context) ([]string, error) {
	keys, err := c.kv.Keys(ctx, recordKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("list cache keys: %w", err)
	}

	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		ids = append(ids, strings.TrimPrefix(key, recordKeyPrefix))
	}
	return ids, nil
}

func (c *recordCache) GetMany(ctx context.Context, ids []string) (map[string]models.CacheEntry, error) {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, recordKey(id))
	}

	raw, err := c.kv.GetMany(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("get cache entries: %w", err)
	}

	entries := make(map[string]models.CacheEntry, len(raw))
	for key, value := range raw {
		var entry models.CacheEntry
		if err = json.Unmarshal(value, &entry); err != nil {
			return nil, fmt.Errorf("decode cache entry (key=%s): %w", key, err)
		}
		entries[strings.TrimPrefix(key, recordKeyPrefix)] = entry
	}

	return entries, nil
}

func (c *recordCache) Purge(ctx context.Context) error {
	ids, err := c.KnownIDs(ctx)
	if err != nil {
		return fmt.Errorf("purge record cache: %w", err)
	}

	for _, id := range ids {
		if err = c.kv.Delete(ctx, recordKey(id)); err != nil {
			return fmt.Errorf("purge cache entry (id=%s): %w", id, err)
		}
	}
	return nil
}
