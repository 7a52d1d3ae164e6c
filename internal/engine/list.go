// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/tripkeep/go-trip-keeper/internal/adapter"
	"github.com/tripkeep/go-trip-keeper/internal/logger"
	"github.com/tripkeep/go-trip-keeper/internal/store"
	"github.com/tripkeep/go-trip-keeper/models"
)

// ListAggregator maintains the denormalized full-collection cache used by
// listing screens, applying the loss-avoidance and merge rules at
// collection granularity.
type ListAggregator struct {
	storages *store.Storages
	remote   adapter.RemoteStore
	logger   *logger.Logger

	// mu serializes snapshot read-merge-write cycles; upserts from
	// foreground writes and revalidation goroutines race background
	// refreshes otherwise.
	mu sync.Mutex
}

func NewListAggregator(storages *store.Storages, remote adapter.RemoteStore, log *logger.Logger) *ListAggregator {
	return &ListAggregator{
		storages: storages,
		remote:   remote,
		logger:   log,
	}
}

// GetAll returns the cached collection. When the snapshot was lost but
// per-record cache entries survive, the collection is reconstructed from
// them and re-persisted.
func (a *ListAggregator) GetAll(ctx context.Context) ([]models.Record, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	cached, err := a.storages.ListSnapshot.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load list snapshot: %w", err)
	}
	if len(cached) > 0 {
		return cached, nil
	}

	rebuilt, err := a.rebuildFromCache(ctx)
	if err != nil {
		return nil, err
	}
	if len(rebuilt) > 0 {
		if err = a.storages.ListSnapshot.Put(ctx, rebuilt); err != nil {
			return nil, fmt.Errorf("persist rebuilt snapshot: %w", err)
		}
		return rebuilt, nil
	}

	return cached, nil
}

// Refresh performs a remote full-collection read and merges the result into
// the snapshot:
//
//  1. an empty remote result against a non-empty cache is treated as
//     suspect and discarded (loss avoidance);
//  2. on overlap the remote value wins per id; ids present only locally
//     (e.g. records created offline and not yet acknowledged) survive
//     untouched;
//  3. an empty cache adopts the remote collection outright;
//  4. both empty: nothing is written.
func (a *ListAggregator) Refresh(ctx context.Context) error {
	// the remote round-trip happens outside the lock; the merge below
	// re-reads the snapshot so writes that landed meanwhile are folded in
	remote, err := a.remote.List(ctx)
	if err != nil {
		return fmt.Errorf("remote collection read: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	cached, err := a.storages.ListSnapshot.Get(ctx)
	if err != nil {
		return fmt.Errorf("load list snapshot: %w", err)
	}

	switch {
	case len(remote) == 0 && len(cached) > 0:
		a.logger.Warn().
			Str("func", "ListAggregator.Refresh").
			Int("cached", len(cached)).
			Msg("empty remote collection discarded, keeping cached snapshot")
		return nil

	case len(remote) > 0 && len(cached) > 0:
		merged := mergeCollections(cached, remote)
		if err = a.storages.ListSnapshot.Put(ctx, merged); err != nil {
			return fmt.Errorf("persist merged snapshot: %w", err)
		}
		return nil

	case len(remote) > 0:
		if err = a.storages.ListSnapshot.Put(ctx, remote); err != nil {
			return fmt.Errorf("persist remote snapshot: %w", err)
		}
		return nil

	default:
		// both empty: leave the snapshot alone
		return nil
	}
}

// mergeCollections overwrites every cached entry whose id also appears in
// remote with the remote value, preserves locally-known ids the remote does
// not mention, and appends remote-only records in remote order.
func mergeCollections(cached, remote []models.Record) []models.Record {
	remoteByID := make(map[string]models.Record, len(remote))
	for _, record := range remote {
		remoteByID[record.ID] = record
	}

	merged := make([]models.Record, 0, len(cached)+len(remote))
	seen := make(map[string]bool, len(cached))
	for _, record := range cached {
		seen[record.ID] = true
		if fresh, ok := remoteByID[record.ID]; ok {
			merged = append(merged, fresh)
			continue
		}
		merged = append(merged, record)
	}

	for _, record := range remote {
		if !seen[record.ID] {
			merged = append(merged, record)
		}
	}

	return merged
}

func (a *ListAggregator) rebuildFromCache(ctx context.Context) ([]models.Record, error) {
	ids, err := a.storages.RecordCache.KnownIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cached ids: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	entries, err := a.storages.RecordCache.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load cached records: %w", err)
	}

	records := make([]models.Record, 0, len(entries))
	for _, id := range ids {
		if entry, ok := entries[id]; ok {
			records = append(records, entry.Record)
		}
	}

	a.logger.Info().
		Str("func", "ListAggregator.rebuildFromCache").
		Int("records", len(records)).
		Msg("list snapshot reconstructed from record cache")
	return records, nil
}

// upsert replaces (or appends) one record in the snapshot, keeping the
// collection coherent with per-record writes without a remote round-trip.
func (a *ListAggregator) upsert(ctx context.Context, record models.Record) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	cached, err := a.storages.ListSnapshot.Get(ctx)
	if err != nil {
		return fmt.Errorf("load list snapshot: %w", err)
	}

	replaced := false
	for i := range cached {
		if cached[i].ID == record.ID {
			cached[i] = record
			replaced = true
			break
		}
	}
	if !replaced {
		cached = append(cached, record)
	}

	return a.storages.ListSnapshot.Put(ctx, cached)
}

// remove drops one record from the snapshot.
func (a *ListAggregator) remove(ctx context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	cached, err := a.storages.ListSnapshot.Get(ctx)
	if err != nil {
		return fmt.Errorf("load list snapshot: %w", err)
	}

	kept := cached[:0]
	for _, record := range cached {
		if record.ID != id {
			kept = append(kept, record)
		}
	}
	if len(kept) == len(cached) {
		return nil
	}

	return a.storages.ListSnapshot.Put(ctx, kept)
}
