// SPDX-License-Identifier: Apache-2.0

// Package engine implements the offline-first reconciliation engine: the
// component that lets a client read and write records while disconnected,
// guarantees no locally-entered change is silently lost, and converges the
// client's view with the remote store once connectivity returns.
//
// The engine owns all business policy: optimistic cache-first writes,
// stale-while-revalidate reads, status auto-promotion, the pending-write
// queue lifecycle, and the all-or-nothing flush. Remote unavailability is
// never fatal and never surfaced as an error for writes; it is absorbed
// into dirty state and replayed later.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tripkeep/go-trip-keeper/internal/adapter"
	"github.com/tripkeep/go-trip-keeper/internal/connectivity"
	"github.com/tripkeep/go-trip-keeper/internal/logger"
	"github.com/tripkeep/go-trip-keeper/internal/normalize"
	"github.com/tripkeep/go-trip-keeper/internal/store"
	"github.com/tripkeep/go-trip-keeper/models"
)

// Engine is the reconciliation core. Construct with [New]; all methods are
// safe for concurrent use.
type Engine struct {
	storages   *store.Storages
	remote     adapter.RemoteStore
	monitor    *connectivity.Monitor
	normalizer *normalize.Normalizer
	ids        normalize.IDGenerator
	list       *ListAggregator
	enricher   Enricher
	logger     *logger.Logger
	now        func() time.Time

	mu           sync.Mutex
	subs         map[string]map[int]func(models.Record)
	nextSubID    int
	revalidating map[string]bool

	flushMu sync.Mutex
	wg      sync.WaitGroup
}

// New wires the reconciliation engine. A nil ids generator falls back to
// UUIDs, matching the normalizer's default.
func New(
	storages *store.Storages,
	remote adapter.RemoteStore,
	monitor *connectivity.Monitor,
	normalizer *normalize.Normalizer,
	log *logger.Logger,
) *Engine {
	if normalizer == nil {
		normalizer = normalize.New(nil)
	}

	e := &Engine{
		storages:     storages,
		remote:       remote,
		monitor:      monitor,
		normalizer:   normalizer,
		ids:          normalize.NewUUIDGenerator(),
		logger:       log,
		now:          time.Now,
		subs:         make(map[string]map[int]func(models.Record)),
		revalidating: make(map[string]bool),
	}
	e.list = NewListAggregator(storages, remote, log)
	return e
}

// ListAggregator exposes the collection-level view backing listing screens.
func (e *Engine) ListAggregator() *ListAggregator {
	return e.list
}

// IsOnline reports the connectivity monitor's current signal. Advisory,
// for UI indicators.
func (e *Engine) IsOnline() bool {
	return e.monitor.IsOnline()
}

// HasUnsyncedChanges reports whether the pending-write queue holds any
// unconfirmed updates. Advisory, for UI indicators.
func (e *Engine) HasUnsyncedChanges(ctx context.Context) (bool, error) {
	empty, err := e.storages.PendingQueue.IsEmpty(ctx)
	if err != nil {
		return false, fmt.Errorf("check pending queue: %w", err)
	}
	return !empty, nil
}

// Read returns the record with the given id.
//
// A cached entry is returned immediately; when connectivity is up a
// background revalidation is started and subscribers are notified once the
// authoritative remote value arrives (stale-while-revalidate). With no
// cache entry the read blocks on the remote call when online; if that also
// fails, or connectivity is down, Read reports [ErrNotFoundLocally].
func (e *Engine) Read(ctx context.Context, id string) (models.Record, error) {
	entry, ok, err := e.storages.RecordCache.Get(ctx, id)
	if err != nil {
		return models.Record{}, fmt.Errorf("read cache entry: %w", err)
	}

	if ok {
		if e.monitor.IsOnline() {
			e.revalidate(id)
		}
		return entry.Record, nil
	}

	if !e.monitor.IsOnline() {
		return models.Record{}, fmt.Errorf("%w: %s", ErrNotFoundLocally, id)
	}

	record, err := e.remote.Get(ctx, id)
	if err != nil {
		e.logger.Debug().
			Str("func", "Engine.Read").
			Str("record_id", id).
			Err(err).
			Msg("remote read failed with no local copy")
		return models.Record{}, fmt.Errorf("%w: %s", ErrNotFoundLocally, id)
	}

	if err = e.storeCanonical(ctx, record); err != nil {
		return models.Record{}, err
	}
	return record, nil
}

// ReadAll returns the cached collection, triggering a background refresh
// when connectivity is up.
func (e *Engine) ReadAll(ctx context.Context) ([]models.Record, error) {
	records, err := e.list.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	if e.monitor.IsOnline() {
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			if refreshErr := e.list.Refresh(context.Background()); refreshErr != nil {
				e.logger.Debug().
					Str("func", "Engine.ReadAll").
					Err(refreshErr).
					Msg("background list refresh failed")
			}
		}()
	}

	return records, nil
}

// Write applies a partial update to the record.
//
// The patch is merged over the cached value synchronously first (over an
// empty base if none exists), so the caller's next read reflects exactly
// what was just entered. Status auto-promotion is computed against that
// merged state and folded into the same patch. The remote round-trip then
// either replaces the cache with the server's canonical value, or hands the
// patch to the pending-write queue on any failure to complete.
// Remote failures are absorbed, never returned.
func (e *Engine) Write(ctx context.Context, id string, patch models.RecordPatch) error {
	entry, ok, err := e.storages.RecordCache.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("read cache entry for write: %w", err)
	}

	base := entry.Record
	if !ok {
		base = models.Record{ID: id, Status: models.StatusIncomplete}
	}

	merged := patch.Apply(base)
	merged.ID = id
	if promoteStatus(&merged) {
		status := merged.Status
		patch.Status = &status
	}
	now := e.now().UTC()
	merged.UpdatedAt = &now

	if err = e.storages.RecordCache.Put(ctx, id, merged); err != nil {
		return fmt.Errorf("optimistic cache write: %w", err)
	}
	if err = e.list.upsert(ctx, merged); err != nil {
		return fmt.Errorf("optimistic list write: %w", err)
	}

	if !e.monitor.IsOnline() {
		return e.deferWrite(ctx, id, patch)
	}

	canonical, err := e.remote.Patch(ctx, id, patch)
	if err != nil {
		e.logger.Info().
			Str("func", "Engine.Write").
			Str("record_id", id).
			Err(err).
			Msg("remote write failed, deferring to pending queue")
		return e.deferWrite(ctx, id, patch)
	}

	return e.storeCanonical(ctx, canonical)
}

// Create stores an initial record, assigning an id when it has none, and
// returns the record the caller should display: the server's canonical
// value when the round-trip succeeds, the normalized optimistic value
// otherwise.
func (e *Engine) Create(ctx context.Context, initial models.Record) (models.Record, error) {
	if initial.ID == "" {
		initial.ID = e.ids.Generate()
	}

	record, _, err := e.normalizer.Normalize(models.RawRecord{Record: initial})
	if err != nil {
		return models.Record{}, fmt.Errorf("normalize initial record: %w", err)
	}

	now := e.now().UTC()
	record.CreatedAt = &now
	record.UpdatedAt = &now
	promoteStatus(&record)

	if err = e.storages.RecordCache.Put(ctx, record.ID, record); err != nil {
		return models.Record{}, fmt.Errorf("optimistic cache write: %w", err)
	}
	if err = e.list.upsert(ctx, record); err != nil {
		return models.Record{}, fmt.Errorf("optimistic list write: %w", err)
	}

	if !e.monitor.IsOnline() {
		if err = e.deferWrite(ctx, record.ID, models.PatchFromRecord(record)); err != nil {
			return models.Record{}, err
		}
		return record, nil
	}

	canonical, err := e.remote.Create(ctx, record)
	if err != nil {
		e.logger.Info().
			Str("func", "Engine.Create").
			Str("record_id", record.ID).
			Err(err).
			Msg("remote create failed, deferring to pending queue")
		if err = e.deferWrite(ctx, record.ID, models.PatchFromRecord(record)); err != nil {
			return models.Record{}, err
		}
		return record, nil
	}

	if err = e.storeCanonical(ctx, canonical); err != nil {
		return models.Record{}, err
	}
	return canonical, nil
}

// Delete removes the record locally and on the remote. A delete that cannot
// reach the remote is queued as a tombstone patch and replayed on flush.
func (e *Engine) Delete(ctx context.Context, id string) error {
	if err := e.storages.RecordCache.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete cache entry: %w", err)
	}
	if err := e.list.remove(ctx, id); err != nil {
		return fmt.Errorf("delete list entry: %w", err)
	}

	deleted := true
	tombstone := models.RecordPatch{Deleted: &deleted}

	if !e.monitor.IsOnline() {
		return e.deferWrite(ctx, id, tombstone)
	}

	err := e.remote.Delete(ctx, id)
	if err != nil && !errors.Is(err, adapter.ErrNotFound) {
		e.logger.Info().
			Str("func", "Engine.Delete").
			Str("record_id", id).
			Err(err).
			Msg("remote delete failed, deferring tombstone to pending queue")
		return e.deferWrite(ctx, id, tombstone)
	}

	return nil
}

// Flush replays every pending write against the remote store in enqueue
// order. Only when every item succeeds are the snapshotted items dropped
// (writes that landed during the replay stay queued for the next flush),
// followed by a fresh remote read per affected record to re-synchronize
// the cache with the server's canonical post-flush value. On any failure
// the queue is left untouched in full; the next flush re-replays from the
// beginning, which is safe because every patch is a field-level
// replacement.
func (e *Engine) Flush(ctx context.Context) error {
	e.flushMu.Lock()
	defer e.flushMu.Unlock()

	items, err := e.storages.PendingQueue.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("snapshot pending queue: %w", err)
	}
	if len(items) == 0 {
		return nil
	}

	e.logger.Info().
		Str("func", "Engine.Flush").
		Int("items", len(items)).
		Msg("replaying pending writes")

	for i, item := range items {
		if _, err = e.remote.Patch(ctx, item.RecordID, item.Patch); err != nil {
			e.logger.Warn().
				Str("func", "Engine.Flush").
				Str("record_id", item.RecordID).
				Int("item", i).
				Err(err).
				Msg("flush aborted, queue left untouched")
			return fmt.Errorf("replay pending write for %s: %w", item.RecordID, err)
		}
	}

	if err = e.storages.PendingQueue.Ack(ctx, len(items)); err != nil {
		return fmt.Errorf("ack replayed writes: %w", err)
	}

	e.resyncAfterFlush(ctx, items)
	return nil
}

// resyncAfterFlush re-reads every affected record so the cache reflects any
// server-side transformation of the flushed data.
func (e *Engine) resyncAfterFlush(ctx context.Context, items []models.PendingWrite) {
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if seen[item.RecordID] {
			continue
		}
		seen[item.RecordID] = true

		record, err := e.remote.Get(ctx, item.RecordID)
		if err != nil {
			if errors.Is(err, adapter.ErrNotFound) {
				// tombstone applied server-side
				_ = e.storages.RecordCache.Delete(ctx, item.RecordID)
				_ = e.list.remove(ctx, item.RecordID)
				continue
			}
			e.logger.Warn().
				Str("func", "Engine.resyncAfterFlush").
				Str("record_id", item.RecordID).
				Err(err).
				Msg("post-flush re-read failed, cache keeps optimistic value")
			continue
		}

		if record.Deleted {
			_ = e.storages.RecordCache.Delete(ctx, item.RecordID)
			_ = e.list.remove(ctx, item.RecordID)
			continue
		}

		if err = e.storeCanonical(ctx, record); err != nil {
			e.logger.Warn().
				Str("func", "Engine.resyncAfterFlush").
				Str("record_id", item.RecordID).
				Err(err).
				Msg("post-flush cache update failed")
		}
	}
}

// Health recomputes and persists the diagnostics record.
func (e *Engine) Health(ctx context.Context) (models.Diagnostics, error) {
	ids, err := e.storages.RecordCache.KnownIDs(ctx)
	if err != nil {
		return models.Diagnostics{}, fmt.Errorf("count cached records: %w", err)
	}
	pending, err := e.storages.PendingQueue.Len(ctx)
	if err != nil {
		return models.Diagnostics{}, fmt.Errorf("count pending writes: %w", err)
	}

	diag := models.Diagnostics{
		LastHealthCheck: e.now().UTC(),
		RecordCount:     len(ids),
		PendingWrites:   pending,
		Degraded:        e.storages.Degraded,
	}

	if err = e.storages.Diagnostics.Save(ctx, diag); err != nil {
		return models.Diagnostics{}, err
	}
	return diag, nil
}

// ClearAllLocalData destroys the record cache, the pending-write queue, the
// list snapshot, and the diagnostics record. This is the only operation
// that removes local data; normal engine operation never does.
func (e *Engine) ClearAllLocalData(ctx context.Context) error {
	if err := e.storages.RecordCache.Purge(ctx); err != nil {
		return fmt.Errorf("purge record cache: %w", err)
	}
	if err := e.storages.PendingQueue.Clear(ctx); err != nil {
		return fmt.Errorf("clear pending queue: %w", err)
	}
	if err := e.storages.ListSnapshot.Purge(ctx); err != nil {
		return fmt.Errorf("purge list snapshot: %w", err)
	}
	if err := e.storages.Diagnostics.Purge(ctx); err != nil {
		return fmt.Errorf("purge diagnostics: %w", err)
	}

	e.logger.Info().
		Str("func", "Engine.ClearAllLocalData").
		Msg("all local data cleared")
	return nil
}

// Subscribe registers a callback invoked whenever a background revalidation
// or post-flush re-read produces a fresh authoritative value for id. The
// returned cancel function unregisters the callback.
func (e *Engine) Subscribe(id string, fn func(models.Record)) (cancel func()) {
	e.mu.Lock()
	subID := e.nextSubID
	e.nextSubID++
	if e.subs[id] == nil {
		e.subs[id] = make(map[int]func(models.Record))
	}
	e.subs[id][subID] = fn
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		if subs, ok := e.subs[id]; ok {
			delete(subs, subID)
			if len(subs) == 0 {
				delete(e.subs, id)
			}
		}
		e.mu.Unlock()
	}
}

// Wait blocks until all background tasks spawned by the engine have
// finished. Intended for orderly shutdown and tests.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// revalidate starts a background remote read for id unless one is already
// in flight. The fresh value overwrites the cache entry and notifies
// subscribers; its absence or delay never blocks the caller.
func (e *Engine) revalidate(id string) {
	e.mu.Lock()
	if e.revalidating[id] {
		e.mu.Unlock()
		return
	}
	e.revalidating[id] = true
	e.mu.Unlock()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer func() {
			e.mu.Lock()
			delete(e.revalidating, id)
			e.mu.Unlock()
		}()

		ctx := context.Background()
		record, err := e.remote.Get(ctx, id)
		if err != nil {
			// a miss or outage during revalidation leaves the cached value in place
			e.logger.Debug().
				Str("func", "Engine.revalidate").
				Str("record_id", id).
				Err(err).
				Msg("background revalidation failed")
			return
		}

		if err = e.storeCanonical(ctx, record); err != nil {
			e.logger.Warn().
				Str("func", "Engine.revalidate").
				Str("record_id", id).
				Err(err).
				Msg("failed to store revalidated record")
		}
	}()
}

// storeCanonical persists an authoritative remote value into the cache and
// list snapshot and notifies subscribers.
func (e *Engine) storeCanonical(ctx context.Context, record models.Record) error {
	if err := e.storages.RecordCache.Put(ctx, record.ID, record); err != nil {
		return fmt.Errorf("store canonical record: %w", err)
	}
	if err := e.list.upsert(ctx, record); err != nil {
		return fmt.Errorf("store canonical list entry: %w", err)
	}

	e.notify(record)
	return nil
}

func (e *Engine) notify(record models.Record) {
	e.mu.Lock()
	callbacks := make([]func(models.Record), 0, len(e.subs[record.ID]))
	for _, fn := range e.subs[record.ID] {
		callbacks = append(callbacks, fn)
	}
	e.mu.Unlock()

	for _, fn := range callbacks {
		fn(record)
	}
}

// deferWrite hands a patch to the pending-write queue; the record is dirty
// until the next successful flush.
func (e *Engine) deferWrite(ctx context.Context, id string, patch models.RecordPatch) error {
	if err := e.storages.PendingQueue.Enqueue(ctx, id, patch); err != nil {
		return fmt.Errorf("enqueue pending write: %w", err)
	}
	return nil
}

// promoteStatus applies the automatic status transition: a record still in
// the initial incomplete status becomes ready once the minimum set of
// fields is populated. Computed against the merged optimistic state so the
// promotion rides along in the same write. Reports whether it promoted.
func promoteStatus(record *models.Record) bool {
	if record.Status != models.StatusIncomplete {
		return false
	}
	if record.Title == "" || record.Destination == "" || len(record.Lodgings) == 0 {
		return false
	}

	record.Status = models.StatusReady
	return true
}
