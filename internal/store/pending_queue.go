// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tripkeep/go-trip-keeper/internal/logger"
	"github.com/tripkeep/go-trip-keeper/models"
)

const pendingQueueKey = "pending"

type pendingQueue struct {
	kv     KVStore
	logger *logger.Logger
	now    func() time.Time

	// mu serializes every load-modify-persist cycle; the engine enqueues
	// from debounce timer and monitor callback goroutines concurrently.
	mu sync.Mutex
}

// NewPendingQueue builds the pending-write queue surface on top of the
// durable local store. The whole queue is persisted as one value so that
// Clear is atomic and a partially drained queue can never be observed.
func NewPendingQueue(kv KVStore, logger *logger.Logger) PendingQueue {
	return &pendingQueue{
		kv:     kv,
		logger: logger,
		now:    time.Now,
	}
}

func (q *pendingQueue) load(ctx context.Context) ([]models.PendingWrite, error) {
	raw, err := q.kv.Get(ctx, pendingQueueKey)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load pending queue: %w", err)
	}

	var items []models.PendingWrite
	if err = json.Unmarshal(raw, &items); err != nil {
		q.logger.Err(err).
			Str("func", "pendingQueue.load").
			Msg("failed to decode pending queue")
		return nil, fmt.Errorf("decode pending queue: %w", err)
	}
	return items, nil
}

func (q *pendingQueue) persist(ctx context.Context, items []models.PendingWrite) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode pending queue: %w", err)
	}
	if err = q.kv.Put(ctx, pendingQueueKey, raw); err != nil {
		return fmt.Errorf("persist pending queue: %w", err)
	}
	return nil
}

func (q *pendingQueue) Enqueue(ctx context.Context, id string, patch models.RecordPatch) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	items, err := q.load(ctx)
	if err != nil {
		return err
	}

	items = append(items, models.PendingWrite{
		RecordID:   id,
		Patch:      patch,
		EnqueuedAt: q.now().UTC(),
	})

	if err = q.persist(ctx, items); err != nil {
		q.logger.Err(err).
			Str("func", "pendingQueue.Enqueue").
			Str("record_id", id).
			Msg("failed to append pending write")
		return err
	}

	q.logger.Debug().
		Str("func", "pendingQueue.Enqueue").
		Str("record_id", id).
		Int("queue_len", len(items)).
		Msg("pending write enqueued")
	return nil
}

func (q *pendingQueue) Snapshot(ctx context.Context) ([]models.PendingWrite, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	items, err := q.load(ctx)
	if err != nil {
		return nil, err
	}
	return append([]models.PendingWrite(nil), items...), nil
}

func (q *pendingQueue) Ack(ctx context.Context, n int) error {
	if n <= 0 {
		return nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	items, err := q.load(ctx)
	if err != nil {
		return err
	}

	if n >= len(items) {
		if err = q.kv.Delete(ctx, pendingQueueKey); err != nil {
			return fmt.Errorf("clear pending queue: %w", err)
		}
		return nil
	}

	if err = q.persist(ctx, items[n:]); err != nil {
		q.logger.Err(err).
			Str("func", "pendingQueue.Ack").
			Int("acked", n).
			Msg("failed to drop replayed writes")
		return err
	}

	q.logger.Debug().
		Str("func", "pendingQueue.Ack").
		Int("acked", n).
		Int("queue_len", len(items)-n).
		Msg("replayed writes dropped, later items kept")
	return nil
}

func (q *pendingQueue) Clear(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if err := q.kv.Delete(ctx, pendingQueueKey); err != nil {
		return fmt.Errorf("clear pending queue: %w", err)
	}
	return nil
}

func (q *pendingQueue) IsEmpty(ctx context.Context) (bool, error) {
	n, err := q.Len(ctx)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

func (q *pendingQueue) Len(ctx context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	items, err := q.load(ctx)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}
