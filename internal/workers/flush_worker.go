// SPDX-License-Identifier: Apache-2.0

package workers

import (
	"context"
	"sync"
	"time"

	"github.com/tripkeep/go-trip-keeper/internal/connectivity"
	"github.com/tripkeep/go-trip-keeper/internal/logger"
)

// Flusher is the slice of the reconciliation engine the flush worker needs.
type Flusher interface {
	Flush(ctx context.Context) error
}

// Refresher is the slice of the list aggregator the flush worker needs.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// FlushWorker drains the pending-write queue on every offline→online edge
// and keeps the collection snapshot fresh. The presentation layer is not
// involved: reconnection alone triggers the flush.
type FlushWorker struct {
	flusher   Flusher
	refresher Refresher
	monitor   *connectivity.Monitor
	interval  time.Duration
	logger    *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewFlushWorker creates a FlushWorker. interval enables an additional
// periodic refresh while online; zero disables it. The worker is idle
// until Run is called.
func NewFlushWorker(
	flusher Flusher,
	refresher Refresher,
	monitor *connectivity.Monitor,
	interval time.Duration,
	log *logger.Logger,
) *FlushWorker {
	return &FlushWorker{
		flusher:   flusher,
		refresher: refresher,
		monitor:   monitor,
		interval:  interval,
		logger:    log,
	}
}

// Run implements [Worker]. It subscribes to the connectivity monitor and,
// when the interval is set, launches the periodic refresh goroutine. Safe
// to call once; use Stop for orderly shutdown.
func (w *FlushWorker) Run() {
	w.mu.Lock()
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.mu.Unlock()

	unsubscribe := w.monitor.Subscribe(func(online bool) {
		if !online {
			return
		}
		w.flushAndRefresh(ctx)
	})

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer unsubscribe()

		if w.interval <= 0 {
			<-ctx.Done()
			return
		}

		t := time.NewTicker(w.interval)
		defer t.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if !w.monitor.IsOnline() {
					continue
				}
				if err := w.refresher.Refresh(ctx); err != nil {
					w.logger.Debug().
						Str("func", "FlushWorker.Run").
						Err(err).
						Msg("periodic refresh failed")
				}
			}
		}
	}()
}

// Stop cancels the worker's context and blocks until its goroutine has
// fully exited. Safe to call when the worker is not running.
func (w *FlushWorker) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	w.wg.Wait()
}

func (w *FlushWorker) flushAndRefresh(ctx context.Context) {
	if err := w.flusher.Flush(ctx); err != nil {
		// queue left intact, next edge or explicit trigger retries
		w.logger.Warn().
			Str("func", "FlushWorker.flushAndRefresh").
			Err(err).
			Msg("flush on reconnect failed")
		return
	}

	if err := w.refresher.Refresh(ctx); err != nil {
		w.logger.Debug().
			Str("func", "FlushWorker.flushAndRefresh").
			Err(err).
			Msg("post-flush refresh failed")
	}
}
