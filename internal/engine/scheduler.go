// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"sync"
	"time"

	"github.com/tripkeep/go-trip-keeper/internal/logger"
	"github.com/tripkeep/go-trip-keeper/models"
)

// WriteDispatcher is the sink the scheduler drains into. Satisfied by
// [*Engine].
type WriteDispatcher interface {
	Write(ctx context.Context, id string, patch models.RecordPatch) error
}

// Scheduler debounces rapid local edits into a single outgoing write per
// record per quiet period. Each Schedule call for a record cancels the
// outstanding timer for that record, overlays the new patch on the held
// one (later field values win), and restarts the timer; when it fires
// uninterrupted the coalesced patch is dispatched.
type Scheduler struct {
	quiet    time.Duration
	dispatch WriteDispatcher
	logger   *logger.Logger

	mu      sync.Mutex
	pending map[string]*scheduledWrite
}

type scheduledWrite struct {
	timer *time.Timer
	patch models.RecordPatch
	// gen invalidates an expired timer whose callback lost the race
	// against a restart; only the current generation may dispatch.
	gen uint64
}

// NewScheduler builds a write scheduler with the given quiet period.
func NewScheduler(quiet time.Duration, dispatch WriteDispatcher, log *logger.Logger) *Scheduler {
	return &Scheduler{
		quiet:    quiet,
		dispatch: dispatch,
		logger:   log,
		pending:  make(map[string]*scheduledWrite),
	}
}

// Schedule registers a partial update for the record, restarting the
// record's quiet-period timer. Many semantically-overlapping edits within
// the quiet period collapse into one write carrying the last value of
// every touched field.
func (s *Scheduler) Schedule(id string, patch models.RecordPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if held, ok := s.pending[id]; ok {
		held.timer.Stop()
		held.patch = held.patch.Overlay(patch)
		held.gen++
		held.timer = s.newTimer(id, held.gen)
		return
	}

	s.pending[id] = &scheduledWrite{
		timer: s.newTimer(id, 0),
		patch: patch,
	}
}

// Flush dispatches the held patch for id immediately, if any.
func (s *Scheduler) Flush(id string) {
	s.mu.Lock()
	held, ok := s.pending[id]
	if ok {
		held.timer.Stop()
		delete(s.pending, id)
	}
	s.mu.Unlock()

	if ok {
		s.fire(id, held.patch)
	}
}

// Stop cancels all timers, dispatching every held patch so the final state
// of an edit session is never dropped.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	held := s.pending
	s.pending = make(map[string]*scheduledWrite)
	s.mu.Unlock()

	for id, write := range held {
		write.timer.Stop()
		s.fire(id, write.patch)
	}
}

func (s *Scheduler) newTimer(id string, gen uint64) *time.Timer {
	return time.AfterFunc(s.quiet, func() {
		s.expire(id, gen)
	})
}

// expire dispatches the held patch for id when the firing timer is still
// the current one. A timer that expired concurrently with a Schedule
// restart (Stop came too late to cancel the callback) carries a stale
// generation and must not cut the restarted quiet period short.
func (s *Scheduler) expire(id string, gen uint64) {
	s.mu.Lock()
	held, ok := s.pending[id]
	if ok && held.gen != gen {
		s.mu.Unlock()
		return
	}
	if ok {
		delete(s.pending, id)
	}
	s.mu.Unlock()

	if ok {
		s.fire(id, held.patch)
	}
}

func (s *Scheduler) fire(id string, patch models.RecordPatch) {
	if err := s.dispatch.Write(context.Background(), id, patch); err != nil {
		s.logger.Err(err).
			Str("func", "Scheduler.fire").
			Str("record_id", id).
			Msg("debounced write failed")
	}
}
