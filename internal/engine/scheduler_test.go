// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripkeep/go-trip-keeper/internal/logger"
	"github.com/tripkeep/go-trip-keeper/models"
)

// recordingDispatcher collects dispatched writes for assertions.
type recordingDispatcher struct {
	mu     sync.Mutex
	writes []dispatchedWrite
	done   chan struct{}
}

type dispatchedWrite struct {
	id    string
	patch models.RecordPatch
}

func newRecordingDispatcher() *recordingDispatcher {
	return &recordingDispatcher{done: make(chan struct{}, 16)}
}

func (d *recordingDispatcher) Write(_ context.Context, id string, patch models.RecordPatch) error {
	d.mu.Lock()
	d.writes = append(d.writes, dispatchedWrite{id: id, patch: patch})
	d.mu.Unlock()
	d.done <- struct{}{}
	return nil
}

func (d *recordingDispatcher) all() []dispatchedWrite {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]dispatchedWrite(nil), d.writes...)
}

func (d *recordingDispatcher) waitOne(t *testing.T) {
	t.Helper()
	select {
	case <-d.done:
	case <-time.After(2 * time.Second):
		t.Fatal("no write dispatched in time")
	}
}

func TestScheduler_DispatchesAfterQuietPeriod(t *testing.T) {
	dispatcher := newRecordingDispatcher()
	s := NewScheduler(20*time.Millisecond, dispatcher, logger.Nop())

	s.Schedule("rec-1", models.RecordPatch{Title: strPtr("typed")})

	dispatcher.waitOne(t)

	writes := dispatcher.all()
	require.Len(t, writes, 1)
	assert.Equal(t, "rec-1", writes[0].id)
	assert.Equal(t, "typed", *writes[0].patch.Title)
}

func TestScheduler_CoalescesRapidEdits(t *testing.T) {
	dispatcher := newRecordingDispatcher()
	s := NewScheduler(40*time.Millisecond, dispatcher, logger.Nop())

	// a burst of edits well inside the quiet period
	s.Schedule("rec-1", models.RecordPatch{Title: strPtr("H")})
	s.Schedule("rec-1", models.RecordPatch{Title: strPtr("He")})
	s.Schedule("rec-1", models.RecordPatch{Title: strPtr("Helsinki"), Notes: strPtr("June")})

	dispatcher.waitOne(t)

	writes := dispatcher.all()
	require.Len(t, writes, 1, "burst must collapse into one write")
	assert.Equal(t, "Helsinki", *writes[0].patch.Title)
	assert.Equal(t, "June", *writes[0].patch.Notes)
}

func TestScheduler_IndependentRecordsIndependentTimers(t *testing.T) {
	dispatcher := newRecordingDispatcher()
	s := NewScheduler(20*time.Millisecond, dispatcher, logger.Nop())

	s.Schedule("rec-1", models.RecordPatch{Title: strPtr("one")})
	s.Schedule("rec-2", models.RecordPatch{Title: strPtr("two")})

	dispatcher.waitOne(t)
	dispatcher.waitOne(t)

	writes := dispatcher.all()
	require.Len(t, writes, 2)
	ids := map[string]bool{writes[0].id: true, writes[1].id: true}
	assert.True(t, ids["rec-1"] && ids["rec-2"])
}

func TestScheduler_FlushDispatchesImmediately(t *testing.T) {
	dispatcher := newRecordingDispatcher()
	s := NewScheduler(time.Hour, dispatcher, logger.Nop())

	s.Schedule("rec-1", models.RecordPatch{Title: strPtr("held")})
	s.Flush("rec-1")

	dispatcher.waitOne(t)

	writes := dispatcher.all()
	require.Len(t, writes, 1)
	assert.Equal(t, "held", *writes[0].patch.Title)
}

func TestScheduler_FlushUnknownIDIsNoop(t *testing.T) {
	dispatcher := newRecordingDispatcher()
	s := NewScheduler(time.Hour, dispatcher, logger.Nop())

	s.Flush("never-scheduled")

	assert.Empty(t, dispatcher.all())
}

func TestScheduler_StopDispatchesEveryHeldPatch(t *testing.T) {
	dispatcher := newRecordingDispatcher()
	s := NewScheduler(time.Hour, dispatcher, logger.Nop())

	s.Schedule("rec-1", models.RecordPatch{Title: strPtr("one")})
	s.Schedule("rec-2", models.RecordPatch{Title: strPtr("two")})

	s.Stop()

	writes := dispatcher.all()
	assert.Len(t, writes, 2, "final edit state must not be dropped on shutdown")
}

func TestScheduler_NoDispatchAfterFlushConsumedPatch(t *testing.T) {
	dispatcher := newRecordingDispatcher()
	s := NewScheduler(30*time.Millisecond, dispatcher, logger.Nop())

	s.Schedule("rec-1", models.RecordPatch{Title: strPtr("once")})
	s.Flush("rec-1")
	dispatcher.waitOne(t)

	// the cancelled timer must not fire a second write
	time.Sleep(60 * time.Millisecond)
	assert.Len(t, dispatcher.all(), 1)
}

func TestScheduler_LateExpiryFromBeforeRestartIsIgnored(t *testing.T) {
	dispatcher := newRecordingDispatcher()
	s := NewScheduler(time.Hour, dispatcher, logger.Nop())
	defer s.Stop()

	s.Schedule("rec-1", models.RecordPatch{Title: strPtr("draft")})
	s.Schedule("rec-1", models.RecordPatch{Notes: strPtr("still typing")})

	// a timer armed before the restart expires after losing the Stop race;
	// it must not cut the restarted quiet period short
	s.expire("rec-1", 0)
	assert.Empty(t, dispatcher.all())

	// the current-generation expiry dispatches the coalesced patch
	s.expire("rec-1", 1)
	dispatcher.waitOne(t)

	writes := dispatcher.all()
	require.Len(t, writes, 1)
	assert.Equal(t, "draft", *writes[0].patch.Title)
	assert.Equal(t, "still typing", *writes[0].patch.Notes)
}
