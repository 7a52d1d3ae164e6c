// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/tripkeep/go-trip-keeper/internal/adapter"
	"github.com/tripkeep/go-trip-keeper/models"
)

// ── GetAll ───────────────────────────────────────────────────────────────────

func TestListAggregator_GetAll_ServesSnapshot(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	eng, _, storages, _ := newTestEngine(t, ctrl, false)
	ctx := context.Background()

	want := []models.Record{{ID: "a", Title: "A"}, {ID: "b", Title: "B"}}
	require.NoError(t, storages.ListSnapshot.Put(ctx, want))

	got, err := eng.ListAggregator().GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestListAggregator_GetAll_RebuildsFromRecordCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	eng, _, storages, _ := newTestEngine(t, ctrl, false)
	ctx := context.Background()

	// snapshot lost, per-record entries survive
	require.NoError(t, storages.RecordCache.Put(ctx, "a", models.Record{ID: "a", Title: "A"}))
	require.NoError(t, storages.RecordCache.Put(ctx, "b", models.Record{ID: "b", Title: "B"}))

	got, err := eng.ListAggregator().GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// the reconstruction is persisted
	snapshot, err := storages.ListSnapshot.Get(ctx)
	require.NoError(t, err)
	assert.Len(t, snapshot, 2)
}

func TestListAggregator_GetAll_EmptyEverywhere(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	eng, _, _, _ := newTestEngine(t, ctrl, false)

	got, err := eng.ListAggregator().GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

// ── Refresh ──────────────────────────────────────────────────────────────────

func TestListAggregator_Refresh_EmptyRemoteDiscarded(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	eng, remote, storages, _ := newTestEngine(t, ctrl, true)
	ctx := context.Background()

	cached := []models.Record{{ID: "a", Title: "survives"}}
	require.NoError(t, storages.ListSnapshot.Put(ctx, cached))

	remote.EXPECT().List(gomock.Any()).Return([]models.Record{}, nil)

	require.NoError(t, eng.ListAggregator().Refresh(ctx))

	got, err := storages.ListSnapshot.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, cached, got, "empty remote result must not wipe the cached collection")
}

func TestListAggregator_Refresh_RemoteWinsPerIDLocalOnlySurvives(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	eng, remote, storages, _ := newTestEngine(t, ctrl, true)
	ctx := context.Background()

	require.NoError(t, storages.ListSnapshot.Put(ctx, []models.Record{
		{ID: "a", Title: "stale A"},
		{ID: "local-only", Title: "created offline"},
	}))

	remote.EXPECT().List(gomock.Any()).Return([]models.Record{
		{ID: "a", Title: "fresh A"},
		{ID: "remote-only", Title: "new on server"},
	}, nil)

	require.NoError(t, eng.ListAggregator().Refresh(ctx))

	got, err := storages.ListSnapshot.Get(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// cached order preserved, remote value wins per id
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "fresh A", got[0].Title)
	assert.Equal(t, "local-only", got[1].ID)
	assert.Equal(t, "created offline", got[1].Title)
	// remote-only records appended
	assert.Equal(t, "remote-only", got[2].ID)
}

func TestListAggregator_Refresh_EmptyCacheAdoptsRemote(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	eng, remote, storages, _ := newTestEngine(t, ctrl, true)
	ctx := context.Background()

	want := []models.Record{{ID: "a"}, {ID: "b"}}
	remote.EXPECT().List(gomock.Any()).Return(want, nil)

	require.NoError(t, eng.ListAggregator().Refresh(ctx))

	got, err := storages.ListSnapshot.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestListAggregator_Refresh_RemoteFailureSurfaced(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	eng, remote, storages, _ := newTestEngine(t, ctrl, true)
	ctx := context.Background()

	cached := []models.Record{{ID: "a"}}
	require.NoError(t, storages.ListSnapshot.Put(ctx, cached))

	remote.EXPECT().List(gomock.Any()).Return(nil, adapter.ErrRemoteUnavailable)

	err := eng.ListAggregator().Refresh(ctx)
	assert.ErrorIs(t, err, adapter.ErrRemoteUnavailable)

	got, getErr := storages.ListSnapshot.Get(ctx)
	require.NoError(t, getErr)
	assert.Equal(t, cached, got)
}

// ── mergeCollections ─────────────────────────────────────────────────────────

func TestMergeCollections_NoOverlap(t *testing.T) {
	cached := []models.Record{{ID: "a"}}
	remote := []models.Record{{ID: "b"}}

	merged := mergeCollections(cached, remote)

	require.Len(t, merged, 2)
	assert.Equal(t, "a", merged[0].ID)
	assert.Equal(t, "b", merged[1].ID)
}

func TestMergeCollections_FullOverlap(t *testing.T) {
	cached := []models.Record{{ID: "a", Title: "old"}}
	remote := []models.Record{{ID: "a", Title: "new"}}

	merged := mergeCollections(cached, remote)

	require.Len(t, merged, 1)
	assert.Equal(t, "new", merged[0].Title)
}

func TestListAggregator_ConcurrentUpsertsAllSurvive(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	eng, _, storages, _ := newTestEngine(t, ctrl, false)
	ctx := context.Background()
	agg := eng.ListAggregator()

	const writers = 100
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("rec-%03d", i)
			assert.NoError(t, agg.upsert(ctx, models.Record{ID: id, Title: id}))
		}(i)
	}
	wg.Wait()

	snapshot, err := storages.ListSnapshot.Get(ctx)
	require.NoError(t, err)
	assert.Len(t, snapshot, writers)
}

func TestListAggregator_Refresh_KeepsWriteLandedDuringRemoteRead(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	eng, remote, storages, _ := newTestEngine(t, ctrl, true)
	ctx := context.Background()
	agg := eng.ListAggregator()

	require.NoError(t, storages.ListSnapshot.Put(ctx, []models.Record{{ID: "a", Title: "A"}}))

	remote.EXPECT().List(gomock.Any()).
		DoAndReturn(func(ctx context.Context) ([]models.Record, error) {
			// an offline-created record is upserted while the remote read
			// is in flight
			require.NoError(t, agg.upsert(ctx, models.Record{ID: "b", Title: "created meanwhile"}))
			return []models.Record{{ID: "a", Title: "A-remote"}}, nil
		})

	require.NoError(t, agg.Refresh(ctx))

	snapshot, err := storages.ListSnapshot.Get(ctx)
	require.NoError(t, err)
	require.Len(t, snapshot, 2)
	assert.Equal(t, "A-remote", snapshot[0].Title)
	assert.Equal(t, "b", snapshot[1].ID)
}
