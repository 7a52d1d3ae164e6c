// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripkeep/go-trip-keeper/internal/logger"
	"github.com/tripkeep/go-trip-keeper/models"
)

func TestListSnapshot_NeverWrittenReturnsEmptySlice(t *testing.T) {
	s := NewListSnapshot(NewMemoryKVStore(), logger.Nop())

	records, err := s.Get(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestListSnapshot_PutReplacesWholeCollection(t *testing.T) {
	s := NewListSnapshot(NewMemoryKVStore(), logger.Nop())
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, []models.Record{
		{ID: "a", Title: "A"},
		{ID: "b", Title: "B"},
	}))
	require.NoError(t, s.Put(ctx, []models.Record{
		{ID: "c", Title: "C"},
	}))

	records, err := s.Get(ctx)
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "c", records[0].ID)
}

func TestListSnapshot_PreservesOrder(t *testing.T) {
	s := NewListSnapshot(NewMemoryKVStore(), logger.Nop())
	ctx := context.Background()

	in := []models.Record{{ID: "z"}, {ID: "a"}, {ID: "m"}}
	require.NoError(t, s.Put(ctx, in))

	out, err := s.Get(ctx)
	require.NoError(t, err)

	require.Len(t, out, 3)
	assert.Equal(t, "z", out[0].ID)
	assert.Equal(t, "a", out[1].ID)
	assert.Equal(t, "m", out[2].ID)
}

func TestListSnapshot_Purge(t *testing.T) {
	s := NewListSnapshot(NewMemoryKVStore(), logger.Nop())
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, []models.Record{{ID: "a"}}))
	require.NoError(t, s.Purge(ctx))

	records, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}
