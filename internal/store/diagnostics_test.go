// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripkeep/go-trip-keeper/internal/logger"
	"github.com/tripkeep/go-trip-keeper/models"
)

func TestDiagnosticsStore_LoadBeforeSaveReturnsZero(t *testing.T) {
	s := NewDiagnosticsStore(NewMemoryKVStore(), logger.Nop())

	diag, err := s.Load(context.Background())

	require.NoError(t, err)
	assert.Zero(t, diag)
}

func TestDiagnosticsStore_SaveThenLoad(t *testing.T) {
	s := NewDiagnosticsStore(NewMemoryKVStore(), logger.Nop())
	ctx := context.Background()

	want := models.Diagnostics{
		LastHealthCheck: time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC),
		RecordCount:     4,
		PendingWrites:   2,
		Degraded:        true,
	}
	require.NoError(t, s.Save(ctx, want))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDiagnosticsStore_Purge(t *testing.T) {
	s := NewDiagnosticsStore(NewMemoryKVStore(), logger.Nop())
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, models.Diagnostics{RecordCount: 1}))
	require.NoError(t, s.Purge(ctx))

	diag, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Zero(t, diag)
}
