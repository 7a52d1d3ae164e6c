// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryKVStore_GetPutDelete(t *testing.T) {
	kv := NewMemoryKVStore()
	ctx := context.Background()

	_, err := kv.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, kv.Put(ctx, "record/1", []byte(`{"a":1}`)))

	got, err := kv.Get(ctx, "record/1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), got)

	require.NoError(t, kv.Delete(ctx, "record/1"))
	_, err = kv.Get(ctx, "record/1")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	// deleting an absent key is not an error
	assert.NoError(t, kv.Delete(ctx, "record/1"))
}

func TestMemoryKVStore_GetReturnsCopy(t *testing.T) {
	kv := NewMemoryKVStore()
	ctx := context.Background()

	require.NoError(t, kv.Put(ctx, "k", []byte("abc")))

	got, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	got[0] = 'z'

	again, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}

func TestMemoryKVStore_KeysFiltersAndSorts(t *testing.T) {
	kv := NewMemoryKVStore()
	ctx := context.Background()

	require.NoError(t, kv.Put(ctx, "record/b", []byte("1")))
	require.NoError(t, kv.Put(ctx, "record/a", []byte("2")))
	require.NoError(t, kv.Put(ctx, "pending", []byte("3")))

	keys, err := kv.Keys(ctx, "record/")
	require.NoError(t, err)

	assert.Equal(t, []string{"record/a", "record/b"}, keys)
}

func TestMemoryKVStore_GetManySkipsMissing(t *testing.T) {
	kv := NewMemoryKVStore()
	ctx := context.Background()

	require.NoError(t, kv.Put(ctx, "record/a", []byte("1")))

	values, err := kv.GetMany(ctx, []string{"record/a", "record/missing"})
	require.NoError(t, err)

	assert.Len(t, values, 1)
	assert.Equal(t, []byte("1"), values["record/a"])
}
