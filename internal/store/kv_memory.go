// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// memoryKVStore is the degraded-mode fallback used when the durable store
// cannot be opened. Data lives for the current session only.
type memoryKVStore struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewMemoryKVStore returns an in-memory [KVStore]. It also serves as the
// storage fake in tests.
func NewMemoryKVStore() KVStore {
	return &memoryKVStore{items: make(map[string][]byte)}
}

func (s *memoryKVStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.items[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return append([]byte(nil), value...), nil
}

func (s *memoryKVStore) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[key] = append([]byte(nil), value...)
	return nil
}

func (s *memoryKVStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, key)
	return nil
}

func (s *memoryKVStore) Keys(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	for key := range s.items {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *memoryKVStore) GetMany(_ context.Context, keys []string) (map[string][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string][]byte, len(keys))
	for _, key := range keys {
		if value, ok := s.items[key]; ok {
			result[key] = append([]byte(nil), value...)
		}
	}
	return result, nil
}

func (s *memoryKVStore) Close() error {
	return nil
}
