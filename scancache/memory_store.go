// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scancache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements Store in memory.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[Key]memEntry
}

type memEntry struct {
	Entry
	used time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[Key]memEntry)}
}

// Get gets the entry of the key.
func (s *MemoryStore) Get(ctx context.Context, k Key) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[k]
	if !ok {
		return Entry{}, ErrNotFound
	}
	e.used = time.Now()
	s.entries[k] = e
	e.Payload = append([]byte(nil), e.Payload...)
	return e.Entry, nil
}

// Put stores the entry of the key.
func (s *MemoryStore) Put(ctx context.Context, k Key, e Entry) error {
	now := time.Now()
	if e.Stored.IsZero() {
		e.Stored = now
	}
	e.Payload = append([]byte(nil), e.Payload...)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[k] = memEntry{Entry: e, used: now}
	return nil
}

// Evict removes entries not used since threshold.
func (s *MemoryStore) Evict(ctx context.Context, threshold time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, e := range s.entries {
		if e.used.Before(threshold) {
			delete(s.entries, k)
			n++
		}
	}
	return n, nil
}

// Clear removes all entries.
func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.entries)
	return nil
}

// Len returns the number of entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
