// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package scancache provides a signature-keyed cache of scan results.
//
// An entry is stored under (scope, kind), e.g. (mod root, "classes"),
// together with the signature of the files it was computed from.
// A lookup hits only when the caller's freshly computed signature
// equals the stored one. Entries are replaced as a whole and never
// updated in place.
package scancache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Store.Get for a missing key.
var ErrNotFound = errors.New("cache entry not found")

// Key is a cache key.
type Key struct {
	Scope string
	Kind  string
}

// Entry is a cache entry.
type Entry struct {
	Signature string
	Payload   []byte
	Stored    time.Time
}

// Store is an interface of cache store.
//
// Implementations must make Put atomic per key: a concurrent Get sees
// either the old or the new entry. Writes to the same key are
// serialized; accesses to different keys don't block each other.
type Store interface {
	// Get gets the entry of the key, or ErrNotFound.
	Get(context.Context, Key) (Entry, error)
	// Put stores the entry of the key, replacing the old one.
	Put(context.Context, Key, Entry) error
	// Evict removes entries not used since the threshold.
	// It returns the number of removed entries.
	Evict(context.Context, time.Time) (int, error)
	// Clear removes all entries.
	Clear(context.Context) error
}
