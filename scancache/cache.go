// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scancache

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache is a typed view of one kind of entries in a Store, with an
// in-process LRU in front of it. Values are JSON encoded.
// Values returned by Lookup may be shared and must not be modified.
// A nil *Cache never hits and drops Puts.
type Cache[T any] struct {
	store Store
	kind  string
	front *lru.Cache[string, frontEntry[T]]
}

type frontEntry[T any] struct {
	signature string
	value     T
}

// DefaultFrontSize is the default number of values kept in memory.
const DefaultFrontSize = 256

// New creates a cache of kind on store. frontSize <= 0 disables the
// in-process front. A nil store returns a nil cache.
func New[T any](store Store, kind string, frontSize int) *Cache[T] {
	if store == nil {
		return nil
	}
	c := &Cache[T]{store: store, kind: kind}
	if frontSize > 0 {
		front, err := lru.New[string, frontEntry[T]](frontSize)
		if err != nil {
			log.Warnf("scancache %s: no front cache: %v", kind, err)
		} else {
			c.front = front
		}
	}
	return c
}

// Lookup returns the value of scope if it was stored with signature.
// Any failure is a miss.
func (c *Cache[T]) Lookup(ctx context.Context, scope, signature string) (T, bool) {
	var zero T
	if c == nil {
		return zero, false
	}
	if c.front != nil {
		if fe, ok := c.front.Get(scope); ok {
			if fe.signature == signature {
				log.Debugf("scancache %s hit (memory) %s", c.kind, scope)
				return fe.value, true
			}
			c.front.Remove(scope)
		}
	}
	e, err := c.store.Get(ctx, Key{Scope: scope, Kind: c.kind})
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Warnf("scancache %s get %s: %v", c.kind, scope, err)
		}
		return zero, false
	}
	if e.Signature != signature {
		log.Debugf("scancache %s stale %s", c.kind, scope)
		return zero, false
	}
	var v T
	err = json.Unmarshal(e.Payload, &v)
	if err != nil {
		log.Warnf("scancache %s decode %s: %v", c.kind, scope, err)
		return zero, false
	}
	if c.front != nil {
		c.front.Add(scope, frontEntry[T]{signature: signature, value: v})
	}
	log.Debugf("scancache %s hit %s", c.kind, scope)
	return v, true
}

// Put stores v for scope with signature, replacing any previous entry.
func (c *Cache[T]) Put(ctx context.Context, scope, signature string, v T) error {
	if c == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	err = c.store.Put(ctx, Key{Scope: scope, Kind: c.kind}, Entry{Signature: signature, Payload: b})
	if err != nil {
		return err
	}
	if c.front != nil {
		c.front.Add(scope, frontEntry[T]{signature: signature, value: v})
	}
	return nil
}
