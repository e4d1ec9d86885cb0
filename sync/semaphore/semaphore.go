// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package semaphore provides a counting semaphore that bounds
// concurrent work such as archive listing processes.
package semaphore

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
)

// Semaphore is a semaphore.
type Semaphore struct {
	name string
	ch   chan struct{}

	waits atomic.Int64
	reqs  atomic.Int64
	peak  atomic.Int64
}

// New creates a new semaphore with name and capacity n.
// n <= 0 means the number of CPUs.
func New(name string, n int) *Semaphore {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	return &Semaphore{
		name: name,
		ch:   make(chan struct{}, n),
	}
}

// WaitAcquire acquires the semaphore, waiting until it is available
// or ctx is done. It returns a func to release it.
func (s *Semaphore) WaitAcquire(ctx context.Context) (func(), error) {
	s.waits.Add(1)
	defer s.waits.Add(-1)
	select {
	case s.ch <- struct{}{}:
		s.reqs.Add(1)
		n := int64(len(s.ch))
		for {
			p := s.peak.Load()
			if n <= p || s.peak.CompareAndSwap(p, n) {
				break
			}
		}
		return func() { <-s.ch }, nil
	case <-ctx.Done():
		return func() {}, fmt.Errorf("semaphore %s: %w", s.name, context.Cause(ctx))
	}
}

// Name returns name of the semaphore.
func (s *Semaphore) Name() string {
	return s.name
}

// Capacity returns capacity of the semaphore.
func (s *Semaphore) Capacity() int {
	if s == nil {
		return 0
	}
	return cap(s.ch)
}

// NumServs returns number of currently served.
func (s *Semaphore) NumServs() int {
	return len(s.ch)
}

// NumWaits returns number of waiters.
func (s *Semaphore) NumWaits() int {
	return int(s.waits.Load())
}

// NumRequests returns total number of served requests.
func (s *Semaphore) NumRequests() int {
	return int(s.reqs.Load())
}

// Peak returns the maximum number of concurrently served requests.
func (s *Semaphore) Peak() int {
	return int(s.peak.Load())
}

// Do runs f under semaphore.
func (s *Semaphore) Do(ctx context.Context, f func(ctx context.Context) error) error {
	release, err := s.WaitAcquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return f(ctx)
}

func (s *Semaphore) String() string {
	return fmt.Sprintf("%s: serv=%d/%d wait=%d reqs=%d peak=%d", s.name, s.NumServs(), s.Capacity(), s.NumWaits(), s.NumRequests(), s.Peak())
}
