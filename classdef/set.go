// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package classdef

import "encoding/json"

// Set is a set of records keyed by (name, source).
// Adding a record with an existing key replaces it in place.
// Iteration follows first insertion order.
type Set struct {
	keys []Key
	m    map[Key]*Record
}

// NewSet creates a set holding recs.
func NewSet(recs ...*Record) *Set {
	s := &Set{m: make(map[Key]*Record)}
	for _, r := range recs {
		s.Add(r)
	}
	return s
}

// Add adds r to the set.
// It reports whether r's key was not in the set yet.
func (s *Set) Add(r *Record) bool {
	if s.m == nil {
		s.m = make(map[Key]*Record)
	}
	k := r.Key()
	_, exists := s.m[k]
	s.m[k] = r
	if !exists {
		s.keys = append(s.keys, k)
	}
	return !exists
}

// Get returns the record of k.
func (s *Set) Get(k Key) (*Record, bool) {
	if s == nil {
		return nil, false
	}
	r, ok := s.m[k]
	return r, ok
}

// Len returns the number of records.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// Records returns records in insertion order.
func (s *Set) Records() []*Record {
	if s == nil {
		return nil
	}
	recs := make([]*Record, 0, len(s.keys))
	for _, k := range s.keys {
		recs = append(recs, s.m[k])
	}
	return recs
}

// Names returns record names in insertion order.
func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.keys))
	for _, k := range s.keys {
		names = append(names, k.Name)
	}
	return names
}

// Filter returns records matching kind, in insertion order.
func (s *Set) Filter(kind Kind) []*Record {
	var recs []*Record
	for _, r := range s.Records() {
		if r.Kind == kind {
			recs = append(recs, r)
		}
	}
	return recs
}

// MarshalJSON encodes the set as a list of records.
func (s *Set) MarshalJSON() ([]byte, error) {
	recs := s.Records()
	if recs == nil {
		recs = []*Record{}
	}
	return json.Marshal(recs)
}

// UnmarshalJSON decodes a list of records.
func (s *Set) UnmarshalJSON(b []byte) error {
	var recs []*Record
	if err := json.Unmarshal(b, &recs); err != nil {
		return err
	}
	*s = Set{m: make(map[Key]*Record)}
	for _, r := range recs {
		s.Add(r)
	}
	return nil
}
