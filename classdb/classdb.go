// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package classdb provides an index of class declarations with
// case-insensitive lookup and inheritance queries.
//
// A DB is built by one goroutine and may then be shared by many
// readers. Lookup is by class name alone; when two sources declare
// the same name, the last one added wins. Per-source records remain
// available through GetFromSource.
package classdb

import (
	"sort"
	"strings"
	"sync"

	"go.chromium.org/infra/build/missioncheck/classdef"
)

// DB is a class database.
type DB struct {
	// records by (name, source).
	bySource map[classdef.Key]*classdef.Record
	// last added record by folded name.
	byName map[string]*classdef.Record
	// last added nested record by folded innermost name,
	// e.g. "car" for "CfgVehicles.Car".
	byShort map[string]*classdef.Record
	// folded child name -> parent name, last write wins.
	parents map[string]string
	sources map[string]int

	mu sync.Mutex
	// folded parent name -> folded child names.
	children map[string][]string
	// folded name -> folded ancestors, nearest first.
	ancestors map[string][]string
}

// New creates an empty database.
func New() *DB {
	return &DB{
		bySource: make(map[classdef.Key]*classdef.Record),
		byName:   make(map[string]*classdef.Record),
		byShort:  make(map[string]*classdef.Record),
		parents:  make(map[string]string),
		sources:  make(map[string]int),
	}
}

func fold(name string) string {
	return strings.ToLower(name)
}

// Add adds rec, replacing a record with the same (name, source).
// It also replaces the inheritance edge of rec's name.
// Add must not be called concurrently with other methods.
func (db *DB) Add(rec *classdef.Record) {
	k := rec.Key()
	if _, ok := db.bySource[k]; !ok {
		db.sources[rec.Source]++
	}
	db.bySource[k] = rec
	f := fold(rec.Name)
	db.byName[f] = rec
	if i := strings.LastIndexByte(f, '.'); i >= 0 {
		db.byShort[f[i+1:]] = rec
	}
	if rec.Parent != "" {
		db.parents[f] = rec.Parent
	} else {
		delete(db.parents, f)
	}
	db.mu.Lock()
	db.children = nil
	db.ancestors = nil
	db.mu.Unlock()
}

// AddSet adds declarations of s. References are skipped.
func (db *DB) AddSet(s *classdef.Set) int {
	n := 0
	for _, rec := range s.Records() {
		if rec.IsReference() {
			continue
		}
		db.Add(rec)
		n++
	}
	return n
}

// Get returns the last added record named name, case-insensitively.
// A name without scope also matches a nested class, e.g. "Car" finds
// "CfgVehicles.Car" unless a top-level "Car" exists.
func (db *DB) Get(name string) (*classdef.Record, bool) {
	f, ok := db.canonical(fold(name))
	if !ok {
		return nil, false
	}
	return db.byName[f], true
}

// canonical returns the folded full name of folded name f.
func (db *DB) canonical(f string) (string, bool) {
	if _, ok := db.byName[f]; ok {
		return f, true
	}
	if rec, ok := db.byShort[f]; ok {
		return fold(rec.Name), true
	}
	return f, false
}

// GetFromSource returns the record of name declared by source.
func (db *DB) GetFromSource(name, source string) (*classdef.Record, bool) {
	rec, ok := db.bySource[classdef.Key{Name: name, Source: source}]
	return rec, ok
}

// Len returns the number of distinct class names.
func (db *DB) Len() int {
	return len(db.byName)
}

// Sources returns sources and their number of records, sorted by source.
func (db *DB) Sources() []SourceCount {
	var scs []SourceCount
	for s, n := range db.sources {
		scs = append(scs, SourceCount{Source: s, Count: n})
	}
	sort.Slice(scs, func(i, j int) bool {
		return scs[i].Source < scs[j].Source
	})
	return scs
}

// SourceCount is a number of records from a source.
type SourceCount struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

// Names returns all class names (as last added), sorted.
func (db *DB) Names() []string {
	names := make([]string, 0, len(db.byName))
	for _, rec := range db.byName {
		names = append(names, rec.Name)
	}
	sort.Strings(names)
	return names
}

// Suggest returns up to n class names containing name,
// case-insensitively, sorted.
func (db *DB) Suggest(name string, n int) []string {
	f := fold(name)
	if f == "" || n <= 0 {
		return nil
	}
	var matches []string
	for k, rec := range db.byName {
		if k != f && strings.Contains(k, f) {
			matches = append(matches, rec.Name)
		}
	}
	sort.Strings(matches)
	if len(matches) > n {
		matches = matches[:n]
	}
	return matches
}

// parentOf resolves the parent of the class folded as f.
// For a nested class `A.B: P`, `A.P` is preferred over `P`.
func (db *DB) parentOf(f string) (string, bool) {
	p, ok := db.parents[f]
	if !ok {
		return "", false
	}
	pf := fold(p)
	scope := f
	for {
		i := strings.LastIndexByte(scope, '.')
		if i < 0 {
			break
		}
		scope = scope[:i]
		cand := scope + "." + pf
		if cand == f {
			continue
		}
		if _, ok := db.byName[cand]; ok {
			return cand, true
		}
	}
	// `class Car: Car` inside a scope names another Car, never itself.
	if c, ok := db.canonical(pf); ok && c != f {
		pf = c
	}
	return pf, true
}
