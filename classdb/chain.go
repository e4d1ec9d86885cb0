// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package classdb

import (
	"fmt"
	"sort"
	"strings"

	"go.chromium.org/infra/build/missioncheck/classdef"
)

// Chain is an inheritance chain.
type Chain struct {
	// Classes are the class itself first, most distant ancestor last.
	Classes []*classdef.Record

	// Cycle is true if the walk stopped at a repeated class.
	Cycle bool

	// MissingParent is the parent name that is not in the database.
	MissingParent string

	Warnings []classdef.Warning
}

// Names returns names of the chain's classes.
func (c Chain) Names() []string {
	names := make([]string, 0, len(c.Classes))
	for _, rec := range c.Classes {
		names = append(names, rec.Name)
	}
	return names
}

// InheritanceChain walks parents of name. It stops at a class without
// parent, at a parent not in the database, or at the first repeated
// class, reporting the latter two as warnings.
// It returns an empty chain if name is not in the database.
func (db *DB) InheritanceChain(name string) Chain {
	var c Chain
	rec, ok := db.Get(name)
	if !ok {
		return c
	}
	visited := make(map[string]bool)
	f := fold(rec.Name)
	for {
		visited[f] = true
		c.Classes = append(c.Classes, rec)
		pf, ok := db.parentOf(f)
		if !ok {
			return c
		}
		if visited[pf] {
			c.Cycle = true
			c.Warnings = append(c.Warnings, classdef.Warning{
				Source:  rec.Source,
				Message: fmt.Sprintf("inheritance cycle: %s -> %s", strings.Join(c.Names(), " -> "), db.parents[f]),
			})
			return c
		}
		parent, ok := db.byName[pf]
		if !ok {
			c.MissingParent = db.parents[f]
			c.Warnings = append(c.Warnings, classdef.Warning{
				Source:  rec.Source,
				Message: fmt.Sprintf("%s: missing parent %s", rec.Name, c.MissingParent),
			})
			return c
		}
		rec = parent
		f = pf
	}
}

// BuildInheritanceGraph builds the inverse edge map and the ancestor
// closure of all classes. Queries build it lazily otherwise.
func (db *DB) BuildInheritanceGraph() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.buildLocked()
}

func (db *DB) buildLocked() {
	if db.children != nil {
		return
	}
	children := make(map[string][]string)
	for f := range db.parents {
		pf, _ := db.parentOf(f)
		children[pf] = append(children[pf], f)
	}
	for _, cs := range children {
		sort.Strings(cs)
	}
	ancestors := make(map[string][]string, len(db.byName))
	for f := range db.byName {
		var as []string
		visited := map[string]bool{f: true}
		cur := f
		for {
			pf, ok := db.parentOf(cur)
			if !ok || visited[pf] {
				break
			}
			visited[pf] = true
			as = append(as, pf)
			if _, ok := db.byName[pf]; !ok {
				break
			}
			cur = pf
		}
		ancestors[f] = as
	}
	db.children = children
	db.ancestors = ancestors
}

// DerivedClasses returns names of all classes inheriting from base,
// directly or indirectly, sorted. base itself is not included.
func (db *DB) DerivedClasses(base string) []string {
	db.mu.Lock()
	db.buildLocked()
	children := db.children
	db.mu.Unlock()

	bf, _ := db.canonical(fold(base))
	visited := map[string]bool{bf: true}
	queue := []string{bf}
	var derived []string
	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]
		for _, c := range children[f] {
			if visited[c] {
				continue
			}
			visited[c] = true
			queue = append(queue, c)
			derived = append(derived, db.byName[c].Name)
		}
	}
	sort.Strings(derived)
	return derived
}

// Ancestors returns folded names of all ancestors of name, nearest first.
func (db *DB) Ancestors(name string) []string {
	db.mu.Lock()
	db.buildLocked()
	ancestors := db.ancestors
	db.mu.Unlock()
	f, _ := db.canonical(fold(name))
	return ancestors[f]
}

// IsA reports whether name is base or inherits from base.
func (db *DB) IsA(name, base string) bool {
	bf, _ := db.canonical(fold(base))
	if f, _ := db.canonical(fold(name)); f == bf {
		return true
	}
	for _, a := range db.Ancestors(name) {
		if a == bf {
			return true
		}
	}
	return false
}
