// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package classdb

import (
	"sort"
)

// Graph is an inheritance graph.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is a class of a Graph.
type Node struct {
	ID          string `json:"id"`
	Source      string `json:"source,omitempty"`
	Category    string `json:"category,omitempty"`
	DisplayName string `json:"display_name,omitempty"`

	// Missing is true for a parent not in the database.
	Missing bool `json:"missing,omitempty"`
}

// Edge is an edge from a class to its resolved parent.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Graph returns the inheritance graph of roots, their ancestors and
// their derived classes, or of all classes if roots is empty.
// It also returns roots not in the database.
func (db *DB) Graph(roots ...string) (Graph, []string) {
	set := make(map[string]bool)
	var unknown []string
	if len(roots) == 0 {
		for f := range db.byName {
			set[f] = true
		}
	}
	for _, name := range roots {
		f, ok := db.canonical(fold(name))
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		set[f] = true
		for _, a := range db.Ancestors(name) {
			if _, ok := db.byName[a]; ok {
				set[a] = true
			}
		}
		for _, d := range db.DerivedClasses(name) {
			set[fold(d)] = true
		}
	}

	var g Graph
	missing := make(map[string]bool)
	for f := range set {
		rec := db.byName[f]
		n := Node{ID: rec.Name, Source: rec.Source}
		if rec.Meta != nil {
			n.Category = rec.Meta.Category
			n.DisplayName = rec.Meta.DisplayName
		}
		g.Nodes = append(g.Nodes, n)
		pf, ok := db.parentOf(f)
		if !ok {
			continue
		}
		to := db.parents[f]
		if parent, ok := db.byName[pf]; ok {
			to = parent.Name
		} else if !missing[pf] {
			missing[pf] = true
			g.Nodes = append(g.Nodes, Node{ID: to, Missing: true})
		}
		g.Edges = append(g.Edges, Edge{From: rec.Name, To: to})
	}
	sort.Slice(g.Nodes, func(i, j int) bool {
		return g.Nodes[i].ID < g.Nodes[j].ID
	})
	sort.Slice(g.Edges, func(i, j int) bool {
		if g.Edges[i].From != g.Edges[j].From {
			return g.Edges[i].From < g.Edges[j].From
		}
		return g.Edges[i].To < g.Edges[j].To
	})
	return g, unknown
}
