// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package classdb

import (
	"sort"
	"strings"
)

// Usage counts how other classes use a class.
type Usage struct {
	Name string `json:"name"`

	// Children is the number of classes whose parent is the class.
	Children int `json:"children"`

	// References is the number of property values naming the class.
	References int `json:"references"`
}

// Usage returns usage of classes used at least once, most used first.
// Property values match class names exactly, ignoring case; array
// elements are matched one by one.
func (db *DB) Usage() []Usage {
	counts := make(map[string]*Usage)
	get := func(f string) *Usage {
		u, ok := counts[f]
		if !ok {
			u = &Usage{Name: db.byName[f].Name}
			counts[f] = u
		}
		return u
	}
	for f := range db.parents {
		pf, ok := db.parentOf(f)
		if !ok {
			continue
		}
		if _, ok := db.byName[pf]; ok {
			get(pf).Children++
		}
	}
	for f, rec := range db.byName {
		for _, v := range rec.Properties {
			for _, name := range propertyNames(v) {
				rf := fold(name)
				if rf == f {
					continue
				}
				if _, ok := db.byName[rf]; ok {
					get(rf).References++
				}
			}
		}
	}
	usage := make([]Usage, 0, len(counts))
	for _, u := range counts {
		usage = append(usage, *u)
	}
	sort.Slice(usage, func(i, j int) bool {
		ni := usage[i].Children + usage[i].References
		nj := usage[j].Children + usage[j].References
		if ni != nj {
			return ni > nj
		}
		return usage[i].Name < usage[j].Name
	})
	return usage
}

// propertyNames returns candidate class names of raw property text v.
func propertyNames(v string) []string {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "{") {
		if s := unquote(v); s != "" {
			return []string{s}
		}
		return nil
	}
	var names []string
	for _, e := range strings.Split(strings.Trim(v, "{}"), ",") {
		if s := unquote(strings.TrimSpace(e)); s != "" {
			names = append(names, s)
		}
	}
	return names
}

func unquote(s string) string {
	return strings.TrimSpace(strings.Trim(s, `"'`))
}
