// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package validate

import (
	"path/filepath"
	"sort"
)

// Comparison compares missing dependencies of a mission between two
// validation runs, A and B.
type Comparison struct {
	Mission string `json:"mission"`

	// InA and InB are false if the mission is absent from the run.
	InA bool `json:"in_a"`
	InB bool `json:"in_b"`

	OnlyA  []string `json:"only_a,omitempty"`
	OnlyB  []string `json:"only_b,omitempty"`
	Common []string `json:"common,omitempty"`

	AssetsOnlyA []string `json:"assets_only_a,omitempty"`
	AssetsOnlyB []string `json:"assets_only_b,omitempty"`
}

// Changed reports whether missing dependencies differ between runs.
func (c Comparison) Changed() bool {
	return c.InA != c.InB || len(c.OnlyA) > 0 || len(c.OnlyB) > 0 || len(c.AssetsOnlyA) > 0 || len(c.AssetsOnlyB) > 0
}

// Compare compares results of two runs, matching missions by name.
// Missions that failed to validate are treated as absent.
// Comparisons are sorted by mission name.
func Compare(a, b []Result) []Comparison {
	ra, rb := byMission(a), byMission(b)
	names := make(map[string]bool)
	for n := range ra {
		names[n] = true
	}
	for n := range rb {
		names[n] = true
	}
	cs := make([]Comparison, 0, len(names))
	for n := range names {
		x, y := ra[n], rb[n]
		c := Comparison{Mission: n, InA: x != nil, InB: y != nil}
		ca, cb := missingClasses(x), missingClasses(y)
		c.OnlyA, c.Common = diff(ca, cb)
		c.OnlyB, _ = diff(cb, ca)
		aa, ab := missingAssets(x), missingAssets(y)
		c.AssetsOnlyA, _ = diff(aa, ab)
		c.AssetsOnlyB, _ = diff(ab, aa)
		cs = append(cs, c)
	}
	sort.Slice(cs, func(i, j int) bool {
		return cs[i].Mission < cs[j].Mission
	})
	return cs
}

func byMission(results []Result) map[string]*Report {
	m := make(map[string]*Report, len(results))
	for _, r := range results {
		if r.Report == nil {
			continue
		}
		name := r.Report.Mission
		if name == "" {
			name = filepath.Base(r.Root)
		}
		m[name] = r.Report
	}
	return m
}

func missingClasses(r *Report) map[string]bool {
	m := make(map[string]bool)
	if r == nil {
		return m
	}
	for _, mc := range r.MissingClasses {
		m[mc.Name] = true
	}
	return m
}

func missingAssets(r *Report) map[string]bool {
	m := make(map[string]bool)
	if r == nil {
		return m
	}
	for _, ma := range r.MissingAssets {
		m[ma.Path] = true
	}
	return m
}

// diff returns sorted keys of x not in y, and keys in both.
func diff(x, y map[string]bool) (only, common []string) {
	for k := range x {
		if y[k] {
			common = append(common, k)
			continue
		}
		only = append(only, k)
	}
	sortFold(only)
	sortFold(common)
	return only, common
}
