// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package validate

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func report(mission string, classes []string, paths ...string) *Report {
	r := &Report{Mission: mission}
	for _, c := range classes {
		r.MissingClasses = append(r.MissingClasses, MissingClass{Name: c})
	}
	for _, a := range paths {
		r.MissingAssets = append(r.MissingAssets, MissingAsset{Path: a})
	}
	return r
}

func TestCompare(t *testing.T) {
	a := []Result{
		{Root: "/a/coop.Altis", Report: report("coop.Altis", []string{"Truck_X", "rhs_t72", "B_Heli"}, `\x\tex.paa`)},
		{Root: "/a/tvt.Stratis", Report: report("tvt.Stratis", nil)},
		{Root: "/a/broken.Tanoa", Err: errors.New("boom")},
	}
	b := []Result{
		{Root: "/b/coop.Altis", Report: report("coop.Altis", []string{"rhs_t72", "Boat_Y"})},
		{Root: "/b/tvt.Stratis", Report: report("tvt.Stratis", nil)},
		{Root: "/b/new.Malden", Report: report("", []string{"Car_Z"})},
	}
	got := Compare(a, b)
	want := []Comparison{
		{
			Mission:     "coop.Altis",
			InA:         true,
			InB:         true,
			OnlyA:       []string{"B_Heli", "Truck_X"},
			OnlyB:       []string{"Boat_Y"},
			Common:      []string{"rhs_t72"},
			AssetsOnlyA: []string{`\x\tex.paa`},
		},
		{
			Mission: "new.Malden",
			InB:     true,
			OnlyB:   []string{"Car_Z"},
		},
		{
			Mission: "tvt.Stratis",
			InA:     true,
			InB:     true,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Compare -want +got:\n%s", diff)
	}
	var changed []string
	for _, c := range got {
		if c.Changed() {
			changed = append(changed, c.Mission)
		}
	}
	if diff := cmp.Diff([]string{"coop.Altis", "new.Malden"}, changed); diff != "" {
		t.Errorf("Changed -want +got:\n%s", diff)
	}
}
