// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/infra/build/missioncheck/classdb"
	"go.chromium.org/infra/build/missioncheck/classdef"
	"go.chromium.org/infra/build/missioncheck/modset"
	"go.chromium.org/infra/build/missioncheck/validate"
)

func TestPrintResults(t *testing.T) {
	results := []validate.Result{
		{
			Root: "/m/ok.Altis",
			Report: &validate.Report{
				Mission:      "ok",
				FoundClasses: []string{"Car"},
				FoundAssets:  []string{"images/a.paa"},
				Stats:        validate.Stats{Duration: 20 * time.Millisecond, Cached: true},
			},
		},
		{
			Root: "/m/bad.Altis",
			Report: &validate.Report{
				Mission: "bad",
				MissingClasses: []validate.MissingClass{
					{Name: "Truck", ReferencedFrom: []string{"init.sqf", "mission.sqm"}, Suggestions: []string{"Truck_F"}},
				},
				MissingAssets: []validate.MissingAsset{
					{Path: "sounds/x.ogg", ReferencedFrom: []string{"description.ext"}},
				},
				Warnings: []classdef.Warning{{Source: "init.sqf", Line: 3, Message: "oops"}},
				Stats:    validate.Stats{Duration: 1500 * time.Millisecond},
			},
		},
		{
			Root: "/m/gone",
			Err:  errors.New("mission folder not found"),
		},
	}
	var buf bytes.Buffer
	got := PrintResults(&buf, results, true)
	if diff := cmp.Diff(ResultCounts{OK: 1, Missing: 1, Failed: 1}, got); diff != "" {
		t.Errorf("PrintResults counts -want +got:\n%s", diff)
	}
	want := `OK ok: 1 found, 0 missing, 0 ignored classes; 1 found, 0 missing assets (20ms, cached)
  found class Car
  found asset images/a.paa
MISSING bad: 0 found, 1 missing, 0 ignored classes; 0 found, 1 missing assets (1.50s)
  missing class Truck  [init.sqf, mission.sqm]
    did you mean: Truck_F
  missing asset sounds/x.ogg  [description.ext]
  warning: ` + results[1].Report.Warnings[0].String() + `
FAIL /m/gone: mission folder not found
3 missions: 1 ok, 1 with missing dependencies, 1 failed
`
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("PrintResults -want +got:\n%s", diff)
	}
}

func TestPrintStats(t *testing.T) {
	var buf bytes.Buffer
	PrintStats(&buf, modset.Stats{
		Roots:      2,
		Files:      5,
		Classes:    40,
		Serialized: 10,
		Assets:     3,
		Archives:   1,
		Duration:   2 * time.Second,
	}, []classdb.SourceCount{{Source: "cba", Count: 30}}, 1)
	want := `40 classes from 2 roots (0 cached), 5 files, 0 recovered
10 classes from INIDBI2 export
3 assets, 1 archives (0 failed to list)
1 warnings in 2.00s
  cba                            30
`
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("PrintStats -want +got:\n%s", diff)
	}
}
