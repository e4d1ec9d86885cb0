// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package classdb

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/infra/build/missioncheck/classdef"
)

func decl(name, parent, source string) *classdef.Record {
	return &classdef.Record{Name: name, Parent: parent, Source: source}
}

func TestGetCaseInsensitive(t *testing.T) {
	db := New()
	rifle := decl("Rifle", "", "mod")
	db.Add(rifle)
	for _, q := range []string{"Rifle", "RIFLE", "rifle"} {
		got, ok := db.Get(q)
		if !ok || got != rifle {
			t.Errorf("Get(%q)=%v, %t; want %v, true", q, got, ok, rifle)
		}
	}
	if _, ok := db.Get("Rifle2"); ok {
		t.Errorf("Get(Rifle2)=_, true; want false")
	}
}

func TestAddLastWins(t *testing.T) {
	db := New()
	a := decl("Car", "Vehicle", "moda")
	b := decl("car", "Truck", "modb")
	db.Add(a)
	db.Add(b)
	got, _ := db.Get("CAR")
	if got != b {
		t.Errorf("Get(CAR)=%v; want %v", got, b)
	}
	if got, _ := db.GetFromSource("Car", "moda"); got != a {
		t.Errorf("GetFromSource(Car, moda)=%v; want %v", got, a)
	}
	db.Add(decl("Truck", "", "modb"))
	db.Add(decl("Vehicle", "", "moda"))
	if diff := cmp.Diff([]string{"car", "Truck"}, db.InheritanceChain("Car").Names()); diff != "" {
		t.Errorf("InheritanceChain(Car) -want +got:\n%s", diff)
	}
	want := []SourceCount{{Source: "moda", Count: 2}, {Source: "modb", Count: 2}}
	if diff := cmp.Diff(want, db.Sources()); diff != "" {
		t.Errorf("Sources() -want +got:\n%s", diff)
	}
	if got, want := db.Len(), 3; got != want {
		t.Errorf("Len()=%d; want %d", got, want)
	}
}

func TestInheritanceChain(t *testing.T) {
	db := New()
	db.AddSet(classdef.NewSet(
		decl("Car", "Vehicle", "m"),
		decl("Vehicle", "All", "m"),
		decl("All", "", "m"),
		decl("Orphan", "Missing", "m"),
		decl("A", "B", "m"),
		decl("B", "C", "m"),
		decl("C", "A", "m"),
		decl("Self", "self", "m"),
		classdef.NewReference("Ref", "m"),
	))
	for _, tc := range []struct {
		name        string
		want        []string
		wantCycle   bool
		wantMissing string
	}{
		{name: "car", want: []string{"Car", "Vehicle", "All"}},
		{name: "All", want: []string{"All"}},
		{name: "Orphan", want: []string{"Orphan"}, wantMissing: "Missing"},
		{name: "A", want: []string{"A", "B", "C"}, wantCycle: true},
		{name: "Self", want: []string{"Self"}, wantCycle: true},
		{name: "Ref"},
		{name: "Unknown"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c := db.InheritanceChain(tc.name)
			if diff := cmp.Diff(tc.want, c.Names(), cmpEmpty); diff != "" {
				t.Errorf("InheritanceChain(%q) -want +got:\n%s", tc.name, diff)
			}
			if c.Cycle != tc.wantCycle || c.MissingParent != tc.wantMissing {
				t.Errorf("InheritanceChain(%q) cycle=%t missing=%q; want %t %q", tc.name, c.Cycle, c.MissingParent, tc.wantCycle, tc.wantMissing)
			}
			wantWarnings := 0
			if tc.wantCycle || tc.wantMissing != "" {
				wantWarnings = 1
			}
			if len(c.Warnings) != wantWarnings {
				t.Errorf("InheritanceChain(%q) warnings=%v; want %d", tc.name, c.Warnings, wantWarnings)
			}
		})
	}
}

var cmpEmpty = cmp.Comparer(func(x, y []string) bool {
	return strings.Join(x, ",") == strings.Join(y, ",")
})

func TestNestedParent(t *testing.T) {
	db := New()
	db.Add(decl("CfgWeapons", "", "m"))
	db.Add(decl("Base", "", "m"))
	db.Add(decl("CfgWeapons.Base", "", "m"))
	db.Add(decl("CfgWeapons.Rifle", "Base", "m"))
	c := db.InheritanceChain("CfgWeapons.Rifle")
	if diff := cmp.Diff([]string{"CfgWeapons.Rifle", "CfgWeapons.Base"}, c.Names()); diff != "" {
		t.Errorf("InheritanceChain -want +got:\n%s", diff)
	}
}

func TestNestedParentSameShortName(t *testing.T) {
	db := New()
	db.Add(decl("CfgVehicles", "", "m"))
	db.Add(decl("CfgVehicles.Car", "Car", "m"))
	c := db.InheritanceChain("CfgVehicles.Car")
	if c.Cycle {
		t.Errorf("InheritanceChain(CfgVehicles.Car).Cycle=true; want false")
	}
	if c.MissingParent != "Car" {
		t.Errorf("InheritanceChain(CfgVehicles.Car).MissingParent=%q; want %q", c.MissingParent, "Car")
	}

	db.Add(decl("Car", "", "base"))
	c = db.InheritanceChain("CfgVehicles.Car")
	if diff := cmp.Diff([]string{"CfgVehicles.Car", "Car"}, c.Names()); diff != "" {
		t.Errorf("InheritanceChain -want +got:\n%s", diff)
	}
	if c.Cycle || c.MissingParent != "" {
		t.Errorf("InheritanceChain: cycle=%t missing=%q; want neither", c.Cycle, c.MissingParent)
	}
}

func TestShortName(t *testing.T) {
	db := New()
	db.Add(decl("CfgVehicles", "", "m"))
	db.Add(decl("CfgVehicles.Vehicle", "", "m"))
	db.Add(decl("CfgVehicles.Car", "Vehicle", "m"))
	db.Add(decl("CfgWeapons.Rifle", "Weapon", "m"))
	db.Add(decl("CfgWeapons.Weapon", "", "m"))
	db.Add(decl("Vehicle", "", "other"))

	got, ok := db.Get("car")
	if !ok || got.Name != "CfgVehicles.Car" {
		t.Errorf("Get(car)=%v, %t; want CfgVehicles.Car", got, ok)
	}
	// top-level name wins over a nested one.
	got, ok = db.Get("Vehicle")
	if !ok || got.Name != "Vehicle" {
		t.Errorf("Get(Vehicle)=%v, %t; want top-level Vehicle", got, ok)
	}
	c := db.InheritanceChain("Car")
	if diff := cmp.Diff([]string{"CfgVehicles.Car", "CfgVehicles.Vehicle"}, c.Names()); diff != "" {
		t.Errorf("InheritanceChain(Car) -want +got:\n%s", diff)
	}
	// parent declared after its child.
	c = db.InheritanceChain("Rifle")
	if diff := cmp.Diff([]string{"CfgWeapons.Rifle", "CfgWeapons.Weapon"}, c.Names()); diff != "" {
		t.Errorf("InheritanceChain(Rifle) -want +got:\n%s", diff)
	}
	if !db.IsA("car", "CfgVehicles.Vehicle") {
		t.Errorf("IsA(car, CfgVehicles.Vehicle)=false; want true")
	}
	if diff := cmp.Diff([]string{"CfgVehicles.Car"}, db.DerivedClasses("CfgVehicles.Vehicle")); diff != "" {
		t.Errorf("DerivedClasses -want +got:\n%s", diff)
	}
}

func TestDerivedClasses(t *testing.T) {
	db := New()
	for _, r := range []*classdef.Record{
		decl("Car", "Vehicle", "m"),
		decl("Truck", "Vehicle", "m"),
		decl("Vehicle", "All", "m"),
		decl("SportsCar", "Car", "m"),
		decl("Tank", "", "m"),
		decl("A", "B", "m"),
		decl("B", "A", "m"),
	} {
		db.Add(r)
	}
	db.BuildInheritanceGraph()
	for _, tc := range []struct {
		base string
		want []string
	}{
		{base: "All", want: []string{"Car", "SportsCar", "Truck", "Vehicle"}},
		{base: "vehicle", want: []string{"Car", "SportsCar", "Truck"}},
		{base: "Tank"},
		{base: "A", want: []string{"B"}},
	} {
		got := db.DerivedClasses(tc.base)
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("DerivedClasses(%q) -want +got:\n%s", tc.base, diff)
		}
	}
	if !db.IsA("SportsCar", "all") || db.IsA("Tank", "All") {
		t.Errorf("IsA mismatch")
	}

	// Add invalidates the graph.
	db.Add(decl("Bike", "Vehicle", "m"))
	if diff := cmp.Diff([]string{"Bike", "Car", "SportsCar", "Truck"}, db.DerivedClasses("Vehicle")); diff != "" {
		t.Errorf("DerivedClasses after Add -want +got:\n%s", diff)
	}
}

func TestShouldIgnore(t *testing.T) {
	db := New()
	db.Add(decl("ACE_Item", "ItemCore", "ace"))
	db.Add(decl("ItemCore", "", "a3"))
	db.Add(decl("Loop1", "Loop2", "m"))
	db.Add(decl("Loop2", "Loop1", "m"))
	db.Add(decl("Weird", "#NoiseBase", "m"))
	rules := NewIgnoreRules(DefaultIgnoreConfig, IgnoreConfig{Exact: []string{"itemcore"}})
	for _, tc := range []struct {
		name string
		want bool
	}{
		{name: "ACE_Item", want: true},
		{name: "ItemCore", want: true},
		{name: "#lightpoint", want: true},
		{name: "$STR_name", want: true},
		{name: "TRUE", want: true},
		{name: "Weird", want: true},
		{name: "Loop1"},
		{name: "Truck"},
		{name: "rm"},
	} {
		if got := db.ShouldIgnore(tc.name, rules); got != tc.want {
			t.Errorf("ShouldIgnore(%q)=%t; want %t", tc.name, got, tc.want)
		}
	}
	if !rules.IsRole("RM") || rules.IsRole("Truck") {
		t.Errorf("IsRole mismatch")
	}
}

func TestLoadIgnoreRules(t *testing.T) {
	dir := t.TempDir()
	fname := filepath.Join(dir, "ignore.json")
	err := os.WriteFile(fname, []byte(`{"exact": ["MyNoise"], "prefixes": ["tmp_"]}`), 0644)
	if err != nil {
		t.Fatal(err)
	}
	rules, err := LoadIgnoreRules(fname)
	if err != nil {
		t.Fatalf("LoadIgnoreRules=%v", err)
	}
	for _, name := range []string{"mynoise", "TMP_thing", "player"} {
		if !rules.Match(name) {
			t.Errorf("Match(%q)=false; want true", name)
		}
	}
	err = os.WriteFile(fname, []byte(`{`), 0644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := LoadIgnoreRules(fname); err == nil {
		t.Errorf("LoadIgnoreRules(bad json)=nil error")
	}
}

func TestSuggest(t *testing.T) {
	db := New()
	for _, n := range []string{"arifle_MX_F", "arifle_MX_Black_F", "arifle_MXC_F", "arifle_MXM_F", "srifle_EBR_F"} {
		db.Add(decl(n, "", "a3"))
	}
	got := db.Suggest("ARIFLE_MX", 3)
	want := []string{"arifle_MXC_F", "arifle_MXM_F", "arifle_MX_Black_F"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Suggest -want +got:\n%s", diff)
	}
	if got := db.Suggest("", 3); got != nil {
		t.Errorf("Suggest(\"\")=%q; want nil", got)
	}
}
