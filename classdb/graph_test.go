// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package classdb

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/infra/build/missioncheck/classdef"
)

func TestGraph(t *testing.T) {
	db := New()
	for _, r := range []*classdef.Record{
		decl("Vehicle", "All", "base"),
		decl("Car", "Vehicle", "base"),
		decl("SportsCar", "Car", "over"),
		decl("Truck", "Vehicle", "base"),
		decl("Tank", "", "base"),
	} {
		db.Add(r)
	}
	db.Add(&classdef.Record{
		Name:   "Bike",
		Parent: "Vehicle",
		Source: "vanilla",
		Meta:   &classdef.Meta{Category: "CfgVehicles", DisplayName: "Bike"},
	})

	for _, tc := range []struct {
		name        string
		roots       []string
		want        Graph
		wantUnknown []string
	}{
		{
			name:  "all",
			roots: nil,
			want: Graph{
				Nodes: []Node{
					{ID: "All", Missing: true},
					{ID: "Bike", Source: "vanilla", Category: "CfgVehicles", DisplayName: "Bike"},
					{ID: "Car", Source: "base"},
					{ID: "SportsCar", Source: "over"},
					{ID: "Tank", Source: "base"},
					{ID: "Truck", Source: "base"},
					{ID: "Vehicle", Source: "base"},
				},
				Edges: []Edge{
					{From: "Bike", To: "Vehicle"},
					{From: "Car", To: "Vehicle"},
					{From: "SportsCar", To: "Car"},
					{From: "Truck", To: "Vehicle"},
					{From: "Vehicle", To: "All"},
				},
			},
		},
		{
			name:  "root",
			roots: []string{"car", "Plane"},
			want: Graph{
				Nodes: []Node{
					{ID: "All", Missing: true},
					{ID: "Car", Source: "base"},
					{ID: "SportsCar", Source: "over"},
					{ID: "Vehicle", Source: "base"},
				},
				Edges: []Edge{
					{From: "Car", To: "Vehicle"},
					{From: "SportsCar", To: "Car"},
					{From: "Vehicle", To: "All"},
				},
			},
			wantUnknown: []string{"Plane"},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, unknown := db.Graph(tc.roots...)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Graph(%q) -want +got:\n%s", tc.roots, diff)
			}
			if diff := cmp.Diff(tc.wantUnknown, unknown); diff != "" {
				t.Errorf("Graph(%q) unknown -want +got:\n%s", tc.roots, diff)
			}
		})
	}
}

func TestUsage(t *testing.T) {
	db := New()
	for _, r := range []*classdef.Record{
		decl("Vehicle", "", "base"),
		decl("Car", "Vehicle", "base"),
		decl("Truck", "Vehicle", "base"),
		decl("Kart", "Go", "base"),
		{Name: "Magazine", Source: "base"},
		{Name: "Rifle", Source: "base", Properties: map[string]string{
			"magazines":   `{"magazine","Magazine", "Unknown"}`,
			"displayName": `"Rifle"`,
			"scope":       "2",
		}},
		{Name: "Crate", Source: "base", Properties: map[string]string{
			"transport": `"Rifle"`,
			"vehicle":   "car",
		}},
	} {
		db.Add(r)
	}
	want := []Usage{
		{Name: "Magazine", References: 2},
		{Name: "Vehicle", Children: 2},
		{Name: "Car", References: 1},
		{Name: "Rifle", References: 1},
	}
	if diff := cmp.Diff(want, db.Usage()); diff != "" {
		t.Errorf("Usage -want +got:\n%s", diff)
	}
}
