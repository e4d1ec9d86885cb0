// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package classdef

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSetAdd(t *testing.T) {
	s := NewSet()
	if !s.Add(&Record{Name: "Rifle", Source: "moda"}) {
		t.Errorf("Add(Rifle, moda)=false; want true")
	}
	if !s.Add(&Record{Name: "Rifle", Source: "modb"}) {
		t.Errorf("Add(Rifle, modb)=false; want true")
	}
	if s.Add(&Record{Name: "Rifle", Source: "moda", Parent: "Base"}) {
		t.Errorf("Add(Rifle, moda) again=true; want false")
	}
	if got, want := s.Len(), 2; got != want {
		t.Errorf("Len()=%d; want %d", got, want)
	}
	r, ok := s.Get(Key{Name: "Rifle", Source: "moda"})
	if !ok || r.Parent != "Base" {
		t.Errorf("Get(Rifle, moda)=%v, %t; want replaced record", r, ok)
	}
	if diff := cmp.Diff([]string{"Rifle", "Rifle"}, s.Names()); diff != "" {
		t.Errorf("Names() -want +got:\n%s", diff)
	}
}

func TestSetJSON(t *testing.T) {
	s := NewSet(
		&Record{Name: "A", Source: "m", Properties: map[string]string{"k": "1"}},
		NewReference("Bandage", "m"),
		&Record{Name: "B", Source: "ini", Kind: Serialized, Meta: &Meta{Scope: 2, ModelPath: `\a3\b.p3d`}},
	)
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal=%v", err)
	}
	got := NewSet()
	if err := json.Unmarshal(b, got); err != nil {
		t.Fatalf("Unmarshal=%v", err)
	}
	if diff := cmp.Diff(s.Records(), got.Records()); diff != "" {
		t.Errorf("round trip -want +got:\n%s", diff)
	}
}

func TestRecordWalk(t *testing.T) {
	r := &Record{Name: "A", Nested: []*Record{
		{Name: "A.B", Nested: []*Record{{Name: "A.B.C"}}},
		{Name: "A.D"},
	}}
	var got []string
	r.Walk(func(rec *Record) {
		got = append(got, rec.Name)
	})
	if diff := cmp.Diff([]string{"A", "A.B", "A.B.C", "A.D"}, got); diff != "" {
		t.Errorf("Walk -want +got:\n%s", diff)
	}
}

func TestListCount(t *testing.T) {
	for _, tc := range []struct {
		props  map[string]string
		want   int
		wantOK bool
	}{
		{props: nil},
		{props: map[string]string{ListCountKey: "3"}, want: 3, wantOK: true},
		{props: map[string]string{ListCountKey: "x"}},
	} {
		r := &Record{Name: "X", Kind: Reference, Properties: tc.props}
		got, ok := r.ListCount()
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("ListCount(%v)=%d, %t; want %d, %t", tc.props, got, ok, tc.want, tc.wantOK)
		}
	}
}
