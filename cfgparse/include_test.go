// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package cfgparse

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
)

func TestIncludes(t *testing.T) {
	text := `#include "script_component.hpp"
// #include "commented.hpp"
/*
#include "block.hpp"
*/
class CfgVehicles {
	  #include <sub\CfgVehicles.hpp>
};
#define X 1
#include
`
	var got []string
	for _, inc := range Includes(text) {
		got = append(got, inc.Path)
	}
	if diff := cmp.Diff([]string{"script_component.hpp", "sub/CfgVehicles.hpp"}, got); diff != "" {
		t.Errorf("Includes -want +got:\n%s", diff)
	}
}

func TestExpandIncludes(t *testing.T) {
	fsys := fstest.MapFS{
		"addons/main/config.cpp": {Data: []byte(`#include "script_component.hpp"
class CfgPatches { class main {}; };
class CfgVehicles {
	#include "CfgVehicles.hpp"
};
#include "\x\cba\addons\main\script_macros.hpp"
#include "missing.hpp"
`)},
		"addons/main/script_component.hpp": {Data: []byte("#define COMPONENT main\n")},
		"addons/main/CfgVehicles.hpp": {Data: []byte(`class Car;
class MyCar: Car {
	#include "..\common\wheels.hpp"
};`)},
		"addons/common/wheels.hpp": {Data: []byte("wheels = 4;\n")},
	}
	e, err := ExpandIncludes(fsys, "addons/main/config.cpp")
	if err != nil {
		t.Fatalf("ExpandIncludes=%v; want nil err", err)
	}
	if len(e.Warnings) > 0 {
		t.Errorf("warnings=%v; want none", e.Warnings)
	}
	if diff := cmp.Diff([]string{
		"addons/main/script_component.hpp",
		"addons/main/CfgVehicles.hpp",
		"addons/common/wheels.hpp",
	}, e.Included); diff != "" {
		t.Errorf("Included -want +got:\n%s", diff)
	}

	res := Parse(e.Text, "main")
	if diff := cmp.Diff([]string{
		"CfgPatches",
		"CfgPatches.main",
		"CfgVehicles",
		"CfgVehicles.MyCar",
	}, names(res.Declarations())); diff != "" {
		t.Errorf("Parse names -want +got:\n%s", diff)
	}
	for _, rec := range res.Declarations() {
		if rec.Name != "CfgVehicles.MyCar" {
			continue
		}
		if got, want := rec.Parent, "Car"; got != want {
			t.Errorf("MyCar.Parent=%q; want %q", got, want)
		}
		if got, want := rec.Properties["wheels"], "4"; got != want {
			t.Errorf(`MyCar.Properties["wheels"]=%q; want %q`, got, want)
		}
	}
	for _, s := range []string{`\x\cba\addons\main\script_macros.hpp`, "missing.hpp"} {
		if !strings.Contains(e.Text, s) {
			t.Errorf("unresolved include %q not kept in text", s)
		}
	}
}

func TestExpandIncludesRecursive(t *testing.T) {
	fsys := fstest.MapFS{
		"config.cpp": {Data: []byte("#include \"a.hpp\"\nclass A {};\n")},
		"a.hpp":      {Data: []byte("#include \"b.hpp\"\nclass B {};\n")},
		"b.hpp":      {Data: []byte("#include \"a.hpp\"\nclass C {};\n")},
	}
	e, err := ExpandIncludes(fsys, "config.cpp")
	if err != nil {
		t.Fatalf("ExpandIncludes=%v; want nil err", err)
	}
	if len(e.Warnings) != 1 || !strings.Contains(e.Warnings[0].Message, "recursive include of a.hpp") {
		t.Errorf("warnings=%v; want one recursive include of a.hpp", e.Warnings)
	}
	if got, want := e.Warnings[0].Source, "b.hpp"; got != want {
		t.Errorf("warning source=%q; want %q", got, want)
	}
	res := Parse(e.Text, "test")
	if diff := cmp.Diff([]string{"C", "B", "A"}, names(res.Declarations())); diff != "" {
		t.Errorf("Parse names -want +got:\n%s", diff)
	}
}

func TestExpandIncludesMissingFile(t *testing.T) {
	_, err := ExpandIncludes(fstest.MapFS{}, "config.cpp")
	if err == nil {
		t.Errorf("ExpandIncludes(missing)=nil err; want error")
	}
}
