// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package modset

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/infra/build/missioncheck/assets"
	"go.chromium.org/infra/build/missioncheck/scancache"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		fname := filepath.Join(root, filepath.FromSlash(name))
		err := os.MkdirAll(filepath.Dir(fname), 0755)
		if err != nil {
			t.Fatal(err)
		}
		err = os.WriteFile(fname, []byte(content), 0644)
		if err != nil {
			t.Fatal(err)
		}
	}
}

func TestSourceID(t *testing.T) {
	for _, tc := range []struct {
		root, want string
	}{
		{root: "/mods/@CBA_A3", want: "CBA_A3"},
		{root: "/mods/@ace/", want: "ace"},
		{root: "vanilla", want: "vanilla"},
	} {
		if got := SourceID(tc.root); got != tc.want {
			t.Errorf("SourceID(%q)=%q; want %q", tc.root, got, tc.want)
		}
	}
}

func TestBuild(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"@base/addons/main/config.cpp": `
class CfgVehicles {
	class Vehicle {};
	class Car: Vehicle { scope = 2; };
};
`,
		"@base/addons/main/data/tex.paa": "",
		"@base/readme.txt":               "class NotConfig {};",
		"@over/config.cpp": `
class CfgVehicles {
	class Car: Vehicle { scope = 1; };
	class Truck: Car {};
};
`,
		"@over/broken.hpp": "class Good { a = 1; };\n};\nclass Lost {};\n",
		"db.ini": `[CategoryData_CfgWeapons]
header="ClassName,Source,Category,Parent,InheritsFrom,IsSimpleObject,NumProperties,Scope,Model,DisplayName"
1="arifle_MX_F,vanilla,CfgWeapons,Rifle_Base_F,Rifle_Base_F,false,12,2,\A3\weapons_f\mx.p3d,MX 6.5 mm"
`,
	})
	store := scancache.NewMemoryStore()
	opts := Options{
		Roots:  []string{filepath.Join(dir, "@base"), filepath.Join(dir, "@over")},
		INIDBI: filepath.Join(dir, "db.ini"),
		Store:  store,
		Collector: &assets.Collector{
			Lister: assets.ListerFunc(func(ctx context.Context, archive string) (assets.Listing, error) {
				return assets.Listing{}, nil
			}),
		},
	}
	content, err := Build(ctx, opts)
	if err != nil {
		t.Fatalf("Build=%v; want nil err", err)
	}
	for _, name := range []string{"CfgVehicles", "CfgVehicles.Vehicle", "CfgVehicles.Car", "CfgVehicles.Truck", "Good", "arifle_MX_F"} {
		if _, ok := content.DB.Get(name); !ok {
			t.Errorf("DB.Get(%q) not found", name)
		}
	}
	if _, ok := content.DB.Get("NotConfig"); ok {
		t.Errorf("DB.Get(NotConfig) found; readme.txt is not a config")
	}
	car, ok := content.DB.Get("cfgvehicles.car")
	if !ok {
		t.Fatal("Car not found")
	}
	if car.Source != "over" || car.Properties["scope"] != "1" {
		t.Errorf("Car source=%q scope=%q; want over, 1 (last wins)", car.Source, car.Properties["scope"])
	}
	if _, ok := content.DB.GetFromSource("CfgVehicles.Car", "base"); !ok {
		t.Errorf("Car from base lost")
	}
	if diff := cmp.Diff([]string{"main/data/tex.paa"}, content.Assets.Paths()); diff != "" {
		t.Errorf("Assets -want +got:\n%s", diff)
	}
	var recoveredWarn bool
	for _, w := range content.Warnings {
		if strings.HasPrefix(w.Source, "over:broken.hpp") {
			recoveredWarn = true
		}
	}
	if !recoveredWarn {
		t.Errorf("Warnings=%v; want a warning for over:broken.hpp", content.Warnings)
	}
	if content.Stats.Recovered != 1 || content.Stats.Serialized != 1 || content.Stats.CachedRoots != 0 {
		t.Errorf("Stats=%+v; want Recovered=1 Serialized=1 CachedRoots=0", content.Stats)
	}

	// second build hits the cache.
	content, err = Build(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if content.Stats.CachedRoots != 2 {
		t.Errorf("CachedRoots=%d; want 2", content.Stats.CachedRoots)
	}
	if _, ok := content.DB.Get("CfgVehicles.Truck"); !ok {
		t.Errorf("Truck lost from cached scan")
	}

	// touching a tracked file invalidates one root.
	fname := filepath.Join(dir, "@over", "config.cpp")
	mtime := time.Now().Add(time.Hour)
	err = os.Chtimes(fname, mtime, mtime)
	if err != nil {
		t.Fatal(err)
	}
	content, err = Build(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if content.Stats.CachedRoots != 1 {
		t.Errorf("CachedRoots=%d; want 1", content.Stats.CachedRoots)
	}
}

func TestBuildErrors(t *testing.T) {
	ctx := context.Background()
	_, err := Build(ctx, Options{})
	if !errors.Is(err, ErrNoContent) {
		t.Errorf("Build(empty)=%v; want %v", err, ErrNoContent)
	}
	_, err = Build(ctx, Options{Roots: []string{filepath.Join(t.TempDir(), "@missing")}})
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Build(missing root)=%v; want %v", err, fs.ErrNotExist)
	}
	_, err = Build(ctx, Options{INIDBI: filepath.Join(t.TempDir(), "missing.ini")})
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Build(missing inidbi)=%v; want %v", err, fs.ErrNotExist)
	}
}

func TestBuildIncludes(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"@mod/addons/main/config.cpp": `#include "script_component.hpp"
class CfgVehicles {
	class Car;
	#include "CfgVehicles.hpp"
};
`,
		"@mod/addons/main/script_component.hpp": "#define COMPONENT main\n",
		"@mod/addons/main/CfgVehicles.hpp":      "class MyCar: Car { scope = 2; };\n",
		"@mod/addons/other/standalone.hpp":      "class Loose {};\n",
	})
	content, err := Build(ctx, Options{Roots: []string{filepath.Join(dir, "@mod")}})
	if err != nil {
		t.Fatalf("Build=%v; want nil err", err)
	}
	if diff := cmp.Diff([]string{"CfgVehicles", "CfgVehicles.MyCar", "Loose"}, content.DB.Names()); diff != "" {
		t.Errorf("DB.Names -want +got:\n%s", diff)
	}
	if content.Stats.Files != 2 {
		t.Errorf("Stats.Files=%d; want 2 (config.cpp and standalone.hpp)", content.Stats.Files)
	}
}
