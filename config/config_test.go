// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package config

import (
	"errors"
	"flag"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func newFlagSet(o *Option) *flag.FlagSet {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	o.RegisterFlags(fs)
	return fs
}

func TestApplyEnv(t *testing.T) {
	var o Option
	fs := newFlagSet(&o)
	err := fs.Parse([]string{"-cache_dir", "/flag/cache", "-mod", "@cli"})
	if err != nil {
		t.Fatal(err)
	}
	env := map[string]string{
		"MISSIONCHECK_CACHE_DIR":       "/env/cache",
		"MISSIONCHECK_MOD":             "@env1, @env2",
		"MISSIONCHECK_INIDBI":          "db.ini",
		"MISSIONCHECK_ARCHIVE_TIMEOUT": "5s",
		"MISSIONCHECK_NO_CACHE":        "true",
	}
	err = ApplyEnv(fs, func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	if err != nil {
		t.Fatalf("ApplyEnv=%v", err)
	}
	// flags given on the command line win.
	if o.CacheDir != "/flag/cache" {
		t.Errorf("CacheDir=%q; want /flag/cache", o.CacheDir)
	}
	if diff := cmp.Diff([]string{"@cli"}, []string(o.ModDirs)); diff != "" {
		t.Errorf("ModDirs -want +got:\n%s", diff)
	}
	if o.INIDBI != "db.ini" || o.ArchiveTimeout != 5*time.Second || !o.NoCache {
		t.Errorf("INIDBI=%q ArchiveTimeout=%s NoCache=%t; want db.ini 5s true", o.INIDBI, o.ArchiveTimeout, o.NoCache)
	}

	var o2 Option
	fs = newFlagSet(&o2)
	err = ApplyEnv(fs, func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"@env1", "@env2"}, []string(o2.ModDirs)); diff != "" {
		t.Errorf("ModDirs from env -want +got:\n%s", diff)
	}

	var o3 Option
	fs = newFlagSet(&o3)
	err = ApplyEnv(fs, func(k string) (string, bool) {
		if k == "MISSIONCHECK_CACHE_TTL" {
			return "forever", true
		}
		return "", false
	})
	if err == nil {
		t.Errorf("ApplyEnv(bad duration)=nil; want error")
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	fname := filepath.Join(dir, "test.env")
	err := os.WriteFile(fname, []byte("MISSIONCHECK_LOG_LEVEL=debug\nMISSIONCHECK_EXTRACTPBO=/opt/extractpbo\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}
	t.Setenv("MISSIONCHECK_LOG_LEVEL", "")
	os.Unsetenv("MISSIONCHECK_LOG_LEVEL")
	t.Setenv("MISSIONCHECK_EXTRACTPBO", "/usr/bin/extractpbo")

	var o Option
	fset := newFlagSet(&o)
	err = LoadEnv(fset, fname)
	if err != nil {
		t.Fatalf("LoadEnv=%v", err)
	}
	if o.LogLevel != "debug" {
		t.Errorf("LogLevel=%q; want debug", o.LogLevel)
	}
	// process environment wins over .env.
	if o.ExtractPBO != "/usr/bin/extractpbo" {
		t.Errorf("ExtractPBO=%q; want /usr/bin/extractpbo", o.ExtractPBO)
	}
	if err := o.Check(); err != nil {
		t.Errorf("Check=%v", err)
	}

	err = LoadEnv(newFlagSet(&Option{}), filepath.Join(dir, "missing.env"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("LoadEnv(missing)=%v; want %v", err, fs.ErrNotExist)
	}
}

func TestLoadEnvDefault(t *testing.T) {
	// no .env in the working directory.
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
	err = LoadEnv(newFlagSet(&Option{}))
	if err != nil {
		t.Errorf("LoadEnv(default)=%v; want nil", err)
	}
}

func TestCheck(t *testing.T) {
	var o Option
	fs := newFlagSet(&o)
	if err := fs.Parse(nil); err != nil {
		t.Fatal(err)
	}
	if err := o.Check(); err != nil {
		t.Errorf("Check(defaults)=%v", err)
	}
	for _, args := range [][]string{
		{"-cache_ttl", "0s"},
		{"-archive_timeout", "-1s"},
		{"-log_level", "loud"},
	} {
		var o Option
		fs := newFlagSet(&o)
		if err := fs.Parse(args); err != nil {
			t.Fatal(err)
		}
		if err := o.Check(); err == nil {
			t.Errorf("Check(%q)=nil; want error", args)
		}
	}
}

func TestDefaultLimits(t *testing.T) {
	numCPU := runtime.NumCPU()
	for _, tc := range []struct {
		env  string
		want Limits
	}{
		{
			env:  "",
			want: Limits{Roots: numCPU, Archive: numCPU, Missions: numCPU},
		},
		{
			env:  "roots=2, archive=8,missions=1",
			want: Limits{Roots: 2, Archive: 8, Missions: 1},
		},
		{
			env:  "roots=0,archive=x,bogus=3,missions",
			want: Limits{Roots: numCPU, Archive: numCPU, Missions: numCPU},
		},
	} {
		got := DefaultLimits(func(k string) string {
			if k == LimitsEnv {
				return tc.env
			}
			return ""
		})
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("DefaultLimits(%q) -want +got:\n%s", tc.env, diff)
		}
	}
}
