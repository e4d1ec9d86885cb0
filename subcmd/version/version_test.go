// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package version

import (
	"bytes"
	"runtime/debug"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPrint(t *testing.T) {
	bi := &debug.BuildInfo{
		GoVersion: "go1.24.0",
		Deps: []*debug.Module{
			{Path: "github.com/charmbracelet/log", Version: "v0.4.0", Sum: "h1:x"},
		},
		Settings: []debug.BuildSetting{
			{Key: "GOOS", Value: "linux"},
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.modified", Value: "false"},
		},
	}
	var buf bytes.Buffer
	Print(&buf, "missioncheck v1.0.0", bi, true)
	want := `missioncheck v1.0.0
go	go1.24.0
build	vcs.revision=abc123
build	vcs.modified=false
dep	path:github.com/charmbracelet/log version:v0.4.0 sum:h1:x replace:<nil>
`
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("Print -want +got:\n%s", diff)
	}

	buf.Reset()
	Print(&buf, "v", nil, true)
	if got := buf.String(); got != "v\n" {
		t.Errorf("Print(nil buildinfo)=%q; want %q", got, "v\n")
	}
}

func TestVCSInfo(t *testing.T) {
	bi := &debug.BuildInfo{
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	}
	want := "vcs[revision=abc123 time=2026-01-02T03:04:05Z modified=]"
	if got := VCSInfo(bi); got != want {
		t.Errorf("VCSInfo=%q; want %q", got, want)
	}
}
