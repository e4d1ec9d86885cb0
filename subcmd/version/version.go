// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package version provides version subcommand.
package version

import (
	"fmt"
	"io"
	"runtime/debug"
	"strings"

	"github.com/maruel/subcommands"
)

// Cmd returns the Command for the `version` subcommand provided by this package.
func Cmd(ver string) *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "version",
		ShortDesc: "prints the executable version",
		LongDesc:  "Prints the executable version and the build information of the executable.",
		CommandRun: func() subcommands.CommandRun {
			r := &versionRun{version: ver}
			r.init()
			return r
		},
	}
}

type versionRun struct {
	subcommands.CommandRunBase
	version string
	deps    bool
}

func (c *versionRun) init() {
	c.Flags.BoolVar(&c.deps, "deps", false, "also print dependency modules")
}

func (c *versionRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	if len(args) != 0 {
		fmt.Fprintf(a.GetErr(), "%s: position arguments not expected\n", a.GetName())
		return 1
	}
	buildInfo, _ := debug.ReadBuildInfo()
	Print(a.GetOut(), c.version, buildInfo, c.deps)
	return 0
}

// Print prints ver and build information to w.
func Print(w io.Writer, ver string, buildInfo *debug.BuildInfo, deps bool) {
	fmt.Fprintln(w, ver)
	if buildInfo == nil {
		return
	}
	if buildInfo.GoVersion != "" {
		fmt.Fprintf(w, "go\t%s\n", buildInfo.GoVersion)
	}
	for _, s := range buildInfo.Settings {
		if strings.HasPrefix(s.Key, "vcs.") {
			fmt.Fprintf(w, "build\t%s=%s\n", s.Key, s.Value)
		}
	}
	if !deps {
		return
	}
	for _, m := range buildInfo.Deps {
		fmt.Fprintf(w, "dep\t%s\n", ModuleInfo(m))
	}
}

// ModuleInfo returns a one line description of a module.
func ModuleInfo(m *debug.Module) string {
	if m == nil {
		return "<nil>"
	}
	return fmt.Sprintf("path:%s version:%s sum:%s replace:%s", m.Path, m.Version, m.Sum, ModuleInfo(m.Replace))
}

// VCSInfo returns vcs settings of the build.
func VCSInfo(buildInfo *debug.BuildInfo) string {
	m := make(map[string]string)
	for _, bs := range buildInfo.Settings {
		if strings.HasPrefix(bs.Key, "vcs.") {
			m[bs.Key] = bs.Value
		}
	}
	return fmt.Sprintf("vcs[revision=%s time=%s modified=%s]", m["vcs.revision"], m["vcs.time"], m["vcs.modified"])
}
