// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Missioncheck checks missions against the classes and assets of mods.
package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/charmbracelet/log"
	"github.com/maruel/subcommands"

	"go.chromium.org/infra/build/missioncheck/subcmd/builddb"
	"go.chromium.org/infra/build/missioncheck/subcmd/cachecmd"
	"go.chromium.org/infra/build/missioncheck/subcmd/compare"
	"go.chromium.org/infra/build/missioncheck/subcmd/graph"
	"go.chromium.org/infra/build/missioncheck/subcmd/help"
	"go.chromium.org/infra/build/missioncheck/subcmd/validatecmd"
	"go.chromium.org/infra/build/missioncheck/subcmd/version"
)

const missioncheckVersion = "missioncheck v1.0.0"

func getApplication() *subcommands.DefaultApplication {
	return &subcommands.DefaultApplication{
		Name:  "missioncheck",
		Title: "Mission dependency checker",
		Commands: []*subcommands.Command{
			validatecmd.Cmd(),
			builddb.Cmd(),
			compare.Cmd(),
			graph.Cmd(),
			cachecmd.Cmd(),
			help.Cmd(),
			version.Cmd(missioncheckVersion),
		},
	}
}

func main() {
	os.Exit(missioncheckMain(os.Args[1:]))
}

func missioncheckMain(args []string) (exitCode int) {
	// Print a stack trace when a panic occurs.
	defer func() {
		if r := recover(); r != nil {
			const size = 64 << 10
			buf := make([]byte, size)
			buf = buf[:runtime.Stack(buf, false)]
			fmt.Fprintf(os.Stderr, "panic: %v\n%s", r, buf)
			exitCode = 2
		}
	}()

	buildinfo, ok := debug.ReadBuildInfo()
	if ok {
		log.Debugf("main module: %s %s", version.ModuleInfo(&buildinfo.Main), version.VCSInfo(buildinfo))
	}
	return subcommands.Run(getApplication(), args)
}
