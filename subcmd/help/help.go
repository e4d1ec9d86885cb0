// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package help provides help subcommand.
package help

import (
	"fmt"
	"io"

	"github.com/maruel/subcommands"

	"go.chromium.org/infra/build/missioncheck/config"
)

// Cmd returns the Command for the `help` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "help [<command>|-advanced]",
		ShortDesc: "prints help about a command",
		LongDesc:  "Prints commands and how to configure them, or help about a specific command.\nUse -advanced to display all commands.",
		CommandRun: func() subcommands.CommandRun {
			ret := &helpCmdRun{}
			ret.Flags.BoolVar(&ret.advanced, "advanced", false, "show advanced commands")
			return ret
		},
	}
}

type helpCmdRun struct {
	subcommands.CommandRunBase
	advanced bool
}

func (h *helpCmdRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	// For top-level help, print subcommands.Usage, then how flags
	// are configured.
	if len(args) == 0 {
		subcommands.Usage(a.GetOut(), a, h.advanced)
		printConfigHelp(a.GetOut())
		return 0
	}

	// Use default subcommands.CmdHelp for all other cases.
	helpInit := subcommands.CmdHelp.CommandRun()
	return helpInit.Run(a, args, env)
}

func printConfigHelp(w io.Writer) {
	fmt.Fprintf(w, "Flags not given on the command line are read from %s<FLAG> environment\n", config.EnvPrefix)
	fmt.Fprintf(w, "variables (e.g. %s for -cache_dir), also loaded from a .env file.\n", config.EnvName("cache_dir"))
	fmt.Fprintf(w, "Concurrency is limited by %s=roots=N,archive=N,missions=N.\n", config.LimitsEnv)
}
