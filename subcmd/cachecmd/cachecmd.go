// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package cachecmd provides cache subcommand.
package cachecmd

import (
	"os"

	"github.com/maruel/subcommands"
)

// Cmd returns the Command for the `cache` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "cache <subcommand>",
		ShortDesc: "manage the scan cache",
		LongDesc:  "manage the scan cache.",
		Advanced:  true,
		CommandRun: func() subcommands.CommandRun {
			c := &cacheRun{
				app: &subcommands.DefaultApplication{
					Name:  "missioncheck cache",
					Title: "tool to manage the scan cache",
					Commands: []*subcommands.Command{
						cmdClear(),
						cmdGC(),
						subcommands.CmdHelp,
					},
				},
			}
			c.Flags.Usage = func() {
				subcommands.Usage(os.Stderr, c.app, true)
			}
			return c
		},
	}
}

type cacheRun struct {
	subcommands.CommandRunBase
	app *subcommands.DefaultApplication
}

func (c *cacheRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	return subcommands.Run(c.app, args)
}
