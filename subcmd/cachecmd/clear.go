// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package cachecmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/system/signals"

	"go.chromium.org/infra/build/missioncheck/config"
	"go.chromium.org/infra/build/missioncheck/scancache"
)

const clearUsage = `remove all entries of the scan cache.

 $ missioncheck cache clear [-cache_dir <dir>]
`

func cmdClear() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "clear <args>",
		ShortDesc: "remove all entries of the scan cache",
		LongDesc:  clearUsage,
		CommandRun: func() subcommands.CommandRun {
			c := &clearRun{}
			c.init()
			return c
		},
	}
}

type clearRun struct {
	subcommands.CommandRunBase
	dir string
}

func (c *clearRun) init() {
	c.Flags.StringVar(&c.dir, "cache_dir", config.DefaultCacheDir(), "scan cache directory")
}

func (c *clearRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	err := c.run(ctx)
	if err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			fmt.Fprintf(os.Stderr, "%v\n%s\n", err, clearUsage)
		default:
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func (c *clearRun) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer signals.HandleInterrupt(cancel)()

	if c.dir == "" {
		return fmt.Errorf("no -cache_dir: %w", flag.ErrHelp)
	}
	s, err := scancache.NewLocalStore(c.dir)
	if err != nil {
		return err
	}
	defer s.Close()
	err = s.Clear(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("cleared %s\n", s.Dir())
	return nil
}
