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
	"time"

	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/system/signals"

	"go.chromium.org/infra/build/missioncheck/config"
	"go.chromium.org/infra/build/missioncheck/scancache"
)

const gcUsage = `remove scan cache entries not used recently.

 $ missioncheck cache gc [-cache_dir <dir>] [-cache_ttl <duration>]
`

func cmdGC() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "gc <args>",
		ShortDesc: "remove scan cache entries not used recently",
		LongDesc:  gcUsage,
		CommandRun: func() subcommands.CommandRun {
			c := &gcRun{}
			c.init()
			return c
		},
	}
}

type gcRun struct {
	subcommands.CommandRunBase
	dir string
	ttl time.Duration
}

func (c *gcRun) init() {
	c.Flags.StringVar(&c.dir, "cache_dir", config.DefaultCacheDir(), "scan cache directory")
	c.Flags.DurationVar(&c.ttl, "cache_ttl", scancache.DefaultTTL, "remove entries not used for this long")
}

func (c *gcRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	err := c.run(ctx)
	if err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			fmt.Fprintf(os.Stderr, "%v\n%s\n", err, gcUsage)
		default:
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func (c *gcRun) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer signals.HandleInterrupt(cancel)()

	if c.dir == "" {
		return fmt.Errorf("no -cache_dir: %w", flag.ErrHelp)
	}
	if c.ttl <= 0 {
		return fmt.Errorf("-cache_ttl must be positive: %w", flag.ErrHelp)
	}
	s, err := scancache.NewLocalStore(c.dir)
	if err != nil {
		return err
	}
	defer s.Close()
	n, err := s.Evict(ctx, time.Now().Add(-c.ttl))
	if err != nil {
		return err
	}
	fmt.Printf("removed %d entries from %s\n", n, s.Dir())
	return nil
}
