// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package validatecmd is validate subcommand to check missions against
// loaded mods.
package validatecmd

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/flag/stringlistflag"
	"go.chromium.org/luci/common/system/signals"

	"go.chromium.org/infra/build/missioncheck/config"
	"go.chromium.org/infra/build/missioncheck/ui"
	"go.chromium.org/infra/build/missioncheck/validate"
)

const usage = `validate missions against mods
Check that classes and assets referenced by missions are provided by
the given mod folders or INIDBI2 export.

 $ missioncheck validate -mod @CBA_A3 -mod @ace <mission dir>...
 $ missioncheck validate -inidbi classes.ini -missions mpmissions

Flags may also be given as MISSIONCHECK_<FLAG> in the environment or
in a .env file.
`

// errMissing is returned when -fail_on_missing is set and something is
// missing.
var errMissing = errors.New("missing dependencies")

// Cmd returns the Command for the `validate` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "validate <args>...",
		ShortDesc: "validate missions against mods",
		LongDesc:  usage,
		CommandRun: func() subcommands.CommandRun {
			c := &run{}
			c.init()
			return c
		},
	}
}

type run struct {
	subcommands.CommandRunBase

	opt           config.Option
	missionDirs   stringlistflag.Flag
	envFiles      stringlistflag.Flag
	output        string
	suggestions   int
	failOnMissing bool
	verbose       bool
}

func (c *run) init() {
	c.opt.RegisterFlags(&c.Flags)
	c.Flags.Var(&c.missionDirs, "missions", "directory containing mission folders (repeatable)")
	c.Flags.Var(&c.envFiles, "env_file", "env file to load flags from (repeatable). default: .env")
	c.Flags.StringVar(&c.output, "o", "", `write JSON report to the file. "-" for stdout`)
	c.Flags.IntVar(&c.suggestions, "suggestions", validate.DefaultSuggestions, "max suggestions per missing class. negative disables")
	c.Flags.BoolVar(&c.failOnMissing, "fail_on_missing", false, "exit with non-zero status if anything is missing")
	c.Flags.BoolVar(&c.verbose, "v", false, "print found classes and assets too")
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	err := c.run(ctx, args)
	if err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			fmt.Fprintf(os.Stderr, "%v\n%s\n", err, usage)
		case errors.Is(err, errMissing):
			fmt.Fprintf(os.Stderr, "%v\n", err)
		default:
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func (c *run) run(ctx context.Context, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer signals.HandleInterrupt(cancel)()

	err := config.LoadEnv(&c.Flags, c.envFiles...)
	if err != nil {
		return err
	}
	err = c.opt.Check()
	if err != nil {
		return fmt.Errorf("%w: %w", err, flag.ErrHelp)
	}
	c.opt.SetupLog()

	roots := append([]string(nil), args...)
	for _, dir := range c.missionDirs {
		found, err := validate.FindMissions(dir)
		if err != nil {
			return err
		}
		roots = append(roots, found...)
	}
	if len(roots) == 0 {
		return fmt.Errorf("no missions given: %w", flag.ErrHelp)
	}
	ignore, err := c.opt.Ignore()
	if err != nil {
		return err
	}

	store, closeStore, err := c.opt.OpenStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	content, err := c.opt.BuildContent(ctx, store)
	if err != nil {
		return err
	}
	for _, w := range content.Warnings {
		log.Warnf("content: %s", w)
	}

	v, err := validate.New(content.DB, content.Assets, validate.Options{
		Ignore:      ignore,
		Suggestions: c.suggestions,
		Store:       store,
		Jobs:        config.DefaultLimits(os.Getenv).Missions,
	})
	if err != nil {
		return err
	}
	log.Infof("run %s: %d missions", v.RunID(), len(roots))
	results, err := v.ValidateAll(ctx, roots)
	if err != nil {
		return err
	}

	// keep stdout for the JSON report with -o -.
	var out io.Writer = os.Stdout
	if c.output == "-" {
		out = os.Stderr
	}
	counts := ui.PrintResults(out, results, c.verbose)

	if c.output != "" {
		err = writeJSON(c.output, results)
		if err != nil {
			return err
		}
	}
	if counts.Failed > 0 {
		return fmt.Errorf("%d missions failed to validate", counts.Failed)
	}
	if counts.Missing > 0 && c.failOnMissing {
		return fmt.Errorf("%d missions: %w", counts.Missing, errMissing)
	}
	return nil
}

func writeJSON(fname string, v any) error {
	buf, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	buf = append(buf, '\n')
	if fname == "-" {
		_, err = os.Stdout.Write(buf)
		return err
	}
	return os.WriteFile(fname, buf, 0644)
}
