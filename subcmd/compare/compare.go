// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package compare is compare subcommand to compare missing dependencies
// of two validation reports.
package compare

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"

	"go.chromium.org/infra/build/missioncheck/validate"
)

const usage = `compare two validation reports

 $ missioncheck validate -mod @CBA_A3 -o before.json <missions>...
 $ missioncheck validate -mod @CBA_A3 -mod @ace -o after.json <missions>...
 $ missioncheck compare before.json after.json

prints missing classes and assets that differ between the reports,
per mission. Missions are matched by name.
`

// Cmd returns the Command for the `compare` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "compare <a.json> <b.json>",
		ShortDesc: "compare two validation reports",
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

	output string
	all    bool
}

func (c *run) init() {
	c.Flags.StringVar(&c.output, "o", "", `write JSON comparison to the file. "-" for stdout`)
	c.Flags.BoolVar(&c.all, "all", false, "print unchanged missions too")
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	err := c.run(ctx, args)
	if err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			fmt.Fprintf(os.Stderr, "%v\n%s\n", err, usage)
		default:
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func (c *run) run(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("want 2 reports, got %d: %w", len(args), flag.ErrHelp)
	}
	a, err := loadResults(args[0])
	if err != nil {
		return err
	}
	b, err := loadResults(args[1])
	if err != nil {
		return err
	}
	cs := validate.Compare(a, b)

	var out io.Writer = os.Stdout
	if c.output == "-" {
		out = os.Stderr
	}
	printComparisons(out, cs, args[0], args[1], c.all)
	if c.output == "" {
		return nil
	}
	buf, err := json.MarshalIndent(cs, "", "  ")
	if err != nil {
		return err
	}
	buf = append(buf, '\n')
	if c.output == "-" {
		_, err = os.Stdout.Write(buf)
		return err
	}
	return os.WriteFile(c.output, buf, 0644)
}

func loadResults(fname string) ([]validate.Result, error) {
	buf, err := os.ReadFile(fname)
	if err != nil {
		return nil, err
	}
	var results []validate.Result
	err = json.Unmarshal(buf, &results)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", fname, err)
	}
	return results, nil
}

func printComparisons(w io.Writer, cs []validate.Comparison, aName, bName string, all bool) {
	changed := 0
	for _, c := range cs {
		if !c.Changed() {
			if all {
				fmt.Fprintf(w, "SAME %s: %d missing in both\n", c.Mission, len(c.Common))
			}
			continue
		}
		changed++
		switch {
		case !c.InA:
			fmt.Fprintf(w, "NEW %s: only in %s\n", c.Mission, bName)
		case !c.InB:
			fmt.Fprintf(w, "GONE %s: only in %s\n", c.Mission, aName)
		default:
			fmt.Fprintf(w, "DIFF %s: %d missing in both\n", c.Mission, len(c.Common))
		}
		printList(w, "missing only in "+aName, c.OnlyA)
		printList(w, "missing only in "+bName, c.OnlyB)
		printList(w, "asset missing only in "+aName, c.AssetsOnlyA)
		printList(w, "asset missing only in "+bName, c.AssetsOnlyB)
	}
	fmt.Fprintf(w, "%d missions, %d changed\n", len(cs), changed)
}

func printList(w io.Writer, title string, names []string) {
	if len(names) == 0 {
		return
	}
	fmt.Fprintf(w, "  %s: %s\n", title, strings.Join(names, ", "))
}
