// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package builddb is builddb subcommand to build and inspect the class
// database of mods.
package builddb

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
	"go.chromium.org/luci/common/flag/stringlistflag"
	"go.chromium.org/luci/common/system/signals"

	"go.chromium.org/infra/build/missioncheck/classdb"
	"go.chromium.org/infra/build/missioncheck/config"
	"go.chromium.org/infra/build/missioncheck/modset"
	"go.chromium.org/infra/build/missioncheck/ui"
)

const usage = `build class database of mods
Parse mod folders and INIDBI2 export, and print statistics.
With -class, print the inheritance chain and derived classes of the class.
With -usage, print the most used classes as parent or property value.

 $ missioncheck builddb -mod @CBA_A3 -mod @ace
 $ missioncheck builddb -inidbi classes.ini -class Car
`

// Cmd returns the Command for the `builddb` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "builddb <args>...",
		ShortDesc: "build class database of mods",
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

	opt      config.Option
	envFiles stringlistflag.Flag
	classes  stringlistflag.Flag
	output   string
	warnings bool
	usage    int
}

func (c *run) init() {
	c.opt.RegisterFlags(&c.Flags)
	c.Flags.Var(&c.envFiles, "env_file", "env file to load flags from (repeatable). default: .env")
	c.Flags.Var(&c.classes, "class", "class to inspect (repeatable)")
	c.Flags.StringVar(&c.output, "o", "", `write JSON summary to the file. "-" for stdout`)
	c.Flags.BoolVar(&c.warnings, "warnings", false, "print parse warnings")
	c.Flags.IntVar(&c.usage, "usage", 0, "print the N most used classes")
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

// summary is the JSON summary of the database.
type summary struct {
	Stats    modset.Stats          `json:"stats"`
	Sources  []classdb.SourceCount `json:"sources"`
	Classes  []classInfo           `json:"classes,omitempty"`
	Usage    []classdb.Usage       `json:"usage,omitempty"`
	Warnings []string              `json:"warnings,omitempty"`
}

type classInfo struct {
	Name          string   `json:"name"`
	Found         bool     `json:"found"`
	Source        string   `json:"source,omitempty"`
	Chain         []string `json:"chain,omitempty"`
	Cycle         bool     `json:"cycle,omitempty"`
	MissingParent string   `json:"missing_parent,omitempty"`
	Derived       []string `json:"derived,omitempty"`
	Suggestions   []string `json:"suggestions,omitempty"`
}

func (c *run) run(ctx context.Context, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer signals.HandleInterrupt(cancel)()

	if len(args) > 0 {
		return fmt.Errorf("position arguments not expected: %w", flag.ErrHelp)
	}
	err := config.LoadEnv(&c.Flags, c.envFiles...)
	if err != nil {
		return err
	}
	err = c.opt.Check()
	if err != nil {
		return fmt.Errorf("%w: %w", err, flag.ErrHelp)
	}
	c.opt.SetupLog()

	store, closeStore, err := c.opt.OpenStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	content, err := c.opt.BuildContent(ctx, store)
	if err != nil {
		return err
	}
	s := summary{
		Stats:   content.Stats,
		Sources: content.DB.Sources(),
	}
	for _, w := range content.Warnings {
		s.Warnings = append(s.Warnings, w.String())
	}
	for _, name := range c.classes {
		s.Classes = append(s.Classes, inspect(content.DB, name))
	}
	if c.usage > 0 {
		s.Usage = content.DB.Usage()
		if len(s.Usage) > c.usage {
			s.Usage = s.Usage[:c.usage]
		}
	}

	var out io.Writer = os.Stdout
	if c.output == "-" {
		out = os.Stderr
	}
	printSummary(out, s, c.warnings)
	if c.output == "" {
		return nil
	}
	buf, err := json.MarshalIndent(s, "", "  ")
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

func inspect(db *classdb.DB, name string) classInfo {
	ci := classInfo{Name: name}
	rec, ok := db.Get(name)
	if !ok {
		ci.Suggestions = db.Suggest(name, 10)
		return ci
	}
	ci.Found = true
	ci.Name = rec.Name
	ci.Source = rec.Source
	chain := db.InheritanceChain(name)
	ci.Chain = chain.Names()
	ci.Cycle = chain.Cycle
	ci.MissingParent = chain.MissingParent
	ci.Derived = db.DerivedClasses(name)
	return ci
}

func printSummary(w io.Writer, s summary, warnings bool) {
	ui.PrintStats(w, s.Stats, s.Sources, len(s.Warnings))
	if warnings {
		for _, msg := range s.Warnings {
			fmt.Fprintf(w, "warning: %s\n", msg)
		}
	}
	for _, ci := range s.Classes {
		if !ci.Found {
			fmt.Fprintf(w, "class %s: not found\n", ci.Name)
			if len(ci.Suggestions) > 0 {
				fmt.Fprintf(w, "  did you mean: %s\n", strings.Join(ci.Suggestions, ", "))
			}
			continue
		}
		fmt.Fprintf(w, "class %s (%s)\n", ci.Name, ci.Source)
		fmt.Fprintf(w, "  chain: %s\n", strings.Join(ci.Chain, " -> "))
		if ci.Cycle {
			fmt.Fprintf(w, "  cycle detected\n")
		}
		if ci.MissingParent != "" {
			fmt.Fprintf(w, "  missing parent: %s\n", ci.MissingParent)
		}
		fmt.Fprintf(w, "  derived: %d\n", len(ci.Derived))
		for _, d := range ci.Derived {
			fmt.Fprintf(w, "    %s\n", d)
		}
	}
	if len(s.Usage) > 0 {
		fmt.Fprintf(w, "most used classes:\n")
	}
	for _, u := range s.Usage {
		fmt.Fprintf(w, "  %s: %d children, %d references\n", u.Name, u.Children, u.References)
	}
}
