// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package graph is graph subcommand to export the class inheritance
// graph of mods.
package graph

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/flag/stringlistflag"
	"go.chromium.org/luci/common/system/signals"

	"go.chromium.org/infra/build/missioncheck/classdb"
	"go.chromium.org/infra/build/missioncheck/config"
)

const usage = `export class inheritance graph

 $ missioncheck graph -mod @CBA_A3 -mod @ace [<classes>...]
 $ missioncheck graph -inidbi classes.ini -format dot Car | dot -Tsvg

prints the inheritance graph of <classes>, their ancestors and derived
classes. If <classes> is not given, it prints the graph of all classes.

-format digraph prints one line per class: the class followed by its
parent. This output can be passed to digraph command, installed by
 $ go install golang.org/x/tools/cmd/digraph@latest

-format dot prints graphviz dot. -format json prints nodes and edges.
`

// Cmd returns the Command for the `graph` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "graph [<classes>...]",
		ShortDesc: "export class inheritance graph",
		LongDesc:  usage,
		Advanced:  true,
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
	format   string
	output   string
}

func (c *run) init() {
	c.opt.RegisterFlags(&c.Flags)
	c.Flags.Var(&c.envFiles, "env_file", "env file to load flags from (repeatable). default: .env")
	c.Flags.StringVar(&c.format, "format", "digraph", "output format. digraph, dot or json")
	c.Flags.StringVar(&c.output, "o", "-", `output file. "-" for stdout`)
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
	ctx, cancel := context.WithCancel(ctx)
	defer signals.HandleInterrupt(cancel)()

	write, ok := writers[c.format]
	if !ok {
		return fmt.Errorf("unknown format %q: %w", c.format, flag.ErrHelp)
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

	g, unknown := content.DB.Graph(args...)
	for _, name := range unknown {
		log.Warnf("class not found: %s", name)
	}
	if len(args) > 0 && len(unknown) == len(args) {
		return fmt.Errorf("no class found: %s", strings.Join(unknown, ", "))
	}

	var out io.Writer = os.Stdout
	if c.output != "-" {
		f, err := os.Create(c.output)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	w := bufio.NewWriter(out)
	err = write(w, g)
	if err != nil {
		return err
	}
	return w.Flush()
}

var writers = map[string]func(io.Writer, classdb.Graph) error{
	"digraph": writeDigraph,
	"dot":     writeDot,
	"json":    writeJSON,
}

func writeDigraph(w io.Writer, g classdb.Graph) error {
	parents := make(map[string]string, len(g.Edges))
	for _, e := range g.Edges {
		parents[e.From] = e.To
	}
	for _, n := range g.Nodes {
		var err error
		if p, ok := parents[n.ID]; ok {
			_, err = fmt.Fprintf(w, "%s %s\n", n.ID, p)
		} else {
			_, err = fmt.Fprintf(w, "%s\n", n.ID)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func writeDot(w io.Writer, g classdb.Graph) error {
	fmt.Fprintln(w, "digraph inheritance {")
	fmt.Fprintln(w, "  rankdir=BT;")
	for _, n := range g.Nodes {
		var attrs []string
		if n.Source != "" {
			attrs = append(attrs, "tooltip="+strconv.Quote(n.Source))
		}
		if n.Missing {
			attrs = append(attrs, "style=dashed")
		}
		if len(attrs) == 0 {
			fmt.Fprintf(w, "  %s;\n", strconv.Quote(n.ID))
			continue
		}
		fmt.Fprintf(w, "  %s [%s];\n", strconv.Quote(n.ID), strings.Join(attrs, ", "))
	}
	for _, e := range g.Edges {
		fmt.Fprintf(w, "  %s -> %s;\n", strconv.Quote(e.From), strconv.Quote(e.To))
	}
	_, err := fmt.Fprintln(w, "}")
	return err
}

func writeJSON(w io.Writer, g classdb.Graph) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(g)
}
