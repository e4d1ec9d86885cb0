// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package ui prints results for humans.
package ui

import (
	"fmt"
	"io"
	"strings"

	"go.chromium.org/infra/build/missioncheck/classdb"
	"go.chromium.org/infra/build/missioncheck/modset"
	"go.chromium.org/infra/build/missioncheck/validate"
)

// PrintResult prints a validation result of a mission.
// With verbose, found classes and assets are printed too.
func PrintResult(w io.Writer, r validate.Result, verbose bool) {
	if r.Err != nil {
		fmt.Fprintf(w, "FAIL %s: %v\n", r.Root, r.Err)
		return
	}
	rep := r.Report
	status := "OK"
	if !rep.OK() {
		status = "MISSING"
	}
	cached := ""
	if rep.Stats.Cached {
		cached = ", cached"
	}
	fmt.Fprintf(w, "%s %s: %d found, %d missing, %d ignored classes; %d found, %d missing assets (%s%s)\n",
		status, rep.Mission,
		len(rep.FoundClasses), len(rep.MissingClasses), len(rep.IgnoredClasses),
		len(rep.FoundAssets), len(rep.MissingAssets),
		FormatDuration(rep.Stats.Duration), cached)
	for _, m := range rep.MissingClasses {
		fmt.Fprintf(w, "  missing class %s  [%s]\n", m.Name, strings.Join(m.ReferencedFrom, ", "))
		if len(m.Suggestions) > 0 {
			fmt.Fprintf(w, "    did you mean: %s\n", strings.Join(m.Suggestions, ", "))
		}
	}
	for _, m := range rep.MissingAssets {
		fmt.Fprintf(w, "  missing asset %s  [%s]\n", m.Path, strings.Join(m.ReferencedFrom, ", "))
	}
	for _, warn := range rep.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warn)
	}
	if !verbose {
		return
	}
	for _, name := range rep.FoundClasses {
		fmt.Fprintf(w, "  found class %s\n", name)
	}
	for _, p := range rep.FoundAssets {
		fmt.Fprintf(w, "  found asset %s\n", p)
	}
}

// ResultCounts counts results by outcome.
type ResultCounts struct {
	OK      int
	Missing int
	Failed  int
}

// Count counts results.
func Count(results []validate.Result) ResultCounts {
	var c ResultCounts
	for _, r := range results {
		switch {
		case r.Err != nil:
			c.Failed++
		case !r.Report.OK():
			c.Missing++
		default:
			c.OK++
		}
	}
	return c
}

// PrintResults prints all results followed by a total line.
func PrintResults(w io.Writer, results []validate.Result, verbose bool) ResultCounts {
	for _, r := range results {
		PrintResult(w, r, verbose)
	}
	c := Count(results)
	fmt.Fprintf(w, "%d missions: %d ok, %d with missing dependencies, %d failed\n", len(results), c.OK, c.Missing, c.Failed)
	return c
}

// PrintStats prints statistics of loaded content and its sources.
func PrintStats(w io.Writer, st modset.Stats, sources []classdb.SourceCount, warnings int) {
	fmt.Fprintf(w, "%d classes from %d roots (%d cached), %d files, %d recovered\n", st.Classes, st.Roots, st.CachedRoots, st.Files, st.Recovered)
	if st.Serialized > 0 {
		fmt.Fprintf(w, "%d classes from INIDBI2 export\n", st.Serialized)
	}
	fmt.Fprintf(w, "%d assets, %d archives (%d failed to list)\n", st.Assets, st.Archives, st.FailedLists)
	fmt.Fprintf(w, "%d warnings in %s\n", warnings, FormatDuration(st.Duration))
	for _, sc := range sources {
		fmt.Fprintf(w, "  %-30s %d\n", sc.Source, sc.Count)
	}
}
