// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package inidbi parses class exports written by the INIDBI2 database
// addon.
//
// An export consists of sections
//
//	[CategoryData_Weapons]
//	header="ClassName,Source,Category,Parent,..."
//	1="Rifle_F,mymod,Weapons,Rifle_Base,..."
//
// where each numbered row is a CSV record mapped to the header's
// columns (or DefaultHeader when the section has no header line).
package inidbi

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"go.chromium.org/infra/build/missioncheck/classdef"
)

// DefaultHeader is the column order used when a section has no header.
var DefaultHeader = []string{
	"ClassName",
	"Source",
	"Category",
	"Parent",
	"InheritsFrom",
	"IsSimpleObject",
	"NumProperties",
	"Scope",
	"Model",
	"DisplayName",
}

const sectionPrefix = "[CategoryData_"

// Result is a result of Parse.
type Result struct {
	// Sources maps source (mod) to its classes.
	Sources map[string]*classdef.Set

	Warnings []classdef.Warning

	// Skipped is the number of rows skipped.
	Skipped int
}

// Len returns the number of classes in all sources.
func (r Result) Len() int {
	n := 0
	for _, s := range r.Sources {
		n += s.Len()
	}
	return n
}

// ParseFile parses the export in fname.
func ParseFile(fname string) (Result, error) {
	f, err := os.Open(fname)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()
	res, err := Parse(f, fname)
	if err != nil {
		return Result{}, fmt.Errorf("parse %s: %w", fname, err)
	}
	return res, nil
}

// Parse parses an export read from r. fname is used in warnings.
// Malformed rows are skipped; only read errors are returned.
func Parse(r io.Reader, fname string) (Result, error) {
	res := Result{Sources: make(map[string]*classdef.Set)}
	var category string
	header := DefaultHeader
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineno := 0
	for s.Scan() {
		lineno++
		line := strings.TrimSpace(s.Text())
		switch {
		case line == "" || strings.HasPrefix(line, ";"):
			continue
		case strings.HasPrefix(line, sectionPrefix) && strings.HasSuffix(line, "]"):
			category = strings.TrimSuffix(strings.TrimPrefix(line, sectionPrefix), "]")
			header = DefaultHeader
			continue
		case strings.HasPrefix(line, "["):
			// other section (e.g. meta data); rows are not classes.
			category = ""
			continue
		case strings.HasPrefix(line, "header="):
			fields, err := splitRow(strings.TrimPrefix(line, "header="))
			if err != nil || len(fields) == 0 {
				res.warn(fname, lineno, "bad header: %v", err)
				continue
			}
			header = fields
			continue
		}
		if category == "" {
			continue
		}
		_, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		fields, err := splitRow(value)
		if err != nil {
			res.skip(fname, lineno, "malformed row: %v", err)
			continue
		}
		rec, ok := newRecord(fields, header, category)
		if !ok {
			res.skip(fname, lineno, "row has %d fields; need class name, source and category", len(fields))
			continue
		}
		set, ok := res.Sources[rec.Source]
		if !ok {
			set = classdef.NewSet()
			res.Sources[rec.Source] = set
		}
		set.Add(rec)
	}
	if err := s.Err(); err != nil {
		return res, err
	}
	log.Debugf("inidbi %s: %d classes from %d sources, %d rows skipped", fname, res.Len(), len(res.Sources), res.Skipped)
	return res, nil
}

func (r *Result) warn(fname string, line int, format string, args ...any) {
	r.Warnings = append(r.Warnings, classdef.Warning{
		Source:  fname,
		Line:    line,
		Column:  1,
		Message: fmt.Sprintf(format, args...),
	})
}

func (r *Result) skip(fname string, line int, format string, args ...any) {
	r.Skipped++
	log.Debugf("%s:%d: skip: "+format, append([]any{fname, line}, args...)...)
	r.warn(fname, line, format, args...)
}

// splitRow parses a quoted CSV row `"a,b,""c"""`.
func splitRow(value string) ([]string, error) {
	value = strings.TrimSpace(value)
	if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
		value = value[1 : len(value)-1]
	}
	if value == "" {
		return nil, nil
	}
	cr := csv.NewReader(strings.NewReader(value))
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	fields, err := cr.Read()
	if err != nil {
		return nil, err
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields, nil
}

// newRecord maps fields to header columns.
func newRecord(fields, header []string, category string) (*classdef.Record, bool) {
	if len(fields) < 3 {
		return nil, false
	}
	props := make(map[string]string, len(header))
	for i, h := range header {
		if i < len(fields) {
			props[h] = fields[i]
		} else {
			props[h] = ""
		}
	}
	name := props["ClassName"]
	if name == "" {
		return nil, false
	}
	source := props["Source"]
	if source == "" {
		source = "unknown"
	}
	if c := props["Category"]; c != "" {
		category = c
	}
	return &classdef.Record{
		Name:       name,
		Parent:     props["Parent"],
		Source:     source,
		Properties: props,
		Kind:       classdef.Serialized,
		Meta: &classdef.Meta{
			Category:       category,
			InheritsFrom:   props["InheritsFrom"],
			IsSimpleObject: parseBool(props["IsSimpleObject"]),
			NumProperties:  atoi(props["NumProperties"]),
			Scope:          atoi(props["Scope"]),
			ModelPath:      props["Model"],
			DisplayName:    props["DisplayName"],
		},
	}, true
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "1":
		return true
	}
	return false
}

// atoi parses s, falling back to 0.
func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// Check reports suspicious metadata of a serialized record:
// a parent that differs from the inherited class, a scope other
// than 0, 1 or 2, and a model that is not a p3d or paa file.
func Check(rec *classdef.Record) []string {
	if rec.Meta == nil {
		return nil
	}
	var msgs []string
	m := rec.Meta
	if m.InheritsFrom != "" && rec.Parent != "" && !strings.EqualFold(m.InheritsFrom, rec.Parent) {
		msgs = append(msgs, fmt.Sprintf("%s: parent %q differs from inherits_from %q", rec.Name, rec.Parent, m.InheritsFrom))
	}
	if m.Scope < 0 || m.Scope > 2 {
		msgs = append(msgs, fmt.Sprintf("%s: invalid scope %d", rec.Name, m.Scope))
	}
	if m.ModelPath != "" {
		model := strings.ToLower(m.ModelPath)
		if !strings.HasSuffix(model, ".p3d") && !strings.HasSuffix(model, ".paa") {
			msgs = append(msgs, fmt.Sprintf("%s: unexpected model %q", rec.Name, m.ModelPath))
		}
	}
	return msgs
}
