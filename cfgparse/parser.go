// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package cfgparse parses config-language text into class records.
//
// It understands
//
//	class Name: Parent { key = value; arr[] = {a, b}; class Inner {...}; };
//
// with `//` and `/* */` comments, double-quoted strings, and
// preprocessor lines (which are skipped). The only macro it expands
// is LIST_N(item) inside equipment arrays.
//
// Input with unbalanced brackets is parsed in recovery mode: only
// class spans that are balanced on their own are kept, and a warning
// is reported for the file.
package cfgparse

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"go.chromium.org/infra/build/missioncheck/classdef"
)

// Parser parses config text. The zero value is ready to use.
type Parser struct {
	// ReferenceKeys are additional property keys whose values name
	// classes, on top of EquipmentKeys.
	ReferenceKeys []string

	// ReferenceScope limits ReferenceKeys to the records it accepts.
	// nil accepts all records. EquipmentKeys apply to all records.
	ReferenceScope func(rec *classdef.Record) bool

	// Seen accumulates reference names over Parse calls.
	// If nil, references are de-duplicated per call.
	Seen *Seen
}

// Result is a result of Parse.
type Result struct {
	// Classes holds declarations (nested ones included, also
	// reachable from their outer record) and references.
	Classes *classdef.Set

	Warnings []classdef.Warning

	// Recovered is true when the text was parsed in recovery mode.
	Recovered bool
}

// Declarations returns declared records, in order.
func (r Result) Declarations() []*classdef.Record {
	return r.Classes.Filter(classdef.Declaration)
}

// References returns reference records, in order.
func (r Result) References() []*classdef.Record {
	return r.Classes.Filter(classdef.Reference)
}

// Parse parses text with a zero Parser.
func Parse(text, source string) Result {
	var p Parser
	return p.Parse(text, source)
}

// Parse parses text declared in source.
// It never fails; problems are reported as warnings.
func (p *Parser) Parse(text, source string) Result {
	res := Result{Classes: classdef.NewSet()}
	if IsBinarized(text) {
		res.Warnings = append(res.Warnings, classdef.Warning{
			Source:  source,
			Message: "binarized config is not supported",
		})
		return res
	}
	seen := p.Seen
	if seen == nil {
		seen = NewSeen()
	}
	keys := keySet(EquipmentKeys, p.ReferenceKeys)
	equipKeys := keys
	if p.ReferenceScope != nil {
		equipKeys = keySet(EquipmentKeys)
	}

	var tops []*classdef.Record
	modes := scanModes(text)
	idx := newLineIndex(text)
	if berr := checkBalance(text, modes, idx); berr != nil {
		var dropped int
		tops, dropped = recoverRecords(text, modes, idx, source)
		res.Recovered = true
		res.Warnings = append(res.Warnings, classdef.Warning{
			Source:  source,
			Line:    berr.Line,
			Column:  berr.Column,
			Message: fmt.Sprintf("unbalanced brackets: %s; recovered %d class blocks, dropped %d spans", berr.Msg, len(tops), dropped),
		})
		log.Debugf("recovery %s: %v kept=%d dropped=%d", source, berr, len(tops), dropped)
	} else {
		x := extractor{text: text, modes: modes, idx: idx, source: source}
		for _, b := range findBlocks(text, modes, 0, len(text)) {
			tops = append(tops, x.build(b, ""))
		}
	}
	var refs []*classdef.Record
	for _, top := range tops {
		top.Walk(func(rec *classdef.Record) {
			res.Classes.Add(rec)
			recKeys := keys
			if p.ReferenceScope != nil && !p.ReferenceScope(rec) {
				recKeys = equipKeys
			}
			refs = append(refs, references(rec, recKeys, seen, source)...)
		})
	}
	for _, ref := range refs {
		if _, declared := res.Classes.Get(ref.Key()); declared {
			continue
		}
		res.Classes.Add(ref)
	}
	return res
}

// IsBinarized reports whether text is a binarized (rapified) config.
func IsBinarized(text string) bool {
	return strings.HasPrefix(text, "\x00raP")
}

type extractor struct {
	text     string
	modes    []mode
	idx      lineIndex
	source   string
	lineBase int
}

// build creates the record of b, recursively with its nested classes.
func (x *extractor) build(b block, prefix string) *classdef.Record {
	name := b.name
	if prefix != "" {
		name = prefix + "." + b.name
	}
	inner := findBlocks(x.text, x.modes, b.body, b.close)
	line, _ := x.idx.pos(b.start)
	rec := &classdef.Record{
		Name:       name,
		Parent:     b.parent,
		Source:     x.source,
		Line:       x.lineBase + line,
		Properties: properties(x.text, x.modes, b.body, b.close, inner),
		Kind:       classdef.Declaration,
	}
	for _, nb := range inner {
		rec.Nested = append(rec.Nested, x.build(nb, name))
	}
	return rec
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
