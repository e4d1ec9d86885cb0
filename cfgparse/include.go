// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package cfgparse

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"go.chromium.org/infra/build/missioncheck/classdef"
)

// maxIncludeDepth limits nesting of included files.
const maxIncludeDepth = 32

// Include is an `#include` directive.
type Include struct {
	// Path is the included path as written, with `\` converted to `/`.
	Path string

	// Start and End are byte offsets of the directive line, excluding
	// the newline.
	Start, End int
	Line       int
}

// Includes returns `#include "path"` and `#include <path>` directives
// of text. Directives in comments are not reported.
func Includes(text string) []Include {
	modes := scanModes(text)
	var incs []Include
	line := 0
	for start := 0; start < len(text); {
		line++
		end := strings.IndexByte(text[start:], '\n')
		if end < 0 {
			end = len(text)
		} else {
			end += start
		}
		i := start
		for i < end && (text[i] == ' ' || text[i] == '\t') {
			i++
		}
		if i < end && text[i] == '#' && modes[i] == modeLineComment {
			if p, ok := includePath(text[i+1 : end]); ok {
				incs = append(incs, Include{Path: p, Start: start, End: end, Line: line})
			}
		}
		start = end + 1
	}
	return incs
}

// includePath parses the directive after '#'.
func includePath(s string) (string, bool) {
	s = strings.TrimLeft(s, " \t")
	s, ok := strings.CutPrefix(s, "include")
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return "", false
	}
	var closing byte
	switch s[0] {
	case '"':
		closing = '"'
	case '<':
		closing = '>'
	default:
		return "", false
	}
	i := strings.IndexByte(s[1:], closing)
	if i <= 0 {
		return "", false
	}
	return strings.ReplaceAll(s[1:1+i], `\`, "/"), true
}

// Expansion is a config file with its includes inlined.
type Expansion struct {
	Text string

	// Included are paths in fsys of inlined files, in inclusion order.
	Included []string

	Warnings []classdef.Warning
}

// ExpandIncludes reads name from fsys and replaces each `#include`
// line with the text of the included file, recursively.
// A relative include is resolved against the directory of the
// including file. Includes that resolve outside fsys or to a missing
// file are left in place. Recursive includes are left in place and
// reported as warnings.
func ExpandIncludes(fsys fs.FS, name string) (Expansion, error) {
	buf, err := fs.ReadFile(fsys, name)
	if err != nil {
		return Expansion{}, err
	}
	x := &expander{fsys: fsys, active: map[string]bool{name: true}}
	var e Expansion
	e.Text = x.expand(string(buf), name, 0)
	e.Included = x.included
	e.Warnings = x.warnings
	return e, nil
}

type expander struct {
	fsys     fs.FS
	active   map[string]bool
	seen     map[string]bool
	included []string
	warnings []classdef.Warning
}

func (x *expander) expand(text, name string, depth int) string {
	incs := Includes(text)
	if len(incs) == 0 {
		return text
	}
	var sb strings.Builder
	last := 0
	for _, inc := range incs {
		fname, ok := resolveInclude(name, inc.Path)
		if !ok {
			continue
		}
		if x.active[fname] || depth >= maxIncludeDepth {
			x.warnings = append(x.warnings, classdef.Warning{
				Source:  name,
				Line:    inc.Line,
				Column:  1,
				Message: fmt.Sprintf("recursive include of %s", fname),
			})
			continue
		}
		buf, err := fs.ReadFile(x.fsys, fname)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				x.warnings = append(x.warnings, classdef.Warning{
					Source:  name,
					Line:    inc.Line,
					Column:  1,
					Message: fmt.Sprintf("include %s: %v", fname, err),
				})
			}
			continue
		}
		if x.seen == nil {
			x.seen = make(map[string]bool)
		}
		if !x.seen[fname] {
			x.seen[fname] = true
			x.included = append(x.included, fname)
		}
		x.active[fname] = true
		sub := x.expand(string(buf), fname, depth+1)
		delete(x.active, fname)

		sb.WriteString(text[last:inc.Start])
		sb.WriteString(sub)
		if !strings.HasSuffix(sub, "\n") {
			sb.WriteByte('\n')
		}
		last = inc.End
		if last < len(text) {
			// drop the newline of the directive; sub ends with one.
			last++
		}
	}
	sb.WriteString(text[last:])
	return sb.String()
}

// resolveInclude resolves p included from name to a path in fsys.
// Addon-absolute paths (`\prefix\addon\file.hpp`) need the PBO prefix
// to resolve and are not resolved.
func resolveInclude(name, p string) (string, bool) {
	if strings.HasPrefix(p, "/") {
		return "", false
	}
	fname := path.Join(path.Dir(name), p)
	if !fs.ValidPath(fname) {
		return "", false
	}
	return fname, true
}
