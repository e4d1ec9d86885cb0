// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package cfgparse

import (
	"go.chromium.org/infra/build/missioncheck/classdef"
)

// recoverRecords scans text line by line and keeps class spans that
// start at the beginning of a line and whose brace depth returns to
// zero with balanced brackets inside the span. It returns the records
// of kept spans and the number of dropped spans.
func recoverRecords(text string, modes []mode, idx lineIndex, source string) ([]*classdef.Record, int) {
	var recs []*classdef.Record
	dropped := 0

	// accept adds the records of text[start:end] if the span is balanced
	// and holds class blocks.
	accept := func(start, end, line int) bool {
		span := text[start:end]
		spanModes := scanModes(span)
		spanIdx := newLineIndex(span)
		if checkBalance(span, spanModes, spanIdx) != nil {
			return false
		}
		blocks := findBlocks(span, spanModes, 0, len(span))
		if len(blocks) == 0 {
			return false
		}
		x := extractor{text: span, modes: spanModes, idx: spanIdx, source: source, lineBase: line}
		for _, b := range blocks {
			recs = append(recs, x.build(b, ""))
		}
		return true
	}

	inSpan := false
	spanStart := 0
	spanLine := 0
	depth := 0
	sawOpen := false

	for n, ls := range idx {
		le := len(text)
		if n+1 < len(idx) {
			le = idx[n+1]
		}
		if !inSpan {
			i := skipBlank(text, modes, ls, le)
			if i >= le || !hasKeyword(text, modes, i, "class") {
				continue
			}
			inSpan = true
			spanStart = ls
			spanLine = n
			depth = 0
			sawOpen = false
		}
		semicolon := false
		for i := ls; i < le && inSpan; i++ {
			if modes[i] != modeCode {
				continue
			}
			switch text[i] {
			case '{':
				depth++
				sawOpen = true
			case '}':
				depth--
				if depth < 0 {
					// stray '}' after complete blocks on the same line.
					inSpan = false
					if !sawOpen || !accept(spanStart, i, spanLine) {
						dropped++
					}
				}
			case ';':
				semicolon = true
			}
		}
		if !inSpan {
			continue
		}
		switch {
		case sawOpen && depth == 0:
			inSpan = false
			if !accept(spanStart, le, spanLine) {
				dropped++
			}
		case !sawOpen && semicolon:
			// forward declaration.
			inSpan = false
		}
	}
	if inSpan {
		dropped++
	}
	return recs, dropped
}
