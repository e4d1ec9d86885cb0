// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package cfgparse

// block is a `class Name[: Parent] { body }` span.
type block struct {
	name   string
	parent string
	start  int // offset of "class"
	body   int // offset after '{'
	close  int // offset of matching '}'
	end    int // offset after '}'
}

func isIdentByte(c byte) bool {
	return c == '_' || ('0' <= c && c <= '9') || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// hasKeyword reports whether text has keyword kw at i, in code,
// delimited by non-identifier bytes.
func hasKeyword(text string, modes []mode, i int, kw string) bool {
	if i+len(kw) >= len(text) || text[i:i+len(kw)] != kw {
		return false
	}
	if i > 0 && isIdentByte(text[i-1]) && modes[i-1] == modeCode {
		return false
	}
	for j := i; j < i+len(kw); j++ {
		if modes[j] != modeCode {
			return false
		}
	}
	return !isIdentByte(text[i+len(kw)])
}

// skipBlank skips whitespace and comments from i up to hi.
func skipBlank(text string, modes []mode, i, hi int) int {
	for i < hi && (isSpace(text[i]) || modes[i] == modeLineComment || modes[i] == modeBlockComment) {
		i++
	}
	return i
}

func readIdent(text string, modes []mode, i, hi int) (string, int) {
	j := i
	for j < hi && modes[j] == modeCode && isIdentByte(text[j]) {
		j++
	}
	return text[i:j], j
}

// matchBrace returns the offset of the '}' closing the '{' at open,
// or -1 if it is not closed before hi.
func matchBrace(text string, modes []mode, open, hi int) int {
	depth := 0
	for i := open; i < hi; i++ {
		if modes[i] != modeCode {
			continue
		}
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// findBlocks returns class blocks at brace depth zero of text[lo:hi].
// Forward declarations (`class X;`) are skipped.
func findBlocks(text string, modes []mode, lo, hi int) []block {
	var blocks []block
	depth := 0
	for i := lo; i < hi; i++ {
		if modes[i] != modeCode {
			continue
		}
		switch text[i] {
		case '{':
			depth++
			continue
		case '}':
			depth--
			continue
		case 'c':
		default:
			continue
		}
		if depth != 0 || !hasKeyword(text, modes, i, "class") {
			continue
		}
		b, next, ok := parseHeader(text, modes, i, hi)
		if !ok {
			continue
		}
		if b.name != "" {
			blocks = append(blocks, b)
		}
		i = next - 1
	}
	return blocks
}

// parseHeader parses a class header at i ("class" keyword).
// It returns the block, and the offset to continue scanning from.
// For a forward declaration, the returned block has empty name.
func parseHeader(text string, modes []mode, i, hi int) (block, int, bool) {
	b := block{start: i}
	j := skipBlank(text, modes, i+len("class"), hi)
	b.name, j = readIdent(text, modes, j, hi)
	if b.name == "" {
		return block{}, 0, false
	}
	j = skipBlank(text, modes, j, hi)
	if j < hi && text[j] == ':' {
		j = skipBlank(text, modes, j+1, hi)
		b.parent, j = readIdent(text, modes, j, hi)
		if b.parent == "" {
			return block{}, 0, false
		}
		j = skipBlank(text, modes, j, hi)
	}
	if j >= hi || modes[j] != modeCode {
		return block{}, 0, false
	}
	switch text[j] {
	case ';':
		return block{}, j + 1, true
	case '{':
		c := matchBrace(text, modes, j, hi)
		if c < 0 {
			return block{}, 0, false
		}
		b.body = j + 1
		b.close = c
		b.end = c + 1
		return b, b.end, true
	}
	return block{}, 0, false
}
