// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package cfgparse

import (
	"fmt"
	"sort"
)

// mode is a lexical mode of a byte.
type mode uint8

const (
	modeCode mode = iota
	modeString
	modeLineComment
	modeBlockComment
)

// scanModes returns the lexical mode of every byte of text.
//
// Strings are double-quoted and use `""` as an escaped quote;
// backslash is an ordinary character. A string is closed at end of
// line so that one unterminated literal can't swallow the rest of the
// file. Preprocessor directive lines (`#` as first non-blank byte)
// are treated like line comments, including `\` continuations.
func scanModes(text string) []mode {
	modes := make([]mode, len(text))
	cur := modeCode
	directive := false
	lineStart := true
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch cur {
		case modeCode:
			switch {
			case c == '"':
				modes[i] = modeString
				cur = modeString
			case c == '/' && i+1 < len(text) && text[i+1] == '/':
				modes[i] = modeLineComment
				cur = modeLineComment
			case c == '/' && i+1 < len(text) && text[i+1] == '*':
				modes[i] = modeBlockComment
				modes[i+1] = modeBlockComment
				i++
				cur = modeBlockComment
			case c == '#' && lineStart:
				modes[i] = modeLineComment
				cur = modeLineComment
				directive = true
			default:
				modes[i] = modeCode
			}
		case modeString:
			switch c {
			case '"':
				modes[i] = modeString
				if i+1 < len(text) && text[i+1] == '"' {
					modes[i+1] = modeString
					i++
					continue
				}
				cur = modeCode
			case '\n':
				modes[i] = modeCode
				cur = modeCode
			default:
				modes[i] = modeString
			}
		case modeLineComment:
			if c == '\n' {
				if directive && continued(text, i) {
					modes[i] = modeLineComment
					continue
				}
				modes[i] = modeCode
				cur = modeCode
				directive = false
			} else {
				modes[i] = modeLineComment
			}
		case modeBlockComment:
			modes[i] = modeBlockComment
			if c == '*' && i+1 < len(text) && text[i+1] == '/' {
				modes[i+1] = modeBlockComment
				i++
				cur = modeCode
			}
		}
		switch c {
		case '\n':
			lineStart = true
		case ' ', '\t', '\r':
		default:
			lineStart = false
		}
	}
	return modes
}

// continued reports whether the newline at i ends a `\`-continued line.
func continued(text string, i int) bool {
	j := i - 1
	if j >= 0 && text[j] == '\r' {
		j--
	}
	return j >= 0 && text[j] == '\\'
}

// lineIndex maps byte offsets to 1-based line and column.
type lineIndex []int

func newLineIndex(text string) lineIndex {
	idx := lineIndex{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			idx = append(idx, i+1)
		}
	}
	return idx
}

func (idx lineIndex) pos(off int) (line, col int) {
	n := sort.Search(len(idx), func(i int) bool { return idx[i] > off }) - 1
	if n < 0 {
		n = 0
	}
	return n + 1, off - idx[n] + 1
}

// BalanceError is a bracket balance failure.
type BalanceError struct {
	Line   int
	Column int
	Msg    string
}

func (e *BalanceError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Msg)
}

// checkBalance verifies that `{}` and `()` in code nest properly.
func checkBalance(text string, modes []mode, idx lineIndex) *BalanceError {
	type open struct {
		c   byte
		off int
	}
	var stack []open
	for i := 0; i < len(text); i++ {
		if modes[i] != modeCode {
			continue
		}
		switch c := text[i]; c {
		case '{', '(':
			stack = append(stack, open{c: c, off: i})
		case '}', ')':
			if len(stack) == 0 {
				line, col := idx.pos(i)
				return &BalanceError{Line: line, Column: col, Msg: fmt.Sprintf("unexpected %q", c)}
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if closer(top.c) != c {
				line, col := idx.pos(i)
				return &BalanceError{Line: line, Column: col, Msg: fmt.Sprintf("%q does not match %q", c, top.c)}
			}
		}
	}
	if len(stack) > 0 {
		top := stack[len(stack)-1]
		line, col := idx.pos(top.off)
		return &BalanceError{Line: line, Column: col, Msg: fmt.Sprintf("unclosed %q", top.c)}
	}
	return nil
}

func closer(c byte) byte {
	if c == '(' {
		return ')'
	}
	return '}'
}

// CheckBalance checks bracket balance of config text.
func CheckBalance(text string) error {
	if err := checkBalance(text, scanModes(text), newLineIndex(text)); err != nil {
		return err
	}
	return nil
}
