// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package cfgparse

import (
	"strings"
)

// properties collects `key = value;` statements of text[lo:hi],
// skipping the nested class blocks.
func properties(text string, modes []mode, lo, hi int, nested []block) map[string]string {
	var props map[string]string
	add := func(start, end int) {
		key, value, ok := property(text, modes, start, end)
		if !ok {
			return
		}
		if props == nil {
			props = make(map[string]string)
		}
		props[key] = value
	}
	start := lo
	depth := 0
	for i := lo; i < hi; i++ {
		if len(nested) > 0 && i == nested[0].start {
			i = nested[0].end - 1
			start = nested[0].end
			nested = nested[1:]
			continue
		}
		if modes[i] != modeCode {
			continue
		}
		switch text[i] {
		case '{', '(':
			depth++
		case '}', ')':
			depth--
		case ';':
			if depth == 0 {
				add(start, i)
				start = i + 1
			}
		}
	}
	return props
}

// property parses one statement text[lo:hi].
func property(text string, modes []mode, lo, hi int) (key, value string, ok bool) {
	eq := -1
	for i := lo; i < hi; i++ {
		if modes[i] == modeCode && text[i] == '=' {
			eq = i
			break
		}
	}
	if eq < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(stripComments(text[lo:eq], modes[lo:eq]))
	key = strings.TrimSpace(strings.TrimSuffix(key, "+"))
	array := strings.HasSuffix(key, "[]")
	if array {
		key = strings.TrimSpace(strings.TrimSuffix(key, "[]"))
	}
	if key == "" || !isIdent(key) {
		return "", "", false
	}
	value = strings.TrimSpace(stripComments(text[eq+1:hi], modes[eq+1:hi]))
	if array {
		value = "{" + strings.Join(SplitItems(value), ",") + "}"
	}
	return key, value, true
}

func isIdent(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isIdentByte(s[i]) {
			return false
		}
	}
	return true
}

// stripComments removes comment bytes of s.
func stripComments(s string, modes []mode) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		switch modes[i] {
		case modeLineComment, modeBlockComment:
			continue
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

// SplitItems splits an array literal `{a, "b", {c, d}}` into its
// top-level items. Commas inside strings, comments, braces and
// parentheses don't split. Items are trimmed and comments dropped.
func SplitItems(s string) []string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		s = s[1 : len(s)-1]
	}
	modes := scanModes(s)
	var items []string
	add := func(lo, hi int) {
		item := strings.TrimSpace(stripComments(s[lo:hi], modes[lo:hi]))
		if item != "" {
			items = append(items, item)
		}
	}
	start := 0
	depth := 0
	for i := 0; i < len(s); i++ {
		if modes[i] != modeCode {
			continue
		}
		switch s[i] {
		case '{', '(':
			depth++
		case '}', ')':
			depth--
		case ',':
			if depth == 0 {
				add(start, i)
				start = i + 1
			}
		}
	}
	add(start, len(s))
	return items
}
