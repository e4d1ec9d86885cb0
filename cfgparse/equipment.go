// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package cfgparse

import (
	"regexp"
	"strconv"
	"strings"

	"go.chromium.org/infra/build/missioncheck/classdef"
)

// EquipmentKeys are property keys whose values name classes.
var EquipmentKeys = []string{
	"uniform",
	"vest",
	"backpack",
	"headgear",
	"goggles",
	"hmd",
	"primaryWeapon",
	"secondaryWeapon",
	"handgunWeapon",
	"sidearmWeapon",
	"magazines",
	"items",
	"linkedItems",
	"backpackItems",
	"attachment",
	"attachments",
	"scope",
	"optics",
	"silencer",
	"bipod",
	"secondaryAttachments",
	"sidearmAttachments",
}

// listRE matches `LIST_<N>(<item>)`.
var listRE = regexp.MustCompile(`^LIST_(\d+)\s*\(\s*(.*?)\s*\)$`)

// Seen accumulates reference names already emitted.
// It is owned by the caller for the duration of one scan.
type Seen struct {
	m map[string]bool
}

// NewSeen creates an empty accumulator.
func NewSeen() *Seen {
	return &Seen{m: make(map[string]bool)}
}

// Add records name and reports whether it was not seen before.
// Names compare case-insensitively.
func (s *Seen) Add(name string) bool {
	k := strings.ToLower(name)
	if s.m[k] {
		return false
	}
	s.m[k] = true
	return true
}

// Len returns the number of names seen.
func (s *Seen) Len() int {
	return len(s.m)
}

func keySet(keys ...[]string) map[string]bool {
	m := make(map[string]bool)
	for _, ks := range keys {
		for _, k := range ks {
			m[strings.ToLower(k)] = true
		}
	}
	return m
}

// Unquote strips matching quotes around s and unescapes `""`.
func Unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		switch q := s[0]; q {
		case '"', '\'':
			if s[len(s)-1] == q {
				s = s[1 : len(s)-1]
				return strings.ReplaceAll(s, string([]byte{q, q}), string(q))
			}
		}
	}
	return s
}

// parseItem parses one array item into a referenced class name
// and its LIST_N count (0 if none).
func parseItem(item string) (string, int, bool) {
	item = strings.TrimSpace(item)
	count := 0
	if m := listRE.FindStringSubmatch(item); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return "", 0, false
		}
		count = n
		item = m[2]
	}
	name := strings.TrimSpace(Unquote(item))
	if name == "" {
		return "", 0, false
	}
	if isNumber(name) {
		return "", 0, false
	}
	if strings.ContainsAny(name, " \t\r\n(){}=;,") {
		return "", 0, false
	}
	return name, count, true
}

// isNumber reports whether s is a decimal number literal such as
// `-1`, `0.5`, `.25` or `1e-05`.
func isNumber(s string) bool {
	s = trimSign(s)
	i := strings.IndexAny(s, "eE")
	if i < 0 {
		return isDecimal(s, true)
	}
	return isDecimal(s[:i], true) && isDecimal(trimSign(s[i+1:]), false)
}

func trimSign(s string) string {
	if s != "" && (s[0] == '+' || s[0] == '-') {
		return s[1:]
	}
	return s
}

// isDecimal reports whether s has at least one digit and only digits,
// plus one '.' if dot is true.
func isDecimal(s string, dot bool) bool {
	digits := 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9':
			digits++
		case c == '.' && dot:
			dot = false
		default:
			return false
		}
	}
	return digits > 0
}

// references extracts class references from the properties of rec
// whose keys are in keys.
func references(rec *classdef.Record, keys map[string]bool, seen *Seen, source string) []*classdef.Record {
	var refs []*classdef.Record
	for _, k := range sortedKeys(rec.Properties) {
		if !keys[strings.ToLower(k)] {
			continue
		}
		v := rec.Properties[k]
		items := []string{v}
		if strings.HasPrefix(v, "{") {
			items = SplitItems(v)
		}
		for _, item := range items {
			name, count, ok := parseItem(item)
			if !ok || !seen.Add(name) {
				continue
			}
			ref := classdef.NewReference(name, source)
			if count > 0 {
				ref.Properties = map[string]string{classdef.ListCountKey: strconv.Itoa(count)}
			}
			refs = append(refs, ref)
		}
	}
	return refs
}
