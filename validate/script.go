// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package validate

import (
	"cmp"
	"path"
	"regexp"
	"slices"
	"strings"

	"go.chromium.org/infra/build/missioncheck/assets"
)

// scriptPatterns match script commands taking a class name.
// The first group is the class name.
var scriptPatterns = func() []*regexp.Regexp {
	const q = `["']([^"']+)["']`
	var res []*regexp.Regexp
	for _, p := range []string{
		`typeOf\s+[_a-zA-Z0-9]+\s*==\s*` + q,
		`createVehicle(?:Local)?\s*\[\s*` + q,
		q + `\s*createVehicle(?:Local)?\b`,
		`createUnit\s*\[\s*` + q,
		`\bforceAddUniform\s+` + q,
		`\blinkItem\s+` + q,
		`\badd(?:Weapon|Magazine|Item|Backpack|Headgear|Goggles|Vest|Uniform)(?:Global|Cargo|CargoGlobal)?\s+` + q,
		`\badd(?:Weapon|Magazine|Item|Backpack)(?:Cargo|CargoGlobal)\s*\[\s*` + q,
		`\baddItemTo(?:Uniform|Vest|Backpack)\s+` + q,
		`\baddMagazine(?:s)?\s*\[\s*` + q,
		`\badd(?:PrimaryWeapon|Handgun|SecondaryWeapon)Item\s+` + q,
		`\bselectWeapon\s+` + q,
		`\b_(?:weapon|backpack|uniform|vest|headgear)\s*=\s*` + q,
		`\b_item\w+\s*=\s*\[\s*` + q,
		`ace_arsenal_fnc_\w+\s*\[[^,\]]+,\s*\[\s*` + q,
	} {
		res = append(res, regexp.MustCompile(p))
	}
	return res
}()

var (
	lineCommentRE  = regexp.MustCompile(`(?m)//.*$`)
	blockCommentRE = regexp.MustCompile(`(?s)/\*.*?\*/`)
	quotedRE       = regexp.MustCompile(`["']([^"'\r\n]+)["']`)
	classNameRE    = regexp.MustCompile(`^[A-Za-z0-9_#]+$`)
)

// scriptSkip are variable names and engine entities that look like
// class names in scripts.
var scriptSkip = map[string]bool{
	"_vehicletype":    true,
	"_classname":      true,
	"_type":           true,
	"_class":          true,
	"arsenal":         true,
	"building":        true,
	"#lightpoint":     true,
	"#particlesource": true,
}

// IsScriptFile reports whether fname is a script file.
func IsScriptFile(fname string) bool {
	switch strings.ToLower(path.Ext(fname)) {
	case ".sqf", ".fsm":
		return true
	}
	return false
}

// ScriptReferences returns class names referenced by script text,
// in order of first occurrence.
func ScriptReferences(text string) []string {
	text = blockCommentRE.ReplaceAllString(text, "")
	text = lineCommentRE.ReplaceAllString(text, "")
	type match struct {
		off  int
		name string
	}
	var matches []match
	for _, re := range scriptPatterns {
		for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
			name := strings.TrimSpace(text[m[2]:m[3]])
			if name == "" || !classNameRE.MatchString(name) || scriptSkip[strings.ToLower(name)] {
				continue
			}
			matches = append(matches, match{off: m[2], name: name})
		}
	}
	// patterns may overlap; keep source order, first occurrence only.
	slices.SortStableFunc(matches, func(a, b match) int { return cmp.Compare(a.off, b.off) })
	seen := make(map[string]bool)
	var names []string
	for _, m := range matches {
		f := strings.ToLower(m.name)
		if seen[f] {
			continue
		}
		seen[f] = true
		names = append(names, m.name)
	}
	return names
}

// AssetReferences returns quoted asset paths in text, in order of
// first occurrence.
func AssetReferences(text string) []string {
	seen := make(map[string]bool)
	var refs []string
	for _, m := range quotedRE.FindAllStringSubmatch(text, -1) {
		p := strings.TrimSpace(m[1])
		if !assets.IsAssetPath(p) {
			continue
		}
		n := assets.Normalize(p)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		refs = append(refs, p)
	}
	return refs
}
