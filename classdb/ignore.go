// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package classdb

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// IgnoreRules are class names that are never reported missing.
type IgnoreRules struct {
	exact    map[string]bool
	prefixes []string
	roles    map[string]bool
}

// IgnoreConfig is the file format of ignore rules.
type IgnoreConfig struct {
	// Exact are class names to ignore.
	Exact []string `json:"exact,omitempty"`
	// Prefixes are class name prefixes to ignore.
	Prefixes []string `json:"prefixes,omitempty"`
	// Roles are loadout role tokens, ignored in definition files only.
	Roles []string `json:"roles,omitempty"`
}

// DefaultIgnoreConfig holds engine built-ins and noise prefixes.
var DefaultIgnoreConfig = IgnoreConfig{
	Exact: []string{
		"true", "false", "nil", "null", "obj", "player", "this",
		"#lightpoint", "#particlesource",
		"CfgPatches", "CfgFunctions", "CfgVehicles",
	},
	Prefixes: []string{"#", "$"},
	Roles: []string{
		"rm", "ar", "aar", "rat", "dm", "mmg", "mmga", "hmg", "hmga",
		"mat", "mata", "hat", "hata", "mtr", "mtrag", "sam", "samag",
		"sl", "ft", "tl", "co", "xo", "sn", "sp", "vc", "vd", "vg",
		"pp", "pcc", "pc", "eng", "engm", "uav", "div", "cls", "pil",
		"fac", "ar_c", "crew_c", "r_c", "rm_lat", "rm_fa", "crew",
	},
}

// NewIgnoreRules creates rules from configs.
func NewIgnoreRules(cfgs ...IgnoreConfig) *IgnoreRules {
	r := &IgnoreRules{
		exact: make(map[string]bool),
		roles: make(map[string]bool),
	}
	for _, cfg := range cfgs {
		for _, s := range cfg.Exact {
			r.exact[fold(s)] = true
		}
		for _, s := range cfg.Prefixes {
			if s != "" {
				r.prefixes = append(r.prefixes, fold(s))
			}
		}
		for _, s := range cfg.Roles {
			r.roles[fold(s)] = true
		}
	}
	return r
}

// DefaultIgnoreRules returns rules of DefaultIgnoreConfig.
func DefaultIgnoreRules() *IgnoreRules {
	return NewIgnoreRules(DefaultIgnoreConfig)
}

// LoadIgnoreRules loads an IgnoreConfig JSON file and merges it with
// the defaults.
func LoadIgnoreRules(fname string) (*IgnoreRules, error) {
	b, err := os.ReadFile(fname)
	if err != nil {
		return nil, err
	}
	var cfg IgnoreConfig
	err = json.Unmarshal(b, &cfg)
	if err != nil {
		return nil, fmt.Errorf("parse ignore rules %s: %w", fname, err)
	}
	return NewIgnoreRules(DefaultIgnoreConfig, cfg), nil
}

// Match reports whether name matches an exact or prefix rule.
func (r *IgnoreRules) Match(name string) bool {
	if r == nil {
		return false
	}
	f := fold(name)
	if r.exact[f] {
		return true
	}
	for _, p := range r.prefixes {
		if strings.HasPrefix(f, p) {
			return true
		}
	}
	return false
}

// IsRole reports whether name is a loadout role token.
func (r *IgnoreRules) IsRole(name string) bool {
	if r == nil {
		return false
	}
	return r.roles[fold(name)]
}

// ShouldIgnore reports whether name or any of its ancestors matches rules.
func (db *DB) ShouldIgnore(name string, rules *IgnoreRules) bool {
	if rules.Match(name) {
		return true
	}
	chain := db.InheritanceChain(name)
	for _, rec := range chain.Classes {
		if rules.Match(rec.Name) {
			return true
		}
	}
	return chain.MissingParent != "" && rules.Match(chain.MissingParent)
}
