// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package cfgparse

import (
	"path"
	"strings"

	"go.chromium.org/infra/build/missioncheck/classdef"
)

// LocalBases are class names always local to a mission.
var LocalBases = []string{
	"baseMan",
	"CfgFunctions",
	"CfgSounds",
	"CfgMusic",
	"functions",
}

// MissionResult is a result of ParseMission.
type MissionResult struct {
	// References are classes the mission needs from loaded content.
	References []*classdef.Record

	// Local are classes declared by the mission file, flattened.
	Local []*classdef.Record

	Warnings  []classdef.Warning
	Recovered bool
}

// ParseMission parses text of a mission file.
//
// Every class declared in text is mission local and is returned in
// Local instead of References. Equipment entries and parent classes
// that don't name a local class are returned as References.
// localNames holds names already known to be local to the mission
// (lower-cased); it is updated with the names declared in text.
func (p *Parser) ParseMission(text, source string, localNames map[string]bool) MissionResult {
	res := p.Parse(text, source)
	mres := MissionResult{
		Warnings:  res.Warnings,
		Recovered: res.Recovered,
	}
	if localNames == nil {
		localNames = make(map[string]bool)
	}
	for _, b := range LocalBases {
		localNames[strings.ToLower(b)] = true
	}
	decls := res.Declarations()
	for _, rec := range decls {
		rec.MissionLocal = true
		mres.Local = append(mres.Local, rec)
		AddLocalName(localNames, rec.Name)
	}
	seen := make(map[string]bool)
	add := func(ref *classdef.Record) {
		k := strings.ToLower(ref.Name)
		if localNames[k] || seen[k] {
			return
		}
		seen[k] = true
		mres.References = append(mres.References, ref)
	}
	for _, rec := range decls {
		if rec.Parent == "" {
			continue
		}
		add(classdef.NewReference(rec.Parent, source))
	}
	for _, ref := range res.References() {
		add(ref)
	}
	return mres
}

// AddLocalName adds a declared class name to localNames.
// A nested name `A.B` also makes `B` local.
func AddLocalName(localNames map[string]bool, name string) {
	k := strings.ToLower(name)
	localNames[k] = true
	if i := strings.LastIndexByte(k, '.'); i >= 0 {
		localNames[k[i+1:]] = true
	}
}

// IsDefinitionFile reports whether fname is a mission definition file
// (loadouts, description.ext, function registries), which is parsed
// before any other mission file.
func IsDefinitionFile(fname string) bool {
	base := strings.ToLower(path.Base(strings.ReplaceAll(fname, `\`, "/")))
	switch base {
	case "description.ext", "cfgfunctions.hpp", "funcs.hpp":
		return true
	}
	switch path.Ext(base) {
	case ".hpp", ".cpp", ".h":
		return strings.Contains(base, "loadout")
	}
	return false
}

// IsConfigFile reports whether fname holds config-language text.
func IsConfigFile(fname string) bool {
	switch strings.ToLower(path.Ext(strings.ReplaceAll(fname, `\`, "/"))) {
	case ".cpp", ".hpp", ".h", ".hh", ".inc", ".ext", ".sqm":
		return true
	}
	return false
}
