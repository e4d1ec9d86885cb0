// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package validate

import (
	"time"

	"go.chromium.org/infra/build/missioncheck/classdef"
)

// Report is the result of validating a mission.
type Report struct {
	// RunID identifies the validation run that produced the report.
	RunID   string `json:"run_id"`
	Mission string `json:"mission"`
	Root    string `json:"root,omitempty"`

	FoundClasses   []string       `json:"found_classes"`
	MissingClasses []MissingClass `json:"missing_classes"`
	IgnoredClasses []string       `json:"ignored_classes,omitempty"`
	MissionLocal   []string       `json:"mission_local,omitempty"`

	FoundAssets   []string       `json:"found_assets"`
	MissingAssets []MissingAsset `json:"missing_assets"`

	Warnings []classdef.Warning `json:"warnings,omitempty"`
	Stats    Stats              `json:"stats"`
}

// MissingClass is a class referenced by the mission but not found.
type MissingClass struct {
	Name           string   `json:"name"`
	ReferencedFrom []string `json:"referenced_from"`
	// Suggestions are known class names containing Name.
	Suggestions []string `json:"suggestions,omitempty"`
}

// MissingAsset is an asset path referenced by the mission but not found.
type MissingAsset struct {
	Path           string   `json:"path"`
	ReferencedFrom []string `json:"referenced_from"`
}

// Stats are statistics of a validation.
type Stats struct {
	Files           int  `json:"files"`
	DefinitionFiles int  `json:"definition_files"`
	ConfigFiles     int  `json:"config_files"`
	ScriptFiles     int  `json:"script_files"`
	SkippedFiles    int  `json:"skipped_files"`
	ClassRefs       int  `json:"class_refs"`
	AssetRefs       int  `json:"asset_refs"`
	Cached          bool `json:"cached"`

	Duration time.Duration `json:"duration"`
}

// OK reports whether nothing is missing.
func (r *Report) OK() bool {
	return len(r.MissingClasses) == 0 && len(r.MissingAssets) == 0
}

// Result is a result of validating one mission in ValidateAll.
type Result struct {
	Root   string  `json:"root"`
	Report *Report `json:"report,omitempty"`
	// Err is a fatal error of this mission.
	Err error `json:"-"`
	// Error is Err as text.
	Error string `json:"error,omitempty"`
}
