// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package validate checks that classes and assets referenced by missions
// exist in loaded content.
//
// Each mission walks the states Init, ClassesCollected,
// ReferencesExtracted, Resolved and Reported. Definition files are
// parsed first so that classes declared by the mission are known before
// any reference is resolved.
package validate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"go.chromium.org/infra/build/missioncheck/assets"
	"go.chromium.org/infra/build/missioncheck/cfgparse"
	"go.chromium.org/infra/build/missioncheck/classdb"
	"go.chromium.org/infra/build/missioncheck/classdef"
	"go.chromium.org/infra/build/missioncheck/scancache"
)

// ErrNoDatabase is returned when no class database is given.
var ErrNoDatabase = errors.New("no class database")

// KindMission is the cache kind of mission extraction results.
const KindMission = "mission"

// DefaultSuggestions is the default number of suggestions per missing class.
const DefaultSuggestions = 3

// sqmReferenceKeys are property keys naming classes in mission.sqm
// entities. See sqmEntity.
var sqmReferenceKeys = []string{"type", "vehicle"}

// sqmEntity reports whether rec is a mission.sqm entity whose
// sqmReferenceKeys name a class: an object or logic item of an Entities
// list, or an item of a Vehicles list in older formats. Markers,
// waypoints and editor attributes use the same keys for other values.
func sqmEntity(rec *classdef.Record) bool {
	segs := strings.Split(rec.Name, ".")
	if len(segs) < 3 {
		return false
	}
	switch strings.ToLower(segs[len(segs)-2]) {
	case "entities":
		for k, v := range rec.Properties {
			if !strings.EqualFold(k, "dataType") {
				continue
			}
			switch strings.ToLower(cfgparse.Unquote(v)) {
			case "object", "logic":
				return true
			}
		}
	case "vehicles":
		return true
	}
	return false
}

// Options are options of a Validator.
type Options struct {
	// Ignore are rules of names never reported missing.
	// nil uses classdb.DefaultIgnoreRules.
	Ignore *classdb.IgnoreRules

	// Suggestions limits suggestions per missing class.
	// 0 means DefaultSuggestions; negative disables suggestions.
	Suggestions int

	// Store caches extraction results. nil disables caching.
	Store scancache.Store

	// Jobs limits the number of missions validated concurrently
	// by ValidateAll. <= 0 means no limit.
	Jobs int
}

// Validator validates missions against shared content.
// It is safe for concurrent use.
type Validator struct {
	db     *classdb.DB
	assets *assets.Set
	opts   Options
	runID  string
	cache  *scancache.Cache[extraction]
}

// New creates a validator. db and as must not be modified afterwards.
// A nil as means no asset is known.
func New(db *classdb.DB, as *assets.Set, opts Options) (*Validator, error) {
	if db == nil {
		return nil, ErrNoDatabase
	}
	if as == nil {
		as = assets.NewSet()
	}
	if opts.Ignore == nil {
		opts.Ignore = classdb.DefaultIgnoreRules()
	}
	if opts.Suggestions == 0 {
		opts.Suggestions = DefaultSuggestions
	}
	return &Validator{
		db:     db,
		assets: as,
		opts:   opts,
		runID:  uuid.New().String(),
		cache:  scancache.New[extraction](opts.Store, KindMission, scancache.DefaultFrontSize),
	}, nil
}

// RunID returns the id of reports produced by v.
func (v *Validator) RunID() string {
	return v.runID
}

// State is a state of a mission validation.
type State int

// States of a mission validation, in order.
const (
	Init State = iota
	ClassesCollected
	ReferencesExtracted
	Resolved
	Reported
)

func (s State) String() string {
	switch s {
	case Init:
		return "init"
	case ClassesCollected:
		return "classes-collected"
	case ReferencesExtracted:
		return "references-extracted"
	case Resolved:
		return "resolved"
	case Reported:
		return "reported"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ClassRef is a class referenced by the mission.
type ClassRef struct {
	Name  string   `json:"name"`
	Files []string `json:"files"`
	// Definition is true while every occurrence is in a definition file.
	Definition bool `json:"definition"`
}

// AssetRef is an asset path referenced by the mission.
type AssetRef struct {
	Path  string   `json:"path"`
	Files []string `json:"files"`
}

// extraction is the mission dependent part of a validation.
// It is independent of the content and is cached per mission.
type extraction struct {
	Local    []string           `json:"local,omitempty"`
	Classes  []ClassRef         `json:"classes,omitempty"`
	Assets   []AssetRef         `json:"assets,omitempty"`
	Own      []string           `json:"own,omitempty"`
	Warnings []classdef.Warning `json:"warnings,omitempty"`
	Stats    Stats              `json:"stats"`
}

// run is a validation of one mission.
type run struct {
	v     *Validator
	m     Mission
	state State

	ext      extraction
	local    map[string]bool
	classIdx map[string]int
	assetIdx map[string]int
	own      *assets.Set

	report *Report
}

func (r *run) expect(s State) error {
	if r.state != s {
		return fmt.Errorf("internal error: mission %s in state %s; want %s", r.m.Name, r.state, s)
	}
	return nil
}

// Validate validates m. Unreadable files are warnings; only a
// cancelled ctx fails the validation.
func (v *Validator) Validate(ctx context.Context, m Mission) (*Report, error) {
	if len(m.Files) == 0 {
		return nil, fmt.Errorf("%s: %w", m.Name, ErrEmptyMission)
	}
	started := time.Now()
	r := &run{
		v:        v,
		m:        m,
		local:    make(map[string]bool),
		classIdx: make(map[string]int),
		assetIdx: make(map[string]int),
	}
	scope, sig := v.cacheKey(m)
	if ext, ok := v.cache.Lookup(ctx, scope, sig); ok {
		err := r.restore(ext)
		if err != nil {
			return nil, err
		}
	} else {
		err := r.collectClasses(ctx)
		if err != nil {
			return nil, err
		}
		err = r.extractReferences(ctx)
		if err != nil {
			return nil, err
		}
		if sig != "" {
			if err := v.cache.Put(ctx, scope, sig, r.ext); err != nil {
				log.Warnf("cache mission %s: %v", m.Name, err)
			}
		}
	}
	err := r.resolve()
	if err != nil {
		return nil, err
	}
	err = r.finish()
	if err != nil {
		return nil, err
	}
	r.report.Stats.Duration = time.Since(started)
	log.Infof("mission %s: %d found, %d missing classes, %d found, %d missing assets in %s",
		m.Name, len(r.report.FoundClasses), len(r.report.MissingClasses),
		len(r.report.FoundAssets), len(r.report.MissingAssets), r.report.Stats.Duration)
	return r.report, nil
}

// cacheKey returns the scope and signature of m's extraction.
// An empty signature disables caching of m.
func (v *Validator) cacheKey(m Mission) (string, string) {
	if v.cache == nil || m.Root == "" {
		return "", ""
	}
	scope, err := filepath.Abs(m.Root)
	if err != nil {
		return "", ""
	}
	sig, err := scancache.Signature(m.FS, nil)
	if err != nil {
		log.Warnf("signature of mission %s: %v", m.Name, err)
		return "", ""
	}
	return scope, sig
}

// restore restores a cached extraction, skipping to ReferencesExtracted.
func (r *run) restore(ext extraction) error {
	if err := r.expect(Init); err != nil {
		return err
	}
	r.ext = ext
	r.ext.Stats.Cached = true
	r.initLocal()
	for _, name := range ext.Local {
		cfgparse.AddLocalName(r.local, name)
	}
	r.own = assets.NewSet(ext.Own...)
	r.state = ReferencesExtracted
	log.Debugf("mission %s: extraction cached", r.m.Name)
	return nil
}

func (r *run) initLocal() {
	for _, b := range cfgparse.LocalBases {
		r.local[strings.ToLower(b)] = true
	}
}

func (r *run) readFile(fname string) (string, bool) {
	buf, err := fs.ReadFile(r.m.FS, fname)
	if err != nil {
		log.Warnf("mission %s: read %s: %v", r.m.Name, fname, err)
		r.ext.Warnings = append(r.ext.Warnings, classdef.Warning{Source: fname, Message: err.Error()})
		r.ext.Stats.SkippedFiles++
		return "", false
	}
	return string(buf), true
}

func (r *run) addClassRef(name, file string, definition bool) {
	f := strings.ToLower(name)
	if i, ok := r.classIdx[f]; ok {
		ref := &r.ext.Classes[i]
		ref.Definition = ref.Definition && definition
		if !contains(ref.Files, file) {
			ref.Files = append(ref.Files, file)
		}
		return
	}
	r.classIdx[f] = len(r.ext.Classes)
	r.ext.Classes = append(r.ext.Classes, ClassRef{
		Name:       name,
		Files:      []string{file},
		Definition: definition,
	})
}

func (r *run) addAssetRefs(text, file string) {
	for _, p := range AssetReferences(text) {
		n := assets.Normalize(p)
		if i, ok := r.assetIdx[n]; ok {
			ref := &r.ext.Assets[i]
			if !contains(ref.Files, file) {
				ref.Files = append(ref.Files, file)
			}
			continue
		}
		r.assetIdx[n] = len(r.ext.Assets)
		r.ext.Assets = append(r.ext.Assets, AssetRef{Path: p, Files: []string{file}})
	}
}

func contains(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}

// collectClasses parses definition files, collecting mission-local
// classes and their references.
func (r *run) collectClasses(ctx context.Context) error {
	if err := r.expect(Init); err != nil {
		return err
	}
	r.initLocal()
	r.ext.Stats.Files = len(r.m.Files)
	var p cfgparse.Parser
	for _, fname := range r.m.Files {
		if !cfgparse.IsDefinitionFile(fname) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		text, ok := r.readFile(fname)
		if !ok {
			continue
		}
		r.ext.Stats.DefinitionFiles++
		res := p.ParseMission(text, fname, r.local)
		r.ext.Warnings = append(r.ext.Warnings, res.Warnings...)
		for _, rec := range res.Local {
			r.ext.Local = append(r.ext.Local, rec.Name)
		}
		for _, ref := range res.References {
			r.addClassRef(ref.Name, fname, true)
		}
		r.addAssetRefs(text, fname)
	}
	r.state = ClassesCollected
	return nil
}

// extractReferences scans all other files for class and asset
// references.
func (r *run) extractReferences(ctx context.Context) error {
	if err := r.expect(ClassesCollected); err != nil {
		return err
	}
	r.own = assets.NewSet()
	for _, fname := range r.m.Files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if assets.IsAssetPath(fname) {
			r.own.Add(fname)
			continue
		}
		if cfgparse.IsDefinitionFile(fname) {
			continue
		}
		switch {
		case cfgparse.IsConfigFile(fname):
			text, ok := r.readFile(fname)
			if !ok {
				continue
			}
			r.ext.Stats.ConfigFiles++
			r.scanConfig(text, fname)
			r.addAssetRefs(text, fname)
		case IsScriptFile(fname):
			text, ok := r.readFile(fname)
			if !ok {
				continue
			}
			r.ext.Stats.ScriptFiles++
			for _, name := range ScriptReferences(text) {
				r.addClassRef(name, fname, false)
			}
			r.addAssetRefs(text, fname)
		}
	}
	r.ext.Own = r.own.Paths()
	r.state = ReferencesExtracted
	return nil
}

// scanConfig extracts references of a generic mission config file.
// Classes it declares are local to the mission, except entity
// containers of mission.sqm; parents it doesn't declare are references.
func (r *run) scanConfig(text, fname string) {
	p := cfgparse.Parser{}
	isSQM := strings.EqualFold(path.Ext(fname), ".sqm")
	if isSQM {
		p.ReferenceKeys = sqmReferenceKeys
		p.ReferenceScope = sqmEntity
	}
	res := p.Parse(text, fname)
	r.ext.Warnings = append(r.ext.Warnings, res.Warnings...)
	decls := res.Declarations()
	declared := make(map[string]bool)
	for _, rec := range decls {
		cfgparse.AddLocalName(declared, rec.Name)
		if !isSQM {
			r.ext.Local = append(r.ext.Local, rec.Name)
			cfgparse.AddLocalName(r.local, rec.Name)
		}
	}
	for _, rec := range decls {
		if rec.Parent != "" && !declared[strings.ToLower(rec.Parent)] {
			r.addClassRef(rec.Parent, fname, false)
		}
	}
	for _, ref := range res.References() {
		r.addClassRef(ref.Name, fname, false)
	}
}

// resolve classifies references against the content.
func (r *run) resolve() error {
	if err := r.expect(ReferencesExtracted); err != nil {
		return err
	}
	v := r.v
	rep := &Report{
		RunID:          v.runID,
		Mission:        r.m.Name,
		Root:           r.m.Root,
		FoundClasses:   []string{},
		MissingClasses: []MissingClass{},
		FoundAssets:    []string{},
		MissingAssets:  []MissingAsset{},
		Stats:          r.ext.Stats,
	}
	for _, ref := range r.ext.Classes {
		switch {
		case r.local[strings.ToLower(ref.Name)]:
			continue
		case ref.Definition && v.opts.Ignore.IsRole(ref.Name):
			rep.IgnoredClasses = append(rep.IgnoredClasses, ref.Name)
		default:
			if _, ok := v.db.Get(ref.Name); ok {
				rep.FoundClasses = append(rep.FoundClasses, ref.Name)
				continue
			}
			if v.db.ShouldIgnore(ref.Name, v.opts.Ignore) {
				rep.IgnoredClasses = append(rep.IgnoredClasses, ref.Name)
				continue
			}
			mc := MissingClass{
				Name:           ref.Name,
				ReferencedFrom: append([]string(nil), ref.Files...),
			}
			if v.opts.Suggestions > 0 {
				mc.Suggestions = v.db.Suggest(ref.Name, v.opts.Suggestions)
			}
			rep.MissingClasses = append(rep.MissingClasses, mc)
		}
	}
	for _, ref := range r.ext.Assets {
		if r.own.Contains(ref.Path) || v.assets.Contains(ref.Path) {
			rep.FoundAssets = append(rep.FoundAssets, assets.Normalize(ref.Path))
			continue
		}
		rep.MissingAssets = append(rep.MissingAssets, MissingAsset{
			Path:           ref.Path,
			ReferencedFrom: append([]string(nil), ref.Files...),
		})
	}
	rep.Stats.ClassRefs = len(r.ext.Classes)
	rep.Stats.AssetRefs = len(r.ext.Assets)
	r.report = rep
	r.state = Resolved
	return nil
}

// finish sorts the report and attaches warnings.
func (r *run) finish() error {
	if err := r.expect(Resolved); err != nil {
		return err
	}
	rep := r.report
	sortFold(rep.FoundClasses)
	sortFold(rep.IgnoredClasses)
	sort.Strings(rep.FoundAssets)
	sort.Slice(rep.MissingClasses, func(i, j int) bool {
		return strings.ToLower(rep.MissingClasses[i].Name) < strings.ToLower(rep.MissingClasses[j].Name)
	})
	sort.Slice(rep.MissingAssets, func(i, j int) bool {
		return rep.MissingAssets[i].Path < rep.MissingAssets[j].Path
	})
	seen := make(map[string]bool)
	for _, name := range r.ext.Local {
		f := strings.ToLower(name)
		if seen[f] {
			continue
		}
		seen[f] = true
		rep.MissionLocal = append(rep.MissionLocal, name)
	}
	sortFold(rep.MissionLocal)
	rep.Warnings = append(rep.Warnings, r.ext.Warnings...)
	r.state = Reported
	return nil
}

func sortFold(names []string) {
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
}

// ValidateAll validates missions in roots concurrently. A fatal error
// of one mission is recorded in its Result and doesn't stop others.
// Results are in the order of roots.
func (v *Validator) ValidateAll(ctx context.Context, roots []string) ([]Result, error) {
	results := make([]Result, len(roots))
	eg, ctx := errgroup.WithContext(ctx)
	if v.opts.Jobs > 0 {
		eg.SetLimit(v.opts.Jobs)
	}
	for i, root := range roots {
		eg.Go(func() error {
			results[i].Root = root
			m, err := LoadMission(root)
			if err == nil {
				results[i].Report, err = v.Validate(ctx, m)
			}
			if err != nil {
				if cerr := context.Cause(ctx); cerr != nil {
					return cerr
				}
				log.Errorf("mission %s: %v", root, err)
				results[i].Err = err
				results[i].Error = err.Error()
			}
			return nil
		})
	}
	err := eg.Wait()
	if err != nil {
		return nil, err
	}
	return results, nil
}
