// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package modset builds the class database and the asset set of loaded
// content: mod folders and an optional INIDBI2 export.
//
// Build is a barrier. Once it returns, Content is read-only and may be
// shared by concurrent validations.
package modset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"go.chromium.org/infra/build/missioncheck/assets"
	"go.chromium.org/infra/build/missioncheck/cfgparse"
	"go.chromium.org/infra/build/missioncheck/classdb"
	"go.chromium.org/infra/build/missioncheck/classdef"
	"go.chromium.org/infra/build/missioncheck/inidbi"
	"go.chromium.org/infra/build/missioncheck/scancache"
)

// ErrNoContent is returned when there is neither a mod folder nor an
// INIDBI2 export to build from.
var ErrNoContent = errors.New("no mod folders and no INIDBI2 export")

// Cache kinds used by Build.
const (
	KindClasses = "classes"
	KindArchive = "archive"
)

// ConfigExts are extensions of config files parsed in mod folders.
// They are also the tracked extensions of the per-root signature.
var ConfigExts = []string{".cpp", ".hpp", ".h", ".hh", ".inc", ".ext"}

// Options are options to build content.
type Options struct {
	// Roots are mod folders, in load order.
	Roots []string

	// INIDBI is an optional INIDBI2 export file.
	INIDBI string

	// Jobs limits the number of roots parsed concurrently.
	// <= 0 means no limit.
	Jobs int

	// Store is a scan cache store. nil disables caching.
	Store scancache.Store

	// Collector collects assets. nil skips asset collection.
	Collector *assets.Collector
}

// Content is the loaded content.
type Content struct {
	DB     *classdb.DB
	Assets *assets.Set

	Warnings []classdef.Warning
	Stats    Stats
}

// Stats are statistics of Build.
type Stats struct {
	Roots       int `json:"roots"`
	CachedRoots int `json:"cached_roots"`
	Files       int `json:"files"`
	Recovered   int `json:"recovered"`
	Classes     int `json:"classes"`
	Serialized  int `json:"serialized"`
	Archives    int `json:"archives"`
	FailedLists int `json:"failed_lists"`
	Assets      int `json:"assets"`

	Duration time.Duration `json:"duration"`
}

// rootScan is the cached result of parsing one mod folder.
type rootScan struct {
	Classes   *classdef.Set      `json:"classes"`
	Warnings  []classdef.Warning `json:"warnings,omitempty"`
	Files     int                `json:"files"`
	Recovered int                `json:"recovered"`
}

// SourceID returns the source id of a mod folder: its base name
// without a leading '@'.
func SourceID(root string) string {
	return strings.TrimPrefix(filepath.Base(filepath.Clean(root)), "@")
}

// Build builds content from opts.
func Build(ctx context.Context, opts Options) (*Content, error) {
	if len(opts.Roots) == 0 && opts.INIDBI == "" {
		return nil, ErrNoContent
	}
	started := time.Now()
	for _, root := range opts.Roots {
		st, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("mod folder: %w", err)
		}
		if !st.IsDir() {
			return nil, fmt.Errorf("mod folder %s is not a directory", root)
		}
	}

	cache := scancache.New[rootScan](opts.Store, KindClasses, len(opts.Roots))
	scans := make([]rootScan, len(opts.Roots))
	cached := make([]bool, len(opts.Roots))
	eg, ectx := errgroup.WithContext(ctx)
	if opts.Jobs > 0 {
		eg.SetLimit(opts.Jobs)
	}
	for i, root := range opts.Roots {
		eg.Go(func() error {
			scope, err := filepath.Abs(root)
			if err != nil {
				return err
			}
			sig, err := scancache.DirSignature(root, ConfigExts)
			if err != nil {
				return fmt.Errorf("signature of %s: %w", root, err)
			}
			if s, ok := cache.Lookup(ectx, scope, sig); ok && s.Classes != nil {
				scans[i] = s
				cached[i] = true
				return nil
			}
			s, err := scanRoot(ectx, root)
			if err != nil {
				return err
			}
			scans[i] = s
			if err := cache.Put(ectx, scope, sig, s); err != nil {
				log.Warnf("cache classes of %s: %v", root, err)
			}
			return nil
		})
	}
	content := &Content{DB: classdb.New()}
	var col *assets.Collection
	if opts.Collector != nil {
		eg.Go(func() error {
			var err error
			col, err = opts.Collector.Collect(ectx, opts.Roots)
			return err
		})
	}
	err := eg.Wait()
	if err != nil {
		return nil, err
	}

	// merge in load order; later roots win.
	for i, s := range scans {
		n := content.DB.AddSet(s.Classes)
		content.Warnings = append(content.Warnings, s.Warnings...)
		content.Stats.Files += s.Files
		content.Stats.Recovered += s.Recovered
		if cached[i] {
			content.Stats.CachedRoots++
		}
		log.Infof("%s: %d classes from %d files (cached=%t)", opts.Roots[i], n, s.Files, cached[i])
	}
	content.Stats.Roots = len(opts.Roots)

	if opts.INIDBI != "" {
		n, warnings, err := mergeINIDBI(content.DB, opts.INIDBI)
		if err != nil {
			return nil, err
		}
		content.Stats.Serialized = n
		content.Warnings = append(content.Warnings, warnings...)
	}
	content.DB.BuildInheritanceGraph()
	content.Stats.Classes = content.DB.Len()

	if col != nil {
		content.Assets = col.Assets
		content.Stats.Archives = col.Archives
		content.Stats.FailedLists = col.Failed
		for _, w := range col.Warnings {
			content.Warnings = append(content.Warnings, classdef.Warning{Message: w})
		}
	} else {
		content.Assets = assets.NewSet()
	}
	content.Stats.Assets = content.Assets.Len()
	content.Stats.Duration = time.Since(started)
	log.Infof("built content: %d classes, %d assets, %d warnings in %s", content.Stats.Classes, content.Stats.Assets, len(content.Warnings), content.Stats.Duration)
	return content, nil
}

// scanRoot parses config files under root. Unreadable files are
// warnings. A file included by another config file of root is parsed
// only where it is included, so that its classes get the scope of the
// include site.
func scanRoot(ctx context.Context, root string) (rootScan, error) {
	source := SourceID(root)
	s := rootScan{Classes: classdef.NewSet()}
	var files []string
	err := filepath.WalkDir(root, func(fname string, d fs.DirEntry, err error) error {
		if err != nil {
			if fname == root {
				return err
			}
			s.Warnings = append(s.Warnings, classdef.Warning{Source: fname, Message: err.Error()})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !isModConfig(fname) {
			return nil
		}
		rel, err := filepath.Rel(root, fname)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return rootScan{}, fmt.Errorf("scan %s: %w", root, err)
	}

	fsys := os.DirFS(root)
	expanded := make(map[string]cfgparse.Expansion, len(files))
	included := make(map[string]bool)
	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return rootScan{}, err
		}
		e, err := cfgparse.ExpandIncludes(fsys, rel)
		if err != nil {
			log.Warnf("read %s: %v", filepath.Join(root, rel), err)
			s.Warnings = append(s.Warnings, classdef.Warning{Source: rel, Message: err.Error()})
			continue
		}
		expanded[rel] = e
		for _, inc := range e.Included {
			included[inc] = true
		}
	}
	for _, rel := range files {
		e, ok := expanded[rel]
		if !ok {
			continue
		}
		if included[rel] {
			log.Debugf("%s: %s parsed at include site", source, rel)
			continue
		}
		s.Files++
		res := cfgparse.Parse(e.Text, source)
		if res.Recovered {
			s.Recovered++
		}
		for _, w := range e.Warnings {
			w.Source = source + ":" + w.Source
			s.Warnings = append(s.Warnings, w)
		}
		for _, w := range res.Warnings {
			w.Source = source + ":" + rel
			s.Warnings = append(s.Warnings, w)
		}
		for _, rec := range res.Declarations() {
			s.Classes.Add(rec)
		}
	}
	return s, nil
}

func isModConfig(fname string) bool {
	ext := strings.ToLower(filepath.Ext(fname))
	for _, e := range ConfigExts {
		if ext == e {
			return true
		}
	}
	return false
}

// mergeINIDBI merges serialized classes of the export in fname,
// in sorted source order.
func mergeINIDBI(db *classdb.DB, fname string) (int, []classdef.Warning, error) {
	res, err := inidbi.ParseFile(fname)
	if err != nil {
		return 0, nil, err
	}
	warnings := res.Warnings
	sources := make([]string, 0, len(res.Sources))
	for src := range res.Sources {
		sources = append(sources, src)
	}
	sort.Strings(sources)
	n := 0
	for _, src := range sources {
		for _, rec := range res.Sources[src].Records() {
			for _, msg := range inidbi.Check(rec) {
				warnings = append(warnings, classdef.Warning{
					Source:  fname,
					Message: fmt.Sprintf("%s (%s): %s", rec.Name, src, msg),
				})
			}
		}
		n += db.AddSet(res.Sources[src])
	}
	log.Infof("%s: %d serialized classes from %d sources (%d rows skipped)", fname, n, len(sources), res.Skipped)
	return n, warnings, nil
}
