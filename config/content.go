// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package config

import (
	"context"
	"os"

	"github.com/charmbracelet/log"

	"go.chromium.org/infra/build/missioncheck/assets"
	"go.chromium.org/infra/build/missioncheck/classdb"
	"go.chromium.org/infra/build/missioncheck/modset"
	"go.chromium.org/infra/build/missioncheck/scancache"
)

// OpenStore opens the scan cache and collects garbage if it is due.
// It returns a nil store if the cache is disabled.
// The caller should call the returned func to close the store.
func (o *Option) OpenStore(ctx context.Context) (scancache.Store, func(), error) {
	if o.NoCache || o.CacheDir == "" {
		return nil, func() {}, nil
	}
	s, err := scancache.NewLocalStore(o.CacheDir)
	if err != nil {
		return nil, nil, err
	}
	err = s.GarbageCollectIfRequired(ctx, o.CacheTTL)
	if err != nil {
		log.Warnf("cache gc: %v", err)
	}
	return s, func() {
		if err := s.Close(); err != nil {
			log.Warnf("close cache: %v", err)
		}
	}, nil
}

// Ignore loads ignore rules, or returns the default ones.
func (o *Option) Ignore() (*classdb.IgnoreRules, error) {
	if o.IgnoreRules == "" {
		return classdb.DefaultIgnoreRules(), nil
	}
	return classdb.LoadIgnoreRules(o.IgnoreRules)
}

// BuildContent builds content of the mod folders and INIDBI2 export
// given by the option.
func (o *Option) BuildContent(ctx context.Context, store scancache.Store) (*modset.Content, error) {
	limits := DefaultLimits(os.Getenv)
	collector := &assets.Collector{
		Timeout:      o.ArchiveTimeout,
		Jobs:         limits.Archive,
		ArchiveCache: scancache.New[[]string](store, modset.KindArchive, scancache.DefaultFrontSize),
	}
	if o.ExtractPBO != "" {
		collector.Lister = assets.ExtractPBO{Path: o.ExtractPBO}
	}
	return modset.Build(ctx, modset.Options{
		Roots:     o.ModDirs,
		INIDBI:    o.INIDBI,
		Jobs:      limits.Roots,
		Store:     store,
		Collector: collector,
	})
}
