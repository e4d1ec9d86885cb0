// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package assets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"go.chromium.org/infra/build/missioncheck/scancache"
	"go.chromium.org/infra/build/missioncheck/sync/semaphore"
)

// DefaultTimeout is the default time limit to list one archive.
const DefaultTimeout = 30 * time.Second

// ScanDir returns normalized paths of loose asset files under root,
// relative to root.
func ScanDir(ctx context.Context, root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(fname string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !IsAssetPath(fname) {
			return nil
		}
		rel, err := filepath.Rel(root, fname)
		if err != nil {
			return err
		}
		if n := Normalize(filepath.ToSlash(rel)); n != "" {
			paths = append(paths, n)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// Collector collects the assets of mod folders.
type Collector struct {
	// Lister lists archives. nil disables archive listing.
	Lister Lister
	// Timeout limits listing of one archive.
	// Zero means DefaultTimeout.
	Timeout time.Duration
	// Jobs limits the number of concurrent listings.
	// <= 0 means the number of CPUs.
	Jobs int

	// ArchiveCache caches asset paths per archive.
	ArchiveCache *scancache.Cache[[]string]
}

// Collection is a result of Collect.
type Collection struct {
	Assets   *Set
	Archives int
	// Failed counts archives that failed or timed out.
	Failed   int
	Warnings []string
}

// Collect walks roots for loose asset files and archives, and lists
// every archive concurrently. An archive that fails or times out
// contributes no assets and a warning; it never fails the collection.
func (c *Collector) Collect(ctx context.Context, roots []string) (*Collection, error) {
	col := &Collection{Assets: NewSet()}
	var archives []string
	for _, root := range roots {
		err := filepath.WalkDir(root, func(fname string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if strings.EqualFold(filepath.Ext(fname), ".pbo") {
				archives = append(archives, fname)
				return nil
			}
			if !IsAssetPath(fname) {
				return nil
			}
			rel, err := filepath.Rel(root, fname)
			if err != nil {
				return err
			}
			col.Assets.Add(filepath.ToSlash(rel))
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan assets in %s: %w", root, err)
		}
	}
	col.Archives = len(archives)
	if c.Lister == nil || len(archives) == 0 {
		return col, nil
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	sema := semaphore.New("archive-list", c.Jobs)
	results := make([][]string, len(archives))
	warnings := make([]string, len(archives))
	var mu sync.Mutex
	started := time.Now()

	eg, ectx := errgroup.WithContext(ctx)
	for i, archive := range archives {
		eg.Go(func() error {
			return sema.Do(ectx, func(ctx context.Context) error {
				paths, err := c.list(ctx, archive, timeout)
				if err != nil {
					if cerr := context.Cause(ectx); cerr != nil {
						return cerr
					}
					mu.Lock()
					col.Failed++
					mu.Unlock()
					warnings[i] = fmt.Sprintf("%s: %v", archive, err)
					log.Warnf("list %s: %v", archive, err)
					return nil
				}
				results[i] = paths
				return nil
			})
		})
	}
	err := eg.Wait()
	if err != nil {
		return nil, err
	}
	for i := range archives {
		col.Assets.Add(results[i]...)
		if warnings[i] != "" {
			col.Warnings = append(col.Warnings, warnings[i])
		}
	}
	log.Infof("listed %d archives (%d failed) in %s: %s", len(archives), col.Failed, time.Since(started), sema)
	return col, nil
}

func (c *Collector) list(ctx context.Context, archive string, timeout time.Duration) ([]string, error) {
	sig, err := scancache.FileSignature(archive)
	if err == nil {
		if paths, ok := c.ArchiveCache.Lookup(ctx, archive, sig); ok {
			return paths, nil
		}
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	l, err := c.Lister.List(ctx, archive)
	if errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("timed out after %s", timeout)
	}
	if err != nil {
		return nil, err
	}
	paths := l.Assets()
	if sig != "" {
		if perr := c.ArchiveCache.Put(ctx, archive, sig, paths); perr != nil {
			log.Warnf("cache listing of %s: %v", archive, perr)
		}
	}
	return paths, nil
}
