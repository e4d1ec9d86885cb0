// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package assets

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Listing is the content of an archive.
type Listing struct {
	// Prefix is the archive's mount prefix, e.g. `a3\weapons_f`.
	Prefix string `json:"prefix,omitempty"`
	// Entries are paths of files in the archive, relative to Prefix.
	Entries []string `json:"entries,omitempty"`
}

// Assets returns normalized asset paths of the listing.
func (l Listing) Assets() []string {
	var paths []string
	for _, e := range l.Entries {
		if !IsAssetPath(e) {
			continue
		}
		p := e
		if l.Prefix != "" {
			p = l.Prefix + "/" + e
		}
		if n := Normalize(p); n != "" {
			paths = append(paths, n)
		}
	}
	return paths
}

// Lister lists the content of an archive.
type Lister interface {
	List(ctx context.Context, archive string) (Listing, error)
}

// ListerFunc is a func implementing Lister.
type ListerFunc func(ctx context.Context, archive string) (Listing, error)

// List calls f.
func (f ListerFunc) List(ctx context.Context, archive string) (Listing, error) {
	return f(ctx, archive)
}

// ExtractPBO lists PBO archives with `extractpbo -LBP`.
type ExtractPBO struct {
	// Path is the path of the extractpbo binary.
	// Empty means "extractpbo" in PATH.
	Path string
}

// List lists the archive. The caller should bound ctx with a timeout,
// as the tool may hang on damaged archives.
func (e ExtractPBO) List(ctx context.Context, archive string) (Listing, error) {
	bin := e.Path
	if bin == "" {
		bin = "extractpbo"
	}
	cmd := exec.CommandContext(ctx, bin, "-LBP", archive)
	// don't wait forever for pipes held by orphaned children.
	cmd.WaitDelay = time.Second
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if cerr := ctx.Err(); cerr != nil {
		return Listing{}, fmt.Errorf("%s -LBP %s: %w", bin, archive, cerr)
	}
	if err != nil {
		var eerr *exec.ExitError
		if errors.As(err, &eerr) {
			return Listing{}, fmt.Errorf("%s -LBP %s: %w: %s", bin, archive, err, strings.TrimSpace(stderr.String()))
		}
		return Listing{}, fmt.Errorf("%s -LBP %s: %w", bin, archive, err)
	}
	return ParseListing(out), nil
}

// ParseListing parses `extractpbo -LBP` output.
//
// The first non-empty line may be `prefix=<prefix>;`. Lines starting
// with `//` are property section markers.
func ParseListing(out []byte) Listing {
	var l Listing
	first := true
	s := bufio.NewScanner(bytes.NewReader(out))
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" {
			continue
		}
		if first {
			first = false
			if v, ok := strings.CutPrefix(line, "prefix="); ok {
				l.Prefix = strings.Trim(v, `; "`)
				continue
			}
		}
		if strings.HasPrefix(line, "//") {
			continue
		}
		l.Entries = append(l.Entries, line)
	}
	return l
}
