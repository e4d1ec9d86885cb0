// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package assets provides normalized asset paths (textures, models,
// sounds) and the set of assets available in loaded content.
package assets

import (
	"encoding/json"
	"path"
	"sort"
	"strings"
)

// Exts are extensions of asset files.
var Exts = []string{
	".paa", ".pac", ".p3d", ".rvmat", ".wss", ".ogg", ".wav", ".jpg", ".jpeg", ".png",
}

var extSet = func() map[string]bool {
	m := make(map[string]bool)
	for _, e := range Exts {
		m[e] = true
	}
	return m
}()

// IsAssetPath reports whether p has an asset extension.
func IsAssetPath(p string) bool {
	return extSet[strings.ToLower(path.Ext(strings.ReplaceAll(p, `\`, "/")))]
}

// rootPrefixes are leading segments dropped by Normalize.
var rootPrefixes = map[string]bool{
	"a3":     true,
	"z":      true,
	"addons": true,
}

// Normalize returns p in lower case with forward slashes, without
// empty, "." and ".." segments, and without leading root segments
// (a3/, z/, addons/).
func Normalize(p string) string {
	p = strings.ToLower(strings.TrimSpace(p))
	p = strings.ReplaceAll(p, `\`, "/")
	var segs []string
	for _, s := range strings.Split(p, "/") {
		switch s {
		case "", ".", "..":
			continue
		}
		segs = append(segs, s)
	}
	for len(segs) > 1 && rootPrefixes[segs[0]] {
		segs = segs[1:]
	}
	return strings.Join(segs, "/")
}

func tail2(p string) string {
	i := strings.LastIndexByte(p, '/')
	if i < 0 {
		return p
	}
	j := strings.LastIndexByte(p[:i], '/')
	return p[j+1:]
}

// Set is a set of normalized asset paths.
// It is not safe for concurrent Add; concurrent lookups are safe.
type Set struct {
	paths    map[string]bool
	suffixes map[string]bool
	tails    map[string]bool
}

// NewSet creates a set of paths.
func NewSet(paths ...string) *Set {
	s := &Set{
		paths:    make(map[string]bool),
		suffixes: make(map[string]bool),
		tails:    make(map[string]bool),
	}
	s.Add(paths...)
	return s
}

// Add adds paths, normalizing them.
func (s *Set) Add(paths ...string) {
	for _, p := range paths {
		p = Normalize(p)
		if p == "" || s.paths[p] {
			continue
		}
		s.paths[p] = true
		s.tails[tail2(p)] = true
		for suf := p; ; {
			s.suffixes[suf] = true
			i := strings.IndexByte(suf, '/')
			if i < 0 {
				break
			}
			suf = suf[i+1:]
		}
	}
}

// Merge adds all paths of o.
func (s *Set) Merge(o *Set) {
	for p := range o.paths {
		s.Add(p)
	}
}

// Len returns the number of paths.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.paths)
}

// Paths returns all paths, sorted.
func (s *Set) Paths() []string {
	if s == nil {
		return nil
	}
	paths := make([]string, 0, len(s.paths))
	for p := range s.paths {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Contains reports whether ref names a known asset: exactly, as a
// suffix of a known path (or a known path as a suffix of ref) on a
// segment boundary, or by the last two path segments.
func (s *Set) Contains(ref string) bool {
	if s == nil {
		return false
	}
	n := Normalize(ref)
	if n == "" {
		return false
	}
	if s.paths[n] || s.suffixes[n] {
		return true
	}
	for suf := n; ; {
		i := strings.IndexByte(suf, '/')
		if i < 0 {
			break
		}
		suf = suf[i+1:]
		if s.paths[suf] {
			return true
		}
	}
	return s.tails[tail2(n)]
}

// MarshalJSON encodes the set as a sorted list of paths.
func (s *Set) MarshalJSON() ([]byte, error) {
	paths := s.Paths()
	if paths == nil {
		paths = []string{}
	}
	return json.Marshal(paths)
}

// UnmarshalJSON decodes a list of paths.
func (s *Set) UnmarshalJSON(b []byte) error {
	var paths []string
	err := json.Unmarshal(b, &paths)
	if err != nil {
		return err
	}
	*s = *NewSet(paths...)
	return nil
}
