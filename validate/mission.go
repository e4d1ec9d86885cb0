// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package validate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	// ErrMissionNotFound is returned when a mission folder does not exist.
	ErrMissionNotFound = errors.New("mission folder not found")
	// ErrEmptyMission is returned when a mission folder has no files.
	ErrEmptyMission = errors.New("mission has no files")
)

// Mission is a mission folder.
type Mission struct {
	// Name is the mission name, e.g. "co40_last_mile".
	Name string
	// Root is the mission folder on disk. Empty for in-memory missions.
	Root string
	FS   fs.FS
	// Files are slash separated paths relative to FS, sorted.
	Files []string
}

// MissionName returns the mission name of a mission folder:
// its base name up to the first '.' (the map name follows it).
func MissionName(dir string) string {
	base := filepath.Base(filepath.Clean(dir))
	name, _, _ := strings.Cut(base, ".")
	if name == "" {
		return base
	}
	return name
}

// LoadMission loads the mission in root.
func LoadMission(root string) (Mission, error) {
	st, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Mission{}, fmt.Errorf("%w: %s", ErrMissionNotFound, root)
		}
		return Mission{}, err
	}
	if !st.IsDir() {
		return Mission{}, fmt.Errorf("%w: %s is not a directory", ErrMissionNotFound, root)
	}
	m, err := NewMission(MissionName(root), os.DirFS(root))
	if err != nil {
		return Mission{}, fmt.Errorf("%s: %w", root, err)
	}
	m.Root = root
	return m, nil
}

// NewMission creates a mission from fsys.
func NewMission(name string, fsys fs.FS) (Mission, error) {
	m := Mission{Name: name, FS: fsys}
	err := fs.WalkDir(fsys, ".", func(fname string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		m.Files = append(m.Files, fname)
		return nil
	})
	if err != nil {
		return Mission{}, err
	}
	if len(m.Files) == 0 {
		return Mission{}, ErrEmptyMission
	}
	sort.Strings(m.Files)
	return m, nil
}

// FindMissions returns mission folders directly under dir, sorted.
func FindMissions(dir string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissionNotFound, dir)
		}
		return nil, err
	}
	var roots []string
	for _, ent := range ents {
		if !ent.IsDir() || strings.HasPrefix(ent.Name(), ".") {
			continue
		}
		roots = append(roots, filepath.Join(dir, ent.Name()))
	}
	return roots, nil
}
