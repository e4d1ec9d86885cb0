// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scancache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
)

// DefaultTrackedExts are extensions of files that affect scan results.
var DefaultTrackedExts = []string{
	".cpp", ".hpp", ".h", ".hh", ".inc", ".ext", ".sqm", ".sqf", ".fsm", ".ini",
	".pbo",
	".paa", ".pac", ".p3d", ".rvmat", ".wss", ".ogg", ".wav", ".jpg", ".jpeg", ".png",
}

type fileStamp struct {
	path  string
	mtime int64
	size  int64
}

// Signature computes a digest of the sorted (path, mtime, size) of
// files in fsys whose extension is in exts (case-insensitive).
// An empty exts uses DefaultTrackedExts.
func Signature(fsys fs.FS, exts []string) (string, error) {
	if len(exts) == 0 {
		exts = DefaultTrackedExts
	}
	tracked := make(map[string]bool, len(exts))
	for _, e := range exts {
		tracked[strings.ToLower(e)] = true
	}
	var stamps []fileStamp
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if !tracked[strings.ToLower(path.Ext(p))] {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		stamps = append(stamps, fileStamp{
			path:  p,
			mtime: info.ModTime().UnixNano(),
			size:  info.Size(),
		})
		return nil
	})
	if err != nil {
		return "", err
	}
	sort.Slice(stamps, func(i, j int) bool {
		return stamps[i].path < stamps[j].path
	})
	return digest(stamps), nil
}

// DirSignature is Signature over the directory dir.
func DirSignature(dir string, exts []string) (string, error) {
	st, err := os.Stat(dir)
	if err != nil {
		return "", err
	}
	if !st.IsDir() {
		return "", fmt.Errorf("%s is not a directory", dir)
	}
	return Signature(os.DirFS(dir), exts)
}

// FileSignature computes a signature of a single file.
func FileSignature(fname string) (string, error) {
	st, err := os.Stat(fname)
	if err != nil {
		return "", err
	}
	return digest([]fileStamp{{
		path:  fname,
		mtime: st.ModTime().UnixNano(),
		size:  st.Size(),
	}}), nil
}

func digest(stamps []fileStamp) string {
	h := sha256.New()
	for _, s := range stamps {
		fmt.Fprintf(h, "%s\x00%d\x00%d\n", s.path, s.mtime, s.size)
	}
	return hex.EncodeToString(h.Sum(nil))
}
