// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scancache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/sync/singleflight"
)

// LocalStore implements Store with one zstd-compressed file per key.
type LocalStore struct {
	dir string

	enc *zstd.Encoder
	dec *zstd.Decoder

	// locks serializes writes per file name.
	locks sync.Map

	// singleflight coalesces concurrent reads of the same file.
	singleflight singleflight.Group
	timestamp    time.Time
}

// DefaultTTL is the default age after which unused entries are evicted.
const DefaultTTL = 7 * 24 * time.Hour

const lastGCFile = "lastgc"

// envelope is the on-disk form of an entry.
type envelope struct {
	Scope     string    `json:"scope"`
	Kind      string    `json:"kind"`
	Signature string    `json:"signature"`
	Stored    time.Time `json:"stored"`
	Payload   []byte    `json:"payload"`
}

// NewLocalStore returns a store in dir.
func NewLocalStore(dir string) (*LocalStore, error) {
	if dir == "" {
		return nil, errors.New("cache dir is not configured")
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, err
	}
	return &LocalStore{
		dir: dir,
		enc: enc,
		dec: dec,
		// same timestamp is used for the whole run.
		timestamp: time.Now(),
	}, nil
}

// Close releases resources of the store.
func (s *LocalStore) Close() error {
	s.dec.Close()
	return s.enc.Close()
}

// Dir returns the cache directory.
func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) filename(k Key) string {
	h := sha256.Sum256([]byte(k.Scope))
	name := hex.EncodeToString(h[:])
	return filepath.Join(s.dir, filepath.Base(k.Kind), name[:2], name[2:]+".zst")
}

// Get gets the entry of the key.
func (s *LocalStore) Get(ctx context.Context, k Key) (Entry, error) {
	fname := s.filename(k)
	v, err, _ := s.singleflight.Do(fname, func() (any, error) {
		b, err := os.ReadFile(fname)
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		b, err = s.dec.DecodeAll(b, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress %s: %w", fname, err)
		}
		var env envelope
		err = json.Unmarshal(b, &env)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", fname, err)
		}
		if env.Scope != k.Scope || env.Kind != k.Kind {
			// sha256 collision or file renamed by hand.
			return nil, ErrNotFound
		}
		if err := os.Chtimes(fname, s.timestamp, s.timestamp); err != nil {
			log.Warnf("Failed to update mtime for %s: %v", fname, err)
		}
		return Entry{
			Signature: env.Signature,
			Payload:   env.Payload,
			Stored:    env.Stored,
		}, nil
	})
	if err != nil {
		return Entry{}, err
	}
	return v.(Entry), nil
}

func (s *LocalStore) lock(fname string) func() {
	v, _ := s.locks.LoadOrStore(fname, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Put stores the entry of the key.
func (s *LocalStore) Put(ctx context.Context, k Key, e Entry) error {
	if e.Stored.IsZero() {
		e.Stored = time.Now()
	}
	b, err := json.Marshal(envelope{
		Scope:     k.Scope,
		Kind:      k.Kind,
		Signature: e.Signature,
		Stored:    e.Stored,
		Payload:   e.Payload,
	})
	if err != nil {
		return err
	}
	b = s.enc.EncodeAll(b, nil)

	fname := s.filename(k)
	defer s.lock(fname)()
	err = os.MkdirAll(filepath.Dir(fname), 0755)
	if err != nil {
		return err
	}
	// Write to a temporary file first before renaming to perform an atomic
	// write.
	f, err := os.CreateTemp(filepath.Dir(fname), filepath.Base(fname)+".tmp*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	_, err = f.Write(b)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return err
	}
	err = os.Rename(tmp, fname)
	if err != nil {
		os.Remove(tmp)
		return err
	}
	log.Debugf("cache put %s/%s -> %s (%d bytes)", k.Kind, k.Scope, fname, len(b))
	return nil
}

// Evict removes entries whose file was not used since threshold.
func (s *LocalStore) Evict(ctx context.Context, threshold time.Time) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	n := 0
	var reclaimed int64
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		nfiles, size, err := garbageCollect(ctx, filepath.Join(s.dir, entry.Name()), threshold)
		n += nfiles
		reclaimed += size
		if err != nil {
			return n, err
		}
	}
	if n > 0 {
		log.Infof("Garbage collected scan cache: removed %d files totalling %d KB", n, reclaimed/1000)
	}
	return n, nil
}

func garbageCollect(ctx context.Context, dir string, threshold time.Time) (nFiles int, spaceReclaimed int64, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Warnf("Failed to read %s: %v", dir, err)
		return 0, 0, nil
	}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nFiles, spaceReclaimed, err
		}
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			n, s, err := garbageCollect(ctx, path, threshold)
			nFiles += n
			spaceReclaimed += s
			if err != nil {
				return nFiles, spaceReclaimed, err
			}
			continue
		}
		// reads update mtime, so mtime is the last use.
		info, err := entry.Info()
		if err != nil {
			log.Warnf("Failed to stat file %s: %v", path, err)
			continue
		}
		if !info.ModTime().Before(threshold) {
			continue
		}
		if err := os.Remove(path); err != nil {
			log.Warnf("Failed to delete %s: %v", path, err)
			continue
		}
		nFiles++
		spaceReclaimed += info.Size()
	}
	return nFiles, spaceReclaimed, nil
}

// Clear removes all entries.
func (s *LocalStore) Clear(ctx context.Context) error {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := os.RemoveAll(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			return err
		}
	}
	log.Infof("cleared scan cache %s", s.dir)
	return nil
}

func (s *LocalStore) needsGarbageCollection(ttl time.Duration) bool {
	b, err := os.ReadFile(filepath.Join(s.dir, lastGCFile))
	if err != nil {
		if _, err := os.Stat(s.dir); os.IsNotExist(err) {
			return false
		}
		return true
	}
	lastgc, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return true
	}
	return s.timestamp.After(time.Unix(0, lastgc).Add(ttl))
}

// GarbageCollectIfRequired evicts entries older than ttl if it has not
// been done within ttl.
func (s *LocalStore) GarbageCollectIfRequired(ctx context.Context, ttl time.Duration) error {
	if !s.needsGarbageCollection(ttl) {
		return nil
	}
	log.Infof("Performing garbage collection on the scan cache")
	_, err := s.Evict(ctx, s.timestamp.Add(-ttl))
	if err != nil {
		return err
	}
	err = os.WriteFile(filepath.Join(s.dir, lastGCFile), []byte(strconv.FormatInt(s.timestamp.UnixNano(), 10)), 0644)
	if err != nil {
		log.Warnf("Failed to record last garbage collection event: %v", err)
	}
	return nil
}
