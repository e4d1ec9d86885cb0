// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package cachecmd

import (
	"context"
	"errors"
	"testing"

	"github.com/maruel/subcommands"

	"go.chromium.org/infra/build/missioncheck/scancache"
)

func TestClearAndGC(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	key := scancache.Key{Scope: "/mods/@base", Kind: "classes"}
	put := func() {
		t.Helper()
		s, err := scancache.NewLocalStore(dir)
		if err != nil {
			t.Fatal(err)
		}
		defer s.Close()
		err = s.Put(ctx, key, scancache.Entry{Signature: "sig", Payload: []byte(`{}`)})
		if err != nil {
			t.Fatal(err)
		}
	}
	get := func() error {
		t.Helper()
		s, err := scancache.NewLocalStore(dir)
		if err != nil {
			t.Fatal(err)
		}
		defer s.Close()
		_, err = s.Get(ctx, key)
		return err
	}
	app := &subcommands.DefaultApplication{
		Name:     "missioncheck",
		Commands: []*subcommands.Command{Cmd()},
	}

	put()
	if code := subcommands.Run(app, []string{"cache", "gc", "-cache_dir", dir, "-cache_ttl", "1h"}); code != 0 {
		t.Fatalf("cache gc=%d; want 0", code)
	}
	if err := get(); err != nil {
		t.Errorf("Get after gc=%v; want entry kept", err)
	}

	if code := subcommands.Run(app, []string{"cache", "clear", "-cache_dir", dir}); code != 0 {
		t.Fatalf("cache clear=%d; want 0", code)
	}
	if err := get(); !errors.Is(err, scancache.ErrNotFound) {
		t.Errorf("Get after clear=%v; want %v", err, scancache.ErrNotFound)
	}

	if code := subcommands.Run(app, []string{"cache", "gc", "-cache_dir", dir, "-cache_ttl", "0s"}); code == 0 {
		t.Errorf("cache gc -cache_ttl 0s=0; want non-zero")
	}
}
