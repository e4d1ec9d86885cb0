// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package config provides command line options shared by subcommands.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"go.chromium.org/luci/common/flag/stringlistflag"

	"go.chromium.org/infra/build/missioncheck/assets"
	"go.chromium.org/infra/build/missioncheck/scancache"
)

// EnvPrefix is the prefix of environment variables for flags.
// e.g. MISSIONCHECK_CACHE_DIR sets -cache_dir.
const EnvPrefix = "MISSIONCHECK_"

// Option is an option to load content and run checks.
type Option struct {
	ModDirs stringlistflag.Flag
	INIDBI  string

	CacheDir string
	CacheTTL time.Duration
	NoCache  bool

	ExtractPBO     string
	ArchiveTimeout time.Duration

	IgnoreRules string
	LogLevel    string
}

// RegisterFlags registers flags for the option.
func (o *Option) RegisterFlags(flagSet *flag.FlagSet) {
	flagSet.Var(&o.ModDirs, "mod", "mod folder to load (repeatable, in load order)")
	flagSet.StringVar(&o.INIDBI, "inidbi", "", "INIDBI2 export of class data")
	flagSet.StringVar(&o.CacheDir, "cache_dir", DefaultCacheDir(), "scan cache directory")
	flagSet.DurationVar(&o.CacheTTL, "cache_ttl", scancache.DefaultTTL, "evict cache entries not used for this long")
	flagSet.BoolVar(&o.NoCache, "no_cache", false, "disable the scan cache")
	flagSet.StringVar(&o.ExtractPBO, "extractpbo", "", "extractpbo binary to list archives. empty disables archive listing")
	flagSet.DurationVar(&o.ArchiveTimeout, "archive_timeout", assets.DefaultTimeout, "time limit to list one archive")
	flagSet.StringVar(&o.IgnoreRules, "ignore_rules", "", "JSON file of extra ignore rules")
	flagSet.StringVar(&o.LogLevel, "log_level", "info", "log level: debug, info, warn or error")
}

// DefaultCacheDir returns the default cache directory.
func DefaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "missioncheck")
	}
	return filepath.Join(dir, "missioncheck")
}

// Check checks the option.
func (o *Option) Check() error {
	if o.CacheTTL <= 0 {
		return fmt.Errorf("-cache_ttl must be positive: %s", o.CacheTTL)
	}
	if o.ArchiveTimeout <= 0 {
		return fmt.Errorf("-archive_timeout must be positive: %s", o.ArchiveTimeout)
	}
	_, err := log.ParseLevel(o.LogLevel)
	if err != nil {
		return fmt.Errorf("-log_level: %w", err)
	}
	return nil
}

// SetupLog sets the level of the default logger.
func (o *Option) SetupLog() {
	level, err := log.ParseLevel(o.LogLevel)
	if err != nil {
		log.Warnf("bad -log_level %q: %v", o.LogLevel, err)
		return
	}
	log.SetLevel(level)
}

// LoadEnv loads .env files (".env" if none given) into the process
// environment, then sets flags not given on the command line from
// MISSIONCHECK_<NAME> variables. A missing default .env is not an
// error, but a missing file given in files is.
func LoadEnv(flagSet *flag.FlagSet, files ...string) error {
	err := godotenv.Load(files...)
	if err != nil && (len(files) > 0 || !errors.Is(err, fs.ErrNotExist)) {
		return fmt.Errorf("load env: %w", err)
	}
	return ApplyEnv(flagSet, os.LookupEnv)
}

// ApplyEnv sets flags not set yet from environment variables found by
// lookup. Flag "cache_dir" is read from MISSIONCHECK_CACHE_DIR.
// A repeatable flag takes a comma separated list.
func ApplyEnv(flagSet *flag.FlagSet, lookup func(string) (string, bool)) error {
	set := make(map[string]bool)
	flagSet.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})
	var errs []error
	flagSet.VisitAll(func(f *flag.Flag) {
		if set[f.Name] {
			return
		}
		key := EnvName(f.Name)
		v, ok := lookup(key)
		if !ok || v == "" {
			return
		}
		values := []string{v}
		if _, ok := f.Value.(*stringlistflag.Flag); ok {
			values = strings.Split(v, ",")
		}
		for _, v := range values {
			err := flagSet.Set(f.Name, strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s=%q: %w", key, v, err))
				return
			}
		}
		log.Debugf("flag -%s from $%s", f.Name, key)
	})
	return errors.Join(errs...)
}

// EnvName returns the environment variable name of a flag.
func EnvName(flagName string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}
