// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package config

import (
	"runtime"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

// LimitsEnv is the environment variable to override limits.
const LimitsEnv = "MISSIONCHECK_LIMITS"

// Limits specifies the concurrency limits of a run.
type Limits struct {
	// Roots is the number of mod folders parsed concurrently.
	Roots int
	// Archive is the number of concurrent archive listings.
	Archive int
	// Missions is the number of missions validated concurrently.
	Missions int
}

// DefaultLimits returns default limits, overridden by
// MISSIONCHECK_LIMITS as read by getenv.
// MISSIONCHECK_LIMITS is comma-separated <key>=<value> pair.
// e.g.
//
//	MISSIONCHECK_LIMITS=roots=4,archive=8,missions=2
func DefaultLimits(getenv func(string) string) Limits {
	numCPU := runtime.NumCPU()
	limits := Limits{
		Roots:    numCPU,
		Archive:  numCPU,
		Missions: numCPU,
	}
	overrides := getenv(LimitsEnv)
	if overrides == "" {
		return limits
	}
	for _, ov := range strings.Split(overrides, ",") {
		ov = strings.TrimSpace(ov)
		k, v, ok := strings.Cut(ov, "=")
		if !ok {
			log.Warnf("wrong %s value %q", LimitsEnv, ov)
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			log.Warnf("wrong limits value for %s: %v", k, v)
			continue
		}
		switch k {
		case "roots":
			limits.Roots = n
		case "archive":
			limits.Archive = n
		case "missions":
			limits.Missions = n
		default:
			log.Warnf("unknown limits name %q", k)
			continue
		}
		log.Infof("use %s=%s=%d", LimitsEnv, k, n)
	}
	return limits
}
