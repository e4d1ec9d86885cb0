// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui

import (
	"fmt"
	"strings"
	"time"
)

// FormatDuration formats duration in "Xms", "X.XXs", "XmXX.XXs" or
// "XhXmXX.XXs".
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	d = d.Round(10 * time.Millisecond)
	var sb strings.Builder
	sb.Grow(32)

	mins := d.Truncate(time.Minute)
	d -= mins
	if mins > 0 {
		sb.WriteString(strings.TrimSuffix(mins.String(), "0s"))
		if d < 10*time.Second {
			sb.WriteByte('0')
		}
	}
	fmt.Fprintf(&sb, "%.02fs", d.Seconds())
	return sb.String()
}
