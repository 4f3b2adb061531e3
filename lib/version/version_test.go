// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"bytes"
	"runtime"
	"strings"
	"testing"
)

func withBuildInfo(t *testing.T, commit, dirty, buildTime, version string) {
	t.Helper()
	saved := [4]string{GitCommit, GitDirty, BuildTime, Version}
	GitCommit, GitDirty, BuildTime, Version = commit, dirty, buildTime, version
	t.Cleanup(func() {
		GitCommit, GitDirty, BuildTime, Version = saved[0], saved[1], saved[2], saved[3]
	})
}

func TestInfo(t *testing.T) {
	tests := []struct {
		name  string
		dirty string
		want  string
	}{
		{"clean", "false", "1.2.3 (abc1234, 2026-03-01T00:00:00Z)"},
		{"dirty", "true", "1.2.3 (abc1234-dirty, 2026-03-01T00:00:00Z)"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			withBuildInfo(t, "abc1234", test.dirty, "2026-03-01T00:00:00Z", "1.2.3")
			if got := Info(); got != test.want {
				t.Errorf("Info() = %q, want %q", got, test.want)
			}
		})
	}
}

func TestFullIncludesPlatform(t *testing.T) {
	full := Full()
	if !strings.HasPrefix(full, Info()) {
		t.Errorf("Full() = %q, want prefix %q", full, Info())
	}
	if !strings.Contains(full, runtime.GOOS+"/"+runtime.GOARCH) {
		t.Errorf("Full() = %q, missing platform", full)
	}
}

func TestShortAndCommit(t *testing.T) {
	withBuildInfo(t, "feedbee", "false", "unknown", "0.9.0")
	if Short() != "0.9.0" {
		t.Errorf("Short() = %q", Short())
	}
	if Commit() != "feedbee" {
		t.Errorf("Commit() = %q", Commit())
	}
}

func TestPrint(t *testing.T) {
	withBuildInfo(t, "abc1234", "false", "now", "1.0.0")
	var buffer bytes.Buffer
	Print(&buffer, "bureau-chat")
	if got, want := buffer.String(), "bureau-chat 1.0.0 (abc1234, now)\n"; got != want {
		t.Errorf("Print wrote %q, want %q", got, want)
	}
}
