// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"io"
	"os"
	"runtime"
)

// Set via -ldflags at build time.
var (
	// Commit is the short git SHA of the build.
	Commit = "unknown"

	// Dirty is "true" when the tree had uncommitted changes.
	Dirty = "false"

	// BuildTime is the UTC timestamp of the build.
	BuildTime = "unknown"

	// Version is the semantic version, set by hand for releases.
	Version = "0.1.0-dev"
)

// Info returns "<version> (<commit>[-dirty], <build time>)".
func Info() string {
	commit := Commit
	if Dirty == "true" {
		commit += "-dirty"
	}
	return fmt.Sprintf("%s (%s, %s)", Version, commit, BuildTime)
}

// Full returns Info plus the Go toolchain and platform.
func Full() string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s",
		Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Fprint writes the --version output of binary to w.
func Fprint(w io.Writer, binary string) {
	fmt.Fprintf(w, "%s %s\n", binary, Full())
}

// Print writes the --version output of binary to stdout.
func Print(binary string) {
	Fprint(os.Stdout, binary)
}
