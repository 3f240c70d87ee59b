// Package version reports build metadata stamped in by the linker.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Overridden with -ldflags "-X github.com/rbright/livescribe/internal/version.Version=...".
var (
	Version = "dev"
	Commit  = ""
	Date    = "unknown"
)

// String is the one-line banner printed by `livescribe version`.
func String() string {
	return fmt.Sprintf("livescribe %s (commit=%s, date=%s, go=%s)", Version, commit(), Date, runtime.Version())
}

// commit falls back to the VCS revision recorded by the go tool.
func commit() string {
	if Commit != "" {
		return Commit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				return s.Value
			}
		}
	}
	return "none"
}
