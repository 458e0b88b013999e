// Package version carries build metadata injected via -ldflags.
package version

import "fmt"

var (
	// Version is the release version. Overridden by the build system.
	Version = "v0.1.0"

	// Commit is the git short hash of the build.
	Commit = "unknown"

	// Date is the build timestamp.
	Date = "unknown"
)

// String formats the build metadata for `limelight version`.
func String() string {
	return fmt.Sprintf("limelight %s (commit %s, built %s)", Version, Commit, Date)
}
