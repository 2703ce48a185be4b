// Package version is a pure formatter for the module's "M.m.p" string.
// It carries no build-info injection, no VCS metadata — spec.md §1 calls
// this out explicitly as boilerplate external to the foundation.
package version

import "fmt"

// Major, Minor, and Patch are bumped by hand on release; this package
// intentionally does not read them from anywhere else (no ldflags, no
// debug.ReadBuildInfo).
const (
	Major = 0
	Minor = 1
	Patch = 0
)

// String returns "M.m.p".
func String() string {
	return fmt.Sprintf("%d.%d.%d", Major, Minor, Patch)
}
