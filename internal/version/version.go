// Package version exposes the build identity stamped into release
// binaries.
package version

// Release builds overwrite these defaults with -ldflags, e.g.
//
//	-X 'github.com/claudewatch/claudewatch/internal/version.Version=v1.2.0'
//
// and likewise for CommitHash and BuildDate. Unstamped builds report
// themselves as "dev", which also opts them out of update checks.
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// String renders the full identity for --version output.
func String() string {
	return Version + " (" + CommitHash + ") built " + BuildDate
}
