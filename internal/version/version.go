// Package version holds build information stamped by the linker.
package version

// Set with -ldflags "-X" by the build task.
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)
