// Package version holds build information injected at link time via
// -ldflags "-X github.com/masa23/spfcheck/internal/version.Version=...".
package version

var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)
