// Package version holds build metadata injected with -ldflags.
package version

// Version is overridden at build time, e.g.
// -ldflags "-X github.com/minidrive/minidrive/internal/version.Version=v1.2.0".
var Version = "v0.1.0-dev"

// BuildTime is the build timestamp.
var BuildTime = "unknown"
