// Package version exposes the build version string.
package version

// Version is overridden at build time via -ldflags.
var Version = "0.3.0-dev"
