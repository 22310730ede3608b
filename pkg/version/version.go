// Package version exposes the replyrank build version.
package version

// Version is set at build time via -ldflags. It defaults to "dev" for
// source builds.
var Version = "dev" //nolint:gochecknoglobals // Set by the linker at release time.

// GetVersion returns the current replyrank version string.
func GetVersion() string {
	return Version
}
