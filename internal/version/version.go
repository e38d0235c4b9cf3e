// Package version exposes build information injected at link time.
package version

//nolint:gochecknoglobals // Overridden with -ldflags "-X" at build time.
var (
	// Version is the semantic version of the build.
	Version = "0.1.0"
	// Commit is the VCS revision of the build.
	Commit = "none"
	// BuildTime is the moment the binary was built.
	BuildTime = "unknown"
)

// Short returns the bare version string.
func Short() string {
	return Version
}

// Full returns the version, commit and build time in one line.
func Full() string {
	return "version: " + Version + ", commit: " + Commit + ", built at: " + BuildTime
}
