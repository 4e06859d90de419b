// Package build provides build-time information for the CLI application.
package build

// These are overridden via ldflags:
// -X github.com/tacogips/mkapp/internal/build.version=x.y.z
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// Version returns the application version.
func Version() string {
	return version
}

// GitCommit returns the commit the binary was built from.
func GitCommit() string {
	return gitCommit
}

// BuildDate returns the build timestamp.
func BuildDate() string {
	return buildDate
}
