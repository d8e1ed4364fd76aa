// Package version provides centralized version information so every
// surface reports the same number.
package version

// These variables can be overridden at build time using ldflags:
// go build -ldflags "-X fsintel/internal/version.Version=2.1.0 -X fsintel/internal/version.Commit=abc123"
var (
	// Version is the semantic version of the analysis core
	Version = "2.0.0"

	// Commit is the git commit hash (set at build time)
	Commit = "unknown"

	// BuildDate is the build timestamp (set at build time)
	BuildDate = "unknown"
)

// Info returns a formatted version string
func Info() string {
	if Commit != "unknown" && len(Commit) > 7 {
		return Version + " (" + Commit[:7] + ")"
	}
	return Version
}

// Full returns complete version information
func Full() string {
	return "fsintel version " + Version + "\n" +
		"Commit: " + Commit + "\n" +
		"Built: " + BuildDate
}
