package version

import "fmt"

// Set at build time via -ldflags.
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	Commit    = "unknown"
)

func GetVersion() string {
	return Version
}

func GetBuildDate() string {
	return BuildDate
}

// Info returns a single-line description suitable for CLI and API output.
func Info() string {
	return fmt.Sprintf("vectorgen %s (commit %s, built %s)", Version, Commit, BuildDate)
}
