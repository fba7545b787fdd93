package buildconfig

import "fmt"

// Build-time variables injected via ldflags
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func Version() string {
	return version
}

func Commit() string {
	return commit
}

// VersionInfo returns full version information
func VersionInfo() map[string]string {
	return map[string]string{
		"version": version,
		"commit":  commit,
		"date":    date,
	}
}

// String formats the build as "yuhun <version> (<commit>, <date>)".
func String() string {
	return fmt.Sprintf("yuhun %s (%s, %s)", version, commit, date)
}
