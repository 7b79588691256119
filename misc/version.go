// Package misc holds build time information.
package misc

import "runtime/debug"

// set with -ldflags "-X stylevars/misc.version=... -X stylevars/misc.hash=..."
var (
	version = "dev"
	hash    = ""
)

const appName = "stylevars"

// GetAppName returns program name.
func GetAppName() string {
	return appName
}

// GetVersion returns program version.
func GetVersion() string {
	return version
}

// GetGitHash returns git commit the program was built from, falls back to
// VCS information recorded by the go tool.
func GetGitHash() string {
	if hash != "" {
		return hash
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}
