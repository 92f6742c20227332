package app

import (
	"fmt"
	"runtime/debug"
)

// Set with -ldflags "-X github.com/tripdesk/backoffice/internal/app.Version=1.4.0".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// BuildVersion formats the build stamp reported by /health, the server
// startup log and `backoffice version`. Without ldflags it falls back to the
// VCS data the Go toolchain embeds.
func BuildVersion() string {
	return formatVersion(Version, Commit, BuildTime, readBuildSettings())
}

func readBuildSettings() map[string]string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return nil
	}
	settings := make(map[string]string, len(info.Settings))
	for _, s := range info.Settings {
		settings[s.Key] = s.Value
	}
	return settings
}

func formatVersion(version, commit, built string, settings map[string]string) string {
	if commit == "unknown" && settings["vcs.revision"] != "" {
		commit = settings["vcs.revision"]
		if len(commit) > 12 {
			commit = commit[:12]
		}
		if settings["vcs.modified"] == "true" {
			commit += "-dirty"
		}
	}
	if built == "unknown" && settings["vcs.time"] != "" {
		built = settings["vcs.time"]
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, built)
}
