// Package version carries build metadata stamped in with -ldflags.
package version

import (
	"runtime"
	"runtime/debug"
)

// Name is the binary name shown in version output.
const Name = "lma"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func String() string {
	return Name + " " + Version + " (commit=" + commit() + ", date=" + Date + ", go=" + runtime.Version() + ")"
}

// UserAgent identifies lma to remote LLM backends.
func UserAgent() string {
	return Name + "/" + Version
}

// commit falls back to the VCS revision embedded by the go tool.
func commit() string {
	if Commit != "none" && Commit != "" {
		return Commit
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return Commit
	}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" && setting.Value != "" {
			return setting.Value
		}
	}
	return Commit
}
