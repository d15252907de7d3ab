// Package misc has program identity helpers.
package misc

import (
	"runtime/debug"
)

const appName = "cssurl"

// set with -ldflags at build time
var (
	version = "dev"
	gitHash = ""
)

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

// GetGitHash returns commit program was built from, falls back to VCS
// information recorded by the toolchain.
func GetGitHash() string {
	if gitHash != "" {
		return gitHash
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
