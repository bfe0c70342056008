// SPDX-License-Identifier: Apache-2.0

package otel

import (
	"runtime/debug"
	"sync"
)

const unknownVersion = "unknown"

// buildVersion is the vcs revision the binary was built from, suffixed with
// -dirty for builds with local modifications. The vcs settings are only
// stamped when building the main module.
var buildVersion = sync.OnceValue(func() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return unknownVersion
	}
	return versionFromSettings(info.Settings)
})

func versionFromSettings(settings []debug.BuildSetting) string {
	revision, modified := unknownVersion, false
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}
	if modified && revision != unknownVersion {
		return revision + "-dirty"
	}
	return revision
}
