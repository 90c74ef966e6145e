// Where: internal/version/version.go
// What: Version information retrieval.
// Why: Report the VCS revision the CLI and handlers were built from.
package version

import (
	"fmt"
	"runtime/debug"

	"github.com/photo-album/eda-app/internal/meta"
)

var readBuildInfo = debug.ReadBuildInfo

// GetVersion returns the short VCS revision, "dev" when unavailable,
// with a "(dirty)" suffix for modified trees.
func GetVersion() string {
	info, ok := readBuildInfo()
	if !ok {
		return "dev"
	}

	var revision string
	var modified bool
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
			if len(revision) > 7 {
				revision = revision[:7]
			}
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}

	if revision == "" {
		return "dev"
	}
	if modified {
		return fmt.Sprintf("%s (dirty)", revision)
	}
	return revision
}

// String renders the banner printed by `eda version`.
func String() string {
	return fmt.Sprintf("%s %s", meta.AppName, GetVersion())
}
