// Package version reports which build of the accessmap service is running.
package version

import (
	"runtime"
	"runtime/debug"
)

const service = "accessmap"

// Version is stamped via -ldflags in release builds; "dev" otherwise.
var Version = "dev"

// Info is the /version payload.
type Info struct {
	Service   string `json:"service"`
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	Dirty     bool   `json:"dirty,omitempty"`
	GoVersion string `json:"go_version"`
}

// Get assembles the payload. Commit metadata comes from the module build
// info when the binary was built inside a git checkout.
func Get() Info {
	info := Info{
		Service:   service,
		Version:   Version,
		GoVersion: runtime.Version(),
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.Commit = s.Value
		case "vcs.modified":
			info.Dirty = s.Value == "true"
		}
	}
	return info
}
