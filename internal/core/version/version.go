// Package version reports what binary is running. The vars are stamped at link time:
//
//	-ldflags "-X wta/internal/core/version.version=v0.3.0 -X wta/internal/core/version.commit=$(git rev-parse --short HEAD)"
package version

import (
	"runtime"
	"runtime/debug"
	"sync"
)

var (
	service = "wta-api"
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// BuildInfo is served on /meta/version and printed by the CLI
type BuildInfo struct {
	Service   string `json:"service"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go"`
	Dirty     bool   `json:"dirty,omitempty"`
}

type vcsStamp struct {
	rev, at string
	dirty   bool
}

// vcs falls back to the toolchain's VCS stamp for binaries built without ldflags
var vcs = sync.OnceValue(func() (out vcsStamp) {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			out.rev = s.Value
		case "vcs.time":
			out.at = s.Value
		case "vcs.modified":
			out.dirty = s.Value == "true"
		}
	}
	return
})

// Info is the build of the running binary
func Info() BuildInfo {
	b := BuildInfo{Service: service, Version: version, Commit: commit, Date: date, GoVersion: runtime.Version()}
	if v := vcs(); commit == "none" && v.rev != "" {
		b.Commit, b.Dirty = shortRev(v.rev), v.dirty
		if date == "unknown" && v.at != "" {
			b.Date = v.at
		}
	}
	return b
}

// For returns Info reported under another binary name
func For(name string) BuildInfo {
	b := Info()
	b.Service = name
	return b
}

func shortRev(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}
