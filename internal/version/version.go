// Package version carries build metadata injected at link time.
package version

import (
	"fmt"
	"runtime"
)

// Set with -ldflags, e.g.
//
//	go build -ldflags "-X github.com/soyeahso/assistloop/internal/version.Version=0.3.0
//	  -X github.com/soyeahso/assistloop/internal/version.Commit=$(git rev-parse HEAD)"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Info returns the human readable build line printed by `assistloop version`.
func Info() string {
	return fmt.Sprintf("assistloop %s (commit %s, built %s, %s/%s)",
		Version, ShortCommit(), Date, runtime.GOOS, runtime.GOARCH)
}

// ShortCommit returns the first seven characters of Commit.
func ShortCommit() string {
	if len(Commit) > 7 {
		return Commit[:7]
	}
	return Commit
}
