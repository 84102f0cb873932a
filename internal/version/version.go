// Package version reports build information injected with -ldflags, e.g.
//
//	go build -ldflags "-X github.com/longkey1/chatsim/internal/version.Version=v0.1.0"
package version

import (
	"fmt"
	"runtime"
)

var (
	Version   = "dev"
	CommitSHA = "unknown"
	BuildTime = "unknown"
)

// Short returns only the version number.
func Short() string {
	return Version
}

// Info returns the full version description.
func Info() string {
	return fmt.Sprintf("chatsim %s\nCommit: %s\nBuilt: %s\nGo: %s %s/%s",
		Version, CommitSHA, BuildTime, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
