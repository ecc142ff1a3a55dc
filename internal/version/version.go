package version

import (
	"fmt"
	"runtime"
)

// ApplicationName is the human-readable name of the application.
var ApplicationName = "easiarr"

// Version is the current version of the application.
// This is intended to be overwritten at build time using:
// -ldflags "-X github.com/easiarr/easiarr/internal/version.Version=v1.2.3"
var Version = "v0.0.0-dev"

// Commit is the git commit hash of the build.
var Commit = "none"

// BuildDate is the date the binary was built.
var BuildDate = "unknown"

// UserAgent identifies easiarr in outgoing HTTP requests.
func UserAgent() string {
	return fmt.Sprintf("%s/%s (%s; %s)", ApplicationName, Version, runtime.GOOS, runtime.GOARCH)
}

// Full returns a multi-line version report for the version command.
func Full() string {
	return fmt.Sprintf("%s %s\ncommit: %s\nbuilt: %s\ngo: %s %s/%s",
		ApplicationName, Version, Commit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
