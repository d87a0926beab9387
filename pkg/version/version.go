package version

import (
	"fmt"
	"runtime"
)

// Values for these are injected by the build.
var (
	version = "edge"
	commit  = ""
)

// Version returns the sigboard version. This is either a semantic version
// number or else, in the case of unreleased code, the string "edge".
func Version() string {
	if version == "edge" {
		return version
	}

	return fmt.Sprintf("v%s", version)
}

// String describes the build, e.g. "v0.3.0 (1a2b3c4, go1.23.0 linux/amd64)"
func String() string {
	build := fmt.Sprintf("%s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	if commit != "" {
		build = commit + ", " + build
	}
	return fmt.Sprintf("%s (%s)", Version(), build)
}
