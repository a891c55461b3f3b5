// Package version holds build metadata injected with -ldflags.
package version

import "fmt"

var (
	// Version is the release version of the recorder.
	Version = "dev"
	// GitSHA is the commit the binary was built from.
	GitSHA = "unknown"
	// BuildTime is the build timestamp.
	BuildTime = "unknown"
)

// String formats the build metadata for -version output and logs.
func String() string {
	return fmt.Sprintf("pointcloud-recorder %s (%s, built %s)", Version, GitSHA, BuildTime)
}
