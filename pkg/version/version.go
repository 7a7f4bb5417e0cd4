// Package version exposes build metadata for the crmdex binary.
package version

import (
	"fmt"
	"runtime"
)

// Build metadata, injected via ldflags:
//
//	-X github.com/Aman-CERP/crmdex/pkg/version.Version=$(VERSION)
//	-X github.com/Aman-CERP/crmdex/pkg/version.Commit=$(COMMIT)
//	-X github.com/Aman-CERP/crmdex/pkg/version.Date=$(DATE)
var (
	// Version is the release version, or "dev" for local builds.
	Version = "dev"

	// Commit is the git commit hash the binary was built from.
	Commit = "unknown"

	// Date is the build date in RFC3339 format.
	Date = "unknown"
)

// BuildInfo is structured version information for JSON output.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetInfo returns the full build metadata.
func GetInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// String renders the one-line version banner.
func String() string {
	return fmt.Sprintf("crmdex %s (commit: %s, built: %s, go: %s)",
		Version, Commit, Date, runtime.Version())
}

// Short returns just the version.
func Short() string {
	return Version
}
