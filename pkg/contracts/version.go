// Package contracts carries the shared type contracts between the
// pipeline, the HTTP/WebSocket surface, and the CLIs, plus the build
// version information stamped into every binary.
package contracts

import (
	"fmt"
	"runtime"
)

const (
	// Version is the current version of the application.
	Version = "0.3.0"

	// DataFormatVersion is the version of the exported dataset layout.
	DataFormatVersion = "v1"
)

// Set at build time via -ldflags.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// VersionInfo contains detailed version information.
type VersionInfo struct {
	Version    string `json:"version"`
	BuildTime  string `json:"build_time"`
	GitCommit  string `json:"git_commit"`
	GoVersion  string `json:"go_version"`
	OS         string `json:"os"`
	Arch       string `json:"arch"`
	DataFormat string `json:"data_format"`
}

// GetVersionInfo returns detailed version information.
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:    Version,
		BuildTime:  BuildTime,
		GitCommit:  GitCommit,
		GoVersion:  runtime.Version(),
		OS:         runtime.GOOS,
		Arch:       runtime.GOARCH,
		DataFormat: DataFormatVersion,
	}
}

// GetVersionString returns the one-line version string the CLIs print
// for -version.
func GetVersionString() string {
	return fmt.Sprintf("ff-ledger v%s (commit %s, built %s, %s)",
		Version, GitCommit, BuildTime, runtime.Version())
}
