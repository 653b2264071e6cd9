package contracts

import (
	"fmt"
	"runtime"
)

const (
	// Version is the release of the contract-report binary
	Version = "1.0.0"

	// ReportFormatVersion versions the JSON report document
	ReportFormatVersion = "v1"

	// APIVersion is the path prefix version of the HTTP API
	APIVersion = "v1"
)

// Set with -ldflags "-X contractreport/pkg/contracts.GitCommit=..."
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// VersionInfo is served by /api/version
type VersionInfo struct {
	Version      string `json:"version"`
	BuildTime    string `json:"build_time"`
	GitCommit    string `json:"git_commit"`
	GoVersion    string `json:"go_version"`
	OS           string `json:"os"`
	Architecture string `json:"architecture"`
	ReportFormat string `json:"report_format"`
	APIVersion   string `json:"api_version"`
}

func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:      Version,
		BuildTime:    BuildTime,
		GitCommit:    GitCommit,
		GoVersion:    runtime.Version(),
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
		ReportFormat: ReportFormatVersion,
		APIVersion:   APIVersion,
	}
}

// GetFullVersionString is printed by --version
func GetFullVersionString() string {
	info := GetVersionInfo()
	return fmt.Sprintf("contract-report v%s (commit %s, built %s, %s %s/%s)",
		info.Version, info.GitCommit, info.BuildTime, info.GoVersion, info.OS, info.Architecture)
}
