// Package version holds the build information of the javadocgen binary.
//
// The values are injected at build time:
//
//	-ldflags "-X javadocgen/internal/version.version=v1.0.0 -X javadocgen/internal/version.commit=abc123 -X javadocgen/internal/version.buildTime=2025-01-01T00:00:00Z"
//
// Without ldflags the module version and VCS revision recorded by the Go
// toolchain are used when available.
package version

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

//nolint:gochecknoglobals // Required for build-time injection via ldflags.
var (
	version   string
	commit    string
	buildTime string

	readBuildInfo = debug.ReadBuildInfo
)

// ApplicationName is the name printed in the full version output.
const ApplicationName = "javadocgen"

// Default values used when no build information is available.
const (
	DefaultVersion   = "dev"
	DefaultCommit    = "unknown"
	DefaultBuildTime = "unknown"
)

const (
	LabelVersion = "Version"
	LabelCommit  = "Commit"
	LabelBuilt   = "Built"
	LabelGo      = "Go"
)

// VersionInfo describes the running binary.
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetVersion returns the version information of the running binary.
func GetVersion() *VersionInfo {
	info := &VersionInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	info.fillFromBuildInfo()

	if info.Version == "" {
		info.Version = DefaultVersion
	}
	if info.Commit == "" {
		info.Commit = DefaultCommit
	}
	if info.BuildTime == "" {
		info.BuildTime = DefaultBuildTime
	}
	return info
}

func (vi *VersionInfo) fillFromBuildInfo() {
	bi, ok := readBuildInfo()
	if !ok || bi == nil {
		return
	}
	if vi.Version == "" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		vi.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if vi.Commit == "" {
				vi.Commit = s.Value
			}
		case "vcs.time":
			if vi.BuildTime == "" {
				vi.BuildTime = s.Value
			}
		}
	}
}

// FormatShort returns only the version number.
func (vi *VersionInfo) FormatShort() string {
	return vi.Version
}

// FormatFull returns the application name followed by one labeled line per field.
func (vi *VersionInfo) FormatFull() string {
	var b strings.Builder
	b.WriteString(ApplicationName + "\n")
	fmt.Fprintf(&b, "%s: %s\n", LabelVersion, vi.Version)
	fmt.Fprintf(&b, "%s: %s\n", LabelCommit, vi.Commit)
	fmt.Fprintf(&b, "%s: %s\n", LabelBuilt, vi.BuildTime)
	fmt.Fprintf(&b, "%s: %s (%s)\n", LabelGo, vi.GoVersion, vi.Platform)
	return b.String()
}

// Write writes the short or full format to w.
func (vi *VersionInfo) Write(w io.Writer, short bool) error {
	var err error
	if short {
		_, err = fmt.Fprintln(w, vi.FormatShort())
	} else {
		_, err = fmt.Fprint(w, vi.FormatFull())
	}
	return err
}

// IsDevelopment reports whether the binary was built without a release version.
func (vi *VersionInfo) IsDevelopment() bool {
	return vi.Version == DefaultVersion
}

// BuiltAt parses the build time, returning the zero time when it is unknown or malformed.
func (vi *VersionInfo) BuiltAt() time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", time.DateOnly} {
		if t, err := time.Parse(layout, vi.BuildTime); err == nil {
			return t
		}
	}
	return time.Time{}
}

// SetBuildVars overrides the injected build variables.
func SetBuildVars(ver, com, bt string) {
	version = ver
	commit = com
	buildTime = bt
}

// ResetBuildVars clears the injected build variables.
func ResetBuildVars() {
	SetBuildVars("", "", "")
}
