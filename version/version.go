package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

var (
	// Version is the release version, set via ldflags. When empty the main
	// module version recorded by the Go toolchain is used.
	Version string
	// BuildDate is when the binary was built, set via ldflags.
	BuildDate string

	// Revision is the VCS revision, with a "-dirty" suffix for modified trees.
	Revision = readRevision(debug.ReadBuildInfo)
)

// Info describes the running binary.
type Info struct {
	Version   string `json:"version"             yaml:"version"`
	Revision  string `json:"revision"            yaml:"revision"`
	BuildDate string `json:"buildDate,omitempty" yaml:"buildDate,omitempty"`
	GoVersion string `json:"goVersion"           yaml:"goVersion"`
	Platform  string `json:"platform"            yaml:"platform"`
}

// Get returns the build metadata of the running binary.
func Get() Info {
	return Info{
		Version:   resolveVersion(Version, debug.ReadBuildInfo),
		Revision:  Revision,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String renders i on one line.
func (i Info) String() string {
	s := fmt.Sprintf("%s (%s, %s, %s)", i.Version, i.Revision, i.GoVersion, i.Platform)
	if i.BuildDate != "" {
		s += " built " + i.BuildDate
	}

	return s
}

type buildInfoFunc func() (*debug.BuildInfo, bool)

func resolveVersion(set string, read buildInfoFunc) string {
	if set != "" {
		return set
	}

	bi, ok := read()
	if !ok || bi.Main.Version == "" {
		return "devel"
	}

	return bi.Main.Version
}

func readRevision(read buildInfoFunc) string {
	rev := "unknown"

	bi, ok := read()
	if !ok {
		return rev
	}

	modified := false

	for _, v := range bi.Settings {
		switch v.Key {
		case "vcs.revision":
			rev = v.Value
		case "vcs.modified":
			modified = v.Value == "true"
		}
	}

	if modified {
		return rev + "-dirty"
	}

	return rev
}
