package version

import (
	"fmt"

	"github.com/fatih/color"
)

// Version information for the mermaidviz CLI.
// These variables can be overridden at build time via -ldflags.
var (
	// Version is the plain semantic version.
	Version = "0.3.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// GitMessage is an optional git commit message.
	GitMessage = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)
)

// Info is the machine-readable form of the build metadata.
type Info struct {
	Version    string `json:"version"`
	GitCommit  string `json:"git_commit,omitempty"`
	GitMessage string `json:"git_message,omitempty"`
	BuildDate  string `json:"build_date,omitempty"`
}

// Current returns the build metadata.
func Current() Info {
	return Info{Version: Version, GitCommit: GitCommit, GitMessage: GitMessage, BuildDate: BuildDate}
}

// Colored renders Version with each numeric component in its own color.
// Versions that are not major.minor.patch[-suffix] are returned as is.
func Colored() string {
	var major, minor, patch int
	var suffix string
	n, _ := fmt.Sscanf(Version, "%d.%d.%d%s", &major, &minor, &patch, &suffix)
	if n < 3 {
		return Version
	}
	return versionMajorColor.Sprint(major) + "." +
		versionMinorColor.Sprint(minor) + "." +
		versionPatchColor.Sprint(patch) + suffix
}
