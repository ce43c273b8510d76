// Package version reports build metadata for the wikitypes binary.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

var (
	// Version is the application version, set via ldflags.
	Version string
	// Branch is the git branch, set via ldflags.
	Branch string
	// BuildDate is when the binary was built, set via ldflags.
	BuildDate string
)

// Info is the build metadata of the running binary. It is embedded in the
// generated metadata file so outputs can be traced to a build.
type Info struct {
	Version   string `json:"version"`
	Branch    string `json:"branch,omitempty"`
	Revision  string `json:"revision"`
	BuildDate string `json:"buildDate,omitempty"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

// Get returns the build metadata. Unset fields fall back to the module
// build info.
func Get() Info {
	info := Info{
		Version:   Version,
		Branch:    Branch,
		Revision:  "unknown",
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info.withDefaults()
	}

	if info.Version == "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}

	modified := false

	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.Revision = s.Value
		case "vcs.time":
			if info.BuildDate == "" {
				info.BuildDate = s.Value
			}
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}

	if modified {
		info.Revision += "-dirty"
	}

	return info.withDefaults()
}

func (i Info) withDefaults() Info {
	if i.Version == "" {
		i.Version = "dev"
	}

	return i
}

func (i Info) String() string {
	return fmt.Sprintf("wikitypes %s (%s, %s, %s)", i.Version, i.Revision, i.GoVersion, i.Platform)
}
