// Package version reports build information for the pathplease binary.
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
	// BuildUser is the user who built the binary, set via ldflags.
	BuildUser string
	// BuildDate is when the binary was built, set via ldflags.
	BuildDate string

	// Revision is the git commit revision.
	Revision = getRevision()
	// GoVersion is the Go version used to build.
	GoVersion = runtime.Version()
	// GoOS is the operating system target.
	GoOS = runtime.GOOS
	// GoArch is the architecture target.
	GoArch = runtime.GOARCH
)

func getRevision() string {
	rev := "unknown"

	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return rev
	}

	modified := false

	for _, v := range buildInfo.Settings {
		switch v.Key {
		case "vcs.revision":
			rev = v.Value
		case "vcs.modified":
			if v.Value == "true" {
				modified = true
			}
		}
	}

	if modified {
		return rev + "-dirty"
	}

	return rev
}

// Info returns a one-line summary of the build.
func Info() string {
	v := Version
	if v == "" {
		v = "dev"
	}

	return fmt.Sprintf("pathplease %s (revision %s, %s %s/%s)", v, Revision, GoVersion, GoOS, GoArch)
}

// Fields returns the build information as ordered key/value pairs, omitting
// values that were not set at build time.
func Fields() [][2]string {
	all := [][2]string{
		{"version", Version},
		{"revision", Revision},
		{"branch", Branch},
		{"buildUser", BuildUser},
		{"buildDate", BuildDate},
		{"goVersion", GoVersion},
		{"platform", GoOS + "/" + GoArch},
	}

	out := all[:0]
	for _, f := range all {
		if f[1] != "" {
			out = append(out, f)
		}
	}

	return out
}
