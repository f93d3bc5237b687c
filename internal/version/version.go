package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

const defaultModule = "pkt.systems/blackboard"

// buildVersion is set via -ldflags "-X pkt.systems/blackboard/internal/version.buildVersion=...".
var buildVersion = ""

// Info describes the running binary.
type Info struct {
	Version   string
	Module    string
	Revision  string
	BuildTime string
	Modified  bool
	GoVersion string
}

// Current returns the best available version string.
func Current() string {
	return Read().Version
}

// Module returns the module path from build info when available.
func Module() string {
	return Read().Module
}

// UserAgent identifies control plane clients.
func UserAgent() string {
	return "blackboard/" + Current()
}

// Read collects version details from ldflags and embedded build info.
func Read() Info {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		info = nil
	}
	return fromBuildInfo(info, buildVersion)
}

// String renders the info for `blackboard version`.
func (i Info) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", i.Module, i.Version)
	if i.Revision != "" {
		rev := i.Revision
		if len(rev) > 12 {
			rev = rev[:12]
		}
		fmt.Fprintf(&b, " (%s", rev)
		if i.Modified {
			b.WriteString(", modified")
		}
		b.WriteString(")")
	}
	fmt.Fprintf(&b, " %s", i.GoVersion)
	return b.String()
}

func fromBuildInfo(info *debug.BuildInfo, override string) Info {
	out := Info{Module: defaultModule, GoVersion: runtime.Version(), Version: "v0.0.0-unknown"}
	if info != nil {
		if path := strings.TrimSpace(info.Main.Path); path != "" {
			out.Module = path
		}
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				out.Revision = setting.Value
			case "vcs.time":
				out.BuildTime = setting.Value
			case "vcs.modified":
				out.Modified = setting.Value == "true"
			}
		}
	}
	switch {
	case strings.TrimSpace(override) != "":
		out.Version = strings.TrimSuffix(strings.TrimSpace(override), "+dirty")
	case info != nil && info.Main.Version != "" && info.Main.Version != "(devel)":
		out.Version = strings.TrimSuffix(info.Main.Version, "+dirty")
	default:
		if v := pseudoVersion(out.Revision, out.BuildTime); v != "" {
			out.Version = v
		}
	}
	return out
}

// pseudoVersion mirrors the Go toolchain format for untagged builds.
func pseudoVersion(revision, vcsTime string) string {
	if revision == "" || vcsTime == "" {
		return ""
	}
	parsed, err := time.Parse(time.RFC3339, vcsTime)
	if err != nil {
		return ""
	}
	if len(revision) > 12 {
		revision = revision[:12]
	}
	return "v0.0.0-" + parsed.UTC().Format("20060102150405") + "-" + revision
}
