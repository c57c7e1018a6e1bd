package commands

import (
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/aki/chatsweep/internal/cli/ui"
)

// Version information, set at build time with -ldflags -X
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

type versionInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  "Display detailed version information about chatsweep",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := currentVersion()

		if ui.GlobalFormatter.IsJSON() {
			return ui.GlobalFormatter.Output(info)
		}

		ui.OutputLine("chatsweep version %s", info.Version)
		ui.OutputLine("  Git commit: %s", info.GitCommit)
		ui.OutputLine("  Build date: %s", info.BuildDate)
		ui.OutputLine("  Go version: %s", info.GoVersion)
		ui.OutputLine("  OS/Arch:    %s/%s", info.OS, info.Arch)
		return nil
	},
}

// currentVersion falls back to module build info for `go install` builds
// that carry no ldflags
func currentVersion() versionInfo {
	info := versionInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitCommit == "unknown" {
				info.GitCommit = s.Value
			}
		case "vcs.time":
			if info.BuildDate == "unknown" {
				info.BuildDate = s.Value
			}
		}
	}
	return info
}
