package main

import (
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Set by -ldflags at release time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type versionInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Built   string `json:"built"`
	Go      string `json:"go"`
}

func currentVersion() versionInfo {
	v := versionInfo{Version: version, Commit: commit, Built: date, Go: runtime.Version()}
	// go install builds carry the module version but no ldflags.
	if bi, ok := debug.ReadBuildInfo(); ok && v.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		v.Version = bi.Main.Version
	}
	return v
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		v := currentVersion()
		if jsonOut {
			return printJSON(v)
		}
		printInfo("ucfbctl %s\n", v.Version)
		printInfo("  commit: %s\n", v.Commit)
		printInfo("  built:  %s\n", v.Built)
		printInfo("  go:     %s\n", v.Go)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
