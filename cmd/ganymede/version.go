package main

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Set by release build flags. A plain source build falls back to the
// VCS stamp the toolchain embeds.
var (
	Version   = "0.1.0"
	GitCommit = ""
	BuildDate = ""
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build and runtime information",
	Run: func(cmd *cobra.Command, args []string) {
		commit, date := buildMetadata()
		fmt.Printf("ganymede %s\n", Version)
		fmt.Printf("  commit:   %s\n", commit)
		fmt.Printf("  built:    %s\n", date)
		fmt.Printf("  go:       %s\n", runtime.Version())
		fmt.Printf("  platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

// buildMetadata prefers the build-flag values and falls back to the
// vcs.revision and vcs.time settings from the build info.
func buildMetadata() (commit, date string) {
	commit, date = GitCommit, BuildDate
	if commit != "" && date != "" {
		return commit, date
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if commit == "" {
					commit = s.Value
				}
			case "vcs.time":
				if date == "" {
					date = s.Value
				}
			}
		}
	}

	if commit == "" {
		commit = "unknown"
	}
	if date == "" {
		date = "unknown"
	}
	return commit, date
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
