package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/mod/semver"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "trivia", describeVersion(version))
	},
}

// describeVersion annotates pre-release and development builds.
func describeVersion(v string) string {
	if !semver.IsValid(v) {
		return v + " (development build)"
	}
	if pre := semver.Prerelease(v); pre != "" {
		return v + " (pre-release " + pre[1:] + ")"
	}
	if semver.Major(v) == "v0" {
		return v + " (unstable)"
	}
	return v
}
