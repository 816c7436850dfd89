package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Build metadata, overridable with -ldflags at release time.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print version information for resumescore",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("resumescore version %s\n", Version)
		fmt.Printf("Git commit: %s\n", GitCommit)
		fmt.Printf("Build date: %s\n", BuildDate)
	},
}
