// cmd/benchviolin/version.go
package benchviolin

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X ...benchviolin.Version=...".
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Long:  `The 'version' command prints the benchviolin version.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "benchviolin", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
