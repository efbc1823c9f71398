// cmd/benchviolin/view.go
package benchviolin

import (
	"github.com/spf13/cobra"

	"github.com/mwiater/benchviolin/internal/cli"
)

var startViewer = cli.StartViewer

// viewCmd represents the 'view' command.
var viewCmd = &cobra.Command{
	Use:   "view <results.json>",
	Short: "Browse an exported results file",
	Long:  `The 'view' command opens an interactive viewer over a file written by 'run --json': sessions, their cases and every per-epoch sample.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return startViewer(args[0])
	},
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
