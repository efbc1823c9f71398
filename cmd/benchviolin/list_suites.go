// cmd/benchviolin/list_suites.go
package benchviolin

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// suitesCmd implements 'list suites'.
var suitesCmd = &cobra.Command{
	Use:   "suites",
	Short: "List the registered benchmark suites",
	Long:  `The 'suites' subcommand prints the name of every registered suite in execution order. With --filter only the matching suites are shown.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, _ := cmd.Flags().GetString("filter")
		if filter == "" {
			filter = viper.GetString("run.filter")
		}
		names, err := registry.Match(filter)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Benchmark suites:")
		for _, n := range names {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", n)
		}
		return nil
	},
}

func init() {
	listCmd.AddCommand(suitesCmd)
	suitesCmd.Flags().String("filter", "", "only list suites matching this pattern")
}
