// cmd/benchviolin/run.go
package benchviolin

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mwiater/benchviolin/internal/bench"
	"github.com/mwiater/benchviolin/internal/config"
	"github.com/mwiater/benchviolin/internal/hostinfo"
	"github.com/mwiater/benchviolin/internal/report"
	"github.com/mwiater/benchviolin/internal/suite"
)

// runCmd implements 'run', which executes the registered suites.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the registered benchmark suites",
	Long: `The 'run' command executes every registered suite (or those matching --filter)
one after another, prints a summary table per session and, with --renderto,
writes all sessions as plots into one HTML file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}
		verbose, _ := cmd.Flags().GetBool("verbose")
		return runSuites(cmd, cfg, verbose)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("renderto", "", "write an HTML report of all sessions to this file")
	runCmd.Flags().String("plot", report.PlotViolin, "plot type: violin or box")
	runCmd.Flags().String("filter", "", "only run suites matching this pattern (path.Match syntax)")
	runCmd.Flags().String("json", "", "export sessions and raw samples to this JSON file")
	runCmd.Flags().Bool("show-epochs", false, "append the epoch count to plot labels")
	runCmd.Flags().BoolP("verbose", "v", false, "print the effective configuration")

	viper.BindPFlag("report.output", runCmd.Flags().Lookup("renderto"))
	viper.BindPFlag("report.plot_type", runCmd.Flags().Lookup("plot"))
	viper.BindPFlag("report.json", runCmd.Flags().Lookup("json"))
	viper.BindPFlag("report.show_epochs", runCmd.Flags().Lookup("show-epochs"))
	viper.BindPFlag("run.filter", runCmd.Flags().Lookup("filter"))
}

func runSuites(cmd *cobra.Command, cfg config.Config, verbose bool) error {
	out := cmd.OutOrStdout()
	logger := cfg.Log.NewLogger(cmd.ErrOrStderr())
	if verbose {
		pp.Fprintln(out, cfg)
	}

	host := hostinfo.Describe()
	env := &suite.Env{Defaults: cfg.Session, Logger: logger}

	var renderer *report.HTMLRenderer
	if cfg.Output != "" {
		opts := cfg.Report
		opts.Host = host.String()
		renderer = report.NewHTMLRenderer(opts, logger)
		if err := renderer.Open(cfg.Output); err != nil {
			return err
		}
		env.Sink = renderer
	}

	fmt.Fprintln(out, host.String())
	results, runErr := registry.RunAll(cmd.Context(), env, cfg.Filter)

	errs := []error{runErr}
	sessions := env.Sessions()
	for _, s := range sessions {
		if s.Len() == 0 {
			continue
		}
		fmt.Fprintln(out)
		if err := report.Console(out, s); err != nil {
			errs = append(errs, fmt.Errorf("console summary: %w", err))
			break
		}
	}
	printResults(out, results)

	if renderer != nil {
		if err := renderer.Close(); err != nil {
			errs = append(errs, err)
		} else {
			fmt.Fprintf(out, "Report written to %s\n", renderer.Path())
		}
	}
	if cfg.JSON != "" {
		if err := writeExport(cfg.JSON, host, sessions); err != nil {
			errs = append(errs, err)
		} else {
			fmt.Fprintf(out, "Results written to %s\n", cfg.JSON)
		}
	}
	return errors.Join(errs...)
}

func printResults(w io.Writer, results []suite.Result) {
	if len(results) == 0 {
		return
	}
	fmt.Fprintln(w)
	for _, r := range results {
		status := "ok"
		if r.Err != nil {
			status = "FAILED"
		}
		fmt.Fprintf(w, "  %-6s %-30s %s\n", status, r.Name, r.Duration.Round(time.Millisecond))
	}
}

func writeExport(path string, host hostinfo.Host, sessions []*bench.Session) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w to %s: %w", report.ErrOutput, path, err)
	}
	if err := report.WriteJSON(f, report.NewExport(host, sessions)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
