package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/casbench/casbench/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [suite-name]",
		Short: "Show recorded runs, newest first",
		Long: `Show recorded benchmark runs from a results database, newest first.

With a suite name, only runs of that suite are listed.

Example:
  casbench history --db ./runs.db
  casbench history --db ./runs.db differentiation --limit 5`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			suite := ""
			if len(args) == 1 {
				suite = args[0]
			}
			return runHistory(opts, suite, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 10, "maximum runs to show (0 for all)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(opts *HistoryOptions, suite string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	runs, err := st.ReadRuns(cmd.Context(), suite, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "read runs", err)
	}

	if formatter.Format == "json" {
		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(CLIResponse{Status: "ok", Data: runs})
	}

	if len(runs) == 0 {
		fmt.Fprintln(formatter.Writer, "no recorded runs")
		return nil
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSUITE\tBACKEND\tSTARTED\tPASS\tFAIL\tERROR\tSKIP")
	for _, run := range runs {
		started := run.StartedAt.Format("2006-01-02 15:04:05")
		if run.Interrupted {
			started += " (interrupted)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
			run.RunID, run.Suite, run.Backend, started,
			run.Passed, run.Failed, run.Errored, run.Skipped)
	}
	return tw.Flush()
}
