package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/casbench/casbench/internal/cas"
)

// NewBackendsCommand creates the backends command.
func NewBackendsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "backends",
		Short:         "List registered CAS backends",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackends(rootOpts, cmd)
		},
	}

	return cmd
}

func runBackends(opts *RootOptions, cmd *cobra.Command) error {
	backends := cas.Backends()

	if opts.Format == "json" {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(CLIResponse{
			Status: "ok",
			Data:   backends,
		})
	}

	if len(backends) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no backends registered")
		return nil
	}
	for _, name := range backends {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	return nil
}
