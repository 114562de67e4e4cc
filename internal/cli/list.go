package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/casbench/casbench/internal/spec"
)

// SuiteListing is the JSON payload of the list command.
type SuiteListing struct {
	File       string             `json:"file"`
	Suite      string             `json:"suite"`
	Benchmarks []BenchmarkListing `json:"benchmarks"`
}

// BenchmarkListing describes one benchmark's operations.
type BenchmarkListing struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Inputs      []string           `json:"inputs,omitempty"`
	Operations  []OperationListing `json:"operations"`
}

// OperationListing describes one timed operation.
type OperationListing struct {
	Name      string `json:"name"`
	Operation string `json:"operation"`
	Asserted  bool   `json:"asserted"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "list <suite.yaml>",
		Short:         "List a suite's benchmarks and operations",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runList(opts *RootOptions, suitePath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	data, err := os.ReadFile(suitePath)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("cannot read %s", suitePath), err)
	}
	suite, err := spec.Parse(data, suitePath)
	if err != nil {
		var verrs spec.ValidationErrors
		if errors.As(err, &verrs) {
			return reportInvalidSuite(formatter, suitePath, verrs)
		}
		return WrapExitError(ExitCommandError, fmt.Sprintf("load %s", suitePath), err)
	}

	listing := buildListing(suitePath, suite)

	if formatter.Format == "json" {
		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(CLIResponse{Status: "ok", Data: listing})
	}

	outputListText(formatter, suite, listing)
	return nil
}

func buildListing(path string, suite *spec.Suite) SuiteListing {
	listing := SuiteListing{File: path, Suite: suite.Name}
	for _, bench := range suite.Benchmarks {
		bl := BenchmarkListing{Name: bench.Name, Description: bench.Description}
		for _, input := range bench.Inputs {
			bl.Inputs = append(bl.Inputs, input.Name)
		}
		for _, op := range bench.Time {
			bl.Operations = append(bl.Operations, OperationListing{
				Name:      op.Name,
				Operation: op.Operation,
				Asserted:  op.AssertClose != "",
			})
		}
		listing.Benchmarks = append(listing.Benchmarks, bl)
	}
	return listing
}

func outputListText(formatter *OutputFormatter, suite *spec.Suite, listing SuiteListing) {
	fmt.Fprintf(formatter.Writer, "suite %q\n", suite.Name)
	fmt.Fprintf(formatter.Writer, "variables: %v\n", suite.Setup.Variables)
	fmt.Fprintf(formatter.Writer, "functions: %v\n", suite.Setup.Functions)
	fmt.Fprintln(formatter.Writer)

	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BENCHMARK\tOPERATION\tEXPRESSION\tASSERTED")
	for _, bench := range listing.Benchmarks {
		for _, op := range bench.Operations {
			asserted := ""
			if op.Asserted {
				asserted = "yes"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", bench.Name, op.Name, op.Operation, asserted)
		}
	}
	tw.Flush()
}
