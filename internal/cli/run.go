package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/casbench/casbench/internal/cas"
	"github.com/casbench/casbench/internal/runner"
	"github.com/casbench/casbench/internal/spec"
	"github.com/casbench/casbench/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Backend  string
	Samples  int
	Database string
	Filter   string

	// Timer and RunIDs allow overriding the timing source and run ID
	// generator (for testing). Nil selects the production defaults.
	Timer  runner.Timer
	RunIDs runner.RunIDGenerator
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <suite.yaml>",
		Short: "Run a benchmark suite against a backend",
		Long: `Run a benchmark suite against a registered CAS backend.

The suite document is loaded and validated, the setup namespace is bound to
the backend, and every benchmark's timed operations execute in document
order. Assertion failures and backend errors are reported per operation;
the exit code is 1 if any operation failed or errored.

Example:
  casbench run --backend symgo ./suites/differentiation.yaml
  casbench run --backend symgo --samples 10 --db ./runs.db ./suite.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuite(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Backend, "backend", "", "backend name (optional when exactly one is registered)")
	cmd.Flags().IntVar(&opts.Samples, "samples", 1, "times to evaluate each operation")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database for recording the run")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "glob pattern selecting benchmarks by name")

	return cmd
}

func runSuite(opts *RunOptions, suitePath string, cmd *cobra.Command) error {
	// Configure logging based on verbose flag
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if opts.Samples < 1 {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid --samples %d: must be at least 1", opts.Samples))
	}

	filter, err := compileFilter(opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("invalid --filter %q", opts.Filter), err)
	}

	// Load and validate the suite
	slog.Debug("loading suite", "path", suitePath)
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
	slog.Debug("suite loaded", "suite", suite.Name, "benchmarks", len(suite.Benchmarks))

	// Setup signal handling for graceful cancellation
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Resolve and open the backend
	backendName, err := resolveBackend(opts.Backend)
	if err != nil {
		return WrapExitError(ExitCommandError, "no backend", err)
	}
	backend, err := cas.Open(ctx, backendName)
	if err != nil {
		return WrapExitError(ExitCommandError, "open backend", err)
	}
	defer func() {
		if closeErr := backend.Close(); closeErr != nil {
			slog.Error("error closing backend", "error", closeErr)
		}
	}()
	slog.Debug("backend ready", "backend", backend.Name())

	r := &runner.Runner{
		Backend: backend,
		Samples: opts.Samples,
		Timer:   opts.Timer,
		RunIDs:  opts.RunIDs,
		Filter:  filter,
	}

	result, runErr := r.Run(ctx, suite)
	if runErr != nil && result == nil {
		// Suite-level bind failure: nothing ran.
		return WrapExitError(ExitFailure, "bind suite", runErr)
	}

	// Record before reporting so the run survives even if output fails.
	if opts.Database != "" {
		if err := recordRun(ctx, opts.Database, result); err != nil {
			return WrapExitError(ExitCommandError, "record run", err)
		}
		slog.Debug("run recorded", "db", opts.Database, "run_id", result.RunID)
	}

	if formatter.Format == "json" {
		if err := outputRunJSON(formatter, result); err != nil {
			return err
		}
	} else {
		outputRunText(formatter, result)
	}

	if runErr != nil {
		return WrapExitError(ExitFailure, "run interrupted", runErr)
	}
	if !result.Ok() {
		passed, failed, errored, _ := result.Counts()
		return NewExitError(ExitFailure, fmt.Sprintf("%d passed, %d failed, %d errored", passed, failed, errored))
	}
	return nil
}

// resolveBackend picks the backend name, defaulting to the sole registered
// backend when the flag is empty.
func resolveBackend(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	backends := cas.Backends()
	switch len(backends) {
	case 0:
		return "", errors.New("no backends registered")
	case 1:
		return backends[0], nil
	default:
		return "", fmt.Errorf("--backend required: multiple backends registered %v", backends)
	}
}

// compileFilter turns a glob pattern into a benchmark name predicate.
// An empty pattern means no filtering.
func compileFilter(pattern string) (func(string) bool, error) {
	if pattern == "" {
		return nil, nil
	}
	// Surface ErrBadPattern at flag time, not mid-run.
	if _, err := path.Match(pattern, "probe"); err != nil {
		return nil, err
	}
	return func(name string) bool {
		ok, _ := path.Match(pattern, name)
		return ok
	}, nil
}

func recordRun(ctx context.Context, dbPath string, result *runner.SuiteResult) error {
	st, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()
	// Recording uses a fresh context: a cancelled run should still persist
	// its partial results.
	if ctx.Err() != nil {
		ctx = context.Background()
	}
	return st.WriteRun(ctx, result)
}

func outputRunJSON(formatter *OutputFormatter, result *runner.SuiteResult) error {
	response := CLIResponse{Status: "ok", Data: result}
	if !result.Ok() {
		passed, failed, errored, _ := result.Counts()
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "RUN_FAILED",
			Message: fmt.Sprintf("%d passed, %d failed, %d errored", passed, failed, errored),
		}
	}
	encoder := json.NewEncoder(formatter.Writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}

func outputRunText(formatter *OutputFormatter, result *runner.SuiteResult) {
	w := formatter.Writer

	fmt.Fprintf(w, "suite %q  backend %s  samples %d  run %s\n",
		result.Suite, result.Backend, result.Samples, result.RunID)

	if len(result.Benchmarks) == 0 {
		fmt.Fprintln(w, "  no benchmarks matched")
	}

	for _, bench := range result.Benchmarks {
		if bench.Error != "" {
			fmt.Fprintf(w, "  %s %s: %s\n", errMark, bench.Name, bench.Error)
			continue
		}
		fmt.Fprintf(w, "  %s\n", bench.Name)
		for _, op := range bench.Operations {
			outputOperationText(w, op)
		}
	}

	passed, failed, errored, skipped := result.Counts()
	fmt.Fprintf(w, "%d passed, %d failed, %d errored, %d skipped\n", passed, failed, errored, skipped)
	if result.Interrupted {
		fmt.Fprintln(w, "interrupted: partial results")
	}
}

func outputOperationText(w io.Writer, op runner.OperationResult) {
	switch op.Status {
	case runner.StatusSkipped:
		fmt.Fprintf(w, "    %s %s  skipped\n", skipMark, op.Name)
		return
	case runner.StatusError:
		fmt.Fprintf(w, "    %s %s  %s\n", errMark, op.Name, op.Error)
		return
	}

	fmt.Fprintf(w, "    %s %s  %s", statusMark(op.Status), op.Name, formatDurations(op))
	if op.Result != "" {
		fmt.Fprintf(w, "  %s", op.Result)
	}
	fmt.Fprintln(w)

	if op.Assertion != nil && !op.Assertion.Pass {
		a := op.Assertion
		fmt.Fprintf(w, "      assert %s: got %v, want %v (rel %g, abs %g)\n",
			a.Expression, a.Got, a.Want, a.RelTol, a.AbsTol)
	}
}

// formatDurations renders the sample timings: the single duration for one
// sample, or the benchmath summary for repeated samples.
func formatDurations(op runner.OperationResult) string {
	if op.Summary != nil {
		return fmt.Sprintf("%v (min %v, max %v, n=%d)",
			op.Summary.Mean, op.Summary.Min, op.Summary.Max, len(op.Durations))
	}
	if len(op.Durations) == 1 {
		return op.Durations[0].String()
	}
	return fmt.Sprintf("%d samples", len(op.Durations))
}
