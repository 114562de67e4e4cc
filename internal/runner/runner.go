package runner

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/casbench/casbench/internal/cas"
	"github.com/casbench/casbench/internal/env"
	"github.com/casbench/casbench/internal/expr"
	"github.com/casbench/casbench/internal/spec"
)

// Runner executes suites against a backend. The zero value is not usable;
// set Backend and call Run. Optional fields default sensibly: one sample,
// wall-clock timing, UUIDv7 run IDs, no filter.
type Runner struct {
	// Backend executes the suite's symbolic operations.
	Backend cas.Backend

	// Samples is how many times each operation is evaluated. Every
	// sample's duration is recorded; the last sample's value feeds the
	// assertion. Defaults to 1.
	Samples int

	// Timer measures sample durations. Defaults to a WallTimer anchored at
	// the start of the run.
	Timer Timer

	// RunIDs generates the run identifier. Defaults to UUIDv7Generator.
	RunIDs RunIDGenerator

	// Filter selects benchmarks by name; nil runs all of them.
	Filter func(name string) bool
}

// Run executes the suite. The returned SuiteResult is always non-nil once
// the suite environment binds; on context cancellation it carries the
// partial results alongside the context's error.
//
// Non-cancellation failures inside a benchmark do not produce a Run error:
// they are recorded per operation, and later benchmarks still execute.
func (r *Runner) Run(ctx context.Context, suite *spec.Suite) (*SuiteResult, error) {
	samples := r.Samples
	if samples < 1 {
		samples = 1
	}
	timer := r.Timer
	if timer == nil {
		timer = NewWallTimer()
	}
	runIDs := r.RunIDs
	if runIDs == nil {
		runIDs = UUIDv7Generator{}
	}

	fingerprint, err := spec.Fingerprint(suite)
	if err != nil {
		return nil, err
	}

	result := &SuiteResult{
		RunID:       runIDs.Generate(),
		Suite:       suite.Name,
		Fingerprint: fingerprint,
		Backend:     r.Backend.Name(),
		Samples:     samples,
		StartedAt:   time.Now().UTC(),
	}

	slog.Debug("binding suite setup",
		"suite", suite.Name,
		"backend", r.Backend.Name(),
		"variables", len(suite.Setup.Variables),
		"functions", len(suite.Setup.Functions))

	suiteEnv, err := env.BindSuite(ctx, r.Backend, suite.Setup)
	if err != nil {
		return nil, &RuntimeError{
			Code:    ErrCodeBindFailed,
			Message: err.Error(),
			Err:     err,
		}
	}

	for bi := range suite.Benchmarks {
		b := &suite.Benchmarks[bi]
		if r.Filter != nil && !r.Filter(b.Name) {
			continue
		}

		if ctx.Err() != nil {
			result.Interrupted = true
			return result, ctx.Err()
		}

		result.Benchmarks = append(result.Benchmarks, r.runBenchmark(ctx, suiteEnv, b, samples, timer))

		if ctx.Err() != nil {
			result.Interrupted = true
			return result, ctx.Err()
		}
	}

	return result, nil
}

// runBenchmark binds a benchmark's inputs and executes its operations in
// order. An errored operation skips the benchmark's remaining operations.
func (r *Runner) runBenchmark(ctx context.Context, suiteEnv *env.Environment, b *spec.Benchmark, samples int, timer Timer) BenchmarkResult {
	br := BenchmarkResult{Name: b.Name}

	slog.Debug("binding benchmark inputs", "benchmark", b.Name, "inputs", len(b.Inputs))

	benchEnv, err := env.BindInputs(ctx, suiteEnv, b)
	if err != nil {
		rtErr := &RuntimeError{
			Code:      ErrCodeBindFailed,
			Message:   err.Error(),
			Benchmark: b.Name,
			Err:       err,
		}
		br.Error = rtErr.Error()
		return br
	}

	aborted := false
	for oi := range b.Time {
		op := &b.Time[oi]

		if aborted || ctx.Err() != nil {
			br.Operations = append(br.Operations, OperationResult{
				Name:       op.Name,
				Expression: op.Operation,
				Status:     StatusSkipped,
			})
			continue
		}

		opResult := r.runOperation(ctx, benchEnv, b.Name, op, samples, timer)
		if opResult.Status == StatusError {
			aborted = true
		}
		br.Operations = append(br.Operations, opResult)
	}

	return br
}

// runOperation evaluates one timed operation: samples evaluations under
// timing, then the assertion (untimed) against the final sample's value.
func (r *Runner) runOperation(ctx context.Context, benchEnv *env.Environment, benchName string, op *spec.TimedOperation, samples int, timer Timer) OperationResult {
	or := OperationResult{
		Name:       op.Name,
		Expression: op.Operation,
		Status:     StatusPass,
	}

	var last cas.Value
	for i := 0; i < samples; i++ {
		if ctx.Err() != nil {
			or.Status = StatusSkipped
			return or
		}

		start := timer.Now()
		v, err := expr.Eval(ctx, op.OpAST(), benchEnv)
		elapsed := timer.Now() - start

		if err != nil {
			or.Status = StatusError
			or.Error = runtimeError(err, benchName, op.Name).Error()
			slog.Debug("operation errored", "benchmark", benchName, "operation", op.Name, "error", err)
			return or
		}

		or.Durations = append(or.Durations, elapsed)
		last = v
	}

	or.Result = last.Display()
	or.Summary = summarize(or.Durations)

	if op.AssertAST() == nil {
		return or
	}

	// Only the same operation's assert_close sees result.
	scope := benchEnv.WithValue(spec.ResultName, last)
	assertion, err := checkAssertion(ctx, op, scope)
	if err != nil {
		or.Status = StatusError
		or.Error = runtimeError(err, benchName, op.Name).Error()
		return or
	}

	or.Assertion = assertion
	if !assertion.Pass {
		or.Status = StatusFail
		or.Error = (&AssertionError{
			Expression: assertion.Expression,
			Want:       assertion.Want,
			Got:        assertion.Got,
			RelTol:     assertion.RelTol,
			AbsTol:     assertion.AbsTol,
		}).Error()
	}

	return or
}

// runtimeError normalizes an execution failure into a RuntimeError with
// benchmark and operation context. Failures that already are RuntimeErrors
// (a non-numeric assertion, for instance) keep their code and message;
// backend operation failures classify as backend errors, everything else
// as evaluator errors.
func runtimeError(err error, benchmark, operation string) *RuntimeError {
	var rtErr *RuntimeError
	if errors.As(err, &rtErr) {
		rtErr.Benchmark = benchmark
		rtErr.Operation = operation
		return rtErr
	}

	code := ErrCodeEval
	var opErr *cas.OpError
	if errors.As(err, &opErr) {
		code = ErrCodeBackend
	}
	return &RuntimeError{
		Code:      code,
		Message:   err.Error(),
		Benchmark: benchmark,
		Operation: operation,
		Err:       err,
	}
}
