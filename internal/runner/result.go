package runner

import "time"

// Status is the outcome of a timed operation.
type Status string

const (
	// StatusPass means the operation evaluated and its assertion (if any)
	// held.
	StatusPass Status = "pass"

	// StatusFail means the operation evaluated but its assertion did not
	// hold.
	StatusFail Status = "fail"

	// StatusError means the backend or evaluator failed.
	StatusError Status = "error"

	// StatusSkipped means an earlier operation in the same benchmark
	// errored, or the run was cancelled, before this operation ran.
	StatusSkipped Status = "skipped"
)

// SuiteResult is the outcome of executing one suite.
type SuiteResult struct {
	// RunID uniquely identifies this run (UUIDv7 in production).
	RunID string `json:"run_id"`

	// Suite is the suite name from the document.
	Suite string `json:"suite"`

	// Fingerprint is the suite's canonical content hash, linking stored
	// results to the exact spec version that produced them.
	Fingerprint string `json:"fingerprint"`

	// Backend is the backend name the suite ran against.
	Backend string `json:"backend"`

	// Samples is the per-operation sample count used.
	Samples int `json:"samples"`

	// StartedAt is the wall-clock start of the run (UTC).
	StartedAt time.Time `json:"started_at"`

	// Benchmarks holds per-benchmark results in suite order. Filtered-out
	// benchmarks do not appear.
	Benchmarks []BenchmarkResult `json:"benchmarks"`

	// Interrupted is set when context cancellation cut the run short.
	Interrupted bool `json:"interrupted,omitempty"`
}

// Counts tallies operation outcomes across the whole run.
func (r *SuiteResult) Counts() (passed, failed, errored, skipped int) {
	for _, b := range r.Benchmarks {
		for _, op := range b.Operations {
			switch op.Status {
			case StatusPass:
				passed++
			case StatusFail:
				failed++
			case StatusError:
				errored++
			case StatusSkipped:
				skipped++
			}
		}
	}
	return
}

// Ok reports whether every operation passed (skipped operations count
// against the run only when caused by an error, which implies an errored
// operation exists).
func (r *SuiteResult) Ok() bool {
	_, failed, errored, _ := r.Counts()
	return failed == 0 && errored == 0 && !r.Interrupted
}

// BenchmarkResult is the outcome of one benchmark.
type BenchmarkResult struct {
	Name string `json:"name"`

	// Error is set when input binding failed; no operations ran.
	Error string `json:"error,omitempty"`

	// Operations holds per-operation results in document order.
	Operations []OperationResult `json:"operations,omitempty"`
}

// OperationResult is the outcome of one timed operation.
type OperationResult struct {
	Name string `json:"name"`

	// Expression is the operation's source text.
	Expression string `json:"expression"`

	Status Status `json:"status"`

	// Durations holds one wall-clock duration per executed sample.
	Durations []time.Duration `json:"durations,omitempty"`

	// Result is the display rendering of the final sample's value.
	Result string `json:"result,omitempty"`

	// Assertion is set when the operation declared an assert_close and it
	// was evaluated (held or not).
	Assertion *AssertionResult `json:"assertion,omitempty"`

	// Summary aggregates sample durations; only present when more than one
	// sample ran.
	Summary *Summary `json:"summary,omitempty"`

	// Error describes why the operation errored.
	Error string `json:"error,omitempty"`
}

// AssertionResult records an evaluated approximate-equality check.
type AssertionResult struct {
	// Expression is the assert_close source text.
	Expression string `json:"expression"`

	// Want is the expected literal from the assertion.
	Want float64 `json:"want"`

	// Got is the evaluated value of the assertion's left term.
	Got float64 `json:"got"`

	// RelTol and AbsTol are the tolerances the check used.
	RelTol float64 `json:"rel_tol"`
	AbsTol float64 `json:"abs_tol"`

	// Pass reports whether Got was close to Want.
	Pass bool `json:"pass"`
}
