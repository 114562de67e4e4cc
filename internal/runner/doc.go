// Package runner executes a loaded benchmark suite against a CAS backend.
//
// Execution order is strictly suite order: the setup binds once, then for
// each benchmark its inputs bind (untimed) and its operations evaluate
// under timing, in document order. There is no feedback loop: results flow
// forward into assertion checks and out to the caller, never back into the
// suite.
//
// Failure handling distinguishes three outcomes per operation:
//
//   - pass: the operation evaluated and its assertion (if any) held
//   - fail: the operation evaluated but its assertion did not hold
//   - error: the backend or evaluator failed; the benchmark's remaining
//     operations are skipped, later benchmarks still run
//
// Context cancellation aborts the whole run, returning the partial result
// alongside the context's error.
package runner
