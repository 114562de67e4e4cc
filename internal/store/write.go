package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/casbench/casbench/internal/runner"
)

// WriteRun records a completed run: the runs row, one bench_results row per
// benchmark, and one op_results row per timed operation, all in a single
// transaction.
//
// Uses ON CONFLICT(run_id) DO NOTHING for idempotency - if the run already
// exists, the whole write is a no-op and no child rows are touched.
func (s *Store) WriteRun(ctx context.Context, result *runner.SuiteResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	passed, failed, errored, skipped := result.Counts()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(run_id, suite, fingerprint, backend, samples, started_at, interrupted, passed, failed, errored, skipped)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO NOTHING
	`,
		result.RunID,
		result.Suite,
		result.Fingerprint,
		result.Backend,
		result.Samples,
		result.StartedAt.UTC().Format(time.RFC3339Nano),
		result.Interrupted,
		passed,
		failed,
		errored,
		skipped,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("write run: rows affected: %w", err)
	}
	if inserted == 0 {
		// Run already recorded; leave the existing rows untouched.
		return nil
	}

	for bi, bench := range result.Benchmarks {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO bench_results (run_id, position, name, error)
			VALUES (?, ?, ?, ?)
		`, result.RunID, bi, bench.Name, bench.Error); err != nil {
			return fmt.Errorf("write run: benchmark %q: %w", bench.Name, err)
		}

		for oi, op := range bench.Operations {
			durations, err := marshalDurations(op.Durations)
			if err != nil {
				return fmt.Errorf("write run: operation %q: %w", op.Name, err)
			}

			assertion, err := marshalAssertion(op.Assertion)
			if err != nil {
				return fmt.Errorf("write run: operation %q: %w", op.Name, err)
			}

			if _, err := tx.ExecContext(ctx, `
				INSERT INTO op_results
				(run_id, benchmark, position, name, expression, status, durations_ns, result, assertion, error)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`,
				result.RunID,
				bench.Name,
				oi,
				op.Name,
				op.Expression,
				string(op.Status),
				durations,
				op.Result,
				assertion,
				op.Error,
			); err != nil {
				return fmt.Errorf("write run: operation %q: %w", op.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run: commit: %w", err)
	}

	return nil
}

// marshalDurations serializes per-sample durations as a JSON array of
// nanosecond integers. An operation that never ran (skipped) stores "[]".
func marshalDurations(durations []time.Duration) (string, error) {
	ns := make([]int64, len(durations))
	for i, d := range durations {
		ns[i] = d.Nanoseconds()
	}
	data, err := json.Marshal(ns)
	if err != nil {
		return "", fmt.Errorf("marshal durations: %w", err)
	}
	return string(data), nil
}

// marshalAssertion serializes an assertion result, or nil for NULL when the
// operation declared no assertion.
func marshalAssertion(a *runner.AssertionResult) (any, error) {
	if a == nil {
		return nil, nil
	}
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal assertion: %w", err)
	}
	return string(data), nil
}
