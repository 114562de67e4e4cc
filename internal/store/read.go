package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/casbench/casbench/internal/runner"
)

// RunSummary is one row of run history, without per-operation detail.
type RunSummary struct {
	RunID       string    `json:"run_id"`
	Suite       string    `json:"suite"`
	Fingerprint string    `json:"fingerprint"`
	Backend     string    `json:"backend"`
	Samples     int       `json:"samples"`
	StartedAt   time.Time `json:"started_at"`
	Interrupted bool      `json:"interrupted,omitempty"`
	Passed      int       `json:"passed"`
	Failed      int       `json:"failed"`
	Errored     int       `json:"errored"`
	Skipped     int       `json:"skipped"`
}

// ReadRuns returns run summaries newest-first. When suite is non-empty only
// runs of that suite are returned. limit <= 0 means no limit.
//
// UUIDv7 run IDs sort by creation time, so ORDER BY run_id DESC is both
// newest-first and deterministic.
func (s *Store) ReadRuns(ctx context.Context, suite string, limit int) ([]RunSummary, error) {
	query := `
		SELECT run_id, suite, fingerprint, backend, samples, started_at, interrupted, passed, failed, errored, skipped
		FROM runs
	`
	var args []any
	if suite != "" {
		query += " WHERE suite = ?"
		args = append(args, suite)
	}
	query += " ORDER BY run_id COLLATE BINARY DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		summary, err := scanRunSummary(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	// Return empty slice instead of nil
	if runs == nil {
		runs = []RunSummary{}
	}

	return runs, nil
}

// ReadRun reassembles the full result of a single run, including every
// benchmark and operation row.
// Returns sql.ErrNoRows if the run does not exist.
func (s *Store) ReadRun(ctx context.Context, runID string) (*runner.SuiteResult, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, suite, fingerprint, backend, samples, started_at, interrupted
		FROM runs
		WHERE run_id = ?
	`, runID)

	var result runner.SuiteResult
	var startedAt string
	if err := row.Scan(
		&result.RunID,
		&result.Suite,
		&result.Fingerprint,
		&result.Backend,
		&result.Samples,
		&startedAt,
		&result.Interrupted,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}

	started, err := time.Parse(time.RFC3339Nano, startedAt)
	if err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	result.StartedAt = started

	benchmarks, err := s.readBenchmarks(ctx, runID)
	if err != nil {
		return nil, err
	}
	result.Benchmarks = benchmarks

	return &result, nil
}

// readBenchmarks returns a run's benchmark results in document order, with
// operations attached.
func (s *Store) readBenchmarks(ctx context.Context, runID string) ([]runner.BenchmarkResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, error
		FROM bench_results
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query benchmarks: %w", err)
	}
	defer rows.Close()

	var benchmarks []runner.BenchmarkResult
	for rows.Next() {
		var bench runner.BenchmarkResult
		if err := rows.Scan(&bench.Name, &bench.Error); err != nil {
			return nil, fmt.Errorf("scan benchmark: %w", err)
		}
		benchmarks = append(benchmarks, bench)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate benchmarks: %w", err)
	}

	for i := range benchmarks {
		ops, err := s.readOperations(ctx, runID, benchmarks[i].Name)
		if err != nil {
			return nil, err
		}
		benchmarks[i].Operations = ops
	}

	if benchmarks == nil {
		benchmarks = []runner.BenchmarkResult{}
	}

	return benchmarks, nil
}

// readOperations returns one benchmark's operation results in document order.
func (s *Store) readOperations(ctx context.Context, runID, benchmark string) ([]runner.OperationResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, expression, status, durations_ns, result, assertion, error
		FROM op_results
		WHERE run_id = ? AND benchmark = ?
		ORDER BY position ASC
	`, runID, benchmark)
	if err != nil {
		return nil, fmt.Errorf("query operations: %w", err)
	}
	defer rows.Close()

	var ops []runner.OperationResult
	for rows.Next() {
		var op runner.OperationResult
		var status, durations string
		var assertion sql.NullString
		if err := rows.Scan(
			&op.Name,
			&op.Expression,
			&status,
			&durations,
			&op.Result,
			&assertion,
			&op.Error,
		); err != nil {
			return nil, fmt.Errorf("scan operation: %w", err)
		}
		op.Status = runner.Status(status)

		op.Durations, err = unmarshalDurations(durations)
		if err != nil {
			return nil, fmt.Errorf("operation %q: %w", op.Name, err)
		}

		if assertion.Valid {
			var a runner.AssertionResult
			if err := json.Unmarshal([]byte(assertion.String), &a); err != nil {
				return nil, fmt.Errorf("operation %q: unmarshal assertion: %w", op.Name, err)
			}
			op.Assertion = &a
		}

		ops = append(ops, op)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate operations: %w", err)
	}

	return ops, nil
}

func unmarshalDurations(data string) ([]time.Duration, error) {
	var ns []int64
	if err := json.Unmarshal([]byte(data), &ns); err != nil {
		return nil, fmt.Errorf("unmarshal durations: %w", err)
	}
	if len(ns) == 0 {
		return nil, nil
	}
	durations := make([]time.Duration, len(ns))
	for i, n := range ns {
		durations[i] = time.Duration(n)
	}
	return durations, nil
}

func scanRunSummary(rows *sql.Rows) (RunSummary, error) {
	var summary RunSummary
	var startedAt string
	if err := rows.Scan(
		&summary.RunID,
		&summary.Suite,
		&summary.Fingerprint,
		&summary.Backend,
		&summary.Samples,
		&startedAt,
		&summary.Interrupted,
		&summary.Passed,
		&summary.Failed,
		&summary.Errored,
		&summary.Skipped,
	); err != nil {
		return RunSummary{}, fmt.Errorf("scan run: %w", err)
	}

	started, err := time.Parse(time.RFC3339Nano, startedAt)
	if err != nil {
		return RunSummary{}, fmt.Errorf("parse started_at: %w", err)
	}
	summary.StartedAt = started

	return summary, nil
}
