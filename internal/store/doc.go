// Package store provides SQLite-backed durable storage for benchmark runs.
//
// Each run is recorded as one row in runs plus one row per benchmark in
// bench_results and one row per timed operation in op_results. Writes are
// idempotent on run_id: re-recording the same run is a no-op, so a retried
// `casbench run --db` never duplicates history.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Run IDs are UUIDv7, so lexicographic order on run_id is creation order.
// All list queries rely on this for deterministic, newest-first results.
package store
