package runner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casbench/casbench/internal/cas"
	"github.com/casbench/casbench/internal/spec"
	"github.com/casbench/casbench/internal/testutil"
)

const runnerSuite = `
schema_version: 1
name: differentiation
setup:
  variables: [x]
  functions: [sin, diff, subs, evalf]
benchmarks:
  - name: sin_diff
    description: "Differentiate sin(x)"
    inputs:
      expr: sin(x)
    time:
      - name: diff_1
        operation: diff(expr, x)
        assert_close: evalf(subs(result, x, 1.0)) == 0.5403023058681398
  - name: plain
    description: "No assertion"
    time:
      - name: eval_x
        operation: evalf(subs(sin(x), x, 1.0))
`

func loadRunnerSuite(t *testing.T, doc string) *spec.Suite {
	t.Helper()
	suite, err := spec.Parse([]byte(doc), "t.yaml")
	require.NoError(t, err)
	return suite
}

// mathBackend scripts the sin/diff/subs/evalf operations the fixtures use.
func mathBackend() *testutil.FakeBackend {
	backend := testutil.NewFakeBackend("fake").
		HandleExpr("sin", "sin(x)").
		HandleExpr("diff", "cos(x)").
		HandleExpr("subs", "cos(1.0)").
		HandleNumber("evalf", 0.5403023058681398)
	return backend
}

func newRunner(backend cas.Backend) *Runner {
	return &Runner{
		Backend: backend,
		Timer:   testutil.NewStepTimer(2 * time.Millisecond),
		RunIDs:  testutil.NewFixedRunIDs("run-0001", "run-0002"),
	}
}

func TestRun_AllPass(t *testing.T) {
	suite := loadRunnerSuite(t, runnerSuite)
	backend := mathBackend()
	r := newRunner(backend)

	result, err := r.Run(context.Background(), suite)
	require.NoError(t, err)

	assert.Equal(t, "run-0001", result.RunID)
	assert.Equal(t, "differentiation", result.Suite)
	assert.Equal(t, "fake", result.Backend)
	assert.Equal(t, 1, result.Samples)
	assert.Len(t, result.Fingerprint, 64)
	assert.False(t, result.Interrupted)
	assert.True(t, result.Ok())

	passed, failed, errored, skipped := result.Counts()
	assert.Equal(t, 2, passed)
	assert.Zero(t, failed)
	assert.Zero(t, errored)
	assert.Zero(t, skipped)

	require.Len(t, result.Benchmarks, 2)
	op := result.Benchmarks[0].Operations[0]
	assert.Equal(t, "diff_1", op.Name)
	assert.Equal(t, StatusPass, op.Status)
	assert.Equal(t, "cos(x)", op.Result)
	// StepTimer: one step between the two readings of a sample.
	assert.Equal(t, []time.Duration{2 * time.Millisecond}, op.Durations)
	require.NotNil(t, op.Assertion)
	assert.True(t, op.Assertion.Pass)
	assert.Equal(t, 0.5403023058681398, op.Assertion.Got)
	assert.Equal(t, DefaultRelTol, op.Assertion.RelTol)
	assert.Nil(t, op.Summary, "single sample has no summary")
}

func TestRun_InputBindingIsNotTimed(t *testing.T) {
	suite := loadRunnerSuite(t, runnerSuite)
	backend := mathBackend()
	r := newRunner(backend)

	result, err := r.Run(context.Background(), suite)
	require.NoError(t, err)

	// sin(x) binds as an input before diff_1 is timed; the timed section
	// measured exactly one timer step regardless.
	assert.Equal(t, []time.Duration{2 * time.Millisecond}, result.Benchmarks[0].Operations[0].Durations)
	assert.Equal(t, "sin", backend.CallOps()[0])
}

func TestRun_AssertionFailure(t *testing.T) {
	suite := loadRunnerSuite(t, runnerSuite)
	backend := mathBackend().HandleNumber("evalf", 99.0)
	r := newRunner(backend)

	result, err := r.Run(context.Background(), suite)
	require.NoError(t, err, "assertion failures are results, not run errors")

	op := result.Benchmarks[0].Operations[0]
	assert.Equal(t, StatusFail, op.Status)
	require.NotNil(t, op.Assertion)
	assert.False(t, op.Assertion.Pass)
	assert.Equal(t, 99.0, op.Assertion.Got)
	assert.Contains(t, op.Error, "assertion failed")

	// The failure does not stop the second benchmark.
	require.Len(t, result.Benchmarks, 2)
	assert.Equal(t, StatusPass, result.Benchmarks[1].Operations[0].Status)
	assert.False(t, result.Ok())
}

func TestRun_BackendErrorSkipsRestOfBenchmark(t *testing.T) {
	doc := `
schema_version: 1
name: s
setup:
  variables: [x]
  functions: [boom, evalf]
benchmarks:
  - name: b1
    description: d
    time:
      - name: op1
        operation: boom(x)
      - name: op2
        operation: evalf(x)
  - name: b2
    description: d
    time:
      - name: op3
        operation: evalf(x)
`
	suite := loadRunnerSuite(t, doc)
	backend := testutil.NewFakeBackend("fake").
		HandleNumber("evalf", 1.0).
		Handle("boom", func(args []cas.Value) (cas.Value, error) {
			return nil, cas.NewOpError("fake", "boom", cas.ErrArity)
		})
	r := newRunner(backend)

	result, err := r.Run(context.Background(), suite)
	require.NoError(t, err)

	b1 := result.Benchmarks[0]
	require.Len(t, b1.Operations, 2)
	assert.Equal(t, StatusError, b1.Operations[0].Status)
	assert.Contains(t, b1.Operations[0].Error, "BACKEND_ERROR")
	assert.Equal(t, StatusSkipped, b1.Operations[1].Status)

	// The next benchmark still runs.
	assert.Equal(t, StatusPass, result.Benchmarks[1].Operations[0].Status)

	passed, failed, errored, skipped := result.Counts()
	assert.Equal(t, 1, passed)
	assert.Zero(t, failed)
	assert.Equal(t, 1, errored)
	assert.Equal(t, 1, skipped)
	assert.False(t, result.Ok())
}

func TestRun_NonNumericAssertionErrors(t *testing.T) {
	doc := `
schema_version: 1
name: s
setup:
  variables: [x]
  functions: [diff]
benchmarks:
  - name: b
    description: d
    time:
      - name: op
        operation: diff(x, x)
        assert_close: result == 1.0
`
	suite := loadRunnerSuite(t, doc)
	backend := testutil.NewFakeBackend("fake").HandleExpr("diff", "1")
	r := newRunner(backend)

	result, err := r.Run(context.Background(), suite)
	require.NoError(t, err)

	op := result.Benchmarks[0].Operations[0]
	assert.Equal(t, StatusError, op.Status)
	assert.Contains(t, op.Error, "ASSERT_NOT_NUMERIC")
	assert.Nil(t, op.Assertion)
}

func TestRun_MultiSample(t *testing.T) {
	doc := `
schema_version: 1
name: s
setup:
  variables: [x]
  functions: [evalf]
benchmarks:
  - name: b
    description: d
    time:
      - name: op
        operation: evalf(x)
        assert_close: result == 3.0
`
	suite := loadRunnerSuite(t, doc)

	// The backend returns 1, 2, 3 across samples; the last sample's value
	// feeds the assertion.
	n := 0.0
	backend := testutil.NewFakeBackend("fake").
		Handle("evalf", func(args []cas.Value) (cas.Value, error) {
			n++
			return cas.Number(n), nil
		})

	r := newRunner(backend)
	r.Samples = 3

	result, err := r.Run(context.Background(), suite)
	require.NoError(t, err)

	op := result.Benchmarks[0].Operations[0]
	assert.Equal(t, StatusPass, op.Status)
	assert.Equal(t, "3", op.Result)
	assert.Len(t, op.Durations, 3)
	assert.Equal(t, []time.Duration{
		2 * time.Millisecond,
		2 * time.Millisecond,
		2 * time.Millisecond,
	}, op.Durations)

	require.NotNil(t, op.Summary)
	assert.Equal(t, 2*time.Millisecond, op.Summary.Mean)
	assert.Equal(t, 2*time.Millisecond, op.Summary.Min)
	assert.Equal(t, 2*time.Millisecond, op.Summary.Max)
	assert.Equal(t, float64(2*time.Millisecond), op.Summary.Center)
	assert.Equal(t, 0.95, op.Summary.Confidence)
}

func TestRun_ToleranceOverrides(t *testing.T) {
	doc := `
schema_version: 1
name: s
setup:
  variables: [x]
  functions: [evalf]
benchmarks:
  - name: b
    description: d
    time:
      - name: op
        operation: evalf(x)
        assert_close: result == 1.0
        rel_tol: 0.25
        abs_tol: 0.0
`
	suite := loadRunnerSuite(t, doc)
	backend := testutil.NewFakeBackend("fake").HandleNumber("evalf", 1.2)
	r := newRunner(backend)

	result, err := r.Run(context.Background(), suite)
	require.NoError(t, err)

	op := result.Benchmarks[0].Operations[0]
	assert.Equal(t, StatusPass, op.Status)
	assert.Equal(t, 0.25, op.Assertion.RelTol)
	assert.Equal(t, 0.0, op.Assertion.AbsTol)
}

func TestRun_Filter(t *testing.T) {
	suite := loadRunnerSuite(t, runnerSuite)
	backend := mathBackend()
	r := newRunner(backend)
	r.Filter = func(name string) bool { return name == "plain" }

	result, err := r.Run(context.Background(), suite)
	require.NoError(t, err)

	require.Len(t, result.Benchmarks, 1)
	assert.Equal(t, "plain", result.Benchmarks[0].Name)
}

func TestRun_FilterMatchesNothing(t *testing.T) {
	suite := loadRunnerSuite(t, runnerSuite)
	r := newRunner(mathBackend())
	r.Filter = func(name string) bool { return false }

	result, err := r.Run(context.Background(), suite)
	require.NoError(t, err)
	assert.Empty(t, result.Benchmarks)
	assert.True(t, result.Ok())
}

func TestRun_UnknownSetupFunction(t *testing.T) {
	suite := loadRunnerSuite(t, runnerSuite)
	backend := testutil.NewFakeBackend("fake") // provides nothing
	r := newRunner(backend)

	_, err := r.Run(context.Background(), suite)
	require.Error(t, err)
	assert.True(t, IsBindError(err))
}

func TestRun_Cancellation(t *testing.T) {
	suite := loadRunnerSuite(t, runnerSuite)
	backend := mathBackend()

	ctx, cancel := context.WithCancel(context.Background())
	// Cancel as soon as the first benchmark's first backend call lands.
	backend.Handle("sin", func(args []cas.Value) (cas.Value, error) {
		cancel()
		return cas.Expr{Text: "sin(x)"}, nil
	})

	r := newRunner(backend)
	result, err := r.Run(ctx, suite)

	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result, "partial results are reported")
	assert.True(t, result.Interrupted)
	assert.False(t, result.Ok())
	// The second benchmark never ran.
	assert.LessOrEqual(t, len(result.Benchmarks), 1)
}

func TestRun_DefaultsApplied(t *testing.T) {
	suite := loadRunnerSuite(t, runnerSuite)
	r := &Runner{Backend: mathBackend()}

	result, err := r.Run(context.Background(), suite)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Samples)
	// Default generator produces a UUID string.
	assert.Len(t, result.RunID, 36)
}

func TestUUIDv7Generator_Sortable(t *testing.T) {
	gen := UUIDv7Generator{}
	a := gen.Generate()
	b := gen.Generate()
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 36)
}
