package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/casbench/casbench/internal/cas"
	"github.com/casbench/casbench/internal/testutil"
)

// testBackend is registered once for the whole package; the registry is
// process-global.
const testBackend = "fakemath"

func init() {
	cas.Register(testBackend, func(ctx context.Context) (cas.Backend, error) {
		return testutil.NewFakeBackend(testBackend).
			HandleExpr("sin", "sin(x)").
			HandleExpr("diff", "cos(x)").
			HandleExpr("subs", "cos(1.0)").
			HandleNumber("evalf", 0.5403023058681398), nil
	})
}

const validSuite = `schema_version: 1
name: differentiation
setup:
  variables: [x]
  functions: [sin, diff, subs, evalf]
benchmarks:
  - name: sin_diff
    description: differentiate sin and check at x=1
    inputs:
      expr: sin(x)
    time:
      - name: derivative
        operation: diff(expr, x)
        assert_close: evalf(subs(result, x, 1.0)) == 0.5403023058681398
  - name: substitution
    description: substitution without assertion
    time:
      - name: substitute
        operation: subs(sin(x), x, x)
`

const failingSuite = `schema_version: 1
name: differentiation
setup:
  variables: [x]
  functions: [sin, diff, subs, evalf]
benchmarks:
  - name: sin_diff
    description: assertion expects the wrong value
    inputs:
      expr: sin(x)
    time:
      - name: derivative
        operation: diff(expr, x)
        assert_close: evalf(subs(result, x, 1.0)) == 0.9
`

const invalidSuite = `schema_version: 1
name: differentiation
setup:
  variables: [x, x]
benchmarks:
  - name: sin_diff
    description: duplicate variable above
    time:
      - name: derivative
        operation: diff(x)
`

// writeSuite drops YAML into a temp file and returns its path.
func writeSuite(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "suite.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write suite: %v", err)
	}
	return path
}
