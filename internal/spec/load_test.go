package spec

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validSuite is the reference document used across load tests.
const validSuite = `
schema_version: 1
name: differentiation
setup:
  variables: [x]
  functions: [sin, diff, subs, evalf]
benchmarks:
  - name: sin_diff
    description: "Differentiate sin(x) repeatedly"
    inputs:
      expr: sin(x)
    time:
      - name: diff_1
        operation: diff(expr, x)
        assert_close: evalf(subs(result, x, 1.0)) == 0.5403023058681398
      - name: diff_10
        operation: diff(expr, x, 10)
`

func TestParse_ValidSuite(t *testing.T) {
	suite, err := Parse([]byte(validSuite), "test.yaml")
	require.NoError(t, err)

	assert.Equal(t, 1, suite.SchemaVersion)
	assert.Equal(t, "differentiation", suite.Name)
	assert.Equal(t, []string{"x"}, suite.Setup.Variables)
	assert.Equal(t, []string{"sin", "diff", "subs", "evalf"}, suite.Setup.Functions)

	require.Len(t, suite.Benchmarks, 1)
	b := suite.Benchmarks[0]
	assert.Equal(t, "sin_diff", b.Name)
	require.Len(t, b.Inputs, 1)
	assert.Equal(t, "expr", b.Inputs[0].Name)
	assert.Equal(t, "sin(x)", b.Inputs[0].Expr)
	require.NotNil(t, b.Inputs[0].AST())

	require.Len(t, b.Time, 2)
	assert.Equal(t, "diff_1", b.Time[0].Name)
	require.NotNil(t, b.Time[0].OpAST())
	require.NotNil(t, b.Time[0].AssertAST())
	assert.Equal(t, 0.5403023058681398, b.Time[0].AssertAST().Want)
	assert.Nil(t, b.Time[1].AssertAST())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validSuite), 0644))

	suite, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "differentiation", suite.Name)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	// File-system failures are plain errors, not validation findings.
	var verrs ValidationErrors
	assert.False(t, errors.As(err, &verrs))
}

func TestParse_UnknownField(t *testing.T) {
	doc := `
schema_version: 1
name: s
setup:
  variables: [x]
  functionz: [sin]
benchmarks:
  - name: b
    description: d
    time:
      - name: op
        operation: x
`
	_, err := Parse([]byte(doc), "test.yaml")
	requireCode(t, err, ErrSchemaViolation)
}

func TestParse_NotYAML(t *testing.T) {
	_, err := Parse([]byte("{{{"), "test.yaml")
	requireCode(t, err, ErrYAMLSyntax)
}

func TestParse_WrongSchemaVersion(t *testing.T) {
	doc := `
schema_version: 2
name: s
setup:
  variables: [x]
benchmarks:
  - name: b
    description: d
    time:
      - name: op
        operation: x
`
	_, err := Parse([]byte(doc), "test.yaml")
	requireCode(t, err, ErrUnsupportedSchema)
	assert.Contains(t, err.Error(), "supported: 1")
}

func TestParse_EmptyBenchmarks(t *testing.T) {
	doc := `
schema_version: 1
name: s
benchmarks: []
`
	_, err := Parse([]byte(doc), "test.yaml")
	requireCode(t, err, ErrRequiredField)
}

func TestParse_DuplicateNames(t *testing.T) {
	doc := `
schema_version: 1
name: s
setup:
  variables: [x, x]
  functions: [x]
benchmarks:
  - name: b
    description: d
    time:
      - name: op
        operation: x
      - name: op
        operation: x
  - name: b
    description: d
    time:
      - name: op
        operation: x
`
	_, err := Parse([]byte(doc), "test.yaml")
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)

	codes := codeSet(verrs)
	// variables[1] duplicates variables[0], functions[0] duplicates both,
	// benchmarks and operations duplicate too - all in one report.
	assert.True(t, codes[ErrDuplicateName])
	dupes := 0
	for _, e := range verrs {
		if e.Code == ErrDuplicateName {
			dupes++
		}
	}
	assert.GreaterOrEqual(t, dupes, 4)
}

func TestParse_ReservedResultName(t *testing.T) {
	doc := `
schema_version: 1
name: s
setup:
  variables: [result]
  functions: [f]
benchmarks:
  - name: b
    description: d
    inputs:
      result: f(1)
    time:
      - name: op
        operation: f(1)
`
	_, err := Parse([]byte(doc), "test.yaml")
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)

	count := 0
	for _, e := range verrs {
		if e.Code == ErrReservedName {
			count++
		}
	}
	assert.Equal(t, 2, count, "both the variable and the input should be rejected")
}

func TestParse_ResultOutsideAssert(t *testing.T) {
	doc := `
schema_version: 1
name: s
setup:
  variables: [x]
  functions: [f]
benchmarks:
  - name: b
    description: d
    time:
      - name: op
        operation: f(result)
`
	_, err := Parse([]byte(doc), "test.yaml")
	requireCode(t, err, ErrResultOutOfScope)
}

func TestParse_ResultInAssertIsFine(t *testing.T) {
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
        assert_close: evalf(result) == 1.0
`
	_, err := Parse([]byte(doc), "test.yaml")
	require.NoError(t, err)
}

func TestParse_InputReferencesLaterInput(t *testing.T) {
	doc := `
schema_version: 1
name: s
setup:
  variables: [x]
  functions: [f]
benchmarks:
  - name: b
    description: d
    inputs:
      a: f(later)
      later: f(x)
    time:
      - name: op
        operation: f(a)
`
	_, err := Parse([]byte(doc), "test.yaml")
	requireCode(t, err, ErrUnresolvedRef)
}

func TestParse_InputReferencesPriorInput(t *testing.T) {
	doc := `
schema_version: 1
name: s
setup:
  variables: [x]
  functions: [f]
benchmarks:
  - name: b
    description: d
    inputs:
      earlier: f(x)
      a: f(earlier)
    time:
      - name: op
        operation: f(a)
`
	_, err := Parse([]byte(doc), "test.yaml")
	require.NoError(t, err)
}

func TestParse_InputShadowsSetup(t *testing.T) {
	doc := `
schema_version: 1
name: s
setup:
  variables: [x]
  functions: [f]
benchmarks:
  - name: b
    description: d
    inputs:
      x: f(1)
    time:
      - name: op
        operation: f(x)
`
	_, err := Parse([]byte(doc), "test.yaml")
	requireCode(t, err, ErrDuplicateName)
}

func TestParse_UnresolvedFunction(t *testing.T) {
	doc := `
schema_version: 1
name: s
setup:
  variables: [x]
benchmarks:
  - name: b
    description: d
    time:
      - name: op
        operation: mystery(x)
`
	_, err := Parse([]byte(doc), "test.yaml")
	requireCode(t, err, ErrUnresolvedRef)
	assert.Contains(t, err.Error(), "setup.functions")
}

func TestParse_FunctionUsedAsValue(t *testing.T) {
	doc := `
schema_version: 1
name: s
setup:
  variables: [x]
  functions: [f, g]
benchmarks:
  - name: b
    description: d
    time:
      - name: op
        operation: f(g)
`
	_, err := Parse([]byte(doc), "test.yaml")
	requireCode(t, err, ErrFunctionAsVariable)
}

func TestParse_ExpressionSyntaxError(t *testing.T) {
	doc := `
schema_version: 1
name: s
setup:
  variables: [x]
  functions: [f]
benchmarks:
  - name: b
    description: d
    time:
      - name: op
        operation: f(x
`
	_, err := Parse([]byte(doc), "test.yaml")
	requireCode(t, err, ErrExpressionSyntax)
}

func TestParse_ToleranceWithoutAssert(t *testing.T) {
	doc := `
schema_version: 1
name: s
setup:
  variables: [x]
  functions: [f]
benchmarks:
  - name: b
    description: d
    time:
      - name: op
        operation: f(x)
        rel_tol: 1e-6
`
	_, err := Parse([]byte(doc), "test.yaml")
	requireCode(t, err, ErrToleranceNoAssert)
}

func TestParse_NegativeToleranceRejectedBySchema(t *testing.T) {
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
        assert_close: evalf(result) == 1.0
        abs_tol: -0.5
`
	_, err := Parse([]byte(doc), "test.yaml")
	requireCode(t, err, ErrSchemaViolation)
}

func TestParse_InvalidIdentifier(t *testing.T) {
	doc := `
schema_version: 1
name: s
setup:
  variables: ["1x", "_y"]
benchmarks:
  - name: b
    description: d
    time:
      - name: op
        operation: "1"
`
	_, err := Parse([]byte(doc), "test.yaml")
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)

	count := 0
	for _, e := range verrs {
		if e.Code == ErrInvalidIdentifier {
			count++
		}
	}
	assert.Equal(t, 2, count)
}

func TestParse_ReportsAllErrors(t *testing.T) {
	doc := `
schema_version: 3
name: ""
setup:
  variables: [x, x]
benchmarks:
  - name: b
    description: d
    time:
      - name: op
        operation: missing(x)
`
	_, err := Parse([]byte(doc), "test.yaml")
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.GreaterOrEqual(t, len(verrs), 4)
}

// requireCode asserts that err is a ValidationErrors containing a finding
// with the given code.
func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	if !codeSet(verrs)[code] {
		t.Fatalf("no finding with code %s in:\n%s", code, verrs.Error())
	}
}

func codeSet(errs ValidationErrors) map[string]bool {
	set := make(map[string]bool)
	for _, e := range errs {
		set[e.Code] = true
	}
	return set
}
