package spec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint_Stable(t *testing.T) {
	suite, err := Parse([]byte(validSuite), "test.yaml")
	require.NoError(t, err)

	fp1, err := Fingerprint(suite)
	require.NoError(t, err)
	fp2, err := Fingerprint(suite)
	require.NoError(t, err)

	assert.Equal(t, fp1, fp2)
	assert.Len(t, fp1, 64, "hex-encoded SHA-256")
}

func TestFingerprint_FormattingInsensitive(t *testing.T) {
	// Same content, different YAML formatting.
	reformatted := `
schema_version: 1
name: "differentiation"
setup:
  variables:
    - x
  functions:
    - sin
    - diff
    - subs
    - evalf
benchmarks:
  - name: sin_diff
    description: Differentiate sin(x) repeatedly
    inputs:
      expr: "sin(x)"
    time:
      - name: diff_1
        operation: "diff(expr, x)"
        assert_close: "evalf(subs(result, x, 1.0)) == 0.5403023058681398"
      - name: diff_10
        operation: diff(expr, x, 10)
`
	a, err := Parse([]byte(validSuite), "a.yaml")
	require.NoError(t, err)
	b, err := Parse([]byte(reformatted), "b.yaml")
	require.NoError(t, err)

	fpA, err := Fingerprint(a)
	require.NoError(t, err)
	fpB, err := Fingerprint(b)
	require.NoError(t, err)
	assert.Equal(t, fpA, fpB)
}

func TestFingerprint_ContentSensitive(t *testing.T) {
	a, err := Parse([]byte(validSuite), "a.yaml")
	require.NoError(t, err)
	fpA, err := Fingerprint(a)
	require.NoError(t, err)

	b, err := Parse([]byte(validSuite), "b.yaml")
	require.NoError(t, err)
	b.Benchmarks[0].Time[1].Operation = "diff(expr, x, 11)"
	fpB, err := Fingerprint(b)
	require.NoError(t, err)

	assert.NotEqual(t, fpA, fpB)
}

func TestFingerprint_InputOrderSensitive(t *testing.T) {
	// Input order is semantic (later inputs may reference earlier ones),
	// so swapping it must change the fingerprint.
	suite := func() *Suite {
		s, err := Parse([]byte(validSuite), "t.yaml")
		require.NoError(t, err)
		s.Benchmarks[0].Inputs = Inputs{
			{Name: "a", Expr: "sin(x)"},
			{Name: "b", Expr: "sin(x)"},
		}
		return s
	}

	s1 := suite()
	s2 := suite()
	s2.Benchmarks[0].Inputs[0], s2.Benchmarks[0].Inputs[1] = s2.Benchmarks[0].Inputs[1], s2.Benchmarks[0].Inputs[0]

	fp1, err := Fingerprint(s1)
	require.NoError(t, err)
	fp2, err := Fingerprint(s2)
	require.NoError(t, err)
	assert.NotEqual(t, fp1, fp2)
}

func TestMarshalCanonical(t *testing.T) {
	got, err := marshalCanonical(map[string]any{
		"b":    "x",
		"a":    int64(1),
		"list": []any{1.5, "s"},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"b":"x","list":[1.5,"s"]}`, string(got))
}

func TestMarshalCanonical_NFCNormalizes(t *testing.T) {
	// U+00E9 composed vs e + U+0301 combining acute.
	composed, err := marshalCanonical("café")
	require.NoError(t, err)
	decomposed, err := marshalCanonical("café")
	require.NoError(t, err)
	assert.Equal(t, string(composed), string(decomposed))
}

func TestMarshalCanonical_NoHTMLEscaping(t *testing.T) {
	got, err := marshalCanonical("a<b>&c")
	require.NoError(t, err)
	assert.Equal(t, `"a<b>&c"`, string(got))
}

func TestMarshalCanonical_RejectsNull(t *testing.T) {
	_, err := marshalCanonical(map[string]any{"k": nil})
	require.Error(t, err)
}
