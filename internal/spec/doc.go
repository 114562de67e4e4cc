// Package spec loads and validates benchmark suite documents.
//
// A suite is a YAML document declaring symbolic setup, per-benchmark inputs,
// timed operation expressions, and approximate-equality assertions:
//
//	schema_version: 1
//	name: differentiation
//	setup:
//	  variables: [x]
//	  functions: [sin, diff, subs, evalf]
//	benchmarks:
//	  - name: sin_diff
//	    description: "Differentiate sin(x) ten times"
//	    inputs:
//	      expr: sin(x)
//	    time:
//	      - name: diff_10
//	        operation: diff(expr, x, 10)
//	        assert_close: evalf(subs(result, x, 1.0)) == -0.8414709848078965
//
// Loading is staged: strict YAML decoding (unknown fields are errors), CUE
// schema validation against the embedded schema, semantic validation
// (identifier shape, uniqueness, version gate), and finally expression
// compilation with static reference checking. All stages report every error
// they find, not just the first.
package spec
