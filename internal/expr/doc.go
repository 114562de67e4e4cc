// Package expr implements the expression mini-language used by benchmark
// suite documents.
//
// Operation expressions name a CAS computation:
//
//	diff(expr, x, 10)
//
// Assertion expressions compare a term against a numeric literal:
//
//	evalf(subs(result, x, 1.0)) == 0.5678
//
// The grammar is deliberately tiny: identifiers, integer and float literals,
// call syntax, and a single top-level == in assertions. There are no
// operators, no precedence, and no statements. Expressions are compiled once
// at suite load time; evaluation resolves names through a Scope so the same
// AST can run against any CAS backend.
package expr
