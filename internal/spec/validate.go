package spec

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/casbench/casbench/internal/expr"
)

// Validation error codes (E100-E199).
const (
	// Document-level errors (E100-E109)
	ErrYAMLSyntax        = "E100" // document is not valid YAML / unknown fields
	ErrSchemaViolation   = "E101" // document violates the CUE schema
	ErrUnsupportedSchema = "E102" // schema_version not supported
	ErrRequiredField     = "E103" // required field missing or empty
	ErrInvalidIdentifier = "E104" // name is not a valid identifier
	ErrDuplicateName     = "E105" // duplicate name in scope
	ErrReservedName      = "E106" // "result" declared as a binding

	// Expression errors (E110-E119)
	ErrExpressionSyntax   = "E110" // expression does not lex/parse
	ErrUnresolvedRef      = "E111" // expression references an unbound name
	ErrResultOutOfScope   = "E112" // "result" referenced outside assert_close
	ErrInvalidTolerance   = "E113" // tolerance is negative or NaN
	ErrToleranceNoAssert  = "E114" // tolerance given without assert_close
	ErrFunctionAsVariable = "E115" // function name used in value position
)

// ValidationError is a single validation finding with a stable code and the
// field path it applies to.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ValidationErrors aggregates every finding from a load. Loading reports all
// errors, not just the first.
type ValidationErrors []ValidationError

// Error implements the error interface, one finding per line.
func (errs ValidationErrors) Error() string {
	if len(errs) == 0 {
		return "no validation errors"
	}
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = e.Error()
	}
	return strings.Join(lines, "\n")
}

// validIdentifier reports whether name is a legal suite identifier:
// a letter followed by letters, digits, or underscores. This matches what
// the expression lexer can reference, so every declared name is reachable
// from an expression.
func validIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if i == 0 {
			if !unicode.IsLetter(r) {
				return false
			}
			continue
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}

// validateSuite runs the semantic checks that the CUE schema cannot express:
// version gating, identifier shape, uniqueness, reserved names, and
// tolerances. Returns all findings.
func validateSuite(s *Suite) ValidationErrors {
	var errs ValidationErrors

	if s.SchemaVersion != SchemaVersion {
		errs = append(errs, ValidationError{
			Field:   "schema_version",
			Message: fmt.Sprintf("unsupported schema_version %d (supported: %d)", s.SchemaVersion, SchemaVersion),
			Code:    ErrUnsupportedSchema,
		})
	}

	if s.Name == "" {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: "name is required",
			Code:    ErrRequiredField,
		})
	}

	errs = append(errs, validateSetup(&s.Setup)...)

	if len(s.Benchmarks) == 0 {
		errs = append(errs, ValidationError{
			Field:   "benchmarks",
			Message: "benchmarks list is required and must be non-empty",
			Code:    ErrRequiredField,
		})
	}

	benchNames := make(map[string]bool)
	for i := range s.Benchmarks {
		b := &s.Benchmarks[i]
		field := fmt.Sprintf("benchmarks[%d]", i)

		if b.Name == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: "name is required",
				Code:    ErrRequiredField,
			})
		} else if benchNames[b.Name] {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("duplicate benchmark name %q", b.Name),
				Code:    ErrDuplicateName,
			})
		}
		benchNames[b.Name] = true

		if b.Description == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".description",
				Message: "description is required",
				Code:    ErrRequiredField,
			})
		}

		errs = append(errs, validateBenchmark(b, field, &s.Setup)...)
	}

	return errs
}

// validateSetup checks setup names: identifier shape, mutual uniqueness
// across variables and functions, and the reserved result name.
func validateSetup(setup *Setup) ValidationErrors {
	var errs ValidationErrors
	seen := make(map[string]string) // name -> first declaring field

	check := func(field, name string) {
		switch {
		case name == ResultName:
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("%q is reserved for operation results", ResultName),
				Code:    ErrReservedName,
			})
		case !validIdentifier(name):
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("%q is not a valid identifier", name),
				Code:    ErrInvalidIdentifier,
			})
		}
		if prev, dup := seen[name]; dup {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("name %q already declared at %s", name, prev),
				Code:    ErrDuplicateName,
			})
			return
		}
		seen[name] = field
	}

	for i, name := range setup.Variables {
		check(fmt.Sprintf("setup.variables[%d]", i), name)
	}
	for i, name := range setup.Functions {
		check(fmt.Sprintf("setup.functions[%d]", i), name)
	}

	return errs
}

// validateBenchmark checks one benchmark's inputs and timed operations,
// including per-name uniqueness against the setup namespace.
func validateBenchmark(b *Benchmark, field string, setup *Setup) ValidationErrors {
	var errs ValidationErrors

	setupNames := make(map[string]bool)
	for _, name := range setup.Variables {
		setupNames[name] = true
	}
	for _, name := range setup.Functions {
		setupNames[name] = true
	}

	inputNames := make(map[string]bool)
	for i := range b.Inputs {
		in := &b.Inputs[i]
		inField := fmt.Sprintf("%s.inputs[%s]", field, in.Name)

		switch {
		case in.Name == ResultName:
			errs = append(errs, ValidationError{
				Field:   inField,
				Message: fmt.Sprintf("%q is reserved for operation results", ResultName),
				Code:    ErrReservedName,
			})
		case !validIdentifier(in.Name):
			errs = append(errs, ValidationError{
				Field:   inField,
				Message: fmt.Sprintf("%q is not a valid identifier", in.Name),
				Code:    ErrInvalidIdentifier,
			})
		case setupNames[in.Name]:
			// Shadowing setup names is forbidden.
			errs = append(errs, ValidationError{
				Field:   inField,
				Message: fmt.Sprintf("input %q shadows a setup name", in.Name),
				Code:    ErrDuplicateName,
			})
		case inputNames[in.Name]:
			errs = append(errs, ValidationError{
				Field:   inField,
				Message: fmt.Sprintf("duplicate input name %q", in.Name),
				Code:    ErrDuplicateName,
			})
		}
		inputNames[in.Name] = true

		if strings.TrimSpace(in.Expr) == "" {
			errs = append(errs, ValidationError{
				Field:   inField,
				Message: "input expression is required",
				Code:    ErrRequiredField,
			})
		}
	}

	if len(b.Time) == 0 {
		errs = append(errs, ValidationError{
			Field:   field + ".time",
			Message: "time list is required and must be non-empty",
			Code:    ErrRequiredField,
		})
	}

	opNames := make(map[string]bool)
	for i := range b.Time {
		op := &b.Time[i]
		opField := fmt.Sprintf("%s.time[%d]", field, i)

		if op.Name == "" {
			errs = append(errs, ValidationError{
				Field:   opField + ".name",
				Message: "name is required",
				Code:    ErrRequiredField,
			})
		} else if opNames[op.Name] {
			errs = append(errs, ValidationError{
				Field:   opField + ".name",
				Message: fmt.Sprintf("duplicate operation name %q", op.Name),
				Code:    ErrDuplicateName,
			})
		}
		opNames[op.Name] = true

		if strings.TrimSpace(op.Operation) == "" {
			errs = append(errs, ValidationError{
				Field:   opField + ".operation",
				Message: "operation expression is required",
				Code:    ErrRequiredField,
			})
		}

		errs = append(errs, validateTolerances(op, opField)...)
	}

	return errs
}

// validateTolerances checks rel_tol/abs_tol overrides: they require an
// assert_close and must be non-negative.
func validateTolerances(op *TimedOperation, field string) ValidationErrors {
	var errs ValidationErrors

	check := func(name string, v *float64) {
		if v == nil {
			return
		}
		if op.AssertClose == "" {
			errs = append(errs, ValidationError{
				Field:   field + "." + name,
				Message: name + " requires assert_close",
				Code:    ErrToleranceNoAssert,
			})
		}
		if *v < 0 || *v != *v {
			errs = append(errs, ValidationError{
				Field:   field + "." + name,
				Message: fmt.Sprintf("%s must be a non-negative number, got %v", name, *v),
				Code:    ErrInvalidTolerance,
			})
		}
	}

	check("rel_tol", op.RelTol)
	check("abs_tol", op.AbsTol)

	return errs
}

// compileSuite parses every expression in the suite and statically checks
// references against the scopes the runner will build: setup for inputs
// (extended by prior inputs), setup plus inputs for operations, and
// additionally "result" for assertions. Compiled ASTs are stored on the
// suite for the runner.
func compileSuite(s *Suite) ValidationErrors {
	var errs ValidationErrors

	setupValues := make(map[string]bool)
	for _, name := range s.Setup.Variables {
		setupValues[name] = true
	}
	setupFuncs := make(map[string]bool)
	for _, name := range s.Setup.Functions {
		setupFuncs[name] = true
	}

	for bi := range s.Benchmarks {
		b := &s.Benchmarks[bi]
		field := fmt.Sprintf("benchmarks[%d]", bi)

		// Value scope grows as inputs bind in document order.
		values := make(map[string]bool, len(setupValues)+len(b.Inputs))
		for name := range setupValues {
			values[name] = true
		}

		for ii := range b.Inputs {
			in := &b.Inputs[ii]
			inField := fmt.Sprintf("%s.inputs[%s]", field, in.Name)

			if strings.TrimSpace(in.Expr) == "" {
				// Already reported as a missing-field error.
				values[in.Name] = true
				continue
			}

			node, err := expr.ParseOperation(in.Expr)
			if err != nil {
				errs = append(errs, ValidationError{
					Field:   inField,
					Message: err.Error(),
					Code:    ErrExpressionSyntax,
				})
			} else {
				in.ast = node
				errs = append(errs, checkRefs(node, inField, values, setupFuncs, false)...)
			}
			values[in.Name] = true
		}

		for oi := range b.Time {
			op := &b.Time[oi]
			opField := fmt.Sprintf("%s.time[%d]", field, oi)

			if op.Operation != "" {
				node, err := expr.ParseOperation(op.Operation)
				if err != nil {
					errs = append(errs, ValidationError{
						Field:   opField + ".operation",
						Message: err.Error(),
						Code:    ErrExpressionSyntax,
					})
				} else {
					op.opAST = node
					errs = append(errs, checkRefs(node, opField+".operation", values, setupFuncs, false)...)
				}
			}

			if op.AssertClose != "" {
				node, err := expr.ParseAssertion(op.AssertClose)
				if err != nil {
					errs = append(errs, ValidationError{
						Field:   opField + ".assert_close",
						Message: err.Error(),
						Code:    ErrExpressionSyntax,
					})
				} else {
					op.assertAST = node
					errs = append(errs, checkRefs(node, opField+".assert_close", values, setupFuncs, true)...)
				}
			}
		}
	}

	return errs
}

// checkRefs verifies every name an expression references is bound.
// allowResult permits the reserved result binding (assert_close only).
func checkRefs(node expr.Node, field string, values, funcs map[string]bool, allowResult bool) ValidationErrors {
	var errs ValidationErrors
	refs := expr.References(node)

	for _, name := range refs.Values {
		if name == ResultName {
			if !allowResult {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("%q is only in scope inside assert_close", ResultName),
					Code:    ErrResultOutOfScope,
				})
			}
			continue
		}
		if values[name] {
			continue
		}
		if funcs[name] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("%q is a function and cannot be used as a value", name),
				Code:    ErrFunctionAsVariable,
			})
			continue
		}
		errs = append(errs, ValidationError{
			Field:   field,
			Message: fmt.Sprintf("unresolved reference %q", name),
			Code:    ErrUnresolvedRef,
		})
	}

	for _, name := range refs.Funcs {
		if !funcs[name] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("unresolved function %q (declare it in setup.functions)", name),
				Code:    ErrUnresolvedRef,
			})
		}
	}

	return errs
}
