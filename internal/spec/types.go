package spec

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/casbench/casbench/internal/expr"
)

// SchemaVersion is the only suite schema version this harness understands.
const SchemaVersion = 1

// ResultName is the reserved binding for a timed operation's own output.
// It is in scope only inside that operation's assert_close expression and
// may not be declared in setup or inputs.
const ResultName = "result"

// Suite is a parsed benchmark suite document.
type Suite struct {
	// SchemaVersion gates compatibility; must equal SchemaVersion.
	SchemaVersion int `yaml:"schema_version" json:"schema_version"`

	// Name identifies the suite in results and stored runs.
	Name string `yaml:"name" json:"name"`

	// Setup declares the symbolic namespace shared by all benchmarks.
	Setup Setup `yaml:"setup" json:"setup"`

	// Benchmarks run in document order.
	Benchmarks []Benchmark `yaml:"benchmarks" json:"benchmarks"`
}

// Setup declares the names the backend must provide.
type Setup struct {
	// Variables are symbolic variable names, bound via Backend.Symbol.
	Variables []string `yaml:"variables,omitempty" json:"variables,omitempty"`

	// Functions are backend operation names made callable in expressions.
	Functions []string `yaml:"functions,omitempty" json:"functions,omitempty"`
}

// Benchmark is one named group of inputs and timed operations.
type Benchmark struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`

	// Inputs bind expression results into the benchmark scope before any
	// operation is timed. Document order is significant: each input may
	// reference setup names and prior inputs only.
	Inputs Inputs `yaml:"inputs,omitempty" json:"inputs,omitempty"`

	// Time lists the operations to execute and time, in order.
	Time []TimedOperation `yaml:"time" json:"time"`
}

// TimedOperation is a single timed expression with an optional assertion.
type TimedOperation struct {
	Name string `yaml:"name" json:"name"`

	// Operation is the expression to evaluate under timing.
	Operation string `yaml:"operation" json:"operation"`

	// AssertClose optionally compares a term against a numeric literal,
	// e.g. "evalf(subs(result, x, 1.0)) == 0.5678". The term may reference
	// "result", bound to this operation's output.
	AssertClose string `yaml:"assert_close,omitempty" json:"assert_close,omitempty"`

	// RelTol and AbsTol override the default assertion tolerances.
	// Only meaningful together with AssertClose.
	RelTol *float64 `yaml:"rel_tol,omitempty" json:"rel_tol,omitempty"`
	AbsTol *float64 `yaml:"abs_tol,omitempty" json:"abs_tol,omitempty"`

	// compiled forms, populated by Parse.
	opAST     expr.Node
	assertAST *expr.Assert
}

// OpAST returns the compiled operation expression. Nil until the suite has
// been loaded through Parse.
func (op *TimedOperation) OpAST() expr.Node { return op.opAST }

// AssertAST returns the compiled assertion, or nil when the operation has
// none (or the suite has not been loaded through Parse).
func (op *TimedOperation) AssertAST() *expr.Assert { return op.assertAST }

// Input is one named input binding.
type Input struct {
	Name string `json:"name"`
	Expr string `json:"expr"`

	// compiled form, populated by Parse.
	ast expr.Node
}

// AST returns the compiled input expression. Nil until the suite has been
// loaded through Parse.
func (in *Input) AST() expr.Node { return in.ast }

// Inputs is an ordered list of input bindings. YAML represents inputs as a
// mapping, but binding order matters (each input may reference prior
// inputs), so decoding preserves document order instead of going through a
// Go map.
type Inputs []Input

// UnmarshalYAML decodes a YAML mapping of name to expression string,
// preserving key order.
func (ins *Inputs) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: inputs must be a mapping of name to expression", node.Line)
	}

	// Mapping content alternates key, value.
	result := make(Inputs, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if key.Kind != yaml.ScalarNode || value.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: input entries must be scalar name/expression pairs", key.Line)
		}
		result = append(result, Input{Name: key.Value, Expr: value.Value})
	}

	*ins = result
	return nil
}

// MarshalYAML renders inputs back as a mapping in document order.
func (ins Inputs) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, in := range ins {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: in.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Value: in.Expr},
		)
	}
	return node, nil
}
