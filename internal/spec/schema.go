package spec

import (
	_ "embed"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cueyaml "cuelang.org/go/encoding/yaml"
)

//go:embed schema.cue
var schemaCUE string

var (
	schemaOnce  sync.Once
	schemaCtx   *cue.Context
	schemaSuite cue.Value
)

// schema compiles the embedded schema once. The context is kept so suite
// documents build in the same context the schema lives in (CUE values from
// different contexts cannot unify).
func schema() (*cue.Context, cue.Value) {
	schemaOnce.Do(func() {
		schemaCtx = cuecontext.New()
		compiled := schemaCtx.CompileString(schemaCUE, cue.Filename("schema.cue"))
		if err := compiled.Err(); err != nil {
			// The schema is embedded and tested; a compile failure is a
			// build defect, not an input error.
			panic("spec: embedded schema.cue does not compile: " + err.Error())
		}
		schemaSuite = compiled.LookupPath(cue.ParsePath("#Suite"))
	})
	return schemaCtx, schemaSuite
}

// validateSchema unifies the raw YAML document with the embedded #Suite
// definition and returns every violation with its source position. It runs
// before strict decoding so structural mistakes are reported with lines and
// paths instead of Go decoding errors.
func validateSchema(data []byte, filename string) ValidationErrors {
	ctx, suiteDef := schema()

	file, err := cueyaml.Extract(filename, data)
	if err != nil {
		return ValidationErrors{{
			Field:   "document",
			Message: err.Error(),
			Code:    ErrYAMLSyntax,
		}}
	}

	doc := ctx.BuildFile(file)
	if err := doc.Err(); err != nil {
		return cueFindings(err, ErrYAMLSyntax)
	}

	unified := suiteDef.Unify(doc)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return cueFindings(err, ErrSchemaViolation)
	}

	return nil
}

// cueFindings flattens a CUE error list into validation errors, keeping
// each finding's path and line.
func cueFindings(err error, code string) ValidationErrors {
	var errs ValidationErrors
	for _, e := range cueerrors.Errors(err) {
		field := strings.Join(e.Path(), ".")
		if field == "" {
			field = "document"
		}
		finding := ValidationError{
			Field:   field,
			Message: e.Error(),
			Code:    code,
		}
		if positions := cueerrors.Positions(e); len(positions) > 0 {
			finding.Line = positions[0].Line()
		}
		errs = append(errs, finding)
	}
	if len(errs) == 0 {
		errs = ValidationErrors{{Field: "document", Message: err.Error(), Code: code}}
	}
	return errs
}
