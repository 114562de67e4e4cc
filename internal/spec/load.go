package spec

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads and parses a suite file. File-system failures are returned as
// plain errors; every validation failure comes back as ValidationErrors.
func Load(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read suite file: %w", err)
	}
	return Parse(data, path)
}

// ParseReader parses a suite document from a reader. filename is used in
// error positions only.
func ParseReader(r io.Reader, filename string) (*Suite, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read suite document: %w", err)
	}
	return Parse(data, filename)
}

// Parse parses and validates a suite document. Validation is staged:
//
//  1. CUE schema gate: the raw document unified with the embedded schema.
//     Structural mistakes (wrong types, unknown fields) fail here with
//     source positions.
//  2. Strict YAML decoding into Go types, preserving input order.
//  3. Semantic validation: version gate, identifier shape, uniqueness,
//     reserved names, tolerances.
//  4. Expression compilation and static reference checking.
//
// Stages 3 and 4 run together and report every finding; the error is a
// ValidationErrors value when any stage fails.
func Parse(data []byte, filename string) (*Suite, error) {
	if errs := validateSchema(data, filename); len(errs) > 0 {
		return nil, errs
	}

	var suite Suite
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&suite); err != nil {
		// The schema gate passed, so this is a decoding-level problem the
		// schema cannot see (e.g. a duplicate mapping key).
		return nil, ValidationErrors{{
			Field:   "document",
			Message: err.Error(),
			Code:    ErrYAMLSyntax,
		}}
	}

	errs := validateSuite(&suite)
	errs = append(errs, compileSuite(&suite)...)
	if len(errs) > 0 {
		return nil, errs
	}

	return &suite, nil
}
