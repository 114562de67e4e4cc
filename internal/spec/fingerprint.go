package spec

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// fingerprintDomain is the domain prefix for suite fingerprints. The
// version suffix enables future algorithm migration without colliding with
// old hashes.
const fingerprintDomain = "casbench/suite/v1"

// Fingerprint computes a content-addressed identity for a suite:
// SHA-256 over the domain prefix, a null separator, and the suite's
// canonical JSON. Two documents that differ only in formatting, comment
// placement, or Unicode normalization produce the same fingerprint, so
// stored runs can be matched to the suite content that produced them.
func Fingerprint(s *Suite) (string, error) {
	canonical, err := marshalCanonical(fingerprintValue(s))
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}

	h := sha256.New()
	h.Write([]byte(fingerprintDomain))
	h.Write([]byte{0x00}) // Null separator prevents domain/data ambiguity
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// fingerprintValue converts the suite into the plain structure that gets
// hashed. Inputs serialize as an array of name/expr pairs because their
// document order is semantic; maps would erase it.
func fingerprintValue(s *Suite) map[string]any {
	benchmarks := make([]any, len(s.Benchmarks))
	for i, b := range s.Benchmarks {
		inputs := make([]any, len(b.Inputs))
		for j, in := range b.Inputs {
			inputs[j] = map[string]any{"name": in.Name, "expr": in.Expr}
		}

		ops := make([]any, len(b.Time))
		for j, op := range b.Time {
			entry := map[string]any{
				"name":      op.Name,
				"operation": op.Operation,
			}
			if op.AssertClose != "" {
				entry["assert_close"] = op.AssertClose
			}
			if op.RelTol != nil {
				entry["rel_tol"] = *op.RelTol
			}
			if op.AbsTol != nil {
				entry["abs_tol"] = *op.AbsTol
			}
			ops[j] = entry
		}

		benchmarks[i] = map[string]any{
			"name":        b.Name,
			"description": b.Description,
			"inputs":      inputs,
			"time":        ops,
		}
	}

	variables := make([]any, len(s.Setup.Variables))
	for i, v := range s.Setup.Variables {
		variables[i] = v
	}
	functions := make([]any, len(s.Setup.Functions))
	for i, f := range s.Setup.Functions {
		functions[i] = f
	}

	return map[string]any{
		"schema_version": s.SchemaVersion,
		"name":           s.Name,
		"setup": map[string]any{
			"variables": variables,
			"functions": functions,
		},
		"benchmarks": benchmarks,
	}
}

// marshalCanonical produces canonical JSON for hashing: object keys sorted,
// strings NFC-normalized with minimal escaping (no HTML escapes), floats in
// shortest round-trip form. This is a hash input, never a wire format.
func marshalCanonical(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCanonical(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case string:
		writeCanonicalString(buf, val)
	case int:
		buf.WriteString(strconv.Itoa(val))
	case int64:
		buf.WriteString(strconv.FormatInt(val, 10))
	case float64:
		// Shortest representation that round-trips. Suite tolerances are
		// the only floats that reach here; NaN and infinities are rejected
		// upstream by validation.
		buf.WriteString(strconv.FormatFloat(val, 'g', -1, 64))
	case bool:
		buf.WriteString(strconv.FormatBool(val))
	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, elem); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeCanonicalString(buf, k)
			buf.WriteByte(':')
			if err := writeCanonical(buf, val[k]); err != nil {
				return fmt.Errorf("%q: %w", k, err)
			}
		}
		buf.WriteByte('}')
	case nil:
		return fmt.Errorf("null is forbidden in canonical JSON")
	default:
		return fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
	return nil
}

// writeCanonicalString writes an NFC-normalized JSON string with minimal
// escaping: only the quote, backslash, and control characters are escaped.
func writeCanonicalString(buf *bytes.Buffer, s string) {
	normalized := norm.NFC.String(s)

	buf.WriteByte('"')
	for _, r := range normalized {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		default:
			if r < 0x20 {
				fmt.Fprintf(buf, `\u%04x`, r)
			} else {
				buf.WriteRune(r)
			}
		}
	}
	buf.WriteByte('"')
}
