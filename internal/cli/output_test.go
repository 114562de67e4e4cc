package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casbench/casbench/internal/runner"
)

func TestExitError(t *testing.T) {
	err := NewExitError(ExitFailure, "benchmarks failed")
	assert.Equal(t, "benchmarks failed", err.Error())
	assert.Equal(t, ExitFailure, err.Code)

	cause := errors.New("disk full")
	wrapped := WrapExitError(ExitCommandError, "record run", cause)
	assert.Equal(t, "record run: disk full", wrapped.Error())
	assert.Equal(t, cause, errors.Unwrap(wrapped))
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(NewExitError(ExitFailure, "failed")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad flag")))

	// Wrapped ExitErrors still resolve.
	wrapped := fmt.Errorf("outer: %w", NewExitError(ExitFailure, "inner"))
	assert.Equal(t, ExitFailure, GetExitCode(wrapped))

	// Anything else is a command-level problem.
	assert.Equal(t, ExitCommandError, GetExitCode(errors.New("unknown flag")))
}

func TestFormatterSuccessJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, f.Success(map[string]int{"count": 3}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestFormatterErrorText(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, f.Error("E100", "not valid YAML", nil))
	assert.Contains(t, buf.String(), "Error [E100]: not valid YAML")
}

func TestFormatterVerboseLog(t *testing.T) {
	out := &bytes.Buffer{}
	diag := &bytes.Buffer{}

	silent := &OutputFormatter{Format: "text", Writer: out, ErrWriter: diag}
	silent.VerboseLog("should not appear")
	assert.Empty(t, diag.String())

	verbose := &OutputFormatter{Format: "text", Writer: out, ErrWriter: diag, Verbose: true}
	verbose.VerboseLog("loaded %d benchmarks", 2)
	assert.Contains(t, diag.String(), "loaded 2 benchmarks")
	assert.Empty(t, out.String(), "diagnostics must not mix into command output")
}

func TestStatusMark(t *testing.T) {
	statuses := []runner.Status{
		runner.StatusPass,
		runner.StatusFail,
		runner.StatusError,
		runner.StatusSkipped,
	}
	seen := map[string]bool{}
	for _, status := range statuses {
		mark := statusMark(status)
		assert.NotEqual(t, "?", mark, "status %q", status)
		assert.False(t, seen[mark], "marks must be distinct, %q repeated", mark)
		seen[mark] = true
	}
	assert.Equal(t, "?", statusMark(runner.Status("bogus")))
}
