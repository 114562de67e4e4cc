package runner

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClose(t *testing.T) {
	tests := []struct {
		name           string
		got, want      float64
		relTol, absTol float64
		close          bool
	}{
		{"exact", 0.5678, 0.5678, DefaultRelTol, DefaultAbsTol, true},
		{"within rel tol", 1.0 + 1e-10, 1.0, 1e-9, 0, true},
		{"outside rel tol", 1.0 + 1e-8, 1.0, 1e-9, 0, false},
		{"zero needs abs floor", 1e-13, 0.0, 1e-9, 1e-12, true},
		{"zero outside abs floor", 1e-11, 0.0, 1e-9, 1e-12, false},
		{"wide custom tolerance", 1.5, 1.0, 0.5, 0, true},
		{"negative values", -2.0 - 1e-10, -2.0, 1e-9, 0, true},
		{"nan got", math.NaN(), 1.0, 1e-9, 1e-12, false},
		{"nan want", 1.0, math.NaN(), 1e-9, 1e-12, false},
		{"nan both", math.NaN(), math.NaN(), 1e-9, 1e-12, false},
		{"inf equal", math.Inf(1), math.Inf(1), 1e-9, 1e-12, true},
		{"inf sign mismatch", math.Inf(1), math.Inf(-1), 1e-9, 1e-12, false},
		{"inf vs finite", math.Inf(1), 1e300, 1e-9, 1e-12, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.close, Close(tt.got, tt.want, tt.relTol, tt.absTol))
		})
	}
}

func TestAssertionError_Message(t *testing.T) {
	err := &AssertionError{
		Expression: "evalf(result) == 0.5",
		Want:       0.5,
		Got:        0.75,
		RelTol:     1e-9,
		AbsTol:     1e-12,
	}
	msg := err.Error()
	assert.Contains(t, msg, "evalf(result) == 0.5")
	assert.Contains(t, msg, "Expected: 0.5")
	assert.Contains(t, msg, "Actual: 0.75")
}

func TestRuntimeError_Format(t *testing.T) {
	err := &RuntimeError{
		Code:      ErrCodeBackend,
		Message:   "diff failed",
		Benchmark: "b",
		Operation: "op",
	}
	assert.Equal(t, "BACKEND_ERROR: diff failed (benchmark=b, operation=op)", err.Error())

	bindErr := &RuntimeError{Code: ErrCodeBindFailed, Message: "no such op"}
	assert.Equal(t, "BIND_FAILED: no such op", bindErr.Error())
	assert.True(t, IsBindError(bindErr))
	assert.False(t, IsBindError(err))
}
