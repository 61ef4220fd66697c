//go:build unit
// +build unit

package core

import (
	"fmt"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil", nil, ExitOK},
		{"argument", NewArgumentError("bad flag"), ExitArgument},
		{"runtime", NewRuntimeError(nil, "boom"), ExitRuntime},
		{"backend not found", &BackendNotFoundError{Name: "ghost"}, ExitRuntime},
		{"no suitable", &NoSuitableBackendError{Qubits: 50}, ExitRuntime},
		{"job failure", &JobFailureError{JobID: "j1", Message: "bad"}, ExitRuntime},
		{"source", &SourceError{Path: "a.qasm"}, ExitRuntime},
		{"uncategorized", fmt.Errorf("plain"), ExitEcosystem},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ExitCode(tt.err), tt.name)
	}
}

func TestExitCodeThroughWrapping(t *testing.T) {
	wrapped := errors.Wrap(NewArgumentError("inner"), "outer")
	assert.Equal(t, ExitArgument, ExitCode(wrapped))
}

func TestErrorCategory(t *testing.T) {
	assert.Equal(t, "ArgumentError", ErrorCategory(NewArgumentError("x")))
	assert.Equal(t, "BackendNotFound", ErrorCategory(&BackendNotFoundError{Name: "n"}))
	assert.Equal(t, "JobFailure", ErrorCategory(&JobFailureError{JobID: "j"}))
	assert.Equal(t, "Error", ErrorCategory(fmt.Errorf("plain")))
}

func TestSourceErrorMessage(t *testing.T) {
	e := &SourceError{Path: "a.qasm", Message: "failed to parse source", Diag: "line 3: cannot parse"}
	assert.Contains(t, e.Error(), "a.qasm")
	assert.Contains(t, e.Error(), "line 3")
}
