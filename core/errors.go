package core

import (
	"fmt"

	"github.com/go-faster/errors"
)

// Exit codes of the qjob process.
const (
	ExitOK        = 0
	ExitArgument  = 1
	ExitRuntime   = 100
	ExitEcosystem = 200
)

// ArgumentError is an invalid or contradictory configuration detected
// before any backend interaction.
type ArgumentError struct {
	Message string
}

func (e *ArgumentError) Error() string {
	return e.Message
}

func NewArgumentError(format string, args ...interface{}) *ArgumentError {
	return &ArgumentError{Message: fmt.Sprintf(format, args...)}
}

// RuntimeError wraps a failure during credential resolution, backend
// lookup, or job execution.
type RuntimeError struct {
	Message string
	Cause   error
}

func (e *RuntimeError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, e.Cause.Error())
}

func (e *RuntimeError) Unwrap() error {
	return e.Cause
}

func NewRuntimeError(cause error, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Message: fmt.Sprintf(format, args...), Cause: cause}
}

// BackendNotFoundError is raised when an explicitly named backend is
// absent from the provider's backend list.
type BackendNotFoundError struct {
	Name  string
	Cause error
}

func (e *BackendNotFoundError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("backend %s not found", e.Name)
	}
	return fmt.Sprintf("backend %s not found: %s", e.Name, e.Cause.Error())
}

func (e *BackendNotFoundError) Unwrap() error {
	return e.Cause
}

// NoSuitableBackendError is raised when no backend satisfies the
// requested qubit capacity, or the busy-ness query itself failed.
type NoSuitableBackendError struct {
	Qubits int
	Cause  error
}

func (e *NoSuitableBackendError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("no suitable backend found for %d qubits", e.Qubits)
	}
	return fmt.Sprintf("no suitable backend found for %d qubits: %s", e.Qubits, e.Cause.Error())
}

func (e *NoSuitableBackendError) Unwrap() error {
	return e.Cause
}

// JobFailureError means the backend reported that the run itself
// failed. It carries the backend's own error message and is always
// fatal to the submission attempt.
type JobFailureError struct {
	JobID   string
	Message string
	Cause   error
}

func (e *JobFailureError) Error() string {
	return fmt.Sprintf("job failure %s: %s", e.JobID, e.Message)
}

func (e *JobFailureError) Unwrap() error {
	return e.Cause
}

// SourceError is a circuit parse or translation failure, carrying the
// translator's structured diagnostic when one is available.
type SourceError struct {
	Path    string
	Diag    string
	Cause   error
	Message string
}

func (e *SourceError) Error() string {
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", e.Path, msg)
	}
	if e.Diag != "" {
		msg = fmt.Sprintf("%s %s", msg, e.Diag)
	}
	return msg
}

func (e *SourceError) Unwrap() error {
	return e.Cause
}

// ExitCode maps an error to the process exit code contract. Anything
// the taxonomy does not recognize is an uncategorized ecosystem error.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var argErr *ArgumentError
	if errors.As(err, &argErr) {
		return ExitArgument
	}
	var (
		rtErr  *RuntimeError
		bnfErr *BackendNotFoundError
		nsbErr *NoSuitableBackendError
		jfErr  *JobFailureError
		srcErr *SourceError
	)
	if errors.As(err, &rtErr) || errors.As(err, &bnfErr) ||
		errors.As(err, &nsbErr) || errors.As(err, &jfErr) || errors.As(err, &srcErr) {
		return ExitRuntime
	}
	return ExitEcosystem
}

// ErrorCategory returns the taxonomy name printed before the message on
// the error stream.
func ErrorCategory(err error) string {
	var argErr *ArgumentError
	if errors.As(err, &argErr) {
		return "ArgumentError"
	}
	var bnfErr *BackendNotFoundError
	if errors.As(err, &bnfErr) {
		return "BackendNotFound"
	}
	var nsbErr *NoSuitableBackendError
	if errors.As(err, &nsbErr) {
		return "NoSuitableBackend"
	}
	var jfErr *JobFailureError
	if errors.As(err, &jfErr) {
		return "JobFailure"
	}
	var srcErr *SourceError
	if errors.As(err, &srcErr) {
		return "SourceError"
	}
	var rtErr *RuntimeError
	if errors.As(err, &rtErr) {
		return "RuntimeError"
	}
	return "Error"
}
