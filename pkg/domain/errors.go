package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrLayoutNotFound is returned by a LayoutStore when no layout has been
// persisted under the requested routine name.
var ErrLayoutNotFound = errors.New("layout not found")

// ErrStopped indicates the engine received a stop signal.
var ErrStopped = errors.New("engine stopped")

// ActuatorError wraps a failure of the external actuator. It is fatal: the
// engine has no safe fallback and transitions to Stopped.
type ActuatorError struct {
	Op  string
	Err error
}

func (e *ActuatorError) Error() string {
	return fmt.Sprintf("actuator %s: %v", e.Op, e.Err)
}

func (e *ActuatorError) Unwrap() error { return e.Err }

// Diagnostic is a local compile failure: the offending line is dropped and
// compilation continues.
type Diagnostic struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %s", d.Line, d.Message)
}

// CompileError is a global compile failure (unresolved jump target or
// duplicate label): the whole routine is rejected.
type CompileError struct {
	Diagnostics []Diagnostic
}

func (e *CompileError) Error() string {
	if len(e.Diagnostics) == 1 {
		return "compile failed: " + e.Diagnostics[0].String()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "compile failed with %d errors:\n", len(e.Diagnostics))
	for _, d := range e.Diagnostics {
		fmt.Fprintf(&b, "  %s\n", d.String())
	}
	return b.String()
}
