package depot

import (
	"fmt"

	"github.com/rotisserie/eris"
)

// ErrSystemFailed is the cause every SystemError matches with errors.Is.
var ErrSystemFailed = eris.New("system failed")

type LockedWorldError struct{}

func (e LockedWorldError) Error() string {
	return "world is currently locked"
}

// StructuralChangeError is the panic raised when a world changes shape while a
// query over it is being iterated.
type StructuralChangeError struct{}

func (e StructuralChangeError) Error() string {
	return "world structure changed during query iteration; queue changes on a CommandBuffer"
}

type ComponentLimitError struct {
	Component Component
}

func (e ComponentLimitError) Error() string {
	return fmt.Sprintf("cannot register %v: world already holds %d component types", e.Component, MaxComponentTypes)
}

type DuplicateSystemError struct {
	Name string
}

func (e DuplicateSystemError) Error() string {
	return fmt.Sprintf("system %q is already registered", e.Name)
}

type AccessConflictError struct {
	Stage  Stage
	First  string
	Second string
}

func (e AccessConflictError) Error() string {
	return fmt.Sprintf("systems %q and %q declare conflicting access in stage %s", e.First, e.Second, e.Stage)
}

// SystemError reports a system that returned an error or panicked.
type SystemError struct {
	Stage  Stage
	System string
	Err    error
	// Panic holds the recovered value when the system panicked.
	Panic any
	Stack []byte
}

func (e *SystemError) Error() string {
	if e.Panic != nil {
		return fmt.Sprintf("system %q in stage %s panicked: %v", e.System, e.Stage, e.Panic)
	}
	return fmt.Sprintf("system %q in stage %s failed: %v", e.System, e.Stage, e.Err)
}

func (e *SystemError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrSystemFailed}
	}
	return []error{ErrSystemFailed, e.Err}
}
