// Package errors provides structured error handling for the lifecycle runtime.
//
// Errors raised by user-supplied actions (effect setup, effect cleanup,
// unmount callbacks, render functions) are never propagated into the host
// runtime. They are recovered at the call boundary, wrapped in one of the
// types below and sent to the global [ErrorHandler].
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindPanic indicates a recovered panic outside of a user action.
	KindPanic
	// KindBuild indicates a build-time component error.
	KindBuild
	// KindCommit indicates a failure inside a commit hook.
	KindCommit
	// KindEffect indicates a failure inside an effect setup action.
	KindEffect
	// KindCleanup indicates a failure inside an effect cleanup action.
	KindCleanup
	// KindUnmount indicates a failure inside an unmount action.
	KindUnmount
)

func (k ErrorKind) String() string {
	switch k {
	case KindPanic:
		return "panic"
	case KindBuild:
		return "build"
	case KindCommit:
		return "commit"
	case KindEffect:
		return "effect"
	case KindCleanup:
		return "cleanup"
	case KindUnmount:
		return "unmount"
	default:
		return "unknown"
	}
}

// LifecycleError represents a contained failure of a user-supplied action.
type LifecycleError struct {
	// Op is the operation that failed (e.g., "lifecycle.Effect.setup").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Component is the type name of the owning component, if known.
	Component string
	// Err is the error returned by the action (nil for panics).
	Err error
	// Recovered is the panic value (nil for returned errors).
	Recovered any
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *LifecycleError) Error() string {
	op := e.Op
	if e.Component != "" {
		op = fmt.Sprintf("%s component=%s", e.Op, e.Component)
	}
	if e.Recovered != nil {
		return fmt.Sprintf("panic in %s [%s]: %v", op, e.Kind, e.Recovered)
	}
	return fmt.Sprintf("%s [%s]: %v", op, e.Kind, e.Err)
}

func (e *LifecycleError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "scheduler.task").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// BuildError represents a failure during component build.
type BuildError struct {
	// Component is the type name of the component that failed.
	Component string
	// Element is the element id.
	Element string
	// Recovered is the panic value (nil for regular errors).
	Recovered any
	// Err is the underlying error (nil for panics).
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *BuildError) Error() string {
	if e.Recovered != nil {
		return fmt.Sprintf("panic in %s.Build(): %v", e.Component, e.Recovered)
	}
	if e.Err != nil {
		return fmt.Sprintf("error in %s.Build(): %v", e.Component, e.Err)
	}
	return fmt.Sprintf("unknown error in %s.Build()", e.Component)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// ErrorHandler receives errors reported by the runtime.
type ErrorHandler interface {
	// HandleError is called when a user action fails.
	HandleError(err *LifecycleError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
	// HandleBuildError is called when a component build fails.
	HandleBuildError(err *BuildError)
}
