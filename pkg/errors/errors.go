// Package errors provides structured error handling for the Canopy runtime.
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
	// KindRegistry indicates a backend registration failure.
	KindRegistry
	// KindConstruct indicates an element construction failure (e.g. unknown tag).
	KindConstruct
	// KindRender indicates a rendering error.
	KindRender
	// KindStale indicates a backend outlived its element.
	KindStale
	// KindPanic indicates a recovered panic.
	KindPanic
	// KindConfig indicates a configuration error.
	KindConfig
	// KindScript indicates a script bridge error.
	KindScript
)

func (k ErrorKind) String() string {
	switch k {
	case KindRegistry:
		return "registry"
	case KindConstruct:
		return "construct"
	case KindRender:
		return "render"
	case KindStale:
		return "stale"
	case KindPanic:
		return "panic"
	case KindConfig:
		return "config"
	case KindScript:
		return "script"
	default:
		return "unknown"
	}
}

// CanopyError represents a structured error in the Canopy runtime.
type CanopyError struct {
	// Op is the operation that failed (e.g., "registry.Register").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Tag is the element tag involved, if applicable.
	Tag string
	// Err is the underlying error.
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *CanopyError) Error() string {
	if e.Tag != "" {
		return fmt.Sprintf("%s [%s] tag=%s: %v", e.Op, e.Kind, e.Tag, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *CanopyError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "pipeline.Compositor").
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

// RenderPhase identifies where in a paint cycle a fault occurred.
type RenderPhase string

const (
	// PhaseCollect is the phase in which backends produce draw closures.
	PhaseCollect RenderPhase = "collect"
	// PhaseExecute is the phase in which draw closures run against a painter.
	PhaseExecute RenderPhase = "execute"
)

// RenderError represents a fault isolated to one element during a paint cycle.
type RenderError struct {
	// Tag is the tag of the element whose backend failed.
	Tag string
	// Node is a printable identity of the element.
	Node string
	// Phase is the paint phase in which the fault happened.
	Phase RenderPhase
	// Recovered is the panic value (nil for regular errors).
	Recovered any
	// Err is the underlying error (nil for panics).
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *RenderError) Error() string {
	if e.Recovered != nil {
		return fmt.Sprintf("panic in %s backend %s (%s): %v", e.Tag, e.Node, e.Phase, e.Recovered)
	}
	if e.Err != nil {
		return fmt.Sprintf("error in %s backend %s (%s): %v", e.Tag, e.Node, e.Phase, e.Err)
	}
	return fmt.Sprintf("unknown error in %s backend %s (%s)", e.Tag, e.Node, e.Phase)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// ErrorHandler receives errors reported by the Canopy runtime.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *CanopyError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
	// HandleRenderError is called when a backend fails during a paint cycle.
	HandleRenderError(err *RenderError)
}
