package element

import "errors"

var (
	// ErrStaleBackend indicates a backend's element has been destroyed.
	ErrStaleBackend = errors.New("stale backend: element destroyed")

	// ErrDestroyed indicates an operation on a destroyed node.
	ErrDestroyed = errors.New("element destroyed")

	// ErrBackendAttached indicates a second attempt to attach a backend.
	ErrBackendAttached = errors.New("element already has a backend")

	// ErrNilBackend indicates a factory returned no backend.
	ErrNilBackend = errors.New("backend is nil")

	// ErrForeignBackend indicates a backend bound to a different node.
	ErrForeignBackend = errors.New("backend is bound to another element")

	// ErrForeignNode indicates nodes from different trees were combined.
	ErrForeignNode = errors.New("element belongs to another tree")

	// ErrCycle indicates an insertion that would make a node its own ancestor.
	ErrCycle = errors.New("insertion would create a cycle")

	// ErrIsRoot indicates the tree root was used where a detached node is required.
	ErrIsRoot = errors.New("element is the tree root")
)
