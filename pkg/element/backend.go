package element

import "github.com/go-drift/canopy/pkg/graphics"

// Backend is a native extension attached 1:1 to a node. It is created by a
// BackendFactory when the node is constructed and lives exactly as long as
// the node. Element returns the weak reference the backend was bound with.
type Backend interface {
	Element() Weak
}

// BackendFactory constructs a backend bound to a freshly created node.
// Factories must not fail for well-formed input; violated preconditions are
// programming errors and may panic.
type BackendFactory func(element Weak) Backend

// DrawFunc paints a captured snapshot of an element. It must only use values
// captured when it was produced and must not touch live node state, so it can
// run later, repeatedly, or on another goroutine.
type DrawFunc func(p graphics.Painter)

// Renderer is implemented by backends that draw. Render is called once per
// paint pass for visible nodes; it captures what it needs and returns a
// DrawFunc without drawing inline. A nil DrawFunc contributes nothing.
// Backends whose element is gone return ErrStaleBackend.
type Renderer interface {
	Render() (DrawFunc, error)
}

// AttributeObserver is notified when an attribute of its node changes.
type AttributeObserver interface {
	AttributeChanged(name, old, value string)
}

// PointerKind identifies the phase of a pointer event.
type PointerKind int

const (
	PointerDown PointerKind = iota
	PointerMove
	PointerUp
)

// PointerEvent is delivered to the topmost node under the pointer.
type PointerEvent struct {
	Kind PointerKind
	// Position is in surface coordinates.
	Position graphics.Offset
	// Local is relative to the node's top-left corner.
	Local graphics.Offset
}

// PointerHandler receives pointer events hit-tested to its node. It returns
// true when the event was consumed.
type PointerHandler interface {
	HandlePointer(ev PointerEvent) bool
}

// Disposer is called when the node is being destroyed, before its handle is
// invalidated. The node is still fully intact during the call.
type Disposer interface {
	Detach()
}

// BackendBase carries the weak reference every backend needs. Embed it and
// construct it with NewBackendBase.
type BackendBase struct {
	element Weak
}

// NewBackendBase returns a base bound to the given node reference.
func NewBackendBase(element Weak) BackendBase {
	return BackendBase{element: element}
}

// Element returns the weak reference to the owning node.
func (b *BackendBase) Element() Weak {
	return b.element
}

// Node upgrades the weak reference, returning ErrStaleBackend if the node is gone.
func (b *BackendBase) Node() (*Node, error) {
	n, ok := b.element.Upgrade()
	if !ok {
		return nil, ErrStaleBackend
	}
	return n, nil
}
