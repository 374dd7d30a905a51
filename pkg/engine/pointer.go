package engine

import (
	"time"

	"github.com/go-drift/canopy/pkg/element"
	"github.com/go-drift/canopy/pkg/errors"
	"github.com/go-drift/canopy/pkg/graphics"
)

// HandlePointer delivers ev to the topmost visible node under the pointer
// whose backend handles pointers and consumes the event. Nodes without a
// PointerHandler are skipped, matching hit testing where decorations don't
// absorb input. It returns the handle of the consuming node.
func (e *Engine) HandlePointer(kind element.PointerKind, position graphics.Offset) (element.Handle, bool) {
	e.frameLock.Lock()
	defer e.frameLock.Unlock()

	for _, n := range e.tree.HitTest(position) {
		handler, ok := n.Backend().(element.PointerHandler)
		if !ok {
			continue
		}
		ev := element.PointerEvent{
			Kind:     kind,
			Position: position,
			Local: graphics.Offset{
				X: position.X - n.Bounds().Left,
				Y: position.Y - n.Bounds().Top,
			},
		}
		if dispatchPointer(n.Tag(), handler, ev) {
			e.needsFrame.Store(true)
			return n.Handle(), true
		}
	}
	return element.Handle{}, false
}

// dispatchPointer calls the handler, treating a panic as not consumed.
func dispatchPointer(tag string, h element.PointerHandler, ev element.PointerEvent) (consumed bool) {
	defer func() {
		if r := recover(); r != nil {
			errors.ReportPanic(&errors.PanicError{
				Op:         "engine.HandlePointer(" + tag + ")",
				Value:      r,
				StackTrace: errors.CaptureStack(),
				Timestamp:  time.Now(),
			})
			consumed = false
		}
	}()
	return h.HandlePointer(ev)
}
