package backends

import (
	"strconv"

	"github.com/go-drift/canopy/pkg/element"
	"github.com/go-drift/canopy/pkg/graphics"
)

// Hello fills the largest circle that fits its element's bounds.
// Attributes: fill. Each pointer press increments the clicks attribute.
type Hello struct {
	element.BackendBase
	fill   graphics.Color
	clicks int
}

// NewHello is the factory for TagHello.
func NewHello(w element.Weak) element.Backend {
	h := &Hello{BackendBase: element.NewBackendBase(w), fill: DefaultFill}
	if n, ok := w.Upgrade(); ok {
		if v, ok := n.Attribute(AttrFill); ok {
			h.fill = parseColor(TagHello, AttrFill, v, DefaultFill)
		}
	}
	return h
}

// AttributeChanged implements element.AttributeObserver.
func (h *Hello) AttributeChanged(name, _, value string) {
	if name == AttrFill {
		h.fill = parseColor(TagHello, name, value, DefaultFill)
	}
}

// Render implements element.Renderer.
func (h *Hello) Render() (element.DrawFunc, error) {
	n, err := h.Node()
	if err != nil {
		return nil, err
	}
	center, radius := inscribed(n.Size())
	if radius <= 0 {
		return nil, nil
	}
	paint := graphics.FillPaint(h.fill)
	return func(p graphics.Painter) {
		p.DrawCircle(center, radius, paint)
	}, nil
}

// HandlePointer implements element.PointerHandler.
func (h *Hello) HandlePointer(ev element.PointerEvent) bool {
	if ev.Kind != element.PointerDown {
		return false
	}
	n, err := h.Node()
	if err != nil {
		return false
	}
	h.clicks++
	_ = n.SetAttribute(AttrClicks, strconv.Itoa(h.clicks))
	return true
}
