package backends

import (
	"github.com/go-drift/canopy/pkg/element"
	"github.com/go-drift/canopy/pkg/errors"
	"github.com/go-drift/canopy/pkg/graphics"
)

// Ring strokes a circle inset so the whole stroke stays inside its bounds.
// Attributes: stroke, stroke-width.
type Ring struct {
	element.BackendBase
	stroke graphics.Color
	width  float64
}

// NewRing is the factory for TagRing.
func NewRing(w element.Weak) element.Backend {
	r := &Ring{BackendBase: element.NewBackendBase(w), stroke: DefaultStroke, width: DefaultStrokeWidth}
	if n, ok := w.Upgrade(); ok {
		for name, v := range n.Attributes() {
			r.AttributeChanged(name, "", v)
		}
	}
	return r
}

// AttributeChanged implements element.AttributeObserver.
func (r *Ring) AttributeChanged(name, _, value string) {
	switch name {
	case AttrStroke:
		r.stroke = parseColor(TagRing, name, value, DefaultStroke)
	case AttrStrokeWidth:
		r.width = parseWidth(TagRing, value, DefaultStrokeWidth)
	}
}

// Render implements element.Renderer.
func (r *Ring) Render() (element.DrawFunc, error) {
	n, err := r.Node()
	if err != nil {
		return nil, err
	}
	center, radius := inscribed(n.Size())
	radius -= r.width / 2
	if radius <= 0 || r.width == 0 {
		return nil, nil
	}
	paint := graphics.StrokePaint(r.stroke, r.width)
	return func(p graphics.Painter) {
		p.DrawCircle(center, radius, paint)
	}, nil
}

// Detach implements element.Disposer.
func (r *Ring) Detach() {
	if n, ok := r.Element().Upgrade(); ok {
		errors.Logger().Debug("ring detached", "node", n.Handle().String())
	}
}
