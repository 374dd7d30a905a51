package backends

import (
	"github.com/go-drift/canopy/pkg/element"
	"github.com/go-drift/canopy/pkg/graphics"
)

// Box fills its bounds and optionally outlines them.
// Attributes: fill, stroke, stroke-width. Without a stroke attribute no
// outline is drawn.
type Box struct {
	element.BackendBase
}

// NewBox is the factory for TagBox.
func NewBox(w element.Weak) element.Backend {
	return &Box{BackendBase: element.NewBackendBase(w)}
}

// Render implements element.Renderer. Box reads attributes on every render
// instead of caching them and captures its primitives as a display list.
func (b *Box) Render() (element.DrawFunc, error) {
	n, err := b.Node()
	if err != nil {
		return nil, err
	}
	size := n.Size()
	if size.IsEmpty() {
		return nil, nil
	}
	rect := graphics.RectFromLTWH(0, 0, size.Width, size.Height)

	fillValue, _ := n.Attribute(AttrFill)
	fill := graphics.FillPaint(parseColor(TagBox, AttrFill, fillValue, DefaultFill))

	strokeValue, outlined := n.Attribute(AttrStroke)
	widthValue, _ := n.Attribute(AttrStrokeWidth)
	stroke := graphics.StrokePaint(
		parseColor(TagBox, AttrStroke, strokeValue, DefaultStroke),
		parseWidth(TagBox, widthValue, DefaultStrokeWidth),
	)

	var rec graphics.PictureRecorder
	p := rec.BeginRecording(size)
	p.DrawRect(rect, fill)
	if outlined {
		p.DrawRect(rect, stroke)
	}
	return rec.EndRecording().Paint, nil
}
