package graphics

import "fmt"

// PaintStyle describes how shapes are filled or stroked.
type PaintStyle int

const (
	// PaintStyleFill fills the shape interior.
	PaintStyleFill PaintStyle = iota

	// PaintStyleStroke draws only the outline.
	PaintStyleStroke

	// PaintStyleFillAndStroke fills and then strokes the outline.
	PaintStyleFillAndStroke
)

// String returns a human-readable representation of the paint style.
func (s PaintStyle) String() string {
	switch s {
	case PaintStyleFill:
		return "fill"
	case PaintStyleStroke:
		return "stroke"
	case PaintStyleFillAndStroke:
		return "fill_and_stroke"
	default:
		return fmt.Sprintf("PaintStyle(%d)", int(s))
	}
}

// Fills reports whether the style paints the shape interior.
func (s PaintStyle) Fills() bool {
	return s == PaintStyleFill || s == PaintStyleFillAndStroke
}

// Strokes reports whether the style paints the outline.
func (s PaintStyle) Strokes() bool {
	return s == PaintStyleStroke || s == PaintStyleFillAndStroke
}

// Paint describes how a primitive is drawn.
type Paint struct {
	Color       Color
	Style       PaintStyle // Fill, stroke, or both
	StrokeWidth float64    // Width of stroke in pixels; <= 0 means 1
}

// DefaultPaint returns an opaque black fill.
func DefaultPaint() Paint {
	return Paint{Color: ColorBlack, Style: PaintStyleFill, StrokeWidth: 1}
}

// FillPaint returns a fill paint with the given color.
func FillPaint(c Color) Paint {
	return Paint{Color: c, Style: PaintStyleFill, StrokeWidth: 1}
}

// StrokePaint returns a stroke paint with the given color and width.
func StrokePaint(c Color, width float64) Paint {
	return Paint{Color: c, Style: PaintStyleStroke, StrokeWidth: width}
}

// EffectiveStrokeWidth returns the stroke width, substituting 1 for unset values.
func (p Paint) EffectiveStrokeWidth() float64 {
	if p.StrokeWidth <= 0 {
		return 1
	}
	return p.StrokeWidth
}
