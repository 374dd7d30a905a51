// Package termpaint renders painter commands onto a terminal cell grid.
//
// Every cell covers a fixed CellWidth x CellHeight area of the surface and is
// painted as a solid background block when its center falls inside a shape.
// Terminals cannot blend, so any non-transparent color is drawn opaque.
package termpaint

import (
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/go-drift/canopy/pkg/graphics"
)

// Default cell metrics in surface units. Terminal cells are roughly twice as
// tall as they are wide.
const (
	DefaultCellWidth  = 4
	DefaultCellHeight = 8
)

// Screen is the part of tcell.Screen the painter draws through.
type Screen interface {
	Size() (width, height int)
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
}

type state struct {
	origin graphics.Offset
	clip   graphics.Rect
}

// Painter implements graphics.Painter over a Screen.
type Painter struct {
	screen       Screen
	cellW, cellH float64
	cur          state
	stack        []state
}

// Option configures a Painter.
type Option func(*Painter)

// WithCellSize overrides the surface area covered by one cell.
func WithCellSize(width, height float64) Option {
	return func(p *Painter) {
		if width > 0 && height > 0 {
			p.cellW, p.cellH = width, height
		}
	}
}

// New returns a painter drawing to screen.
func New(screen Screen, opts ...Option) *Painter {
	p := &Painter{screen: screen, cellW: DefaultCellWidth, cellH: DefaultCellHeight}
	for _, opt := range opts {
		opt(p)
	}
	p.Reset()
	return p
}

// unclipped covers any surface; cover clamps to the screen on every call,
// so resizing the screen needs no painter update.
var unclipped = graphics.Rect{Left: -math.MaxFloat64, Top: -math.MaxFloat64, Right: math.MaxFloat64, Bottom: math.MaxFloat64}

// Reset drops saved states, the translation and the clip.
func (p *Painter) Reset() {
	p.stack = p.stack[:0]
	p.cur = state{clip: unclipped}
}

// CellToSurface maps a cell to the surface point at its center.
func (p *Painter) CellToSurface(x, y int) graphics.Offset {
	return graphics.Offset{X: (float64(x) + 0.5) * p.cellW, Y: (float64(y) + 0.5) * p.cellH}
}

// SurfaceSize returns the surface size covered by a screen of cols x rows.
func (p *Painter) SurfaceSize(cols, rows int) graphics.Size {
	return graphics.Size{Width: float64(cols) * p.cellW, Height: float64(rows) * p.cellH}
}

func (p *Painter) Size() graphics.Size {
	return p.SurfaceSize(p.screen.Size())
}

func (p *Painter) Save() {
	p.stack = append(p.stack, p.cur)
}

func (p *Painter) Restore() {
	if n := len(p.stack); n > 0 {
		p.cur = p.stack[n-1]
		p.stack = p.stack[:n-1]
	}
}

func (p *Painter) Translate(dx, dy float64) {
	p.cur.origin = p.cur.origin.Add(graphics.Offset{X: dx, Y: dy})
}

func (p *Painter) ClipRect(rect graphics.Rect) {
	p.cur.clip = p.cur.clip.Intersect(rect.Translate(p.cur.origin.X, p.cur.origin.Y))
}

func (p *Painter) Clear(c graphics.Color) {
	cols, rows := p.screen.Size()
	style := cellStyle(c)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			p.screen.SetContent(x, y, ' ', nil, style)
		}
	}
}

func (p *Painter) DrawRect(rect graphics.Rect, paint graphics.Paint) {
	r := rect.Translate(p.cur.origin.X, p.cur.origin.Y)
	half := p.strokeReach(paint)
	outer, inner := r.Inflate(half), r.Inflate(-half)
	p.cover(outer, paint.Color, func(pt graphics.Offset) bool {
		if paint.Style.Fills() && r.Contains(pt) {
			return true
		}
		return paint.Style.Strokes() && outer.Contains(pt) && !inner.Contains(pt)
	})
}

func (p *Painter) DrawCircle(center graphics.Offset, radius float64, paint graphics.Paint) {
	if radius <= 0 {
		return
	}
	c := center.Add(p.cur.origin)
	half := p.strokeReach(paint)
	bounds := graphics.Rect{Left: c.X - radius, Top: c.Y - radius, Right: c.X + radius, Bottom: c.Y + radius}
	p.cover(bounds.Inflate(half), paint.Color, func(pt graphics.Offset) bool {
		d := math.Hypot(pt.X-c.X, pt.Y-c.Y)
		if paint.Style.Fills() && d <= radius {
			return true
		}
		return paint.Style.Strokes() && math.Abs(d-radius) <= half
	})
}

func (p *Painter) DrawLine(start, end graphics.Offset, paint graphics.Paint) {
	a, b := start.Add(p.cur.origin), end.Add(p.cur.origin)
	half := p.strokeReach(paint)
	bounds := graphics.Rect{
		Left:   math.Min(a.X, b.X),
		Top:    math.Min(a.Y, b.Y),
		Right:  math.Max(a.X, b.X),
		Bottom: math.Max(a.Y, b.Y),
	}
	p.cover(bounds.Inflate(half), paint.Color, func(pt graphics.Offset) bool {
		return segmentDistance(pt, a, b) <= half
	})
}

// strokeReach is half the stroke width, widened to half a cell so thin
// outlines still land on the grid.
func (p *Painter) strokeReach(paint graphics.Paint) float64 {
	return math.Max(paint.EffectiveStrokeWidth()/2, math.Max(p.cellW, p.cellH)/2)
}

// cover paints every cell in bounds whose center satisfies inside.
func (p *Painter) cover(bounds graphics.Rect, c graphics.Color, inside func(graphics.Offset) bool) {
	if c.Alpha() == 0 {
		return
	}
	area := bounds.Intersect(p.cur.clip)
	if area.IsEmpty() {
		return
	}
	cols, rows := p.screen.Size()
	x0 := max(0, int(math.Floor(area.Left/p.cellW)))
	y0 := max(0, int(math.Floor(area.Top/p.cellH)))
	x1 := min(cols, int(math.Ceil(area.Right/p.cellW)))
	y1 := min(rows, int(math.Ceil(area.Bottom/p.cellH)))
	style := cellStyle(c)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			pt := p.CellToSurface(x, y)
			if area.Contains(pt) && inside(pt) {
				p.screen.SetContent(x, y, ' ', nil, style)
			}
		}
	}
}

func cellStyle(c graphics.Color) tcell.Style {
	r, g, b, _ := c.Components()
	return tcell.StyleDefault.Background(tcell.NewRGBColor(int32(r), int32(g), int32(b)))
}

func segmentDistance(p, a, b graphics.Offset) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(p.X-(a.X+t*dx), p.Y-(a.Y+t*dy))
}
