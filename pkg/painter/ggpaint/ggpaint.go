// Package ggpaint implements graphics.Painter on top of a gogpu/gg Context.
package ggpaint

import (
	"io"

	"github.com/gogpu/gg"

	"github.com/go-drift/canopy/pkg/errors"
	"github.com/go-drift/canopy/pkg/graphics"
)

// Painter adapts a *gg.Context. Fill and stroke failures are logged and
// kept; Err returns the first one.
type Painter struct {
	ctx *gg.Context
	err error
}

// New returns a painter over a new gg context of the given size.
func New(width, height int) *Painter {
	return &Painter{ctx: gg.NewContext(width, height)}
}

// Wrap returns a painter drawing into an existing context.
func Wrap(ctx *gg.Context) *Painter {
	return &Painter{ctx: ctx}
}

// Context returns the underlying gg context.
func (p *Painter) Context() *gg.Context {
	return p.ctx
}

// Err returns the first rendering error, if any.
func (p *Painter) Err() error {
	return p.err
}

// EncodePNG writes the surface as PNG.
func (p *Painter) EncodePNG(w io.Writer) error {
	return p.ctx.EncodePNG(w)
}

// Close releases the context.
func (p *Painter) Close() error {
	return p.ctx.Close()
}

func (p *Painter) Save() {
	p.ctx.Push()
}

func (p *Painter) Restore() {
	p.ctx.Pop()
}

func (p *Painter) Translate(dx, dy float64) {
	p.ctx.Translate(dx, dy)
}

func (p *Painter) ClipRect(rect graphics.Rect) {
	p.ctx.ClipRect(rect.Left, rect.Top, rect.Width(), rect.Height())
}

func (p *Painter) Clear(c graphics.Color) {
	p.ctx.ClearWithColor(gg.RGBA2(c.RGBAF()))
}

func (p *Painter) DrawRect(rect graphics.Rect, paint graphics.Paint) {
	p.paint(paint, func() {
		p.ctx.DrawRectangle(rect.Left, rect.Top, rect.Width(), rect.Height())
	})
}

func (p *Painter) DrawCircle(center graphics.Offset, radius float64, paint graphics.Paint) {
	if radius <= 0 {
		return
	}
	p.paint(paint, func() {
		p.ctx.DrawCircle(center.X, center.Y, radius)
	})
}

// DrawLine strokes the segment regardless of paint style.
func (p *Painter) DrawLine(start, end graphics.Offset, paint graphics.Paint) {
	p.ctx.SetRGBA(paint.Color.RGBAF())
	p.ctx.SetLineWidth(paint.EffectiveStrokeWidth())
	p.ctx.DrawLine(start.X, start.Y, end.X, end.Y)
	p.check("stroke", p.ctx.Stroke())
}

func (p *Painter) Size() graphics.Size {
	return graphics.Size{Width: float64(p.ctx.Width()), Height: float64(p.ctx.Height())}
}

// paint builds the path with shape and fills and/or strokes it. gg clears
// the path after each operation, so the shape is rebuilt per pass.
func (p *Painter) paint(paint graphics.Paint, shape func()) {
	p.ctx.SetRGBA(paint.Color.RGBAF())
	if paint.Style.Fills() {
		shape()
		p.check("fill", p.ctx.Fill())
	}
	if paint.Style.Strokes() {
		p.ctx.SetLineWidth(paint.EffectiveStrokeWidth())
		shape()
		p.check("stroke", p.ctx.Stroke())
	}
}

func (p *Painter) check(op string, err error) {
	if err == nil {
		return
	}
	errors.Logger().Warn("gg painter operation failed", "op", op, "err", err)
	if p.err == nil {
		p.err = err
	}
}
