// Package raster implements graphics.Painter in software on an *image.RGBA
// using golang.org/x/image/vector for anti-aliased coverage.
package raster

import (
	"image"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/vector"

	"github.com/go-drift/canopy/pkg/graphics"
)

// kappa is the control point distance for a quarter circle cubic Bézier.
const kappa = 0.5522847498307936

type state struct {
	origin graphics.Offset
	clip   image.Rectangle
}

// Painter rasterizes primitives immediately into an RGBA image.
type Painter struct {
	dst   *image.RGBA
	cur   state
	stack []state
	z     vector.Rasterizer
}

// New returns a painter over a new transparent image.
func New(width, height int) *Painter {
	return NewForImage(image.NewRGBA(image.Rect(0, 0, width, height)))
}

// NewForImage returns a painter drawing into dst.
func NewForImage(dst *image.RGBA) *Painter {
	return &Painter{dst: dst, cur: state{clip: dst.Bounds()}}
}

// Image returns the destination image.
func (p *Painter) Image() *image.RGBA {
	return p.dst
}

// EncodePNG writes the image as PNG.
func (p *Painter) EncodePNG(w io.Writer) error {
	return png.Encode(w, p.dst)
}

func (p *Painter) Save() {
	p.stack = append(p.stack, p.cur)
}

func (p *Painter) Restore() {
	if len(p.stack) == 0 {
		return
	}
	p.cur = p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
}

func (p *Painter) Translate(dx, dy float64) {
	p.cur.origin = p.cur.origin.Add(graphics.Offset{X: dx, Y: dy})
}

func (p *Painter) ClipRect(rect graphics.Rect) {
	r := p.device(rect)
	p.cur.clip = p.cur.clip.Intersect(image.Rect(
		int(math.Floor(r.Left)), int(math.Floor(r.Top)),
		int(math.Ceil(r.Right)), int(math.Ceil(r.Bottom)),
	))
}

// Clear fills the whole surface, ignoring the clip.
func (p *Painter) Clear(c graphics.Color) {
	draw.Draw(p.dst, p.dst.Bounds(), image.NewUniform(c.NRGBA()), image.Point{}, draw.Src)
}

func (p *Painter) DrawRect(rect graphics.Rect, paint graphics.Paint) {
	r := p.device(rect)
	if paint.Style.Fills() {
		p.fill(paint.Color, func(b *builder) { b.rect(r, false) })
	}
	if paint.Style.Strokes() {
		half := paint.EffectiveStrokeWidth() / 2
		p.fill(paint.Color, func(b *builder) {
			b.rect(r.Inflate(half), false)
			if inner := r.Inflate(-half); !inner.IsEmpty() {
				b.rect(inner, true)
			}
		})
	}
}

func (p *Painter) DrawCircle(center graphics.Offset, radius float64, paint graphics.Paint) {
	if radius <= 0 {
		return
	}
	c := center.Add(p.cur.origin)
	if paint.Style.Fills() {
		p.fill(paint.Color, func(b *builder) { b.circle(c, radius, false) })
	}
	if paint.Style.Strokes() {
		half := paint.EffectiveStrokeWidth() / 2
		p.fill(paint.Color, func(b *builder) {
			b.circle(c, radius+half, false)
			if radius > half {
				b.circle(c, radius-half, true)
			}
		})
	}
}

// DrawLine strokes the segment with butt caps regardless of paint style.
func (p *Painter) DrawLine(start, end graphics.Offset, paint graphics.Paint) {
	a, b := start.Add(p.cur.origin), end.Add(p.cur.origin)
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	half := paint.EffectiveStrokeWidth() / 2
	nx, ny := -dy/length*half, dx/length*half
	p.fill(paint.Color, func(bd *builder) {
		bd.moveTo(a.X+nx, a.Y+ny)
		bd.lineTo(b.X+nx, b.Y+ny)
		bd.lineTo(b.X-nx, b.Y-ny)
		bd.lineTo(a.X-nx, a.Y-ny)
		bd.close()
	})
}

func (p *Painter) Size() graphics.Size {
	b := p.dst.Bounds()
	return graphics.Size{Width: float64(b.Dx()), Height: float64(b.Dy())}
}

func (p *Painter) device(r graphics.Rect) graphics.Rect {
	return r.Translate(p.cur.origin.X, p.cur.origin.Y)
}

// fill rasterizes the path produced by build, restricted to the current
// clip, and composites col over the destination.
func (p *Painter) fill(col graphics.Color, build func(*builder)) {
	clip := p.cur.clip
	if clip.Empty() || col.Alpha() == 0 {
		return
	}
	p.z.Reset(clip.Dx(), clip.Dy())
	p.z.DrawOp = draw.Over
	build(&builder{z: &p.z, dx: -float64(clip.Min.X), dy: -float64(clip.Min.Y)})
	p.z.Draw(p.dst, clip, image.NewUniform(col.NRGBA()), image.Point{})
}

// builder feeds device-space paths to the rasterizer, shifted into the
// rasterizer's clip-relative space.
type builder struct {
	z      *vector.Rasterizer
	dx, dy float64
}

func (b *builder) pt(x, y float64) (float32, float32) {
	return float32(x + b.dx), float32(y + b.dy)
}

func (b *builder) moveTo(x, y float64) {
	b.z.MoveTo(b.pt(x, y))
}

func (b *builder) lineTo(x, y float64) {
	b.z.LineTo(b.pt(x, y))
}

func (b *builder) cubeTo(x1, y1, x2, y2, x3, y3 float64) {
	ax, ay := b.pt(x1, y1)
	bx, by := b.pt(x2, y2)
	cx, cy := b.pt(x3, y3)
	b.z.CubeTo(ax, ay, bx, by, cx, cy)
}

func (b *builder) close() {
	b.z.ClosePath()
}

// rect adds a rectangle; reverse flips the winding so it cuts a hole.
func (b *builder) rect(r graphics.Rect, reverse bool) {
	b.moveTo(r.Left, r.Top)
	if reverse {
		b.lineTo(r.Left, r.Bottom)
		b.lineTo(r.Right, r.Bottom)
		b.lineTo(r.Right, r.Top)
	} else {
		b.lineTo(r.Right, r.Top)
		b.lineTo(r.Right, r.Bottom)
		b.lineTo(r.Left, r.Bottom)
	}
	b.close()
}

// circle adds four cubic arcs; reverse flips the winding.
func (b *builder) circle(c graphics.Offset, r float64, reverse bool) {
	k := r * kappa
	s := 1.0
	if reverse {
		s = -1
	}
	b.moveTo(c.X+r, c.Y)
	b.cubeTo(c.X+r, c.Y+s*k, c.X+k, c.Y+s*r, c.X, c.Y+s*r)
	b.cubeTo(c.X-k, c.Y+s*r, c.X-r, c.Y+s*k, c.X-r, c.Y)
	b.cubeTo(c.X-r, c.Y-s*k, c.X-k, c.Y-s*r, c.X, c.Y-s*r)
	b.cubeTo(c.X+k, c.Y-s*r, c.X+r, c.Y-s*k, c.X+r, c.Y)
	b.close()
}
