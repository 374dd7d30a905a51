package ggpaint

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"

	"github.com/go-drift/canopy/pkg/graphics"
)

func rgbaAt(p *Painter, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(p.Context().Image().At(x, y)).(color.NRGBA)
}

func TestFillCircle(t *testing.T) {
	p := New(100, 100)
	defer p.Close()
	p.DrawCircle(graphics.Offset{X: 50, Y: 50}, 40, graphics.FillPaint(graphics.RGB(255, 0, 0)))

	if err := p.Err(); err != nil {
		t.Fatalf("Err = %v", err)
	}
	if c := rgbaAt(p, 50, 50); c.R < 250 || c.G > 5 || c.A < 250 {
		t.Errorf("center = %v, want red", c)
	}
	if c := rgbaAt(p, 3, 3); c.A != 0 {
		t.Errorf("corner = %v, want transparent", c)
	}
}

func TestTranslateSaveRestore(t *testing.T) {
	p := New(60, 60)
	defer p.Close()
	p.Save()
	p.Translate(30, 30)
	p.DrawRect(graphics.RectFromLTWH(0, 0, 20, 20), graphics.FillPaint(graphics.ColorBlack))
	p.Restore()

	if c := rgbaAt(p, 40, 40); c.A < 250 {
		t.Errorf("translated rect pixel = %v, want opaque", c)
	}
	if c := rgbaAt(p, 10, 10); c.A != 0 {
		t.Errorf("origin pixel = %v, want transparent", c)
	}
}

func TestClearAndEncode(t *testing.T) {
	p := New(10, 6)
	defer p.Close()
	p.Clear(graphics.ColorWhite)
	if c := rgbaAt(p, 9, 5); c != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("cleared = %v", c)
	}
	if p.Size() != (graphics.Size{Width: 10, Height: 6}) {
		t.Errorf("Size = %v", p.Size())
	}

	var buf bytes.Buffer
	if err := p.EncodePNG(&buf); err != nil {
		t.Fatal(err)
	}
	if _, err := png.Decode(&buf); err != nil {
		t.Errorf("invalid png: %v", err)
	}
}
