package termpaint

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/go-drift/canopy/pkg/graphics"
)

func newScreen(t *testing.T, cols, rows int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(cols, rows)
	return screen
}

func background(screen tcell.Screen, x, y int) tcell.Color {
	_, _, style, _ := screen.GetContent(x, y)
	_, bg, _ := style.Decompose()
	return bg
}

var red = tcell.NewRGBColor(255, 0, 0)

func TestSurfaceSize(t *testing.T) {
	screen := newScreen(t, 20, 10)
	p := New(screen)
	if got, want := p.Size(), (graphics.Size{Width: 80, Height: 80}); got != want {
		t.Errorf("Size = %v, want %v", got, want)
	}
	if got := p.CellToSurface(1, 2); got != (graphics.Offset{X: 6, Y: 20}) {
		t.Errorf("CellToSurface = %v", got)
	}
}

func TestFillCircle(t *testing.T) {
	screen := newScreen(t, 20, 10)
	p := New(screen)
	p.DrawCircle(graphics.Offset{X: 40, Y: 40}, 20, graphics.FillPaint(graphics.RGB(255, 0, 0)))

	// Cell (10, 5) is centered at (42, 44).
	if bg := background(screen, 10, 5); bg != red {
		t.Errorf("center cell bg = %v, want red", bg)
	}
	if bg := background(screen, 0, 0); bg == red {
		t.Error("corner cell should not be painted")
	}
}

func TestTranslateAndClip(t *testing.T) {
	screen := newScreen(t, 20, 10)
	p := New(screen)
	p.Save()
	p.Translate(40, 0)
	p.ClipRect(graphics.RectFromLTWH(0, 0, 8, 16))
	p.DrawRect(graphics.RectFromLTWH(0, 0, 40, 40), graphics.FillPaint(graphics.RGB(255, 0, 0)))
	p.Restore()

	if bg := background(screen, 10, 0); bg != red {
		t.Errorf("cell (10,0) bg = %v, want red", bg)
	}
	if bg := background(screen, 12, 0); bg == red {
		t.Error("cell outside clip was painted")
	}
	if bg := background(screen, 0, 0); bg == red {
		t.Error("cell before translation was painted")
	}
}

func TestStrokeRectLeavesInterior(t *testing.T) {
	screen := newScreen(t, 20, 10)
	p := New(screen)
	p.DrawRect(graphics.RectFromLTWH(0, 0, 80, 80), graphics.StrokePaint(graphics.RGB(255, 0, 0), 1))

	if bg := background(screen, 0, 4); bg != red {
		t.Errorf("edge cell bg = %v, want red", bg)
	}
	if bg := background(screen, 10, 5); bg == red {
		t.Error("interior cell should not be painted by a stroke")
	}
}

func TestClearAndTransparent(t *testing.T) {
	screen := newScreen(t, 4, 2)
	p := New(screen)
	p.Clear(graphics.RGB(255, 0, 0))
	p.DrawRect(graphics.RectFromLTWH(0, 0, 16, 16), graphics.FillPaint(graphics.ColorTransparent))
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			if bg := background(screen, x, y); bg != red {
				t.Fatalf("cell (%d,%d) bg = %v, want red", x, y, bg)
			}
		}
	}
}

func TestDrawLine(t *testing.T) {
	screen := newScreen(t, 20, 10)
	p := New(screen)
	p.DrawLine(graphics.Offset{X: 0, Y: 44}, graphics.Offset{X: 80, Y: 44}, graphics.StrokePaint(graphics.RGB(255, 0, 0), 1))
	if bg := background(screen, 7, 5); bg != red {
		t.Errorf("line cell bg = %v, want red", bg)
	}
	if bg := background(screen, 7, 2); bg == red {
		t.Error("cell off the line was painted")
	}
}
