package pipeline

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/go-drift/canopy/pkg/errors"
	"github.com/go-drift/canopy/pkg/graphics"
	ctesting "github.com/go-drift/canopy/pkg/testing"
)

func TestCompositorPaintsOnItsOwnGoroutine(t *testing.T) {
	f := newFixture(t)
	f.add(f.root, "a", lineAt(1))
	f.add(f.root, "b", lineAt(2))

	p := New()
	frame, err := p.StepFrame(context.Background(), f.tree)
	if err != nil {
		t.Fatal(err)
	}

	painter := ctesting.NewRecordingPainter(graphics.Size{})
	presented := make(chan *Frame, 1)
	c := NewCompositor(p, painter, WithPresent(func(fr *Frame, _ []*errors.RenderError) {
		presented <- fr
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	if err := c.Submit(frame); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-presented:
		if got != frame {
			t.Error("presented a different frame")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("frame was never presented")
	}

	// The tree can be torn down while the frame is still replayable.
	_ = f.tree.SetRoot(nil)
	if got := painter.Count(ctesting.OpDrawLine); got != 2 {
		t.Errorf("drew %d lines, want 2", got)
	}

	cancel()
	if err := <-done; !stderrors.Is(err, context.Canceled) {
		t.Errorf("Run returned %v, want context.Canceled", err)
	}
	if err := c.Submit(frame); !stderrors.Is(err, ErrCompositorStopped) {
		t.Errorf("Submit after stop = %v, want ErrCompositorStopped", err)
	}
	if painted, _ := c.Stats(); painted != 1 {
		t.Errorf("painted = %d, want 1", painted)
	}
}

func TestCompositorKeepsLatestFrame(t *testing.T) {
	p := New()
	c := NewCompositor(p, ctesting.NewRecordingPainter(graphics.Size{}))

	first, second := &Frame{ID: 1}, &Frame{ID: 2}
	_ = c.Submit(first)
	_ = c.Submit(second)

	if _, dropped := c.Stats(); dropped != 1 {
		t.Errorf("dropped = %d, want 1", dropped)
	}
	c.mu.Lock()
	pending := c.pending
	c.mu.Unlock()
	if pending != second {
		t.Error("the newest frame should be pending")
	}
	if err := c.Submit(nil); !stderrors.Is(err, ErrNilFrame) {
		t.Errorf("Submit(nil) = %v", err)
	}
}

func TestCompositorClearsBeforePainting(t *testing.T) {
	f := newFixture(t)
	f.add(f.root, "a", lineAt(1))
	p := New()
	frame, err := p.StepFrame(context.Background(), f.tree)
	if err != nil {
		t.Fatal(err)
	}

	painter := ctesting.NewRecordingPainter(graphics.Size{})
	c := NewCompositor(p, painter, WithClear(graphics.ColorWhite))
	c.paint(frame)

	ops := painter.Ops()
	if len(ops) == 0 || ops[0].Op != ctesting.OpClear {
		t.Fatalf("ops = %v, want clear first", ops)
	}
	if painter.Count(ctesting.OpDrawLine) != 1 {
		t.Errorf("lines = %d, want 1", painter.Count(ctesting.OpDrawLine))
	}
}

func TestCompositorCountsPanickedPaints(t *testing.T) {
	captureRenderErrors(t)
	f := newFixture(t)
	f.add(f.root, "a", lineAt(1))
	p := New()
	frame, err := p.StepFrame(context.Background(), f.tree)
	if err != nil {
		t.Fatal(err)
	}

	painter := ctesting.NewRecordingPainter(graphics.Size{})
	c := NewCompositor(p, painter, WithPresent(func(*Frame, []*errors.RenderError) {
		panic("present failed")
	}))
	c.paint(frame)
	c.paint(frame)

	if got := c.Panicked(); got != 2 {
		t.Errorf("panicked = %d, want 2", got)
	}
	if painted, _ := c.Stats(); painted != 2 {
		t.Errorf("painted = %d, want 2", painted)
	}
}
