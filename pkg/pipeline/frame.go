package pipeline

import (
	"time"

	"github.com/go-drift/canopy/pkg/element"
	"github.com/go-drift/canopy/pkg/errors"
	"github.com/go-drift/canopy/pkg/graphics"
)

// Command is one captured draw closure together with where it paints.
type Command struct {
	// Node identifies the producing element. It may be stale by the time the
	// command executes; execution never dereferences it.
	Node element.Handle
	// Tag is the producing element's tag.
	Tag string
	// Bounds are the element's bounds at collection time. Draw runs with the
	// origin translated to Bounds' top-left corner.
	Bounds graphics.Rect
	// Draw issues the element's primitives.
	Draw element.DrawFunc
}

// Frame is the result of one Collecting phase. It is not modified after
// StepFrame returns and can be painted any number of times, from any goroutine.
type Frame struct {
	// ID increases by one per collected frame.
	ID uint64
	// Viewport is the visible region used for culling.
	Viewport graphics.Rect
	// Commands are the collected draw closures in paint order.
	Commands []Command
	// Skipped counts nodes the visibility policy excluded. A pruned subtree
	// counts once.
	Skipped int
	// Stale counts backends that reported element.ErrStaleBackend.
	Stale int
	// Faults are the render failures isolated during collection.
	Faults []*errors.RenderError
	// Interrupted is set when the context was cancelled before every node
	// was visited. The commands collected so far are still valid.
	Interrupted bool
}

// Len returns the number of commands.
func (f *Frame) Len() int {
	return len(f.Commands)
}

// Paint replays every command against p in order. Each command runs inside
// Save/Translate/Restore; a command that panics is skipped and reported,
// and painting continues with the next one. Paint returns the faults it
// isolated.
func (f *Frame) Paint(p graphics.Painter) []*errors.RenderError {
	var faults []*errors.RenderError
	for i := range f.Commands {
		if fault := f.Commands[i].execute(p); fault != nil {
			faults = append(faults, fault)
		}
	}
	return faults
}

func (c *Command) execute(p graphics.Painter) (fault *errors.RenderError) {
	bp := &balancedPainter{Painter: p}
	p.Save()
	defer func() {
		if r := recover(); r != nil {
			fault = &errors.RenderError{
				Tag:        c.Tag,
				Node:       c.Node.String(),
				Phase:      errors.PhaseExecute,
				Recovered:  r,
				StackTrace: errors.CaptureStack(),
				Timestamp:  time.Now(),
			}
			errors.ReportRenderError(fault)
		}
		bp.unwind()
		p.Restore()
	}()
	p.Translate(c.Bounds.Left, c.Bounds.Top)
	c.Draw(bp)
	return nil
}

// balancedPainter tracks the Save depth a draw closure pushes so that any
// levels it leaves open are popped before the command's own Restore. A
// Restore past the closure's own depth is ignored.
type balancedPainter struct {
	graphics.Painter
	depth int
}

func (b *balancedPainter) Save() {
	b.depth++
	b.Painter.Save()
}

func (b *balancedPainter) Restore() {
	if b.depth == 0 {
		return
	}
	b.depth--
	b.Painter.Restore()
}

func (b *balancedPainter) unwind() {
	for ; b.depth > 0; b.depth-- {
		b.Painter.Restore()
	}
}
