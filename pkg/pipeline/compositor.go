package pipeline

import (
	"context"
	stderrors "errors"
	"sync"

	"github.com/go-drift/canopy/pkg/errors"
	"github.com/go-drift/canopy/pkg/graphics"
)

// ErrCompositorStopped is returned by Submit once Run has returned.
var ErrCompositorStopped = stderrors.New("pipeline: compositor stopped")

// CompositorOption configures a Compositor.
type CompositorOption func(*Compositor)

// WithPresent registers a callback invoked after each frame is painted, on
// the compositor goroutine.
func WithPresent(fn func(frame *Frame, faults []*errors.RenderError)) CompositorOption {
	return func(c *Compositor) { c.present = fn }
}

// WithClear clears the painter to c before each frame is painted.
func WithClear(c graphics.Color) CompositorOption {
	return func(comp *Compositor) {
		comp.clear = true
		comp.background = c
	}
}

// Compositor executes frames on its own goroutine. Only the most recently
// submitted frame is kept; a frame replaced before it was painted is dropped.
type Compositor struct {
	pipeline *Pipeline
	painter  graphics.Painter
	present  func(*Frame, []*errors.RenderError)

	clear      bool
	background graphics.Color

	wake chan struct{}

	mu       sync.Mutex
	pending  *Frame
	dropped  int
	painted  int
	panicked int
	stopped  bool
}

// NewCompositor returns a compositor painting into painter. Metrics are
// reported through p.
func NewCompositor(p *Pipeline, painter graphics.Painter, opts ...CompositorOption) *Compositor {
	c := &Compositor{
		pipeline: p,
		painter:  painter,
		wake:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit hands frame to the compositor. It never blocks.
func (c *Compositor) Submit(frame *Frame) error {
	if frame == nil {
		return ErrNilFrame
	}
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return ErrCompositorStopped
	}
	if c.pending != nil {
		c.dropped++
	}
	c.pending = frame
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
	return nil
}

// Run paints submitted frames until ctx is done. It returns ctx's error.
func (c *Compositor) Run(ctx context.Context) error {
	defer func() {
		c.mu.Lock()
		c.stopped = true
		c.mu.Unlock()
	}()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.wake:
			c.mu.Lock()
			frame := c.pending
			c.pending = nil
			c.mu.Unlock()
			if frame != nil {
				c.paint(frame)
			}
		}
	}
}

func (c *Compositor) paint(frame *Frame) {
	defer errors.RecoverWithCallback("pipeline.Compositor", func(any) {
		c.mu.Lock()
		c.panicked++
		c.mu.Unlock()
	})
	if c.clear {
		c.painter.Clear(c.background)
	}
	faults := c.pipeline.execute(frame, c.painter)
	c.mu.Lock()
	c.painted++
	c.mu.Unlock()
	if c.present != nil {
		c.present(frame, faults)
	}
}

// Stats returns how many frames were painted and dropped.
func (c *Compositor) Stats() (painted, dropped int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.painted, c.dropped
}

// Panicked returns how many paints were abandoned because clearing or the
// present callback panicked.
func (c *Compositor) Panicked() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.panicked
}
