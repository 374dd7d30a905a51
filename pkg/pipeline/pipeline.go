package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-drift/canopy/pkg/element"
	"github.com/go-drift/canopy/pkg/errors"
	"github.com/go-drift/canopy/pkg/graphics"
)

// State is the phase a pipeline is in.
type State int32

const (
	// StateIdle means no cycle is running.
	StateIdle State = iota
	// StateCollecting means backends are producing draw closures.
	StateCollecting
	// StateExecuting means draw closures are running against a painter.
	StateExecuting
)

func (s State) String() string {
	switch s {
	case StateCollecting:
		return "collecting"
	case StateExecuting:
		return "executing"
	default:
		return "idle"
	}
}

var (
	// ErrBusy is returned when a phase is requested while another is running.
	ErrBusy = stderrors.New("pipeline: cycle already in progress")
	// ErrNilTree is returned by StepFrame for a nil tree.
	ErrNilTree = stderrors.New("pipeline: nil tree")
	// ErrNilFrame is returned by RenderFrame for a nil frame.
	ErrNilFrame = stderrors.New("pipeline: nil frame")
	// ErrNilPainter is returned by RenderFrame for a nil painter.
	ErrNilPainter = stderrors.New("pipeline: nil painter")
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithVisibility replaces the visibility policy.
func WithVisibility(v VisibilityPolicy) Option {
	return func(p *Pipeline) {
		if v != nil {
			p.visibility = v
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) Option {
	return func(p *Pipeline) {
		if m != nil {
			p.metrics = m
		}
	}
}

// WithViewport sets the initial viewport.
func WithViewport(r graphics.Rect) Option {
	return func(p *Pipeline) { p.viewport = r }
}

// Pipeline drives paint cycles. Collection must happen on the goroutine that
// owns the tree; execution may happen anywhere.
type Pipeline struct {
	state      atomic.Int32
	frameID    atomic.Uint64
	visibility VisibilityPolicy
	metrics    Metrics

	mu       sync.Mutex // guards viewport
	viewport graphics.Rect
}

// New returns a pipeline that culls offscreen nodes and records no metrics.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		visibility: DefaultVisibility{CullOffscreen: true},
		metrics:    NopMetrics{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// State reports the current phase.
func (p *Pipeline) State() State {
	return State(p.state.Load())
}

// SetViewport sets the region used for culling in subsequent frames.
func (p *Pipeline) SetViewport(r graphics.Rect) {
	p.mu.Lock()
	p.viewport = r
	p.mu.Unlock()
}

// Viewport returns the current culling region.
func (p *Pipeline) Viewport() graphics.Rect {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.viewport
}

// StepFrame runs the Collecting phase over tree and returns the frame.
//
// Cancelling ctx stops collection before the next node; the partial frame is
// returned with Interrupted set and a nil error. A node is never left half
// collected.
func (p *Pipeline) StepFrame(ctx context.Context, tree *element.Tree) (*Frame, error) {
	if tree == nil {
		return nil, ErrNilTree
	}
	if !p.state.CompareAndSwap(int32(StateIdle), int32(StateCollecting)) {
		return nil, fmt.Errorf("%w: state is %s", ErrBusy, p.State())
	}
	defer p.state.Store(int32(StateIdle))

	start := time.Now()
	frame := &Frame{
		ID:       p.frameID.Add(1),
		Viewport: p.Viewport(),
	}
	tree.Walk(func(n *element.Node, _ int) element.VisitResult {
		if ctx.Err() != nil {
			frame.Interrupted = true
			return element.VisitStop
		}
		switch p.visibility.Decide(n, frame.Viewport) {
		case SkipSubtree:
			frame.Skipped++
			return element.VisitSkipChildren
		case SkipNode:
			frame.Skipped++
			return element.VisitContinue
		}
		p.collect(frame, n)
		return element.VisitContinue
	})
	if frame.Interrupted {
		errors.Logger().Debug("frame collection interrupted", "frame", frame.ID, "commands", len(frame.Commands))
	}
	p.metrics.ObserveCollect(frame, time.Since(start))
	return frame, nil
}

// collect asks n's backend for a draw closure, isolating any failure.
func (p *Pipeline) collect(frame *Frame, n *element.Node) {
	backend := n.Backend()
	if backend == nil {
		return
	}
	renderer, ok := backend.(element.Renderer)
	if !ok {
		return
	}

	draw, recovered, stack, err := safeRender(renderer)
	switch {
	case recovered != nil || (err != nil && !stderrors.Is(err, element.ErrStaleBackend)):
		fault := &errors.RenderError{
			Tag:        n.Tag(),
			Node:       n.Handle().String(),
			Phase:      errors.PhaseCollect,
			Recovered:  recovered,
			Err:        err,
			StackTrace: stack,
			Timestamp:  time.Now(),
		}
		errors.ReportRenderError(fault)
		frame.Faults = append(frame.Faults, fault)
	case err != nil:
		frame.Stale++
		errors.Logger().Debug("skipping stale backend", "tag", n.Tag(), "node", n.Handle().String())
	case draw != nil:
		frame.Commands = append(frame.Commands, Command{
			Node:   n.Handle(),
			Tag:    n.Tag(),
			Bounds: n.Bounds(),
			Draw:   draw,
		})
	}
}

func safeRender(r element.Renderer) (draw element.DrawFunc, recovered any, stack string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			draw, recovered, stack = nil, rec, errors.CaptureStack()
		}
	}()
	draw, err = r.Render()
	return draw, nil, "", err
}

// RenderFrame runs the Executing phase: frame's commands are replayed against
// painter in order. Faults in individual commands are reported and do not
// stop the frame.
func (p *Pipeline) RenderFrame(frame *Frame, painter graphics.Painter) error {
	if frame == nil {
		return ErrNilFrame
	}
	if painter == nil {
		return ErrNilPainter
	}
	if !p.state.CompareAndSwap(int32(StateIdle), int32(StateExecuting)) {
		return fmt.Errorf("%w: state is %s", ErrBusy, p.State())
	}
	defer p.state.Store(int32(StateIdle))
	p.execute(frame, painter)
	return nil
}

// execute paints frame without touching the state machine. The compositor
// uses it so collection of the next frame can overlap.
func (p *Pipeline) execute(frame *Frame, painter graphics.Painter) []*errors.RenderError {
	start := time.Now()
	faults := frame.Paint(painter)
	p.metrics.ObserveExecute(frame, len(faults), time.Since(start))
	return faults
}

// Run performs one full cycle: StepFrame followed by RenderFrame.
func (p *Pipeline) Run(ctx context.Context, tree *element.Tree, painter graphics.Painter) (*Frame, error) {
	if painter == nil {
		return nil, ErrNilPainter
	}
	frame, err := p.StepFrame(ctx, tree)
	if err != nil {
		return nil, err
	}
	if err := p.RenderFrame(frame, painter); err != nil {
		return frame, err
	}
	return frame, nil
}
