// Package engine wires configuration, the backend registry, the element tree,
// layout and the render pipeline into one surface.
//
// An Engine is driven from a single UI goroutine: register backends, Start,
// Mount a scene, then call StepFrame and RenderFrame (or Run) once per frame.
// Frames produced by StepFrame may be painted elsewhere, e.g. on a
// pipeline.Compositor.
package engine

import (
	"context"
	stderrors "errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/go-drift/canopy/pkg/backends"
	"github.com/go-drift/canopy/pkg/config"
	"github.com/go-drift/canopy/pkg/element"
	"github.com/go-drift/canopy/pkg/errors"
	"github.com/go-drift/canopy/pkg/graphics"
	"github.com/go-drift/canopy/pkg/layout"
	"github.com/go-drift/canopy/pkg/pipeline"
	"github.com/go-drift/canopy/pkg/registry"
	"github.com/go-drift/canopy/pkg/script"
)

var (
	// ErrStarted is returned by operations only valid before Start.
	ErrStarted = stderrors.New("engine: already started")
	// ErrNotStarted is returned by operations that need Start first.
	ErrNotStarted = stderrors.New("engine: not started")
	// ErrEmptyScene is returned when mounting a nil scene.
	ErrEmptyScene = stderrors.New("engine: empty scene")
)

// Option configures an Engine.
type Option func(*Engine)

// WithRegistry uses reg instead of a registry built from the configuration.
func WithRegistry(reg *registry.Registry) Option {
	return func(e *Engine) { e.reg = reg }
}

// WithoutBuiltins skips registering the built-in backends.
func WithoutBuiltins() Option {
	return func(e *Engine) { e.builtins = false }
}

// WithLayouter replaces the default absolute layouter.
func WithLayouter(l layout.Layouter) Option {
	return func(e *Engine) { e.layouter = l }
}

// WithMetrics sets the pipeline metrics sink.
func WithMetrics(m pipeline.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithPrometheus records pipeline metrics into reg and exposes them on the
// debug server's /metrics endpoint.
func WithPrometheus(reg *prometheus.Registry) Option {
	return func(e *Engine) { e.promReg = reg }
}

// WithFrameTrace keeps the last capacity frame samples. Frames slower than
// threshold count as slow.
func WithFrameTrace(capacity int, threshold time.Duration) Option {
	return func(e *Engine) { e.trace = NewFrameTraceBuffer(capacity, threshold) }
}

// Engine owns one element tree and everything needed to paint it.
type Engine struct {
	// frameLock serializes tree access between frames, pointer dispatch and
	// the debug server.
	frameLock sync.Mutex

	cfg        *config.Config
	reg        *registry.Registry
	tree       *element.Tree
	layouter   layout.Layouter
	pipe       *pipeline.Pipeline
	bridge     *script.Bridge
	metrics    pipeline.Metrics
	promReg    *prometheus.Registry
	trace      *FrameTraceBuffer
	background graphics.Color
	viewport   graphics.Size
	builtins   bool
	started    bool

	needsFrame atomic.Bool
	debug      debugServer
}

// New builds an engine from cfg. A nil cfg uses config.Default.
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	background, err := cfg.BackgroundColor()
	if err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:        cfg,
		tree:       element.NewTree(),
		layouter:   layout.Absolute{},
		background: background,
		viewport:   cfg.Viewport.Size(),
		builtins:   true,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.reg == nil {
		policy, err := cfg.ConflictPolicy()
		if err != nil {
			return nil, err
		}
		e.reg = registry.New(registry.WithConflictPolicy(policy), registry.WithLogger(errors.Logger()))
	}
	if e.builtins {
		if err := backends.Register(e.reg); err != nil {
			return nil, fmt.Errorf("engine: register built-in backends: %w", err)
		}
	}
	if e.promReg != nil && e.metrics == nil {
		m, err := pipeline.NewPrometheusMetrics(e.promReg)
		if err != nil {
			return nil, fmt.Errorf("engine: metrics: %w", err)
		}
		e.metrics = m
	}
	if e.metrics == nil {
		e.metrics = pipeline.NopMetrics{}
	}
	e.pipe = pipeline.New(
		pipeline.WithVisibility(pipeline.DefaultVisibility{CullOffscreen: cfg.Pipeline.Cull()}),
		pipeline.WithMetrics(e.metrics),
		pipeline.WithViewport(viewportRect(e.viewport)),
	)
	e.needsFrame.Store(true)
	return e, nil
}

// Registry returns the backend registry.
func (e *Engine) Registry() *registry.Registry { return e.reg }

// Tree returns the element tree.
func (e *Engine) Tree() *element.Tree { return e.tree }

// Pipeline returns the render pipeline.
func (e *Engine) Pipeline() *pipeline.Pipeline { return e.pipe }

// Bridge returns the script bridge, or nil before Start.
func (e *Engine) Bridge() *script.Bridge { return e.bridge }

// FrameTrace returns the frame trace buffer, or nil when tracing is off.
func (e *Engine) FrameTrace() *FrameTraceBuffer { return e.trace }

// Background returns the color surfaces are cleared to.
func (e *Engine) Background() graphics.Color { return e.background }

// Register adds a backend factory. It fails once the engine has started.
func (e *Engine) Register(tag string, factory element.BackendFactory, opts ...registry.EntryOption) error {
	e.frameLock.Lock()
	defer e.frameLock.Unlock()
	if e.started {
		return fmt.Errorf("%w: cannot register %q", ErrStarted, tag)
	}
	return e.reg.Register(tag, factory, opts...)
}

// Start seals the registry, defines the configured script classes and mounts
// the configured scene, if any.
func (e *Engine) Start() error {
	e.frameLock.Lock()
	if e.started {
		e.frameLock.Unlock()
		return ErrStarted
	}
	e.reg.Seal()
	e.bridge = script.NewBridge(e.reg, e.tree, script.WithStyleSheet(script.MapStyleSheet(e.cfg.Styles)))
	for _, name := range slices.Sorted(maps.Keys(e.cfg.Classes)) {
		if _, err := e.bridge.Define(name, e.cfg.Classes[name]); err != nil {
			e.frameLock.Unlock()
			return fmt.Errorf("engine: define class: %w", err)
		}
	}
	e.started = true
	e.frameLock.Unlock()

	errors.Logger().Info("engine started",
		"backends", e.reg.Count(),
		"classes", len(e.cfg.Classes),
		"viewport", fmt.Sprintf("%gx%g", e.viewport.Width, e.viewport.Height))

	if e.cfg.Scene != nil {
		return e.Mount(e.cfg.Scene)
	}
	return nil
}

// Mount builds scene and makes it the tree root, replacing the previous
// root. Nothing is mounted when any node fails to construct.
func (e *Engine) Mount(scene *config.SceneNode) error {
	if scene == nil {
		return ErrEmptyScene
	}
	e.frameLock.Lock()
	defer e.frameLock.Unlock()
	if !e.started {
		return ErrNotStarted
	}

	var built []*script.Object
	defer func() {
		for _, obj := range built {
			obj.Release()
		}
	}()
	root, err := e.build(scene, &built)
	if err != nil {
		errors.Report(&errors.CanopyError{Op: "engine.Mount", Kind: errors.KindConstruct, Err: err})
		return err
	}
	if err := e.bridge.Mount(root); err != nil {
		return err
	}
	e.needsFrame.Store(true)
	errors.Logger().Debug("scene mounted", "nodes", scene.Count())
	return nil
}

// build constructs n and its children. Every object is appended to built;
// the caller releases them once the tree owns the nodes.
func (e *Engine) build(n *config.SceneNode, built *[]*script.Object) (*script.Object, error) {
	var (
		obj *script.Object
		err error
	)
	if n.Class != "" {
		obj, err = e.bridge.Construct(n.Class, n.Attrs)
	} else {
		obj, err = e.bridge.ConstructTag(n.Tag, n.Attrs)
	}
	if err != nil {
		return nil, err
	}
	*built = append(*built, obj)
	for _, c := range n.Children {
		child, err := e.build(c, built)
		if err != nil {
			return nil, err
		}
		if err := obj.AppendChild(child); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

// SetViewport resizes the surface. The next frame re-runs layout.
func (e *Engine) SetViewport(size graphics.Size) {
	e.frameLock.Lock()
	e.viewport = size
	e.frameLock.Unlock()
	e.pipe.SetViewport(viewportRect(size))
	e.needsFrame.Store(true)
}

// Viewport returns the surface size.
func (e *Engine) Viewport() graphics.Size {
	e.frameLock.Lock()
	defer e.frameLock.Unlock()
	return e.viewport
}

// RequestFrame marks the surface as needing a new frame.
func (e *Engine) RequestFrame() {
	e.needsFrame.Store(true)
}

// NeedsFrame reports whether anything changed since the last StepFrame.
func (e *Engine) NeedsFrame() bool {
	return e.needsFrame.Load()
}

// StepFrame lays the tree out and collects a frame.
func (e *Engine) StepFrame(ctx context.Context) (*pipeline.Frame, error) {
	e.frameLock.Lock()
	defer e.frameLock.Unlock()

	start := time.Now()
	e.needsFrame.Store(false)
	e.layouter.Layout(e.tree, e.viewport)
	layoutDone := time.Now()

	frame, err := e.pipe.StepFrame(ctx, e.tree)
	if err != nil {
		return nil, err
	}
	if e.trace != nil {
		end := time.Now()
		e.trace.Add(FrameSample{
			Timestamp:   start.UnixMilli(),
			FrameID:     frame.ID,
			FrameMs:     durationToMillis(end.Sub(start)),
			LayoutMs:    durationToMillis(layoutDone.Sub(start)),
			CollectMs:   durationToMillis(end.Sub(layoutDone)),
			Nodes:       e.tree.Len(),
			Commands:    frame.Len(),
			Skipped:     frame.Skipped,
			Stale:       frame.Stale,
			Faults:      len(frame.Faults),
			Interrupted: frame.Interrupted,
		}, end.Sub(start))
	}
	return frame, nil
}

// RenderFrame clears painter to the background color and paints frame.
func (e *Engine) RenderFrame(frame *pipeline.Frame, painter graphics.Painter) error {
	if frame == nil {
		return pipeline.ErrNilFrame
	}
	if painter == nil {
		return pipeline.ErrNilPainter
	}
	painter.Clear(e.background)
	return e.pipe.RenderFrame(frame, painter)
}

// Run steps and renders one frame.
func (e *Engine) Run(ctx context.Context, painter graphics.Painter) (*pipeline.Frame, error) {
	frame, err := e.StepFrame(ctx)
	if err != nil {
		return nil, err
	}
	return frame, e.RenderFrame(frame, painter)
}

func viewportRect(size graphics.Size) graphics.Rect {
	return graphics.RectFromLTWH(0, 0, size.Width, size.Height)
}
