package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/go-drift/canopy/pkg/element"
	"github.com/go-drift/canopy/pkg/engine"
	"github.com/go-drift/canopy/pkg/errors"
	"github.com/go-drift/canopy/pkg/painter/termpaint"
	"github.com/go-drift/canopy/pkg/pipeline"
)

func init() {
	RegisterCommand(&Command{
		Name:  "preview",
		Short: "Preview the scene in the terminal",
		Long: `Preview the scene described in canopy.yaml in the terminal.

Each cell covers a 4x8 area of the surface; the viewport follows the
terminal size. Clicking delivers pointer events to the topmost backend
under the cursor. Press q or Esc to quit.

Flags:
  --debug ADDR   serve /tree, /frames, /registry and /metrics on ADDR`,
		Usage: "canopy preview [--debug :9090]",
		Run:   runPreview,
	})
}

func runPreview(args []string) error {
	var debugAddr string
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--debug" && i+1 < len(args):
			debugAddr = args[i+1]
			i++
		case strings.HasPrefix(args[i], "--debug="):
			debugAddr = strings.TrimPrefix(args[i], "--debug=")
		default:
			return fmt.Errorf("unknown flag %q", args[i])
		}
	}

	cfg, err := prepare()
	if err != nil {
		return err
	}
	if cfg.Scene == nil {
		return fmt.Errorf("configuration has no scene to preview")
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	screen.EnableMouse()

	painter := termpaint.New(screen)
	cfg.Viewport.Width, cfg.Viewport.Height = painter.Size().Width, painter.Size().Height

	promReg := prometheus.NewRegistry()
	e, err := engine.New(cfg, engine.WithPrometheus(promReg), engine.WithFrameTrace(0, 0))
	if err != nil {
		return err
	}
	if err := e.Start(); err != nil {
		return err
	}
	if debugAddr != "" {
		if _, err := e.StartDebugServer(debugAddr); err != nil {
			return err
		}
		defer e.StopDebugServer()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	compositor := pipeline.NewCompositor(e.Pipeline(), painter,
		pipeline.WithClear(e.Background()),
		pipeline.WithPresent(func(*pipeline.Frame, []*errors.RenderError) { screen.Show() }))
	go compositor.Run(ctx)

	events := make(chan tcell.Event, 64)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	var pressed bool
	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
					(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
					return nil
				}
			case *tcell.EventResize:
				screen.Sync()
				e.SetViewport(painter.Size())
			case *tcell.EventMouse:
				down := ev.Buttons()&tcell.Button1 != 0
				x, y := ev.Position()
				pos := painter.CellToSurface(x, y)
				switch {
				case down && !pressed:
					e.HandlePointer(element.PointerDown, pos)
				case down:
					e.HandlePointer(element.PointerMove, pos)
				case pressed:
					e.HandlePointer(element.PointerUp, pos)
				}
				pressed = down
			}
		case <-ticker.C:
			if !e.NeedsFrame() {
				continue
			}
			frame, err := e.StepFrame(ctx)
			if err != nil {
				return err
			}
			if err := compositor.Submit(frame); err != nil {
				return err
			}
		}
	}
}
