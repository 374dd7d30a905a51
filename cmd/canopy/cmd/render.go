package cmd

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/go-drift/canopy/pkg/engine"
	"github.com/go-drift/canopy/pkg/graphics"
	"github.com/go-drift/canopy/pkg/painter/ggpaint"
	"github.com/go-drift/canopy/pkg/painter/raster"
	ctesting "github.com/go-drift/canopy/pkg/testing"
)

func init() {
	RegisterCommand(&Command{
		Name:  "render",
		Short: "Render the configured scene to PNG",
		Long: `Render one frame of the scene described in canopy.yaml.

The frame is collected once and painted with the selected painter:
  raster   golang.org/x/image/vector software rasterizer (default)
  gg       gogpu/gg context

With --ops the same frame is also replayed into a recording painter and
the primitive sequence is written as msgpack, suitable for snapshot tests.

Flags:
  -o, --out FILE      PNG output path (default: canopy.png)
  --painter NAME      raster or gg
  --ops FILE          also write the recorded primitives
  --width N           override viewport.width
  --height N          override viewport.height`,
		Usage: "canopy render [-o file.png] [--painter raster|gg] [--ops file] [--width N] [--height N]",
		Run:   runRender,
	})
}

type renderOptions struct {
	out     string
	painter string
	ops     string
	width   float64
	height  float64
}

func parseRenderArgs(args []string) (renderOptions, error) {
	opts := renderOptions{out: "canopy.png", painter: "raster"}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		name, value, hasValue := strings.Cut(arg, "=")
		if !hasValue {
			switch name {
			case "-o", "--out", "--painter", "--ops", "--width", "--height":
				if i+1 >= len(args) {
					return opts, fmt.Errorf("%s requires a value", name)
				}
				value = args[i+1]
				i++
			default:
				return opts, fmt.Errorf("unknown flag %q", arg)
			}
		}
		switch name {
		case "-o", "--out":
			opts.out = value
		case "--painter":
			opts.painter = strings.ToLower(value)
		case "--ops":
			opts.ops = value
		case "--width", "--height":
			n, err := strconv.ParseFloat(value, 64)
			if err != nil || n <= 0 {
				return opts, fmt.Errorf("%s must be a positive number, got %q", name, value)
			}
			if name == "--width" {
				opts.width = n
			} else {
				opts.height = n
			}
		default:
			return opts, fmt.Errorf("unknown flag %q", arg)
		}
	}
	switch opts.painter {
	case "raster", "gg":
	default:
		return opts, fmt.Errorf("unknown painter %q (use raster or gg)", opts.painter)
	}
	return opts, nil
}

// pngPainter is a painter that can encode its surface.
type pngPainter interface {
	graphics.Painter
	EncodePNG(w io.Writer) error
}

func runRender(args []string) error {
	opts, err := parseRenderArgs(args)
	if err != nil {
		return err
	}
	cfg, err := prepare()
	if err != nil {
		return err
	}
	if opts.width > 0 {
		cfg.Viewport.Width = opts.width
	}
	if opts.height > 0 {
		cfg.Viewport.Height = opts.height
	}
	if cfg.Scene == nil {
		return fmt.Errorf("configuration has no scene to render")
	}

	e, err := engine.New(cfg)
	if err != nil {
		return err
	}
	if err := e.Start(); err != nil {
		return err
	}
	frame, err := e.StepFrame(context.Background())
	if err != nil {
		return err
	}

	w := int(math.Ceil(cfg.Viewport.Width))
	h := int(math.Ceil(cfg.Viewport.Height))
	var painter pngPainter
	switch opts.painter {
	case "gg":
		p := ggpaint.New(w, h)
		defer p.Close()
		painter = p
	default:
		painter = raster.New(w, h)
	}
	if err := e.RenderFrame(frame, painter); err != nil {
		return err
	}
	if err := writePNG(opts.out, painter); err != nil {
		return err
	}

	if opts.ops != "" {
		rec := ctesting.NewRecordingPainter(cfg.Viewport.Size())
		if err := e.RenderFrame(frame, rec); err != nil {
			return err
		}
		if err := ctesting.WriteOps(opts.ops, rec.Ops()); err != nil {
			return fmt.Errorf("failed to write ops: %w", err)
		}
	}

	fmt.Fprintf(stdout, "frame %d: %d commands, %d skipped, %d faults -> %s\n",
		frame.ID, frame.Len(), frame.Skipped, len(frame.Faults), opts.out)
	return nil
}

func writePNG(path string, p pngPainter) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := p.EncodePNG(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}
