// Package backends contains the built-in native element backends.
package backends

import (
	"strconv"
	"strings"

	"github.com/go-drift/canopy/pkg/element"
	"github.com/go-drift/canopy/pkg/errors"
	"github.com/go-drift/canopy/pkg/graphics"
	"github.com/go-drift/canopy/pkg/registry"
)

// Tags of the built-in backends.
const (
	TagHello = "hello"
	TagRing  = "ring"
	TagBox   = "box"
)

// Attribute names understood by the built-in backends.
const (
	AttrFill        = "fill"
	AttrStroke      = "stroke"
	AttrStrokeWidth = "stroke-width"
	AttrClicks      = "clicks"
)

// Provider is the module recorded as the source of the built-in tags.
const Provider = "github.com/go-drift/canopy"

// Defaults for unset attributes.
var (
	DefaultFill        = graphics.RGB(0xE5, 0x39, 0x35)
	DefaultStroke      = graphics.RGB(0x1E, 0x88, 0xE5)
	DefaultStrokeWidth = 4.0
)

// Register adds the built-in tags to reg.
func Register(reg *registry.Registry) error {
	for _, b := range []struct {
		tag     string
		factory element.BackendFactory
	}{
		{TagHello, NewHello},
		{TagRing, NewRing},
		{TagBox, NewBox},
	} {
		if err := reg.Register(b.tag, b.factory, registry.WithProvider(Provider, "")); err != nil {
			return err
		}
	}
	return nil
}

func parseColor(tag, name, value string, fallback graphics.Color) graphics.Color {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	c, err := graphics.ParseColor(value)
	if err != nil {
		errors.Logger().Debug("ignoring malformed color", "tag", tag, "attr", name, "value", value)
		return fallback
	}
	return c
}

func parseWidth(tag, value string, fallback float64) float64 {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	w, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || w < 0 {
		errors.Logger().Debug("ignoring malformed stroke width", "tag", tag, "value", value)
		return fallback
	}
	return w
}

// inscribed returns the center and radius of the largest circle fitting size.
func inscribed(size graphics.Size) (graphics.Offset, float64) {
	return graphics.Offset{X: size.Width / 2, Y: size.Height / 2}, min(size.Width, size.Height) / 2
}
