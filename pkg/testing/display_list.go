package testing

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/go-drift/canopy/pkg/graphics"
)

// Op names recorded by RecordingPainter.
const (
	OpSave       = "save"
	OpRestore    = "restore"
	OpTranslate  = "translate"
	OpClipRect   = "clipRect"
	OpClear      = "clear"
	OpDrawRect   = "drawRect"
	OpDrawCircle = "drawCircle"
	OpDrawLine   = "drawLine"
)

// DisplayOp represents a serialized painter operation.
type DisplayOp struct {
	Op     string         `msgpack:"op"`
	Params map[string]any `msgpack:"params,omitempty"`
}

// Float returns a numeric parameter, or 0 when absent.
func (o DisplayOp) Float(key string) float64 {
	switch v := o.Params[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

// String formats the op and its parameters in key order.
func (o DisplayOp) String() string {
	if len(o.Params) == 0 {
		return o.Op
	}
	var sb strings.Builder
	sb.WriteString(o.Op)
	for _, k := range sortedKeys(o.Params) {
		fmt.Fprintf(&sb, " %s=%v", k, o.Params[k])
	}
	return sb.String()
}

// RecordingPainter implements graphics.Painter and records ops as DisplayOp.
// Coordinates are recorded exactly as issued, in the caller's local space.
type RecordingPainter struct {
	ops  []DisplayOp
	size graphics.Size
}

// NewRecordingPainter returns a painter reporting the given surface size.
func NewRecordingPainter(size graphics.Size) *RecordingPainter {
	return &RecordingPainter{size: size}
}

// Ops returns a copy of the recorded operations.
func (c *RecordingPainter) Ops() []DisplayOp {
	return append([]DisplayOp(nil), c.ops...)
}

// Filter returns the recorded operations with the given name.
func (c *RecordingPainter) Filter(op string) []DisplayOp {
	var out []DisplayOp
	for _, o := range c.ops {
		if o.Op == op {
			out = append(out, o)
		}
	}
	return out
}

// Count returns how many operations with the given name were recorded.
func (c *RecordingPainter) Count(op string) int {
	return len(c.Filter(op))
}

// Reset discards recorded operations.
func (c *RecordingPainter) Reset() {
	c.ops = c.ops[:0]
}

func (c *RecordingPainter) Save() {
	c.ops = append(c.ops, DisplayOp{Op: OpSave})
}

func (c *RecordingPainter) Restore() {
	c.ops = append(c.ops, DisplayOp{Op: OpRestore})
}

func (c *RecordingPainter) Translate(dx, dy float64) {
	c.ops = append(c.ops, DisplayOp{
		Op:     OpTranslate,
		Params: sortedMap("dx", round2(dx), "dy", round2(dy)),
	})
}

func (c *RecordingPainter) ClipRect(rect graphics.Rect) {
	c.ops = append(c.ops, DisplayOp{Op: OpClipRect, Params: serializeRect(rect)})
}

func (c *RecordingPainter) Clear(color graphics.Color) {
	c.ops = append(c.ops, DisplayOp{
		Op:     OpClear,
		Params: sortedMap("color", serializeColor(color)),
	})
}

func (c *RecordingPainter) DrawRect(rect graphics.Rect, paint graphics.Paint) {
	params := serializeRect(rect)
	addPaint(params, paint)
	c.ops = append(c.ops, DisplayOp{Op: OpDrawRect, Params: params})
}

func (c *RecordingPainter) DrawCircle(center graphics.Offset, radius float64, paint graphics.Paint) {
	params := sortedMap(
		"cx", round2(center.X),
		"cy", round2(center.Y),
		"radius", round2(radius),
	)
	addPaint(params, paint)
	c.ops = append(c.ops, DisplayOp{Op: OpDrawCircle, Params: params})
}

func (c *RecordingPainter) DrawLine(start, end graphics.Offset, paint graphics.Paint) {
	params := sortedMap(
		"x1", round2(start.X), "y1", round2(start.Y),
		"x2", round2(end.X), "y2", round2(end.Y),
	)
	addPaint(params, paint)
	c.ops = append(c.ops, DisplayOp{Op: OpDrawLine, Params: params})
}

func (c *RecordingPainter) Size() graphics.Size {
	return c.size
}

// RecordDisplayList replays a DisplayList through a recording painter.
func RecordDisplayList(dl *graphics.DisplayList) []DisplayOp {
	p := NewRecordingPainter(dl.Size())
	dl.Paint(p)
	return p.ops
}

// --- Serialization helpers ---

func serializeRect(r graphics.Rect) map[string]any {
	return sortedMap(
		"left", round2(r.Left),
		"top", round2(r.Top),
		"right", round2(r.Right),
		"bottom", round2(r.Bottom),
	)
}

func addPaint(params map[string]any, p graphics.Paint) {
	params["color"] = serializeColor(p.Color)
	params["style"] = p.Style.String()
	if p.Style.Strokes() {
		params["strokeWidth"] = round2(p.EffectiveStrokeWidth())
	}
}

func serializeColor(c graphics.Color) string {
	return fmt.Sprintf("0x%08X", uint32(c))
}

// round2 rounds a float64 to 2 decimal places.
func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// sortedMap creates a map from alternating key-value pairs.
func sortedMap(kvs ...any) map[string]any {
	m := make(map[string]any, len(kvs)/2)
	for i := 0; i+1 < len(kvs); i += 2 {
		m[kvs[i].(string)] = kvs[i+1]
	}
	return m
}

// sortedKeys returns the keys of a map in sorted order.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
