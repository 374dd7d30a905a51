package backends

import (
	"errors"
	"testing"

	"github.com/go-drift/canopy/pkg/element"
	"github.com/go-drift/canopy/pkg/graphics"
	"github.com/go-drift/canopy/pkg/registry"
	ctesting "github.com/go-drift/canopy/pkg/testing"
)

func newNode(t *testing.T, tag string, w, h float64, attrs map[string]string) (*element.Ref, element.Backend) {
	t.Helper()
	reg := registry.New()
	if err := Register(reg); err != nil {
		t.Fatalf("Register: %v", err)
	}
	tree := element.NewTree()
	ref, err := reg.Create(tree, tag)
	if err != nil {
		t.Fatalf("Create(%q): %v", tag, err)
	}
	for k, v := range attrs {
		_ = ref.Node().SetAttribute(k, v)
	}
	ref.Node().SetBounds(graphics.RectFromLTWH(0, 0, w, h))
	t.Cleanup(ref.Release)
	return ref, ref.Node().Backend()
}

func paint(t *testing.T, b element.Backend) *ctesting.RecordingPainter {
	t.Helper()
	draw, err := b.(element.Renderer).Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	p := ctesting.NewRecordingPainter(graphics.Size{})
	if draw != nil {
		draw(p)
	}
	return p
}

func TestRegisterBuiltins(t *testing.T) {
	reg := registry.New()
	if err := Register(reg); err != nil {
		t.Fatal(err)
	}
	tags := reg.Tags()
	if len(tags) != 3 || tags[0] != TagBox || tags[1] != TagHello || tags[2] != TagRing {
		t.Errorf("Tags = %v", tags)
	}
	e, _ := reg.Lookup(TagHello)
	if e.Provider.Module != Provider {
		t.Errorf("provider = %q", e.Provider)
	}
	if err := Register(reg); !errors.Is(err, registry.ErrDuplicateTag) {
		t.Errorf("second Register = %v, want ErrDuplicateTag", err)
	}
}

func TestHelloFillsInscribedCircle(t *testing.T) {
	_, b := newNode(t, TagHello, 100, 100, map[string]string{AttrFill: "#00ff00"})
	p := paint(t, b)

	circles := p.Filter(ctesting.OpDrawCircle)
	if len(circles) != 1 {
		t.Fatalf("circles = %d, want 1", len(circles))
	}
	c := circles[0]
	if c.Float("cx") != 50 || c.Float("cy") != 50 || c.Float("radius") != 50 {
		t.Errorf("circle = %v", c)
	}
	if c.Params["color"] != "0xFF00FF00" || c.Params["style"] != "fill" {
		t.Errorf("paint = %v", c)
	}
}

func TestHelloDefaultAndMalformedFill(t *testing.T) {
	_, b := newNode(t, TagHello, 40, 20, map[string]string{AttrFill: "not-a-color"})
	c := paint(t, b).Filter(ctesting.OpDrawCircle)[0]
	if c.Params["color"] != "0xFFE53935" {
		t.Errorf("color = %v, want default", c.Params["color"])
	}
	if c.Float("radius") != 10 {
		t.Errorf("radius = %v, want 10", c.Float("radius"))
	}
}

func TestHelloEmptyBoundsDrawsNothing(t *testing.T) {
	_, b := newNode(t, TagHello, 0, 0, nil)
	draw, err := b.(element.Renderer).Render()
	if err != nil || draw != nil {
		t.Errorf("Render = %v, %v; want nil, nil", draw, err)
	}
}

func TestHelloCountsClicks(t *testing.T) {
	ref, b := newNode(t, TagHello, 10, 10, nil)
	h := b.(element.PointerHandler)

	if h.HandlePointer(element.PointerEvent{Kind: element.PointerMove}) {
		t.Error("move should not be consumed")
	}
	for i := 0; i < 2; i++ {
		if !h.HandlePointer(element.PointerEvent{Kind: element.PointerDown}) {
			t.Error("press should be consumed")
		}
	}
	if v, _ := ref.Node().Attribute(AttrClicks); v != "2" {
		t.Errorf("clicks = %q, want 2", v)
	}
}

func TestRingInsetsStroke(t *testing.T) {
	_, b := newNode(t, TagRing, 100, 100, map[string]string{AttrStrokeWidth: "10", AttrStroke: "#000000"})
	c := paint(t, b).Filter(ctesting.OpDrawCircle)[0]
	if c.Float("radius") != 45 || c.Params["style"] != "stroke" || c.Float("strokeWidth") != 10 {
		t.Errorf("ring = %v", c)
	}
	if c.Params["color"] != "0xFF000000" {
		t.Errorf("color = %v", c.Params["color"])
	}
}

func TestRingPicksUpAttributesSetBeforeAttach(t *testing.T) {
	tree := element.NewTree()
	ref := tree.Create(TagRing)
	defer ref.Release()
	_ = ref.Node().SetAttribute(AttrStrokeWidth, "2")
	_ = ref.Node().Attach(NewRing(ref.Weak()))
	ref.Node().SetBounds(graphics.RectFromLTWH(0, 0, 20, 20))

	c := paint(t, ref.Node().Backend()).Filter(ctesting.OpDrawCircle)[0]
	if c.Float("radius") != 9 {
		t.Errorf("radius = %v, want 9", c.Float("radius"))
	}
}

func TestBoxOutline(t *testing.T) {
	_, plain := newNode(t, TagBox, 30, 20, nil)
	if got := paint(t, plain).Count(ctesting.OpDrawRect); got != 1 {
		t.Errorf("plain box rects = %d, want 1", got)
	}

	_, outlined := newNode(t, TagBox, 30, 20, map[string]string{AttrStroke: "#123456", AttrStrokeWidth: "3"})
	rects := paint(t, outlined).Filter(ctesting.OpDrawRect)
	if len(rects) != 2 {
		t.Fatalf("outlined box rects = %d, want 2", len(rects))
	}
	if rects[1].Params["style"] != "stroke" || rects[1].Float("strokeWidth") != 3 || rects[1].Float("right") != 30 {
		t.Errorf("outline = %v", rects[1])
	}
}

func TestBackendsGoStaleWithTheirElement(t *testing.T) {
	for _, tag := range []string{TagHello, TagRing, TagBox} {
		tree := element.NewTree()
		reg := registry.New()
		_ = Register(reg)
		ref, err := reg.Create(tree, tag)
		if err != nil {
			t.Fatal(err)
		}
		b := ref.Node().Backend()
		ref.Release()

		if _, err := b.(element.Renderer).Render(); !errors.Is(err, element.ErrStaleBackend) {
			t.Errorf("%s: Render after destroy = %v, want ErrStaleBackend", tag, err)
		}
		if h, ok := b.(element.PointerHandler); ok && h.HandlePointer(element.PointerEvent{Kind: element.PointerDown}) {
			t.Errorf("%s: stale backend consumed a pointer event", tag)
		}
	}
}
