// Package layout provides the default geometry provider: an absolute
// layouter that places each node from its x, y, width and height attributes.
package layout

import (
	"strconv"
	"strings"

	"github.com/go-drift/canopy/pkg/element"
	"github.com/go-drift/canopy/pkg/errors"
	"github.com/go-drift/canopy/pkg/graphics"
)

// Attribute names read by Absolute.
const (
	AttrX      = "x"
	AttrY      = "y"
	AttrWidth  = "width"
	AttrHeight = "height"
	AttrHidden = "hidden"
)

// Layouter assigns bounds to every attached node of a tree.
type Layouter interface {
	Layout(tree *element.Tree, viewport graphics.Size)
}

// LayouterFunc adapts a function to Layouter.
type LayouterFunc func(tree *element.Tree, viewport graphics.Size)

// Layout calls f.
func (f LayouterFunc) Layout(tree *element.Tree, viewport graphics.Size) {
	f(tree, viewport)
}

// Absolute positions nodes relative to their parent's origin.
//
// Lengths are either plain numbers in surface units or percentages of the
// parent's size ("50%"). A missing width or height fills the rest of the
// parent from the node's offset. The root's parent is the viewport.
// Resulting bounds are absolute surface coordinates.
type Absolute struct{}

// Layout implements Layouter.
func (Absolute) Layout(tree *element.Tree, viewport graphics.Size) {
	root := tree.Root()
	if root == nil {
		return
	}
	layoutNode(root, graphics.RectFromLTWH(0, 0, viewport.Width, viewport.Height))
}

func layoutNode(n *element.Node, parent graphics.Rect) {
	x := length(n, AttrX, parent.Width(), 0)
	y := length(n, AttrY, parent.Height(), 0)
	w := length(n, AttrWidth, parent.Width(), parent.Width()-x)
	h := length(n, AttrHeight, parent.Height(), parent.Height()-y)
	bounds := graphics.RectFromLTWH(parent.Left+x, parent.Top+y, max(w, 0), max(h, 0))
	n.SetBounds(bounds)

	if v, ok := n.Attribute(AttrHidden); ok {
		hidden, err := strconv.ParseBool(strings.TrimSpace(v))
		n.SetHidden(err == nil && hidden)
	}

	for _, child := range n.Children() {
		layoutNode(child, bounds)
	}
}

// length reads a length attribute, returning fallback when it is absent or
// malformed.
func length(n *element.Node, name string, reference, fallback float64) float64 {
	v, ok := n.Attribute(name)
	if !ok {
		return fallback
	}
	f, err := ParseLength(v, reference)
	if err != nil {
		errors.Logger().Debug("ignoring malformed length", "tag", n.Tag(), "attr", name, "value", v)
		return fallback
	}
	return f
}

// ParseLength parses "12", "12.5" or "50%" (relative to reference).
func ParseLength(s string, reference float64) (float64, error) {
	s = strings.TrimSpace(s)
	if pct, ok := strings.CutSuffix(s, "%"); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(pct), 64)
		if err != nil {
			return 0, err
		}
		return reference * f / 100, nil
	}
	return strconv.ParseFloat(s, 64)
}
