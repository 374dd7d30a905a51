package pipeline

import (
	"github.com/go-drift/canopy/pkg/element"
	"github.com/go-drift/canopy/pkg/graphics"
)

// Decision is a visibility verdict for one node.
type Decision int

const (
	// Visit collects the node and continues into its children.
	Visit Decision = iota
	// SkipNode skips the node's own render call but still visits its children.
	SkipNode
	// SkipSubtree skips the node and all of its descendants.
	SkipSubtree
)

func (d Decision) String() string {
	switch d {
	case SkipNode:
		return "skip_node"
	case SkipSubtree:
		return "skip_subtree"
	default:
		return "visit"
	}
}

// VisibilityPolicy decides which nodes take part in a frame. A skipped node's
// backend is never asked to render, and nothing may assume it was.
type VisibilityPolicy interface {
	Decide(n *element.Node, viewport graphics.Rect) Decision
}

// VisibilityFunc adapts a function to VisibilityPolicy.
type VisibilityFunc func(n *element.Node, viewport graphics.Rect) Decision

// Decide calls f.
func (f VisibilityFunc) Decide(n *element.Node, viewport graphics.Rect) Decision {
	return f(n, viewport)
}

// DefaultVisibility prunes hidden subtrees and, when CullOffscreen is set,
// skips laid-out nodes whose bounds miss the viewport.
//
// Culling only affects the node itself; children may be positioned outside
// their parent and are judged on their own bounds. Nodes that were never laid
// out, nodes with empty bounds, and frames with an empty viewport are never
// culled.
type DefaultVisibility struct {
	CullOffscreen bool
}

// Decide implements VisibilityPolicy.
func (v DefaultVisibility) Decide(n *element.Node, viewport graphics.Rect) Decision {
	if n.Hidden() {
		return SkipSubtree
	}
	if !v.CullOffscreen || !n.LaidOut() || viewport.IsEmpty() {
		return Visit
	}
	if b := n.Bounds(); !b.IsEmpty() && !b.Intersects(viewport) {
		return SkipNode
	}
	return Visit
}
