package element

import (
	"maps"
	"slices"

	"github.com/go-drift/canopy/pkg/graphics"
)

// Node is the native representation of one tree member.
type Node struct {
	tree     *Tree
	handle   Handle
	tag      string
	parent   Handle
	children []Handle
	bounds   graphics.Rect
	laidOut  bool
	hidden   bool
	attrs    map[string]string
	backend  Backend
	refs     int  // unreleased Refs
	attached bool // owned by the tree as root or child
	dying    bool
}

// Handle returns the node identity.
func (n *Node) Handle() Handle {
	return n.handle
}

// Tag returns the tag the node was created with.
func (n *Node) Tag() string {
	return n.tag
}

// Tree returns the owning tree.
func (n *Node) Tree() *Tree {
	return n.tree
}

// Alive reports whether the node has not been destroyed.
func (n *Node) Alive() bool {
	return n.tree != nil && n.tree.lookup(n.handle) == n
}

// Attached reports whether the tree owns the node as its root or as a child.
func (n *Node) Attached() bool {
	return n.attached
}

// Weak returns a non-owning reference to the node.
func (n *Node) Weak() Weak {
	return Weak{tree: n.tree, handle: n.handle}
}

// Retain returns a new strong reference. It returns nil for a destroyed node.
func (n *Node) Retain() *Ref {
	if !n.Alive() {
		return nil
	}
	n.refs++
	return &Ref{node: n}
}

// Backend returns the attached backend, or nil.
func (n *Node) Backend() Backend {
	return n.backend
}

// Attach binds a backend to the node. A node accepts exactly one backend in
// its lifetime, and the backend must be bound to this node.
func (n *Node) Attach(b Backend) error {
	if !n.Alive() || n.dying {
		return ErrDestroyed
	}
	if b == nil {
		return ErrNilBackend
	}
	if n.backend != nil {
		return ErrBackendAttached
	}
	if w := b.Element(); w.tree != n.tree || w.handle != n.handle {
		return ErrForeignBackend
	}
	n.backend = b
	return nil
}

// Bounds returns the layout rectangle in surface coordinates. Before the
// first layout pass it is the zero Rect.
func (n *Node) Bounds() graphics.Rect {
	return n.bounds
}

// Size returns the width and height of Bounds.
func (n *Node) Size() graphics.Size {
	return n.bounds.Size()
}

// LaidOut reports whether layout has assigned bounds at least once.
func (n *Node) LaidOut() bool {
	return n.laidOut
}

// SetBounds assigns geometry. It is called by the layout collaborator only.
func (n *Node) SetBounds(r graphics.Rect) {
	n.bounds = r
	n.laidOut = true
}

// Hidden reports whether the node and its subtree are excluded from painting.
func (n *Node) Hidden() bool {
	return n.hidden
}

// SetHidden shows or hides the node and its subtree.
func (n *Node) SetHidden(hidden bool) {
	n.hidden = hidden
}

// Attribute returns the named attribute.
func (n *Node) Attribute(name string) (string, bool) {
	v, ok := n.attrs[name]
	return v, ok
}

// Attributes returns a copy of all attributes.
func (n *Node) Attributes() map[string]string {
	return maps.Clone(n.attrs)
}

// SetAttribute stores an attribute and forwards the change to the backend's
// AttributeObserver hook, if any. Unchanged values are not forwarded.
func (n *Node) SetAttribute(name, value string) error {
	if !n.Alive() {
		return ErrDestroyed
	}
	old, existed := n.attrs[name]
	if existed && old == value {
		return nil
	}
	if n.attrs == nil {
		n.attrs = make(map[string]string)
	}
	n.attrs[name] = value
	if obs, ok := n.backend.(AttributeObserver); ok {
		obs.AttributeChanged(name, old, value)
	}
	return nil
}

// Parent returns the parent node, or nil for the root and detached nodes.
func (n *Node) Parent() *Node {
	if n.tree == nil {
		return nil
	}
	return n.tree.lookup(n.parent)
}

// Children returns the live children in order.
func (n *Node) Children() []*Node {
	out := make([]*Node, 0, len(n.children))
	for _, h := range n.children {
		if c := n.tree.lookup(h); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// ChildCount returns the number of children.
func (n *Node) ChildCount() int {
	return len(n.children)
}

// AppendChild inserts child as the last child of n, removing it from any
// previous parent first.
func (n *Node) AppendChild(child *Node) error {
	return n.InsertChild(len(n.children), child)
}

// InsertChild inserts child at index (clamped to the valid range), removing
// it from any previous parent first.
func (n *Node) InsertChild(index int, child *Node) error {
	if err := n.tree.checkLive(n); err != nil {
		return err
	}
	if err := n.tree.checkLive(child); err != nil {
		return err
	}
	if n.tree.root == child.handle {
		return ErrIsRoot
	}
	for a := n; a != nil; a = a.Parent() {
		if a == child {
			return ErrCycle
		}
	}
	if !child.parent.IsZero() {
		if child.parent == n.handle {
			if i := slices.Index(n.children, child.handle); i < index {
				index--
			}
		}
		child.detachFromParent()
	}
	index = max(0, min(index, len(n.children)))
	n.children = slices.Insert(n.children, index, child.handle)
	child.parent = n.handle
	child.attached = true
	return nil
}

// Remove detaches the node from its parent (or clears it as the tree root).
// The node is destroyed unless a Ref still pins it.
func (n *Node) Remove() {
	if !n.Alive() {
		return
	}
	if n.tree.root == n.handle {
		_ = n.tree.SetRoot(nil)
		return
	}
	if n.parent.IsZero() {
		return
	}
	n.detachFromParent()
	n.attached = false
	n.tree.maybeDestroy(n)
}

// detachFromParent unlinks n from its parent's child list without touching
// ownership state.
func (n *Node) detachFromParent() {
	if p := n.tree.lookup(n.parent); p != nil {
		if i := slices.Index(p.children, n.handle); i >= 0 {
			p.children = slices.Delete(p.children, i, i+1)
		}
	}
	n.parent = Handle{}
}
