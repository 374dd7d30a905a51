package element

import "fmt"

// Handle is the stable identity of a node within its tree. The generation
// distinguishes a live node from an earlier occupant of the same slot.
// The zero Handle never refers to a node.
type Handle struct {
	index uint32
	gen   uint32
}

// IsZero reports whether the handle is the zero value.
func (h Handle) IsZero() bool {
	return h.gen == 0
}

// String returns a compact printable form such as "#3.1".
func (h Handle) String() string {
	if h.IsZero() {
		return "#nil"
	}
	return fmt.Sprintf("#%d.%d", h.index, h.gen)
}

// Weak is a non-owning reference to a node. It never extends the node's
// lifetime; Upgrade is the only way to reach the node and fails once the node
// has been destroyed. The zero Weak upgrades to nothing.
type Weak struct {
	tree   *Tree
	handle Handle
}

// Handle returns the handle the reference was taken from.
func (w Weak) Handle() Handle {
	return w.handle
}

// Upgrade returns the node if it is still alive. Callers must not keep the
// returned pointer beyond the current call; take a Ref for that.
func (w Weak) Upgrade() (*Node, bool) {
	if w.tree == nil {
		return nil, false
	}
	n := w.tree.lookup(w.handle)
	return n, n != nil
}

// Retain upgrades the reference to a strong Ref that keeps the node alive
// until released.
func (w Weak) Retain() (*Ref, bool) {
	n, ok := w.Upgrade()
	if !ok {
		return nil, false
	}
	return n.Retain(), true
}

// Ref is a strong, ownership-bearing reference. While any Ref to a node is
// unreleased the node is not destroyed, even after removal from the tree.
type Ref struct {
	node *Node
}

// Node returns the referenced node, or nil after Release.
func (r *Ref) Node() *Node {
	if r == nil {
		return nil
	}
	return r.node
}

// Handle returns the node handle, or the zero Handle after Release.
func (r *Ref) Handle() Handle {
	if r == nil || r.node == nil {
		return Handle{}
	}
	return r.node.handle
}

// Weak returns a weak reference to the node.
func (r *Ref) Weak() Weak {
	if r == nil || r.node == nil {
		return Weak{}
	}
	return r.node.Weak()
}

// Released reports whether Release has been called.
func (r *Ref) Released() bool {
	return r == nil || r.node == nil
}

// Release drops the strong reference. The node is destroyed if it is not
// part of the tree and no other Ref remains. Release is idempotent.
func (r *Ref) Release() {
	if r == nil || r.node == nil {
		return
	}
	n := r.node
	r.node = nil
	n.refs--
	n.tree.maybeDestroy(n)
}
