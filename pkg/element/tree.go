package element

import (
	"time"

	"github.com/go-drift/canopy/pkg/errors"
	"github.com/go-drift/canopy/pkg/graphics"
)

// slot is one arena entry. gen is bumped whenever the occupant is destroyed.
type slot struct {
	node *Node
	gen  uint32
}

// Tree owns the element nodes of one UI surface.
type Tree struct {
	slots []slot // index 0 is reserved so the zero Handle is never valid
	free  []uint32
	root  Handle
	live  int
}

// NewTree creates an empty tree.
func NewTree() *Tree {
	return &Tree{slots: make([]slot, 1, 64)}
}

// Create allocates a detached node with the given tag and returns the only
// strong reference to it. The caller either inserts the node into the tree
// or releases the Ref.
func (t *Tree) Create(tag string) *Ref {
	var index uint32
	if n := len(t.free); n > 0 {
		index = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		t.slots = append(t.slots, slot{})
		index = uint32(len(t.slots) - 1)
	}
	s := &t.slots[index]
	if s.gen == 0 {
		s.gen = 1
	}
	n := &Node{
		tree:   t,
		handle: Handle{index: index, gen: s.gen},
		tag:    tag,
		refs:   1,
	}
	s.node = n
	t.live++
	return &Ref{node: n}
}

// Lookup resolves a handle to a live node.
func (t *Tree) Lookup(h Handle) (*Node, bool) {
	n := t.lookup(h)
	return n, n != nil
}

func (t *Tree) lookup(h Handle) *Node {
	if h.IsZero() || int(h.index) >= len(t.slots) {
		return nil
	}
	s := t.slots[h.index]
	if s.gen != h.gen || s.node == nil {
		return nil
	}
	return s.node
}

// Len returns the number of live nodes, attached or not.
func (t *Tree) Len() int {
	return t.live
}

// Root returns the root node, or nil when the tree is empty.
func (t *Tree) Root() *Node {
	return t.lookup(t.root)
}

// SetRoot makes n the root. The previous root, if any, is detached and
// destroyed unless a Ref still pins it. Passing nil clears the root.
func (t *Tree) SetRoot(n *Node) error {
	if n != nil {
		if err := t.checkLive(n); err != nil {
			return err
		}
		if !n.parent.IsZero() {
			n.detachFromParent()
		}
	}
	old := t.Root()
	if old == n {
		return nil
	}
	if n != nil {
		t.root = n.handle
		n.attached = true
	} else {
		t.root = Handle{}
	}
	if old != nil {
		old.attached = false
		t.maybeDestroy(old)
	}
	return nil
}

// VisitResult steers a Walk.
type VisitResult int

const (
	// VisitContinue descends into the node's children.
	VisitContinue VisitResult = iota
	// VisitSkipChildren moves on to the next sibling.
	VisitSkipChildren
	// VisitStop ends the walk.
	VisitStop
)

// Walk visits the attached tree in paint order: parent before children,
// children in sibling order. It returns false if the visitor stopped early.
func (t *Tree) Walk(visit func(n *Node, depth int) VisitResult) bool {
	root := t.Root()
	if root == nil {
		return true
	}
	return t.walk(root, 0, visit)
}

func (t *Tree) walk(n *Node, depth int, visit func(*Node, int) VisitResult) bool {
	switch visit(n, depth) {
	case VisitStop:
		return false
	case VisitSkipChildren:
		return true
	}
	// Snapshot: a visitor may mutate the child list.
	children := append([]Handle(nil), n.children...)
	for _, h := range children {
		child := t.lookup(h)
		if child == nil {
			continue
		}
		if !t.walk(child, depth+1, visit) {
			return false
		}
	}
	return true
}

// HitTest returns the visible nodes whose bounds contain p, topmost first
// (the reverse of paint order).
func (t *Tree) HitTest(p graphics.Offset) []*Node {
	var hits []*Node
	t.Walk(func(n *Node, _ int) VisitResult {
		if n.hidden {
			return VisitSkipChildren
		}
		if n.laidOut && n.bounds.Contains(p) {
			hits = append(hits, n)
		}
		return VisitContinue
	})
	for i, j := 0, len(hits)-1; i < j; i, j = i+1, j-1 {
		hits[i], hits[j] = hits[j], hits[i]
	}
	return hits
}

func (t *Tree) checkLive(n *Node) error {
	if n.tree != t {
		return ErrForeignNode
	}
	if t.lookup(n.handle) != n {
		return ErrDestroyed
	}
	return nil
}

// maybeDestroy destroys n when nothing owns it any more.
func (t *Tree) maybeDestroy(n *Node) {
	if n.refs > 0 || n.attached || n.dying || t.lookup(n.handle) != n {
		return
	}
	t.destroy(n)
}

// destroy tears a node down. The backend is detached while the node is still
// intact; only then is the handle invalidated and the children released.
func (t *Tree) destroy(n *Node) {
	n.dying = true
	if b := n.backend; b != nil {
		if d, ok := b.(Disposer); ok {
			t.detachBackend(n, d)
		}
		n.backend = nil
	}

	s := &t.slots[n.handle.index]
	s.node = nil
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}
	t.free = append(t.free, n.handle.index)
	t.live--

	children := n.children
	n.children = nil
	n.attrs = nil
	for _, h := range children {
		child := t.lookup(h)
		if child == nil {
			continue
		}
		child.parent = Handle{}
		child.attached = false
		t.maybeDestroy(child)
	}
}

func (t *Tree) detachBackend(n *Node, d Disposer) {
	defer func() {
		if r := recover(); r != nil {
			errors.ReportPanic(&errors.PanicError{
				Op:         "element.Detach(" + n.tag + ")",
				Value:      r,
				StackTrace: errors.CaptureStack(),
				Timestamp:  time.Now(),
			})
		}
	}()
	d.Detach()
}
