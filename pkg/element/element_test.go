package element

import (
	"errors"
	"testing"

	"github.com/go-drift/canopy/pkg/graphics"
)

type probeBackend struct {
	BackendBase
	detached     int
	aliveOnClose bool
	changes      []string
}

func newProbe(w Weak) Backend {
	return &probeBackend{BackendBase: NewBackendBase(w)}
}

func (b *probeBackend) Detach() {
	b.detached++
	_, b.aliveOnClose = b.Element().Upgrade()
}

func (b *probeBackend) AttributeChanged(name, old, value string) {
	b.changes = append(b.changes, name+":"+old+"->"+value)
}

func (b *probeBackend) Render() (DrawFunc, error) {
	n, err := b.Node()
	if err != nil {
		return nil, err
	}
	size := n.Size()
	return func(p graphics.Painter) {
		p.DrawRect(graphics.RectFromLTWH(0, 0, size.Width, size.Height), graphics.DefaultPaint())
	}, nil
}

func createWithProbe(t *testing.T, tree *Tree, tag string) (*Ref, *probeBackend) {
	t.Helper()
	ref := tree.Create(tag)
	b := newProbe(ref.Weak())
	if err := ref.Node().Attach(b); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	return ref, b.(*probeBackend)
}

func TestWeakUpgradeFailsAfterDestroy(t *testing.T) {
	tree := NewTree()
	ref, backend := createWithProbe(t, tree, "hello")
	weak := ref.Weak()

	if _, ok := weak.Upgrade(); !ok {
		t.Fatal("upgrade should succeed while the node is alive")
	}

	ref.Release()

	if _, ok := weak.Upgrade(); ok {
		t.Error("upgrade should fail after destroy")
	}
	if backend.detached != 1 {
		t.Errorf("Detach called %d times, want 1", backend.detached)
	}
	if !backend.aliveOnClose {
		t.Error("node should still be intact while the backend is detached")
	}
	if _, err := backend.Render(); !errors.Is(err, ErrStaleBackend) {
		t.Errorf("Render after destroy = %v, want ErrStaleBackend", err)
	}
	if tree.Len() != 0 {
		t.Errorf("Len = %d, want 0", tree.Len())
	}
}

func TestSlotReuseDoesNotResurrectWeak(t *testing.T) {
	tree := NewTree()
	first := tree.Create("a")
	weak := first.Weak()
	first.Release()

	second := tree.Create("b")
	defer second.Release()

	if second.Handle().index != weak.Handle().index {
		t.Fatalf("expected slot reuse, got %v and %v", second.Handle(), weak.Handle())
	}
	if n, ok := weak.Upgrade(); ok {
		t.Errorf("stale weak upgraded to %q", n.Tag())
	}
}

func TestRefPinsNodeAfterRemoval(t *testing.T) {
	tree := NewTree()
	root := tree.Create("root")
	if err := tree.SetRoot(root.Node()); err != nil {
		t.Fatal(err)
	}
	root.Release()

	child := tree.Create("child")
	if err := tree.Root().AppendChild(child.Node()); err != nil {
		t.Fatal(err)
	}
	weak := child.Weak()

	child.Node().Remove()
	if _, ok := weak.Upgrade(); !ok {
		t.Fatal("Ref should keep removed node alive")
	}
	if child.Node().Attached() {
		t.Error("removed node should not be attached")
	}

	child.Release()
	if _, ok := weak.Upgrade(); ok {
		t.Error("node should be destroyed once removed and released")
	}
	child.Release() // idempotent
}

func TestTreeOwnershipKeepsChildAlive(t *testing.T) {
	tree := NewTree()
	root := tree.Create("root")
	_ = tree.SetRoot(root.Node())
	child := tree.Create("child")
	_ = root.Node().AppendChild(child.Node())
	weak := child.Weak()

	child.Release()
	root.Release()

	if _, ok := weak.Upgrade(); !ok {
		t.Fatal("attached child should survive releasing its creator Ref")
	}

	_ = tree.SetRoot(nil)
	if _, ok := weak.Upgrade(); ok {
		t.Error("child should be destroyed with its root")
	}
	if tree.Len() != 0 {
		t.Errorf("Len = %d, want 0", tree.Len())
	}
}

func TestDestroyDetachesParentBeforeChildren(t *testing.T) {
	tree := NewTree()
	var order []string
	mk := func(tag string) *Ref {
		ref := tree.Create(tag)
		_ = ref.Node().Attach(&orderBackend{BackendBase: NewBackendBase(ref.Weak()), tag: tag, order: &order})
		return ref
	}
	root := mk("root")
	_ = tree.SetRoot(root.Node())
	a, b := mk("a"), mk("b")
	_ = root.Node().AppendChild(a.Node())
	_ = root.Node().AppendChild(b.Node())
	a.Release()
	b.Release()
	root.Release()

	_ = tree.SetRoot(nil)

	want := []string{"root", "a", "b"}
	if len(order) != len(want) {
		t.Fatalf("detach order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("detach order = %v, want %v", order, want)
		}
	}
}

type orderBackend struct {
	BackendBase
	tag   string
	order *[]string
}

func (b *orderBackend) Detach() { *b.order = append(*b.order, b.tag) }

func TestReparentRemovesFromOldParent(t *testing.T) {
	tree := NewTree()
	root := tree.Create("root")
	_ = tree.SetRoot(root.Node())
	p1 := tree.Create("p1")
	p2 := tree.Create("p2")
	c := tree.Create("c")
	_ = root.Node().AppendChild(p1.Node())
	_ = root.Node().AppendChild(p2.Node())
	_ = p1.Node().AppendChild(c.Node())

	if err := p2.Node().AppendChild(c.Node()); err != nil {
		t.Fatal(err)
	}
	if p1.Node().ChildCount() != 0 {
		t.Errorf("old parent still has %d children", p1.Node().ChildCount())
	}
	if c.Node().Parent() != p2.Node() {
		t.Error("child should report new parent")
	}
}

func TestInsertChildOrderAndMoveWithinParent(t *testing.T) {
	tree := NewTree()
	p := tree.Create("p")
	a, b, c := tree.Create("a"), tree.Create("b"), tree.Create("c")
	_ = p.Node().AppendChild(a.Node())
	_ = p.Node().AppendChild(b.Node())
	_ = p.Node().InsertChild(0, c.Node())
	assertTags(t, p.Node().Children(), "c", "a", "b")

	// Move c to the end.
	_ = p.Node().AppendChild(c.Node())
	assertTags(t, p.Node().Children(), "a", "b", "c")

	_ = p.Node().InsertChild(-5, b.Node())
	assertTags(t, p.Node().Children(), "b", "a", "c")
}

func assertTags(t *testing.T, nodes []*Node, want ...string) {
	t.Helper()
	if len(nodes) != len(want) {
		t.Fatalf("got %d nodes, want %v", len(nodes), want)
	}
	for i, n := range nodes {
		if n.Tag() != want[i] {
			got := make([]string, len(nodes))
			for j, m := range nodes {
				got[j] = m.Tag()
			}
			t.Fatalf("tags = %v, want %v", got, want)
		}
	}
}

func TestInsertRejectsCycles(t *testing.T) {
	tree := NewTree()
	a := tree.Create("a")
	b := tree.Create("b")
	_ = a.Node().AppendChild(b.Node())

	if err := b.Node().AppendChild(a.Node()); !errors.Is(err, ErrCycle) {
		t.Errorf("ancestor insert err = %v, want ErrCycle", err)
	}
	if err := a.Node().AppendChild(a.Node()); !errors.Is(err, ErrCycle) {
		t.Errorf("self insert err = %v, want ErrCycle", err)
	}
}

func TestInsertRejectsRootAndForeignNodes(t *testing.T) {
	tree := NewTree()
	root := tree.Create("root")
	_ = tree.SetRoot(root.Node())
	other := tree.Create("other")
	if err := other.Node().AppendChild(root.Node()); !errors.Is(err, ErrIsRoot) {
		t.Errorf("err = %v, want ErrIsRoot", err)
	}

	foreign := NewTree().Create("x")
	if err := root.Node().AppendChild(foreign.Node()); !errors.Is(err, ErrForeignNode) {
		t.Errorf("err = %v, want ErrForeignNode", err)
	}
}

func TestAttachExactlyOnce(t *testing.T) {
	tree := NewTree()
	ref, _ := createWithProbe(t, tree, "hello")

	if err := ref.Node().Attach(newProbe(ref.Weak())); !errors.Is(err, ErrBackendAttached) {
		t.Errorf("second Attach err = %v, want ErrBackendAttached", err)
	}

	other := tree.Create("other")
	if err := other.Node().Attach(newProbe(ref.Weak())); !errors.Is(err, ErrForeignBackend) {
		t.Errorf("foreign Attach err = %v, want ErrForeignBackend", err)
	}
	if err := other.Node().Attach(nil); !errors.Is(err, ErrNilBackend) {
		t.Errorf("nil Attach err = %v, want ErrNilBackend", err)
	}
}

func TestBoundsDefaultBeforeLayout(t *testing.T) {
	tree := NewTree()
	ref := tree.Create("hello")
	n := ref.Node()
	if n.LaidOut() {
		t.Error("new node should not be laid out")
	}
	if n.Bounds() != (graphics.Rect{}) || n.Size() != (graphics.Size{}) {
		t.Errorf("bounds before layout = %v, want zero", n.Bounds())
	}
	n.SetBounds(graphics.RectFromLTWH(0, 0, 100, 100))
	if !n.LaidOut() || n.Size() != (graphics.Size{Width: 100, Height: 100}) {
		t.Errorf("bounds after layout = %v", n.Bounds())
	}
}

func TestSetAttributeForwardsChanges(t *testing.T) {
	tree := NewTree()
	ref, backend := createWithProbe(t, tree, "hello")
	n := ref.Node()

	_ = n.SetAttribute("fill", "#ff0000")
	_ = n.SetAttribute("fill", "#ff0000")
	_ = n.SetAttribute("fill", "#00ff00")

	want := []string{"fill:->#ff0000", "fill:#ff0000->#00ff00"}
	if len(backend.changes) != len(want) {
		t.Fatalf("changes = %v, want %v", backend.changes, want)
	}
	for i := range want {
		if backend.changes[i] != want[i] {
			t.Errorf("changes[%d] = %q, want %q", i, backend.changes[i], want[i])
		}
	}

	ref.Release()
	if err := n.SetAttribute("fill", "x"); !errors.Is(err, ErrDestroyed) {
		t.Errorf("SetAttribute on destroyed node = %v, want ErrDestroyed", err)
	}
}

func TestWalkOrderAndSkip(t *testing.T) {
	tree := NewTree()
	root := tree.Create("root")
	_ = tree.SetRoot(root.Node())
	a, b, c := tree.Create("a"), tree.Create("b"), tree.Create("c")
	a1 := tree.Create("a1")
	_ = root.Node().AppendChild(a.Node())
	_ = root.Node().AppendChild(b.Node())
	_ = root.Node().AppendChild(c.Node())
	_ = a.Node().AppendChild(a1.Node())

	var visited []string
	tree.Walk(func(n *Node, depth int) VisitResult {
		visited = append(visited, n.Tag())
		return VisitContinue
	})
	want := []string{"root", "a", "a1", "b", "c"}
	if len(visited) != len(want) {
		t.Fatalf("visited = %v, want %v", visited, want)
	}
	for i := range want {
		if visited[i] != want[i] {
			t.Fatalf("visited = %v, want %v", visited, want)
		}
	}

	visited = visited[:0]
	completed := tree.Walk(func(n *Node, depth int) VisitResult {
		visited = append(visited, n.Tag())
		switch n.Tag() {
		case "a":
			return VisitSkipChildren
		case "b":
			return VisitStop
		}
		return VisitContinue
	})
	if completed {
		t.Error("Walk should report an early stop")
	}
	if got := len(visited); got != 3 {
		t.Errorf("visited = %v, want root a b", visited)
	}
}

func TestHitTestTopmostFirst(t *testing.T) {
	tree := NewTree()
	root := tree.Create("root")
	_ = tree.SetRoot(root.Node())
	root.Node().SetBounds(graphics.RectFromLTWH(0, 0, 200, 200))
	under := tree.Create("under")
	over := tree.Create("over")
	hidden := tree.Create("hidden")
	for _, r := range []*Ref{under, over, hidden} {
		r.Node().SetBounds(graphics.RectFromLTWH(0, 0, 50, 50))
		_ = root.Node().AppendChild(r.Node())
	}
	hidden.Node().SetHidden(true)

	hits := tree.HitTest(graphics.Offset{X: 10, Y: 10})
	assertTags(t, hits, "over", "under", "root")

	if got := tree.HitTest(graphics.Offset{X: 150, Y: 150}); len(got) != 1 {
		t.Errorf("expected only root hit, got %d", len(got))
	}
}

func TestRetainFromWeak(t *testing.T) {
	tree := NewTree()
	ref := tree.Create("x")
	strong, ok := ref.Weak().Retain()
	if !ok {
		t.Fatal("Retain should succeed on a live node")
	}
	weak := ref.Weak()
	ref.Release()
	if _, ok := weak.Upgrade(); !ok {
		t.Fatal("second Ref should keep node alive")
	}
	strong.Release()
	if _, ok := weak.Retain(); ok {
		t.Error("Retain should fail after destroy")
	}
	if (Weak{}).Handle() != (Handle{}) {
		t.Error("zero Weak should have zero handle")
	}
	if _, ok := (Weak{}).Upgrade(); ok {
		t.Error("zero Weak should not upgrade")
	}
}

func TestDetachPanicIsContained(t *testing.T) {
	tree := NewTree()
	ref := tree.Create("bad")
	_ = ref.Node().Attach(&panicDisposer{BackendBase: NewBackendBase(ref.Weak())})
	weak := ref.Weak()

	ref.Release()

	if _, ok := weak.Upgrade(); ok {
		t.Error("node should still be destroyed when Detach panics")
	}
}

type panicDisposer struct{ BackendBase }

func (panicDisposer) Detach() { panic("detach failed") }
