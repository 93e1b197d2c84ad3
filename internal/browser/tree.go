package browser

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dshills/workbench/internal/notify"
	"github.com/dshills/workbench/internal/solution"
	"github.com/google/uuid"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Sort orders of node kinds. Siblings sort by order, then by name.
const (
	folderOrder  = 0
	projectOrder = 1
	fileOrder    = 2
)

// Node is one entry of the browser tree. Its links are guarded by the
// tree's mutex.
type Node struct {
	tree     *Tree
	item     solution.Item
	parent   *Node
	children []*Node
	cut      bool
}

// Item returns the solution item shown by the node.
func (n *Node) Item() solution.Item { return n.item }

// Parent returns the parent node, or nil for the root and for nodes no
// longer in the tree.
func (n *Node) Parent() *Node {
	n.tree.mu.Lock()
	defer n.tree.mu.Unlock()
	return n.parent
}

// Children returns the child nodes in display order.
func (n *Node) Children() []*Node {
	n.tree.mu.Lock()
	defer n.tree.mu.Unlock()
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Folder returns the node's folder, or nil when it shows another item.
func (n *Node) Folder() *solution.Folder {
	f, _ := n.item.(*solution.Folder)
	return f
}

// IsCut reports whether the node was cut and not yet pasted.
func (n *Node) IsCut() bool {
	n.tree.mu.Lock()
	defer n.tree.mu.Unlock()
	return n.cut
}

func (n *Node) sortOrder() int {
	switch n.item.Kind() {
	case solution.KindFolder:
		return folderOrder
	case solution.KindProject:
		return projectOrder
	default:
		return fileOrder
	}
}

// Tree mirrors a solution as sorted nodes and follows its changes.
type Tree struct {
	mu    sync.Mutex
	sln   *solution.Solution
	root  *Node
	nodes map[uuid.UUID]*Node
	coll  *collate.Collator
	sub   *notify.Subscription
}

// NewTree builds the node tree of sln and keeps it in sync until Close.
func NewTree(sln *solution.Solution) *Tree {
	t := &Tree{
		sln:   sln,
		nodes: make(map[uuid.UUID]*Node),
		coll:  collate.New(language.Und, collate.IgnoreCase, collate.Numeric),
	}
	t.mu.Lock()
	t.root = t.build(sln.Root(), nil)
	t.mu.Unlock()
	t.sub = sln.Subscribe(t.apply)
	return t
}

// Close stops following the solution.
func (t *Tree) Close() {
	t.sub.Unsubscribe()
}

// Solution returns the solution the tree shows.
func (t *Tree) Solution() *solution.Solution { return t.sln }

// Root returns the node of the solution root folder.
func (t *Tree) Root() *Node { return t.root }

// Node returns the node showing item, or nil.
func (t *Tree) Node(item solution.Item) *Node {
	if item == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.nodes[item.ID()]
}

// build creates the node for item and, for folders, its subtree.
// Callers hold mu.
func (t *Tree) build(item solution.Item, parent *Node) *Node {
	n := &Node{tree: t, item: item}
	t.nodes[item.ID()] = n
	if parent != nil {
		t.insertSorted(n, parent)
	}
	if f, ok := item.(*solution.Folder); ok {
		for _, child := range f.Items() {
			t.build(child, n)
		}
	}
	return n
}

// less orders siblings. Callers hold mu.
func (t *Tree) less(a, b *Node) bool {
	if oa, ob := a.sortOrder(), b.sortOrder(); oa != ob {
		return oa < ob
	}
	return t.coll.CompareString(a.item.Name(), b.item.Name()) < 0
}

// insertSorted places n among parent's children. Callers hold mu.
func (t *Tree) insertSorted(n, parent *Node) {
	i := 0
	for i < len(parent.children) && !t.less(n, parent.children[i]) {
		i++
	}
	parent.children = append(parent.children, nil)
	copy(parent.children[i+1:], parent.children[i:])
	parent.children[i] = n
	n.parent = parent
}

// detach removes n from its parent. Callers hold mu.
func detach(n *Node) {
	p := n.parent
	if p == nil {
		return
	}
	for i, c := range p.children {
		if c == n {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	n.parent = nil
}

// forget drops n and its subtree from the index. Callers hold mu.
func (t *Tree) forget(n *Node) {
	delete(t.nodes, n.item.ID())
	for _, c := range n.children {
		t.forget(c)
	}
}

// apply updates the tree for one solution change.
func (t *Tree) apply(c solution.Change) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch c.Type {
	case solution.ChangeAdded, solution.ChangeMoved:
		t.place(c.Item, c.NewParent)
	case solution.ChangeRemoved:
		if n := t.nodes[c.Item.ID()]; n != nil {
			detach(n)
			t.forget(n)
		}
	case solution.ChangeRenamed:
		if n := t.nodes[c.Item.ID()]; n != nil && n.parent != nil {
			parent := n.parent
			detach(n)
			t.insertSorted(n, parent)
		}
	}
}

// place shows item under the node of folder. Items moved into a folder
// outside the tree are dropped from it; items arriving from outside get a
// fresh subtree. Callers hold mu.
func (t *Tree) place(item solution.Item, folder *solution.Folder) {
	n := t.nodes[item.ID()]
	var parent *Node
	if folder != nil {
		parent = t.nodes[folder.ID()]
	}
	switch {
	case parent == nil:
		if n != nil {
			detach(n)
			t.forget(n)
		}
	case n == nil:
		t.build(item, parent)
	default:
		detach(n)
		n.cut = false
		t.insertSorted(n, parent)
	}
}

// Refresh rebuilds the subtree below n from the solution.
func (t *Tree) Refresh(n *Node) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, c := range n.children {
		t.forget(c)
	}
	n.children = nil
	if f, ok := n.item.(*solution.Folder); ok {
		for _, child := range f.Items() {
			t.build(child, n)
		}
	}
}

// Render writes the tree as indented lines. Folders are marked with '+',
// projects with '*' and files with '-'. Unloaded projects carry "(!)" and
// cut nodes "(cut)".
func (t *Tree) Render(w io.Writer) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := fmt.Fprintf(w, "Solution '%s'\n", t.root.item.Name()); err != nil {
		return err
	}
	var render func(n *Node, depth int) error
	render = func(n *Node, depth int) error {
		for _, c := range n.children {
			if _, err := fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), label(c)); err != nil {
				return err
			}
			if err := render(c, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	return render(t.root, 1)
}

func label(n *Node) string {
	var b strings.Builder
	switch n.item.Kind() {
	case solution.KindFolder:
		b.WriteString("+ ")
	case solution.KindProject:
		b.WriteString("* ")
	default:
		b.WriteString("- ")
	}
	b.WriteString(n.item.Name())
	if _, ok := n.item.(*solution.UnknownProject); ok {
		b.WriteString(" (!)")
	}
	if n.cut {
		b.WriteString(" (cut)")
	}
	return b.String()
}
