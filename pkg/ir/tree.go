package ir

import (
	"github.com/pkg/errors"

	"github.com/raymyers/ralph-pl0/pkg/symbols"
)

var (
	// ErrMissingParent is returned when rewriting a node that has no parent
	ErrMissingParent = errors.New("missing parent")
	// ErrNotChild is returned when the replaced node is not in the parent's slots
	ErrNotChild = errors.New("not a child of parent")
	// ErrLabelBound is returned when a label or node is labeled twice
	ErrLabelBound = errors.New("label already bound")
)

// Tree is an arena of IR nodes
type Tree struct {
	nodes  []*Node // index 0 is unused so NoNode never resolves
	Root   NodeID
	labels map[*symbols.Symbol]NodeID
}

// NewTree creates an empty tree
func NewTree() *Tree {
	return &Tree{
		nodes:  []*Node{nil},
		labels: make(map[*symbols.Symbol]NodeID),
	}
}

// Add creates a node and adopts every child named by its payload
func (t *Tree) Add(scope *symbols.Table, p Payload) NodeID {
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, &Node{ID: id, Scope: scope, Payload: p})
	for _, c := range Children(p) {
		t.nodes[c].Parent = id
	}
	return id
}

// Node returns the node for id, or nil
func (t *Tree) Node(id NodeID) *Node {
	if id <= NoNode || int(id) >= len(t.nodes) {
		return nil
	}
	return t.nodes[id]
}

// Payload returns the payload of id, or nil
func (t *Tree) Payload(id NodeID) Payload {
	if n := t.Node(id); n != nil {
		return n.Payload
	}
	return nil
}

// Parent returns the parent handle of id
func (t *Tree) Parent(id NodeID) NodeID {
	if n := t.Node(id); n != nil {
		return n.Parent
	}
	return NoNode
}

// Len returns the number of nodes ever allocated, detached ones included
func (t *Tree) Len() int {
	return len(t.nodes) - 1
}

// Children returns the child handles of id
func (t *Tree) Children(id NodeID) []NodeID {
	n := t.Node(id)
	if n == nil {
		return nil
	}
	return Children(n.Payload)
}

// Replace overwrites the slot of parent that holds old with new. The old
// node is detached: its parent is cleared and its slots are emptied, so every
// node stays reachable from exactly one slot. A label on old moves to new.
func (t *Tree) Replace(parent, old, new NodeID) error {
	pn := t.Node(parent)
	if pn == nil {
		return errors.Wrapf(ErrMissingParent, "node %d", old)
	}
	for _, slot := range Slots(pn.Payload) {
		if *slot != old {
			continue
		}
		*slot = new
		nn := t.nodes[new]
		nn.Parent = parent
		on := t.nodes[old]
		if on.Label != nil && nn.Label == nil {
			nn.Label = on.Label
			t.labels[on.Label] = new
			on.Label = nil
		}
		t.detach(old)
		return nil
	}
	return errors.Wrapf(ErrNotChild, "node %d, parent %d", old, parent)
}

func (t *Tree) detach(id NodeID) {
	n := t.nodes[id]
	n.Parent = NoNode
	for _, slot := range Slots(n.Payload) {
		if c := t.Node(*slot); c != nil && c.Parent == id {
			c.Parent = NoNode
		}
		*slot = NoNode
	}
}

// SetLabel marks node id with label. Each label and each node can be
// labeled once.
func (t *Tree) SetLabel(id NodeID, label *symbols.Symbol) error {
	if prev, ok := t.labels[label]; ok {
		return errors.Wrapf(ErrLabelBound, "%s already marks node %d", label.Name, prev)
	}
	n := t.Node(id)
	if n.Label != nil {
		return errors.Wrapf(ErrLabelBound, "node %d already has %s", id, n.Label.Name)
	}
	n.Label = label
	t.labels[label] = id
	return nil
}

// Relabel moves a bound label to another unlabeled node. Flattening uses it
// to keep a jump target alive when its statement list disappears.
func (t *Tree) Relabel(label *symbols.Symbol, to NodeID) error {
	from, ok := t.labels[label]
	if !ok {
		return errors.Errorf("label %s is not bound", label.Name)
	}
	n := t.Node(to)
	if n.Label != nil {
		return errors.Wrapf(ErrLabelBound, "node %d already has %s", to, n.Label.Name)
	}
	t.nodes[from].Label = nil
	n.Label = label
	t.labels[label] = to
	return nil
}

// LabelTarget returns the node marked by label
func (t *Tree) LabelTarget(label *symbols.Symbol) (NodeID, bool) {
	id, ok := t.labels[label]
	return id, ok
}

// Function returns the nearest enclosing FunctionDef of id, or NoNode for
// top-level code
func (t *Tree) Function(id NodeID) NodeID {
	for p := t.Parent(id); p != NoNode; p = t.Parent(p) {
		if _, ok := t.nodes[p].Payload.(*FunctionDef); ok {
			return p
		}
	}
	return NoNode
}

// PostOrder returns the subtree of id, children before parents
func (t *Tree) PostOrder(id NodeID) []NodeID {
	var res []NodeID
	var visit func(NodeID)
	visit = func(n NodeID) {
		for _, c := range t.Children(n) {
			visit(c)
		}
		res = append(res, n)
	}
	if t.Node(id) != nil {
		visit(id)
	}
	return res
}

// PreOrder returns the subtree of id, parents before children
func (t *Tree) PreOrder(id NodeID) []NodeID {
	var res []NodeID
	var visit func(NodeID)
	visit = func(n NodeID) {
		res = append(res, n)
		for _, c := range t.Children(n) {
			visit(c)
		}
	}
	if t.Node(id) != nil {
		visit(id)
	}
	return res
}

// Attached reports whether id is the root or hangs below it
func (t *Tree) Attached(id NodeID) bool {
	for n := id; n != NoNode; n = t.Parent(n) {
		if n == t.Root {
			return true
		}
	}
	return false
}

// Inline splices the statement list id into its parent statement list at
// its own position and detaches it. A labeled list must give up its label
// first.
func (t *Tree) Inline(id NodeID) error {
	n := t.Node(id)
	if n == nil {
		return errors.Errorf("node %d does not exist", id)
	}
	list, ok := n.Payload.(*StatList)
	if !ok {
		return errors.Errorf("node %d is a %s, not a statement list", id, KindName(n.Payload))
	}
	if n.Label != nil {
		return errors.Wrapf(ErrLabelBound, "list %d still carries %s", id, n.Label.Name)
	}
	pn := t.Node(n.Parent)
	if pn == nil {
		return errors.Wrapf(ErrMissingParent, "node %d", id)
	}
	outer, ok := pn.Payload.(*StatList)
	if !ok {
		return errors.Wrapf(ErrNotChild, "parent %d of node %d is not a statement list", pn.ID, id)
	}
	pos := -1
	for i, c := range outer.Children {
		if c == id {
			pos = i
			break
		}
	}
	if pos < 0 {
		return errors.Wrapf(ErrNotChild, "node %d, parent %d", id, pn.ID)
	}

	merged := make([]NodeID, 0, len(outer.Children)+len(list.Children)-1)
	merged = append(merged, outer.Children[:pos]...)
	merged = append(merged, list.Children...)
	merged = append(merged, outer.Children[pos+1:]...)
	for _, c := range list.Children {
		t.nodes[c].Parent = pn.ID
	}
	outer.Children = merged
	list.Children = nil
	n.Parent = NoNode
	return nil
}
