package ir

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/raymyers/ralph-pl0/pkg/symbols"
)

func TestAddAdoptsChildren(t *testing.T) {
	tr := NewTree()
	l := tr.Add(nil, &Const{Value: 1})
	r := tr.Add(nil, &Const{Value: 2})
	e := tr.Add(nil, &BinExpr{Op: "plus", Left: l, Right: r})

	if tr.Parent(l) != e || tr.Parent(r) != e {
		t.Errorf("parents = %d, %d, want %d", tr.Parent(l), tr.Parent(r), e)
	}
	if got := tr.Children(e); len(got) != 2 || got[0] != l || got[1] != r {
		t.Errorf("Children = %v", got)
	}
}

func TestReplaceOverwritesSlot(t *testing.T) {
	tr := NewTree()
	l := tr.Add(nil, &Const{Value: 1})
	r := tr.Add(nil, &Const{Value: 2})
	e := tr.Add(nil, &BinExpr{Op: "plus", Left: l, Right: r})
	ps := tr.Add(nil, &PrintStat{Expr: e})
	root := tr.Add(nil, &StatList{Children: []NodeID{ps}})
	tr.Root = root

	// Rewrite the expression into a list that reuses both operands.
	list := tr.Add(nil, &StatList{Children: []NodeID{l, r}})
	if err := tr.Replace(ps, e, list); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	if got := tr.Payload(ps).(*PrintStat).Expr; got != list {
		t.Errorf("PrintStat.Expr = %d, want %d", got, list)
	}
	if tr.Parent(list) != ps {
		t.Errorf("new node parent = %d, want %d", tr.Parent(list), ps)
	}
	if tr.Parent(e) != NoNode {
		t.Error("old node should be detached")
	}
	if len(tr.Children(e)) != 0 {
		t.Error("old node should have no children left")
	}
	if tr.Parent(l) != list || tr.Parent(r) != list {
		t.Error("adopted operands should keep their new parent")
	}
	if !tr.Attached(l) || tr.Attached(e) {
		t.Error("Attached reports the wrong reachability")
	}
}

func TestReplaceErrors(t *testing.T) {
	tr := NewTree()
	a := tr.Add(nil, &EmptyStat{})
	b := tr.Add(nil, &EmptyStat{})
	list := tr.Add(nil, &StatList{Children: []NodeID{a}})

	if err := tr.Replace(NoNode, a, b); !errors.Is(err, ErrMissingParent) {
		t.Errorf("error = %v, want ErrMissingParent", err)
	}
	if err := tr.Replace(list, b, a); !errors.Is(err, ErrNotChild) {
		t.Errorf("error = %v, want ErrNotChild", err)
	}
}

func TestReplaceMovesLabel(t *testing.T) {
	tr := NewTree()
	f := symbols.NewFresh()
	a := tr.Add(nil, &EmptyStat{})
	list := tr.Add(nil, &StatList{Children: []NodeID{a}})
	lbl := f.Label()
	if err := tr.SetLabel(a, lbl); err != nil {
		t.Fatal(err)
	}
	b := tr.Add(nil, &EmptyStat{})
	if err := tr.Replace(list, a, b); err != nil {
		t.Fatal(err)
	}
	if id, _ := tr.LabelTarget(lbl); id != b {
		t.Errorf("label target = %d, want %d", id, b)
	}
	if tr.Node(b).Label != lbl || tr.Node(a).Label != nil {
		t.Error("label should move with the replacement")
	}
}

func TestLabels(t *testing.T) {
	tr := NewTree()
	f := symbols.NewFresh()
	a := tr.Add(nil, &EmptyStat{})
	b := tr.Add(nil, &EmptyStat{})
	l1 := f.Label()
	l2 := f.Label()

	if err := tr.SetLabel(a, l1); err != nil {
		t.Fatal(err)
	}
	if err := tr.SetLabel(b, l1); !errors.Is(err, ErrLabelBound) {
		t.Errorf("rebinding label: error = %v, want ErrLabelBound", err)
	}
	if err := tr.SetLabel(a, l2); !errors.Is(err, ErrLabelBound) {
		t.Errorf("labeling node twice: error = %v, want ErrLabelBound", err)
	}
	if err := tr.Relabel(l1, b); err != nil {
		t.Fatal(err)
	}
	if id, ok := tr.LabelTarget(l1); !ok || id != b {
		t.Errorf("LabelTarget = %d, %v, want %d", id, ok, b)
	}
	if tr.Node(a).Label != nil {
		t.Error("old node should lose the label")
	}
	if err := tr.Relabel(l2, a); err == nil {
		t.Error("relabeling an unbound label should fail")
	}
}

func TestFunctionAndOrders(t *testing.T) {
	tr := NewTree()
	proc := symbols.New("p", symbols.Function, symbols.ClassGlobal)
	inner := tr.Add(nil, &EmptyStat{})
	body := tr.Add(nil, &StatList{Children: []NodeID{inner}})
	fblock := tr.Add(nil, &Block{Body: body})
	fn := tr.Add(nil, &FunctionDef{Symbol: proc, Body: fblock})
	defs := tr.Add(nil, &DefinitionList{Defs: []NodeID{fn}})
	top := tr.Add(nil, &EmptyStat{})
	mainBody := tr.Add(nil, &StatList{Children: []NodeID{top}})
	root := tr.Add(nil, &Block{Defs: defs, Body: mainBody})
	tr.Root = root

	if tr.Function(inner) != fn {
		t.Errorf("Function(inner) = %d, want %d", tr.Function(inner), fn)
	}
	if tr.Function(top) != NoNode {
		t.Errorf("Function(top) = %d, want NoNode", tr.Function(top))
	}

	post := tr.PostOrder(root)
	if post[0] != inner || post[len(post)-1] != root {
		t.Errorf("PostOrder = %v", post)
	}
	pre := tr.PreOrder(root)
	if pre[0] != root || pre[1] != defs {
		t.Errorf("PreOrder = %v", pre)
	}
	if len(pre) != tr.Len() {
		t.Errorf("PreOrder visits %d nodes, tree has %d", len(pre), tr.Len())
	}
}

func TestSlotsOptionalElse(t *testing.T) {
	n := &IfStat{Cond: 1, Then: 2}
	if got := len(Slots(n)); got != 3 {
		t.Errorf("Slots = %d, want 3", got)
	}
	if got := len(Children(n)); got != 2 {
		t.Errorf("Children = %d, want 2", got)
	}
}

func TestInline(t *testing.T) {
	tr := NewTree()
	a := tr.Add(nil, &EmptyStat{})
	b := tr.Add(nil, &EmptyStat{})
	inner := tr.Add(nil, &StatList{Children: []NodeID{a, b}})
	before := tr.Add(nil, &EmptyStat{})
	after := tr.Add(nil, &EmptyStat{})
	outer := tr.Add(nil, &StatList{Children: []NodeID{before, inner, after}})
	tr.Root = outer

	if err := tr.Inline(inner); err != nil {
		t.Fatalf("Inline: %v", err)
	}
	got := tr.Children(outer)
	want := []NodeID{before, a, b, after}
	if len(got) != len(want) {
		t.Fatalf("children = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("children = %v, want %v", got, want)
		}
	}
	if tr.Parent(a) != outer || tr.Parent(b) != outer {
		t.Error("spliced children should point at the outer list")
	}
	if tr.Attached(inner) {
		t.Error("inlined list should be detached")
	}
}

func TestInlineErrors(t *testing.T) {
	tr := NewTree()
	lone := tr.Add(nil, &StatList{})
	if err := tr.Inline(lone); !errors.Is(err, ErrMissingParent) {
		t.Errorf("orphan list: got %v, want ErrMissingParent", err)
	}

	inner := tr.Add(nil, &StatList{})
	tr.Add(nil, &WhileStat{Body: inner})
	if err := tr.Inline(inner); !errors.Is(err, ErrNotChild) {
		t.Errorf("non-list parent: got %v, want ErrNotChild", err)
	}

	labeled := tr.Add(nil, &StatList{})
	tr.Add(nil, &StatList{Children: []NodeID{labeled}})
	if err := tr.SetLabel(labeled, symbols.New("label1", symbols.Label, symbols.ClassAuto)); err != nil {
		t.Fatal(err)
	}
	if err := tr.Inline(labeled); !errors.Is(err, ErrLabelBound) {
		t.Errorf("labeled list: got %v, want ErrLabelBound", err)
	}
}
