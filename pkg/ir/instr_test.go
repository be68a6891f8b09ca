package ir

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/raymyers/ralph-pl0/pkg/symbols"
)

func TestConstructorsRejectOperandClass(t *testing.T) {
	f := symbols.NewFresh()
	tmp := f.Temp(symbols.Int)
	tmp2 := f.Temp(symbols.Int)
	mem := symbols.New("x", symbols.Int, symbols.ClassGlobal)
	imm := symbols.NewConst("k", 1)
	lbl := f.Label()

	tests := []struct {
		name  string
		build func() error
		ok    bool
	}{
		{"loadimm to register", func() error { _, err := NewLoadImm(tmp, 1); return err }, true},
		{"loadimm to memory", func() error { _, err := NewLoadImm(mem, 1); return err }, false},
		{"load from memory", func() error { _, err := NewLoad(tmp, mem, nil); return err }, true},
		{"load through pointer", func() error { _, err := NewLoad(tmp, tmp2, mem); return err }, true},
		{"load to memory", func() error { _, err := NewLoad(mem, tmp, nil); return err }, false},
		{"load from immediate", func() error { _, err := NewLoad(tmp, imm, nil); return err }, false},
		{"store to memory", func() error { _, err := NewStore(mem, tmp, nil); return err }, true},
		{"store from memory", func() error { _, err := NewStore(mem, mem, nil); return err }, false},
		{"store to immediate", func() error { _, err := NewStore(imm, tmp, nil); return err }, false},
		{"address of memory", func() error { _, err := NewLoadPtrToSym(tmp, mem); return err }, true},
		{"address of register", func() error { _, err := NewLoadPtrToSym(tmp, tmp2); return err }, false},
		{"binstat registers", func() error { _, err := NewBinStat("plus", tmp, tmp, tmp2); return err }, true},
		{"binstat memory src", func() error { _, err := NewBinStat("plus", tmp, mem, tmp2); return err }, false},
		{"binstat memory dest", func() error { _, err := NewBinStat("plus", mem, tmp, tmp2); return err }, false},
		{"unary registers", func() error { _, err := NewUnaryStat("minus", tmp, tmp2); return err }, true},
		{"unary memory src", func() error { _, err := NewUnaryStat("minus", tmp, mem); return err }, false},
		{"branch unconditional", func() error { _, err := NewBranch(nil, lbl, false, false); return err }, true},
		{"branch on register", func() error { _, err := NewBranch(tmp, lbl, false, true); return err }, true},
		{"branch on memory", func() error { _, err := NewBranch(mem, lbl, false, false); return err }, false},
		{"branch without target", func() error { _, err := NewBranch(nil, nil, false, false); return err }, false},
		{"print register", func() error { _, err := NewPrint(tmp); return err }, true},
		{"print memory", func() error { _, err := NewPrint(mem); return err }, false},
		{"read register", func() error { _, err := NewRead(tmp); return err }, true},
		{"read memory", func() error { _, err := NewRead(mem); return err }, false},
		{"missing operand", func() error { _, err := NewPrint(nil); return err }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrOperandClass) {
				t.Errorf("error = %v, want ErrOperandClass", err)
			}
		})
	}
}

func TestUsesKillsDestination(t *testing.T) {
	tr := NewTree()
	f := symbols.NewFresh()
	x := symbols.New("x", symbols.Int, symbols.ClassGlobal)
	arr := symbols.New("a", symbols.Tarray{Elem: symbols.Int, Dims: []int{4}}, symbols.ClassGlobal)
	proc := symbols.New("p", symbols.Function, symbols.ClassGlobal)
	scope := symbols.NewTable(x, arr, proc)
	t0 := f.Temp(symbols.Int)
	t1 := f.Temp(symbols.Int)
	ptr := f.Temp(symbols.Tpointer{Elem: symbols.Int})

	add := func(p Payload) NodeID { return tr.Add(scope, p) }
	names := func(syms []*symbols.Symbol) []string {
		var res []string
		for _, s := range syms {
			res = append(res, s.Name)
		}
		return res
	}

	tests := []struct {
		name  string
		node  NodeID
		uses  []string
		kills []string
		dest  string
	}{
		{"load", add(&Load{Dest: t0, Src: x}), []string{"x"}, []string{"t0"}, "t0"},
		{"load through pointer", add(&Load{Dest: t0, Src: ptr, UseHint: arr}), []string{"t2", "a"}, []string{"t0"}, "t0"},
		{"store to memory", add(&Store{Dest: x, Src: t0}), []string{"t0"}, []string{"x"}, "x"},
		{"store through pointer", add(&Store{Dest: ptr, Src: t0}), []string{"t0", "t2"}, nil, "t2"},
		{"store with kill hint", add(&Store{Dest: ptr, Src: t0, KillHint: arr}), []string{"t0", "t2"}, []string{"a"}, "t2"},
		{"loadimm", add(&LoadImm{Dest: t1, Value: 3}), nil, []string{"t1"}, "t1"},
		{"address", add(&LoadPtrToSym{Dest: ptr, Symbol: arr}), []string{"a"}, []string{"t2"}, "t2"},
		{"binstat", add(&BinStat{Dest: t1, Op: "plus", A: t0, B: t0}), []string{"t0", "t0"}, []string{"t1"}, "t1"},
		{"unary", add(&UnaryStat{Dest: t1, Op: "odd", Src: t0}), []string{"t0"}, []string{"t1"}, "t1"},
		{"print", add(&PrintCommand{Src: t0}), []string{"t0"}, nil, ""},
		{"read", add(&ReadCommand{Dest: t0}), nil, []string{"t0"}, "t0"},
		{"branch", add(&BranchStat{Cond: t0, Target: f.Label(), NegCond: true}), []string{"t0"}, nil, ""},
		{"call", add(&BranchStat{Target: proc, Returns: true}), []string{"x", "a"}, nil, ""},
		{"var", add(&Var{Name: "x", Symbol: x}), []string{"x"}, nil, ""},
		{"unresolved var", add(&Var{Name: "y"}), nil, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := names(tr.Uses(tt.node)); !equalStrings(got, tt.uses) {
				t.Errorf("Uses = %v, want %v", got, tt.uses)
			}
			if got := names(tr.Kills(tt.node)); !equalStrings(got, tt.kills) {
				t.Errorf("Kills = %v, want %v", got, tt.kills)
			}
			got := ""
			if d := tr.Destination(tt.node); d != nil {
				got = d.Name
			}
			if got != tt.dest {
				t.Errorf("Destination = %q, want %q", got, tt.dest)
			}
		})
	}
}

func TestStatListDestinationAndUses(t *testing.T) {
	tr := NewTree()
	f := symbols.NewFresh()
	x := symbols.New("x", symbols.Int, symbols.ClassGlobal)
	t0 := f.Temp(symbols.Int)
	t1 := f.Temp(symbols.Int)

	ld := tr.Add(nil, &Load{Dest: t0, Src: x})
	op := tr.Add(nil, &UnaryStat{Dest: t1, Op: "minus", Src: t0})
	pr := tr.Add(nil, &PrintCommand{Src: t1})
	list := tr.Add(nil, &StatList{Children: []NodeID{ld, op, pr}})

	if d := tr.Destination(list); d != t1 {
		t.Errorf("Destination = %v, want t1", d)
	}
	if got := len(tr.Uses(list)); got != 3 {
		t.Errorf("Uses has %d entries, want 3", got)
	}
	empty := tr.Add(nil, &StatList{})
	if tr.Destination(empty) != nil {
		t.Error("empty list has no destination")
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
