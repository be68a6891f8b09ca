package datalayout

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/raymyers/ralph-pl0/pkg/ir"
	"github.com/raymyers/ralph-pl0/pkg/lexer"
	"github.com/raymyers/ralph-pl0/pkg/parser"
	"github.com/raymyers/ralph-pl0/pkg/symbols"
)

func parse(t *testing.T, src string) (*ir.Tree, *parser.Parser) {
	t.Helper()
	p := parser.New(lexer.New(src))
	tree := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	return tree, p
}

func procBlock(t *testing.T, tree *ir.Tree, name string) *ir.Block {
	t.Helper()
	for _, id := range tree.PreOrder(tree.Root) {
		if fn, ok := tree.Payload(id).(*ir.FunctionDef); ok && fn.Symbol.Name == name {
			return tree.Payload(fn.Body).(*ir.Block)
		}
	}
	t.Fatalf("procedure %s not found", name)
	return nil
}

func TestPerform(t *testing.T) {
	tree, p := parse(t, `
const k = 3;
var g, buf[4]: short;
procedure p;
  var a: char, b, m[2][2];
  a := 1;
procedure q;
  g := 2;
g := k.`)
	if err := Perform(tree); err != nil {
		t.Fatalf("Perform: %v", err)
	}

	globals := []struct {
		name string
		want string
	}{
		{"g", "_g_g: def byte 4"},
		{"buf", "_g_buf: def byte 8"},
	}
	for _, tt := range globals {
		t.Run(tt.name, func(t *testing.T) {
			sym := p.Globals().Find(tt.name)
			if sym.Placement() == nil {
				t.Fatalf("%s has no placement", tt.name)
			}
			if got := sym.Placement().(symbols.GlobalPlacement).String(); got != tt.want {
				t.Errorf("placement = %q, want %q", got, tt.want)
			}
		})
	}
	for _, name := range []string{"k", "p", "q"} {
		if p.Globals().Find(name).Placement() != nil {
			t.Errorf("%s should not be placed", name)
		}
	}

	pb := procBlock(t, tree, "p")
	locals := []struct {
		name   string
		offset int
		size   int
		link   string
	}{
		{"a", -1, 1, "_l_p_a"},
		{"b", -5, 4, "_l_p_b"},
		{"m", -21, 16, "_l_p_m"},
	}
	for _, tt := range locals {
		sym := pb.Locals.Find(tt.name)
		lp, ok := sym.Placement().(symbols.LocalPlacement)
		if !ok {
			t.Fatalf("%s placement = %v", tt.name, sym.Placement())
		}
		if lp.FrameOffset != tt.offset || lp.Size != tt.size || lp.Name != tt.link {
			t.Errorf("%s = %+v, want offset %d size %d name %s", tt.name, lp, tt.offset, tt.size, tt.link)
		}
	}
	if pb.StackRoom != 21 {
		t.Errorf("p stackroom = %d, want 21", pb.StackRoom)
	}
	if qb := procBlock(t, tree, "q"); qb.StackRoom != 0 {
		t.Errorf("q stackroom = %d, want 0", qb.StackRoom)
	}
}

func TestPerformTwiceFails(t *testing.T) {
	tree, _ := parse(t, "var x; x := 1.")
	if err := Perform(tree); err != nil {
		t.Fatal(err)
	}
	if err := Perform(tree); !errors.Is(err, symbols.ErrPlacementSet) {
		t.Errorf("second layout: got %v, want ErrPlacementSet", err)
	}
}

func TestPerformRequiresBlock(t *testing.T) {
	tree := ir.NewTree()
	tree.Root = tree.Add(nil, &ir.StatList{})
	if err := Perform(tree); err == nil {
		t.Error("expected error for a non-block root")
	}
}
