package parser

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/raymyers/ralph-pl0/pkg/ir"
	"github.com/raymyers/ralph-pl0/pkg/lexer"
	"github.com/raymyers/ralph-pl0/pkg/symbols"
)

// TestSpec represents a test case from parse.yaml
type TestSpec struct {
	Name   string   `yaml:"name"`
	Input  string   `yaml:"input"`
	Tree   string   `yaml:"tree"`
	Errors []string `yaml:"errors"`
}

// TestFile represents the parse.yaml file structure
type TestFile struct {
	Tests []TestSpec `yaml:"tests"`
}

func TestParseYAML(t *testing.T) {
	data, err := os.ReadFile("../../testdata/parse.yaml")
	if err != nil {
		t.Fatalf("failed to read parse.yaml: %v", err)
	}

	var testFile TestFile
	if err := yaml.Unmarshal(data, &testFile); err != nil {
		t.Fatalf("failed to parse parse.yaml: %v", err)
	}

	for _, tc := range testFile.Tests {
		t.Run(tc.Name, func(t *testing.T) {
			p := New(lexer.New(tc.Input))
			tree := p.ParseProgram()

			if len(tc.Errors) > 0 {
				all := strings.Join(p.Errors(), "\n")
				for _, want := range tc.Errors {
					if !strings.Contains(all, want) {
						t.Errorf("errors %q missing %q", p.Errors(), want)
					}
				}
				return
			}
			if len(p.Errors()) > 0 {
				t.Fatalf("parser errors: %v", p.Errors())
			}

			var buf bytes.Buffer
			ir.NewPrinter(&buf).PrintTree(tree)
			if buf.String() != tc.Tree {
				t.Errorf("tree mismatch\ngot:\n%s\nwant:\n%s", buf.String(), tc.Tree)
			}
		})
	}
}

func TestParentHandles(t *testing.T) {
	p := New(lexer.New("var x; procedure p; x := 1; begin call p; if x > 0 then ! x end."))
	tree := p.ParseProgram()
	if len(p.Errors()) > 0 {
		t.Fatalf("parser errors: %v", p.Errors())
	}
	if tree.Parent(tree.Root) != ir.NoNode {
		t.Error("root has a parent")
	}
	for _, id := range tree.PreOrder(tree.Root) {
		for _, c := range tree.Children(id) {
			if tree.Parent(c) != id {
				t.Errorf("node %d (%s) has parent %d, want %d", c, tree.Format(c), tree.Parent(c), id)
			}
		}
	}
}

func TestScopes(t *testing.T) {
	src := `var x, y;
procedure p;
  var x: char;
  y := x;
x := 1.`
	p := New(lexer.New(src))
	tree := p.ParseProgram()
	if len(p.Errors()) > 0 {
		t.Fatalf("parser errors: %v", p.Errors())
	}

	var inner *ir.AssignStat
	var innerScope *symbols.Table
	for _, id := range tree.PreOrder(tree.Root) {
		if a, ok := tree.Payload(id).(*ir.AssignStat); ok && a.Target.Name == "y" {
			inner = a
			innerScope = tree.Node(id).Scope
		}
	}
	if inner == nil {
		t.Fatal("procedure assignment not found")
	}
	if inner.Target.Class != symbols.ClassGlobal {
		t.Errorf("y class = %v, want global", inner.Target.Class)
	}
	x := innerScope.Find("x")
	if x == nil || x.Class != symbols.ClassAuto || x.Type != symbols.Char {
		t.Errorf("x inside p = %v, want the auto char local", x)
	}

	if g := p.Globals().Find("x"); g == nil || g.Class != symbols.ClassGlobal {
		t.Errorf("global x = %v", g)
	}
	if fn := p.Globals().Find("p"); fn == nil || fn.Type.Kind() != symbols.KindFunction {
		t.Errorf("procedure symbol = %v", fn)
	}
}

func TestForDesugaring(t *testing.T) {
	p := New(lexer.New("var i; for i := 1 to 3 do ! i."))
	tree := p.ParseProgram()
	if len(p.Errors()) > 0 {
		t.Fatalf("parser errors: %v", p.Errors())
	}
	var loop *ir.ForStat
	for _, id := range tree.PreOrder(tree.Root) {
		if f, ok := tree.Payload(id).(*ir.ForStat); ok {
			loop = f
		}
	}
	if loop == nil {
		t.Fatal("no ForStat")
	}
	step := tree.Payload(loop.Step).(*ir.AssignStat)
	add := tree.Payload(step.Expr).(*ir.BinExpr)
	if c, ok := tree.Payload(add.Right).(*ir.Const); !ok || c.Value != 1 {
		t.Errorf("default step = %v, want Const 1", tree.Format(add.Right))
	}
}

func TestErrorPositions(t *testing.T) {
	p := New(lexer.New("var x;\nbegin\n  y := 1\nend."))
	p.ParseProgram()
	errs := p.Errors()
	if len(errs) != 1 {
		t.Fatalf("errors = %v, want one", errs)
	}
	if !strings.HasPrefix(errs[0], "line 3, col ") {
		t.Errorf("error %q should carry the position", errs[0])
	}
}
