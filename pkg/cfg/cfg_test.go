package cfg

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/raymyers/ralph-pl0/pkg/ir"
	"github.com/raymyers/ralph-pl0/pkg/lexer"
	"github.com/raymyers/ralph-pl0/pkg/lower"
	"github.com/raymyers/ralph-pl0/pkg/parser"
	"github.com/raymyers/ralph-pl0/pkg/symbols"
)

// CFGSpec is one case from cfg.yaml
type CFGSpec struct {
	Name   string   `yaml:"name"`
	Input  string   `yaml:"input"`
	Blocks int      `yaml:"blocks"`
	Edges  []string `yaml:"edges"`
	Heads  []string `yaml:"heads"`
}

// CFGFile is the cfg.yaml file structure
type CFGFile struct {
	Tests []CFGSpec `yaml:"tests"`
}

func lowered(t *testing.T, src string) *ir.Tree {
	t.Helper()
	p := parser.New(lexer.New(src))
	tree := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	if err := lower.New(tree, nil).Run(); err != nil {
		t.Fatalf("lower: %v", err)
	}
	if err := lower.Flatten(tree); err != nil {
		t.Fatalf("flatten: %v", err)
	}
	return tree
}

func build(t *testing.T, src string) *Graph {
	t.Helper()
	g, err := Build(lowered(t, src))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func TestBuildYAML(t *testing.T) {
	data, err := os.ReadFile("../../testdata/cfg.yaml")
	if err != nil {
		t.Fatalf("failed to read cfg.yaml: %v", err)
	}
	var file CFGFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		t.Fatalf("failed to parse cfg.yaml: %v", err)
	}

	for _, tc := range file.Tests {
		t.Run(tc.Name, func(t *testing.T) {
			g := build(t, tc.Input)
			if len(g.Blocks) != tc.Blocks {
				var buf bytes.Buffer
				NewPrinter(&buf).PrintGraph(g)
				t.Fatalf("got %d blocks, want %d:\n%s", len(g.Blocks), tc.Blocks, buf.String())
			}

			edges := []string{}
			for _, b := range g.Blocks {
				for _, s := range b.Succs() {
					edges = append(edges, fmt.Sprintf("%d->%d", b.ID, s.ID))
				}
			}
			if strings.Join(edges, " ") != strings.Join(tc.Edges, " ") {
				t.Errorf("edges = %v, want %v", edges, tc.Edges)
			}

			heads := []string{}
			for _, h := range g.Heads() {
				heads = append(heads, fmt.Sprintf("%s:%d", g.FunctionName(h.Function), h.Block.ID))
			}
			if strings.Join(heads, " ") != strings.Join(tc.Heads, " ") {
				t.Errorf("heads = %v, want %v", heads, tc.Heads)
			}
		})
	}
}

func TestBranchTargetsCarryLabel(t *testing.T) {
	g := build(t, "var x; if odd x then x := 1 else while x > 0 do x := x - 1.")
	for _, b := range g.Blocks {
		br := g.branch(b)
		if br == nil {
			continue
		}
		if b.Target == nil || !b.Target.HasLabel(br.Target) {
			t.Errorf("BB%d branches to %s but its target does not carry it", b.ID, br.Target.Name)
		}
		if br.Unconditional() && b.Next != nil {
			t.Errorf("BB%d ends in an unconditional branch but falls through", b.ID)
		}
	}
}

func TestGenKill(t *testing.T) {
	g := build(t, "var x; begin x := 1; while x <= 3 do x := x + 1 end.")
	tests := []struct {
		block int
		gen   string
		kill  string
	}{
		{0, "{}", "{t0, x}"},
		{1, "{x}", "{t1, t2, t3}"},
		{2, "{x}", "{t4, t5, t6, x}"},
		{3, "{}", "{}"},
	}
	for _, tt := range tests {
		b := g.Block(tt.block)
		if got := b.Gen.String(); got != tt.gen {
			t.Errorf("BB%d gen = %s, want %s", tt.block, got, tt.gen)
		}
		if got := b.Kill.String(); got != tt.kill {
			t.Errorf("BB%d kill = %s, want %s", tt.block, got, tt.kill)
		}
	}
	if got := g.Globals().String(); got != "{x}" {
		t.Errorf("globals = %s, want {x}", got)
	}
}

func TestLabelsOnEntry(t *testing.T) {
	g := build(t, "var x; begin x := 1; while x <= 3 do x := x + 1 end.")
	if labelNames(g.Block(1).Labels) != "label1" || labelNames(g.Block(3).Labels) != "label2" {
		t.Errorf("labels = %v, %v", g.Block(1).Labels, g.Block(3).Labels)
	}
	if len(g.Block(0).Labels) != 0 {
		t.Errorf("entry block should be unlabeled, got %v", g.Block(0).Labels)
	}
}

func TestUnresolvedLabel(t *testing.T) {
	tree := ir.NewTree()
	missing := symbols.NewFresh().Label()
	br, err := ir.NewBranch(nil, missing, false, false)
	if err != nil {
		t.Fatal(err)
	}
	id := tree.Add(nil, br)
	tree.Root = tree.Add(nil, &ir.StatList{Children: []ir.NodeID{id}})

	_, err = Build(tree)
	if !errors.Is(err, ErrUnresolvedLabel) {
		t.Fatalf("got %v, want ErrUnresolvedLabel", err)
	}
	if !strings.Contains(err.Error(), "label1") {
		t.Errorf("error %q should name the label", err)
	}
}

func TestNotLowered(t *testing.T) {
	tree := lowered(t, "var x; x := y + 1.")
	_, err := Build(tree)
	if !errors.Is(err, ErrNotLowered) {
		t.Fatalf("got %v, want ErrNotLowered", err)
	}
	if !strings.Contains(err.Error(), "AssignStat") {
		t.Errorf("error %q should name the node kind", err)
	}
}

func TestPrintDot(t *testing.T) {
	g := build(t, "var x; begin x := 1; while x <= 3 do x := x + 1 end.")
	var buf bytes.Buffer
	NewPrinter(&buf).PrintDot(g)
	out := buf.String()
	for _, want := range []string{
		"digraph G {",
		"bb0 -> bb1 [label=",
		"bb1 -> bb3 [style=dashed,label=",
		"bb2 -> bb1 [style=dashed,label=",
		"bb3 -> exit_main",
		"main [shape=box];",
		"main -> bb0",
		"label1\\nlabel1: nop",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dot output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintGraph(t *testing.T) {
	g := build(t, "var x; procedure p; x := 1; call p.")
	var buf bytes.Buffer
	NewPrinter(&buf).PrintGraph(g)
	out := buf.String()
	for _, want := range []string{"BB0 (p)", "BB1 (main)", "  call p", "gen: {}", "kill: {t0, x}"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
