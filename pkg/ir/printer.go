package ir

import (
	"fmt"
	"io"
	"strings"

	"github.com/raymyers/ralph-pl0/pkg/symbols"
)

// Printer outputs an IR tree as indented text, one node per line
type Printer struct {
	w io.Writer
}

// NewPrinter creates a new IR printer
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// PrintTree prints the subtree rooted at the tree's root
func (p *Printer) PrintTree(t *Tree) {
	p.PrintNode(t, t.Root)
}

// PrintNode prints the subtree rooted at id
func (p *Printer) PrintNode(t *Tree, id NodeID) {
	p.printNode(t, id, 0)
}

func (p *Printer) printNode(t *Tree, id NodeID, depth int) {
	n := t.Node(id)
	if n == nil {
		return
	}
	fmt.Fprintf(p.w, "%s%s\n", strings.Repeat("  ", depth), t.Format(id))
	if b, ok := n.Payload.(*Block); ok {
		for _, s := range b.Locals.Symbols() {
			fmt.Fprintf(p.w, "%s. %s\n", strings.Repeat("  ", depth+1), s)
		}
	}
	for _, c := range t.Children(id) {
		p.printNode(t, c, depth+1)
	}
}

// Format renders one node on a single line. Instructions use their
// three-address form; other nodes print their kind and attributes.
func (t *Tree) Format(id NodeID) string {
	n := t.Node(id)
	if n == nil {
		return "<nil>"
	}
	label := ""
	if n.Label != nil {
		label = n.Label.Name + ": "
	}
	return label + formatPayload(n.Payload)
}

func formatPayload(payload Payload) string {
	switch p := payload.(type) {
	case *Const:
		if p.Symbol != nil {
			return "Const " + p.Symbol.Name
		}
		return fmt.Sprintf("Const %d", p.Value)
	case *Var:
		return "Var " + p.Name
	case *ArrayElement:
		return "ArrayElement " + p.Symbol.Name
	case *BinExpr:
		return "BinExpr " + p.Op
	case *UnExpr:
		return "UnExpr " + p.Op
	case *CallExpr:
		return "CallExpr " + name(p.Function)
	case *AssignStat:
		return "AssignStat " + p.Target.Name
	case *Block:
		return fmt.Sprintf("Block stackroom=%d", p.StackRoom)
	case *FunctionDef:
		return "FunctionDef " + p.Symbol.Name
	case *EmptyStat:
		return "nop"
	case *BranchStat:
		if p.Returns {
			return "call " + name(p.Target)
		}
		if p.Cond == nil {
			return "branch to " + name(p.Target)
		}
		neg := ""
		if p.NegCond {
			neg = "not "
		}
		return fmt.Sprintf("branch on %s%s to %s", neg, p.Cond.Name, name(p.Target))
	case *LoadImm:
		return fmt.Sprintf("%s <- %d", p.Dest.Name, p.Value)
	case *Load:
		if p.Src.IsRegister() {
			return fmt.Sprintf("%s <- [%s]", p.Dest.Name, p.Src.Name)
		}
		return fmt.Sprintf("%s <- %s", p.Dest.Name, p.Src.Name)
	case *Store:
		if p.Dest.IsRegister() {
			return fmt.Sprintf("[%s] <- %s", p.Dest.Name, p.Src.Name)
		}
		return fmt.Sprintf("%s <- %s", p.Dest.Name, p.Src.Name)
	case *LoadPtrToSym:
		return fmt.Sprintf("%s <- &(%s)", p.Dest.Name, p.Symbol.Name)
	case *BinStat:
		return fmt.Sprintf("%s <- %s %s %s", p.Dest.Name, p.A.Name, p.Op, p.B.Name)
	case *UnaryStat:
		return fmt.Sprintf("%s <- %s %s", p.Dest.Name, p.Op, p.Src.Name)
	case *PrintCommand:
		return "print " + p.Src.Name
	case *ReadCommand:
		return "read " + p.Dest.Name
	}
	return KindName(payload)
}

func name(s *symbols.Symbol) string {
	if s == nil {
		return "<nil>"
	}
	return s.Name
}
