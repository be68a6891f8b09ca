package cfg

import (
	"fmt"
	"io"
	"strings"

	"github.com/raymyers/ralph-pl0/pkg/symbols"
)

// Printer outputs a control flow graph as text or Graphviz dot
type Printer struct {
	w io.Writer
}

// NewPrinter creates a new CFG printer
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// PrintGraph prints every block with its edges and dataflow sets
func (p *Printer) PrintGraph(g *Graph) {
	for _, b := range g.Blocks {
		fmt.Fprintf(p.w, "BB%d (%s)", b.ID, g.FunctionName(b.Function))
		if len(b.Labels) > 0 {
			fmt.Fprintf(p.w, " labels: %s", labelNames(b.Labels))
		}
		fmt.Fprintln(p.w)
		for _, id := range b.Instrs {
			fmt.Fprintf(p.w, "  %s\n", g.tree.Format(id))
		}
		if b.Next != nil {
			fmt.Fprintf(p.w, "  next: BB%d\n", b.Next.ID)
		}
		if b.Target != nil {
			fmt.Fprintf(p.w, "  target: BB%d\n", b.Target.ID)
		}
		fmt.Fprintf(p.w, "  gen: %s\n", b.Gen)
		fmt.Fprintf(p.w, "  kill: %s\n", b.Kill)
		fmt.Fprintf(p.w, "  live_in: %s\n", b.LiveIn)
		fmt.Fprintf(p.w, "  live_out: %s\n", b.LiveOut)
	}
}

// PrintDot prints the graph in Graphviz dot format. Each edge is labeled with
// the live-in set of its successor; branch edges are dashed.
func (p *Printer) PrintDot(g *Graph) {
	fmt.Fprintln(p.w, "digraph G {")
	for _, b := range g.Blocks {
		var body []string
		if len(b.Labels) > 0 {
			body = append(body, labelNames(b.Labels))
		}
		for _, id := range b.Instrs {
			body = append(body, g.tree.Format(id))
		}
		fmt.Fprintf(p.w, "  bb%d [label=\"BB%d{\\n%s}\"];\n", b.ID, b.ID, strings.Join(body, "\\n"))
		if b.Next != nil {
			fmt.Fprintf(p.w, "  bb%d -> bb%d [label=\"%s\"];\n", b.ID, b.Next.ID, b.Next.LiveIn)
		}
		if b.Target != nil {
			fmt.Fprintf(p.w, "  bb%d -> bb%d [style=dashed,label=\"%s\"];\n", b.ID, b.Target.ID, b.Target.LiveIn)
		}
		if b.Next == nil && b.Target == nil {
			fmt.Fprintf(p.w, "  bb%d -> exit_%s [label=\"%s\"];\n", b.ID, g.FunctionName(b.Function), b.LiveOut)
		}
	}
	for _, h := range g.Heads() {
		name := g.FunctionName(h.Function)
		fmt.Fprintf(p.w, "  %s [shape=box];\n", name)
		fmt.Fprintf(p.w, "  %s -> bb%d [label=\"%s\"];\n", name, h.Block.ID, h.Block.LiveIn)
	}
	fmt.Fprintln(p.w, "}")
}

func labelNames(labels []*symbols.Symbol) string {
	names := make([]string, len(labels))
	for i, l := range labels {
		names[i] = l.Name
	}
	return strings.Join(names, ", ")
}
