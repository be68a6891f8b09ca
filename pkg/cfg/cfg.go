// Package cfg partitions lowered statement lists into basic blocks and links
// them by fall-through and branch edges.
package cfg

import (
	"github.com/pkg/errors"

	"github.com/raymyers/ralph-pl0/pkg/ir"
	"github.com/raymyers/ralph-pl0/pkg/symbols"
)

var (
	// ErrNotLowered is returned when a statement list still holds a
	// high-level node
	ErrNotLowered = errors.New("node not lowered")
	// ErrUnresolvedLabel is returned when no block carries a branch target
	ErrUnresolvedLabel = errors.New("unresolved label")
)

// Block is a basic block: straight-line instructions entered at the top
type Block struct {
	ID       int
	Instrs   []ir.NodeID
	Labels   []*symbols.Symbol // labels denoting the block entry
	Next     *Block            // fall-through successor
	Target   *Block            // branch successor
	Function ir.NodeID         // owning FunctionDef, NoNode for top-level code

	Gen     symbols.Set // read before written in the block
	Kill    symbols.Set // written in the block
	LiveIn  symbols.Set
	LiveOut symbols.Set
}

// Succs returns the successors, branch target first
func (b *Block) Succs() []*Block {
	var res []*Block
	if b.Target != nil {
		res = append(res, b.Target)
	}
	if b.Next != nil {
		res = append(res, b.Next)
	}
	return res
}

// HasLabel reports whether label denotes the entry of b
func (b *Block) HasLabel(label *symbols.Symbol) bool {
	for _, l := range b.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// Graph is the control flow graph of a whole program
type Graph struct {
	Blocks  []*Block
	tree    *ir.Tree
	globals symbols.Set
}

// Tree returns the IR tree the blocks refer to
func (g *Graph) Tree() *ir.Tree {
	return g.tree
}

// Block returns the block with the given ID, or nil
func (g *Graph) Block(id int) *Block {
	if id < 0 || id >= len(g.Blocks) {
		return nil
	}
	return g.Blocks[id]
}

// Globals returns the program-scope variables. They are live at every exit
// because callers and callees may read them.
func (g *Graph) Globals() symbols.Set {
	return g.globals.Copy()
}

// Head is an entry block: reached only by a call or by program start
type Head struct {
	Function ir.NodeID
	Block    *Block
}

// Heads returns, per function in block order, the first block without an
// in-graph predecessor
func (g *Graph) Heads() []Head {
	hasPred := make(map[*Block]bool)
	for _, b := range g.Blocks {
		for _, s := range b.Succs() {
			hasPred[s] = true
		}
	}
	seen := make(map[ir.NodeID]bool)
	var heads []Head
	for _, b := range g.Blocks {
		if hasPred[b] || seen[b.Function] {
			continue
		}
		seen[b.Function] = true
		heads = append(heads, Head{Function: b.Function, Block: b})
	}
	return heads
}

// FunctionName names the function owning b, "main" for top-level code
func (g *Graph) FunctionName(fn ir.NodeID) string {
	if def, ok := g.tree.Payload(fn).(*ir.FunctionDef); ok {
		return def.Symbol.Name
	}
	return "main"
}

// Build partitions every outermost statement list of tree into blocks,
// resolves branch targets and computes gen/kill sets
func Build(tree *ir.Tree) (*Graph, error) {
	g := &Graph{tree: tree, globals: symbols.NewSet()}
	if root, ok := tree.Payload(tree.Root).(*ir.Block); ok {
		g.globals = symbols.NewSet(root.Locals.Exclude(symbols.KindFunction, symbols.KindLabel)...)
	}

	for _, id := range tree.PreOrder(tree.Root) {
		if _, ok := tree.Payload(id).(*ir.StatList); !ok {
			continue
		}
		if _, nested := tree.Payload(tree.Parent(id)).(*ir.StatList); nested {
			continue
		}
		if err := g.partition(id); err != nil {
			return nil, err
		}
	}

	owner := make(map[*symbols.Symbol]*Block)
	for _, b := range g.Blocks {
		for _, l := range b.Labels {
			owner[l] = b
		}
	}
	for _, b := range g.Blocks {
		br := g.branch(b)
		if br == nil {
			continue
		}
		target, ok := owner[br.Target]
		if !ok {
			return nil, errors.Wrapf(ErrUnresolvedLabel, "%s in block %d", br.Target.Name, b.ID)
		}
		b.Target = target
		if br.Unconditional() {
			b.Next = nil
		}
	}

	for _, b := range g.Blocks {
		g.genKill(b)
	}
	return g, nil
}

// branch returns the non-returning branch ending b, if any
func (g *Graph) branch(b *Block) *ir.BranchStat {
	if len(b.Instrs) == 0 {
		return nil
	}
	br, ok := g.tree.Payload(b.Instrs[len(b.Instrs)-1]).(*ir.BranchStat)
	if !ok || br.Returns {
		return nil
	}
	return br
}

// partition splits one statement list. A labeled instruction opens a new
// block unless the open block is still empty; a non-returning branch closes
// the open block.
func (g *Graph) partition(list ir.NodeID) error {
	fn := g.tree.Function(list)
	var (
		first  = len(g.Blocks)
		instrs []ir.NodeID
		labels []*symbols.Symbol
	)
	flush := func() {
		b := &Block{
			ID:       len(g.Blocks),
			Instrs:   instrs,
			Labels:   labels,
			Function: fn,
			Gen:      symbols.NewSet(),
			Kill:     symbols.NewSet(),
			LiveIn:   symbols.NewSet(),
			LiveOut:  symbols.NewSet(),
		}
		if len(g.Blocks) > first {
			g.Blocks[len(g.Blocks)-1].Next = b
		}
		g.Blocks = append(g.Blocks, b)
		instrs, labels = nil, nil
	}

	for _, id := range g.tree.Children(list) {
		n := g.tree.Node(id)
		if !ir.IsInstruction(n.Payload) {
			return errors.Wrapf(ErrNotLowered, "node %d (%s) in list %d", id, ir.KindName(n.Payload), list)
		}
		if n.Label != nil {
			if len(instrs) > 0 {
				flush()
			}
			labels = append(labels, n.Label)
		}
		instrs = append(instrs, id)
		if br, ok := n.Payload.(*ir.BranchStat); ok && !br.Returns {
			flush()
		}
	}
	if len(instrs) > 0 || len(labels) > 0 {
		flush()
	}
	return nil
}

// genKill treats b as opaque: gen holds symbols used before any write in b
func (g *Graph) genKill(b *Block) {
	for _, id := range b.Instrs {
		for _, u := range g.tree.Uses(id) {
			if !b.Kill.Contains(u) {
				b.Gen.Add(u)
			}
		}
		for _, k := range g.tree.Kills(id) {
			b.Kill.Add(k)
		}
	}
}
