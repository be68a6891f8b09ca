// Package regalloc assigns registers to temporaries with a linear scan over
// the liveness intervals of each basic block. Two registers are reserved for
// filling spilled temporaries, so numRegs-2 are allocatable.
package regalloc

import (
	"log/slog"
	"sort"

	"github.com/pkg/errors"

	"github.com/raymyers/ralph-pl0/pkg/cfg"
	"github.com/raymyers/ralph-pl0/pkg/ir"
	"github.com/raymyers/ralph-pl0/pkg/logger"
)

// Allocate runs the linear scan on every block of g, breadth-first from each
// head, and merges the per-block results
func Allocate(g *cfg.Graph, numRegs int) (*Allocation, error) {
	if numRegs < 3 {
		return nil, errors.Wrapf(ErrTooFewRegisters, "%d registers, need at least 3", numRegs)
	}
	log := logger.With("phase", "regalloc")
	res := NewAllocation(numRegs)
	for _, b := range Order(g) {
		ba, err := scanBlock(g.Tree(), b, numRegs, log.With("block", b.ID))
		if err != nil {
			return nil, err
		}
		if err := res.Merge(ba); err != nil {
			return nil, errors.Wrapf(err, "block %d", b.ID)
		}
	}
	log.Debug("allocation done", "symbols", len(res.home), "spilled", res.NumSpill)
	return res, nil
}

// Order returns the blocks breadth-first from each head, successors in
// branch-then-fall-through order, followed by unreached blocks
func Order(g *cfg.Graph) []*cfg.Block {
	seen := make(map[*cfg.Block]bool)
	var order []*cfg.Block
	visit := func(start *cfg.Block) {
		if seen[start] {
			return
		}
		seen[start] = true
		queue := []*cfg.Block{start}
		for len(queue) > 0 {
			b := queue[0]
			queue = queue[1:]
			order = append(order, b)
			for _, s := range b.Succs() {
				if !seen[s] {
					seen[s] = true
					queue = append(queue, s)
				}
			}
		}
	}
	for _, h := range g.Heads() {
		visit(h.Block)
	}
	for _, b := range g.Blocks {
		visit(b)
	}
	return order
}

// scanBlock is textbook linear scan over one block. When no register is free
// the interval ending last is spilled, so the one that frees the most future
// capacity gives up its register.
func scanBlock(tree *ir.Tree, b *cfg.Block, numRegs int, log *slog.Logger) (*Allocation, error) {
	a := NewAllocation(numRegs)
	free := make([]bool, numRegs-2)
	for r := range free {
		free[r] = true
	}
	var active []Interval // sorted by End

	for _, iv := range Intervals(tree, b) {
		kept := active[:0]
		for _, act := range active {
			if act.End <= iv.Start {
				r := a.home[act.Symbol]
				free[r] = true
				log.Debug("expire", "symbol", act.Symbol.Name, "reg", r)
				continue
			}
			kept = append(kept, act)
		}
		active = kept

		if r := lowestFree(free); r >= 0 {
			free[r] = false
			a.set(iv.Symbol, r)
			active = insertByEnd(active, iv)
			log.Debug("assign", "symbol", iv.Symbol.Name, "reg", r, "start", iv.Start, "end", iv.End)
			continue
		}

		if len(active) == 0 {
			return nil, errors.Wrapf(ErrCapacityExhausted, "block %d, symbol %s", b.ID, iv.Symbol.Name)
		}
		last := active[len(active)-1]
		if last.End > iv.End {
			r := a.home[last.Symbol]
			a.set(iv.Symbol, r)
			a.set(last.Symbol, Spill)
			active = insertByEnd(active[:len(active)-1], iv)
			log.Debug("spill", "symbol", last.Symbol.Name, "reg", r, "for", iv.Symbol.Name)
		} else {
			a.set(iv.Symbol, Spill)
			log.Debug("spill", "symbol", iv.Symbol.Name)
		}
		a.NumSpill++
	}
	return a, nil
}

func lowestFree(free []bool) int {
	for r, ok := range free {
		if ok {
			return r
		}
	}
	return -1
}

func insertByEnd(active []Interval, iv Interval) []Interval {
	i := sort.Search(len(active), func(i int) bool { return active[i].End > iv.End })
	active = append(active, Interval{})
	copy(active[i+1:], active[i:])
	active[i] = iv
	return active
}

// PlaceSpills replays the fill and spill traffic of code emission: every
// spilled operand is materialized around the instruction that reads or
// writes it. Spill slots are thereby assigned in first-use order.
func PlaceSpills(g *cfg.Graph, a *Allocation) error {
	tree := g.Tree()
	for _, b := range g.Blocks {
		for _, id := range b.Instrs {
			for _, sym := range tree.Uses(id) {
				if !sym.IsRegister() {
					continue
				}
				a.Dematerialize(sym)
				if _, err := a.Materialize(sym); err != nil {
					return err
				}
			}
			for _, sym := range tree.Kills(id) {
				if !sym.IsRegister() {
					continue
				}
				if _, err := a.Materialize(sym); err != nil {
					return err
				}
				a.Dematerialize(sym)
			}
		}
	}
	return nil
}
