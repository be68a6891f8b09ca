package regalloc

import (
	"fmt"
	"sort"

	"github.com/raymyers/ralph-pl0/pkg/cfg"
	"github.com/raymyers/ralph-pl0/pkg/ir"
	"github.com/raymyers/ralph-pl0/pkg/symbols"
)

// Interval is the range of instruction indices of one block where a
// register symbol holds a value. It is half-open: [Start, End). Start is -1
// for a symbol live on entry; End is len(block) for one live on exit.
type Interval struct {
	Symbol *symbols.Symbol
	Start  int
	End    int
}

// Overlaps reports whether two intervals share an instruction index
func (iv Interval) Overlaps(o Interval) bool {
	return iv.Start < o.End && o.Start < iv.End
}

func (iv Interval) String() string {
	return fmt.Sprintf("%s[%d,%d)", iv.Symbol.Name, iv.Start, iv.End)
}

// Intervals computes one interval per register symbol of b with a single
// backward scan. At each instruction kills are applied before uses: a kill
// closes the interval at its index, a use opens it.
func Intervals(tree *ir.Tree, b *cfg.Block) []Interval {
	n := len(b.Instrs)
	byName := make(map[*symbols.Symbol]*Interval)
	open := make(map[*symbols.Symbol]bool)
	var order []*symbols.Symbol

	get := func(sym *symbols.Symbol, end int) *Interval {
		iv, ok := byName[sym]
		if !ok {
			iv = &Interval{Symbol: sym, Start: end, End: end}
			byName[sym] = iv
			order = append(order, sym)
		}
		return iv
	}

	for _, sym := range b.LiveOut.Slice() {
		if sym.IsRegister() {
			get(sym, n)
			open[sym] = true
		}
	}

	for i := n - 1; i >= 0; i-- {
		id := b.Instrs[i]
		for _, sym := range tree.Kills(id) {
			if !sym.IsRegister() {
				continue
			}
			iv := get(sym, i)
			if open[sym] {
				iv.Start = i
				open[sym] = false
			}
		}
		for _, sym := range tree.Uses(id) {
			if !sym.IsRegister() {
				continue
			}
			iv := get(sym, i)
			iv.Start = i
			open[sym] = true
		}
	}

	res := make([]Interval, 0, len(order))
	for _, sym := range order {
		iv := byName[sym]
		if open[sym] {
			iv.Start = -1
		}
		res = append(res, *iv)
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Start != res[j].Start {
			return res[i].Start < res[j].Start
		}
		return res[i].Symbol.Name < res[j].Symbol.Name
	})
	return res
}
