package ir

import "github.com/raymyers/ralph-pl0/pkg/symbols"

// Uses returns the symbols read by node id, in operand order. Duplicates are
// possible.
func (t *Tree) Uses(id NodeID) []*symbols.Symbol {
	n := t.Node(id)
	if n == nil {
		return nil
	}
	switch p := n.Payload.(type) {
	case *Var:
		if p.Symbol == nil {
			return nil
		}
		return []*symbols.Symbol{p.Symbol}
	case *ArrayElement:
		return append([]*symbols.Symbol{p.Symbol}, t.childUses(id)...)
	case *BinExpr, *UnExpr, *CallExpr, *StatList, *PrintStat, *AssignStat:
		return t.childUses(id)
	case *CallStat:
		return append(t.childUses(id), callClobbers(n.Scope)...)
	case *BranchStat:
		var uses []*symbols.Symbol
		if p.Cond != nil {
			uses = append(uses, p.Cond)
		}
		if p.Returns {
			uses = append(uses, callClobbers(n.Scope)...)
		}
		return uses
	case *Load:
		if p.UseHint != nil {
			return []*symbols.Symbol{p.Src, p.UseHint}
		}
		return []*symbols.Symbol{p.Src}
	case *Store:
		if p.Dest.IsRegister() {
			return []*symbols.Symbol{p.Src, p.Dest}
		}
		return []*symbols.Symbol{p.Src}
	case *LoadPtrToSym:
		return []*symbols.Symbol{p.Symbol}
	case *BinStat:
		return []*symbols.Symbol{p.A, p.B}
	case *UnaryStat:
		return []*symbols.Symbol{p.Src}
	case *PrintCommand:
		return []*symbols.Symbol{p.Src}
	}
	return nil
}

func (t *Tree) childUses(id NodeID) []*symbols.Symbol {
	var uses []*symbols.Symbol
	for _, c := range t.Children(id) {
		uses = append(uses, t.Uses(c)...)
	}
	return uses
}

// A called procedure may read any visible variable.
func callClobbers(scope *symbols.Table) []*symbols.Symbol {
	return scope.Exclude(symbols.KindFunction, symbols.KindLabel)
}

// Kills returns the symbols written by node id
func (t *Tree) Kills(id NodeID) []*symbols.Symbol {
	n := t.Node(id)
	if n == nil {
		return nil
	}
	switch p := n.Payload.(type) {
	case *AssignStat:
		return []*symbols.Symbol{p.Target}
	case *Store:
		if p.Dest.IsRegister() {
			if p.KillHint != nil {
				return []*symbols.Symbol{p.KillHint}
			}
			return nil
		}
		return []*symbols.Symbol{p.Dest}
	case *LoadImm:
		return []*symbols.Symbol{p.Dest}
	case *Load:
		return []*symbols.Symbol{p.Dest}
	case *LoadPtrToSym:
		return []*symbols.Symbol{p.Dest}
	case *BinStat:
		return []*symbols.Symbol{p.Dest}
	case *UnaryStat:
		return []*symbols.Symbol{p.Dest}
	case *ReadCommand:
		return []*symbols.Symbol{p.Dest}
	}
	return nil
}

// Destination returns the symbol holding the value computed by id: the
// destination of an instruction, or of the last child of a statement list
// that has one. It is nil for nodes that are not lowered yet.
func (t *Tree) Destination(id NodeID) *symbols.Symbol {
	n := t.Node(id)
	if n == nil {
		return nil
	}
	switch p := n.Payload.(type) {
	case *StatList:
		for i := len(p.Children) - 1; i >= 0; i-- {
			if d := t.Destination(p.Children[i]); d != nil {
				return d
			}
		}
	case *LoadImm:
		return p.Dest
	case *Load:
		return p.Dest
	case *Store:
		return p.Dest
	case *LoadPtrToSym:
		return p.Dest
	case *BinStat:
		return p.Dest
	case *UnaryStat:
		return p.Dest
	case *ReadCommand:
		return p.Dest
	}
	return nil
}
