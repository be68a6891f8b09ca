package lower

import (
	"github.com/raymyers/ralph-pl0/pkg/ir"
	"github.com/raymyers/ralph-pl0/pkg/symbols"
)

// operand adopts the lowered child id and returns the temporary holding its
// value
func (l *Lowerer) operand(e *emitter, id ir.NodeID) *symbols.Symbol {
	v := l.value(e, id)
	e.adopt(id)
	return v
}

// value returns the temporary computed by the lowered child id
func (l *Lowerer) value(e *emitter, id ir.NodeID) *symbols.Symbol {
	if e.failed() {
		return nil
	}
	if _, ok := l.tree.Payload(id).(*ir.StatList); !ok {
		e.fail("operand not lowered")
		return nil
	}
	dest := l.tree.Destination(id)
	if dest == nil || !dest.IsRegister() {
		e.fail("operand has no value")
		return nil
	}
	return dest
}

func (l *Lowerer) lowerConst(e *emitter, p *ir.Const) {
	if p.Symbol == nil {
		e.emit(ir.NewLoadImm(l.fresh.Temp(symbols.Int), p.Value))
		return
	}
	l.loadSymbol(e, p.Symbol)
}

func (l *Lowerer) lowerVar(e *emitter, p *ir.Var) {
	if p.Symbol == nil {
		e.fail("undefined symbol " + p.Name)
		return
	}
	l.loadSymbol(e, p.Symbol)
}

// loadSymbol reads a scalar symbol into a fresh temporary of its type
func (l *Lowerer) loadSymbol(e *emitter, sym *symbols.Symbol) {
	switch {
	case sym.Class == symbols.ClassImmediate:
		if sym.Value == nil {
			e.fail("immediate " + sym.Name + " has no value")
			return
		}
		e.emit(ir.NewLoadImm(l.fresh.Temp(sym.Type), *sym.Value))
	case sym.Type.Kind() != symbols.KindInt:
		e.fail(sym.Name + " is not a value")
	case isArray(sym):
		e.fail("array " + sym.Name + " used without indices")
	default:
		e.emit(ir.NewLoad(l.fresh.Temp(sym.Type), sym, nil))
	}
}

func isArray(sym *symbols.Symbol) bool {
	_, ok := sym.Type.(symbols.Tarray)
	return ok
}

func (l *Lowerer) lowerArrayElement(e *emitter, p *ir.ArrayElement) {
	addr, elem := l.address(e, p.Symbol, p.Indices)
	if addr == nil {
		return
	}
	e.emit(ir.NewLoad(l.fresh.Temp(elem), addr, p.Symbol))
}

// address emits the effective address of arr[indices...] and returns the
// pointer temporary with the element type
func (l *Lowerer) address(e *emitter, arr *symbols.Symbol, indices []ir.NodeID) (*symbols.Symbol, symbols.Type) {
	at, ok := arr.Type.(symbols.Tarray)
	if !ok {
		e.fail(arr.Name + " is not an array")
		return nil, nil
	}
	if len(indices) != len(at.Dims) {
		e.fail("index count does not match dimensions of " + arr.Name)
		return nil, nil
	}

	idx := make([]*symbols.Symbol, len(indices))
	for i, id := range indices {
		idx[i] = l.operand(e, id)
	}

	// offset = sum of i_k * elemBytes * d_{k+1} * ... * d_{n-1}
	var offset *symbols.Symbol
	for k, i := range idx {
		stride := int64(symbols.Bytes(at.Elem))
		for _, d := range at.Dims[k+1:] {
			stride *= int64(d)
		}
		c := l.fresh.Temp(symbols.Int)
		e.emit(ir.NewLoadImm(c, stride))
		term := l.fresh.Temp(symbols.Int)
		e.emit(ir.NewBinStat("times", term, i, c))
		if offset == nil {
			offset = term
			continue
		}
		sum := l.fresh.Temp(symbols.Int)
		e.emit(ir.NewBinStat("plus", sum, offset, term))
		offset = sum
	}

	ptr := symbols.Tpointer{Elem: at.Elem}
	base := l.fresh.Temp(ptr)
	e.emit(ir.NewLoadPtrToSym(base, arr))
	addr := l.fresh.Temp(ptr)
	e.emit(ir.NewBinStat("plus", addr, base, offset))
	if e.failed() {
		return nil, nil
	}
	return addr, at.Elem
}

func (l *Lowerer) lowerBinExpr(e *emitter, p *ir.BinExpr) {
	a := l.operand(e, p.Left)
	b := l.operand(e, p.Right)
	if e.failed() {
		return
	}
	dest := l.fresh.Temp(symbols.Promote(a.Type, b.Type))
	e.emit(ir.NewBinStat(p.Op, dest, a, b))
}

func (l *Lowerer) lowerUnExpr(e *emitter, p *ir.UnExpr) {
	src := l.operand(e, p.Operand)
	if e.failed() {
		return
	}
	e.emit(ir.NewUnaryStat(p.Op, l.fresh.Temp(src.Type), src))
}
