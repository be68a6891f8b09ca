package lower

import (
	"github.com/raymyers/ralph-pl0/pkg/ir"
)

// statement adopts a lowered statement child; an absent child is skipped
func (l *Lowerer) statement(e *emitter, id ir.NodeID) {
	if id == ir.NoNode || e.failed() {
		return
	}
	if !ir.IsLowLevel(l.tree.Payload(id)) {
		e.fail("statement not lowered")
		return
	}
	e.adopt(id)
}

func (l *Lowerer) lowerAssign(e *emitter, p *ir.AssignStat) {
	src := l.operand(e, p.Expr)
	if len(p.Indices) == 0 {
		if isArray(p.Target) {
			e.fail("array " + p.Target.Name + " assigned without indices")
			return
		}
		if e.failed() {
			return
		}
		e.emit(ir.NewStore(p.Target, src, nil))
		return
	}
	addr, _ := l.address(e, p.Target, p.Indices)
	if e.failed() {
		return
	}
	e.emit(ir.NewStore(addr, src, nil))
}

func (l *Lowerer) lowerPrint(e *emitter, p *ir.PrintStat) {
	src := l.operand(e, p.Expr)
	if e.failed() {
		return
	}
	e.emit(ir.NewPrint(src))
}

// Call arguments are not passed; the callee reads globals directly.
func (l *Lowerer) lowerCall(e *emitter, p *ir.CallStat) {
	call, ok := l.tree.Payload(p.Call).(*ir.CallExpr)
	if !ok {
		e.fail("call statement without call")
		return
	}
	if call.Function == nil {
		e.fail("call of undefined procedure")
		return
	}
	e.emit(ir.NewBranch(nil, call.Function, true, false))
}

// if c then s          =>  c; branch on not c to exit; s; exit:
// if c then s else r   =>  c; branch on c to then; r; branch to exit; then: s; exit:
func (l *Lowerer) lowerIf(e *emitter, p *ir.IfStat) {
	cond := l.operand(e, p.Cond)
	if e.failed() {
		return
	}
	if p.Else == ir.NoNode {
		exit := l.fresh.Label()
		e.emit(ir.NewBranch(cond, exit, false, true))
		l.statement(e, p.Then)
		e.exit(exit)
		return
	}

	then := l.fresh.Label()
	exit := l.fresh.Label()
	e.emit(ir.NewBranch(cond, then, false, false))
	l.statement(e, p.Else)
	e.emit(ir.NewBranch(nil, exit, false, false))
	if !ir.IsLowLevel(l.tree.Payload(p.Then)) {
		e.fail("statement not lowered")
		return
	}
	e.mark(p.Then, then)
	e.exit(exit)
}

// while c do s  =>  entry: c; branch on not c to exit; s; branch to entry; exit:
func (l *Lowerer) lowerWhile(e *emitter, p *ir.WhileStat) {
	cond := l.value(e, p.Cond)
	if e.failed() {
		return
	}
	entry := l.fresh.Label()
	exit := l.fresh.Label()
	e.mark(p.Cond, entry)
	e.emit(ir.NewBranch(cond, exit, false, true))
	l.statement(e, p.Body)
	e.emit(ir.NewBranch(nil, entry, false, false))
	e.exit(exit)
}

// for x := a to b by s do body  =>
//
//	x := a; entry: x <= b; branch on not to exit; body; x := x + s; branch to entry; exit:
func (l *Lowerer) lowerFor(e *emitter, p *ir.ForStat) {
	l.statement(e, p.Init)
	cond := l.value(e, p.Cond)
	if e.failed() {
		return
	}
	entry := l.fresh.Label()
	exit := l.fresh.Label()
	e.mark(p.Cond, entry)
	e.emit(ir.NewBranch(cond, exit, false, true))
	l.statement(e, p.Body)
	l.statement(e, p.Step)
	e.emit(ir.NewBranch(nil, entry, false, false))
	e.exit(exit)
}
