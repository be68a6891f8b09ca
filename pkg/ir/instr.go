package ir

import (
	"github.com/pkg/errors"

	"github.com/raymyers/ralph-pl0/pkg/symbols"
)

// ErrOperandClass is returned when an instruction is built with an operand
// in the wrong storage class
var ErrOperandClass = errors.New("operand class violation")

func requireRegister(what string, s *symbols.Symbol) error {
	if s == nil {
		return errors.Wrapf(ErrOperandClass, "%s: missing operand", what)
	}
	if !s.IsRegister() {
		return errors.Wrapf(ErrOperandClass, "%s: %s not in register", what, s.Name)
	}
	return nil
}

func requireAddressable(what string, s *symbols.Symbol) error {
	if s == nil {
		return errors.Wrapf(ErrOperandClass, "%s: missing operand", what)
	}
	if !s.IsRegister() && !s.InMemory() {
		return errors.Wrapf(ErrOperandClass, "%s: %s is neither a register nor in memory", what, s.Name)
	}
	return nil
}

// NewLoadImm builds dest <- value
func NewLoadImm(dest *symbols.Symbol, value int64) (*LoadImm, error) {
	if err := requireRegister("load immediate dest", dest); err != nil {
		return nil, err
	}
	return &LoadImm{Dest: dest, Value: value}, nil
}

// NewLoad builds dest <- src (memory src) or dest <- [src] (register src)
func NewLoad(dest, src, useHint *symbols.Symbol) (*Load, error) {
	if err := requireRegister("load dest", dest); err != nil {
		return nil, err
	}
	if err := requireAddressable("load src", src); err != nil {
		return nil, err
	}
	return &Load{Dest: dest, Src: src, UseHint: useHint}, nil
}

// NewStore builds dest <- src (memory dest) or [dest] <- src (register dest)
func NewStore(dest, src, killHint *symbols.Symbol) (*Store, error) {
	if err := requireRegister("store src", src); err != nil {
		return nil, err
	}
	if err := requireAddressable("store dest", dest); err != nil {
		return nil, err
	}
	return &Store{Dest: dest, Src: src, KillHint: killHint}, nil
}

// NewLoadPtrToSym builds dest <- &sym
func NewLoadPtrToSym(dest, sym *symbols.Symbol) (*LoadPtrToSym, error) {
	if err := requireRegister("address dest", dest); err != nil {
		return nil, err
	}
	if sym == nil || !sym.InMemory() {
		return nil, errors.Wrapf(ErrOperandClass, "address of %v: symbol not in memory", sym)
	}
	return &LoadPtrToSym{Dest: dest, Symbol: sym}, nil
}

// NewBinStat builds dest <- a op b
func NewBinStat(op string, dest, a, b *symbols.Symbol) (*BinStat, error) {
	if err := requireRegister("binstat dest", dest); err != nil {
		return nil, err
	}
	if err := requireRegister("binstat src", a); err != nil {
		return nil, err
	}
	if err := requireRegister("binstat src", b); err != nil {
		return nil, err
	}
	return &BinStat{Dest: dest, Op: op, A: a, B: b}, nil
}

// NewUnaryStat builds dest <- op src
func NewUnaryStat(op string, dest, src *symbols.Symbol) (*UnaryStat, error) {
	if err := requireRegister("unarystat dest", dest); err != nil {
		return nil, err
	}
	if err := requireRegister("unarystat src", src); err != nil {
		return nil, err
	}
	return &UnaryStat{Dest: dest, Op: op, Src: src}, nil
}

// NewBranch builds a branch to target. A nil cond makes it unconditional.
func NewBranch(cond, target *symbols.Symbol, returns, negCond bool) (*BranchStat, error) {
	if cond != nil {
		if err := requireRegister("branch condition", cond); err != nil {
			return nil, err
		}
	}
	if target == nil {
		return nil, errors.Wrap(ErrOperandClass, "branch: missing target")
	}
	return &BranchStat{Cond: cond, Target: target, Returns: returns, NegCond: negCond}, nil
}

// NewPrint builds print src
func NewPrint(src *symbols.Symbol) (*PrintCommand, error) {
	if err := requireRegister("print src", src); err != nil {
		return nil, err
	}
	return &PrintCommand{Src: src}, nil
}

// NewRead builds read dest
func NewRead(dest *symbols.Symbol) (*ReadCommand, error) {
	if err := requireRegister("read dest", dest); err != nil {
		return nil, err
	}
	return &ReadCommand{Dest: dest}, nil
}

// Unconditional reports whether b always jumps
func (b *BranchStat) Unconditional() bool {
	return b.Cond == nil
}
