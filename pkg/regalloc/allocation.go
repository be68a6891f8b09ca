package regalloc

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/raymyers/ralph-pl0/pkg/symbols"
)

// Spill marks a symbol that lives in a stack slot
const Spill = -1

// DefaultWordSize is the size of a spill slot in bytes
const DefaultWordSize = 4

var (
	// ErrTooFewRegisters is returned when the register file cannot hold the
	// spill pair plus one allocatable register
	ErrTooFewRegisters = errors.New("too few registers")
	// ErrCapacityExhausted is returned when no register is free and nothing
	// can be spilled
	ErrCapacityExhausted = errors.New("register capacity exhausted")
	// ErrRegisterInheritance is returned when two blocks place the same
	// symbol differently
	ErrRegisterInheritance = errors.New("register inheritance across blocks not implemented")
	// ErrNotAllocated is returned for a symbol the allocation does not know
	ErrNotAllocated = errors.New("symbol not allocated")
)

// Allocation maps register symbols to a register index or to Spill. The two
// highest registers are reserved for spilled symbols: each time a spilled
// symbol is materialized it is filled into the one not chosen last time.
type Allocation struct {
	NumRegs  int
	WordSize int // spill slot size; set before the first Materialize
	NumSpill int // distinct spilled symbols

	home     map[*symbols.Symbol]int // register index or Spill
	current  map[*symbols.Symbol]int // spill register of a materialized symbol
	offsets  map[*symbols.Symbol]int // spill slot offset, assigned on first materialization
	rotation int
	next     int
}

// NewAllocation creates an empty allocation for numRegs registers
func NewAllocation(numRegs int) *Allocation {
	return &Allocation{
		NumRegs:  numRegs,
		WordSize: DefaultWordSize,
		home:     make(map[*symbols.Symbol]int),
		current:  make(map[*symbols.Symbol]int),
		offsets:  make(map[*symbols.Symbol]int),
	}
}

// SpillRegisters returns the reserved spill register pair
func (a *Allocation) SpillRegisters() (int, int) {
	return a.NumRegs - 2, a.NumRegs - 1
}

func (a *Allocation) set(sym *symbols.Symbol, loc int) {
	a.home[sym] = loc
}

// Location returns the register index or Spill assigned to sym
func (a *Allocation) Location(sym *symbols.Symbol) (int, bool) {
	loc, ok := a.home[sym]
	return loc, ok
}

// Register returns the register holding sym: its own register, or the spill
// register it is materialized in
func (a *Allocation) Register(sym *symbols.Symbol) (int, bool) {
	loc, ok := a.home[sym]
	if !ok {
		return 0, false
	}
	if loc != Spill {
		return loc, true
	}
	r, ok := a.current[sym]
	return r, ok
}

// Spilled reports whether sym lives in a stack slot
func (a *Allocation) Spilled(sym *symbols.Symbol) bool {
	loc, ok := a.home[sym]
	return ok && loc == Spill
}

// Materialize picks a spill register for a spilled symbol unless it already
// holds one, and assigns its stack slot on first use. It reports whether sym
// is spilled.
func (a *Allocation) Materialize(sym *symbols.Symbol) (bool, error) {
	loc, ok := a.home[sym]
	if !ok {
		return false, errors.Wrapf(ErrNotAllocated, "%s", sym.Name)
	}
	if loc != Spill {
		return false, nil
	}
	if _, ok := a.current[sym]; ok {
		return true, nil
	}
	first, _ := a.SpillRegisters()
	a.current[sym] = first + a.rotation
	a.rotation = (a.rotation + 1) % 2
	if _, ok := a.offsets[sym]; !ok {
		a.offsets[sym] = a.next
		a.next += a.WordSize
	}
	return true, nil
}

// Dematerialize releases the spill register of sym once its value is dead or
// stored back
func (a *Allocation) Dematerialize(sym *symbols.Symbol) {
	delete(a.current, sym)
}

// SpillOffset returns the slot offset of sym within the spill area
func (a *Allocation) SpillOffset(sym *symbols.Symbol) (int, bool) {
	off, ok := a.offsets[sym]
	return off, ok
}

// SpillRoom returns the size of the spill area in bytes
func (a *Allocation) SpillRoom() int {
	return a.NumSpill * a.WordSize
}

// FrameOffset returns the frame pointer relative address of the spill slot
// of sym. Spill slots sit below the stackRoom bytes of locals.
func (a *Allocation) FrameOffset(sym *symbols.Symbol, stackRoom int) (int, error) {
	off, ok := a.offsets[sym]
	if !ok {
		return 0, errors.Wrapf(ErrNotAllocated, "%s has no spill slot", sym.Name)
	}
	return -stackRoom - off - a.WordSize, nil
}

// Symbols returns every allocated symbol sorted by name
func (a *Allocation) Symbols() []*symbols.Symbol {
	res := make([]*symbols.Symbol, 0, len(a.home))
	for sym := range a.home {
		res = append(res, sym)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].Name < res[j].Name
	})
	return res
}

// Merge adds the assignments of other. A symbol already placed elsewhere is
// an error: values are not carried between registers across blocks.
func (a *Allocation) Merge(other *Allocation) error {
	for sym, loc := range other.home {
		if prev, ok := a.home[sym]; ok && prev != loc {
			return errors.Wrapf(ErrRegisterInheritance, "%s in %s and %s", sym.Name, locName(prev), locName(loc))
		}
	}
	for sym, loc := range other.home {
		a.home[sym] = loc
	}
	a.NumSpill = 0
	for _, loc := range a.home {
		if loc == Spill {
			a.NumSpill++
		}
	}
	return nil
}
