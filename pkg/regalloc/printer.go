package regalloc

import (
	"fmt"
	"io"
)

// Printer outputs a register allocation as a table
type Printer struct {
	w io.Writer
}

// NewPrinter creates a new allocation printer
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// PrintAllocation prints the register of every symbol, or its spill slot
func (p *Printer) PrintAllocation(a *Allocation) {
	s0, s1 := a.SpillRegisters()
	fmt.Fprintf(p.w, "registers: %d (spill r%d, r%d)\n", a.NumRegs, s0, s1)
	fmt.Fprintf(p.w, "spilled: %d\n", a.NumSpill)
	fmt.Fprintf(p.w, "spill room: %d\n", a.SpillRoom())
	for _, sym := range a.Symbols() {
		loc := a.home[sym]
		if loc != Spill {
			fmt.Fprintf(p.w, "  %s: %s\n", sym.Name, locName(loc))
			continue
		}
		if off, ok := a.offsets[sym]; ok {
			fmt.Fprintf(p.w, "  %s: spill @%d\n", sym.Name, off)
		} else {
			fmt.Fprintf(p.w, "  %s: spill\n", sym.Name)
		}
	}
}

func locName(loc int) string {
	if loc == Spill {
		return "spill"
	}
	return fmt.Sprintf("r%d", loc)
}
