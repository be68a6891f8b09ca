// Fresh name generation for lowering.
// Temporaries and labels are minted from counters owned by one compilation
// unit, so names never collide within it.

package symbols

import "fmt"

// Fresh mints temporaries and labels.
type Fresh struct {
	nextTemp  int // next temporary number, t0 first
	nextLabel int // next label number, label1 first
}

// NewFresh creates a new naming context.
func NewFresh() *Fresh {
	return &Fresh{nextLabel: 1}
}

// Temp allocates a fresh register-class temporary of type t.
func (f *Fresh) Temp(t Type) *Symbol {
	s := New(fmt.Sprintf("t%d", f.nextTemp), t, ClassRegister)
	f.nextTemp++
	return s
}

// Label allocates a fresh label.
func (f *Fresh) Label() *Symbol {
	s := New(fmt.Sprintf("label%d", f.nextLabel), Label, ClassAuto)
	f.nextLabel++
	return s
}

// Temps returns the number of temporaries allocated so far.
func (f *Fresh) Temps() int {
	return f.nextTemp
}
