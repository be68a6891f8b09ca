package symbols

import (
	"strings"

	"github.com/pkg/errors"
)

// ErrDuplicate is returned when a name is declared twice in one table
var ErrDuplicate = errors.New("duplicate declaration")

// Table is an ordered symbol table
type Table struct {
	syms []*Symbol
}

// NewTable creates a table holding syms in order
func NewTable(syms ...*Symbol) *Table {
	return &Table{syms: append([]*Symbol(nil), syms...)}
}

// Append adds a symbol, rejecting names already declared in this table
func (t *Table) Append(s *Symbol) error {
	for _, other := range t.syms {
		if other.Name == s.Name {
			return errors.Wrapf(ErrDuplicate, "%s", s.Name)
		}
	}
	t.syms = append(t.syms, s)
	return nil
}

// Find returns the latest declaration of name, or nil
func (t *Table) Find(name string) *Symbol {
	if t == nil {
		return nil
	}
	for i := len(t.syms) - 1; i >= 0; i-- {
		if t.syms[i].Name == name {
			return t.syms[i]
		}
	}
	return nil
}

// Symbols returns the symbols in declaration order
func (t *Table) Symbols() []*Symbol {
	if t == nil {
		return nil
	}
	return t.syms
}

// Len returns the number of symbols
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.syms)
}

// Exclude returns the symbols whose type kind is not one of kinds
func (t *Table) Exclude(kinds ...Kind) []*Symbol {
	var res []*Symbol
outer:
	for _, s := range t.Symbols() {
		for _, k := range kinds {
			if s.Type.Kind() == k {
				continue outer
			}
		}
		res = append(res, s)
	}
	return res
}

// Extend returns a new table with the symbols of t followed by those of other.
// Lookups in the result prefer other.
func (t *Table) Extend(other *Table) *Table {
	res := NewTable(t.Symbols()...)
	res.syms = append(res.syms, other.Symbols()...)
	return res
}

func (t *Table) String() string {
	var sb strings.Builder
	sb.WriteString("SymbolTable:\n")
	for _, s := range t.Symbols() {
		sb.WriteString(s.String())
		sb.WriteString("\n")
	}
	return sb.String()
}
