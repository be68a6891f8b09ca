package symbols

import (
	"sort"
	"strings"
)

// Set is a set of symbols
type Set map[*Symbol]struct{}

// NewSet creates a set holding syms
func NewSet(syms ...*Symbol) Set {
	s := make(Set, len(syms))
	for _, sym := range syms {
		s[sym] = struct{}{}
	}
	return s
}

// Add adds a symbol to the set
func (s Set) Add(sym *Symbol) {
	s[sym] = struct{}{}
}

// Remove removes a symbol from the set
func (s Set) Remove(sym *Symbol) {
	delete(s, sym)
}

// Contains checks if a symbol is in the set
func (s Set) Contains(sym *Symbol) bool {
	_, ok := s[sym]
	return ok
}

// Len returns the number of symbols in the set
func (s Set) Len() int {
	return len(s)
}

// Union returns a new set containing all elements from both sets
func (s Set) Union(other Set) Set {
	result := make(Set, len(s)+len(other))
	for sym := range s {
		result[sym] = struct{}{}
	}
	for sym := range other {
		result[sym] = struct{}{}
	}
	return result
}

// Minus returns a new set with elements in s but not in other
func (s Set) Minus(other Set) Set {
	result := make(Set)
	for sym := range s {
		if _, ok := other[sym]; !ok {
			result[sym] = struct{}{}
		}
	}
	return result
}

// Equal checks if two sets are equal
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for sym := range s {
		if _, ok := other[sym]; !ok {
			return false
		}
	}
	return true
}

// Copy returns a copy of the set
func (s Set) Copy() Set {
	result := make(Set, len(s))
	for sym := range s {
		result[sym] = struct{}{}
	}
	return result
}

// Slice returns the symbols sorted by name
func (s Set) Slice() []*Symbol {
	result := make([]*Symbol, 0, len(s))
	for sym := range s {
		result = append(result, sym)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// Names returns the sorted symbol names
func (s Set) Names() []string {
	syms := s.Slice()
	names := make([]string, len(syms))
	for i, sym := range syms {
		names[i] = sym.Name
	}
	return names
}

func (s Set) String() string {
	return "{" + strings.Join(s.Names(), ", ") + "}"
}
