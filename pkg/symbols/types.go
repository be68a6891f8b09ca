// Package symbols defines the type and symbol model shared by every pass:
// integer, array, pointer, label and function types, storage classes,
// placement records written by data layout, symbol tables and symbol sets.
package symbols

import (
	"fmt"
	"strings"
)

// Kind is the base kind of a type
type Kind int

const (
	KindInt Kind = iota
	KindLabel
	KindFunction
	KindStruct
)

func (k Kind) String() string {
	names := []string{"Int", "Label", "Function", "Struct"}
	if int(k) < len(names) {
		return names[k]
	}
	return "?"
}

// Qualifier is a bit set of type qualifiers
type Qualifier int

const (
	QualUnsigned Qualifier = 1 << iota
)

// Type is the interface for all types. Types are immutable values.
type Type interface {
	implType()
	Name() string
	Bits() int
	Kind() Kind
	Unsigned() bool
}

// Tint is an integer type of Size bits
type Tint struct {
	TypeName string // empty for promoted (unnamed) types
	Size     int
	Quals    Qualifier
}

// Tarray is a (possibly multi-dimensional) array type
type Tarray struct {
	TypeName string
	Elem     Type
	Dims     []int
}

// Tpointer is a 32-bit unsigned pointer to Elem
type Tpointer struct {
	Elem Type
}

// Tlabel is the type of jump targets
type Tlabel struct{}

// Tfunction is the type of procedure symbols
type Tfunction struct{}

// Tstruct is an aggregate of fields. Unused by the front end.
type Tstruct struct {
	TypeName string
	Fields   []Type
}

func (Tint) implType()      {}
func (Tarray) implType()    {}
func (Tpointer) implType()  {}
func (Tlabel) implType()    {}
func (Tfunction) implType() {}
func (Tstruct) implType()   {}

func (t Tint) Name() string {
	if t.TypeName != "" {
		return t.TypeName
	}
	n := "int"
	if t.Unsigned() {
		n = "uint"
	}
	return fmt.Sprintf("%s%d_t", n, t.Size)
}
func (t Tint) Bits() int       { return t.Size }
func (Tint) Kind() Kind        { return KindInt }
func (t Tint) Unsigned() bool  { return t.Quals&QualUnsigned != 0 }
func (t Tint) String() string  { return t.Name() }
func (t Tarray) Kind() Kind    { return t.Elem.Kind() }
func (Tarray) Unsigned() bool  { return false }
func (t Tarray) String() string { return t.Name() }

func (t Tarray) Name() string {
	if t.TypeName != "" {
		return t.TypeName
	}
	var sb strings.Builder
	sb.WriteString(t.Elem.Name())
	for _, d := range t.Dims {
		fmt.Fprintf(&sb, "[%d]", d)
	}
	return sb.String()
}

// Bits returns the element size times the product of the dimensions
func (t Tarray) Bits() int {
	n := t.Elem.Bits()
	for _, d := range t.Dims {
		n *= d
	}
	return n
}

func (t Tpointer) Name() string   { return "&" + t.Elem.Name() }
func (Tpointer) Bits() int        { return 32 }
func (Tpointer) Kind() Kind       { return KindInt }
func (Tpointer) Unsigned() bool   { return true }
func (t Tpointer) String() string { return t.Name() }

func (Tlabel) Name() string      { return "label" }
func (Tlabel) Bits() int         { return 0 }
func (Tlabel) Kind() Kind        { return KindLabel }
func (Tlabel) Unsigned() bool    { return false }
func (Tfunction) Name() string   { return "function" }
func (Tfunction) Bits() int      { return 0 }
func (Tfunction) Kind() Kind     { return KindFunction }
func (Tfunction) Unsigned() bool { return false }

func (t Tstruct) Name() string   { return t.TypeName }
func (Tstruct) Kind() Kind       { return KindStruct }
func (Tstruct) Unsigned() bool   { return false }
func (t Tstruct) String() string { return t.Name() }

func (t Tstruct) Bits() int {
	n := 0
	for _, f := range t.Fields {
		n += f.Bits()
	}
	return n
}

// Bytes returns the storage size of t in bytes
func Bytes(t Type) int {
	return t.Bits() / 8
}

// Named types of the source language
var (
	Int      = Tint{TypeName: "int", Size: 32}
	Short    = Tint{TypeName: "short", Size: 16}
	Char     = Tint{TypeName: "char", Size: 8}
	UChar    = Tint{TypeName: "uchar", Size: 8, Quals: QualUnsigned}
	UInt     = Tint{TypeName: "uint", Size: 32, Quals: QualUnsigned}
	UShort   = Tint{TypeName: "ushort", Size: 16, Quals: QualUnsigned}
	Label    = Tlabel{}
	Function = Tfunction{}
)

var typeNames = map[string]Type{
	"int":      Int,
	"short":    Short,
	"char":     Char,
	"uchar":    UChar,
	"uint":     UInt,
	"ushort":   UShort,
	"label":    Label,
	"function": Function,
}

// LookupType returns the named type, if any
func LookupType(name string) (Type, bool) {
	t, ok := typeNames[name]
	return t, ok
}

// ElemType returns the element type of an array, or t itself otherwise
func ElemType(t Type) Type {
	if arr, ok := t.(Tarray); ok {
		return arr.Elem
	}
	return t
}

// Identical reports whether two types are structurally identical
func Identical(a, b Type) bool {
	switch x := a.(type) {
	case Tint:
		y, ok := b.(Tint)
		return ok && x.Size == y.Size && x.Quals == y.Quals
	case Tarray:
		y, ok := b.(Tarray)
		if !ok || len(x.Dims) != len(y.Dims) || !Identical(x.Elem, y.Elem) {
			return false
		}
		for i := range x.Dims {
			if x.Dims[i] != y.Dims[i] {
				return false
			}
		}
		return true
	case Tpointer:
		y, ok := b.(Tpointer)
		return ok && Identical(x.Elem, y.Elem)
	case Tlabel:
		_, ok := b.(Tlabel)
		return ok
	case Tfunction:
		_, ok := b.(Tfunction)
		return ok
	case Tstruct:
		y, ok := b.(Tstruct)
		if !ok || len(x.Fields) != len(y.Fields) {
			return false
		}
		for i := range x.Fields {
			if !Identical(x.Fields[i], y.Fields[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Promote returns the result type of a binary operation on a and b:
// the wider of the two sizes, unsigned only if both operands are unsigned.
func Promote(a, b Type) Type {
	size := max(a.Bits(), b.Bits())
	var quals Qualifier
	if a.Unsigned() && b.Unsigned() {
		quals = QualUnsigned
	}
	return Tint{Size: size, Quals: quals}
}
