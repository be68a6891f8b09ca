package symbols

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrPlacementSet is returned when a symbol is placed twice
	ErrPlacementSet = errors.New("placement already set")
	// ErrNotInMemory is returned when placing a register or immediate symbol
	ErrNotInMemory = errors.New("symbol has no memory storage")
)

// StorageClass says where a symbol lives. It is fixed at creation.
type StorageClass int

const (
	ClassAuto StorageClass = iota
	ClassGlobal
	ClassRegister
	ClassImmediate
)

func (c StorageClass) String() string {
	switch c {
	case ClassAuto:
		return "auto"
	case ClassGlobal:
		return "global"
	case ClassRegister:
		return "reg"
	case ClassImmediate:
		return "imm"
	}
	return "?"
}

// Placement is the physical location of a memory symbol
type Placement interface {
	implPlacement()
	LinkName() string
	ByteSize() int
	String() string
}

// LocalPlacement is a slot in the current stack frame, relative to the
// frame pointer
type LocalPlacement struct {
	Name        string
	FrameOffset int
	Size        int
}

// GlobalPlacement is a slot in the data section
type GlobalPlacement struct {
	Name string
	Size int
}

func (LocalPlacement) implPlacement()  {}
func (GlobalPlacement) implPlacement() {}

func (p LocalPlacement) LinkName() string  { return p.Name }
func (p LocalPlacement) ByteSize() int     { return p.Size }
func (p GlobalPlacement) LinkName() string { return p.Name }
func (p GlobalPlacement) ByteSize() int    { return p.Size }

func (p LocalPlacement) String() string {
	return fmt.Sprintf("%s: fp + (%d) [def byte %d]", p.Name, p.FrameOffset, p.Size)
}

func (p GlobalPlacement) String() string {
	return fmt.Sprintf("%s: def byte %d", p.Name, p.Size)
}

// Symbol is a typed storage location: a temporary, a variable, a named
// constant, a label or a procedure.
type Symbol struct {
	Name  string
	Type  Type
	Value *int64 // non-nil for named constants
	Class StorageClass

	placement Placement
}

// New creates a symbol with the given storage class
func New(name string, t Type, class StorageClass) *Symbol {
	return &Symbol{Name: name, Type: t, Class: class}
}

// NewConst creates a named integer constant
func NewConst(name string, value int64) *Symbol {
	v := value
	return &Symbol{Name: name, Type: Int, Value: &v, Class: ClassImmediate}
}

// IsRegister reports whether the symbol is a temporary
func (s *Symbol) IsRegister() bool {
	return s.Class == ClassRegister
}

// InMemory reports whether the symbol has addressable storage
func (s *Symbol) InMemory() bool {
	return s.Class == ClassAuto || s.Class == ClassGlobal
}

// Placement returns the placement attached by data layout, or nil
func (s *Symbol) Placement() Placement {
	return s.placement
}

// SetPlacement attaches the placement record. It may be called once.
func (s *Symbol) SetPlacement(p Placement) error {
	if !s.InMemory() {
		return errors.Wrapf(ErrNotInMemory, "%s", s.Name)
	}
	if s.placement != nil {
		return errors.Wrapf(ErrPlacementSet, "%s", s.Name)
	}
	s.placement = p
	return nil
}

func (s *Symbol) String() string {
	res := s.Class.String() + " " + s.Type.Name() + " " + s.Name
	if s.placement != nil {
		res += fmt.Sprintf("; %v", s.placement)
	}
	return res
}
