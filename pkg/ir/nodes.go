// Package ir defines the tree-shaped intermediate representation of a PL/0
// program. Nodes live in an arena (Tree) and refer to each other by NodeID;
// the payload of a node is a closed sum type covering both the high-level
// statements and expressions produced by the parser and the low-level
// three-address instructions produced by lowering.
package ir

import "github.com/raymyers/ralph-pl0/pkg/symbols"

// NodeID is a handle to a node in a Tree. The zero value means "no node".
type NodeID int

// NoNode is the empty handle
const NoNode NodeID = 0

// Node is one entry of the arena
type Node struct {
	ID      NodeID
	Parent  NodeID // non-owning back-reference, NoNode for the root and detached nodes
	Scope   *symbols.Table
	Label   *symbols.Symbol // label marking this statement, if any
	Payload Payload
}

// Payload is the closed set of node kinds
type Payload interface {
	implPayload()
}

// Expressions

// Const is an integer literal, or a reference to a named symbol holding one
type Const struct {
	Value  int64
	Symbol *symbols.Symbol
}

// Var reads a scalar variable. Symbol is nil when Name did not resolve.
type Var struct {
	Name   string
	Symbol *symbols.Symbol
}

// ArrayElement reads one element of an array, one index per dimension
type ArrayElement struct {
	Symbol  *symbols.Symbol
	Indices []NodeID
}

// BinExpr is a binary arithmetic or comparison expression
type BinExpr struct {
	Op    string
	Left  NodeID
	Right NodeID
}

// UnExpr is a unary expression (plus, minus, odd)
type UnExpr struct {
	Op      string
	Operand NodeID
}

// CallExpr names a procedure and its arguments
type CallExpr struct {
	Function *symbols.Symbol
	Args     []NodeID
}

// ReadExpr reads an integer from input
type ReadExpr struct{}

// Statements

// AssignStat stores Expr into Target, or into one element of Target when
// Indices is non-empty
type AssignStat struct {
	Target  *symbols.Symbol
	Indices []NodeID
	Expr    NodeID
}

// IfStat is a conditional. Else is NoNode when absent.
type IfStat struct {
	Cond NodeID
	Then NodeID
	Else NodeID
}

// WhileStat is a pre-tested loop
type WhileStat struct {
	Cond NodeID
	Body NodeID
}

// ForStat is a counted loop: Init; while Cond do { Body; Step }
type ForStat struct {
	Init NodeID
	Cond NodeID
	Step NodeID
	Body NodeID
}

// PrintStat writes the value of Expr
type PrintStat struct {
	Expr NodeID
}

// CallStat is a procedure call statement
type CallStat struct {
	Call NodeID
}

// Block is the body of the program or of a procedure
type Block struct {
	Globals   *symbols.Table // enclosing program scope, nil for the program block
	Locals    *symbols.Table
	Defs      NodeID
	Body      NodeID
	StackRoom int // bytes of local frame, set by data layout
}

// DefinitionList holds the procedures declared in a block
type DefinitionList struct {
	Defs []NodeID
}

// FunctionDef is a procedure definition
type FunctionDef struct {
	Symbol *symbols.Symbol
	Body   NodeID
}

// Low-level nodes

// StatList is an ordered statement sequence
type StatList struct {
	Children []NodeID
}

// EmptyStat does nothing; it carries labels
type EmptyStat struct{}

// BranchStat jumps to Target. A nil Cond means the branch is always taken;
// otherwise it is taken when Cond is true, or false if NegCond is set.
// Returns marks a branch-and-link (procedure call).
type BranchStat struct {
	Cond    *symbols.Symbol
	Target  *symbols.Symbol
	Returns bool
	NegCond bool
}

// LoadImm loads a constant into Dest
type LoadImm struct {
	Dest  *symbols.Symbol
	Value int64
}

// Load copies Src into Dest. A memory Src is read directly; a register Src
// is used as a pointer.
type Load struct {
	Dest    *symbols.Symbol
	Src     *symbols.Symbol
	UseHint *symbols.Symbol // memory object read through a pointer
}

// Store writes Src to Dest. A memory Dest is written directly; a register
// Dest is used as a pointer.
type Store struct {
	Dest     *symbols.Symbol
	Src      *symbols.Symbol
	KillHint *symbols.Symbol // memory object written through a pointer
}

// LoadPtrToSym loads the address of Symbol into Dest
type LoadPtrToSym struct {
	Dest   *symbols.Symbol
	Symbol *symbols.Symbol
}

// BinStat computes Dest = A op B
type BinStat struct {
	Dest *symbols.Symbol
	Op   string
	A    *symbols.Symbol
	B    *symbols.Symbol
}

// UnaryStat computes Dest = op Src
type UnaryStat struct {
	Dest *symbols.Symbol
	Op   string
	Src  *symbols.Symbol
}

// PrintCommand writes a register
type PrintCommand struct {
	Src *symbols.Symbol
}

// ReadCommand reads input into a register
type ReadCommand struct {
	Dest *symbols.Symbol
}

func (*Const) implPayload()          {}
func (*Var) implPayload()            {}
func (*ArrayElement) implPayload()   {}
func (*BinExpr) implPayload()        {}
func (*UnExpr) implPayload()         {}
func (*CallExpr) implPayload()       {}
func (*ReadExpr) implPayload()       {}
func (*AssignStat) implPayload()     {}
func (*IfStat) implPayload()         {}
func (*WhileStat) implPayload()      {}
func (*ForStat) implPayload()        {}
func (*PrintStat) implPayload()      {}
func (*CallStat) implPayload()       {}
func (*Block) implPayload()          {}
func (*DefinitionList) implPayload() {}
func (*FunctionDef) implPayload()    {}
func (*StatList) implPayload()       {}
func (*EmptyStat) implPayload()      {}
func (*BranchStat) implPayload()     {}
func (*LoadImm) implPayload()        {}
func (*Load) implPayload()           {}
func (*Store) implPayload()          {}
func (*LoadPtrToSym) implPayload()   {}
func (*BinStat) implPayload()        {}
func (*UnaryStat) implPayload()      {}
func (*PrintCommand) implPayload()   {}
func (*ReadCommand) implPayload()    {}

// Slots returns pointers to every child slot of p, in evaluation order.
// Optional slots (IfStat.Else) are included even when empty.
func Slots(p Payload) []*NodeID {
	switch n := p.(type) {
	case *Const, *Var, *ReadExpr, *EmptyStat,
		*BranchStat, *LoadImm, *Load, *Store, *LoadPtrToSym,
		*BinStat, *UnaryStat, *PrintCommand, *ReadCommand:
		return nil
	case *ArrayElement:
		return sliceSlots(n.Indices)
	case *BinExpr:
		return []*NodeID{&n.Left, &n.Right}
	case *UnExpr:
		return []*NodeID{&n.Operand}
	case *CallExpr:
		return sliceSlots(n.Args)
	case *AssignStat:
		return append(sliceSlots(n.Indices), &n.Expr)
	case *IfStat:
		return []*NodeID{&n.Cond, &n.Then, &n.Else}
	case *WhileStat:
		return []*NodeID{&n.Cond, &n.Body}
	case *ForStat:
		return []*NodeID{&n.Init, &n.Cond, &n.Body, &n.Step}
	case *PrintStat:
		return []*NodeID{&n.Expr}
	case *CallStat:
		return []*NodeID{&n.Call}
	case *Block:
		return []*NodeID{&n.Defs, &n.Body}
	case *DefinitionList:
		return sliceSlots(n.Defs)
	case *FunctionDef:
		return []*NodeID{&n.Body}
	case *StatList:
		return sliceSlots(n.Children)
	}
	panic("ir: unknown payload")
}

func sliceSlots(ids []NodeID) []*NodeID {
	slots := make([]*NodeID, len(ids))
	for i := range ids {
		slots[i] = &ids[i]
	}
	return slots
}

// Children returns the non-empty child handles of p
func Children(p Payload) []NodeID {
	var res []NodeID
	for _, s := range Slots(p) {
		if *s != NoNode {
			res = append(res, *s)
		}
	}
	return res
}

// IsInstruction reports whether p is a low-level instruction, i.e. a node
// the CFG builder can place in a basic block.
func IsInstruction(p Payload) bool {
	switch p.(type) {
	case *EmptyStat, *BranchStat, *LoadImm, *Load, *Store, *LoadPtrToSym,
		*BinStat, *UnaryStat, *PrintCommand, *ReadCommand:
		return true
	}
	return false
}

// IsLowLevel reports whether p needs no lowering
func IsLowLevel(p Payload) bool {
	if _, ok := p.(*StatList); ok {
		return true
	}
	return IsInstruction(p)
}

// KindName returns the name of the node kind, e.g. "BinExpr"
func KindName(p Payload) string {
	switch p.(type) {
	case *Const:
		return "Const"
	case *Var:
		return "Var"
	case *ArrayElement:
		return "ArrayElement"
	case *BinExpr:
		return "BinExpr"
	case *UnExpr:
		return "UnExpr"
	case *CallExpr:
		return "CallExpr"
	case *ReadExpr:
		return "ReadExpr"
	case *AssignStat:
		return "AssignStat"
	case *IfStat:
		return "IfStat"
	case *WhileStat:
		return "WhileStat"
	case *ForStat:
		return "ForStat"
	case *PrintStat:
		return "PrintStat"
	case *CallStat:
		return "CallStat"
	case *Block:
		return "Block"
	case *DefinitionList:
		return "DefinitionList"
	case *FunctionDef:
		return "FunctionDef"
	case *StatList:
		return "StatList"
	case *EmptyStat:
		return "EmptyStat"
	case *BranchStat:
		return "BranchStat"
	case *LoadImm:
		return "LoadImm"
	case *Load:
		return "Load"
	case *Store:
		return "Store"
	case *LoadPtrToSym:
		return "LoadPtrToSym"
	case *BinStat:
		return "BinStat"
	case *UnaryStat:
		return "UnaryStat"
	case *PrintCommand:
		return "PrintCommand"
	case *ReadCommand:
		return "ReadCommand"
	}
	return "?"
}
