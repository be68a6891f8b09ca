// Package datalayout assigns storage to every symbol that does not live in a
// register: program variables go to the data section, procedure variables to
// the procedure's stack frame.
package datalayout

import (
	"github.com/pkg/errors"

	"github.com/raymyers/ralph-pl0/pkg/ir"
	"github.com/raymyers/ralph-pl0/pkg/symbols"
)

const (
	globalPrefix = "_g_"
	localPrefix  = "_l_"
)

// Frame layout of a procedure (offsets relative to the frame pointer):
//
//	+---------------------------+  <- FP
//	| locals, declaration order |  -size(first) ... -StackRoom
//	+---------------------------+
//	| spill slots               |  below StackRoom
//	+---------------------------+  <- SP

// Perform places the symbols of the program block and of every procedure
// block, and records each procedure's StackRoom
func Perform(tree *ir.Tree) error {
	root, ok := tree.Payload(tree.Root).(*ir.Block)
	if !ok {
		return errors.Errorf("root node %d is not a block", tree.Root)
	}
	if err := layoutProgram(root); err != nil {
		return err
	}
	for _, id := range tree.PreOrder(tree.Root) {
		fn, ok := tree.Payload(id).(*ir.FunctionDef)
		if !ok {
			continue
		}
		body, ok := tree.Payload(fn.Body).(*ir.Block)
		if !ok {
			return errors.Errorf("procedure %s has no block", fn.Symbol.Name)
		}
		if err := layoutFunction(fn.Symbol.Name, body); err != nil {
			return err
		}
	}
	return nil
}

// placeable reports whether sym needs storage
func placeable(sym *symbols.Symbol) bool {
	return sym.InMemory() && sym.Type.Kind() == symbols.KindInt && symbols.Bytes(sym.Type) > 0
}

func layoutProgram(b *ir.Block) error {
	for _, sym := range b.Locals.Symbols() {
		if !placeable(sym) {
			continue
		}
		p := symbols.GlobalPlacement{Name: globalPrefix + sym.Name, Size: symbols.Bytes(sym.Type)}
		if err := sym.SetPlacement(p); err != nil {
			return err
		}
	}
	return nil
}

func layoutFunction(name string, b *ir.Block) error {
	offset := 0
	prefix := localPrefix + name + "_"
	for _, sym := range b.Locals.Symbols() {
		if !placeable(sym) {
			continue
		}
		size := symbols.Bytes(sym.Type)
		offset -= size
		p := symbols.LocalPlacement{Name: prefix + sym.Name, FrameOffset: offset, Size: size}
		if err := sym.SetPlacement(p); err != nil {
			return err
		}
	}
	b.StackRoom = -offset
	return nil
}
