// Package driver runs the compiler pipeline: parse, lower, flatten, data
// layout, CFG construction with liveness, and register allocation
package driver

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/raymyers/ralph-pl0/pkg/cfg"
	"github.com/raymyers/ralph-pl0/pkg/datalayout"
	"github.com/raymyers/ralph-pl0/pkg/ir"
	"github.com/raymyers/ralph-pl0/pkg/lexer"
	"github.com/raymyers/ralph-pl0/pkg/liveness"
	"github.com/raymyers/ralph-pl0/pkg/logger"
	"github.com/raymyers/ralph-pl0/pkg/lower"
	"github.com/raymyers/ralph-pl0/pkg/parser"
	"github.com/raymyers/ralph-pl0/pkg/regalloc"
	"github.com/raymyers/ralph-pl0/pkg/symbols"
)

// ErrParse is returned when the source has syntax or resolution errors
var ErrParse = errors.New("parsing failed")

// Options controls the back end
type Options struct {
	Registers int
	WordSize  int
}

// DefaultOptions returns eleven registers and 4-byte spill slots
func DefaultOptions() Options {
	return Options{Registers: 11, WordSize: regalloc.DefaultWordSize}
}

// Result holds the products of every stage
type Result struct {
	Tree           *ir.Tree
	Graph          *cfg.Graph
	Allocation     *regalloc.Allocation
	Diagnostics    []lower.Diagnostic
	LivenessPasses int
}

// Compile runs the whole pipeline on src
func Compile(src string, opts Options) (*Result, error) {
	res := &Result{}
	var err error

	logger.LogPhase("parse")
	if res.Tree, err = Parse(src); err != nil {
		return nil, failed("parse", err)
	}

	logger.LogPhase("lower")
	if res.Diagnostics, err = Lower(res.Tree, symbols.NewFresh()); err != nil {
		return res, failed("lower", err)
	}
	logger.LogPhaseComplete("lower", "diagnostics", len(res.Diagnostics))

	logger.LogPhase("layout")
	if err := Layout(res.Tree); err != nil {
		return res, failed("layout", err)
	}

	logger.LogPhase("cfg")
	if res.Graph, res.LivenessPasses, err = BuildCFG(res.Tree); err != nil {
		return res, failed("cfg", err)
	}
	logger.LogPhaseComplete("cfg", "blocks", len(res.Graph.Blocks), "passes", res.LivenessPasses)

	logger.LogPhase("regalloc")
	if res.Allocation, err = Allocate(res.Graph, opts); err != nil {
		return res, failed("regalloc", err)
	}
	logger.LogPhaseComplete("regalloc", "spilled", res.Allocation.NumSpill)
	return res, nil
}

func failed(phase string, err error) error {
	logger.Error("phase failed", "phase", phase, "error", err)
	return err
}

// Parse builds the IR tree of src. All parser errors are reported together.
func Parse(src string) (*ir.Tree, error) {
	p := parser.New(lexer.New(src))
	tree := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		return nil, errors.Wrapf(ErrParse, "%d errors: %s", len(errs), strings.Join(errs, "; "))
	}
	return tree, nil
}

// Lower rewrites every high-level node into instructions and flattens the
// statement lists. Nodes that cannot be lowered are returned as diagnostics.
func Lower(tree *ir.Tree, fresh *symbols.Fresh) ([]lower.Diagnostic, error) {
	l := lower.New(tree, fresh)
	if err := l.Run(); err != nil {
		return l.Diagnostics, errors.Wrap(err, "lowering")
	}
	if err := lower.Flatten(tree); err != nil {
		return l.Diagnostics, errors.Wrap(err, "flattening")
	}
	return l.Diagnostics, nil
}

// Layout places globals and procedure locals
func Layout(tree *ir.Tree) error {
	return errors.Wrap(datalayout.Perform(tree), "data layout")
}

// BuildCFG partitions the lowered tree into blocks and runs liveness to a
// fixed point, returning the number of passes
func BuildCFG(tree *ir.Tree) (*cfg.Graph, int, error) {
	g, err := cfg.Build(tree)
	if err != nil {
		return nil, 0, errors.Wrap(err, "building CFG")
	}
	return g, liveness.Analyze(g), nil
}

// Allocate assigns registers and then spill slots
func Allocate(g *cfg.Graph, opts Options) (*regalloc.Allocation, error) {
	a, err := regalloc.Allocate(g, opts.Registers)
	if err != nil {
		return nil, errors.Wrap(err, "register allocation")
	}
	if opts.WordSize > 0 {
		a.WordSize = opts.WordSize
	}
	if err := regalloc.PlaceSpills(g, a); err != nil {
		return nil, errors.Wrap(err, "placing spills")
	}
	return a, nil
}
