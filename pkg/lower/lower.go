// Package lower rewrites high-level IR nodes in place into statement lists of
// three-address instructions over fresh temporaries.
package lower

import (
	"log/slog"

	"github.com/pkg/errors"

	"github.com/raymyers/ralph-pl0/pkg/ir"
	"github.com/raymyers/ralph-pl0/pkg/logger"
	"github.com/raymyers/ralph-pl0/pkg/symbols"
)

// ErrUnimplemented marks a node that has no lowering rule, or whose operands
// could not be lowered
var ErrUnimplemented = errors.New("lowering not implemented")

// Outcome is the result of lowering one node
type Outcome int

const (
	// Lowered means the node was replaced by a statement list
	Lowered Outcome = iota
	// NotApplicable means the node needs no rewriting
	NotApplicable
	// Unimplemented means the node was left in place and a diagnostic is due
	Unimplemented
)

func (o Outcome) String() string {
	switch o {
	case Lowered:
		return "lowered"
	case NotApplicable:
		return "not applicable"
	case Unimplemented:
		return "unimplemented"
	}
	return "unknown"
}

// Diagnostic records a node that lowering skipped
type Diagnostic struct {
	Node   ir.NodeID
	Kind   string
	Reason string
}

// Lowerer rewrites the nodes of one tree
type Lowerer struct {
	tree        *ir.Tree
	fresh       *symbols.Fresh
	Diagnostics []Diagnostic
	log         *slog.Logger
}

// New creates a Lowerer. A nil fresh starts a new naming context.
func New(tree *ir.Tree, fresh *symbols.Fresh) *Lowerer {
	if fresh == nil {
		fresh = symbols.NewFresh()
	}
	return &Lowerer{
		tree:  tree,
		fresh: fresh,
		log:   logger.With("phase", "lower"),
	}
}

// Fresh returns the naming context used for temporaries and labels
func (l *Lowerer) Fresh() *symbols.Fresh {
	return l.fresh
}

// Run lowers every node reachable from the root, children before parents.
// Structural errors abort the pass; unimplemented nodes are recorded as
// diagnostics and left in place.
func (l *Lowerer) Run() error {
	for _, id := range l.tree.PostOrder(l.tree.Root) {
		if !l.tree.Attached(id) {
			continue
		}
		outcome, err := l.LowerNode(id)
		switch outcome {
		case Unimplemented:
			d := Diagnostic{Node: id, Kind: ir.KindName(l.tree.Payload(id)), Reason: err.Error()}
			l.Diagnostics = append(l.Diagnostics, d)
			l.log.Warn("node left unlowered", "node", id, "kind", d.Kind, "reason", d.Reason)
		case NotApplicable, Lowered:
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// LowerNode rewrites node id into a statement list and replaces it in its
// parent. For Unimplemented the returned error explains why; for the other
// outcomes a non-nil error is a structural defect.
func (l *Lowerer) LowerNode(id ir.NodeID) (Outcome, error) {
	n := l.tree.Node(id)
	if n == nil {
		return NotApplicable, errors.Errorf("node %d does not exist", id)
	}

	e := &emitter{l: l, scope: n.Scope}
	switch p := n.Payload.(type) {
	case *ir.Const:
		l.lowerConst(e, p)
	case *ir.Var:
		l.lowerVar(e, p)
	case *ir.ArrayElement:
		l.lowerArrayElement(e, p)
	case *ir.BinExpr:
		l.lowerBinExpr(e, p)
	case *ir.UnExpr:
		l.lowerUnExpr(e, p)
	case *ir.ReadExpr:
		e.emit(ir.NewRead(l.fresh.Temp(symbols.Int)))
	case *ir.CallExpr:
		if _, ok := l.tree.Payload(n.Parent).(*ir.CallStat); ok {
			return NotApplicable, nil
		}
		e.fail("call used as a value")
	case *ir.AssignStat:
		l.lowerAssign(e, p)
	case *ir.PrintStat:
		l.lowerPrint(e, p)
	case *ir.CallStat:
		l.lowerCall(e, p)
	case *ir.IfStat:
		l.lowerIf(e, p)
	case *ir.WhileStat:
		l.lowerWhile(e, p)
	case *ir.ForStat:
		l.lowerFor(e, p)
	default:
		return NotApplicable, nil
	}

	if e.unimplemented != "" {
		return Unimplemented, errors.Wrapf(ErrUnimplemented, "%s: %s", ir.KindName(n.Payload), e.unimplemented)
	}
	if e.err != nil {
		return Lowered, errors.Wrapf(e.err, "lowering node %d", id)
	}
	list := l.tree.Add(n.Scope, &ir.StatList{Children: e.ids})
	if err := l.tree.Replace(n.Parent, id, list); err != nil {
		return Lowered, err
	}
	for _, lb := range e.labels {
		if err := l.tree.SetLabel(lb.node, lb.label); err != nil {
			return Lowered, err
		}
	}
	return Lowered, nil
}

type pendingLabel struct {
	node  ir.NodeID
	label *symbols.Symbol
}

// emitter collects the statement list replacing one node. The first failure
// sticks and later emits are ignored.
type emitter struct {
	l             *Lowerer
	scope         *symbols.Table
	ids           []ir.NodeID
	labels        []pendingLabel
	err           error
	unimplemented string
}

func (e *emitter) failed() bool {
	return e.err != nil || e.unimplemented != ""
}

func (e *emitter) fail(reason string) {
	if !e.failed() {
		e.unimplemented = reason
	}
}

// emit appends a new instruction built by one of the ir constructors
func (e *emitter) emit(p ir.Payload, err error) {
	if e.failed() {
		return
	}
	if err != nil {
		e.err = err
		return
	}
	e.ids = append(e.ids, e.l.tree.Add(e.scope, p))
}

// adopt appends an already lowered child
func (e *emitter) adopt(id ir.NodeID) {
	if !e.failed() && id != ir.NoNode {
		e.ids = append(e.ids, id)
	}
}

// mark appends statement id labeled with label. Labels are bound once the
// replacement list is in place. A statement that already has a label gets a
// labeled nop in front of it instead.
func (e *emitter) mark(id ir.NodeID, label *symbols.Symbol) {
	if e.failed() {
		return
	}
	target := id
	if n := e.l.tree.Node(id); n == nil || n.Label != nil {
		target = e.l.tree.Add(e.scope, &ir.EmptyStat{})
		e.ids = append(e.ids, target)
	}
	e.labels = append(e.labels, pendingLabel{node: target, label: label})
	e.adopt(id)
}

// exit appends a fresh nop carrying label
func (e *emitter) exit(label *symbols.Symbol) {
	if e.failed() {
		return
	}
	nop := e.l.tree.Add(e.scope, &ir.EmptyStat{})
	e.ids = append(e.ids, nop)
	e.labels = append(e.labels, pendingLabel{node: nop, label: label})
}
