// Package liveness computes live-in and live-out sets of the blocks of a
// control flow graph by iterating the backward dataflow equations
//
//	live_out(B) = union of live_in(S) over successors S
//	live_in(B)  = gen(B) | (live_out(B) - kill(B))
//
// to a fixed point. Blocks without successors exit their function; every
// program variable is live there.
package liveness

import (
	"github.com/pkg/errors"

	"github.com/raymyers/ralph-pl0/pkg/cfg"
	"github.com/raymyers/ralph-pl0/pkg/logger"
	"github.com/raymyers/ralph-pl0/pkg/symbols"
)

// ErrNotFixedPoint is returned by Check when a block violates an equation
var ErrNotFixedPoint = errors.New("liveness not at fixed point")

// Analyze computes liveness visiting blocks in graph order and returns the
// number of passes
func Analyze(g *cfg.Graph) int {
	return AnalyzeOrder(g, g.Blocks)
}

// AnalyzeOrder computes liveness visiting blocks in the given order. Sets
// only grow, so a pass that changes no set size ends the iteration.
func AnalyzeOrder(g *cfg.Graph, order []*cfg.Block) int {
	globals := g.Globals()
	passes := 0
	for {
		passes++
		changed := false
		for _, b := range order {
			if update(b, globals) {
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	logger.Debug("liveness converged", "blocks", len(order), "passes", passes)
	return passes
}

func update(b *cfg.Block, globals symbols.Set) bool {
	in, out := b.LiveIn.Len(), b.LiveOut.Len()
	b.LiveOut = liveOut(b, globals)
	b.LiveIn = b.Gen.Union(b.LiveOut.Minus(b.Kill))
	return in != b.LiveIn.Len() || out != b.LiveOut.Len()
}

func liveOut(b *cfg.Block, globals symbols.Set) symbols.Set {
	succs := b.Succs()
	if len(succs) == 0 {
		return globals.Copy()
	}
	out := symbols.NewSet()
	for _, s := range succs {
		out = out.Union(s.LiveIn)
	}
	return out
}

// Reset clears the live sets of every block
func Reset(g *cfg.Graph) {
	for _, b := range g.Blocks {
		b.LiveIn = symbols.NewSet()
		b.LiveOut = symbols.NewSet()
	}
}

// Check verifies that both dataflow equations hold for every block
func Check(g *cfg.Graph) error {
	globals := g.Globals()
	for _, b := range g.Blocks {
		if out := liveOut(b, globals); !out.Equal(b.LiveOut) {
			return errors.Wrapf(ErrNotFixedPoint, "BB%d live_out %s, want %s", b.ID, b.LiveOut, out)
		}
		if in := b.Gen.Union(b.LiveOut.Minus(b.Kill)); !in.Equal(b.LiveIn) {
			return errors.Wrapf(ErrNotFixedPoint, "BB%d live_in %s, want %s", b.ID, b.LiveIn, in)
		}
	}
	return nil
}
