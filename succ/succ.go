// Package succ implements the base successor generator (spec.md §4.3, component C4): given a
// parent marking, enumerate enabled transitions and the markings firing each one produces, in
// deterministic ascending transition-index order.
//
// The prepare/next/last_transition contract is grounded on
// original_source/include/PetriEngine/SuccessorGenerator.h; the internal cursor struct follows
// the teacher's "scoped, reset-per-call scratch state owned by the engine" shape used throughout
// inference/engine.go.
package succ

import "github.com/pncheck/pncheck/net"

// Generator enumerates the successors of a single parent marking. It is not safe for concurrent
// use; callers needing concurrency should use one Generator per goroutine.
type Generator struct {
	n      *net.Net
	parent net.Marking
	cursor int // next transition index to try
	last   int // transition index most recently returned by Next, -1 before the first call
}

// New creates a Generator bound to n. Call Prepare before the first Next.
func New(n *net.Net) *Generator {
	return &Generator{n: n, last: -1}
}

// Prepare resets the generator to enumerate the successors of parent, starting from transition 0.
func (g *Generator) Prepare(parent net.Marking) {
	g.parent = parent
	g.cursor = 0
	g.last = -1
}

// Next advances to the next enabled transition and writes the resulting marking into out,
// returning true if one was found. out must have the same length as the net has places; it is
// safe to reuse the same slice across calls (its previous contents are overwritten, not read).
func (g *Generator) Next(out net.Marking) bool {
	for g.cursor < g.n.NumTransitions() {
		t := g.cursor
		g.cursor++
		if !g.n.Enabled(g.parent, t) {
			continue
		}
		g.fire(t, out)
		g.last = t
		return true
	}
	return false
}

// LastTransition returns the index of the transition most recently returned by Next, or -1 if
// Next has not yet returned true since the last Prepare.
func (g *Generator) LastTransition() int { return g.last }

// CheckPreset reports whether transition t is enabled in the generator's current parent marking,
// without consuming or producing anything.
func (g *Generator) CheckPreset(t int) bool {
	return g.n.Enabled(g.parent, t)
}

// fire writes parent with t's preset consumed and postset produced into out.
func (g *Generator) fire(t int, out net.Marking) {
	copy(out, g.parent)
	g.consumePreset(t, out)
	g.producePostset(t, out)
}

func (g *Generator) consumePreset(t int, out net.Marking) {
	g.n.PreArcs(t, func(a *net.Arc) bool {
		if !a.Inhibitor {
			out[a.Place] -= a.Weight
		}
		return true
	})
}

func (g *Generator) producePostset(t int, out net.Marking) {
	g.n.PostArcs(t, func(a *net.Arc) bool {
		out[a.Place] += a.Weight
		return true
	})
}

// All enumerates every successor of parent as (transitionIndex, marking) pairs, calling f for
// each; it stops early if f returns false. All allocates a fresh marking per call, unlike the
// cursor-reuse Next/Prepare pair, and is meant for tests and small one-off explorations rather
// than hot search loops.
func All(n *net.Net, parent net.Marking, f func(transition int, m net.Marking) bool) {
	g := New(n)
	g.Prepare(parent)
	for {
		out := make(net.Marking, n.NumPlaces())
		if !g.Next(out) {
			return
		}
		if !f(g.LastTransition(), out) {
			return
		}
	}
}
