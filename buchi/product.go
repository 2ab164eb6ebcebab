package buchi

import (
	"github.com/pncheck/pncheck/net"
	"github.com/pncheck/pncheck/stubborn"
	"github.com/pncheck/pncheck/succ"
)

// Generator enumerates successors of a product state (marking, automaton state), lazily —
// successors are produced on demand rather than materializing the whole product up front, per
// original_source/include/LTL/SuccessorGeneration/ProductSuccessorGenerator.h's "lazy product"
// design, since the product state space is typically far larger than either factor alone.
type Generator struct {
	n    *net.Net
	a    *Automaton
	view interface {
		Enabled(m net.Marking, t int) bool
		Deadlocked(m net.Marking) bool
	}
	succ    *succ.Generator
	reducer *stubborn.VisibleReducer // nil disables the reduction; full enabled set is enumerated
}

// NewGenerator builds a product Generator over net n and automaton a that enumerates every
// enabled transition at each marking.
func NewGenerator(n *net.Net, a *Automaton, view interface {
	Enabled(m net.Marking, t int) bool
	Deadlocked(m net.Marking) bool
}) *Generator {
	return &Generator{n: n, a: a, view: view, succ: succ.New(n)}
}

// NewReducedGenerator builds a product Generator that narrows each marking's successors to the
// visible stubborn set reducer computes (spec.md §4.4/§4.7, component C6+C7 built on C5), falling
// back to the full enabled set for markings reducer can't soundly reduce (inhibitor arcs).
func NewReducedGenerator(n *net.Net, a *Automaton, view interface {
	Enabled(m net.Marking, t int) bool
	Deadlocked(m net.Marking) bool
}, reducer *stubborn.VisibleReducer) *Generator {
	return &Generator{n: n, a: a, view: view, succ: succ.New(n), reducer: reducer}
}

// Reduced reports whether g narrows successors through a stubborn-set reducer rather than
// enumerating every enabled transition. Callers use this to decide whether rule L2 (spec.md §4.4:
// "when closing a cycle in the search, all visible transitions are forced into S") can ever apply
// — with no reducer configured there is nothing to widen.
func (g *Generator) Reduced() bool { return g.reducer != nil }

// IsAccepting reports whether automaton state q is an accepting state of the product's automaton
// factor.
func (g *Generator) IsAccepting(q int) bool { return g.a.IsAcceptingState(q) }

// HasInvariantSelfLoop delegates to the automaton factor (see Automaton.HasInvariantSelfLoop).
func (g *Generator) HasInvariantSelfLoop(q int) bool { return g.a.HasInvariantSelfLoop(q) }

// Successor is one outgoing edge of the product: the marking and automaton state it leads to.
type Successor struct {
	Marking net.Marking
	AutomatonState int
	// Transition is the net transition fired to reach Marking, or -1 for a SelfLoop successor.
	Transition int
	// SelfLoop is true when this successor is the synthetic deadlock self-loop rather than a
	// real transition firing.
	SelfLoop bool
}

// Next enumerates every product successor of (parent, q), calling f for each. If parent is
// deadlocked in the net, it yields one successor (parent, q') per automaton edge out of q enabled
// under parent's valuation, each marked SelfLoop — the construction spec.md §4.6 specifies so deadlocked
// net states still admit an infinite suffix in the product.
func (g *Generator) Next(parent net.Marking, q int, f func(Successor) bool) {
	val := g.a.Valuation(parent, g.view)

	if g.n.Deadlocked(parent) {
		g.a.NextAutomatonStates(q, val, func(next int) bool {
			return f(Successor{Marking: parent, AutomatonState: next, Transition: -1, SelfLoop: true})
		})
		return
	}

	if g.reducer != nil {
		g.nextReduced(parent, q, f)
		return
	}
	g.nextFull(parent, q, f)
}

// NextFull enumerates every product successor of (parent, q) over the net's full enabled set,
// bypassing any stubborn-set reducer configured on g (it still yields the deadlock self-loop
// successor when parent is deadlocked, same as Next). This is the spooling contract spec.md §4.4
// calls generate_all(parent, sucinfo): when the search is about to close a cycle using a reduced
// successor set, that state must instead be re-expanded with the full set (rule L2), since the
// reduction is only proven sound for non-cycle-closing exploration — a reduced set can omit the
// very transition that closes the real accepting lasso.
func (g *Generator) NextFull(parent net.Marking, q int, f func(Successor) bool) {
	val := g.a.Valuation(parent, g.view)
	if g.n.Deadlocked(parent) {
		g.a.NextAutomatonStates(q, val, func(next int) bool {
			return f(Successor{Marking: parent, AutomatonState: next, Transition: -1, SelfLoop: true})
		})
		return
	}
	g.nextFull(parent, q, f)
}

func (g *Generator) nextFull(parent net.Marking, q int, f func(Successor) bool) {
	g.succ.Prepare(parent)
	out := make(net.Marking, g.n.NumPlaces())
	for g.succ.Next(out) {
		// Guards are evaluated against the successor marking's labeling (a Kripke-structure
		// convention: atomic propositions label states, and a product step synchronizes on the
		// label of the state being entered).
		childVal := g.a.Valuation(out, g.view)
		firedTransition := g.succ.LastTransition()
		cont := true
		g.a.NextAutomatonStates(q, childVal, func(next int) bool {
			m := out.Clone()
			cont = f(Successor{Marking: m, AutomatonState: next, Transition: firedTransition})
			return cont
		})
		if !cont {
			return
		}
		out = make(net.Marking, g.n.NumPlaces())
	}
}

// nextReduced is Next's body for the reduced (stubborn-set) path: it enumerates only the
// transitions g.reducer's closure selects for parent instead of every enabled transition. A
// reducer error (inhibitor arcs it can't reason about) falls back to the full enabled set for
// this one marking rather than failing the whole search, matching reach's fallback convention.
func (g *Generator) nextReduced(parent net.Marking, q int, f func(Successor) bool) {
	set, err := g.reducer.Prepare(parent)
	var transitions []int
	if err != nil {
		for t := 0; t < g.n.NumTransitions(); t++ {
			transitions = append(transitions, t)
		}
	} else {
		transitions = set.Slice()
	}

	for _, t := range transitions {
		if !g.n.Enabled(parent, t) {
			continue
		}
		child := g.n.Fire(parent, t)
		childVal := g.a.Valuation(child, g.view)
		cont := true
		g.a.NextAutomatonStates(q, childVal, func(next int) bool {
			cont = f(Successor{Marking: child.Clone(), AutomatonState: next, Transition: t})
			return cont
		})
		if !cont {
			return
		}
	}
}
