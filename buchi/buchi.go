// Package buchi implements the Büchi product generator (spec.md §4.6, component C6): a small
// automaton with BDD-guarded edges over a shared atomic-proposition dictionary, product-state
// successor generation, and the fresh-marking self-loop a deadlocked net state takes so that
// finite maximal runs still have an infinite suffix for the LTL engines to search over.
//
// The automaton/state/edge shape and its "dictionary of guards, not one struct per automaton"
// design mirror original_source/include/LTL/SuccessorGeneration/ProductSuccessorGenerator.h;
// read-only lookup by key over a precomputed table is the same shape as annotation.Map's
// CheckXAnn methods.
package buchi

import (
	"github.com/pncheck/pncheck/bdd"
	"github.com/pncheck/pncheck/ir"
	"github.com/pncheck/pncheck/net"
)

// Edge is one transition of the automaton: taken when Guard evaluates to true under the current
// marking's proposition valuation.
type Edge struct {
	To    int
	Guard bdd.Formula
}

// State is one automaton state: its outgoing edges and whether it is an accepting state.
type State struct {
	Edges      []Edge
	Accepting  bool
}

// Automaton is a Büchi automaton over atomic propositions evaluated by Props.
type Automaton struct {
	States  []State
	Initial []int
	// Props are the propositional IR nodes backing each proposition index an edge Guard's
	// bdd.Var(i) refers to; evaluated once per marking to build that marking's Valuation. An
	// integer-valued node (e.g. a bare place) holds when it evaluates to non-zero.
	Props []*ir.Node
}

// Valuation evaluates a.Props against m, in the order Automaton.Props defines (index i of the
// returned Valuation is the truth value of a.Props[i] under m; an integer-valued prop is true
// when non-zero).
func (a *Automaton) Valuation(m net.Marking, view ir.NetView) bdd.MapValuation {
	out := make(bdd.MapValuation, len(a.Props))
	for i, p := range a.Props {
		switch p.Kind {
		case ir.IntLit, ir.PlaceExpr, ir.Sum, ir.Diff, ir.Product, ir.Negate:
			out[i] = ir.EvalInt(p, m) != 0
		default:
			out[i] = ir.Evaluate(p, m, view) == ir.RTrue
		}
	}
	return out
}

// ProductState is one state of the synchronous product of the net and the automaton: a marking
// id (opaque to this package — callers supply whatever identity their state store uses) paired
// with an automaton state index.
type ProductState struct {
	MarkingID uint64
	AutomatonState int
}

// IsAccepting reports whether s's automaton component is an accepting automaton state.
func (a *Automaton) IsAccepting(s ProductState) bool {
	return a.States[s.AutomatonState].Accepting
}

// IsAcceptingState reports whether automaton state q is accepting.
func (a *Automaton) IsAcceptingState(q int) bool {
	return a.States[q].Accepting
}

// HasInvariantSelfLoop reports whether automaton state q has a self-loop edge whose guard is the
// unconditional constant true — the "weak automaton" shortcut original_source's
// TarjanModelChecker.cpp exploits to retire an SCC without expanding it further.
func (a *Automaton) HasInvariantSelfLoop(q int) bool {
	for _, e := range a.States[q].Edges {
		if e.To != q {
			continue
		}
		if c, ok := e.Guard.(bdd.Const); ok && bool(c) {
			return true
		}
	}
	return false
}

// NextAutomatonStates calls f with every automaton state q can transition to under valuation v, in
// edge-table order, stopping early if f returns false.
func (a *Automaton) NextAutomatonStates(q int, v bdd.Valuation, f func(next int) bool) {
	for _, e := range a.States[q].Edges {
		if e.Guard.Eval(v) {
			if !f(e.To) {
				return
			}
		}
	}
}

// DeadlockSelfLoopMarking names the case where a deadlocked net marking loops back to itself in
// the product, so a finite maximal net run still has an infinite suffix for NestedDFS/Tarjan to
// search. Generator does not use this type: Next and NextFull detect a deadlocked marking via
// net.Net.Deadlocked and yield SelfLoop successors that carry the same marking.
type DeadlockSelfLoopMarking struct{}
