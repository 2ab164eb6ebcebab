// Package stubborn implements partial-order reduction via stubborn sets (spec.md §4.4, component
// C5): seed the "interesting" transitions a query's atomic predicates depend on, close that set
// under the classic preset/postset dependency rules to a fixed point, and hand the result back as
// a reduced transition set the successor generator enumerates instead of every enabled
// transition.
//
// The seed-then-closure-to-fixed-point shape is grounded on inference/engine.go's worklist
// propagation over an implication graph (ObserveUpstream/observeImplication keep processing until
// nothing new is discovered); the specific preset/postset/key-transition rules come from
// original_source/src/PetriEngine/Stubborn/InterestingTransitionVisitor.cpp and
// original_source/include/LTL/Stubborn/VisibleLTLStubbornSet.h.
package stubborn

import (
	"errors"

	"github.com/pncheck/pncheck/config"
	"github.com/pncheck/pncheck/ir"
	"github.com/pncheck/pncheck/net"
	"github.com/pncheck/pncheck/util/bitset"
)

// ErrUnsupportedInhibitor is returned by Prepare when the net's inhibitor arcs touch places the
// closure would need to reason about; the stubborn-set rules this package implements do not
// account for inhibitor arcs soundly, so callers fall back to exploring the full enabled set
// (the base succ package) for those markings, per the documented Open Question decision in
// DESIGN.md.
var ErrUnsupportedInhibitor = errors.New("stubborn: net uses inhibitor arcs, falling back to full successor generation")

// Reducer computes a stubborn transition set per marking for a fixed net and query.
type Reducer struct {
	n      *net.Net
	query  *ir.Node // propositional body the reduction must preserve reachability of
	view   ir.NetView
	places *bitset.Set // scratch: places referenced by the seed
	work   *bitset.Set // scratch: closure worklist

	fixedSeed bool // true when places was supplied directly (NewForPlaces) rather than scanned from query
}

// New builds a Reducer for n that preserves the reachability/invariance of query's truth value.
// query must be propositional (ir.Node.IsPropositional()); temporal sub-formulae are handled by
// the CTL/LTL engines one propositional atom at a time.
func New(n *net.Net, query *ir.Node, view ir.NetView) *Reducer {
	return &Reducer{
		n:      n,
		query:  query,
		view:   view,
		places: bitset.New(),
		work:   bitset.New(),
	}
}

// NewForPlaces builds a Reducer whose seed is a fixed list of places rather than one scanned from
// a query formula. stubborn.NewVisible uses this to seed the LTL reduction from every place any
// Büchi automaton edge guard reads, since that set has no single propositional ir.Node to scan.
func NewForPlaces(n *net.Net, places []int, view ir.NetView) *Reducer {
	return &Reducer{
		n:         n,
		view:      view,
		places:    bitset.New(places...),
		work:      bitset.New(),
		fixedSeed: true,
	}
}

// Prepare computes the stubborn set for parent, returning it with a nil error on success. It
// returns a nil set and ErrUnsupportedInhibitor when any transition that entered the closure has
// an inhibitor pre-arc; reach and buchi's reduced generator then use every transition for this
// marking.
func (r *Reducer) Prepare(parent net.Marking) (*bitset.Set, error) {
	if !r.fixedSeed {
		r.places.Reset()
		collectPlaces(r.query, r.places)
	}

	working := bitset.New()
	for _, p := range r.places.Slice() {
		r.seedFromPlace(parent, p, working)
	}
	if working.Len() == 0 {
		// The query references no place directly (e.g. a bare deadlock check): every transition
		// is potentially interesting, so no reduction is sound. Fall back to the full set.
		for t := 0; t < r.n.NumTransitions(); t++ {
			working.Add(t)
		}
		return working, nil
	}

	for round := 0; round < config.StubbornClosureRoundLimit; round++ {
		before := working.Len()
		if err := r.closeOnce(parent, working); err != nil {
			return nil, err
		}
		if working.Len() == before {
			break
		}
	}
	return r.ensureEnabledMember(parent, working), nil
}

// ensureEnabledMember implements spec.md §4.4's documented fallback: "if S fails to contain any
// enabled transition: S is reset to all enabled transitions." The closure rules above are built to
// avoid this (addConflicts/addKeyTransition always pull in an enabler for a disabled transition),
// but nothing proves it for every net shape, so the contract is checked explicitly rather than
// assumed — a stubborn set with no enabled member would otherwise look like a dead end to every
// caller (reach/buchi) even though the net has real successors elsewhere, which is unsound rather
// than merely a missed optimization.
func (r *Reducer) ensureEnabledMember(parent net.Marking, working *bitset.Set) *bitset.Set {
	for _, t := range working.Slice() {
		if r.n.Enabled(parent, t) {
			return working
		}
	}
	full := bitset.New()
	for t := 0; t < r.n.NumTransitions(); t++ {
		full.Add(t)
	}
	return full
}

// seedFromPlace adds the transitions directly relevant to place p's current token count: every
// transition in p's preset and postset is a candidate, since firing any of them can change
// whether p's bound predicates hold.
func (r *Reducer) seedFromPlace(_ net.Marking, p int, working *bitset.Set) {
	r.n.Preset(p, func(ref *net.PlaceArcRef) bool {
		working.Add(ref.Transition)
		return true
	})
	r.n.Postset(p, func(ref *net.PlaceArcRef) bool {
		working.Add(ref.Transition)
		return true
	})
}

// closeOnce expands working by one round of the stubborn-set dependency rules: for each
// transition currently in the set, if it is enabled add every transition in conflict with it
// (rule D1, "enabled transitions bring in their conflicts"); if it is disabled, add one key
// transition from its preset that can enable it (rule L, "a disabled transition brings in an
// enabler").
func (r *Reducer) closeOnce(parent net.Marking, working *bitset.Set) error {
	for _, t := range working.Slice() {
		if hasInhibitor(r.n, t) {
			return ErrUnsupportedInhibitor
		}
		if r.n.Enabled(parent, t) {
			r.addConflicts(t, working)
		} else {
			r.addKeyTransition(parent, t, working)
		}
	}
	return nil
}

// addConflicts adds every transition that shares a consumed place with t: firing one may disable
// the other, so both must stay in the stubborn set together.
func (r *Reducer) addConflicts(t int, working *bitset.Set) {
	r.n.PreArcs(t, func(a *net.Arc) bool {
		if a.Inhibitor {
			return true
		}
		r.n.Preset(a.Place, func(ref *net.PlaceArcRef) bool {
			working.Add(ref.Transition)
			return true
		})
		return true
	})
}

// addKeyTransition picks the first under-supplied place in t's preset and adds every transition
// that produces into it — one of them must fire before t can become enabled.
func (r *Reducer) addKeyTransition(parent net.Marking, t int, working *bitset.Set) {
	r.n.PreArcs(t, func(a *net.Arc) bool {
		if a.Inhibitor || parent[a.Place] >= a.Weight {
			return true
		}
		r.n.Postset(a.Place, func(ref *net.PlaceArcRef) bool {
			working.Add(ref.Transition)
			return true
		})
		return false // one key place is enough per rule L
	})
}

func hasInhibitor(n *net.Net, t int) bool {
	found := false
	n.PreArcs(t, func(a *net.Arc) bool {
		if a.Inhibitor {
			found = true
			return false
		}
		return true
	})
	return found
}

// collectPlaces walks a propositional node collecting every PlaceExpr/CompareConjunction place it
// references.
func collectPlaces(n *ir.Node, out *bitset.Set) {
	switch n.Kind {
	case ir.PlaceExpr:
		out.Add(n.PlaceIdx)
	case ir.CompareConjunction:
		for _, b := range n.Bounds {
			out.Add(b.Place)
		}
	case ir.UpperBound:
		for _, p := range n.Places {
			out.Add(p)
		}
	}
	for _, c := range n.Children {
		collectPlaces(c, out)
	}
}
