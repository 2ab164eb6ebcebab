package stubborn

import (
	"github.com/pncheck/pncheck/net"
	"github.com/pncheck/pncheck/util/bitset"
)

// VisibleReducer extends Reducer with the extra closure rule LTL model checking needs: any
// transition that can change the truth of a place referenced by the Büchi automaton's guards
// ("visible" places) must be treated as if the whole enabled set were interesting for it, per
// original_source/include/LTL/Stubborn/VisibleLTLStubbornSet.h's V' rule — otherwise the
// reduction could skip a transition whose firing changes which Büchi edge is enabled, unsoundly
// hiding an accepting cycle.
type VisibleReducer struct {
	*Reducer
	visible *bitset.Set // places referenced by the product automaton's edge guards
}

// NewVisible builds a VisibleReducer. visiblePlaces is every place index any Büchi edge guard in
// the product reads.
func NewVisible(r *Reducer, visiblePlaces []int) *VisibleReducer {
	v := bitset.New(visiblePlaces...)
	return &VisibleReducer{Reducer: r, visible: v}
}

// Prepare computes the LTL-safe stubborn set for parent: the propositional closure from Reducer,
// further checked against rule (V') — "if any enabled visible transition is in S, then S = all
// transitions" (spec.md §4.4, original_source/include/LTL/Stubborn/VisibleLTLStubbornSet.h). Unlike
// the plain Reducer's preset/postset closure, V' is not a fixed-point-widen-the-set rule: it is a
// go/no-go check. A partial stubborn set that contains an enabled transition touching a visible
// place could still omit some other transition that also touches that place and would enable a
// different Büchi edge; only firing every enabled transition touching a visible place (or none at
// all) keeps the reduction from silently hiding the automaton edge an accepting lasso depends on.
func (v *VisibleReducer) Prepare(parent net.Marking) (*bitset.Set, error) {
	working, err := v.Reducer.Prepare(parent)
	if err != nil {
		return nil, err
	}
	if v.widenOnEnabledVisible(parent, working) {
		return v.fullSet(), nil
	}
	return working, nil
}

// widenOnEnabledVisible reports whether rule (V') fires: working already contains a transition
// that is both enabled at parent and touches a visible place.
func (v *VisibleReducer) widenOnEnabledVisible(parent net.Marking, working *bitset.Set) bool {
	for _, t := range working.Slice() {
		if v.n.Enabled(parent, t) && v.touchesVisible(t) {
			return true
		}
	}
	return false
}

func (v *VisibleReducer) touchesVisible(t int) bool {
	touches := false
	v.n.PreArcs(t, func(a *net.Arc) bool {
		if v.visible.Has(a.Place) {
			touches = true
			return false
		}
		return true
	})
	if touches {
		return true
	}
	v.n.PostArcs(t, func(a *net.Arc) bool {
		if v.visible.Has(a.Place) {
			touches = true
			return false
		}
		return true
	})
	return touches
}

func (v *VisibleReducer) fullSet() *bitset.Set {
	full := bitset.New()
	for t := 0; t < v.n.NumTransitions(); t++ {
		full.Add(t)
	}
	return full
}
