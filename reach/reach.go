// Package reach implements reachability-class verification (spec.md §4.1's is_reachability
// predicate, dispatched per spec.md §2's control-flow table: "reachability uses C3+C4(+C5)"): a
// plain breadth-first exploration of the state store via the base successor generator, optionally
// narrowed per marking by the stubborn-set reducer, stopping as soon as a witness marking is
// found (for EF ψ) or a counter-example is found (for AG ψ).
//
// The explore-until-found-or-exhausted loop is grounded on
// original_source/src/PetriEngine/Reachability/ReachabilitySearch.cpp; the queue-of-store-ids
// shape mirrors the teacher's worklist idiom used throughout inference/engine.go and reused here
// by ctl.Engine and the ltl searches.
package reach

import (
	"errors"

	"github.com/pncheck/pncheck/ir"
	"github.com/pncheck/pncheck/net"
	"github.com/pncheck/pncheck/store"
	"github.com/pncheck/pncheck/stubborn"
)

// Cancel reports whether the search should abort early (spec.md §5's cooperative cancellation).
type Cancel func() bool

func noCancel() bool { return false }

// Result is the outcome of a reachability-class query: a query of the form EF ψ / AG ψ over a
// propositional ψ (spec.md §4.1's is_reachability(depth)).
type Result struct {
	// Holds reports whether the query is satisfied: true for EF ψ iff a reachable marking with
	// ψ true was found; true for AG ψ iff no reachable marking with ψ false was found.
	Holds bool
	// Witness is the id of the marking that determined the result: for EF, the marking where ψ
	// first held; for AG, the counter-example marking where ψ first failed. Zero value (and
	// HasWitness false) when AG holds or EF fails by full exhaustion.
	Witness    store.ID
	HasWitness bool
	// Cancelled is true if the search stopped early because Cancel fired, in which case Holds
	// is meaningless and the caller should report UNKNOWN (spec.md §7).
	Cancelled bool
	// Overflowed is true if the k-bound was exceeded before the query could be decided.
	Overflowed bool
}

// ErrNotReachabilityClass is returned by Verify when formula is not of the EF ψ / AG ψ shape
// spec.md §4.1 requires (callers should route such queries to the CTL or LTL engines instead).
var ErrNotReachabilityClass = errors.New("reach: formula is not reachability-class (EF/AG over a propositional body)")

// Options controls how Verify explores the state space.
type Options struct {
	UseStubborn bool
	Cancel      Cancel
}

// Verify decides a reachability-class formula (EF ψ or AG ψ, ψ propositional) against n starting
// from its initial marking, interning every discovered marking into st (built by the caller with
// history enabled if a trace will later be requested via the trace package).
func Verify(n *net.Net, st *store.Store, view ir.NetView, formula *ir.Node, opts Options) (Result, error) {
	body, invariant, ok := ir.PrepareForReachability(formula)
	if !ok {
		return Result{}, ErrNotReachabilityClass
	}
	cancel := opts.Cancel
	if cancel == nil {
		cancel = noCancel
	}

	var reducer *stubborn.Reducer
	if opts.UseStubborn {
		reducer = stubborn.New(n, body, view)
	}

	m0 := n.InitialMarking()
	rootID, _, err := st.Intern(m0, 0, -1)
	if err != nil {
		if errors.Is(err, store.ErrBoundExceeded) {
			return Result{Overflowed: true}, nil
		}
		return Result{}, err
	}

	if res, decided := decideAt(body, invariant, rootID, st.Marking(rootID), view); decided {
		return res, nil
	}

	queue := []store.ID{rootID}

	for len(queue) > 0 {
		if cancel() {
			return Result{Cancelled: true}, nil
		}
		id := queue[0]
		queue = queue[1:]
		parent := st.Marking(id)

		transitions, _, err := selectTransitions(n, reducer, parent)
		if err != nil {
			return Result{}, err
		}

		for _, t := range transitions {
			if !n.Enabled(parent, t) {
				continue
			}
			child := n.Fire(parent, t)
			childID, isNew, err := st.Intern(child, id, t)
			if err != nil {
				if errors.Is(err, store.ErrBoundExceeded) {
					return Result{Overflowed: true}, nil
				}
				return Result{}, err
			}

			if res, decided := decideAt(body, invariant, childID, child, view); decided {
				return res, nil
			}
			if isNew {
				queue = append(queue, childID)
			}
		}
	}

	// Exhausted the reachable state space with no witness/counter-example: AG holds, EF fails.
	return Result{Holds: invariant}, nil
}

// decideAt evaluates body at (id, m): for AG ψ (invariant), a false body is a counter-example
// that immediately decides the query false; for EF ψ, a true body is a witness that immediately
// decides it true. Returns decided=false when neither short-circuit condition applies, meaning
// the caller should keep exploring.
func decideAt(body *ir.Node, invariant bool, id store.ID, m net.Marking, view ir.NetView) (Result, bool) {
	r := ir.Evaluate(body, m, view)
	switch {
	case invariant && r == ir.RFalse:
		return Result{Holds: false, Witness: id, HasWitness: true}, true
	case !invariant && r == ir.RTrue:
		return Result{Holds: true, Witness: id, HasWitness: true}, true
	default:
		return Result{}, false
	}
}

// selectTransitions returns the transitions to explore from parent: the stubborn-reduced set
// when reducer is non-nil and succeeds, or every transition index otherwise (fallback=true in
// the latter case, per spec.md §7's "unsupported construct ... falls back to the base
// generator").
func selectTransitions(n *net.Net, reducer *stubborn.Reducer, parent net.Marking) (transitions []int, fallback bool, err error) {
	if reducer == nil {
		return allTransitions(n), true, nil
	}
	set, serr := reducer.Prepare(parent)
	if serr != nil {
		if errors.Is(serr, stubborn.ErrUnsupportedInhibitor) {
			return allTransitions(n), true, nil
		}
		return nil, false, serr
	}
	return set.Slice(), false, nil
}

func allTransitions(n *net.Net) []int {
	ts := make([]int, n.NumTransitions())
	for i := range ts {
		ts[i] = i
	}
	return ts
}
