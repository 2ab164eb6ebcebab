// Package ltl implements the two LTL search algorithms over a Büchi product (spec.md §4.7,
// component C7): Nested Depth-First Search and Tarjan's SCC-based algorithm, both hunting for an
// accepting lasso — a finite stem followed by a cycle through at least one accepting product
// state.
//
// Both algorithms are grounded on original_source/src/LTL/Algorithm/NestedDepthFirstSearch.cpp
// and TarjanModelChecker.cpp; cancellation is checked once per outer-loop iteration, matching the
// teacher's cooperative single-threaded concurrency idiom (an atomic flag polled at loop heads,
// spec.md §5).
package ltl

import (
	"fmt"

	"github.com/pncheck/pncheck/buchi"
	"github.com/pncheck/pncheck/net"
)

// Step is one edge of a reconstructed path through the product: the marking/automaton-state
// reached and the transition fired to reach it (-1 for the initial step or a deadlock self-loop).
type Step struct {
	Marking        net.Marking
	AutomatonState int
	Transition     int
	SelfLoop       bool
}

// Lasso is a counter-example witness: a finite stem from the initial product state followed by a
// cycle (the loop) that revisits its first state and passes through at least one accepting state.
type Lasso struct {
	Stem []Step
	Loop []Step
}

func stateKey(m net.Marking, q int) string {
	return fmt.Sprintf("%d|%s", q, string(canonicalBytes(m)))
}

func canonicalBytes(m net.Marking) []byte {
	b := make([]byte, len(m)*8)
	for i, v := range m {
		for j := 0; j < 8; j++ {
			b[i*8+j] = byte(v >> (8 * j))
		}
	}
	return b
}

type node struct {
	step   Step
	parent *node
}

func replayStem(n *node) []Step {
	var steps []Step
	for cur := n; cur != nil; cur = cur.parent {
		steps = append(steps, cur.step)
	}
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	return steps
}

func initialStep(m net.Marking, q int) *node {
	return &node{step: Step{Marking: m, AutomatonState: q, Transition: -1}}
}

// Cancel reports whether the search should abort early (spec.md §5's cooperative cancellation).
type Cancel func() bool

func noCancel() bool { return false }

// collectSuccessors materializes every successor next yields for (m, q); it exists so a search can
// inspect the full successor list before deciding how to process it (specifically, to apply rule
// L2 — see Tarjan's closesCycle and NestedDFS's closesBlueCycle/closesRedCycle — which needs to know the whole reduced successor set before
// committing to it).
func collectSuccessors(next func(net.Marking, int, func(buchi.Successor) bool), m net.Marking, q int) []buchi.Successor {
	var out []buchi.Successor
	next(m, q, func(s buchi.Successor) bool {
		out = append(out, s)
		return true
	})
	return out
}
