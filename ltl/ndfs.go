package ltl

import (
	"github.com/pncheck/pncheck/buchi"
	"github.com/pncheck/pncheck/net"
)

// visitFlag tracks which of the two DFS passes (MARKER1/MARKER2 in the classic Courcoubetis et
// al. formulation, renamed here for clarity) have touched a product state.
type visitFlag uint8

const (
	unvisited visitFlag = iota
	onBlueStack
	blueDone
)

// ndfs holds the mutable search state for one NestedDFS run.
type ndfs struct {
	gen    *buchi.Generator
	cancel Cancel

	blue map[string]visitFlag
	red  map[string]bool // globally shared across every nested (red) search, the standard SPIN optimization

	found *Lasso
}

// NestedDFS searches the product of gen for an accepting lasso reachable from any of the initial
// (marking, automatonState) pairs. It returns (true, lasso) if one is found, (false, nil) if the
// search completes without finding one, and (false, nil) if cancel fires first.
func NestedDFS(gen *buchi.Generator, initials []struct {
	Marking        net.Marking
	AutomatonState int
}, cancel Cancel) (bool, *Lasso) {
	if cancel == nil {
		cancel = noCancel
	}
	s := &ndfs{
		gen:    gen,
		cancel: cancel,
		blue:   make(map[string]visitFlag),
		red:    make(map[string]bool),
	}
	for _, init := range initials {
		if cancel() {
			return false, nil
		}
		n := initialStep(init.Marking, init.AutomatonState)
		if s.dfsBlue(n) {
			return true, s.found
		}
	}
	return false, nil
}

// dfsBlue is the outer DFS; on backtracking from an accepting state it launches dfsRed to look
// for a cycle back through that state.
func (s *ndfs) dfsBlue(n *node) bool {
	if s.cancel() {
		return false
	}
	key := stateKey(n.step.Marking, n.step.AutomatonState)
	if s.blue[key] != unvisited {
		return false
	}
	s.blue[key] = onBlueStack

	successors := collectSuccessors(s.gen.Next, n.step.Marking, n.step.AutomatonState)
	if s.gen.Reduced() && s.closesBlueCycle(successors) {
		// Rule L2 (spec.md §4.4): the reduced set would close a cycle back onto the blue stack —
		// re-expand with the full enabled set so the reduction cannot hide the real accepting cycle.
		successors = collectSuccessors(s.gen.NextFull, n.step.Marking, n.step.AutomatonState)
	}

	var hit bool
	for _, succ := range successors {
		if s.cancel() {
			return false
		}
		child := &node{
			step: Step{
				Marking:        succ.Marking,
				AutomatonState: succ.AutomatonState,
				Transition:     succ.Transition,
				SelfLoop:       succ.SelfLoop,
			},
			parent: n,
		}
		if s.dfsBlue(child) {
			hit = true
			break
		}
	}
	if hit {
		return true
	}

	s.blue[key] = blueDone

	if s.gen.IsAccepting(n.step.AutomatonState) {
		if s.dfsRed(n, n) {
			return true
		}
	}
	return false
}

// dfsRed searches for a path from n back to seed through the red (already-explored) subgraph,
// only entering states not yet explored by a previous red search.
func (s *ndfs) dfsRed(n *node, seed *node) bool {
	if s.cancel() {
		return false
	}

	successors := collectSuccessors(s.gen.Next, n.step.Marking, n.step.AutomatonState)
	if s.gen.Reduced() && closesRedCycle(successors, seed) {
		// Rule L2 (spec.md §4.4): the reduced set would close the cycle back to the seed state —
		// re-expand with the full enabled set so the reduction cannot hide the real accepting cycle.
		successors = collectSuccessors(s.gen.NextFull, n.step.Marking, n.step.AutomatonState)
	}

	var hit bool
	for _, succ := range successors {
		if s.cancel() {
			return false
		}
		if sameState(succ, seed.step) {
			// n's path runs through seed, so every step after seed's own prefix is on the cycle.
			path := replayStem(n)
			stemLen := len(replayStem(seed))
			loop := append(path[stemLen:], Step{
				Marking:        succ.Marking,
				AutomatonState: succ.AutomatonState,
				Transition:     succ.Transition,
				SelfLoop:       succ.SelfLoop,
			})
			s.found = &Lasso{Stem: path[:stemLen], Loop: loop}
			hit = true
			break
		}
		key := stateKey(succ.Marking, succ.AutomatonState)
		if s.red[key] {
			continue
		}
		s.red[key] = true
		child := &node{
			step: Step{
				Marking:        succ.Marking,
				AutomatonState: succ.AutomatonState,
				Transition:     succ.Transition,
				SelfLoop:       succ.SelfLoop,
			},
			parent: n,
		}
		if s.dfsRed(child, seed) {
			hit = true
			break
		}
	}
	return hit
}

// closesBlueCycle reports whether any successor is already on the blue DFS stack — the point at
// which the reduced set would close a cycle in the outer search.
func (s *ndfs) closesBlueCycle(successors []buchi.Successor) bool {
	for _, succ := range successors {
		if s.blue[stateKey(succ.Marking, succ.AutomatonState)] == onBlueStack {
			return true
		}
	}
	return false
}

// closesRedCycle reports whether any successor re-reaches the red search's seed state — the point
// at which the reduced set would close the accepting cycle nested DFS is looking for.
func closesRedCycle(successors []buchi.Successor, seed *node) bool {
	for _, succ := range successors {
		if sameState(succ, seed.step) {
			return true
		}
	}
	return false
}

func sameState(succ buchi.Successor, step Step) bool {
	return succ.AutomatonState == step.AutomatonState && succ.Marking.Equal(step.Marking)
}
