package ltl

import (
	"github.com/pncheck/pncheck/buchi"
	"github.com/pncheck/pncheck/net"
)

// tarjanInfo is the per-state bookkeeping Tarjan's algorithm needs: DFS discovery index, current
// lowlink, and whether the state is still on the algorithm's stack.
type tarjanInfo struct {
	index   int
	low     int
	onStack bool
	n       *node
}

type tarjan struct {
	gen    *buchi.Generator
	cancel Cancel

	nextIndex int
	info      map[string]*tarjanInfo
	stack     []string

	found *Lasso
}

// Tarjan searches the product of gen for a non-trivial strongly connected component (an SCC with
// more than one state, or a single state with a self-loop) that contains at least one accepting
// product state — the standard reduction of LTL model checking to SCC search, grounded on
// original_source/src/LTL/Algorithm/TarjanModelChecker.cpp's _dstack/_cstack/_chash bookkeeping
// (here folded into a single per-state info record keyed by canonical state string, rather than
// three parallel arrays, since this package does not need TarjanModelChecker.cpp's low-level
// index-array optimizations).
func Tarjan(gen *buchi.Generator, initials []struct {
	Marking        net.Marking
	AutomatonState int
}, cancel Cancel) (bool, *Lasso) {
	if cancel == nil {
		cancel = noCancel
	}
	t := &tarjan{
		gen:    gen,
		cancel: cancel,
		info:   make(map[string]*tarjanInfo),
	}
	for _, init := range initials {
		if cancel() {
			return false, nil
		}
		key := stateKey(init.Marking, init.AutomatonState)
		if t.info[key] != nil {
			continue
		}
		n := initialStep(init.Marking, init.AutomatonState)
		if t.strongConnect(key, n) {
			return true, t.found
		}
	}
	return false, nil
}

func (t *tarjan) strongConnect(key string, n *node) bool {
	if t.cancel() {
		return false
	}
	self := &tarjanInfo{index: t.nextIndex, low: t.nextIndex, onStack: true, n: n}
	t.info[key] = self
	t.nextIndex++
	t.stack = append(t.stack, key)

	successors := collectSuccessors(t.gen.Next, n.step.Marking, n.step.AutomatonState)
	if t.gen.Reduced() && t.closesCycle(key, successors) {
		// Rule L2 (spec.md §4.4): the reduced successor set is about to close a cycle (a self-loop
		// or a back edge onto the search stack) — re-expand this state with the full enabled set,
		// since the reduction is sound only for exploration that does not close the cycle itself.
		successors = collectSuccessors(t.gen.NextFull, n.step.Marking, n.step.AutomatonState)
	}

	selfLoop := false
	hit := false
	for _, succ := range successors {
		if t.cancel() {
			return false
		}
		childKey := stateKey(succ.Marking, succ.AutomatonState)
		if childKey == key {
			selfLoop = true
			continue
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
		if childInfo := t.info[childKey]; childInfo == nil {
			if t.strongConnect(childKey, child) {
				hit = true
				break
			}
			if t.info[childKey].low < self.low {
				self.low = t.info[childKey].low
			}
		} else if childInfo.onStack {
			if childInfo.index < self.low {
				self.low = childInfo.index
			}
		}
	}
	if hit {
		return true
	}
	if t.cancel() {
		return false
	}

	if self.low != self.index {
		return false // not the root of its SCC yet
	}

	// Pop the SCC rooted at key.
	var members []string
	for {
		top := t.stack[len(t.stack)-1]
		t.stack = t.stack[:len(t.stack)-1]
		t.info[top].onStack = false
		members = append(members, top)
		if top == key {
			break
		}
	}

	nontrivial := len(members) > 1 || selfLoop
	if !nontrivial {
		return false
	}
	if t.sccHasAccepting(members) {
		t.found = &Lasso{Stem: replayStem(n), Loop: []Step{n.step}}
		return true
	}
	return false
}

func (t *tarjan) sccHasAccepting(members []string) bool {
	for _, k := range members {
		if t.gen.IsAccepting(t.info[k].n.step.AutomatonState) {
			return true
		}
	}
	return false
}

// closesCycle reports whether any successor in successors would close a cycle from the state
// currently being expanded (key): a self-loop back to key, or a back edge onto a state still on
// the Tarjan stack.
func (t *tarjan) closesCycle(key string, successors []buchi.Successor) bool {
	for _, succ := range successors {
		childKey := stateKey(succ.Marking, succ.AutomatonState)
		if childKey == key {
			return true
		}
		if info := t.info[childKey]; info != nil && info.onStack {
			return true
		}
	}
	return false
}
