// Package ctl implements the on-the-fly CTL dependency-graph fixed-point algorithms (spec.md
// §4.7/§4.8, components C8/C9): an arena of (marking, formula-node) configurations connected by
// hyper-edges (conjunctive AND-edges) and negation edges, solved by a worklist propagation
// discipline.
//
// The worklist-of-pending-configurations-with-listener-notification shape is grounded directly on
// inference/engine.go's ObserveUpstream/observeImplication loop, which likewise keeps a frontier
// of sites whose assignment might still change and reprocesses exactly those until the frontier is
// empty; the tri-valued UNKNOWN/ZERO/ONE assignment it tracks per configuration reuses ir.Result
// rather than inventing a parallel enum, mirroring inference/inferred_value.go's
// DeterminedVal/UndeterminedVal distinction (a configuration with assignment RUnknown is
// "undetermined" and carries edges; once resolved to RTrue/RFalse it behaves like a
// DeterminedVal and only its listeners matter).
//
// Expansion rules per node kind follow original_source/include/CTL/DependencyGraph/
// BasicDependencyGraph.h. A deadlocked marking has no successors (spec.md §4.7): AX/AF give the
// deadlocked configuration a zero/empty-target conjunctive edge (vacuously true), EX/EF give it no
// extra successor edges at all, matching the deadlock rule spec.md §4.8 states rather than the
// buchi package's unrelated fresh-marking self-loop (that rule is specific to keeping the Büchi
// automaton progressing, §4.5/§4.6, and does not apply to CTL's fixpoint semantics). EG/AG are
// expanded via negation edges to AF/EF of the negated body, per spec.md §4.8, rather than as a
// direct self-referential conjunctive/disjunctive edge, which is unsound for a greatest fixpoint
// under this worklist's least-fixpoint-biased default.
package ctl

import (
	"github.com/pncheck/pncheck/ir"
	"github.com/pncheck/pncheck/net"
	"github.com/pncheck/pncheck/store"
	"github.com/pncheck/pncheck/succ"
)

// configKey identifies one configuration: a marking paired with the formula node being evaluated
// at it.
type configKey struct {
	marking store.ID
	node    *ir.Node
}

// edge is one hyper-edge out of a configuration: ONE iff every target in targets is ONE (an
// ordinary conjunctive edge), or — when negate is true — iff its single target is ZERO.
type edge struct {
	targets []configKey
	negate  bool
	dead    bool // set once any target resolves ZERO (conjunctive) or the negated target resolves ONE
}

type configuration struct {
	assignment ir.Result
	edges      []edge
	expanded   bool
}

// Engine holds the dependency-graph arena for one model-checking run: the net, the state store
// backing marking identities and successor interning, and the propositional evaluator view.
type Engine struct {
	n    *net.Net
	st   *store.Store
	view ir.NetView

	configs   map[configKey]*configuration
	listeners map[configKey][]configKey
	worklist  []configKey
	queued    map[configKey]bool

	// negated caches, per original EG/AG node, the synthesized AF(Not child)/EF(Not child) node
	// its negation edge targets, so every marking's expansion of the same EG/AG node shares one
	// node identity (configs are uniqued by (marking_id, node_id): reusing a fresh node pointer
	// per marking would defeat that interning).
	negated map[*ir.Node]*ir.Node
}

func newEngine(n *net.Net, st *store.Store, view ir.NetView) *Engine {
	return &Engine{
		n:         n,
		st:        st,
		view:      view,
		configs:   make(map[configKey]*configuration),
		listeners: make(map[configKey][]configKey),
		queued:    make(map[configKey]bool),
	}
}

func (e *Engine) get(k configKey) *configuration {
	c, ok := e.configs[k]
	if !ok {
		c = &configuration{assignment: ir.RUnknown}
		e.configs[k] = c
	}
	return c
}

func (e *Engine) enqueue(k configKey) {
	if e.queued[k] {
		return
	}
	e.queued[k] = true
	e.worklist = append(e.worklist, k)
}

// Local runs the classic Liu-Smolka worklist fixed point over the dependency graph rooted at
// (rootMarking, formula).
func Local(n *net.Net, st *store.Store, view ir.NetView, rootMarking store.ID, formula *ir.Node) ir.Result {
	return run(n, st, view, rootMarking, formula)
}

// CertainZero runs the same dependency-graph fixed point as Local. The two share one propagation
// engine here because the distinction spec.md draws between them — eager ZERO/ONE assignment
// propagation versus a more conservative local search — only changes traversal order and
// memory/parallelism tradeoffs, not the set of configurations visited or the final assignment;
// DESIGN.md records the grounds for treating them as one solver with two entry points rather than
// duplicating the worklist machinery.
func CertainZero(n *net.Net, st *store.Store, view ir.NetView, rootMarking store.ID, formula *ir.Node) ir.Result {
	return run(n, st, view, rootMarking, formula)
}

func run(n *net.Net, st *store.Store, view ir.NetView, rootMarking store.ID, formula *ir.Node) ir.Result {
	res, _, _ := runEngine(n, st, view, rootMarking, formula)
	return res
}

func runEngine(n *net.Net, st *store.Store, view ir.NetView, rootMarking store.ID, formula *ir.Node) (ir.Result, *Engine, configKey) {
	e := newEngine(n, st, view)
	root := configKey{marking: rootMarking, node: formula}
	e.enqueue(root)

	for len(e.worklist) > 0 {
		k := e.worklist[0]
		e.worklist = e.worklist[1:]
		e.queued[k] = false
		e.process(k)
	}
	return e.configs[root].assignment, e, root
}

// Witness runs the same dependency-graph fixed point as CertainZero/Local and additionally
// reports, when the result admits a single distinguished witnessing marking, the id of that
// marking in st. This covers exactly the cases spec.md §4.8's "trace reconstruction ... follows
// realized hyper-edges top-down" names: a true EF/EU (the marking where the until-target/EF body
// first holds) and, symmetrically, a false AG/AU (the marking where the invariant/until-target
// first fails). Other formula shapes (conjunctions, EX/AX, bare propositions, ...) have no single
// witnessing marking in this sense and ok is false; callers fall back to reporting the bare
// verdict with no trace, same as before this existed.
func Witness(n *net.Net, st *store.Store, view ir.NetView, rootMarking store.ID, formula *ir.Node) (res ir.Result, witness store.ID, ok bool) {
	res, e, root := runEngine(n, st, view, rootMarking, formula)
	id, found := e.witnessChain(root)
	return res, id, found
}

// witnessChain walks the realized hyper-edges of an EF/EU (assignment ONE) or AG/AU (assignment
// ZERO) configuration down to the marking that directly witnesses it, per spec.md §4.8. It
// returns ok=false for any other node kind or assignment, rather than guessing.
func (e *Engine) witnessChain(k configKey) (store.ID, bool) {
	c := e.configs[k]
	if c == nil || len(c.edges) == 0 {
		return 0, false
	}
	switch k.node.Kind {
	case ir.EF, ir.EU:
		if c.assignment != ir.RTrue {
			return 0, false
		}
		// edges[0] is the direct edge to the body/until-target at this marking; a single target
		// resolved ONE means the witness is this marking itself.
		if e.get(c.edges[0].targets[0]).assignment == ir.RTrue {
			return k.marking, true
		}
		for _, ed := range c.edges[1:] {
			if !e.allOne(ed.targets) {
				continue
			}
			if id, ok := e.witnessChain(ed.targets[len(ed.targets)-1]); ok {
				return id, true
			}
		}
		return 0, false

	case ir.AG:
		if c.assignment != ir.RFalse {
			return 0, false
		}
		// AG is a single negation edge to EF(Not child) (see negatedBody); AG resolves false
		// exactly when that EF config resolves true, so its witness chain is AG's witness chain too.
		return e.witnessChain(c.edges[0].targets[0])

	case ir.AU:
		if c.assignment != ir.RFalse {
			return 0, false
		}
		ed := c.edges[len(c.edges)-1] // the single conjunctive edge {(M,body)} ++ {(s, self)...}
		if e.get(ed.targets[0]).assignment == ir.RFalse {
			return k.marking, true
		}
		for _, t := range ed.targets[1:] {
			if e.get(t).assignment == ir.RFalse {
				if id, ok := e.witnessChain(t); ok {
					return id, true
				}
			}
		}
		return 0, false

	default:
		return 0, false
	}
}

func (e *Engine) allOne(targets []configKey) bool {
	for _, t := range targets {
		if e.get(t).assignment != ir.RTrue {
			return false
		}
	}
	return true
}

func (e *Engine) process(k configKey) {
	c := e.get(k)
	if c.assignment != ir.RUnknown {
		return
	}
	if !c.expanded {
		e.expand(k, c)
		c.expanded = true
	}
	e.evaluate(k, c)
}

func (e *Engine) evaluate(k configKey, c *configuration) {
	if c.assignment != ir.RUnknown {
		return
	}
	if len(c.edges) == 0 {
		e.resolve(k, c, ir.RFalse)
		return
	}

	liveRemaining := false
	for i := range c.edges {
		ed := &c.edges[i]
		if ed.dead {
			continue
		}
		if ed.negate {
			tgt := e.get(ed.targets[0])
			switch tgt.assignment {
			case ir.RTrue:
				ed.dead = true
				continue
			case ir.RFalse:
				e.resolve(k, c, ir.RTrue)
				return
			default:
				liveRemaining = true
				e.listen(ed.targets[0], k)
				e.enqueue(ed.targets[0])
			}
			continue
		}

		dead := false
		allOne := true
		for _, t := range ed.targets {
			tc := e.get(t)
			if tc.assignment == ir.RFalse {
				dead = true
				break
			}
			if tc.assignment != ir.RTrue {
				allOne = false
			}
		}
		if dead {
			ed.dead = true
			continue
		}
		if allOne {
			e.resolve(k, c, ir.RTrue)
			return
		}
		liveRemaining = true
		for _, t := range ed.targets {
			if e.get(t).assignment == ir.RUnknown {
				e.listen(t, k)
				e.enqueue(t)
			}
		}
	}
	if !liveRemaining {
		e.resolve(k, c, ir.RFalse)
	}
}

func (e *Engine) listen(target, dependent configKey) {
	for _, l := range e.listeners[target] {
		if l == dependent {
			return
		}
	}
	e.listeners[target] = append(e.listeners[target], dependent)
}

func (e *Engine) resolve(k configKey, c *configuration, val ir.Result) {
	c.assignment = val
	deps := e.listeners[k]
	delete(e.listeners, k)
	for _, dep := range deps {
		e.enqueue(dep)
	}
}

// expand populates c.edges for configuration k's formula node, per the dependency-graph
// expansion rules.
func (e *Engine) expand(k configKey, c *configuration) {
	n := k.node

	switch n.Kind {
	case ir.BoolLit, ir.Deadlock, ir.Fireable, ir.Cmp, ir.CompareConjunction, ir.UpperBound:
		m := e.st.Marking(k.marking)
		res := ir.Evaluate(n, m, e.view)
		if res == ir.RUnknown {
			// A structural predicate (upper_bound) not already resolved by Simplify's LP oracle
			// cannot be decided here; default conservatively to false rather than block the
			// whole graph on it.
			res = ir.RFalse
		}
		e.resolve(k, c, res)

	case ir.And:
		var targets []configKey
		for _, child := range n.Children {
			targets = append(targets, configKey{marking: k.marking, node: child})
		}
		c.edges = []edge{{targets: targets}}

	case ir.Or:
		for _, child := range n.Children {
			c.edges = append(c.edges, edge{targets: []configKey{{marking: k.marking, node: child}}})
		}

	case ir.Not:
		c.edges = []edge{{targets: []configKey{{marking: k.marking, node: n.Children[0]}}, negate: true}}

	case ir.EX:
		for _, s := range e.successors(k.marking) {
			c.edges = append(c.edges, edge{targets: []configKey{{marking: s, node: n.Children[0]}}})
		}

	case ir.AX:
		var targets []configKey
		for _, s := range e.successors(k.marking) {
			targets = append(targets, configKey{marking: s, node: n.Children[0]})
		}
		c.edges = []edge{{targets: targets}}

	case ir.EF:
		c.edges = append(c.edges, edge{targets: []configKey{{marking: k.marking, node: n.Children[0]}}})
		for _, s := range e.successors(k.marking) {
			c.edges = append(c.edges, edge{targets: []configKey{{marking: s, node: n}}})
		}

	case ir.AF:
		c.edges = append(c.edges, edge{targets: []configKey{{marking: k.marking, node: n.Children[0]}}})
		var targets []configKey
		for _, s := range e.successors(k.marking) {
			targets = append(targets, configKey{marking: s, node: n})
		}
		c.edges = append(c.edges, edge{targets: targets})

	case ir.EG, ir.AG:
		// Greatest fixpoints: EG phi == Not(AF(Not phi)), AG phi == Not(EF(Not phi)), each realized
		// as a single negation edge rather than a direct self-referential conjunctive/disjunctive
		// edge (spec.md §4.8) so the graph's default when no edge can be falsified is "true", the
		// correct default for a greatest fixpoint, instead of this worklist's least-fixpoint "false".
		inner := e.negatedBody(n)
		c.edges = []edge{{targets: []configKey{{marking: k.marking, node: inner}}, negate: true}}

	case ir.EU:
		c.edges = append(c.edges, edge{targets: []configKey{{marking: k.marking, node: n.Children[1]}}})
		for _, s := range e.successors(k.marking) {
			c.edges = append(c.edges, edge{targets: []configKey{
				{marking: k.marking, node: n.Children[0]},
				{marking: s, node: n},
			}})
		}

	case ir.AU:
		c.edges = append(c.edges, edge{targets: []configKey{{marking: k.marking, node: n.Children[1]}}})
		targets := []configKey{{marking: k.marking, node: n.Children[0]}}
		for _, s := range e.successors(k.marking) {
			targets = append(targets, configKey{marking: s, node: n})
		}
		c.edges = append(c.edges, edge{targets: targets})

	default:
		c.edges = nil
	}
}

// successors returns the ids of every marking reachable in one firing from id, interning newly
// discovered markings into the store (with parent/transition history, if the store was built
// with history enabled). A deadlocked marking has no successors (spec.md §4.7): callers build the
// zero/empty-target vacuous-truth edges AX/AF require, and the plain absence-of-edges false
// default EX/EF already fall back to, directly from an empty slice here.
func (e *Engine) successors(id store.ID) []store.ID {
	m := e.st.Marking(id)
	if e.n.Deadlocked(m) {
		return nil
	}
	var ids []store.ID
	succ.All(e.n, m, func(t int, child net.Marking) bool {
		cid, _, err := e.st.Intern(child, id, t)
		if err == nil {
			ids = append(ids, cid)
		}
		return true
	})
	return ids
}

// negatedBody returns the synthesized AF(Not child)/EF(Not child) node an EG/AG negation edge
// targets, constructing and caching it once per distinct EG/AG node so every marking's expansion
// of that node shares one node identity.
func (e *Engine) negatedBody(n *ir.Node) *ir.Node {
	if e.negated == nil {
		e.negated = make(map[*ir.Node]*ir.Node)
	}
	if inner, ok := e.negated[n]; ok {
		return inner
	}
	var inner *ir.Node
	switch n.Kind {
	case ir.EG:
		inner = ir.Unary(ir.AF, ir.Unary(ir.Not, n.Children[0]))
	case ir.AG:
		inner = ir.Unary(ir.EF, ir.Unary(ir.Not, n.Children[0]))
	default:
		panic("ctl: negatedBody called on non-EG/AG node")
	}
	e.negated[n] = inner
	return inner
}
