package buchi_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pncheck/pncheck/bdd"
	"github.com/pncheck/pncheck/buchi"
	"github.com/pncheck/pncheck/ir"
	"github.com/pncheck/pncheck/net"
	"github.com/pncheck/pncheck/stubborn"
)

func tokenNet(t *testing.T) *net.Net {
	b := net.NewBuilder()
	b.AddPlace("p", 1)
	b.AddTransition("t")
	b.AddInputArc("p", "t", false, 1)
	n, err := b.Compile()
	require.NoError(t, err)
	return n
}

// a two-state automaton accepting "p holds infinitely often": state 0 loops on !p, moves to
// accepting state 1 on p; state 1 always loops back to 0.
func pInfOftenAutomaton(t *testing.T, n *net.Net) *buchi.Automaton {
	pNode := ir.Place("p")
	require.NoError(t, ir.Analyze(pNode, n))
	return &buchi.Automaton{
		Props:   []*ir.Node{pNode},
		Initial: []int{0},
		States: []buchi.State{
			{Edges: []buchi.Edge{
				{To: 0, Guard: bdd.Not{X: bdd.Var(0)}},
				{To: 1, Guard: bdd.Var(0)},
			}},
			{Accepting: true, Edges: []buchi.Edge{
				{To: 0, Guard: bdd.Const(true)},
			}},
		},
	}
}

type view struct{ n *net.Net }

func (v view) Enabled(m net.Marking, t int) bool { return v.n.Enabled(m, t) }
func (v view) Deadlocked(m net.Marking) bool      { return v.n.Deadlocked(m) }

func TestNextAutomatonStatesFollowsGuards(t *testing.T) {
	n := tokenNet(t)
	a := pInfOftenAutomaton(t, n)

	val := a.Valuation(n.InitialMarking(), view{n})
	require.True(t, bool(val[0]))

	var reached []int
	a.NextAutomatonStates(0, val, func(next int) bool {
		reached = append(reached, next)
		return true
	})
	require.Equal(t, []int{1}, reached)
}

func TestHasInvariantSelfLoop(t *testing.T) {
	n := tokenNet(t)
	a := pInfOftenAutomaton(t, n)
	// State 1's unconditional edge leads to state 0, not back to 1, so it is not a self-loop.
	require.False(t, a.HasInvariantSelfLoop(1))
	require.False(t, a.HasInvariantSelfLoop(0))
}

func TestProductGeneratorYieldsDeadlockSelfLoop(t *testing.T) {
	n := tokenNet(t)
	a := pInfOftenAutomaton(t, n)
	g := buchi.NewGenerator(n, a, view{n})

	deadlocked := net.Marking{0}
	var got []buchi.Successor
	g.Next(deadlocked, 1, func(s buchi.Successor) bool {
		got = append(got, s)
		return true
	})
	require.Len(t, got, 1)
	require.True(t, got[0].SelfLoop)
	require.Equal(t, 0, got[0].AutomatonState)
}

func TestProductGeneratorFollowsRealTransitions(t *testing.T) {
	n := tokenNet(t)
	a := pInfOftenAutomaton(t, n)
	g := buchi.NewGenerator(n, a, view{n})

	var got []buchi.Successor
	g.Next(n.InitialMarking(), 0, func(s buchi.Successor) bool {
		got = append(got, s)
		return true
	})
	require.Len(t, got, 1)
	require.False(t, got[0].SelfLoop)
	require.Equal(t, net.Marking{0}, got[0].Marking)
	require.Equal(t, 0, got[0].AutomatonState) // deadlocked child has !p -> stays in state 0
}

// twoIndependentNet has two disjoint token->sink transitions, only one of which touches the
// place the automaton's guard reads ("p"); the other ("irrelevant") is a bystander a sound
// reduction may drop.
func twoIndependentNet(t *testing.T) *net.Net {
	b := net.NewBuilder()
	b.AddPlace("p", 1)
	b.AddPlace("q", 1)
	b.AddTransition("drainP")
	b.AddTransition("drainQ")
	b.AddInputArc("p", "drainP", false, 1)
	b.AddInputArc("q", "drainQ", false, 1)
	n, err := b.Compile()
	require.NoError(t, err)
	return n
}

func TestReducedGeneratorOnlyFiresVisibleTransitions(t *testing.T) {
	n := twoIndependentNet(t)
	a := pInfOftenAutomaton(t, n)
	pPlace := 0 // "p", declared first in twoIndependentNet
	reducer := stubborn.NewForPlaces(n, []int{pPlace}, view{n})
	g := buchi.NewReducedGenerator(n, a, view{n}, stubborn.NewVisible(reducer, []int{pPlace}))

	var got []buchi.Successor
	g.Next(n.InitialMarking(), 0, func(s buchi.Successor) bool {
		got = append(got, s)
		return true
	})

	require.Len(t, got, 1)
	require.Equal(t, "drainP", n.TransitionName(got[0].Transition))
}
