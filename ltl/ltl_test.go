package ltl_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pncheck/pncheck/bdd"
	"github.com/pncheck/pncheck/buchi"
	"github.com/pncheck/pncheck/ir"
	"github.com/pncheck/pncheck/ltl"
	"github.com/pncheck/pncheck/net"
)

type view struct{ n *net.Net }

func (v view) Enabled(m net.Marking, t int) bool { return v.n.Enabled(m, t) }
func (v view) Deadlocked(m net.Marking) bool      { return v.n.Deadlocked(m) }

// a single-place net with one self-looping transition: p always has a token, t fires forever.
func selfLoopingNet(t *testing.T) *net.Net {
	b := net.NewBuilder()
	b.AddPlace("p", 1)
	b.AddTransition("t")
	b.AddInputArc("p", "t", false, 1)
	b.AddOutputArc("t", "p", 1)
	n, err := b.Compile()
	require.NoError(t, err)
	return n
}

// automaton accepting GF(p): single accepting state that self-loops on p.
func gfPAutomaton(t *testing.T, n *net.Net) *buchi.Automaton {
	pNode := ir.Place("p")
	require.NoError(t, ir.Analyze(pNode, n))
	return &buchi.Automaton{
		Props:   []*ir.Node{pNode},
		Initial: []int{0},
		States: []buchi.State{
			{Accepting: true, Edges: []buchi.Edge{{To: 0, Guard: bdd.Var(0)}}},
		},
	}
}

type initialState = struct {
	Marking        net.Marking
	AutomatonState int
}

func TestNestedDFSFindsAcceptingLasso(t *testing.T) {
	n := selfLoopingNet(t)
	a := gfPAutomaton(t, n)
	gen := buchi.NewGenerator(n, a, view{n})

	found, lasso := ltl.NestedDFS(gen, []initialState{{Marking: n.InitialMarking(), AutomatonState: 0}}, nil)
	require.True(t, found)
	require.NotNil(t, lasso)
	require.NotEmpty(t, lasso.Loop)
}

func TestTarjanFindsAcceptingSCC(t *testing.T) {
	n := selfLoopingNet(t)
	a := gfPAutomaton(t, n)
	gen := buchi.NewGenerator(n, a, view{n})

	found, lasso := ltl.Tarjan(gen, []initialState{{Marking: n.InitialMarking(), AutomatonState: 0}}, nil)
	require.True(t, found)
	require.NotNil(t, lasso)
}

func TestNestedDFSCancellationStopsSearch(t *testing.T) {
	n := selfLoopingNet(t)
	a := gfPAutomaton(t, n)
	gen := buchi.NewGenerator(n, a, view{n})

	calls := 0
	cancel := func() bool {
		calls++
		return calls > 1
	}
	found, _ := ltl.NestedDFS(gen, []initialState{{Marking: n.InitialMarking(), AutomatonState: 0}}, cancel)
	require.False(t, found)
}

func TestNestedDFSNoAcceptingCycle(t *testing.T) {
	b := net.NewBuilder()
	b.AddPlace("p", 1)
	b.AddPlace("q", 0)
	b.AddTransition("t")
	b.AddInputArc("p", "t", false, 1)
	b.AddOutputArc("t", "q", 1)
	n, err := b.Compile()
	require.NoError(t, err)

	pNode := ir.Place("p")
	require.NoError(t, ir.Analyze(pNode, n))
	a := &buchi.Automaton{
		Props:   []*ir.Node{pNode},
		Initial: []int{0},
		States: []buchi.State{
			{Edges: []buchi.Edge{{To: 1, Guard: bdd.Var(0)}}},
			{Accepting: true, Edges: []buchi.Edge{{To: 1, Guard: bdd.Var(0)}}}, // only loops while p holds
		},
	}
	gen := buchi.NewGenerator(n, a, view{n})
	found, _ := ltl.NestedDFS(gen, []initialState{{Marking: n.InitialMarking(), AutomatonState: 0}}, nil)
	require.False(t, found)
}
