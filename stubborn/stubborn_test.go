package stubborn_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pncheck/pncheck/ir"
	"github.com/pncheck/pncheck/net"
	"github.com/pncheck/pncheck/stubborn"
)

type netView struct{ n *net.Net }

func (v netView) Enabled(m net.Marking, t int) bool { return v.n.Enabled(m, t) }
func (v netView) Deadlocked(m net.Marking) bool      { return v.n.Deadlocked(m) }

func chainNet(t *testing.T) *net.Net {
	b := net.NewBuilder()
	b.AddPlace("p0", 1)
	for _, p := range []string{"p1", "p2", "p3"} {
		b.AddPlace(p, 0)
	}
	for _, tr := range []string{"t0", "t1", "t2"} {
		b.AddTransition(tr)
	}
	b.AddInputArc("p0", "t0", false, 1)
	b.AddOutputArc("t0", "p1", 1)
	b.AddInputArc("p1", "t1", false, 1)
	b.AddOutputArc("t1", "p2", 1)
	b.AddInputArc("p2", "t2", false, 1)
	b.AddOutputArc("t2", "p3", 1)
	n, err := b.Compile()
	require.NoError(t, err)
	return n
}

func TestPrepareIncludesTransitionsTouchingQueriedPlace(t *testing.T) {
	n := chainNet(t)
	q := ir.CmpNode(ir.Ge, ir.Place("p3"), ir.Int(1))
	require.NoError(t, ir.Analyze(q, n))

	r := stubborn.New(n, q, netView{n})
	set, err := r.Prepare(n.InitialMarking())
	require.NoError(t, err)
	require.True(t, set.Has(2), "t2 produces into p3 and must be included")
}

func TestPrepareFallsBackOnInhibitor(t *testing.T) {
	b := net.NewBuilder()
	b.AddPlace("guard", 1)
	b.AddPlace("p", 0)
	b.AddTransition("t")
	b.AddInputArc("guard", "t", true, 1)
	b.AddOutputArc("t", "p", 1)
	n, err := b.Compile()
	require.NoError(t, err)

	q := ir.CmpNode(ir.Ge, ir.Place("p"), ir.Int(1))
	require.NoError(t, ir.Analyze(q, n))

	r := stubborn.New(n, q, netView{n})
	_, err = r.Prepare(n.InitialMarking())
	require.ErrorIs(t, err, stubborn.ErrUnsupportedInhibitor)
}

func TestPrepareFullSetWhenQueryReferencesNoPlace(t *testing.T) {
	n := chainNet(t)
	q := ir.DeadlockNode()

	r := stubborn.New(n, q, netView{n})
	set, err := r.Prepare(n.InitialMarking())
	require.NoError(t, err)
	require.Equal(t, n.NumTransitions(), set.Len())
}
