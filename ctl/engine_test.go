package ctl_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pncheck/pncheck/ctl"
	"github.com/pncheck/pncheck/ir"
	"github.com/pncheck/pncheck/net"
	"github.com/pncheck/pncheck/store"
)

func twoTransitionNet(t *testing.T) *net.Net {
	b := net.NewBuilder()
	b.AddPlace("p0", 1)
	b.AddPlace("p1", 0)
	b.AddTransition("t0")
	b.AddTransition("t1")
	b.AddInputArc("p0", "t0", false, 1)
	b.AddOutputArc("t0", "p1", 1)
	b.AddInputArc("p1", "t1", false, 1)
	b.AddOutputArc("t1", "p0", 1)
	n, err := b.Compile()
	require.NoError(t, err)
	return n
}

func deadlockNet(t *testing.T) *net.Net {
	b := net.NewBuilder()
	b.AddPlace("p", 1)
	b.AddTransition("drain")
	b.AddInputArc("p", "drain", false, 1)
	n, err := b.Compile()
	require.NoError(t, err)
	return n
}

func root(t *testing.T, n *net.Net, st *store.Store) store.ID {
	id, _, err := st.Intern(n.InitialMarking(), 0, -1)
	require.NoError(t, err)
	return id
}

func TestCertainZeroEFDeadlockHoldsOnDrainableNet(t *testing.T) {
	n := deadlockNet(t)
	st := store.New(n.NumPlaces(), 0, false)
	formula := ir.Unary(ir.EF, ir.DeadlockNode())

	res := ctl.CertainZero(n, st, n, root(t, n, st), formula)
	require.Equal(t, ir.RTrue, res)
}

func TestCertainZeroAGNotDeadlockHoldsOnLiveNet(t *testing.T) {
	n := twoTransitionNet(t)
	st := store.New(n.NumPlaces(), 0, false)
	formula := ir.Unary(ir.AG, ir.Unary(ir.Not, ir.DeadlockNode()))

	res := ctl.CertainZero(n, st, n, root(t, n, st), formula)
	require.Equal(t, ir.RTrue, res)
}

func TestLocalAndCertainZeroAgreeOnEX(t *testing.T) {
	n := twoTransitionNet(t)
	formula := ir.Unary(ir.EX, ir.CmpNode(ir.Ge, ir.Place("p1"), ir.Int(1)))
	require.NoError(t, ir.Analyze(formula.Children[0], n))

	st1 := store.New(n.NumPlaces(), 0, false)
	gotLocal := ctl.Local(n, st1, n, root(t, n, st1), formula)

	st2 := store.New(n.NumPlaces(), 0, false)
	gotCZ := ctl.CertainZero(n, st2, n, root(t, n, st2), formula)

	require.Equal(t, ir.RTrue, gotLocal)
	require.Equal(t, gotLocal, gotCZ)
}

func TestCertainZeroAXFailsWhenSomeSuccessorViolates(t *testing.T) {
	b := net.NewBuilder()
	b.AddPlace("p", 1)
	b.AddPlace("q", 0)
	b.AddTransition("toQ")
	b.AddTransition("stay")
	b.AddInputArc("p", "toQ", false, 1)
	b.AddOutputArc("toQ", "q", 1)
	b.AddInputArc("p", "stay", false, 1)
	b.AddOutputArc("stay", "p", 1)
	n, err := b.Compile()
	require.NoError(t, err)

	formula := ir.Unary(ir.AX, ir.CmpNode(ir.Ge, ir.Place("p"), ir.Int(1)))
	require.NoError(t, ir.Analyze(formula.Children[0], n))

	st := store.New(n.NumPlaces(), 0, false)
	res := ctl.CertainZero(n, st, n, root(t, n, st), formula)
	require.Equal(t, ir.RFalse, res)
}

func TestCertainZeroEUFindsWitnessPath(t *testing.T) {
	b := net.NewBuilder()
	b.AddPlace("p0", 1)
	b.AddPlace("p1", 0)
	b.AddPlace("p2", 0)
	b.AddTransition("t0")
	b.AddTransition("t1")
	b.AddInputArc("p0", "t0", false, 1)
	b.AddOutputArc("t0", "p1", 1)
	b.AddInputArc("p1", "t1", false, 1)
	b.AddOutputArc("t1", "p2", 1)
	n, err := b.Compile()
	require.NoError(t, err)

	notP2 := ir.Unary(ir.Not, ir.CmpNode(ir.Ge, ir.Place("p2"), ir.Int(1)))
	atP2 := ir.CmpNode(ir.Ge, ir.Place("p2"), ir.Int(1))
	formula := ir.Until(ir.EU, notP2, atP2)
	require.NoError(t, ir.Analyze(formula, n))

	st := store.New(n.NumPlaces(), 0, false)
	res := ctl.CertainZero(n, st, n, root(t, n, st), formula)
	require.Equal(t, ir.RTrue, res)
}

func TestWitnessEFReturnsMarkingWhereBodyHolds(t *testing.T) {
	n := deadlockNet(t)
	st := store.New(n.NumPlaces(), 0, true) // history enabled: Witness needs it for trace.Reconstruct
	formula := ir.Unary(ir.EF, ir.DeadlockNode())

	res, witness, ok := ctl.Witness(n, st, n, root(t, n, st), formula)
	require.Equal(t, ir.RTrue, res)
	require.True(t, ok)
	require.True(t, n.Deadlocked(st.Marking(witness)))
}

func TestWitnessEUReturnsMarkingWhereUntilTargetHolds(t *testing.T) {
	b := net.NewBuilder()
	b.AddPlace("p0", 1)
	b.AddPlace("p1", 0)
	b.AddPlace("p2", 0)
	b.AddTransition("t0")
	b.AddTransition("t1")
	b.AddInputArc("p0", "t0", false, 1)
	b.AddOutputArc("t0", "p1", 1)
	b.AddInputArc("p1", "t1", false, 1)
	b.AddOutputArc("t1", "p2", 1)
	n, err := b.Compile()
	require.NoError(t, err)

	notP2 := ir.Unary(ir.Not, ir.CmpNode(ir.Ge, ir.Place("p2"), ir.Int(1)))
	atP2 := ir.CmpNode(ir.Ge, ir.Place("p2"), ir.Int(1))
	formula := ir.Until(ir.EU, notP2, atP2)
	require.NoError(t, ir.Analyze(formula, n))

	st := store.New(n.NumPlaces(), 0, true)
	res, witness, ok := ctl.Witness(n, st, n, root(t, n, st), formula)
	require.Equal(t, ir.RTrue, res)
	require.True(t, ok)
	m := st.Marking(witness)
	require.GreaterOrEqual(t, int(m[2]), 1)
}

func TestWitnessAGFalseReturnsCounterexampleMarking(t *testing.T) {
	n := twoTransitionNet(t)
	formula := ir.Unary(ir.AG, ir.CmpNode(ir.Ge, ir.Place("p0"), ir.Int(1)))
	require.NoError(t, ir.Analyze(formula.Children[0], n))

	st := store.New(n.NumPlaces(), 0, true)
	res, witness, ok := ctl.Witness(n, st, n, root(t, n, st), formula)
	require.Equal(t, ir.RFalse, res)
	require.True(t, ok)
	m := st.Marking(witness)
	require.Less(t, int(m[0]), 1)
}

func TestWitnessNotFoundForNonWitnessingShape(t *testing.T) {
	n := twoTransitionNet(t)
	formula := ir.Unary(ir.EX, ir.CmpNode(ir.Ge, ir.Place("p1"), ir.Int(1)))
	require.NoError(t, ir.Analyze(formula.Children[0], n))

	st := store.New(n.NumPlaces(), 0, true)
	res, _, ok := ctl.Witness(n, st, n, root(t, n, st), formula)
	require.Equal(t, ir.RTrue, res)
	require.False(t, ok)
}
