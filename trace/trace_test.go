package trace_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pncheck/pncheck/net"
	"github.com/pncheck/pncheck/store"
	"github.com/pncheck/pncheck/trace"
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

func TestReconstructReplaysFiringSequence(t *testing.T) {
	n := twoTransitionNet(t)
	st := store.New(n.NumPlaces(), 0, true)

	rootID, _, err := st.Intern(n.InitialMarking(), 0, -1)
	require.NoError(t, err)

	m1 := n.Fire(st.Marking(rootID), 0)
	id1, _, err := st.Intern(m1, rootID, 0)
	require.NoError(t, err)

	m2 := n.Fire(m1, 1)
	id2, _, err := st.Intern(m2, id1, 1)
	require.NoError(t, err)

	steps := trace.Reconstruct(st, id2)
	require.Len(t, steps, 2)
	require.Equal(t, 0, steps[0].Transition)
	require.Equal(t, 1, steps[1].Transition)

	replayed := n.InitialMarking()
	for _, s := range steps {
		replayed = n.Fire(replayed, s.Transition)
	}
	require.Equal(t, net.Marking(m2), replayed)
}

func TestReconstructAtRootIsEmpty(t *testing.T) {
	n := twoTransitionNet(t)
	st := store.New(n.NumPlaces(), 0, true)
	rootID, _, err := st.Intern(n.InitialMarking(), 0, -1)
	require.NoError(t, err)

	require.Empty(t, trace.Reconstruct(st, rootID))
}

func TestReconstructPanicsWithoutHistory(t *testing.T) {
	n := twoTransitionNet(t)
	st := store.New(n.NumPlaces(), 0, false)
	rootID, _, err := st.Intern(n.InitialMarking(), 0, -1)
	require.NoError(t, err)

	require.Panics(t, func() { trace.Reconstruct(st, rootID) })
}

func TestRenderXMLFormatsTransitionElements(t *testing.T) {
	steps := []trace.Step{{Transition: 0}, {Transition: 1}}
	got := trace.RenderXML(steps, func(t int) string {
		if t == 0 {
			return "take-left"
		}
		return "take-right"
	})
	require.Equal(t, `<trace><transition id="take-left"/><transition id="take-right"/></trace>`, got)
}

func TestRenderLassoXMLInsertsLoopMarker(t *testing.T) {
	l := trace.Lasso{
		Stem: []trace.Step{{Transition: 0}},
		Loop: []trace.Step{{Transition: 1}},
	}
	got := trace.RenderLassoXML(l, nil)
	require.Equal(t, `<trace><transition id="0"/><loop/><transition id="1"/></trace>`, got)
}

func TestRenderLassoXMLWithEmptyStem(t *testing.T) {
	l := trace.Lasso{Loop: []trace.Step{{Transition: 0}}, LoopStartsImmediately: true}
	got := trace.RenderLassoXML(l, nil)
	require.Equal(t, `<trace><loop/><transition id="0"/></trace>`, got)
}
