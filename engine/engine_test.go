package engine_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/pncheck/pncheck/bdd"
	"github.com/pncheck/pncheck/buchi"
	"github.com/pncheck/pncheck/config"
	"github.com/pncheck/pncheck/engine"
	"github.com/pncheck/pncheck/ir"
	"github.com/pncheck/pncheck/net"
)

func mutexNet(t *testing.T) *net.Net {
	b := net.NewBuilder()
	b.AddPlace("s", 1)
	b.AddPlace("cs1", 0)
	b.AddPlace("cs2", 0)
	b.AddTransition("enter1")
	b.AddTransition("exit1")
	b.AddTransition("enter2")
	b.AddTransition("exit2")
	b.AddInputArc("s", "enter1", false, 1)
	b.AddOutputArc("enter1", "cs1", 1)
	b.AddInputArc("cs1", "exit1", false, 1)
	b.AddOutputArc("exit1", "s", 1)
	b.AddInputArc("s", "enter2", false, 1)
	b.AddOutputArc("enter2", "cs2", 1)
	b.AddInputArc("cs2", "exit2", false, 1)
	b.AddOutputArc("exit2", "s", 1)
	n, err := b.Compile()
	require.NoError(t, err)
	return n
}

func TestClassifyReachabilityVsCTLVsLTL(t *testing.T) {
	require.Equal(t, engine.ClassReachability, engine.Classify(ir.Unary(ir.EF, ir.DeadlockNode())))
	require.Equal(t, engine.ClassReachability, engine.Classify(ir.Unary(ir.AG, ir.DeadlockNode())))
	require.Equal(t, engine.ClassCTL, engine.Classify(ir.Unary(ir.AG, ir.Unary(ir.EF, ir.DeadlockNode()))))
	require.Equal(t, engine.ClassLTL, engine.Classify(ir.Unary(ir.PathG, ir.DeadlockNode())))
}

func TestRunDispatchesMutexSafetyToReachability(t *testing.T) {
	n := mutexNet(t)
	body := ir.Unary(ir.Not, ir.Nary(ir.And,
		ir.CmpNode(ir.Ge, ir.Place("cs1"), ir.Int(1)),
		ir.CmpNode(ir.Ge, ir.Place("cs2"), ir.Int(1)),
	))
	require.NoError(t, ir.Analyze(body, n))
	formula := ir.Unary(ir.AG, body)

	results := engine.Run(n, []engine.Query{{ID: "0", Formula: formula}}, config.DefaultOptions())
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	require.Equal(t, engine.True, results[0].Verdict)
	require.Contains(t, results[0].Techniques, "REACHABILITY")
}

func reversibleNet(t *testing.T) *net.Net {
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

func irreversibleNet(t *testing.T) *net.Net {
	b := net.NewBuilder()
	b.AddPlace("p", 1)
	b.AddTransition("drain")
	b.AddInputArc("p", "drain", false, 1)
	n, err := b.Compile()
	require.NoError(t, err)
	return n
}

func initialPredicate(t *testing.T, n *net.Net) *ir.Node {
	m0 := n.InitialMarking()
	var conjuncts []*ir.Node
	for i := 0; i < n.NumPlaces(); i++ {
		c := ir.CmpNode(ir.Eq, ir.Place(n.PlaceName(i)), ir.Int(int64(m0[i])))
		require.NoError(t, ir.Analyze(c, n))
		conjuncts = append(conjuncts, c)
	}
	return ir.Nary(ir.And, conjuncts...)
}

func TestRunDispatchesLivenessToCTLAndAgreesWithReversibility(t *testing.T) {
	rev := reversibleNet(t)
	formula := ir.Unary(ir.AG, ir.Unary(ir.EF, initialPredicate(t, rev)))
	results := engine.Run(rev, []engine.Query{{ID: "0", Formula: formula}}, config.DefaultOptions())
	require.Equal(t, engine.ClassCTL, engine.Classify(formula))
	require.Equal(t, engine.True, results[0].Verdict)

	irrev := irreversibleNet(t)
	formula2 := ir.Unary(ir.AG, ir.Unary(ir.EF, initialPredicate(t, irrev)))
	results2 := engine.Run(irrev, []engine.Query{{ID: "1", Formula: formula2}}, config.DefaultOptions())
	require.Equal(t, engine.False, results2[0].Verdict)
}

// invariantLossAutomaton accepts runs violating "always p": it stays in state 0 while p holds,
// moves to an accepting, invariantly-self-looping state 1 the first time p fails.
func invariantLossAutomaton(t *testing.T, n *net.Net) *buchi.Automaton {
	pNode := ir.Place("p")
	require.NoError(t, ir.Analyze(pNode, n))
	return &buchi.Automaton{
		Props:   []*ir.Node{pNode},
		Initial: []int{0},
		States: []buchi.State{
			{Edges: []buchi.Edge{
				{To: 0, Guard: bdd.Var(0)},
				{To: 1, Guard: bdd.Not{X: bdd.Var(0)}},
			}},
			{Accepting: true, Edges: []buchi.Edge{{To: 1, Guard: bdd.Const(true)}}},
		},
	}
}

func drainableNet(t *testing.T) *net.Net {
	b := net.NewBuilder()
	b.AddPlace("p", 1)
	b.AddTransition("drain")
	b.AddInputArc("p", "drain", false, 1)
	n, err := b.Compile()
	require.NoError(t, err)
	return n
}

func TestRunDispatchesBarePathOperatorToLTLAndFindsViolation(t *testing.T) {
	n := drainableNet(t)
	a := invariantLossAutomaton(t, n)
	pNode := ir.Place("p")
	require.NoError(t, ir.Analyze(pNode, n))
	formula := ir.Unary(ir.PathG, pNode)
	opts := config.DefaultOptions()
	opts.Algorithm = config.LTLTarjan
	opts.ComputeTrace = true

	results := engine.Run(n, []engine.Query{{ID: "0", Formula: formula, Automaton: a, VisiblePlaces: []int{0}}}, opts)
	require.Equal(t, engine.ClassLTL, engine.Classify(formula))
	require.NoError(t, results[0].Err)
	require.Equal(t, engine.False, results[0].Verdict)
	require.True(t, strings.Contains(results[0].Trace, "<loop/>"))
	require.Contains(t, results[0].Techniques, "VISIBLE-STUBBORN")
}

func TestRunReportsUnknownForLTLQueryMissingAutomaton(t *testing.T) {
	n := drainableNet(t)
	pNode := ir.Place("p")
	require.NoError(t, ir.Analyze(pNode, n))
	formula := ir.Unary(ir.PathG, pNode)

	results := engine.Run(n, []engine.Query{{ID: "0", Formula: formula}}, config.DefaultOptions())
	require.Equal(t, engine.Unknown, results[0].Verdict)
	require.Error(t, results[0].Err)
}

func TestResultStringFormatsFormulaLine(t *testing.T) {
	r := engine.Result{ID: "q0", Verdict: engine.True, Techniques: []string{"REACHABILITY", "STUBBORN-SETS"}}
	require.Equal(t, "FORMULA q0 TRUE TECHNIQUES REACHABILITY,STUBBORN-SETS", r.String())
}

// TestRunLeavesNoWatchdogGoroutineBehind asserts the cancellation watchdog's time.AfterFunc timer
// is always stopped before Run returns, whether the query finishes well within the timeout (this
// case) or the timeout actually fires — spec.md §5's cooperative-cancellation contract promises no
// watchdog goroutine survives a completed or cancelled run.
func TestRunLeavesNoWatchdogGoroutineBehind(t *testing.T) {
	defer goleak.VerifyNone(t)

	n := mutexNet(t)
	body := ir.Unary(ir.Not, ir.Nary(ir.And,
		ir.CmpNode(ir.Ge, ir.Place("cs1"), ir.Int(1)),
		ir.CmpNode(ir.Ge, ir.Place("cs2"), ir.Int(1)),
	))
	require.NoError(t, ir.Analyze(body, n))
	formula := ir.Unary(ir.AG, body)

	opts := config.DefaultOptions()
	opts.TimeoutSeconds = 30
	results := engine.Run(n, []engine.Query{{ID: "0", Formula: formula}}, opts)
	require.Equal(t, engine.True, results[0].Verdict)
}
