// Package engine is the driver: it classifies each query as reachability/CTL/LTL per spec.md §2's
// control-flow table, dispatches to the matching subsystem (reach, ctl, or ltl+buchi), and renders
// the spec.md §6 result line and optional `<trace>` document. A query's verification is a unit of
// failure containment (spec.md §7): a panic inside any one query's verification is recovered and
// reported as that query's UNKNOWN, and the driver moves on to the next query.
//
// The classify-dispatch-recover shape is grounded on the teacher's top-level
// accumulation.run (a defer recover()-to-diagnostic wrapping each unit of work) and
// util/analysishelper.Result[T]{Res,Err}, generalized here to a per-query Result/Error pair that
// also carries the spec.md §6 technique tags and optional trace document.
package engine

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/pncheck/pncheck/buchi"
	"github.com/pncheck/pncheck/config"
	"github.com/pncheck/pncheck/ctl"
	"github.com/pncheck/pncheck/ir"
	"github.com/pncheck/pncheck/ltl"
	"github.com/pncheck/pncheck/net"
	"github.com/pncheck/pncheck/reach"
	"github.com/pncheck/pncheck/store"
	"github.com/pncheck/pncheck/stubborn"
	"github.com/pncheck/pncheck/trace"
)

// Class is the dispatch category the driver assigns a query to (spec.md §2).
type Class uint8

const (
	ClassReachability Class = iota
	ClassCTL
	ClassLTL
)

// Classify reports which subsystem handles formula. Reachability-class queries (EF ψ / AG ψ over
// a propositional ψ) take priority since they admit a cheaper, non-product-state search; any
// other formula containing a bare path operator (X/F/G/U without an E/A quantifier) anywhere is
// LTL; everything else — formulas whose modalities are all E/A-quantified — is CTL.
func Classify(formula *ir.Node) Class {
	if ir.IsReachability(formula) {
		return ClassReachability
	}
	if usesBarePathOperators(formula) {
		return ClassLTL
	}
	return ClassCTL
}

func usesBarePathOperators(n *ir.Node) bool {
	switch n.Kind {
	case ir.PathX, ir.PathF, ir.PathG, ir.PathU:
		return true
	}
	for _, c := range n.Children {
		if usesBarePathOperators(c) {
			return true
		}
	}
	return false
}

// Verdict is the tri-valued outcome the driver reports per query (spec.md §6/§7).
type Verdict uint8

const (
	Unknown Verdict = iota
	True
	False
)

func (v Verdict) String() string {
	switch v {
	case True:
		return "TRUE"
	case False:
		return "FALSE"
	default:
		return "UNKNOWN"
	}
}

// Query is one named formula to verify, plus the pieces an LTL query needs that spec.md §1 scopes
// to an external collaborator: the caller-supplied Büchi automaton translated from the formula
// (this package never attempts LTL-to-automaton translation itself).
type Query struct {
	ID      string
	Formula *ir.Node
	// Automaton is required for LTL-class queries (Classify returns ClassLTL); it is the product
	// automaton obtained from the external LTL-to-ω-automaton translator spec.md §1/§6 describe.
	// Visible places are every place index any automaton edge guard reads, used to build the
	// visible stubborn-set reduction (spec.md §4.4).
	Automaton     *buchi.Automaton
	VisiblePlaces []int
}

// Result is the outcome of verifying one Query.
type Result struct {
	ID          string
	Verdict     Verdict
	Techniques  []string
	Trace       string // a <trace> document, set only when opts.ComputeTrace and a witness exists
	ElapsedSecs float64
	Overflowed  bool
	Err         error
}

func (r Result) String() string {
	line := fmt.Sprintf("FORMULA %s %s TECHNIQUES %s", r.ID, r.Verdict, joinTechniques(r.Techniques))
	if r.Overflowed {
		line += " OVERFLOW"
	}
	return line
}

func joinTechniques(ts []string) string {
	if len(ts) == 0 {
		return "-"
	}
	out := ts[0]
	for _, t := range ts[1:] {
		out += "," + t
	}
	return out
}

// Run verifies every query against n, starting each from the net's initial marking, and returns
// one Result per query in order. Queries are verified sequentially (spec.md §5: "multiple queries
// are verified sequentially from a single driver").
func Run(n *net.Net, queries []Query, opts config.Options) []Result {
	results := make([]Result, len(queries))
	for i, q := range queries {
		results[i] = runOne(n, q, opts)
	}
	return results
}

func runOne(n *net.Net, q Query, opts config.Options) (result Result) {
	result.ID = q.ID
	start := time.Now()
	defer func() {
		result.ElapsedSecs = time.Since(start).Seconds()
		if rec := recover(); rec != nil {
			result.Verdict = Unknown
			result.Err = fmt.Errorf("engine: query %s panicked: %v", q.ID, rec)
		}
	}()

	class := Classify(q.Formula)
	cancel, stopWatchdog := cancelFunc(opts)
	defer stopWatchdog()

	switch class {
	case ClassReachability:
		return runReachability(n, q, opts, cancel)
	case ClassCTL:
		return runCTL(n, q, opts)
	case ClassLTL:
		return runLTL(n, q, opts, cancel)
	default:
		result.Verdict = Unknown
		return result
	}
}

// cancelFunc builds the cooperative-cancellation poll function spec.md §5 calls for: a flag the
// search loops check once per iteration, set by a `time.AfterFunc` watchdog timer rather than a
// goroutine that busy-loops on the clock. It returns both the poll function and a stop function;
// runOne defers the stop function so the timer is always released — whether the query finished on
// its own or the watchdog already fired — which is what lets a `goleak.VerifyNone` test assert no
// watchdog goroutine survives a run.
func cancelFunc(opts config.Options) (poll func() bool, stop func()) {
	if opts.TimeoutSeconds <= 0 {
		return nil, func() {}
	}
	var fired atomic.Bool
	timer := time.AfterFunc(time.Duration(opts.TimeoutSeconds*float64(time.Second)), func() {
		fired.Store(true)
	})
	return fired.Load, func() { timer.Stop() }
}

func runReachability(n *net.Net, q Query, opts config.Options, cancel func() bool) Result {
	st := store.New(n.NumPlaces(), opts.KBound, opts.ComputeTrace)
	res, err := reach.Verify(n, st, n, q.Formula, reach.Options{
		UseStubborn: opts.UseStubborn,
		Cancel:      reach.Cancel(cancelOrNoop(cancel)),
	})
	techniques := []string{"REACHABILITY"}
	if opts.UseStubborn {
		techniques = append(techniques, "STUBBORN-SETS")
	}
	if err != nil {
		return Result{ID: q.ID, Verdict: Unknown, Techniques: techniques, Err: err}
	}
	if res.Cancelled {
		return Result{ID: q.ID, Verdict: Unknown, Techniques: techniques}
	}
	if res.Overflowed {
		return Result{ID: q.ID, Verdict: Unknown, Techniques: techniques, Overflowed: true}
	}

	out := Result{ID: q.ID, Verdict: boolVerdict(res.Holds), Techniques: techniques}
	if opts.ComputeTrace && res.HasWitness {
		steps := trace.Reconstruct(st, res.Witness)
		out.Trace = trace.RenderXML(steps, n.TransitionName)
	}
	return out
}

func boolVerdict(b bool) Verdict {
	if b {
		return True
	}
	return False
}

func cancelOrNoop(cancel func() bool) func() bool {
	if cancel == nil {
		return func() bool { return false }
	}
	return cancel
}

func runCTL(n *net.Net, q Query, opts config.Options) Result {
	st := store.New(n.NumPlaces(), opts.KBound, opts.ComputeTrace)
	rootID, _, err := st.Intern(n.InitialMarking(), 0, -1)
	techniques := []string{"CTL"}
	if opts.Algorithm == config.CTLLocal {
		techniques = append(techniques, "LOCAL")
	} else {
		techniques = append(techniques, "CZERO")
	}
	if err != nil {
		return Result{ID: q.ID, Verdict: Unknown, Techniques: techniques, Err: err}
	}

	var res ir.Result
	var witness store.ID
	var hasWitness bool
	if opts.ComputeTrace {
		// Witness runs the same fixed point as Local/CertainZero (see ctl.Witness) and additionally
		// recovers, for EF/EU/AG/AU-shaped results, the marking that realizes it.
		res, witness, hasWitness = ctl.Witness(n, st, n, rootID, q.Formula)
	} else if opts.Algorithm == config.CTLLocal {
		res = ctl.Local(n, st, n, rootID, q.Formula)
	} else {
		res = ctl.CertainZero(n, st, n, rootID, q.Formula)
	}

	out := Result{ID: q.ID, Techniques: techniques}
	switch res {
	case ir.RTrue:
		out.Verdict = True
	case ir.RFalse:
		out.Verdict = False
	default:
		out.Verdict = Unknown
		return out
	}
	if hasWitness {
		steps := trace.Reconstruct(st, witness)
		out.Trace = trace.RenderXML(steps, n.TransitionName)
	}
	return out
}

func runLTL(n *net.Net, q Query, opts config.Options, cancel func() bool) Result {
	techniques := []string{"LTL"}
	if opts.Algorithm == config.LTLTarjan {
		techniques = append(techniques, "TARJAN")
	} else {
		techniques = append(techniques, "NDFS")
	}
	if opts.UseStubborn && len(q.VisiblePlaces) > 0 {
		techniques = append(techniques, "VISIBLE-STUBBORN")
	}

	if q.Automaton == nil {
		return Result{ID: q.ID, Verdict: Unknown, Techniques: techniques,
			Err: fmt.Errorf("engine: LTL query %s has no automaton (external translator required)", q.ID)}
	}

	var gen *buchi.Generator
	if opts.UseStubborn && len(q.VisiblePlaces) > 0 {
		reducer := stubborn.NewForPlaces(n, q.VisiblePlaces, n)
		gen = buchi.NewReducedGenerator(n, q.Automaton, n, stubborn.NewVisible(reducer, q.VisiblePlaces))
	} else {
		gen = buchi.NewGenerator(n, q.Automaton, n)
	}
	var initials []struct {
		Marking        net.Marking
		AutomatonState int
	}
	m0 := n.InitialMarking()
	val := q.Automaton.Valuation(m0, n)
	for _, qi := range q.Automaton.Initial {
		q.Automaton.NextAutomatonStates(qi, val, func(next int) bool {
			initials = append(initials, struct {
				Marking        net.Marking
				AutomatonState int
			}{Marking: m0, AutomatonState: next})
			return true
		})
	}

	var found bool
	var lasso *ltl.Lasso
	if opts.Algorithm == config.LTLTarjan {
		found, lasso = ltl.Tarjan(gen, initials, ltl.Cancel(cancelOrNoop(cancel)))
	} else {
		found, lasso = ltl.NestedDFS(gen, initials, ltl.Cancel(cancelOrNoop(cancel)))
	}

	out := Result{ID: q.ID, Verdict: boolVerdict(!found), Techniques: techniques}
	if found && opts.ComputeTrace && lasso != nil {
		out.Trace = trace.RenderLassoXML(convertLasso(lasso), n.TransitionName)
	}
	return out
}

func convertLasso(l *ltl.Lasso) trace.Lasso {
	out := trace.Lasso{LoopStartsImmediately: len(l.Stem) == 0}
	for _, s := range l.Stem {
		out.Stem = append(out.Stem, trace.Step{Transition: s.Transition, Marking: s.Marking})
	}
	for _, s := range l.Loop {
		out.Loop = append(out.Loop, trace.Step{Transition: s.Transition, Marking: s.Marking})
	}
	return out
}
