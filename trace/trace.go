// Package trace implements firing-sequence reconstruction (spec.md §4.9/§6, component C10):
// walking a state store's recorded (parent, transition) history backwards from a reached marking
// to the initial one, and rendering the result as the bracketed `<trace>` document spec.md §6
// specifies.
//
// The walk-backwards-then-reverse shape is grounded on the teacher's
// diagnostic/nilflow.go (nilFlow.nilPath/nonnilPath are built by prepending while walking
// backwards from a conflict to its source, then printed forwards) — reused here verbatim for
// stem reconstruction; lasso rendering adds the `<loop/>` marker original_source/src/LTL/Trace
// inserts at the cycle boundary.
package trace

import (
	"fmt"
	"strings"

	"github.com/pncheck/pncheck/net"
	"github.com/pncheck/pncheck/store"
)

// Step is one firing in a reconstructed sequence: the transition fired and the marking it
// produced.
type Step struct {
	Transition int
	Marking    net.Marking
}

// Reconstruct walks st's history backwards from id to the root, returning the firing sequence
// t1..tn such that fire(...fire(M0, t1)..., tn) = st.Marking(id). It panics if st was not built
// with history enabled (HasHistory() false) — a programming error, not a runtime condition
// callers should expect to recover from.
func Reconstruct(st *store.Store, id store.ID) []Step {
	if !st.HasHistory() {
		panic("trace: store was not built with history enabled")
	}
	var steps []Step
	for cur := id; ; {
		t := st.Transition(cur)
		if t == -1 {
			break // reached the root marking
		}
		steps = append(steps, Step{Transition: t, Marking: st.Marking(cur)})
		cur = st.Parent(cur)
	}
	reverse(steps)
	return steps
}

func reverse(steps []Step) {
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
}

// Lasso is a stem (finite prefix from the initial product state) followed by a loop (the cycle
// an LTL search closed), each rendered as a run of transition firings. LoopStartsImmediately is
// true when the stem is empty and the loop begins at the initial state itself — the "nested-DFS
// empty stem" edge case spec.md §9 leaves open and DESIGN.md resolves as legal.
type Lasso struct {
	Stem                  []Step
	Loop                  []Step
	LoopStartsImmediately bool
}

// RenderXML writes the spec.md §6 `<trace>...</trace>` document for a plain (non-looping) firing
// sequence: one `<transition id="t"/>` element per step, in order.
func RenderXML(steps []Step, names func(t int) string) string {
	var b strings.Builder
	b.WriteString("<trace>")
	for _, s := range steps {
		writeTransition(&b, s.Transition, names)
	}
	b.WriteString("</trace>")
	return b.String()
}

// RenderLassoXML writes the spec.md §6 `<trace>...</trace>` document for a lasso counter-example:
// the stem's transitions, a `<loop/>` marker at the cycle boundary, then the loop's transitions.
func RenderLassoXML(l Lasso, names func(t int) string) string {
	var b strings.Builder
	b.WriteString("<trace>")
	for _, s := range l.Stem {
		writeTransition(&b, s.Transition, names)
	}
	b.WriteString("<loop/>")
	for _, s := range l.Loop {
		writeTransition(&b, s.Transition, names)
	}
	b.WriteString("</trace>")
	return b.String()
}

func writeTransition(b *strings.Builder, t int, names func(t int) string) {
	if t < 0 {
		return // a self-loop step (LTL deadlock extension) fires no real transition
	}
	id := fmt.Sprintf("%d", t)
	if names != nil {
		if n := names(t); n != "" {
			id = n
		}
	}
	fmt.Fprintf(b, "<transition id=%q/>", id)
}
