package net

import (
	"fmt"
	"sort"

	"github.com/pncheck/pncheck/util/orderedmap"
)

// Builder stages a net incrementally via the builder calls an external net parser is expected
// to drive (spec.md §6): add_place, add_transition, add_input_arc, add_output_arc, then Compile
// (the spec's "sort()"). Parsing net files themselves is out of scope (spec.md §1); Builder is
// the in-scope surface a parser calls into.
//
// Staging tables are orderedmap.Map so that Compile assigns place/transition indices in call
// order; arc endpoints are resolved by name, and validated, in Compile.
type Builder struct {
	places      *orderedmap.Map[string, uint64]
	transitions *orderedmap.Map[string, bool]

	// inputArcs[transitionName] accumulates (place, inhibitor, weight) pre-arcs.
	inputArcs map[string][]stagedArc
	// outputArcs[transitionName] accumulates (place, weight) post-arcs.
	outputArcs map[string][]stagedArc
}

type stagedArc struct {
	place     string
	weight    uint64
	inhibitor bool
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		places:      orderedmap.New[string, uint64](),
		transitions: orderedmap.New[string, bool](),
		inputArcs:   make(map[string][]stagedArc),
		outputArcs:  make(map[string][]stagedArc),
	}
}

// AddPlace declares a place with the given initial token count. Adding the same name twice
// overwrites its initial marking but does not change its staged position.
func (b *Builder) AddPlace(name string, initialTokens uint64) {
	b.places.Store(name, initialTokens)
}

// AddTransition declares a transition by name.
func (b *Builder) AddTransition(name string) {
	b.transitions.Store(name, true)
}

// AddInputArc adds a pre-arc place -> transition, either an ordinary consuming arc or, if
// inhibitor is true, an inhibitor arc whose weight is the disabling threshold.
func (b *Builder) AddInputArc(place, transition string, inhibitor bool, weight uint64) {
	b.inputArcs[transition] = append(b.inputArcs[transition], stagedArc{place: place, weight: weight, inhibitor: inhibitor})
}

// AddOutputArc adds a post-arc transition -> place producing weight tokens.
func (b *Builder) AddOutputArc(transition, place string, weight uint64) {
	b.outputArcs[transition] = append(b.outputArcs[transition], stagedArc{place: place, weight: weight})
}

// Compile finalizes the net: it resolves arc place/transition names to indices, sorts each
// transition's pre-arcs ahead of its post-arcs (spec.md §3 invariant), and builds the place-side
// preset/postset tables. It returns an error naming the first unresolved reference found, rather
// than panicking, per the "explicit result variants" design note (§9).
func (b *Builder) Compile() (*Net, error) {
	n := &Net{
		places:      make([]Place, b.places.Len()),
		transitions: make([]Transition, b.transitions.Len()),
		initial:     make([]uint64, b.places.Len()),
	}

	placeIndex := make(map[string]int, b.places.Len())
	i := 0
	b.places.Range(func(name string, initial uint64) bool {
		n.places[i].Name = name
		n.initial[i] = initial
		placeIndex[name] = i
		i++
		return true
	})

	transIndex := make(map[string]int, b.transitions.Len())
	j := 0
	b.transitions.Range(func(name string, _ bool) bool {
		n.transitions[j].Name = name
		transIndex[name] = j
		j++
		return true
	})

	// Build the per-transition arc table: pre-arcs first (sorted by place for determinism),
	// then post-arcs.
	type resolvedArc struct {
		placeIdx  int
		weight    uint64
		inhibitor bool
	}
	for tname, tidx := range transIndex {
		var pre []resolvedArc
		for _, sa := range b.inputArcs[tname] {
			pidx, ok := placeIndex[sa.place]
			if !ok {
				return nil, fmt.Errorf("net: input arc references unknown place %q for transition %q", sa.place, tname)
			}
			pre = append(pre, resolvedArc{placeIdx: pidx, weight: sa.weight, inhibitor: sa.inhibitor})
		}
		sort.Slice(pre, func(a, c int) bool { return pre[a].placeIdx < pre[c].placeIdx })

		var post []resolvedArc
		for _, sa := range b.outputArcs[tname] {
			pidx, ok := placeIndex[sa.place]
			if !ok {
				return nil, fmt.Errorf("net: output arc references unknown place %q for transition %q", sa.place, tname)
			}
			post = append(post, resolvedArc{placeIdx: pidx, weight: sa.weight})
		}
		sort.Slice(post, func(a, c int) bool { return post[a].placeIdx < post[c].placeIdx })

		n.transitions[tidx].PreStart = len(n.transArcs)
		for _, ra := range pre {
			n.transArcs = append(n.transArcs, Arc{Place: ra.placeIdx, Weight: ra.weight, Inhibitor: ra.inhibitor})
		}
		n.transitions[tidx].PreEnd = len(n.transArcs)

		n.transitions[tidx].PostStart = len(n.transArcs)
		for _, ra := range post {
			n.transArcs = append(n.transArcs, Arc{Place: ra.placeIdx, Weight: ra.weight})
		}
		n.transitions[tidx].PostEnd = len(n.transArcs)
	}
	for name := range b.inputArcs {
		if _, ok := transIndex[name]; !ok {
			return nil, fmt.Errorf("net: input arc references unknown transition %q", name)
		}
	}
	for name := range b.outputArcs {
		if _, ok := transIndex[name]; !ok {
			return nil, fmt.Errorf("net: output arc references unknown transition %q", name)
		}
	}

	// Build the place-side preset/postset tables from the now-resolved transition tables.
	type placeRef struct {
		transition int
		weight     uint64
		inhibitor  bool
	}
	presets := make([][]placeRef, len(n.places))
	postsets := make([][]placeRef, len(n.places))
	for t := range n.transitions {
		n.PreArcs(t, func(a *Arc) bool {
			presets[a.Place] = append(presets[a.Place], placeRef{transition: t, weight: a.Weight, inhibitor: a.Inhibitor})
			return true
		})
		n.PostArcs(t, func(a *Arc) bool {
			postsets[a.Place] = append(postsets[a.Place], placeRef{transition: t, weight: a.Weight})
			return true
		})
	}
	for p := range n.places {
		sort.Slice(presets[p], func(a, c int) bool { return presets[p][a].transition < presets[p][c].transition })
		n.places[p].PresetStart = len(n.placeArcs)
		for _, r := range presets[p] {
			n.placeArcs = append(n.placeArcs, PlaceArcRef{Transition: r.transition, Weight: r.weight, Inhibitor: r.inhibitor})
		}
		n.places[p].PresetEnd = len(n.placeArcs)

		sort.Slice(postsets[p], func(a, c int) bool { return postsets[p][a].transition < postsets[p][c].transition })
		n.places[p].PostsetStart = len(n.placeArcs)
		for _, r := range postsets[p] {
			n.placeArcs = append(n.placeArcs, PlaceArcRef{Transition: r.transition, Weight: r.weight})
		}
		n.places[p].PostsetEnd = len(n.placeArcs)
	}

	return n, nil
}
