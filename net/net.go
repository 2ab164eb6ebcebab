// Package net implements the immutable compiled Petri net (spec.md §3, component C1): place and
// transition tables, a flattened sorted arc table, inhibitor flags, and the initial marking.
//
// The shape follows the teacher's preference for immutable, interned identity structs
// (annotation/key.go's *Key implementations) compiled once from a staging builder rather than
// mutated in place.
package net

// Arc describes one endpoint of a weighted, optionally inhibitor, connection between a place
// and a transition.
type Arc struct {
	// Place is the index of the place this arc connects to.
	Place int
	// Weight is the number of tokens consumed, produced, or (for inhibitor arcs) the threshold
	// under which the arc's transition remains enabled.
	Weight uint64
	// Inhibitor is true if this is a pre-arc (place -> transition) that disables the transition
	// when the place holds Weight or more tokens, rather than an ordinary consuming pre-arc.
	Inhibitor bool
}

// Transition is one compiled transition: its name and the half-open ranges into the net's
// shared pre/post arc tables.
type Transition struct {
	Name string
	// PreStart, PreEnd index into Net.transArcs for this transition's pre-arcs (place -> t).
	PreStart, PreEnd int
	// PostStart, PostEnd index into Net.transArcs for this transition's post-arcs (t -> place).
	PostStart, PostEnd int
}

// Place is one compiled place: its name and the half-open ranges into the net's shared
// preset/postset arc tables (i.e. the transitions reading from / writing to this place).
type Place struct {
	Name string
	// PresetStart, PresetEnd index into Net.placeArcs for transitions that consume from this
	// place (this place is in their preset).
	PresetStart, PresetEnd int
	// PostsetStart, PostsetEnd index into Net.placeArcs for transitions that produce into this
	// place (this place is in their postset).
	PostsetStart, PostsetEnd int
}

// PlaceArcRef is one entry of a place's preset/postset arc table: which transition touches the
// place, with what weight, and via which arc kind.
type PlaceArcRef struct {
	Transition int
	Weight     uint64
	Inhibitor  bool
}

// Net is the immutable, compiled Petri net. It never mutates once Compile returns; all
// verification components treat it as read-only shared state (spec.md §5).
type Net struct {
	places      []Place
	transitions []Transition

	// transArcs is the shared, flattened arc table indexed by Transition.{Pre,Post}{Start,End};
	// pre-arcs for a transition precede its post-arcs, and both runs are contiguous, so
	// traversal during firing is a single slice scan (spec.md §3 invariant).
	transArcs []Arc

	// placeArcs is the shared, flattened table indexed by Place.{Preset,Postset}{Start,End},
	// giving each place's preset (consuming transitions) and postset (producing transitions).
	placeArcs []PlaceArcRef

	initial []uint64
}

// NumPlaces returns the number of places P; places are indexed 0..NumPlaces()-1.
func (n *Net) NumPlaces() int { return len(n.places) }

// NumTransitions returns the number of transitions T; transitions are indexed
// 0..NumTransitions()-1.
func (n *Net) NumTransitions() int { return len(n.transitions) }

// Place returns the compiled place at index i.
func (n *Net) Place(i int) *Place { return &n.places[i] }

// Transition returns the compiled transition at index i.
func (n *Net) Transition(i int) *Transition { return &n.transitions[i] }

// PlaceName returns the name of place i, or "" if out of range.
func (n *Net) PlaceName(i int) string {
	if i < 0 || i >= len(n.places) {
		return ""
	}
	return n.places[i].Name
}

// TransitionName returns the name of transition t, or "" if out of range.
func (n *Net) TransitionName(t int) string {
	if t < 0 || t >= len(n.transitions) {
		return ""
	}
	return n.transitions[t].Name
}

// PlaceIndex returns the index of the place with the given name, or (-1, false) if none.
func (n *Net) PlaceIndex(name string) (int, bool) {
	for i, p := range n.places {
		if p.Name == name {
			return i, true
		}
	}
	return -1, false
}

// TransitionIndex returns the index of the transition with the given name, or (-1, false) if
// none.
func (n *Net) TransitionIndex(name string) (int, bool) {
	for i, t := range n.transitions {
		if t.Name == name {
			return i, true
		}
	}
	return -1, false
}

// InitialMarking returns a fresh copy of M0, the initial marking; callers may freely mutate the
// returned slice.
func (n *Net) InitialMarking() Marking {
	m := make(Marking, len(n.initial))
	copy(m, n.initial)
	return m
}

// PreArcs calls f for every pre-arc of transition t, in table order (inhibitor arcs included).
func (n *Net) PreArcs(t int, f func(a *Arc) bool) {
	tr := &n.transitions[t]
	for i := tr.PreStart; i < tr.PreEnd; i++ {
		if !f(&n.transArcs[i]) {
			return
		}
	}
}

// PostArcs calls f for every post-arc of transition t, in table order.
func (n *Net) PostArcs(t int, f func(a *Arc) bool) {
	tr := &n.transitions[t]
	for i := tr.PostStart; i < tr.PostEnd; i++ {
		if !f(&n.transArcs[i]) {
			return
		}
	}
}

// Preset calls f for every (transition, weight, inhibitor) that consumes from place p.
func (n *Net) Preset(p int, f func(ref *PlaceArcRef) bool) {
	pl := &n.places[p]
	for i := pl.PresetStart; i < pl.PresetEnd; i++ {
		if !f(&n.placeArcs[i]) {
			return
		}
	}
}

// Postset calls f for every (transition, weight) that produces into place p.
func (n *Net) Postset(p int, f func(ref *PlaceArcRef) bool) {
	pl := &n.places[p]
	for i := pl.PostsetStart; i < pl.PostsetEnd; i++ {
		if !f(&n.placeArcs[i]) {
			return
		}
	}
}

// Marking is a vector M ∈ ℕᴾ assigning a token count to each place.
type Marking []uint64

// Clone returns an independent copy of m.
func (m Marking) Clone() Marking {
	c := make(Marking, len(m))
	copy(c, m)
	return c
}

// Sum returns the total token count across all places.
func (m Marking) Sum() uint64 {
	var s uint64
	for _, v := range m {
		s += v
	}
	return s
}

// Equal reports whether m and other assign identical token counts to every place.
func (m Marking) Equal(other Marking) bool {
	if len(m) != len(other) {
		return false
	}
	for i := range m {
		if m[i] != other[i] {
			return false
		}
	}
	return true
}

// Enabled reports whether transition t is enabled in marking m: every non-inhibitor pre-arc's
// place holds at least its weight in tokens, and every inhibitor pre-arc's place holds strictly
// fewer tokens than its weight (spec.md §3).
func (n *Net) Enabled(m Marking, t int) bool {
	enabled := true
	n.PreArcs(t, func(a *Arc) bool {
		if a.Inhibitor {
			if m[a.Place] >= a.Weight {
				enabled = false
				return false
			}
			return true
		}
		if m[a.Place] < a.Weight {
			enabled = false
			return false
		}
		return true
	})
	return enabled
}

// Deadlocked reports whether no transition is enabled in m.
func (n *Net) Deadlocked(m Marking) bool {
	for t := 0; t < n.NumTransitions(); t++ {
		if n.Enabled(m, t) {
			return false
		}
	}
	return true
}

// Fire returns a new marking fire(M,t) = M - pre(t) + post(t), without checking enabledness;
// callers must check Enabled first. It is the caller's responsibility to apply any k-bound.
func (n *Net) Fire(m Marking, t int) Marking {
	out := m.Clone()
	n.PreArcs(t, func(a *Arc) bool {
		if !a.Inhibitor {
			out[a.Place] -= a.Weight
		}
		return true
	})
	n.PostArcs(t, func(a *Arc) bool {
		out[a.Place] += a.Weight
		return true
	})
	return out
}
