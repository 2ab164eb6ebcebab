// Package bitset provides sparse, growable index sets for the stubborn-set scratch arrays
// (enabled[t], stubborn[t], places_seen[p]).
//
// Transition and place counts are not known at compile time and stubborn-set closures only ever
// touch a small fraction of the full index range per marking, so a sparse bit vector is a better
// fit than a dense []bool reset on every prepare() call; golang.org/x/tools/container/intsets
// ships exactly this primitive and is the one teacher dependency from the golang.org/x/tools
// module that survives the transplant (see DESIGN.md).
package bitset

import "golang.org/x/tools/container/intsets"

// Set is a sparse set of non-negative integer indices.
type Set struct {
	s intsets.Sparse
}

// New returns an empty Set, optionally pre-populated with the given indices.
func New(indices ...int) *Set {
	s := &Set{}
	for _, i := range indices {
		s.Add(i)
	}
	return s
}

// Add inserts i, returning true if it was not already present.
func (s *Set) Add(i int) bool {
	return s.s.Insert(i)
}

// Remove deletes i, returning true if it was present.
func (s *Set) Remove(i int) bool {
	return s.s.Remove(i)
}

// Has reports whether i is a member.
func (s *Set) Has(i int) bool {
	return s.s.Has(i)
}

// Len returns the number of members.
func (s *Set) Len() int {
	return s.s.Len()
}

// Reset empties the set in place so the underlying storage can be reused across prepare() calls
// without reallocating, matching the "scratch buffers owned by the engine struct, reset per
// call" discipline from the design notes.
func (s *Set) Reset() {
	s.s.Clear()
}

// Each calls f for every member in ascending order, stopping early if f returns false.
func (s *Set) Each(f func(i int) bool) {
	for _, i := range s.Slice() {
		if !f(i) {
			return
		}
	}
}

// Slice returns the members in ascending order as a plain slice, convenient for deterministic
// iteration by callers that need indexing (e.g. the stubborn-set closure).
func (s *Set) Slice() []int {
	return s.s.AppendTo(make([]int, 0, s.Len()))
}
