// Package orderedmap implements a generic map that iterates in insertion order.
//
// Several parts of the engine need a map whose iteration order is reproducible across runs:
// the net builder's place/transition name tables (so compiled indices are a deterministic
// function of the order add_place/add_transition were called) and the state store's id
// assignment bookkeeping both rely on this property for the determinism guarantees in §5/§8
// of the design (ids are monotonically assigned and successor enumeration is deterministic).
package orderedmap

// Pair is a key-value pair stored in the ordered map.
type Pair[K comparable, V any] struct {
	Key   K
	Value V
}

// Map is an insertion-ordered map. It is a thin internal helper and intentionally lacks
// some of the features of a full map implementation.
type Map[K comparable, V any] struct {
	// Pairs is the list of pairs in insertion order. Never modify directly; use Store. Exposed
	// read-only for iteration and for gob serialization.
	Pairs []*Pair[K, V]
	inner map[K]*Pair[K, V]
}

// New creates an empty Map.
func New[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{inner: make(map[K]*Pair[K, V])}
}

// Value returns the value stored for key, or the zero value if absent.
func (m *Map[K, V]) Value(key K) V {
	m.rehydrate()
	if p := m.inner[key]; p != nil {
		return p.Value
	}
	var zero V
	return zero
}

// Load returns the value for key and whether it was present.
func (m *Map[K, V]) Load(key K) (V, bool) {
	m.rehydrate()
	if p := m.inner[key]; p != nil {
		return p.Value, true
	}
	var zero V
	return zero, false
}

// Store inserts or overwrites the value for key, preserving original insertion position on
// overwrite.
func (m *Map[K, V]) Store(key K, value V) {
	m.rehydrate()
	if p := m.inner[key]; p != nil {
		p.Value = value
		return
	}
	p := &Pair[K, V]{Key: key, Value: value}
	m.Pairs = append(m.Pairs, p)
	m.inner[key] = p
}

// Len returns the number of distinct keys stored.
func (m *Map[K, V]) Len() int {
	return len(m.Pairs)
}

// Range calls f for every pair in insertion order, stopping early if f returns false.
func (m *Map[K, V]) Range(f func(key K, value V) bool) {
	for _, p := range m.Pairs {
		if !f(p.Key, p.Value) {
			return
		}
	}
}

// rehydrate rebuilds the lookup index after a gob round-trip, since the unexported inner map
// is not itself serialized.
func (m *Map[K, V]) rehydrate() {
	if len(m.Pairs) == len(m.inner) {
		return
	}
	m.inner = make(map[K]*Pair[K, V], len(m.Pairs))
	for _, p := range m.Pairs {
		m.inner[p.Key] = p
	}
}
