// Package store implements explicit-state marking interning (spec.md §4.2, component C3): a
// canonical encoder, deduplication through an insertion-ordered map keyed by the encoded bytes
// (there is no trie), dense monotonic 64-bit ids, optional parent/transition history for trace
// reconstruction, and k-bound enforcement.
//
// The interning table reuses the teacher's ordered-map-backed-by-a-plain-map idiom
// (inference/inferred_map.go's InferredMap wraps a util/orderedmap.Map the same way Store wraps
// one here), and the gob+s2 snapshot format is lifted directly from InferredMap.GobEncode/
// GobDecode.
package store

import (
	"errors"
	"fmt"

	"github.com/pncheck/pncheck/net"
	"github.com/pncheck/pncheck/util/orderedmap"
)

// ErrBoundExceeded is returned by Intern when a new marking's token sum exceeds the store's
// configured k-bound (config.Options.KBound, 0 meaning unbounded).
var ErrBoundExceeded = errors.New("store: k-bound exceeded")

// ErrKeyTooLong is returned when a marking's canonical encoding exceeds config.MaxKeyBits bits,
// the 16-bit trie key-length field spec.md §4.2 reserves.
var ErrKeyTooLong = errors.New("store: encoded key exceeds maximum key length")

// ID is a dense, monotonically increasing identifier assigned to each distinct marking the store
// has interned, starting at 0 for the initial marking.
type ID uint64

// Stats summarizes token-count statistics gathered across every interned marking, as reported by
// Store.Stats; the encoder's dense/sparse choice does not use them.
type Stats struct {
	Discovered   int
	MaxTokens    uint64
	MaxPerPlace  []uint64
}

// Store interns markings of a fixed-size net, assigning each distinct one a dense ID. It
// optionally records parent/transition history so a discovered marking's firing sequence from
// the initial marking can be replayed by the trace package.
type Store struct {
	numPlaces int
	bound     uint64 // 0 = unbounded

	index    *orderedmap.Map[string, ID]
	markings []net.Marking

	history    bool
	parent     []ID
	transition []int // transition fired to reach markings[i] from parent[i]; -1 for the root

	maxPerPlace []uint64
	maxTokens   uint64
}

// New creates a Store for a net with numPlaces places. bound is the k-bound: the largest token
// sum a newly interned marking may carry (0 disables the check). If history is true, Store records enough
// information for trace.Reconstruct to replay a path back to the initial marking.
func New(numPlaces int, bound uint64, history bool) *Store {
	return &Store{
		numPlaces:   numPlaces,
		bound:       bound,
		index:       orderedmap.New[string, ID](),
		history:     history,
		maxPerPlace: make([]uint64, numPlaces),
	}
}

// Intern records m (cloning it) if not already known, returning its ID and whether it was newly
// discovered. parent/transition are recorded only when history was requested at New, and are
// ignored for the very first marking interned (the root).
func (s *Store) Intern(m net.Marking, parent ID, transition int) (ID, bool, error) {
	key, err := encodeKey(m)
	if err != nil {
		return 0, false, err
	}
	if id, ok := s.index.Load(string(key)); ok {
		return id, false, nil
	}
	if s.bound != 0 {
		var sum uint64
		for _, v := range m {
			sum += v
		}
		if sum > s.bound {
			return 0, false, fmt.Errorf("%w: bound is %d", ErrBoundExceeded, s.bound)
		}
	}

	id := ID(len(s.markings))
	s.index.Store(string(key), id)
	s.markings = append(s.markings, m.Clone())
	s.updateStats(m)

	if s.history {
		if id == 0 {
			s.parent = append(s.parent, 0)
			s.transition = append(s.transition, -1)
		} else {
			s.parent = append(s.parent, parent)
			s.transition = append(s.transition, transition)
		}
	}
	return id, true, nil
}

func (s *Store) updateStats(m net.Marking) {
	for i, v := range m {
		if v > s.maxPerPlace[i] {
			s.maxPerPlace[i] = v
		}
		if v > s.maxTokens {
			s.maxTokens = v
		}
	}
}

// Marking returns the marking interned under id.
func (s *Store) Marking(id ID) net.Marking {
	return s.markings[id]
}

// Len reports how many distinct markings have been interned so far.
func (s *Store) Len() int { return len(s.markings) }

// Parent and Transition return the history recorded for id; valid only when the store was
// created with history enabled. Transition is -1 for the root marking.
func (s *Store) Parent(id ID) ID        { return s.parent[id] }
func (s *Store) Transition(id ID) int   { return s.transition[id] }
func (s *Store) HasHistory() bool       { return s.history }

// Stats reports token-count statistics gathered across all interned markings.
func (s *Store) Stats() Stats {
	return Stats{
		Discovered:  len(s.markings),
		MaxTokens:   s.maxTokens,
		MaxPerPlace: append([]uint64(nil), s.maxPerPlace...),
	}
}
