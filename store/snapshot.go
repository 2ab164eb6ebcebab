package store

import (
	"bytes"
	"encoding/gob"
	"errors"

	"github.com/klauspost/compress/s2"

	"github.com/pncheck/pncheck/net"
)

// snapshotPayload is the gob-encoded shape of a Store, grounded directly on
// inference/inferred_map.go's InferredMap.GobEncode/GobDecode pattern (encode the plain data,
// wrap the byte stream in an s2 writer/reader).
type snapshotPayload struct {
	NumPlaces  int
	Bound      uint64
	History    bool
	Markings   []net.Marking
	Parent     []ID
	Transition []int
	MaxPerPlace []uint64
	MaxTokens  uint64
}

// Snapshot serializes the store's full state (every interned marking plus history, if recorded)
// as an s2-compressed gob stream.
func (s *Store) Snapshot() (b []byte, err error) {
	payload := snapshotPayload{
		NumPlaces:   s.numPlaces,
		Bound:       s.bound,
		History:     s.history,
		Markings:    s.markings,
		Parent:      s.parent,
		Transition:  s.transition,
		MaxPerPlace: s.maxPerPlace,
		MaxTokens:   s.maxTokens,
	}

	var buf bytes.Buffer
	writer := s2.NewWriter(&buf)
	defer func() {
		if cerr := writer.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	if err := gob.NewEncoder(writer).Encode(payload); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Restore rebuilds a Store from a byte stream produced by Snapshot, re-deriving the interning
// index from the recovered markings.
func Restore(data []byte) (*Store, error) {
	var payload snapshotPayload
	buf := bytes.NewBuffer(data)
	if err := gob.NewDecoder(s2.NewReader(buf)).Decode(&payload); err != nil {
		return nil, err
	}

	s := New(payload.NumPlaces, payload.Bound, payload.History)
	for i, m := range payload.Markings {
		key, err := encodeKey(m)
		if err != nil {
			return nil, err
		}
		s.index.Store(string(key), ID(i))
	}
	s.markings = payload.Markings
	s.parent = payload.Parent
	s.transition = payload.Transition
	s.maxPerPlace = payload.MaxPerPlace
	s.maxTokens = payload.MaxTokens
	return s, nil
}
