package store

import (
	"encoding/binary"
	"fmt"

	"github.com/pncheck/pncheck/config"
	"github.com/pncheck/pncheck/net"
)

// encoding selects between a dense (one varint per place) and a sparse (place-index, value pairs
// for only the nonzero places) wire representation of a marking, mirroring
// original_source/include/PetriEngine/Structures/StateSet.h's variant selection: dense pays off
// when most places carry tokens, sparse when markings are mostly empty.
type encoding uint8

const (
	encodingDense encoding = iota
	encodingSparse
)

// chooseEncoding picks dense when at least half the places are nonzero, sparse otherwise.
func chooseEncoding(m net.Marking) encoding {
	nonzero := 0
	for _, v := range m {
		if v != 0 {
			nonzero++
		}
	}
	if len(m) == 0 || nonzero*2 >= len(m) {
		return encodingDense
	}
	return encodingSparse
}

// encodeKey produces the canonical byte-string key for m: a one-byte encoding tag followed by
// the chosen variant's payload. Two markings compare equal iff their canonical keys are
// byte-identical, which is what Store's interning index relies on.
func encodeKey(m net.Marking) ([]byte, error) {
	enc := chooseEncoding(m)
	buf := make([]byte, 0, config.DefaultEncoderScratchCapacity)
	buf = append(buf, byte(enc))

	switch enc {
	case encodingDense:
		for _, v := range m {
			buf = appendVarint(buf, v)
		}
	case encodingSparse:
		var nonzero int
		for _, v := range m {
			if v != 0 {
				nonzero++
			}
		}
		buf = appendVarint(buf, uint64(nonzero))
		for i, v := range m {
			if v == 0 {
				continue
			}
			buf = appendVarint(buf, uint64(i))
			buf = appendVarint(buf, v)
		}
	}

	if len(buf) > config.MaxKeyBits/8 {
		return nil, fmt.Errorf("%w: encoded key is %d bytes", ErrKeyTooLong, len(buf))
	}
	return buf, nil
}

// decodeKey reconstructs a marking of numPlaces places from a key produced by encodeKey.
func decodeKey(key []byte, numPlaces int) (net.Marking, error) {
	if len(key) == 0 {
		return nil, fmt.Errorf("store: empty key")
	}
	enc := encoding(key[0])
	rest := key[1:]
	m := make(net.Marking, numPlaces)

	switch enc {
	case encodingDense:
		for i := 0; i < numPlaces; i++ {
			v, n, err := readVarint(rest)
			if err != nil {
				return nil, err
			}
			m[i] = v
			rest = rest[n:]
		}
	case encodingSparse:
		count, n, err := readVarint(rest)
		if err != nil {
			return nil, err
		}
		rest = rest[n:]
		for i := uint64(0); i < count; i++ {
			place, n, err := readVarint(rest)
			if err != nil {
				return nil, err
			}
			rest = rest[n:]
			val, n, err := readVarint(rest)
			if err != nil {
				return nil, err
			}
			rest = rest[n:]
			m[place] = val
		}
	default:
		return nil, fmt.Errorf("store: unrecognized encoding tag %d", enc)
	}
	return m, nil
}

func appendVarint(buf []byte, v uint64) []byte {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	return append(buf, tmp[:n]...)
}

func readVarint(buf []byte) (uint64, int, error) {
	v, n := binary.Uvarint(buf)
	if n <= 0 {
		return 0, 0, fmt.Errorf("store: malformed varint in key")
	}
	return v, n, nil
}
