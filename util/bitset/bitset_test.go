package bitset_test

import (
	"testing"

	"github.com/pncheck/pncheck/util/bitset"
	"github.com/stretchr/testify/require"
)

func TestAddHasRemove(t *testing.T) {
	t.Parallel()

	s := bitset.New()
	require.True(t, s.Add(3))
	require.False(t, s.Add(3))
	require.True(t, s.Has(3))
	require.False(t, s.Has(4))
	require.Equal(t, 1, s.Len())

	require.True(t, s.Remove(3))
	require.False(t, s.Has(3))
	require.False(t, s.Remove(3))
}

func TestEachAscending(t *testing.T) {
	t.Parallel()

	s := bitset.New(5, 1, 3, 1)
	require.Equal(t, []int{1, 3, 5}, s.Slice())

	var seen []int
	s.Each(func(i int) bool {
		seen = append(seen, i)
		return i < 3
	})
	require.Equal(t, []int{1, 3}, seen)
}

func TestReset(t *testing.T) {
	t.Parallel()

	s := bitset.New(1, 2, 3)
	s.Reset()
	require.Equal(t, 0, s.Len())
	require.Empty(t, s.Slice())
}
