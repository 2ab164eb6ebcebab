package store_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pncheck/pncheck/net"
	"github.com/pncheck/pncheck/store"
)

func TestInternDeduplicates(t *testing.T) {
	s := store.New(3, 0, false)
	id0, fresh0, err := s.Intern(net.Marking{1, 0, 0}, 0, -1)
	require.NoError(t, err)
	require.True(t, fresh0)

	id1, fresh1, err := s.Intern(net.Marking{1, 0, 0}, 0, -1)
	require.NoError(t, err)
	require.False(t, fresh1)
	require.Equal(t, id0, id1)

	id2, fresh2, err := s.Intern(net.Marking{0, 1, 0}, 0, -1)
	require.NoError(t, err)
	require.True(t, fresh2)
	require.NotEqual(t, id0, id2)

	require.Equal(t, 2, s.Len())
}

func TestInternRespectsBound(t *testing.T) {
	s := store.New(2, 1, false)
	_, _, err := s.Intern(net.Marking{1, 0}, 0, -1)
	require.NoError(t, err)

	_, _, err = s.Intern(net.Marking{1, 1}, 0, -1)
	require.Error(t, err)
	require.True(t, errors.Is(err, store.ErrBoundExceeded))
}

func TestHistoryRecordsParentAndTransition(t *testing.T) {
	s := store.New(1, 0, true)
	root, _, err := s.Intern(net.Marking{0}, 0, -1)
	require.NoError(t, err)

	child, fresh, err := s.Intern(net.Marking{1}, root, 7)
	require.NoError(t, err)
	require.True(t, fresh)
	require.Equal(t, root, s.Parent(child))
	require.Equal(t, 7, s.Transition(child))
	require.Equal(t, -1, s.Transition(root))
}

func TestStatsTracksMaxima(t *testing.T) {
	s := store.New(2, 0, false)
	_, _, _ = s.Intern(net.Marking{3, 1}, 0, -1)
	_, _, _ = s.Intern(net.Marking{1, 9}, 0, -1)

	stats := s.Stats()
	require.Equal(t, 2, stats.Discovered)
	require.Equal(t, uint64(9), stats.MaxTokens)
	require.Equal(t, []uint64{3, 9}, stats.MaxPerPlace)
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := store.New(3, 0, true)
	root, _, _ := s.Intern(net.Marking{1, 0, 0}, 0, -1)
	_, _, _ = s.Intern(net.Marking{0, 1, 0}, root, 2)
	_, _, _ = s.Intern(net.Marking{0, 0, 5}, root, 3)

	data, err := s.Snapshot()
	require.NoError(t, err)

	restored, err := store.Restore(data)
	require.NoError(t, err)
	require.Equal(t, s.Len(), restored.Len())

	for id := store.ID(0); int(id) < s.Len(); id++ {
		require.Equal(t, s.Marking(store.ID(id)), restored.Marking(store.ID(id)))
	}

	id, fresh, err := restored.Intern(net.Marking{1, 0, 0}, 0, -1)
	require.NoError(t, err)
	require.False(t, fresh)
	require.Equal(t, root, id)
}

func TestSparseAndDenseEncodingsBothDeduplicate(t *testing.T) {
	s := store.New(10, 0, false)
	sparse := net.Marking{0, 0, 0, 0, 0, 0, 0, 0, 0, 3}
	dense := net.Marking{1, 1, 1, 1, 1, 1, 0, 0, 0, 3}

	id0, _, err := s.Intern(sparse, 0, -1)
	require.NoError(t, err)
	id1, _, err := s.Intern(dense, 0, -1)
	require.NoError(t, err)
	require.NotEqual(t, id0, id1)

	_, fresh, err := s.Intern(net.Marking{0, 0, 0, 0, 0, 0, 0, 0, 0, 3}, 0, -1)
	require.NoError(t, err)
	require.False(t, fresh)
}
