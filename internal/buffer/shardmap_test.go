package buffer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bridgescan/interchain-indexer/internal/domain/model"
)

func TestMap_MutateMissingKey(t *testing.T) {
	m := NewMap[*stubState]()

	called := false
	found, err := m.Mutate(model.NewMessageKey(1, 1), func(*Item[*stubState]) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, found)
	assert.False(t, called)
}

func TestMap_MutateOrInsertKeepsExisting(t *testing.T) {
	m := NewMap[*stubState]()
	key := model.NewMessageKey(1, 1)

	first := newItem(&stubState{Counter: 1}, time.Now())
	err := m.MutateOrInsert(key, first, func(*Item[*stubState]) error { return nil })
	require.NoError(t, err)

	// A second candidate for the same key must be discarded.
	loser := newItem(&stubState{Counter: 99}, time.Now())
	err = m.MutateOrInsert(key, loser, func(item *Item[*stubState]) error {
		item.Inner.Counter++
		return nil
	})
	require.NoError(t, err)

	item, ok := m.Get(key)
	require.True(t, ok)
	assert.Equal(t, uint64(2), item.Inner.Counter)
	assert.Equal(t, 1, m.Len())
}

func TestMap_SnapshotIsolatedFromLaterMutations(t *testing.T) {
	m := NewMap[*stubState]()
	key := model.NewMessageKey(1, 1)

	require.NoError(t, m.MutateOrInsert(key, newItem(&stubState{Counter: 1}, time.Now()), func(item *Item[*stubState]) error {
		item.touch()
		return nil
	}))

	snap := m.Snapshot()
	require.Len(t, snap, 1)

	_, err := m.Mutate(key, func(item *Item[*stubState]) error {
		item.Inner.Counter = 42
		item.recordBlock(1, 100)
		item.touch()
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, uint64(1), snap[0].Item.Inner.Counter)
	assert.Equal(t, uint64(1), snap[0].Item.Version)
	assert.Empty(t, snap[0].Item.TouchedBlocks)
}

func TestMap_RemoveIfVersion(t *testing.T) {
	m := NewMap[*stubState]()
	key := model.NewMessageKey(1, 1)

	require.NoError(t, m.MutateOrInsert(key, newItem(&stubState{}, time.Now()), func(item *Item[*stubState]) error {
		item.touch()
		return nil
	}))

	assert.False(t, m.RemoveIfVersion(key, 99), "version mismatch must not remove")
	assert.Equal(t, 1, m.Len())

	assert.True(t, m.RemoveIfVersion(key, 1))
	assert.Equal(t, 0, m.Len())

	assert.False(t, m.RemoveIfVersion(key, 1), "already removed")
}

func TestMap_MutateIfVersion(t *testing.T) {
	m := NewMap[*stubState]()
	key := model.NewMessageKey(1, 1)

	require.NoError(t, m.MutateOrInsert(key, newItem(&stubState{}, time.Now()), func(item *Item[*stubState]) error {
		item.touch()
		return nil
	}))

	assert.False(t, m.MutateIfVersion(key, 2, func(item *Item[*stubState]) {
		item.LastFlushedVersion = 2
	}))

	assert.True(t, m.MutateIfVersion(key, 1, func(item *Item[*stubState]) {
		item.LastFlushedVersion = 1
	}))

	item, ok := m.Get(key)
	require.True(t, ok)
	assert.False(t, item.isDirty())
}

func TestMap_LenSpansShards(t *testing.T) {
	m := NewMapWithShardCount[*stubState](4)

	for i := int64(0); i < 100; i++ {
		key := model.NewMessageKey(i, model.BridgeID(i%3))
		require.NoError(t, m.MutateOrInsert(key, newItem(&stubState{}, time.Now()), func(*Item[*stubState]) error {
			return nil
		}))
	}
	assert.Equal(t, 100, m.Len())
	assert.Len(t, m.Snapshot(), 100)
}
