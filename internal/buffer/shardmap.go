package buffer

import (
	"encoding/binary"
	"hash/fnv"
	"sync"

	"github.com/bridgescan/interchain-indexer/internal/domain/model"
)

const defaultShardCount = 16

// Map is the hot tier: message keys to buffered items, distributed across
// FNV-hashed shards so mutations of distinct keys rarely contend. There is no
// global lock; only keys hashing to the same shard share one.
type Map[T Consolidable[T]] struct {
	shards []*mapShard[T]
	count  int
}

type mapShard[T Consolidable[T]] struct {
	mu    sync.Mutex
	items map[model.MessageKey]*Item[T]
}

// Entry is one key/item pair copied out of the map at snapshot time.
type Entry[T Consolidable[T]] struct {
	Key  model.MessageKey
	Item Item[T]
}

func NewMap[T Consolidable[T]]() *Map[T] {
	return NewMapWithShardCount[T](defaultShardCount)
}

func NewMapWithShardCount[T Consolidable[T]](shardCount int) *Map[T] {
	if shardCount <= 0 {
		shardCount = defaultShardCount
	}
	shards := make([]*mapShard[T], shardCount)
	for i := range shards {
		shards[i] = &mapShard[T]{items: make(map[model.MessageKey]*Item[T])}
	}
	return &Map[T]{shards: shards, count: shardCount}
}

func (m *Map[T]) shard(key model.MessageKey) *mapShard[T] {
	var buf [10]byte
	binary.BigEndian.PutUint64(buf[:8], uint64(key.MessageID))
	binary.BigEndian.PutUint16(buf[8:], uint16(key.BridgeID))
	h := fnv.New32a()
	h.Write(buf[:])
	return m.shards[int(h.Sum32())%m.count]
}

// Mutate applies fn to the item under its shard lock. It reports whether the
// key was present; fn is not called otherwise. An error from fn leaves the
// item in whatever state fn produced before failing.
func (m *Map[T]) Mutate(key model.MessageKey, fn func(*Item[T]) error) (bool, error) {
	s := m.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[key]
	if !ok {
		return false, nil
	}
	return true, fn(item)
}

// MutateOrInsert applies fn to the existing item, or inserts candidate first
// when the key is absent. This mirrors an occupied-or-vacant entry check: if
// another task inserted the key between the caller's miss and this call, the
// existing item wins and candidate is discarded.
func (m *Map[T]) MutateOrInsert(key model.MessageKey, candidate *Item[T], fn func(*Item[T]) error) error {
	s := m.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[key]
	if !ok {
		item = candidate
		s.items[key] = item
	}
	return fn(item)
}

// Snapshot copies every entry, each under its shard lock, so callers can
// classify items without blocking ingestion on other keys. The copies are
// consistent per item, not across items.
func (m *Map[T]) Snapshot() []Entry[T] {
	entries := make([]Entry[T], 0, m.Len())
	for _, s := range m.shards {
		s.mu.Lock()
		for key, item := range s.items {
			entries = append(entries, Entry[T]{Key: key, Item: item.clone()})
		}
		s.mu.Unlock()
	}
	return entries
}

// RemoveIfVersion removes the entry only if its current version equals
// expected, reporting whether removal happened. A mismatch means the entry
// was mutated after the caller observed it and must stay hot.
func (m *Map[T]) RemoveIfVersion(key model.MessageKey, expected uint64) bool {
	s := m.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[key]
	if !ok || item.Version != expected {
		return false
	}
	delete(s.items, key)
	return true
}

// MutateIfVersion applies fn only if the entry exists and its version still
// equals expected.
func (m *Map[T]) MutateIfVersion(key model.MessageKey, expected uint64, fn func(*Item[T])) bool {
	s := m.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[key]
	if !ok || item.Version != expected {
		return false
	}
	fn(item)
	return true
}

// Get returns a copy of the item for key.
func (m *Map[T]) Get(key model.MessageKey) (Item[T], bool) {
	s := m.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[key]
	if !ok {
		var zero Item[T]
		return zero, false
	}
	return item.clone(), true
}

// Len returns the total number of hot entries across all shards.
func (m *Map[T]) Len() int {
	total := 0
	for _, s := range m.shards {
		s.mu.Lock()
		total += len(s.items)
		s.mu.Unlock()
	}
	return total
}
