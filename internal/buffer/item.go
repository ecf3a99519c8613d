package buffer

import (
	"time"

	"github.com/bridgescan/interchain-indexer/internal/domain/model"
)

// Consolidable converts accumulated partial observations into a consolidated
// database record.
//
// Returning (nil, nil) means the state is not yet consolidatable (e.g. the
// initiating send event has not been observed). The buffer keeps the entry in
// hot/cold storage and tries again on a later cycle. The implementation
// decides when a record becomes final.
//
// Clone must return an independent copy; maintenance consolidates snapshot
// copies while ingestion keeps mutating the live entry.
type Consolidable[T any] interface {
	Consolidate(key model.MessageKey) (*model.ConsolidatedRecord, error)
	Clone() T
}

// Item is one hot-tier entry: the bridge-specific working state plus the
// bookkeeping the maintenance cycle needs.
type Item[T Consolidable[T]] struct {
	Inner T `json:"inner"`
	// TouchedBlocks records, per chain, every block that contributed an
	// observation to this entry. Used for conservative checkpoint updates.
	TouchedBlocks map[model.ChainID][]model.BlockNumber `json:"touched_blocks"`
	// Version is bumped by every mutation; removal and flush-marking are
	// gated on it to detect concurrent updates.
	Version uint64 `json:"version"`
	// LastFlushedVersion is the Version that was last written to final
	// storage, used to skip re-upserting unchanged partial results.
	LastFlushedVersion uint64 `json:"last_flushed_version"`
	// HotSince is when the entry last became hot (created or re-admitted
	// from cold storage). Not persisted: restore resets it to now so a
	// re-admitted entry gets a full TTL in memory.
	HotSince time.Time `json:"-"`
}

func newItem[T Consolidable[T]](inner T, now time.Time) *Item[T] {
	return &Item[T]{
		Inner:         inner,
		TouchedBlocks: make(map[model.ChainID][]model.BlockNumber),
		HotSince:      now,
	}
}

// recordBlock notes that data from the given chain/block was folded in.
func (it *Item[T]) recordBlock(chainID model.ChainID, block model.BlockNumber) {
	if it.TouchedBlocks == nil {
		it.TouchedBlocks = make(map[model.ChainID][]model.BlockNumber)
	}
	it.TouchedBlocks[chainID] = append(it.TouchedBlocks[chainID], block)
}

// touch marks the entry as modified.
func (it *Item[T]) touch() {
	it.Version++
}

// isDirty reports whether the entry changed since the last successful flush.
func (it *Item[T]) isDirty() bool {
	return it.Version > it.LastFlushedVersion
}

// clone returns a copy safe to read while the original keeps mutating.
func (it *Item[T]) clone() Item[T] {
	touched := make(map[model.ChainID][]model.BlockNumber, len(it.TouchedBlocks))
	for chainID, blocks := range it.TouchedBlocks {
		touched[chainID] = append([]model.BlockNumber(nil), blocks...)
	}
	return Item[T]{
		Inner:              it.Inner.Clone(),
		TouchedBlocks:      touched,
		Version:            it.Version,
		LastFlushedVersion: it.LastFlushedVersion,
		HotSince:           it.HotSince,
	}
}
