package buffer

import (
	"sort"

	"github.com/bridgescan/interchain-indexer/internal/domain/model"
)

// Cursor derivation for bidirectional scanning.
//
// Blocks touched by entries that were offloaded or finalized this cycle are
// "cold": their work is done and the cursor may sweep across them. Blocks
// touched by entries still in the hot tier are "hot": they carry unresolved
// work and act as barriers the cursor must not cross. Gaps between cold
// blocks count as scanned-but-empty, so a boundary can bridge them right up
// to (but not past) the nearest hot barrier.

// blockSets accumulates per-(bridge, chain) cold and hot blocks for one
// maintenance cycle.
type blockSets struct {
	cold map[model.BlockNumber]struct{}
	hot  map[model.BlockNumber]struct{}
}

func newBlockSets() *blockSets {
	return &blockSets{
		cold: make(map[model.BlockNumber]struct{}),
		hot:  make(map[model.BlockNumber]struct{}),
	}
}

func sortedBlocks(set map[model.BlockNumber]struct{}) []model.BlockNumber {
	blocks := make([]model.BlockNumber, 0, len(set))
	for b := range set {
		blocks = append(blocks, b)
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i] < blocks[j] })
	return blocks
}

// CursorBuilder accumulates touched blocks during planning and derives
// checkpoint updates at commit time. Built fresh each cycle.
type CursorBuilder struct {
	sets map[model.BridgeChain]*blockSets
}

func (b *CursorBuilder) get(pair model.BridgeChain) *blockSets {
	if b.sets == nil {
		b.sets = make(map[model.BridgeChain]*blockSets)
	}
	s, ok := b.sets[pair]
	if !ok {
		s = newBlockSets()
		b.sets[pair] = s
	}
	return s
}

// MergeCold records blocks whose entries leave the hot tier this cycle
// (offloaded or finalized).
func (b *CursorBuilder) MergeCold(bridgeID model.BridgeID, touched map[model.ChainID][]model.BlockNumber) {
	for chainID, blocks := range touched {
		s := b.get(model.BridgeChain{BridgeID: bridgeID, ChainID: chainID})
		for _, block := range blocks {
			s.cold[block] = struct{}{}
		}
	}
}

// MergeHot records blocks whose entries remain in the hot tier.
func (b *CursorBuilder) MergeHot(bridgeID model.BridgeID, touched map[model.ChainID][]model.BlockNumber) {
	for chainID, blocks := range touched {
		s := b.get(model.BridgeChain{BridgeID: bridgeID, ChainID: chainID})
		for _, block := range blocks {
			s.hot[block] = struct{}{}
		}
	}
}

// Pairs lists every (bridge, chain) touched this cycle.
func (b *CursorBuilder) Pairs() []model.BridgeChain {
	pairs := make([]model.BridgeChain, 0, len(b.sets))
	for pair := range b.sets {
		pairs = append(pairs, pair)
	}
	return pairs
}

// CalculateUpdates derives the new cursor per touched pair. Pairs with an
// existing cursor are extended incrementally; pairs without one bootstrap
// from the longest continuous cold range. Untouched pairs are not updated.
func (b *CursorBuilder) CalculateUpdates(existing map[model.BridgeChain]model.Cursor) map[model.BridgeChain]model.Cursor {
	updates := make(map[model.BridgeChain]model.Cursor, len(b.sets))
	for pair, sets := range b.sets {
		cold := sortedBlocks(sets.cold)
		hot := sortedBlocks(sets.hot)
		if cursor, ok := existing[pair]; ok {
			updates[pair] = extendCursor(cursor, cold, hot)
		} else if cursor, ok := bootstrapCursor(cold, hot); ok {
			updates[pair] = cursor
		}
	}
	return updates
}

// bootstrapCursor finds the longest continuous range of cold blocks not
// interrupted by a hot block, for pairs with no persisted cursor yet. Returns
// ok=false when every cold block is also hot (or there are none).
func bootstrapCursor(cold, hot []model.BlockNumber) (model.Cursor, bool) {
	scannable := make([]model.BlockNumber, 0, len(cold))
	for _, b := range cold {
		if !containsBlock(hot, b) {
			scannable = append(scannable, b)
		}
	}
	if len(scannable) == 0 {
		return model.Cursor{}, false
	}

	longestStart := scannable[0]
	longestEnd := scannable[0]
	var longestWidth model.BlockNumber

	currentStart := scannable[0]
	for i := 1; i < len(scannable); i++ {
		prev := scannable[i-1]
		block := scannable[i]

		// A hot block in the gap (prev, block) splits the range.
		if _, ok := lowestIn(hot, prev+1, block); ok {
			currentStart = block
		}

		if span := block - currentStart; span > longestWidth {
			longestWidth = span
			longestStart = currentStart
			longestEnd = block
		}
	}

	return model.Cursor{Backward: longestStart, Forward: longestEnd}, true
}

type scanDirection int

const (
	scanBackward scanDirection = iota
	scanForward
)

func extendCursor(cursor model.Cursor, cold, hot []model.BlockNumber) model.Cursor {
	return model.Cursor{
		Backward: extendBoundary(scanBackward, cursor.Backward, cold, hot),
		Forward:  extendBoundary(scanForward, cursor.Forward, cold, hot),
	}
}

// extendBoundary walks cold blocks away from the current boundary, bridging
// gaps, until it meets a cold block that is itself hot or a hot block inside
// a gap. The boundary lands on the block immediately before the barrier.
func extendBoundary(direction scanDirection, boundary model.BlockNumber, cold, hot []model.BlockNumber) model.BlockNumber {
	newBoundary := boundary
	lastScanned := boundary

	var walk []model.BlockNumber
	if direction == scanBackward {
		// Cold blocks strictly below the boundary, highest first.
		idx := sort.Search(len(cold), func(i int) bool { return cold[i] >= boundary })
		walk = make([]model.BlockNumber, 0, idx)
		for i := idx - 1; i >= 0; i-- {
			walk = append(walk, cold[i])
		}
	} else {
		// Cold blocks strictly above the boundary, lowest first.
		idx := sort.Search(len(cold), func(i int) bool { return cold[i] > boundary })
		walk = cold[idx:]
	}

	for _, block := range walk {
		if containsBlock(hot, block) {
			break
		}

		var barrier model.BlockNumber
		var blocked bool
		if direction == scanBackward {
			barrier, blocked = highestIn(hot, block+1, lastScanned)
		} else {
			barrier, blocked = lowestIn(hot, lastScanned+1, block)
		}
		if blocked {
			if direction == scanBackward {
				newBoundary = barrier + 1
			} else {
				newBoundary = barrier - 1
			}
			break
		}

		newBoundary = block
		lastScanned = block
	}

	return newBoundary
}

func containsBlock(sorted []model.BlockNumber, b model.BlockNumber) bool {
	idx := sort.Search(len(sorted), func(i int) bool { return sorted[i] >= b })
	return idx < len(sorted) && sorted[idx] == b
}

// lowestIn returns the smallest element in the half-open range [lo, hi).
func lowestIn(sorted []model.BlockNumber, lo, hi model.BlockNumber) (model.BlockNumber, bool) {
	idx := sort.Search(len(sorted), func(i int) bool { return sorted[i] >= lo })
	if idx < len(sorted) && sorted[idx] < hi {
		return sorted[idx], true
	}
	return 0, false
}

// highestIn returns the largest element in the half-open range [lo, hi).
func highestIn(sorted []model.BlockNumber, lo, hi model.BlockNumber) (model.BlockNumber, bool) {
	idx := sort.Search(len(sorted), func(i int) bool { return sorted[i] >= hi })
	if idx > 0 && sorted[idx-1] >= lo {
		return sorted[idx-1], true
	}
	return 0, false
}
