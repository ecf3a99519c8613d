package buffer

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/bridgescan/interchain-indexer/internal/domain/model"
	"github.com/bridgescan/interchain-indexer/internal/metrics"
	"github.com/bridgescan/interchain-indexer/internal/store"
)

// consolidationOutcome classifies a hot entry during maintenance planning.
type consolidationOutcome int

const (
	// outcomeUnchanged: nothing new since the last flush.
	outcomeUnchanged consolidationOutcome = iota
	// outcomeNotReady: dirty, but the state cannot consolidate yet.
	outcomeNotReady
	// outcomePartial: consolidatable but more updates are expected.
	outcomePartial
	// outcomeComplete: consolidatable and final.
	outcomeComplete
)

type evictionReason int

const (
	reasonStale evictionReason = iota
	reasonFinalized
)

func (r evictionReason) String() string {
	if r == reasonFinalized {
		return "finalized"
	}
	return "stale"
}

// cycleCounts holds per-bridge statistics for one maintenance cycle.
type cycleCounts struct {
	finalizedMessages    int
	finalizedTransfers   int
	hotEntries           int
	notConsolidatable    int
	stale                int
	consolidatedNotFinal int
	removedStale         int
	removedFinalized     int
	skippedModified      int
}

func (c cycleCounts) add(other cycleCounts) cycleCounts {
	return cycleCounts{
		finalizedMessages:    c.finalizedMessages + other.finalizedMessages,
		finalizedTransfers:   c.finalizedTransfers + other.finalizedTransfers,
		hotEntries:           c.hotEntries + other.hotEntries,
		notConsolidatable:    c.notConsolidatable + other.notConsolidatable,
		stale:                c.stale + other.stale,
		consolidatedNotFinal: c.consolidatedNotFinal + other.consolidatedNotFinal,
		removedStale:         c.removedStale + other.removedStale,
		removedFinalized:     c.removedFinalized + other.removedFinalized,
		skippedModified:      c.skippedModified + other.skippedModified,
	}
}

// bridgeCounts aggregates cycle statistics per bridge.
type bridgeCounts map[model.BridgeID]*cycleCounts

func (b bridgeCounts) entry(bridgeID model.BridgeID) *cycleCounts {
	c, ok := b[bridgeID]
	if !ok {
		c = &cycleCounts{}
		b[bridgeID] = c
	}
	return c
}

func (b bridgeCounts) totals() cycleCounts {
	var total cycleCounts
	for _, c := range b {
		total = total.add(*c)
	}
	return total
}

func (b bridgeCounts) recordMetrics() {
	for bridgeID, stats := range b {
		bridge := strconv.Itoa(int(bridgeID))

		metrics.BufferMaintenanceEntries.WithLabelValues(bridge, "not_consolidatable").Set(float64(stats.notConsolidatable))
		metrics.BufferMaintenanceEntries.WithLabelValues(bridge, "consolidated_not_final").Set(float64(stats.consolidatedNotFinal))
		metrics.BufferMaintenanceEntries.WithLabelValues(bridge, "stale").Set(float64(stats.stale))

		metrics.BufferEvictedEntries.WithLabelValues(bridge, "stale").Observe(float64(stats.removedStale))
		metrics.BufferEvictedEntries.WithLabelValues(bridge, "finalized").Observe(float64(stats.removedFinalized))
		metrics.BufferEvictionSkippedTotal.WithLabelValues(bridge).Add(float64(stats.skippedModified))

		metrics.BufferMessagesFinalizedTotal.WithLabelValues(bridge).Add(float64(stats.finalizedMessages))
		metrics.BufferTransfersFinalizedTotal.WithLabelValues(bridge).Add(float64(stats.finalizedTransfers))

		metrics.BufferHotEntries.WithLabelValues(bridge).Set(float64(stats.hotEntries))
	}
}

type flushMark struct {
	key     model.MessageKey
	version uint64
}

type eviction struct {
	key     model.MessageKey
	version uint64
	reason  evictionReason
}

// maintenancePlan is the read-only phase output: everything the commit phase
// will persist plus the in-memory follow-ups applied after commit.
type maintenancePlan[T Consolidable[T]] struct {
	consolidated  []model.ConsolidatedRecord
	staleEntries  []Entry[T]
	finalizedKeys []model.MessageKey
	flushMarks    []flushMark
	evictions     []eviction
	cursors       CursorBuilder
	stats         bridgeCounts
}

func newMaintenancePlan[T Consolidable[T]]() *maintenancePlan[T] {
	return &maintenancePlan[T]{stats: make(bridgeCounts)}
}

func (p *maintenancePlan[T]) collectStale(key model.MessageKey, item Item[T]) {
	p.staleEntries = append(p.staleEntries, Entry[T]{Key: key, Item: item})
	p.evictions = append(p.evictions, eviction{key: key, version: item.Version, reason: reasonStale})
	p.stats.entry(key.BridgeID).stale++
	p.cursors.MergeCold(key.BridgeID, item.TouchedBlocks)
}

func (p *maintenancePlan[T]) collectHot(key model.MessageKey, item Item[T]) {
	p.stats.entry(key.BridgeID).hotEntries++
	p.cursors.MergeHot(key.BridgeID, item.TouchedBlocks)
}

func (p *maintenancePlan[T]) collect(key model.MessageKey, item Item[T], outcome consolidationOutcome, record *model.ConsolidatedRecord, isStale bool) {
	bridgeID := key.BridgeID

	switch outcome {
	case outcomeUnchanged:
		// Falls through to staleness handling below.
	case outcomeNotReady:
		p.stats.entry(bridgeID).notConsolidatable++
	case outcomePartial:
		p.consolidated = append(p.consolidated, *record)
		p.flushMarks = append(p.flushMarks, flushMark{key: key, version: item.Version})
		p.stats.entry(bridgeID).consolidatedNotFinal++
	case outcomeComplete:
		// A final record leaves the hot tier regardless of age.
		p.consolidated = append(p.consolidated, *record)
		p.finalizedKeys = append(p.finalizedKeys, key)
		p.evictions = append(p.evictions, eviction{key: key, version: item.Version, reason: reasonFinalized})
		stats := p.stats.entry(bridgeID)
		stats.finalizedMessages++
		stats.finalizedTransfers += len(record.Transfers)
		p.cursors.MergeCold(bridgeID, item.TouchedBlocks)
		return
	}

	if isStale {
		p.collectStale(key, item)
	} else {
		p.collectHot(key, item)
	}
}

func classify[T Consolidable[T]](key model.MessageKey, item Item[T]) (consolidationOutcome, *model.ConsolidatedRecord, error) {
	if !item.isDirty() {
		return outcomeUnchanged, nil, nil
	}

	record, err := item.Inner.Consolidate(key)
	if err != nil {
		return 0, nil, fmt.Errorf("consolidate %d/%d: %w", key.MessageID, key.BridgeID, err)
	}
	switch {
	case record == nil:
		return outcomeNotReady, nil, nil
	case record.IsFinal:
		return outcomeComplete, record, nil
	default:
		return outcomePartial, record, nil
	}
}

// RunMaintenance executes one maintenance cycle: plan from a hot-tier
// snapshot, commit the plan in a single database transaction, then apply
// flush marks and evictions in memory. Only one cycle runs at a time.
//
// Evictions and flush marks both compare the version captured during
// planning and skip entries mutated since the snapshot, so no concurrent
// update is lost.
func (b *Buffer[T]) RunMaintenance(ctx context.Context) error {
	b.maintenanceMu.Lock()
	defer b.maintenanceMu.Unlock()

	ctx, span := b.tracer.Start(ctx, "buffer.maintenance")
	defer span.End()

	start := time.Now()

	plan, err := b.planMaintenance()
	if err != nil {
		return err
	}

	cursors, err := b.commitMaintenance(ctx, plan)
	if err != nil {
		return err
	}

	b.applyFlushMarks(plan.flushMarks)
	b.evict(plan.evictions, plan.stats)

	totals := plan.stats.totals()
	b.logger.Info("maintenance completed",
		"hot_len", b.hot.Len(),
		"consolidated", len(plan.consolidated),
		"partial", len(plan.flushMarks),
		"stale", totals.stale,
		"finalized", totals.finalizedMessages,
		"not_consolidatable", totals.notConsolidatable,
		"removed_stale", totals.removedStale,
		"removed_finalized", totals.removedFinalized,
		"skipped", totals.skippedModified,
	)

	plan.stats.recordMetrics()
	recordCursorMetrics(cursors)
	metrics.BufferMaintenanceDuration.Observe(time.Since(start).Seconds())

	b.publishFinalized(ctx, plan.consolidated)
	return nil
}

func (b *Buffer[T]) planMaintenance() (*maintenancePlan[T], error) {
	now := b.nowFn()
	plan := newMaintenancePlan[T]()
	for _, entry := range b.hot.Snapshot() {
		isStale := now.Sub(entry.Item.HotSince) >= b.cfg.HotTTL
		outcome, record, err := classify(entry.Key, entry.Item)
		if err != nil {
			return nil, err
		}
		plan.collect(entry.Key, entry.Item, outcome, record, isStale)
	}
	return plan, nil
}

func (b *Buffer[T]) commitMaintenance(ctx context.Context, plan *maintenancePlan[T]) (map[model.BridgeChain]model.Cursor, error) {
	pending, err := encodePending(plan.staleEntries)
	if err != nil {
		return nil, err
	}

	var cursors map[model.BridgeChain]model.Cursor
	err = b.maint.WithinMaintenanceTx(ctx, func(tx store.MaintenanceTx) error {
		if err := tx.OffloadPending(ctx, pending); err != nil {
			return fmt.Errorf("offload stale entries: %w", err)
		}
		if err := tx.UpsertConsolidated(ctx, plan.consolidated); err != nil {
			return fmt.Errorf("flush consolidated records: %w", err)
		}
		if err := tx.DeletePending(ctx, plan.finalizedKeys); err != nil {
			return fmt.Errorf("delete finalized pending rows: %w", err)
		}

		existing, err := tx.FetchCheckpoints(ctx, plan.cursors.Pairs())
		if err != nil {
			return fmt.Errorf("fetch checkpoints: %w", err)
		}
		cursors = plan.cursors.CalculateUpdates(existing)
		if err := tx.UpsertCheckpoints(ctx, cursors); err != nil {
			return fmt.Errorf("upsert checkpoints: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("maintenance transaction: %w", err)
	}
	return cursors, nil
}

func encodePending[T Consolidable[T]](entries []Entry[T]) ([]store.PendingEntry, error) {
	pending := make([]store.PendingEntry, 0, len(entries))
	for _, entry := range entries {
		payload, err := json.Marshal(entry.Item)
		if err != nil {
			return nil, fmt.Errorf("encode pending entry %d/%d: %w", entry.Key.MessageID, entry.Key.BridgeID, err)
		}
		pending = append(pending, store.PendingEntry{
			Key:      entry.Key,
			Payload:  payload,
			HotSince: entry.Item.HotSince,
		})
	}
	return pending, nil
}

// applyFlushMarks records the flushed version on partial entries still in
// the hot tier. The mark is version-gated: an entry mutated since planning
// keeps its dirty state so its newer data is flushed next cycle.
func (b *Buffer[T]) applyFlushMarks(marks []flushMark) {
	for _, mark := range marks {
		b.hot.MutateIfVersion(mark.key, mark.version, func(item *Item[T]) {
			item.LastFlushedVersion = mark.version
		})
	}
}

// evict removes planned entries from the hot tier unless they were mutated
// after the plan snapshot. Skipped entries are counted back as hot.
func (b *Buffer[T]) evict(evictions []eviction, stats bridgeCounts) {
	for _, ev := range evictions {
		bridgeStats := stats.entry(ev.key.BridgeID)
		if b.hot.RemoveIfVersion(ev.key, ev.version) {
			switch ev.reason {
			case reasonStale:
				bridgeStats.removedStale++
			case reasonFinalized:
				bridgeStats.removedFinalized++
			}
		} else {
			bridgeStats.skippedModified++
			bridgeStats.hotEntries++
		}
	}
}

func recordCursorMetrics(cursors map[model.BridgeChain]model.Cursor) {
	for pair, cursor := range cursors {
		bridge := strconv.Itoa(int(pair.BridgeID))
		chain := strconv.FormatInt(int64(pair.ChainID), 10)
		metrics.BufferCursor.WithLabelValues(bridge, chain, "catchup").Set(float64(cursor.Backward))
		metrics.BufferCursor.WithLabelValues(bridge, chain, "realtime").Set(float64(cursor.Forward))
	}
}

func (b *Buffer[T]) publishFinalized(ctx context.Context, records []model.ConsolidatedRecord) {
	if b.notifier == nil {
		return
	}
	final := make([]model.ConsolidatedRecord, 0, len(records))
	for _, record := range records {
		if record.IsFinal {
			final = append(final, record)
		}
	}
	if len(final) == 0 {
		return
	}
	if err := b.notifier.PublishFinalized(ctx, final); err != nil {
		b.logger.Warn("failed to publish finalized records", "error", err)
	}
}
