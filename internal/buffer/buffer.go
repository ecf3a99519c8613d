// Package buffer implements a tiered store for in-flight cross-chain message
// state. Recently touched entries live in a sharded in-memory hot tier;
// entries idle past a TTL are offloaded to a pending table in Postgres and
// restored on demand. A periodic maintenance cycle consolidates dirty
// entries into final storage and advances per-chain scan checkpoints.
package buffer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/bridgescan/interchain-indexer/internal/domain/model"
	"github.com/bridgescan/interchain-indexer/internal/metrics"
	"github.com/bridgescan/interchain-indexer/internal/store"
	"github.com/bridgescan/interchain-indexer/internal/tracing"
)

// Config holds the buffer's two tuning knobs.
type Config struct {
	// HotTTL is how long an entry may sit unchanged in the hot tier before
	// maintenance offloads it to the pending table.
	HotTTL time.Duration
	// MaintenanceInterval is the period of the background maintenance loop.
	MaintenanceInterval time.Duration
}

// Notifier receives finalized records after each committed maintenance
// cycle. Publishing is best-effort; failures are logged, not retried.
type Notifier interface {
	PublishFinalized(ctx context.Context, records []model.ConsolidatedRecord) error
}

// Buffer is safe for concurrent use; per-message updates are serialized by
// the underlying sharded map.
type Buffer[T Consolidable[T]] struct {
	hot      *Map[T]
	cfg      Config
	pending  store.PendingReader
	maint    store.MaintenanceStore
	notifier Notifier
	newState func() T

	logger *slog.Logger
	tracer trace.Tracer

	maintenanceMu sync.Mutex
	nowFn         func() time.Time
}

// Option configures optional Buffer collaborators.
type Option[T Consolidable[T]] func(*Buffer[T])

// WithNotifier publishes finalized records after each maintenance commit.
func WithNotifier[T Consolidable[T]](n Notifier) Option[T] {
	return func(b *Buffer[T]) { b.notifier = n }
}

// WithClock overrides the staleness clock. Used in tests.
func WithClock[T Consolidable[T]](now func() time.Time) Option[T] {
	return func(b *Buffer[T]) { b.nowFn = now }
}

// New builds a buffer. newState produces an empty consolidation state; it is
// called when a key is seen for the first time and before restoring a cold
// payload. No cold data is loaded eagerly.
func New[T Consolidable[T]](
	cfg Config,
	pending store.PendingReader,
	maint store.MaintenanceStore,
	newState func() T,
	logger *slog.Logger,
	opts ...Option[T],
) *Buffer[T] {
	b := &Buffer[T]{
		hot:      NewMap[T](),
		cfg:      cfg,
		pending:  pending,
		maint:    maint,
		newState: newState,
		logger:   logger.With("component", "message_buffer"),
		tracer:   tracing.Tracer("message_buffer"),
		nowFn:    time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Alter gets or creates the entry for key, applies mutate to its inner
// state, and records the chain/block that produced the update. Every call
// bumps the entry version so maintenance can detect concurrent changes.
//
// Missing entries are restored from the pending table before falling back
// to a fresh state.
func (b *Buffer[T]) Alter(
	ctx context.Context,
	key model.MessageKey,
	chainID model.ChainID,
	block model.BlockNumber,
	mutate func(state T) error,
) error {
	apply := func(item *Item[T]) error {
		if err := mutate(item.Inner); err != nil {
			return err
		}
		item.recordBlock(chainID, block)
		item.touch()
		return nil
	}

	// Fast path: entry already hot.
	found, err := b.hot.Mutate(key, apply)
	if err != nil || found {
		return err
	}

	candidate, err := b.restore(ctx, key)
	if err != nil {
		return err
	}
	return b.hot.MutateOrInsert(key, candidate, apply)
}

// restore fetches the cold payload for key, or builds a fresh item on miss.
// A restored entry gets a full TTL: HotSince is reset to now regardless of
// what the payload carried.
func (b *Buffer[T]) restore(ctx context.Context, key model.MessageKey) (*Item[T], error) {
	payload, found, err := b.pending.GetPending(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("restore pending entry %d/%d: %w", key.MessageID, key.BridgeID, err)
	}

	bridge := strconv.Itoa(int(key.BridgeID))
	item := newItem(b.newState(), b.nowFn())
	if !found {
		metrics.BufferRestoreTotal.WithLabelValues(bridge, "miss").Inc()
		return item, nil
	}

	if err := json.Unmarshal(payload, item); err != nil {
		return nil, fmt.Errorf("decode pending entry %d/%d: %w", key.MessageID, key.BridgeID, err)
	}
	metrics.BufferRestoreTotal.WithLabelValues(bridge, "hit").Inc()
	return item, nil
}

// Get returns a copy of the hot-tier entry for key, if present. It does not
// consult the cold tier.
func (b *Buffer[T]) Get(key model.MessageKey) (Item[T], bool) {
	return b.hot.Get(key)
}

// Len reports the number of hot-tier entries.
func (b *Buffer[T]) Len() int {
	return b.hot.Len()
}

// Run drives the maintenance loop until ctx is canceled. Cycle failures are
// logged and counted; the loop keeps going.
func (b *Buffer[T]) Run(ctx context.Context) error {
	ticker := time.NewTicker(b.cfg.MaintenanceInterval)
	defer ticker.Stop()

	b.logger.Info("maintenance loop started",
		"interval", b.cfg.MaintenanceInterval,
		"hot_ttl", b.cfg.HotTTL,
	)

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("maintenance loop stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := b.RunMaintenance(ctx); err != nil {
				metrics.BufferMaintenanceErrorsTotal.Inc()
				b.logger.Error("buffer maintenance failed", "error", err)
			}
		}
	}
}
