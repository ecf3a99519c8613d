package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/bridgescan/interchain-indexer/internal/domain/model"
)

// TxBeginner abstracts the ability to begin a database transaction.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// PendingEntry is one hot-tier item offloaded to cold storage. Payload is the
// engine's serialized working state; the store treats it as opaque.
type PendingEntry struct {
	Key      model.MessageKey
	Payload  json.RawMessage
	HotSince time.Time
}

// PendingReader reads single cold-tier entries outside the maintenance
// transaction, used to re-hydrate the hot tier on access.
type PendingReader interface {
	// GetPending returns the stored payload for key, or ok=false if the key
	// has no cold-tier row.
	GetPending(ctx context.Context, key model.MessageKey) (payload json.RawMessage, ok bool, err error)
}

// MaintenanceTx groups the persistence effects of one maintenance cycle. All
// methods run inside the single transaction opened by
// MaintenanceStore.WithinMaintenanceTx; if any of them fails the whole cycle
// rolls back.
type MaintenanceTx interface {
	// OffloadPending upserts stale hot-tier entries into pending storage.
	OffloadPending(ctx context.Context, entries []PendingEntry) error
	// UpsertConsolidated writes consolidated records (partial and final) to
	// final storage. Re-applying an identical record is a no-op.
	UpsertConsolidated(ctx context.Context, records []model.ConsolidatedRecord) error
	// DeletePending removes pending rows for keys whose message finalized.
	DeletePending(ctx context.Context, keys []model.MessageKey) error
	// FetchCheckpoints reads the persisted cursor pairs for the given
	// (bridge, chain) pairs. Pairs with no row are absent from the result.
	FetchCheckpoints(ctx context.Context, pairs []model.BridgeChain) (map[model.BridgeChain]model.Cursor, error)
	// UpsertCheckpoints writes new cursor pairs. The store clamps so the
	// realtime cursor never moves backward and the catchup cursor never
	// moves forward, even across racing writers.
	UpsertCheckpoints(ctx context.Context, cursors map[model.BridgeChain]model.Cursor) error
}

// MaintenanceStore runs one maintenance cycle's persistence atomically.
type MaintenanceStore interface {
	WithinMaintenanceTx(ctx context.Context, fn func(tx MaintenanceTx) error) error
}

// MessageReader provides read access to consolidated messages. Used by
// operational tooling and integration tests; the engine itself only writes.
type MessageReader interface {
	GetMessage(ctx context.Context, key model.MessageKey) (*model.Message, error)
	GetTransfers(ctx context.Context, key model.MessageKey) ([]model.Transfer, error)
}
