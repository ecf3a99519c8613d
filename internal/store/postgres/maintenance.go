package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bridgescan/interchain-indexer/internal/domain/model"
	"github.com/bridgescan/interchain-indexer/internal/store"
)

// MaintenanceRepo executes one maintenance cycle's persistence effects inside
// a single transaction.
type MaintenanceRepo struct {
	db *DB
}

func NewMaintenanceRepo(db *DB) *MaintenanceRepo {
	return &MaintenanceRepo{db: db}
}

var _ store.MaintenanceStore = (*MaintenanceRepo)(nil)

func (r *MaintenanceRepo) WithinMaintenanceTx(ctx context.Context, fn func(tx store.MaintenanceTx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin maintenance tx: %w", err)
	}

	if err := fn(&maintenanceTx{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit maintenance tx: %w", err)
	}
	return nil
}

type maintenanceTx struct {
	tx *sql.Tx
}

var _ store.MaintenanceTx = (*maintenanceTx)(nil)

func (m *maintenanceTx) OffloadPending(ctx context.Context, entries []store.PendingEntry) error {
	for _, e := range entries {
		_, err := m.tx.ExecContext(ctx, `
			INSERT INTO pending_messages (message_id, bridge_id, payload, created_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (message_id, bridge_id) DO UPDATE SET
				payload = EXCLUDED.payload
		`, e.Key.MessageID, e.Key.BridgeID, []byte(e.Payload), e.HotSince)
		if err != nil {
			return fmt.Errorf("upsert pending message (%d, %d): %w", e.Key.MessageID, e.Key.BridgeID, err)
		}
	}
	return nil
}

func (m *maintenanceTx) UpsertConsolidated(ctx context.Context, records []model.ConsolidatedRecord) error {
	for _, rec := range records {
		msg := rec.Message
		_, err := m.tx.ExecContext(ctx, `
			INSERT INTO crosschain_messages (
				id, bridge_id, status, src_chain_id, dst_chain_id,
				src_tx_hash, dst_tx_hash, sender_address, recipient_address,
				payload, last_update_timestamp
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (id, bridge_id) DO UPDATE SET
				status = EXCLUDED.status,
				dst_chain_id = EXCLUDED.dst_chain_id,
				dst_tx_hash = EXCLUDED.dst_tx_hash,
				sender_address = EXCLUDED.sender_address,
				recipient_address = EXCLUDED.recipient_address,
				payload = EXCLUDED.payload,
				last_update_timestamp = EXCLUDED.last_update_timestamp,
				updated_at = now()
		`, msg.ID, msg.BridgeID, msg.Status, msg.SrcChainID, msg.DstChainID,
			msg.SrcTxHash, msg.DstTxHash, msg.SenderAddress, msg.RecipientAddress,
			msg.Payload, msg.LastUpdateTimestamp)
		if err != nil {
			return fmt.Errorf("upsert message (%d, %d): %w", msg.ID, msg.BridgeID, err)
		}

		for _, tr := range rec.Transfers {
			_, err := m.tx.ExecContext(ctx, `
				INSERT INTO crosschain_transfers (
					id, message_id, bridge_id, idx,
					token_address, from_address, to_address, amount
				)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				ON CONFLICT (message_id, bridge_id, idx) DO UPDATE SET
					token_address = EXCLUDED.token_address,
					from_address = EXCLUDED.from_address,
					to_address = EXCLUDED.to_address,
					amount = EXCLUDED.amount
			`, tr.ID, tr.MessageID, tr.BridgeID, tr.Index,
				tr.TokenAddress, tr.FromAddress, tr.ToAddress, tr.Amount)
			if err != nil {
				return fmt.Errorf("upsert transfer (%d, %d, %d): %w", tr.MessageID, tr.BridgeID, tr.Index, err)
			}
		}
	}
	return nil
}

func (m *maintenanceTx) DeletePending(ctx context.Context, keys []model.MessageKey) error {
	for _, key := range keys {
		_, err := m.tx.ExecContext(ctx, `
			DELETE FROM pending_messages
			WHERE message_id = $1 AND bridge_id = $2
		`, key.MessageID, key.BridgeID)
		if err != nil {
			return fmt.Errorf("delete pending message (%d, %d): %w", key.MessageID, key.BridgeID, err)
		}
	}
	return nil
}

func (m *maintenanceTx) FetchCheckpoints(ctx context.Context, pairs []model.BridgeChain) (map[model.BridgeChain]model.Cursor, error) {
	cursors := make(map[model.BridgeChain]model.Cursor, len(pairs))
	for _, pair := range pairs {
		var c model.Cursor
		err := m.tx.QueryRowContext(ctx, `
			SELECT catchup_cursor, realtime_cursor
			FROM indexer_checkpoints
			WHERE bridge_id = $1 AND chain_id = $2
		`, pair.BridgeID, pair.ChainID).Scan(&c.Backward, &c.Forward)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("fetch checkpoint (%d, %d): %w", pair.BridgeID, pair.ChainID, err)
		}
		cursors[pair] = c
	}
	return cursors, nil
}

func (m *maintenanceTx) UpsertCheckpoints(ctx context.Context, cursors map[model.BridgeChain]model.Cursor) error {
	// GREATEST/LEAST keep the forward cursor from regressing and the
	// backward cursor from advancing, even if another writer raced us.
	for pair, c := range cursors {
		_, err := m.tx.ExecContext(ctx, `
			INSERT INTO indexer_checkpoints (bridge_id, chain_id, catchup_cursor, realtime_cursor)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (bridge_id, chain_id) DO UPDATE SET
				catchup_cursor = LEAST(indexer_checkpoints.catchup_cursor, EXCLUDED.catchup_cursor),
				realtime_cursor = GREATEST(indexer_checkpoints.realtime_cursor, EXCLUDED.realtime_cursor),
				updated_at = now()
		`, pair.BridgeID, pair.ChainID, c.Backward, c.Forward)
		if err != nil {
			return fmt.Errorf("upsert checkpoint (%d, %d): %w", pair.BridgeID, pair.ChainID, err)
		}
	}
	return nil
}
