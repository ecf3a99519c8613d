package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bridgescan/interchain-indexer/internal/domain/model"
	"github.com/bridgescan/interchain-indexer/internal/store"
)

// MessageRepo provides read access to final storage.
type MessageRepo struct {
	db *DB
}

func NewMessageRepo(db *DB) *MessageRepo {
	return &MessageRepo{db: db}
}

var _ store.MessageReader = (*MessageRepo)(nil)

func (r *MessageRepo) GetMessage(ctx context.Context, key model.MessageKey) (*model.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	var m model.Message
	err := r.db.QueryRowContext(ctx, `
		SELECT id, bridge_id, status, src_chain_id, dst_chain_id,
		       src_tx_hash, dst_tx_hash, sender_address, recipient_address,
		       payload, last_update_timestamp, created_at, updated_at
		FROM crosschain_messages
		WHERE id = $1 AND bridge_id = $2
	`, key.MessageID, key.BridgeID).Scan(
		&m.ID, &m.BridgeID, &m.Status, &m.SrcChainID, &m.DstChainID,
		&m.SrcTxHash, &m.DstTxHash, &m.SenderAddress, &m.RecipientAddress,
		&m.Payload, &m.LastUpdateTimestamp, &m.CreatedAt, &m.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get message (%d, %d): %w", key.MessageID, key.BridgeID, err)
	}
	return &m, nil
}

func (r *MessageRepo) GetTransfers(ctx context.Context, key model.MessageKey) ([]model.Transfer, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, message_id, bridge_id, idx,
		       token_address, from_address, to_address, amount, created_at
		FROM crosschain_transfers
		WHERE message_id = $1 AND bridge_id = $2
		ORDER BY idx
	`, key.MessageID, key.BridgeID)
	if err != nil {
		return nil, fmt.Errorf("get transfers (%d, %d): %w", key.MessageID, key.BridgeID, err)
	}
	defer rows.Close()

	var transfers []model.Transfer
	for rows.Next() {
		var tr model.Transfer
		if err := rows.Scan(
			&tr.ID, &tr.MessageID, &tr.BridgeID, &tr.Index,
			&tr.TokenAddress, &tr.FromAddress, &tr.ToAddress, &tr.Amount, &tr.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		transfers = append(transfers, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transfers: %w", err)
	}
	return transfers, nil
}
