package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/bridgescan/interchain-indexer/internal/domain/model"
	"github.com/bridgescan/interchain-indexer/internal/store"
)

// PendingRepo reads cold-tier entries outside the maintenance transaction.
type PendingRepo struct {
	db *DB
}

func NewPendingRepo(db *DB) *PendingRepo {
	return &PendingRepo{db: db}
}

var _ store.PendingReader = (*PendingRepo)(nil)

func (r *PendingRepo) GetPending(ctx context.Context, key model.MessageKey) (json.RawMessage, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	var payload []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT payload
		FROM pending_messages
		WHERE message_id = $1 AND bridge_id = $2
	`, key.MessageID, key.BridgeID).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get pending message (%d, %d): %w", key.MessageID, key.BridgeID, err)
	}
	return payload, true, nil
}
