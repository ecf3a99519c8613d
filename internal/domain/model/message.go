package model

import (
	"time"

	"github.com/google/uuid"
)

// BridgeID identifies a cross-chain bridge protocol.
type BridgeID int16

// ChainID identifies a blockchain network (EVM chain id or equivalent).
type ChainID int64

// BlockNumber is a block height on a specific chain.
type BlockNumber int64

// MessageKey uniquely identifies a cross-chain message within a bridge.
// How MessageID is derived from chain-specific fields is up to the bridge
// indexer (e.g. the first 8 bytes of a 32-byte message hash, big-endian).
type MessageKey struct {
	MessageID int64    `json:"message_id"`
	BridgeID  BridgeID `json:"bridge_id"`
}

func NewMessageKey(messageID int64, bridgeID BridgeID) MessageKey {
	return MessageKey{MessageID: messageID, BridgeID: bridgeID}
}

// BridgeChain is the (bridge, chain) pair that checkpoints are keyed by.
type BridgeChain struct {
	BridgeID BridgeID
	ChainID  ChainID
}

type MessageStatus string

const (
	MessageStatusInitiated MessageStatus = "INITIATED"
	MessageStatusDelivered MessageStatus = "DELIVERED"
	MessageStatusExecuted  MessageStatus = "EXECUTED"
	MessageStatusFailed    MessageStatus = "FAILED"
)

// Message is the primary projection of a consolidated cross-chain message,
// persisted to crosschain_messages.
type Message struct {
	ID                  int64         `db:"id"`
	BridgeID            BridgeID      `db:"bridge_id"`
	Status              MessageStatus `db:"status"`
	SrcChainID          *ChainID      `db:"src_chain_id"`
	DstChainID          *ChainID      `db:"dst_chain_id"`
	SrcTxHash           *string       `db:"src_tx_hash"`
	DstTxHash           *string       `db:"dst_tx_hash"`
	SenderAddress       *string       `db:"sender_address"`
	RecipientAddress    *string       `db:"recipient_address"`
	Payload             []byte        `db:"payload"`
	LastUpdateTimestamp *time.Time    `db:"last_update_timestamp"`
	CreatedAt           time.Time     `db:"created_at"`
	UpdatedAt           time.Time     `db:"updated_at"`
}

// Transfer is an asset movement carried by a message, persisted to
// crosschain_transfers. A message may carry zero or more transfers.
type Transfer struct {
	ID           uuid.UUID `db:"id"`
	MessageID    int64     `db:"message_id"`
	BridgeID     BridgeID  `db:"bridge_id"`
	Index        int       `db:"idx"`
	TokenAddress string    `db:"token_address"`
	FromAddress  string    `db:"from_address"`
	ToAddress    string    `db:"to_address"`
	Amount       string    `db:"amount"` // NUMERIC(78,0) as string
	CreatedAt    time.Time `db:"created_at"`
}

// ConsolidatedRecord is the durable projection derived from accumulated
// partial observations for one message. IsFinal controls whether the hot and
// pending copies may be dropped after a successful flush.
type ConsolidatedRecord struct {
	IsFinal   bool
	Message   Message
	Transfers []Transfer
}

// Key returns the message key the record was consolidated for.
func (r *ConsolidatedRecord) Key() MessageKey {
	return MessageKey{MessageID: r.Message.ID, BridgeID: r.Message.BridgeID}
}

// Cursor is the per-(bridge, chain) scan boundary pair. Forward (realtime)
// tracks live processing and only moves up; Backward (catchup) tracks
// backfill progress and only moves down.
type Cursor struct {
	Backward BlockNumber
	Forward  BlockNumber
}
