// Package example provides a reference consolidation state for a generic
// lock-and-mint bridge. Real bridge integrations follow the same shape:
// accumulate per-event observations, then derive a consolidated record once
// the initiating send has been seen.
package example

import (
	"time"

	"github.com/google/uuid"

	"github.com/bridgescan/interchain-indexer/internal/domain/model"
)

// SendObservation is the source-side initiation event. It anchors the
// consolidated message: without it the state is not consolidatable.
type SendObservation struct {
	ChainID   model.ChainID `json:"chain_id"`
	TxHash    string        `json:"tx_hash"`
	Sender    string        `json:"sender"`
	Recipient string        `json:"recipient"`
	Payload   []byte        `json:"payload,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// ReceiveObservation is the destination-side delivery event.
type ReceiveObservation struct {
	ChainID   model.ChainID `json:"chain_id"`
	TxHash    string        `json:"tx_hash"`
	Timestamp time.Time     `json:"timestamp"`
}

// ExecutionObservation is the destination-side execution result. Failed
// executions can be retried on-chain, so they never finalize the message.
type ExecutionObservation struct {
	Succeeded bool      `json:"succeeded"`
	TxHash    string    `json:"tx_hash"`
	Timestamp time.Time `json:"timestamp"`
}

// TransferObservation is one token movement carried by the message.
type TransferObservation struct {
	TokenAddress string `json:"token_address"`
	FromAddress  string `json:"from_address"`
	ToAddress    string `json:"to_address"`
	Amount       string `json:"amount"`
}

// MessageState accumulates observations for a single cross-chain message as
// indexers see its events, possibly out of order and across chains.
type MessageState struct {
	Send      *SendObservation      `json:"send,omitempty"`
	Receive   *ReceiveObservation   `json:"receive,omitempty"`
	Execution *ExecutionObservation `json:"execution,omitempty"`
	Transfers []TransferObservation `json:"transfers,omitempty"`
}

// NewMessageState returns an empty state. Passed as the state factory when
// constructing the buffer.
func NewMessageState() *MessageState {
	return &MessageState{}
}

// ObserveSend records the initiating event. The first observation wins;
// re-orgs are handled upstream by the chain fetchers.
func (s *MessageState) ObserveSend(obs SendObservation) {
	if s.Send == nil {
		s.Send = &obs
	}
}

// ObserveReceive records the delivery event.
func (s *MessageState) ObserveReceive(obs ReceiveObservation) {
	if s.Receive == nil {
		s.Receive = &obs
	}
}

// ObserveExecution records the execution result. A success overwrites an
// earlier failure (retried execution); a failure never overwrites a success.
func (s *MessageState) ObserveExecution(obs ExecutionObservation) {
	if s.Execution != nil && s.Execution.Succeeded && !obs.Succeeded {
		return
	}
	s.Execution = &obs
}

// ObserveTransfer appends a token movement.
func (s *MessageState) ObserveTransfer(obs TransferObservation) {
	s.Transfers = append(s.Transfers, obs)
}

func (s *MessageState) status() model.MessageStatus {
	switch {
	case s.Execution != nil && s.Execution.Succeeded:
		return model.MessageStatusExecuted
	case s.Execution != nil:
		return model.MessageStatusFailed
	case s.Receive != nil:
		return model.MessageStatusDelivered
	default:
		return model.MessageStatusInitiated
	}
}

// Consolidate derives a database record from the accumulated observations.
// Returns nil until the send event has been observed. The record is final
// only after a successful execution; failed messages stay open because they
// can be retried.
func (s *MessageState) Consolidate(key model.MessageKey) (*model.ConsolidatedRecord, error) {
	if s.Send == nil {
		return nil, nil
	}

	srcChainID := s.Send.ChainID
	message := model.Message{
		ID:               key.MessageID,
		BridgeID:         key.BridgeID,
		Status:           s.status(),
		SrcChainID:       &srcChainID,
		SrcTxHash:        &s.Send.TxHash,
		SenderAddress:    &s.Send.Sender,
		RecipientAddress: &s.Send.Recipient,
		Payload:          s.Send.Payload,
	}

	if s.Receive != nil {
		dstChainID := s.Receive.ChainID
		message.DstChainID = &dstChainID
		message.DstTxHash = &s.Receive.TxHash
		ts := s.Receive.Timestamp
		message.LastUpdateTimestamp = &ts
	}

	transfers := make([]model.Transfer, 0, len(s.Transfers))
	for i, obs := range s.Transfers {
		transfers = append(transfers, model.Transfer{
			ID:           uuid.New(),
			MessageID:    key.MessageID,
			BridgeID:     key.BridgeID,
			Index:        i,
			TokenAddress: obs.TokenAddress,
			FromAddress:  obs.FromAddress,
			ToAddress:    obs.ToAddress,
			Amount:       obs.Amount,
		})
	}

	return &model.ConsolidatedRecord{
		IsFinal:   s.Execution != nil && s.Execution.Succeeded,
		Message:   message,
		Transfers: transfers,
	}, nil
}

// Clone returns an independent deep copy.
func (s *MessageState) Clone() *MessageState {
	out := &MessageState{}
	if s.Send != nil {
		send := *s.Send
		send.Payload = append([]byte(nil), s.Send.Payload...)
		out.Send = &send
	}
	if s.Receive != nil {
		receive := *s.Receive
		out.Receive = &receive
	}
	if s.Execution != nil {
		execution := *s.Execution
		out.Execution = &execution
	}
	out.Transfers = append([]TransferObservation(nil), s.Transfers...)
	return out
}
