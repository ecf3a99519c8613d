package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/bridgescan/interchain-indexer/internal/domain/model"
	"github.com/bridgescan/interchain-indexer/internal/metrics"
)

const finalizedStream = "interchain:finalized_messages"

// Notifier publishes finalized messages to a Redis Stream so downstream
// consumers (APIs, webhooks) can react without polling final storage.
type Notifier struct {
	client *redis.Client
}

func NewNotifier(url string) (*Notifier, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Notifier{client: client}, nil
}

func (n *Notifier) Close() error {
	return n.client.Close()
}

// PublishFinalized appends one stream entry per finalized record. Publishing
// is best-effort: it runs after the maintenance transaction committed, and a
// failure here never rolls back durable state.
func (n *Notifier) PublishFinalized(ctx context.Context, records []model.ConsolidatedRecord) error {
	for _, rec := range records {
		if !rec.IsFinal {
			continue
		}
		err := n.client.XAdd(ctx, &redis.XAddArgs{
			Stream: finalizedStream,
			Values: streamValues(rec),
		}).Err()
		if err != nil {
			metrics.NotifierErrorsTotal.Inc()
			return fmt.Errorf("xadd finalized message (%d, %d): %w", rec.Message.ID, rec.Message.BridgeID, err)
		}
		metrics.NotifierPublishedTotal.WithLabelValues(strconv.Itoa(int(rec.Message.BridgeID))).Inc()
	}
	return nil
}

func streamValues(rec model.ConsolidatedRecord) map[string]any {
	return map[string]any{
		"message_id": strconv.FormatInt(rec.Message.ID, 10),
		"bridge_id":  strconv.Itoa(int(rec.Message.BridgeID)),
		"status":     string(rec.Message.Status),
		"transfers":  strconv.Itoa(len(rec.Transfers)),
	}
}
