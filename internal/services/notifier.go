package services

import (
	"context"
	"encoding/json"
	"fmt"

	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/taskdesk/backend/domain"
	"github.com/taskdesk/backend/usecase"
)

// RedisNotifier fans events out over Redis pub/sub, one channel per
// identity id. Subscribers (socket gateways, CLIs) attach to their own
// channel; the fan-out itself knows nothing about the transport edge.
type RedisNotifier struct {
	client *redislib.Client
	prefix string
	logger *zap.Logger
}

func NewRedisNotifier(client *redislib.Client, logger *zap.Logger) *RedisNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisNotifier{
		client: client,
		prefix: "notify:user:",
		logger: logger,
	}
}

// Publish sends one event to the recipient's channel. At-most-once: no
// retry, no acknowledgment.
func (n *RedisNotifier) Publish(ctx context.Context, identityID string, event domain.Event) error {
	if n.client == nil {
		return fmt.Errorf("notifier not configured")
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := n.client.Publish(ctx, n.channel(identityID), payload).Err(); err != nil {
		return err
	}
	n.logger.Debug("event published",
		zap.String("recipient", identityID),
		zap.String("kind", string(event.Kind)))
	return nil
}

func (n *RedisNotifier) channel(identityID string) string {
	return n.prefix + identityID
}

var _ usecase.Notifier = (*RedisNotifier)(nil)
