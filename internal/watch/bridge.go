package watch

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// channel is the single Redis pub/sub channel the bridge relays topics over.
const channel = "cgl:watch"

// Bridge relays hub notifications across instances via Redis pub/sub. Each
// write publishes its topic; every instance re-publishes received topics
// into its local hub. With Redis unconfigured the hub still works
// process-locally.
type Bridge struct {
	hub    *Hub
	client *redis.Client
	logger *slog.Logger
}

func NewBridge(hub *Hub, client *redis.Client, logger *slog.Logger) *Bridge {
	return &Bridge{hub: hub, client: client, logger: logger}
}

// Notify publishes a topic locally and, when Redis is configured, to the
// other instances. Redis failures degrade to local-only delivery.
func (b *Bridge) Notify(ctx context.Context, topic string) {
	b.hub.Publish(topic)
	if b.client == nil {
		return
	}
	if err := b.client.Publish(ctx, channel, topic).Err(); err != nil {
		b.logger.WarnContext(ctx, "watch bridge publish failed",
			"topic", topic,
			"error", err,
		)
	}
}

// Run consumes the Redis channel until ctx is cancelled. Returns nil
// immediately when Redis is not configured.
func (b *Bridge) Run(ctx context.Context) error {
	if b.client == nil {
		<-ctx.Done()
		return ctx.Err()
	}

	sub := b.client.Subscribe(ctx, channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.hub.Publish(msg.Payload)
		}
	}
}
