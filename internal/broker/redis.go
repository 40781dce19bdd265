package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-proctor/internal/config"
	"github.com/stemsi/exstem-proctor/internal/model"
)

// RedisBus shares events through Redis Pub/Sub so every server instance's
// monitor sees warnings raised on any other instance.
type RedisBus struct {
	rdb     *redis.Client
	channel string
	log     zerolog.Logger
}

// NewRedisBus creates a RedisBus on the configured proctor channel.
func NewRedisBus(rdb *redis.Client, log zerolog.Logger) *RedisBus {
	return &RedisBus{
		rdb:     rdb,
		channel: config.CacheKey.ProctorChannel,
		log:     log.With().Str("component", "redis_bus").Logger(),
	}
}

// Publish sends ev to the channel.
func (b *RedisBus) Publish(ctx context.Context, ev model.ProctorEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := b.rdb.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Subscribe attaches to the channel until ctx is cancelled.
func (b *RedisBus) Subscribe(ctx context.Context) (<-chan model.ProctorEvent, error) {
	pubsub := b.rdb.Subscribe(ctx, b.channel)

	// Wait for the subscription confirmation so no event published right
	// after Subscribe returns is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", b.channel, err)
	}

	out := make(chan model.ProctorEvent, subscriberBuffer)
	msgs := pubsub.Channel()

	go func() {
		defer close(out)
		defer pubsub.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev model.ProctorEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					b.log.Warn().Err(err).Msg("Discarding malformed proctor event")
					continue
				}
				select {
				case out <- ev:
				default:
				}
			}
		}
	}()

	return out, nil
}
