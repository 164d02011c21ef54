package events

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/pkordes/fleetops/internal/domain"
)

// DefaultRedisChannel is used when no channel is configured.
const DefaultRedisChannel = "fleet:trips"

// RedisPublisher sends each event as JSON on a Redis pub/sub channel.
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
}

// NewRedisPublisher connects to addr and verifies the connection with PING.
func NewRedisPublisher(ctx context.Context, addr, channel string) (*RedisPublisher, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("events.NewRedisPublisher: ping %s: %w", addr, err)
	}
	return NewRedisPublisherFromClient(rdb, channel), nil
}

// NewRedisPublisherFromClient wraps an existing client. The publisher takes
// ownership of rdb and closes it in Close.
func NewRedisPublisherFromClient(rdb *redis.Client, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultRedisChannel
	}
	return &RedisPublisher{rdb: rdb, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, e domain.TripEvent) error {
	body, err := Encode(e)
	if err != nil {
		return err
	}
	if err := p.rdb.Publish(ctx, p.channel, body).Err(); err != nil {
		return fmt.Errorf("events.RedisPublisher.Publish: %w", err)
	}
	return nil
}

func (p *RedisPublisher) Close() error {
	return p.rdb.Close()
}
