package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/anonto42/gamematch/backend/pkg/logger"
)

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Address     string
	Password    string
	DB          int
	DialTimeout time.Duration
}

// RedisPubSub publishes and subscribes over Redis channels.
type RedisPubSub struct {
	client *redis.Client
}

// NewRedisPubSub connects to Redis and verifies the connection.
func NewRedisPubSub(cfg RedisConfig) (*RedisPubSub, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Address,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisPubSubFromClient(client), nil
}

// NewRedisPubSubFromClient wraps an existing client.
func NewRedisPubSubFromClient(client *redis.Client) *RedisPubSub {
	return &RedisPubSub{client: client}
}

// Publish sends the JSON encoded message to msg.Channel.
func (r *RedisPubSub) Publish(ctx context.Context, msg *Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	return r.client.Publish(ctx, msg.Channel, data).Err()
}

// Subscribe relays channel messages until ctx is cancelled. The returned
// channel is closed when the subscription ends.
func (r *RedisPubSub) Subscribe(ctx context.Context, channel string) (<-chan *Message, error) {
	sub := r.client.Subscribe(ctx, channel)
	// Wait for the subscription confirmation so errors surface here.
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	out := make(chan *Message, 16)
	go func() {
		defer close(out)
		defer sub.Close()

		l := logger.Ctx(ctx)
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok {
					return
				}
				var msg Message
				if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
					l.Warn().Err(err).Str("channel", channel).Msg("dropping malformed message")
					continue
				}
				select {
				case out <- &msg:
				case <-ctx.Done():
					return
				default:
					// slow consumer, drop
				}
			}
		}
	}()

	return out, nil
}

// Close closes the Redis client.
func (r *RedisPubSub) Close() error {
	return r.client.Close()
}

var (
	_ Publisher  = (*RedisPubSub)(nil)
	_ Subscriber = (*RedisPubSub)(nil)
)
