package pubsub

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/gamematch/backend/pkg/logger"
)

// Config selects and configures the transport.
type Config struct {
	Driver string // redis, kafka, none
	Redis  RedisConfig
	Kafka  KafkaConfig
}

// New returns the publisher for cfg.Driver. The subscriber is nil for
// transports that cannot serve per-user streams.
func New(cfg Config) (Publisher, Subscriber, error) {
	switch cfg.Driver {
	case "redis":
		r, err := NewRedisPubSub(cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return r, r, nil
	case "kafka":
		k, err := NewKafkaPublisher(cfg.Kafka)
		if err != nil {
			return nil, nil, err
		}
		return k, nil, nil
	case "none", "":
		return LogPublisher{}, nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported pubsub driver: %s", cfg.Driver)
	}
}

// LogPublisher only logs messages. Used when no transport is configured.
type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, msg *Message) error {
	l := logger.Ctx(ctx)
	l.Debug().
		Str("channel", msg.Channel).
		Str("event", msg.Event).
		Time("timestamp", msg.Timestamp.Truncate(time.Millisecond)).
		Msg("notification (no transport)")
	return nil
}

func (LogPublisher) Close() error { return nil }
