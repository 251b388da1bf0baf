package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const userChannel = "user-%s"

// UserChannel returns the realtime channel for a user's external principal id.
func UserChannel(externalID string) string {
	return fmt.Sprintf(userChannel, externalID)
}

// Message is what travels over the transport.
type Message struct {
	Channel   string          `json:"channel"`
	Event     string          `json:"event"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage marshals data into a Message stamped with the current time.
func NewMessage(channel, event string, data interface{}) (*Message, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Message{
		Channel:   channel,
		Event:     event,
		Data:      raw,
		Timestamp: time.Now().UTC(),
	}, nil
}

// Publisher delivers a message to a channel.
type Publisher interface {
	Publish(ctx context.Context, msg *Message) error
	Close() error
}

// Subscriber streams messages of a single channel until ctx is done.
type Subscriber interface {
	Subscribe(ctx context.Context, channel string) (<-chan *Message, error)
}
