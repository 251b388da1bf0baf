package pubsub

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUserChannel(t *testing.T) {
	require.Equal(t, "user-abc123", UserChannel("abc123"))
}

func TestNewMessage(t *testing.T) {
	msg, err := NewMessage(UserChannel("u1"), "new-like", map[string]interface{}{"postId": 3})
	require.NoError(t, err)

	require.Equal(t, "user-u1", msg.Channel)
	require.Equal(t, "new-like", msg.Event)
	require.False(t, msg.Timestamp.IsZero())

	var data map[string]int
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	require.Equal(t, 3, data["postId"])
}

func TestNewWithoutTransport(t *testing.T) {
	pub, sub, err := New(Config{Driver: "none"})
	require.NoError(t, err)
	require.Nil(t, sub)

	msg, err := NewMessage("user-x", "new-follow", struct{}{})
	require.NoError(t, err)
	require.NoError(t, pub.Publish(context.Background(), msg))
	require.NoError(t, pub.Close())
}

func TestNewUnsupportedDriver(t *testing.T) {
	_, _, err := New(Config{Driver: "carrier-pigeon"})
	require.Error(t, err)
}
