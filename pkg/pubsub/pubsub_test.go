package pubsub

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelToTopic(t *testing.T) {
	assert.Equal(t, "support-groups", ChannelToTopic(ChannelGroups))
}

func TestNewEvent_PayloadEncoding(t *testing.T) {
	raw := json.RawMessage(`{"type":"new_thread"}`)
	e, err := NewEvent(EventGroupPush, "operator-pool", "i-1", raw)
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(e.Payload), "pre-encoded payload is not re-encoded")
	assert.False(t, e.Timestamp.IsZero())

	e, err = NewEvent(EventGroupPush, "personal:u1", "i-1", map[string]int{"n": 1})
	require.NoError(t, err)

	var got map[string]int
	require.NoError(t, e.UnmarshalPayload(&got))
	assert.Equal(t, 1, got["n"])

	_, err = NewEvent(EventGroupPush, "g", "i-1", make(chan int))
	assert.Error(t, err)
}

func TestConfig_Enabled(t *testing.T) {
	assert.False(t, Config{}.Enabled())
	assert.False(t, Config{Driver: DriverNone}.Enabled())
	assert.True(t, Config{Driver: DriverRedis}.Enabled())
}

func TestNewPubSub_UnknownDriver(t *testing.T) {
	_, err := NewPubSub(Config{Driver: "carrier-pigeon"}, "i-1")
	assert.Error(t, err)
}
