package realtime

import (
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinInstanceIsIdempotent(t *testing.T) {
	h := NewHub(zerolog.Nop())

	h.JoinInstance("inst", "alice")
	h.JoinInstance("inst", "alice")
	h.JoinInstance("inst", "bob")

	assert.Equal(t, []string{"alice", "bob"}, h.instances["inst"])
}

func TestLeaveAndDropInstance(t *testing.T) {
	h := NewHub(zerolog.Nop())

	h.JoinInstance("inst", "alice")
	h.JoinInstance("inst", "bob")

	h.LeaveInstance("inst", "alice")
	assert.Equal(t, []string{"bob"}, h.instances["inst"])

	h.DropInstance("inst")
	_, ok := h.instances["inst"]
	assert.False(t, ok)
}

func TestSendToUnknownPlayer(t *testing.T) {
	h := NewHub(zerolog.Nop())

	err := h.SendToPlayer("ghost", Message{Type: TypePong})
	assert.ErrorIs(t, err, ErrConnectionNotFound)
}

func TestBroadcastSkipsDisconnectedPlayers(t *testing.T) {
	h := NewHub(zerolog.Nop())

	h.JoinInstance("inst", "alice")
	assert.NoError(t, h.BroadcastToInstance("inst", Message{Type: TypeHostLine}))
}

func TestNewMessage(t *testing.T) {
	msg := NewMessage(TypeHostLine, "inst-1", HostLinePayload{Text: "hello"})

	assert.Equal(t, TypeHostLine, msg.Type)
	assert.Equal(t, "inst-1", msg.InstanceID)

	var payload HostLinePayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Equal(t, "hello", payload.Text)
}
