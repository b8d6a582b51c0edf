package realtime

import "encoding/json"

// MessageType constants for the WebSocket protocol.
const (
	// Client -> Server
	TypePing = "ping"

	// Server -> Client
	TypePong               = "pong"
	TypeWaitlistUpdate     = "waitlist_update"
	TypeInstanceFormed     = "instance_formed"
	TypeHostLine           = "host_line"
	TypeRoundStarted       = "round_started"
	TypeRoundResult        = "round_result"
	TypeEliminationStarted = "elimination_started"
	TypeLeaderChange       = "leader_change"
	TypeInstanceFinished   = "instance_finished"
	TypeLeaderboardUpdate  = "leaderboard_update"
	TypeError              = "error"
)

// Message wraps every WebSocket payload with its type and, when the
// event belongs to one game, the instance it concerns.
type Message struct {
	Type       string          `json:"type"`
	InstanceID string          `json:"instance_id,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// NewMessage marshals a payload into a Message. Marshal failures are
// programmer errors; the payload is dropped and an empty body sent.
func NewMessage(msgType, instanceID string, payload any) Message {
	raw, err := json.Marshal(payload)
	if err != nil {
		raw = nil
	}
	return Message{Type: msgType, InstanceID: instanceID, Payload: raw}
}

type WaitlistUpdatePayload struct {
	Waiting  int `json:"waiting"`
	Position int `json:"position,omitempty"`
}

type InstanceFormedPayload struct {
	InstanceID string   `json:"instance_id"`
	Name       string   `json:"name"`
	PlayerIDs  []string `json:"player_ids"`
}

type HostLinePayload struct {
	Text string `json:"text"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
