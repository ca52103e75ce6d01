package ws

import (
	"github.com/goccy/go-json"

	"github.com/tonsky/tonsky.me/internal/domain"
)

// Room message types
const (
	TypePresence = "presence" // full roster snapshot
	TypePublish  = "publish"  // local record update
	TypeJoin     = "join"     // subscribe to a room
)

type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type PresencePayload struct {
	Peers map[string]domain.PeerRecord `json:"peers"`
	User  *domain.PeerRecord           `json:"user"`
}

type JoinPayload struct {
	RoomID string `json:"room_id"`
}

// Encode wraps payload into an envelope of the given type.
func Encode(typ string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{Type: typ, Payload: raw})
}

func Decode(data []byte) (Message, error) {
	var msg Message
	err := json.Unmarshal(data, &msg)
	return msg, err
}

// DecodePayload unmarshals the envelope payload into dst.
func (m Message) DecodePayload(dst any) error {
	return json.Unmarshal(m.Payload, dst)
}
