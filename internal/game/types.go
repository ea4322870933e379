package game

import (
	"bytes"
	"encoding/json"
	"errors"

	"example.com/loupgarou/internal/room"
)

// Envelope WS envelope: {"type":"...","ref":1,"payload":{...}}
// Requests carry a ref; the matching ack echoes it.
type Envelope struct {
	Type    string          `json:"type"`
	Ref     *int64          `json:"ref,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// inbound
const (
	TypeCreateRoom  = "create-room"
	TypeJoinRoom    = "join-room"
	TypeStartGame   = "start-game"
	TypeGetRoomInfo = "get-room-info"
	TypeLeaveRoom   = "leave-room"
)

// outbound, besides the room events
const (
	TypeAck   = "ack"
	TypeHello = "hello"
	TypeError = "error"
)

type JoinRoomPayload struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
}

// Ack answers one request. Success false always carries Error.
type Ack struct {
	Success     bool          `json:"success"`
	Error       string        `json:"error,omitempty"`
	RoomCode    string        `json:"roomCode,omitempty"`
	Players     []room.Player `json:"players,omitempty"`
	GameStarted *bool         `json:"gameStarted,omitempty"`
	// Token is the requester's own role token, once the game has started.
	Token string `json:"token,omitempty"`
}

func failure(err error) Ack {
	return Ack{Success: false, Error: err.Error()}
}

type HelloPayload struct {
	SocketID string `json:"socketId"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var errBadPayload = errors.New("invalid payload")

// stringArg accepts either a bare JSON string or an object carrying field.
func stringArg(raw json.RawMessage, field string) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", errBadPayload
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", errBadPayload
		}
		return s, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", errBadPayload
	}
	v, ok := obj[field]
	if !ok {
		return "", errBadPayload
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", errBadPayload
	}
	return s, nil
}

func encode(typ string, ref *int64, payload any) ([]byte, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: typ, Ref: ref, Payload: b})
}
