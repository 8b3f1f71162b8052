// Package wire defines the JSON messages exchanged over the room channel.
package wire

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	TypeCreate = "create"
	TypeJoin   = "join"
	TypeShape  = "shape"
)

// Message is the envelope for every channel message: a type tag and a
// type-specific payload.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type (
	CreatePayload struct {
		RoomID string `json:"roomId"`
	}

	JoinPayload struct {
		RoomID string `json:"roomId"`
	}

	// JoinAck is the server's answer to a join or create. OK is an explicit
	// discriminator; clients must not infer success from which fields happen
	// to be present.
	JoinAck struct {
		RoomID string `json:"roomId"`
		OK     bool   `json:"ok"`
		Error  string `json:"error,omitempty"`
	}

	ShapeRef struct {
		Name    string `json:"name"`
		Details string `json:"details"`
	}

	ShapePayload struct {
		RoomID string   `json:"roomId"`
		Shape  ShapeRef `json:"shape"`
	}
)

func mustMessage(typ string, payload interface{}) Message {
	b, err := json.Marshal(payload)
	if err != nil {
		// All payload types marshal without error.
		panic(err)
	}
	return Message{Type: typ, Payload: b}
}

func NewCreate(roomID string) Message {
	return mustMessage(TypeCreate, &CreatePayload{RoomID: roomID})
}

func NewJoin(roomID string) Message {
	return mustMessage(TypeJoin, &JoinPayload{RoomID: roomID})
}

func NewJoinAck(roomID string, ok bool, errMsg string) Message {
	return mustMessage(TypeJoin, &JoinAck{RoomID: roomID, OK: ok, Error: errMsg})
}

func NewShape(roomID, name, details string) Message {
	return mustMessage(TypeShape, &ShapePayload{
		RoomID: roomID,
		Shape:  ShapeRef{Name: name, Details: details},
	})
}

func (m *Message) Validate() error {
	switch m.Type {
	case TypeCreate, TypeJoin, TypeShape:
	default:
		return fmt.Errorf("invalid message type: %q", m.Type)
	}
	if len(m.Payload) == 0 {
		return fmt.Errorf("message %q has no payload", m.Type)
	}
	return nil
}

// DecodeShape unpacks a shape payload and checks the fields the relay
// depends on.
func (m *Message) DecodeShape() (*ShapePayload, error) {
	if m.Type != TypeShape {
		return nil, fmt.Errorf("message type %q is not a shape", m.Type)
	}
	var p ShapePayload
	if err := json.Unmarshal(m.Payload, &p); err != nil {
		return nil, err
	}
	if strings.TrimSpace(p.RoomID) == "" {
		return nil, fmt.Errorf("shape message without room id")
	}
	if strings.TrimSpace(p.Shape.Name) == "" {
		return nil, fmt.Errorf("shape message without shape name")
	}
	return &p, nil
}

func (m *Message) DecodeJoin() (*JoinPayload, error) {
	if m.Type != TypeJoin {
		return nil, fmt.Errorf("message type %q is not a join", m.Type)
	}
	var p JoinPayload
	if err := json.Unmarshal(m.Payload, &p); err != nil {
		return nil, err
	}
	if strings.TrimSpace(p.RoomID) == "" {
		return nil, fmt.Errorf("join message without room id")
	}
	return &p, nil
}

func (m *Message) DecodeCreate() (*CreatePayload, error) {
	if m.Type != TypeCreate {
		return nil, fmt.Errorf("message type %q is not a create", m.Type)
	}
	var p CreatePayload
	if err := json.Unmarshal(m.Payload, &p); err != nil {
		return nil, err
	}
	if strings.TrimSpace(p.RoomID) == "" {
		return nil, fmt.Errorf("create message without room id")
	}
	return &p, nil
}

func (m *Message) DecodeJoinAck() (*JoinAck, error) {
	var a JoinAck
	if err := json.Unmarshal(m.Payload, &a); err != nil {
		return nil, err
	}
	return &a, nil
}
