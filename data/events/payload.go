package events

import (
	"encoding/json"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AnyPayload interface {
	json.RawMessage | HelloPayload | AckPayload | HeartbeatPayload | IdentifyPayload |
		EmitPayload | DispatchPayload | ErrorPayload | EndOfStreamPayload
}

type HelloPayload struct {
	HeartbeatInterval uint32              `json:"heartbeat_interval"`
	SessionID         string              `json:"session_id"`
	Actor             *primitive.ObjectID `json:"actor,omitempty"`
}

type AckPayload struct {
	Command string          `json:"command"`
	Data    json.RawMessage `json:"data"`
}

type HeartbeatPayload struct {
	Count uint64 `json:"count"`
}

type IdentifyPayload struct {
	Token string `json:"token"`
}

// EmitPayload is a named event sent by a client
type EmitPayload struct {
	Type EventType       `json:"type"`
	Body json.RawMessage `json:"body"`
}

type DispatchPayload struct {
	Type EventType       `json:"type"`
	Body json.RawMessage `json:"body"`
}

type ErrorPayload struct {
	Message string         `json:"message"`
	Code    int            `json:"code"`
	Type    EventType      `json:"type,omitempty"`
	Fields  map[string]any `json:"fields"`
}

type EndOfStreamPayload struct {
	Code    CloseCode `json:"code"`
	Message string    `json:"message"`
}
