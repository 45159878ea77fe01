package events

import (
	"encoding/json"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

type Message[D AnyPayload] struct {
	Op        Opcode `json:"op"`
	Timestamp int64  `json:"t"`
	Data      D      `json:"d"`
	Sequence  uint64 `json:"s,omitempty"`
}

func NewMessage[D AnyPayload](op Opcode, data D) Message[D] {
	msg := Message[D]{
		Op:        op,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}

	return msg
}

// Encode returns the wire form of the message
func (e Message[D]) Encode() ([]byte, error) {
	return codec.Marshal(e)
}

func ConvertMessage[D AnyPayload](c Message[json.RawMessage]) (Message[D], error) {
	var d D
	err := codec.Unmarshal(c.Data, &d)
	c2 := Message[D]{
		Op:        c.Op,
		Timestamp: c.Timestamp,
		Data:      d,
		Sequence:  c.Sequence,
	}

	return c2, err
}

// Decode reads a frame sent by a client
func Decode(b []byte) (Message[json.RawMessage], error) {
	msg := Message[json.RawMessage]{}
	err := codec.Unmarshal(b, &msg)

	return msg, err
}

// DecodeBody unmarshals the body of an emitted event
func DecodeBody[T any](b json.RawMessage) (T, error) {
	var v T
	if len(b) == 0 {
		return v, nil
	}

	err := codec.Unmarshal(b, &v)

	return v, err
}

type Opcode uint8

const (
	// Default ops (0-32)
	OpcodeDispatch    Opcode = 0 // R - Server dispatches data to the client
	OpcodeHello       Opcode = 1 // R - Server greets the client
	OpcodeHeartbeat   Opcode = 2 // B - Keep the connection alive
	OpcodeReconnect   Opcode = 4 // R - Server demands that the client reconnects
	OpcodeAck         Opcode = 5 // R - Acknowledgement of an action
	OpcodeError       Opcode = 6 // R - An event could not be processed
	OpcodeEndOfStream Opcode = 7 // R - The connection's data stream is ending

	// Commands (33-64)
	OpcodeIdentify Opcode = 33 // S - Bind the connection to a user
	OpcodeEmit     Opcode = 34 // S - Emit a named event
)

func (op Opcode) String() string {
	switch op {
	case OpcodeDispatch:
		return "DISPATCH"
	case OpcodeHello:
		return "HELLO"
	case OpcodeHeartbeat:
		return "HEARTBEAT"
	case OpcodeReconnect:
		return "RECONNECT"
	case OpcodeAck:
		return "ACK"
	case OpcodeError:
		return "ERROR"
	case OpcodeEndOfStream:
		return "END_OF_STREAM"

	case OpcodeIdentify:
		return "IDENTIFY"
	case OpcodeEmit:
		return "EMIT"
	default:
		return "UNDOCUMENTED_OPERATION"
	}
}

type CloseCode uint16

const (
	CloseCodeServerError       CloseCode = 4000 // an error occured on the server's end
	CloseCodeUnknownOperation  CloseCode = 4001 // the client sent an unexpected opcode
	CloseCodeInvalidPayload    CloseCode = 4002 // the client sent a payload that couldn't be decoded
	CloseCodeInvalidIdentity   CloseCode = 4003 // the client sent a token that could not be verified
	CloseCodeAlreadyIdentified CloseCode = 4004 // the client wanted to identify again
	CloseCodeRestart           CloseCode = 4006 // the server is restarting and the client should reconnect
	CloseCodeTimeout           CloseCode = 4008 // the client was idle for too long
)

func (c CloseCode) String() string {
	switch c {
	case CloseCodeServerError:
		return "Internal Server Error"
	case CloseCodeUnknownOperation:
		return "Unknown Operation"
	case CloseCodeInvalidPayload:
		return "Invalid Payload"
	case CloseCodeInvalidIdentity:
		return "Invalid Identity"
	case CloseCodeAlreadyIdentified:
		return "Already identified"
	case CloseCodeRestart:
		return "Server is restarting"
	case CloseCodeTimeout:
		return "Timeout"
	default:
		return "Undocumented Closure"
	}
}
