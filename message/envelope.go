package message

import (
	"encoding/json"
	"fmt"
)

// Frame types carried on the push channel.
const (
	TypeHandshake  = "handshake"
	TypeInvocation = "invocation"
)

// TargetReceiveMessage is the single event pushed by the relay.
const TargetReceiveMessage = "ReceiveMessage"

// Envelope is one JSON frame on the push channel.
type Envelope struct {
	Type         string   `json:"type"`
	ConnectionID string   `json:"connectionId,omitempty"`
	Target       string   `json:"target,omitempty"`
	Arguments    []string `json:"arguments,omitempty"`
}

// Handshake builds the first frame the relay sends after a successful upgrade.
func Handshake(connectionID string) Envelope {
	return Envelope{Type: TypeHandshake, ConnectionID: connectionID}
}

// Invocation builds a frame that invokes target on the subscriber with the given payload.
func Invocation(target, payload string) Envelope {
	return Envelope{Type: TypeInvocation, Target: target, Arguments: []string{payload}}
}

// ReceiveMessage builds the invocation frame for a relayed message.
func ReceiveMessage(m Message) Envelope {
	return Invocation(TargetReceiveMessage, m.String())
}

// Payload returns the first argument of an invocation frame.
func (e Envelope) Payload() (string, bool) {
	if e.Type != TypeInvocation || len(e.Arguments) == 0 {
		return "", false
	}
	return e.Arguments[0], true
}

// Encode marshals the envelope to its wire form.
func (e Envelope) Encode() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	return data, nil
}

// Decode parses a wire frame. Frames without a type are rejected.
func Decode(data []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if e.Type == "" {
		return Envelope{}, fmt.Errorf("%w: missing frame type", ErrMalformed)
	}
	return e, nil
}
