package message

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the round-trip layout used in the tag of a relayed message.
// UTC timestamps render with a "+00:00" offset and seven fractional digits.
const TimestampLayout = "2006-01-02T15:04:05.0000000-07:00"

// Message is an accepted submission. It is created once by the ingress and never mutated.
type Message struct {
	Text       string    `json:"text"`
	ReceivedAt time.Time `json:"received_at"`
}

// New validates text and stamps it with the given receipt time converted to UTC.
// Returns ErrValidation when text is empty after trimming whitespace.
func New(text string, receivedAt time.Time) (Message, error) {
	if IsBlank(text) {
		return Message{}, fmt.Errorf("%w: text must not be empty", ErrValidation)
	}
	return Message{Text: text, ReceivedAt: receivedAt.UTC()}, nil
}

// String returns the tagged form pushed to subscribers: "[<timestamp>] <text>".
func (m Message) String() string {
	return "[" + m.ReceivedAt.UTC().Format(TimestampLayout) + "] " + m.Text
}

// IsBlank reports whether text is empty or contains only whitespace.
func IsBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}

// ParseTagged splits a tagged message string back into its timestamp and text.
func ParseTagged(s string) (Message, error) {
	if !strings.HasPrefix(s, "[") {
		return Message{}, fmt.Errorf("%w: missing timestamp tag", ErrMalformed)
	}
	end := strings.Index(s, "] ")
	if end < 0 {
		return Message{}, fmt.Errorf("%w: unterminated timestamp tag", ErrMalformed)
	}
	ts, err := time.Parse(TimestampLayout, s[1:end])
	if err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return Message{Text: s[end+2:], ReceivedAt: ts.UTC()}, nil
}

// MarshalBinary encodes the message for transport between relay instances.
func (m Message) MarshalBinary() ([]byte, error) {
	return json.Marshal(m)
}

// UnmarshalBinary decodes a message produced by MarshalBinary.
func (m *Message) UnmarshalBinary(data []byte) error {
	var decoded Message
	if err := json.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if IsBlank(decoded.Text) {
		return fmt.Errorf("%w: empty text", ErrMalformed)
	}
	decoded.ReceivedAt = decoded.ReceivedAt.UTC()
	*m = decoded
	return nil
}
