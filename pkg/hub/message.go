// Package hub fans websocket messages out to dashboard clients from a single
// goroutine that owns the client set.
package hub

import "github.com/teslashibe/go-chakraflow/pkg/protocol"

// Message is one encoded text frame.
type Message struct {
	Data []byte
}

// NewJSONMessage wraps pre-encoded JSON.
func NewJSONMessage(data []byte) Message {
	return Message{Data: data}
}

// FromProtocol encodes a protocol envelope.
func FromProtocol(msg *protocol.Message) (Message, error) {
	data, err := msg.Bytes()
	if err != nil {
		return Message{}, err
	}
	return NewJSONMessage(data), nil
}
