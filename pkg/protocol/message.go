// Package protocol defines the WebSocket message types exchanged between the
// engine and its landmark producers and dashboards.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/teslashibe/go-chakraflow/pkg/landmark"
)

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	// Producer → Engine messages
	TypeLandmarks MessageType = "landmarks" // One tick of landmark estimates

	// Engine → Dashboard messages
	TypeState     MessageType = "state"     // Per-tick engine snapshot
	TypeNarration MessageType = "narration" // Narration text changed
	TypeSummary   MessageType = "summary"   // End-of-session summary
	TypeError     MessageType = "error"     // Rejected inbound message

	// Bidirectional
	TypePing MessageType = "ping" // Health check
	TypePong MessageType = "pong" // Health check response
)

// ErrUnexpectedType is returned by typed getters called on the wrong message.
var ErrUnexpectedType = errors.New("protocol: unexpected message type")

// Message is the base wrapper for all WebSocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data any) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v any) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("failed to parse message: missing type")
	}
	return &msg, nil
}

// =============================================================================
// Producer → Engine Message Types
// =============================================================================

// LandmarksData carries one frame of landmark estimates. The frame fields are
// inlined so producers can send {"hands": [...], "face": [...]} directly.
type LandmarksData struct {
	FrameID uint64 `json:"frame_id,omitempty"`
	landmark.Frame
}

// =============================================================================
// Engine → Dashboard Message Types
// =============================================================================

// NarrationData is sent when the displayed narration changes.
type NarrationData struct {
	Text   string `json:"text"`
	Region string `json:"region"`
	Source string `json:"source"`
	Seq    uint64 `json:"seq"`
}

// ErrorData explains why an inbound message was rejected.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// =============================================================================
// Bidirectional Message Types
// =============================================================================

// PingData contains ping information
type PingData struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
}

// PongData contains pong response
type PongData struct {
	ID        string `json:"id"`
	PingTS    int64  `json:"ping_ts"`
	PongTS    int64  `json:"pong_ts"`
	LatencyMs int64  `json:"latency_ms"`
}
