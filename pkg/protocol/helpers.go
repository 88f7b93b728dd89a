package protocol

import (
	"fmt"
	"time"

	"github.com/teslashibe/go-chakraflow/pkg/landmark"
)

// =============================================================================
// Helper functions for creating messages
// =============================================================================

// NewLandmarksMessage creates a landmarks message from a frame
func NewLandmarksMessage(frame landmark.Frame, frameID uint64) (*Message, error) {
	return NewMessage(TypeLandmarks, LandmarksData{FrameID: frameID, Frame: frame})
}

// NewStateMessage wraps an engine snapshot
func NewStateMessage(snapshot any) (*Message, error) {
	return NewMessage(TypeState, snapshot)
}

// NewNarrationMessage creates a narration update
func NewNarrationMessage(text, region, source string, seq uint64) (*Message, error) {
	return NewMessage(TypeNarration, NarrationData{
		Text:   text,
		Region: region,
		Source: source,
		Seq:    seq,
	})
}

// NewSummaryMessage wraps an end-of-session summary
func NewSummaryMessage(summary any) (*Message, error) {
	return NewMessage(TypeSummary, summary)
}

// NewErrorMessage creates an error reply
func NewErrorMessage(code, message string) (*Message, error) {
	return NewMessage(TypeError, ErrorData{Code: code, Message: message})
}

// NewPingMessage creates a ping message
func NewPingMessage(id string) (*Message, error) {
	return NewMessage(TypePing, PingData{
		ID:        id,
		Timestamp: time.Now().UnixMilli(),
	})
}

// NewPongMessage creates a pong response message
func NewPongMessage(id string, pingTS, pongTS int64) (*Message, error) {
	return NewMessage(TypePong, PongData{
		ID:        id,
		PingTS:    pingTS,
		PongTS:    pongTS,
		LatencyMs: pongTS - pingTS,
	})
}

// =============================================================================
// Helper functions for parsing messages
// =============================================================================

// GetLandmarksData extracts the landmark frame from a message. A missing
// frame timestamp is filled from the envelope timestamp.
func (m *Message) GetLandmarksData() (*LandmarksData, error) {
	if m.Type != TypeLandmarks {
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedType, m.Type)
	}
	var data LandmarksData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	if data.Timestamp.IsZero() && m.Timestamp > 0 {
		data.Timestamp = time.UnixMilli(m.Timestamp)
	}
	return &data, nil
}

// GetNarrationData extracts narration data from a message
func (m *Message) GetNarrationData() (*NarrationData, error) {
	if m.Type != TypeNarration {
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedType, m.Type)
	}
	var data NarrationData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetErrorData extracts error data from a message
func (m *Message) GetErrorData() (*ErrorData, error) {
	var data ErrorData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPingData extracts ping data from a message
func (m *Message) GetPingData() (*PingData, error) {
	var data PingData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPongData extracts pong data from a message
func (m *Message) GetPongData() (*PongData, error) {
	var data PongData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
