package protocol

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/teslashibe/go-chakraflow/pkg/landmark"
)

func TestNewMessage(t *testing.T) {
	tests := []struct {
		name    string
		msgType MessageType
		data    any
		wantErr bool
	}{
		{
			name:    "landmarks message",
			msgType: TypeLandmarks,
			data:    LandmarksData{FrameID: 1},
			wantErr: false,
		},
		{
			name:    "narration message",
			msgType: TypeNarration,
			data:    NarrationData{Text: "Om", Region: "Crown"},
			wantErr: false,
		},
		{
			name:    "nil data",
			msgType: TypePing,
			data:    nil,
			wantErr: false,
		},
		{
			name:    "unmarshalable data",
			msgType: TypeState,
			data:    make(chan int),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := NewMessage(tt.msgType, tt.data)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewMessage() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if msg.Type != tt.msgType {
				t.Errorf("NewMessage() type = %v, want %v", msg.Type, tt.msgType)
			}
			if msg.Timestamp == 0 {
				t.Error("NewMessage() timestamp should be set")
			}
		})
	}
}

func TestLandmarksRoundTrip(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	frame := landmark.Frame{
		Timestamp: ts,
		Width:     640,
		Height:    480,
		Pose:      landmark.Pose{{X: 0.1, Y: 0.2}},
	}

	msg, err := NewLandmarksMessage(frame, 42)
	if err != nil {
		t.Fatalf("NewLandmarksMessage() error = %v", err)
	}
	raw, err := msg.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}

	parsed, err := ParseMessage(raw)
	if err != nil {
		t.Fatalf("ParseMessage() error = %v", err)
	}
	data, err := parsed.GetLandmarksData()
	if err != nil {
		t.Fatalf("GetLandmarksData() error = %v", err)
	}

	if data.FrameID != 42 {
		t.Errorf("FrameID = %d, want 42", data.FrameID)
	}
	if !data.Timestamp.Equal(ts) {
		t.Errorf("Timestamp = %v, want %v", data.Timestamp, ts)
	}
	if data.Width != 640 || len(data.Pose) != 1 || data.Pose[0].Y != 0.2 {
		t.Errorf("frame not preserved: %+v", data.Frame)
	}
}

func TestLandmarksInlinedFields(t *testing.T) {
	raw := []byte(`{"type":"landmarks","ts":1700000000000,"data":{"frame_id":7,"width":320,"face":[{"x":0.5,"y":0.5}]}}`)

	msg, err := ParseMessage(raw)
	if err != nil {
		t.Fatalf("ParseMessage() error = %v", err)
	}
	data, err := msg.GetLandmarksData()
	if err != nil {
		t.Fatalf("GetLandmarksData() error = %v", err)
	}
	if data.FrameID != 7 || data.Width != 320 || len(data.Face) != 1 {
		t.Errorf("unexpected data: %+v", data)
	}
	if !data.Timestamp.Equal(time.UnixMilli(1700000000000)) {
		t.Errorf("Timestamp = %v, want envelope time", data.Timestamp)
	}
}

func TestGetterRejectsWrongType(t *testing.T) {
	msg, _ := NewMessage(TypePing, nil)

	if _, err := msg.GetLandmarksData(); !errors.Is(err, ErrUnexpectedType) {
		t.Errorf("GetLandmarksData() error = %v, want ErrUnexpectedType", err)
	}
	if _, err := msg.GetNarrationData(); !errors.Is(err, ErrUnexpectedType) {
		t.Errorf("GetNarrationData() error = %v, want ErrUnexpectedType", err)
	}
}

func TestParseMessageErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"invalid json", `{not json`},
		{"missing type", `{"ts":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseMessage([]byte(tt.raw)); err == nil {
				t.Error("ParseMessage() expected error")
			}
		})
	}
}

func TestStateMessageCarriesSnapshot(t *testing.T) {
	snap := map[string]any{"tick": 3, "energies": []float64{0.1, 0.2}}
	msg, err := NewStateMessage(snap)
	if err != nil {
		t.Fatalf("NewStateMessage() error = %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(msg.Data, &got); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
	if got["tick"].(float64) != 3 {
		t.Errorf("tick = %v, want 3", got["tick"])
	}
}

func TestErrorMessage(t *testing.T) {
	msg, err := NewErrorMessage("bad_frame", "missing hands")
	if err != nil {
		t.Fatalf("NewErrorMessage() error = %v", err)
	}
	data, err := msg.GetErrorData()
	if err != nil {
		t.Fatalf("GetErrorData() error = %v", err)
	}
	if data.Code != "bad_frame" || data.Message != "missing hands" {
		t.Errorf("unexpected error data: %+v", data)
	}
}

func TestPingPongMessage(t *testing.T) {
	pingMsg, err := NewPingMessage("test-123")
	if err != nil {
		t.Fatalf("NewPingMessage() error = %v", err)
	}

	pingData, err := pingMsg.GetPingData()
	if err != nil {
		t.Fatalf("GetPingData() error = %v", err)
	}
	if pingData.ID != "test-123" {
		t.Errorf("ID = %v, want test-123", pingData.ID)
	}

	now := time.Now().UnixMilli()
	pongMsg, err := NewPongMessage("test-123", pingData.Timestamp, now)
	if err != nil {
		t.Fatalf("NewPongMessage() error = %v", err)
	}
	if pongMsg.Type != TypePong {
		t.Errorf("Type = %v, want %v", pongMsg.Type, TypePong)
	}

	pongData, err := pongMsg.GetPongData()
	if err != nil {
		t.Fatalf("GetPongData() error = %v", err)
	}
	if pongData.LatencyMs < 0 {
		t.Errorf("LatencyMs = %v, should be >= 0", pongData.LatencyMs)
	}
}
