package web

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-chakraflow/pkg/chakra"
	"github.com/teslashibe/go-chakraflow/pkg/engine"
	"github.com/teslashibe/go-chakraflow/pkg/meditation"
	"github.com/teslashibe/go-chakraflow/pkg/narration"
	"github.com/teslashibe/go-chakraflow/pkg/protocol"
	"github.com/teslashibe/go-chakraflow/pkg/session"
)

var t0 = time.Date(2026, 4, 12, 6, 30, 0, 0, time.UTC)

type fakeLive struct {
	snap engine.Snapshot
	sum  *session.Summary
}

func (f *fakeLive) Latest() engine.Snapshot { return f.snap }
func (f *fakeLive) Summary(time.Time) *session.Summary { return f.sum }

func newFakeLive() *fakeLive {
	return &fakeLive{
		snap: engine.Snapshot{
			SessionID: "live-1",
			Tick:      42,
			Energies:  []float64{1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1},
			Region:    chakra.Root,
			Dominant:  "Root",
		},
		sum: &session.Summary{
			ID:        "live-1",
			Start:     t0,
			Duration:  4.2,
			Strongest: "Root",
			Weakest:   "Sacral",
		},
	}
}

func newTestServer(t *testing.T, store session.Store) (*Server, *fakeLive) {
	t.Helper()
	live := newFakeLive()
	s := NewServer(live, Options{Store: store, Config: engine.DefaultConfig()})
	s.now = func() time.Time { return t0 }
	return s, live
}

func get(t *testing.T, s *Server, method, path string, out any) int {
	t.Helper()
	resp, err := s.App().Test(httptest.NewRequest(method, path, nil))
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		if err := json.Unmarshal(body, out); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, body, err)
		}
	}
	return resp.StatusCode
}

func TestStateAndSummaryEndpoints(t *testing.T) {
	s, _ := newTestServer(t, nil)

	var snap engine.Snapshot
	if code := get(t, s, http.MethodGet, "/api/state", &snap); code != http.StatusOK {
		t.Fatalf("/api/state status = %d", code)
	}
	if snap.SessionID != "live-1" || snap.Tick != 42 || snap.Dominant != "Root" {
		t.Errorf("state = %+v", snap)
	}

	var sum session.Summary
	if code := get(t, s, http.MethodGet, "/api/summary", &sum); code != http.StatusOK {
		t.Fatalf("/api/summary status = %d", code)
	}
	if sum.Strongest != "Root" || sum.Weakest != "Sacral" {
		t.Errorf("summary = %+v", sum)
	}

	var cfg engine.Config
	if code := get(t, s, http.MethodGet, "/api/config", &cfg); code != http.StatusOK {
		t.Fatalf("/api/config status = %d", code)
	}
	if cfg.TickRate != engine.DefaultConfig().TickRate {
		t.Errorf("config tick rate = %v", cfg.TickRate)
	}
}

func TestChakraTable(t *testing.T) {
	s, _ := newTestServer(t, nil)

	var table []ChakraInfo
	if code := get(t, s, http.MethodGet, "/api/chakras", &table); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if len(table) != chakra.Count {
		t.Fatalf("got %d regions, want %d", len(table), chakra.Count)
	}
	tests := []struct {
		index int
		name  string
		color string
	}{
		{0, "Root", "#ff0000"},
		{3, "Heart", "#00ff00"},
		{6, "Crown", "#ffffff"},
	}
	for _, tt := range tests {
		got := table[tt.index]
		if got.Name != tt.name || got.Color != tt.color {
			t.Errorf("region %d = %s %s, want %s %s", tt.index, got.Name, got.Color, tt.name, tt.color)
		}
		if got.Scripture.ID == "" {
			t.Errorf("region %d has no scripture", tt.index)
		}
	}
}

func TestSessionEndpoints(t *testing.T) {
	store, err := session.NewJSONStore(filepath.Join(t.TempDir(), "sessions.jsonl"))
	if err != nil {
		t.Fatalf("NewJSONStore() error = %v", err)
	}
	ctx := context.Background()
	for i, id := range []string{"older", "newer"} {
		sum := &session.Summary{ID: id, Start: t0.Add(time.Duration(i) * time.Hour)}
		if err := store.Save(ctx, sum); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}
	s, _ := newTestServer(t, store)

	var list []session.Summary
	if code := get(t, s, http.MethodGet, "/api/sessions", &list); code != http.StatusOK {
		t.Fatalf("list status = %d", code)
	}
	if len(list) != 2 || list[0].ID != "newer" {
		t.Errorf("list = %+v, want newer first", list)
	}

	var one session.Summary
	if code := get(t, s, http.MethodGet, "/api/sessions/older", &one); code != http.StatusOK || one.ID != "older" {
		t.Errorf("get older = %d %+v", code, one)
	}
	if code := get(t, s, http.MethodGet, "/api/sessions/missing", nil); code != http.StatusNotFound {
		t.Errorf("get missing status = %d, want 404", code)
	}
	if code := get(t, s, http.MethodDelete, "/api/sessions/older", nil); code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", code)
	}
	if code := get(t, s, http.MethodDelete, "/api/sessions/older", nil); code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", code)
	}
}

func TestSessionsWithoutStore(t *testing.T) {
	s, _ := newTestServer(t, nil)

	var list []session.Summary
	if code := get(t, s, http.MethodGet, "/api/sessions", &list); code != http.StatusOK || len(list) != 0 {
		t.Errorf("list = %d %v, want empty", code, list)
	}
	if code := get(t, s, http.MethodGet, "/api/sessions/x", nil); code != http.StatusNotFound {
		t.Errorf("get status = %d, want 404", code)
	}
}

func TestWebsocketRequiresUpgrade(t *testing.T) {
	s, _ := newTestServer(t, nil)
	if code := get(t, s, http.MethodGet, "/ws/state", nil); code != http.StatusUpgradeRequired {
		t.Errorf("plain GET /ws/state = %d, want 426", code)
	}
}

func TestPublishRecordsEvents(t *testing.T) {
	s, _ := newTestServer(t, nil)

	base := engine.Snapshot{Meditation: meditation.State{Stage: meditation.Dharana}}
	s.Publish(base)

	next := base
	next.NarrationChanged = true
	next.Narration = narration.Narration{Text: "Ground yourself.", Region: chakra.Root, Source: narration.SourceFallback, Seq: 1}
	next.Alignment.Started = true
	next.YogaMode = true
	next.Meditation.Stage = meditation.Dhyana
	s.Publish(next)

	// Unchanged narration is not repeated.
	quiet := next
	quiet.NarrationChanged = false
	quiet.Alignment.Started = false
	s.Publish(quiet)

	var events []Event
	if code := get(t, s, http.MethodGet, "/api/events", &events); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	want := []string{"narration", "alignment", "mode", "stage"}
	if len(events) != len(want) {
		t.Fatalf("events = %+v, want types %v", events, want)
	}
	for i, typ := range want {
		if events[i].Type != typ {
			t.Errorf("event %d type = %s, want %s", i, events[i].Type, typ)
		}
		if events[i].Time != "06:30:00" {
			t.Errorf("event %d time = %s", i, events[i].Time)
		}
	}
	if events[0].Message != "Ground yourself." {
		t.Errorf("narration event = %q", events[0].Message)
	}
}

func TestEventBufferBounded(t *testing.T) {
	s, _ := newTestServer(t, nil)
	for i := 0; i < maxEvents+20; i++ {
		s.AddEvent("narration", "x")
	}
	if n := len(s.Events()); n != maxEvents {
		t.Errorf("kept %d events, want %d", n, maxEvents)
	}
}

func TestStateWebsocketSendsRetainedSnapshot(t *testing.T) {
	s, _ := newTestServer(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go s.Serve(ctx, ln)
	t.Cleanup(func() { s.Shutdown() })

	s.Publish(engine.Snapshot{SessionID: "live-1", Tick: 7, Dominant: "Heart"})

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/ws/state", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		t.Fatalf("ParseMessage() error = %v", err)
	}
	if msg.Type != protocol.TypeState {
		t.Fatalf("type = %s, want %s", msg.Type, protocol.TypeState)
	}
	var snap engine.Snapshot
	if err := msg.ParseData(&snap); err != nil {
		t.Fatalf("ParseData() error = %v", err)
	}
	if snap.Tick != 7 || snap.Dominant != "Heart" {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestLiveSessionSummarizes(t *testing.T) {
	e, err := engine.New(engine.DefaultConfig(), nil, nil)
	if err != nil {
		t.Fatalf("engine.New() error = %v", err)
	}
	sess := e.NewSession(t0)
	defer sess.Close()

	live := LiveSession{Engine: e, Session: sess}
	if got := live.Latest().SessionID; got != sess.ID() {
		t.Errorf("Latest().SessionID = %q, want %q", got, sess.ID())
	}
	sum := live.Summary(t0.Add(3 * time.Second))
	if sum.ID != sess.ID() || sum.Duration != 3 {
		t.Errorf("summary = %+v", sum)
	}
}
