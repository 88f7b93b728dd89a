// Package web provides the chakraflow dashboard: live session state over
// websocket and a small REST API for state, summaries and stored sessions.
package web

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-chakraflow/pkg/engine"
	"github.com/teslashibe/go-chakraflow/pkg/hub"
	"github.com/teslashibe/go-chakraflow/pkg/protocol"
	"github.com/teslashibe/go-chakraflow/pkg/session"
)

const maxEvents = 500

// Live exposes the running session to the dashboard.
type Live interface {
	Latest() engine.Snapshot
	Summary(now time.Time) *session.Summary
}

// LiveSession binds an engine and one of its sessions to Live.
type LiveSession struct {
	Engine  *engine.Engine
	Session *engine.Session
}

// Latest returns the session's most recent snapshot.
func (l LiveSession) Latest() engine.Snapshot {
	return l.Session.Latest()
}

// Summary summarizes the session up to now.
func (l LiveSession) Summary(now time.Time) *session.Summary {
	return l.Engine.Summarize(l.Session, now)
}

// Event is a dashboard log line
type Event struct {
	Time    string `json:"time"`
	Type    string `json:"type"` // narration, alignment, awakening, mode, stage
	Message string `json:"message"`
}

// Options configures a Server.
type Options struct {
	Addr string

	// Static is a directory served at "/". Empty disables it.
	Static string

	// Store lists persisted sessions. May be nil.
	Store session.Store

	// Config is reported at /api/config.
	Config engine.Config

	Logger *slog.Logger
}

// Server is the web dashboard server
type Server struct {
	app    *fiber.App
	addr   string
	logger *slog.Logger
	live   Live
	store  session.Store
	cfg    engine.Config

	events   []Event
	eventsMu sync.RWMutex

	// Hubs for websocket broadcast
	stateHub *hub.Hub
	eventHub *hub.Hub

	prevMu sync.Mutex
	prev   *engine.Snapshot

	now func() time.Time
}

// NewServer creates a dashboard server for live.
func NewServer(live Live, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		addr:     opts.Addr,
		logger:   logger.With("component", "web"),
		live:     live,
		store:    opts.Store,
		cfg:      opts.Config,
		events:   make([]Event, 0, maxEvents),
		stateHub: hub.New("state", hub.KeepLatest, logger),
		eventHub: hub.New("events", hub.DropClient, logger),
		now:      time.Now,
	}

	app := fiber.New(fiber.Config{
		AppName:               "Chakraflow",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	// CORS for local development
	app.Use(cors.New())

	if opts.Static != "" {
		app.Static("/", opts.Static)
	}

	api := app.Group("/api")
	api.Get("/health", s.handleHealth)
	api.Get("/state", s.handleState)
	api.Get("/summary", s.handleSummary)
	api.Get("/config", s.handleConfig)
	api.Get("/chakras", s.handleChakras)
	api.Get("/events", s.handleEvents)
	api.Get("/sessions", s.handleListSessions)
	api.Get("/sessions/:id", s.handleGetSession)
	api.Delete("/sessions/:id", s.handleDeleteSession)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/state", websocket.New(s.handleStateWS))
	app.Get("/ws/events", websocket.New(s.handleEventsWS))

	s.app = app
	return s
}

// App returns the underlying Fiber app so other packages can add routes.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start runs the hubs and listens on the configured address until ctx is
// done or the server is shut down.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go s.stateHub.Run(ctx)
	go s.eventHub.Run(ctx)

	s.logger.Info("dashboard listening", "addr", ln.Addr().String())
	return s.app.Listener(ln)
}

// StartAsync starts the web server in a goroutine
func (s *Server) StartAsync(ctx context.Context) {
	go func() {
		if err := s.Start(ctx); err != nil {
			s.logger.Error("web server stopped", "error", err)
		}
	}()
}

// Publish broadcasts a snapshot to state clients. It implements engine.Sink.
func (s *Server) Publish(snap engine.Snapshot) {
	msg, err := protocol.NewStateMessage(snap)
	if err != nil {
		s.logger.Warn("encode state", "error", err)
		return
	}
	m, err := hub.FromProtocol(msg)
	if err != nil {
		s.logger.Warn("encode state", "error", err)
		return
	}
	s.stateHub.Retain(m)

	if snap.NarrationChanged && snap.Narration.Text != "" {
		n := snap.Narration
		nm, err := protocol.NewNarrationMessage(n.Text, n.Region.String(), string(n.Source), n.Seq)
		if err == nil {
			err = s.stateHub.BroadcastProtocol(nm)
		}
		if err != nil {
			s.logger.Warn("encode narration", "error", err)
		}
		s.AddEvent("narration", n.Text)
	}

	s.prevMu.Lock()
	prev := s.prev
	s.prev = &snap
	s.prevMu.Unlock()
	s.recordTransitions(prev, snap)
}

func (s *Server) recordTransitions(prev *engine.Snapshot, snap engine.Snapshot) {
	if snap.Alignment.Started {
		s.AddEvent("alignment", "alignment started")
	}
	if snap.Alignment.Ended {
		s.AddEvent("alignment", "alignment finished")
	}
	if snap.Awakening.Started {
		s.AddEvent("awakening", "awakening sequence started")
	}
	if snap.Awakening.Ended {
		s.AddEvent("awakening", "awakening sequence complete")
	}
	if prev == nil {
		return
	}
	if prev.YogaMode != snap.YogaMode {
		if snap.YogaMode {
			s.AddEvent("mode", "yoga mode")
		} else {
			s.AddEvent("mode", "chakra mode")
		}
	}
	if prev.Meditation.Stage != snap.Meditation.Stage {
		s.AddEvent("stage", "meditation stage: "+string(snap.Meditation.Stage))
	}
}

// AddEvent records an event and broadcasts it to event clients
func (s *Server) AddEvent(kind, message string) {
	entry := Event{
		Time:    s.now().Format("15:04:05"),
		Type:    kind,
		Message: message,
	}

	s.eventsMu.Lock()
	s.events = append(s.events, entry)
	if len(s.events) > maxEvents {
		s.events = s.events[1:]
	}
	s.eventsMu.Unlock()

	if err := s.eventHub.BroadcastJSON(entry); err != nil {
		s.logger.Warn("encode event", "error", err)
	}
}

// Events returns a copy of the recorded events, oldest first.
func (s *Server) Events() []Event {
	s.eventsMu.RLock()
	defer s.eventsMu.RUnlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// StateHub returns the live state hub
func (s *Server) StateHub() *hub.Hub {
	return s.stateHub
}

// Shutdown gracefully stops the web server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
