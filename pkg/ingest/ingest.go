// Package ingest accepts landmark frames from producers (a browser running
// MediaPipe, or a sidecar process) over websocket.
package ingest

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/teslashibe/go-chakraflow/pkg/debug"
	"github.com/teslashibe/go-chakraflow/pkg/landmark"
	"github.com/teslashibe/go-chakraflow/pkg/protocol"
)

// maxFrameSize bounds one inbound message; a full face mesh with two hands
// and a body pose is well under this.
const maxFrameSize = 1 << 20

// Producer represents a connected landmark producer
type Producer struct {
	ID        string
	Conn      *websocket.Conn
	Connected time.Time
	LastSeen  time.Time
	Frames    uint64

	mu sync.Mutex
}

// Send sends a message to the producer
func (p *Producer) Send(msg *protocol.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	data, err := msg.Bytes()
	if err != nil {
		return err
	}
	return p.Conn.WriteMessage(websocket.TextMessage, data)
}

// Server manages producer connections
type Server struct {
	mu        sync.RWMutex
	producers map[*Producer]struct{} // keyed by connection; ids may repeat
	logger    *slog.Logger

	onFrame func(producerID string, frame landmark.Frame)
	now     func() time.Time

	// Stats
	messagesReceived atomic.Uint64
	framesReceived   atomic.Uint64
	rejected         atomic.Uint64
}

// New creates an ingest server. onFrame receives every accepted frame and
// must not block; a source.Mailbox Put is the usual target.
func New(onFrame func(producerID string, frame landmark.Frame), logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		producers: make(map[*Producer]struct{}),
		logger:    logger.With("component", "ingest"),
		onFrame:   onFrame,
		now:       time.Now,
	}
}

// RegisterRoutes registers the producer websocket on a Fiber app
func (s *Server) RegisterRoutes(app *fiber.App) {
	app.Use("/ws/landmarks", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	cfg := websocket.Config{ReadBufferSize: 64 * 1024}
	app.Get("/ws/landmarks", websocket.New(s.handleProducer, cfg))
	app.Get("/ws/landmarks/:id", websocket.New(s.handleProducer, cfg))
}

// handleProducer handles a producer WebSocket connection
func (s *Server) handleProducer(c *websocket.Conn) {
	id := c.Params("id")
	if id == "" {
		id = uuid.New().String()
	}

	now := s.now()
	p := &Producer{
		ID:        id,
		Conn:      c,
		Connected: now,
		LastSeen:  now,
	}

	s.mu.Lock()
	s.producers[p] = struct{}{}
	count := len(s.producers)
	s.mu.Unlock()
	s.logger.Info("producer connected", "producer", id, "total", count)

	defer func() {
		s.mu.Lock()
		delete(s.producers, p)
		count := len(s.producers)
		s.mu.Unlock()
		s.logger.Info("producer disconnected", "producer", id, "total", count)
	}()

	c.SetReadLimit(maxFrameSize)
	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("producer read error", "producer", id, "error", err)
			}
			return
		}

		p.mu.Lock()
		p.LastSeen = s.now()
		p.mu.Unlock()

		s.messagesReceived.Add(1)
		s.handleMessage(p, data)
	}
}

// handleMessage processes an incoming message from a producer
func (s *Server) handleMessage(p *Producer, data []byte) {
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		s.reject(p, "parse_error", err)
		return
	}

	switch msg.Type {
	case protocol.TypeLandmarks:
		lm, err := msg.GetLandmarksData()
		if err != nil {
			s.reject(p, "bad_landmarks", err)
			return
		}
		s.framesReceived.Add(1)
		p.mu.Lock()
		p.Frames++
		p.mu.Unlock()
		debug.LandmarkLog(s.logger, "frame", "producer", p.ID, "id", lm.FrameID, "hands", len(lm.Hands))
		if s.onFrame != nil {
			s.onFrame(p.ID, lm.Frame)
		}

	case protocol.TypePing:
		ping, err := msg.GetPingData()
		if err != nil {
			s.reject(p, "bad_ping", err)
			return
		}
		pong, err := protocol.NewPongMessage(ping.ID, ping.Timestamp, s.now().UnixMilli())
		if err == nil {
			p.Send(pong)
		}

	default:
		s.rejected.Add(1)
		s.logger.Debug("ignoring message", "producer", p.ID, "type", msg.Type)
	}
}

func (s *Server) reject(p *Producer, code string, err error) {
	s.rejected.Add(1)
	s.logger.Warn("rejected producer message", "producer", p.ID, "code", code, "error", err)
	if reply, mErr := protocol.NewErrorMessage(code, err.Error()); mErr == nil {
		p.Send(reply)
	}
}

// ProducerCount returns the number of connected producers
func (s *Server) ProducerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.producers)
}

// Stats contains ingest statistics
type Stats struct {
	ProducerCount    int    `json:"producer_count"`
	MessagesReceived uint64 `json:"messages_received"`
	FramesReceived   uint64 `json:"frames_received"`
	Rejected         uint64 `json:"rejected"`
}

// GetStats returns ingest statistics
func (s *Server) GetStats() Stats {
	return Stats{
		ProducerCount:    s.ProducerCount(),
		MessagesReceived: s.messagesReceived.Load(),
		FramesReceived:   s.framesReceived.Load(),
		Rejected:         s.rejected.Load(),
	}
}

// ProducerInfo contains info about a connected producer
type ProducerInfo struct {
	ID        string    `json:"id"`
	Connected time.Time `json:"connected"`
	LastSeen  time.Time `json:"last_seen"`
	Frames    uint64    `json:"frames"`
}

// GetProducerInfos returns info about all connected producers
func (s *Server) GetProducerInfos() []ProducerInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]ProducerInfo, 0, len(s.producers))
	for p := range s.producers {
		p.mu.Lock()
		infos = append(infos, ProducerInfo{
			ID:        p.ID,
			Connected: p.Connected,
			LastSeen:  p.LastSeen,
			Frames:    p.Frames,
		})
		p.mu.Unlock()
	}
	return infos
}

// RegisterAPIRoutes registers API routes for producer monitoring
func (s *Server) RegisterAPIRoutes(api fiber.Router) {
	producers := api.Group("/producers")

	producers.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"producers": s.GetProducerInfos(),
			"count":     s.ProducerCount(),
		})
	})

	producers.Get("/stats", func(c *fiber.Ctx) error {
		return c.JSON(s.GetStats())
	})
}
