package hub

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/teslashibe/go-chakraflow/pkg/protocol"
)

// Policy decides what happens when a client's queue is full.
type Policy int

const (
	// DropClient disconnects a client that cannot keep up. Used for streams
	// where every message matters, such as the event log.
	DropClient Policy = iota

	// KeepLatest discards the client's oldest queued message instead. Used for
	// state snapshots, where only the newest one matters.
	KeepLatest
)

// Hub owns a set of clients and broadcasts to them.
type Hub struct {
	name   string
	policy Policy
	logger *slog.Logger

	clients    map[*Client]struct{}
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{} // closed when Run returns

	mu       sync.Mutex
	retained *Message

	count     atomic.Int64
	running   atomic.Bool
	dropped   atomic.Uint64
	conflated atomic.Uint64
}

// New creates a hub. Call Run before registering clients.
func New(name string, policy Policy, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		name:       name,
		policy:     policy,
		logger:     logger.With("component", "hub", "hub", name),
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run serves register, unregister and broadcast until ctx is done, then
// closes every client queue. A hub runs once.
func (h *Hub) Run(ctx context.Context) {
	h.running.Store(true)
	defer func() {
		h.running.Store(false)
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.remove(c)
			}
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.count.Store(int64(len(h.clients)))
			h.mu.Lock()
			if h.retained != nil {
				c.send <- *h.retained
			}
			h.mu.Unlock()
			h.logger.Info("client connected", "clients", len(h.clients))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.remove(c)
				h.logger.Info("client disconnected", "clients", len(h.clients))
			}

		case m := <-h.broadcast:
			for c := range h.clients {
				h.deliver(c, m)
			}
		}
	}
}

func (h *Hub) remove(c *Client) {
	delete(h.clients, c)
	close(c.send)
	h.count.Store(int64(len(h.clients)))
}

// join registers c, or closes its queue if the hub has stopped.
func (h *Hub) join(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		close(c.send)
	}
}

// leave unregisters c. It returns immediately once the hub has stopped.
func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// deliver queues m for c, applying the hub policy when the queue is full.
func (h *Hub) deliver(c *Client, m Message) {
	select {
	case c.send <- m:
		return
	default:
	}

	if h.policy == KeepLatest {
		select {
		case <-c.send:
		default:
		}
		select {
		case c.send <- m:
			h.conflated.Add(1)
			return
		default:
		}
	}
	h.remove(c)
	h.logger.Warn("dropped slow client", "clients", len(h.clients))
}

// Broadcast queues msg for every client. It never blocks; when the hub
// falls behind, messages are dropped and counted.
func (h *Hub) Broadcast(msg Message) {
	select {
	case h.broadcast <- msg:
	default:
		if h.dropped.Add(1)%100 == 1 {
			h.logger.Warn("broadcast queue full", "dropped", h.dropped.Load())
		}
	}
}

// BroadcastJSON encodes v and broadcasts it.
func (h *Hub) BroadcastJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.Broadcast(NewJSONMessage(data))
	return nil
}

// BroadcastProtocol encodes and broadcasts a protocol envelope.
func (h *Hub) BroadcastProtocol(msg *protocol.Message) error {
	m, err := FromProtocol(msg)
	if err != nil {
		return err
	}
	h.Broadcast(m)
	return nil
}

// Retain broadcasts msg and sends it to every client that joins later.
func (h *Hub) Retain(msg Message) {
	h.mu.Lock()
	h.retained = &msg
	h.mu.Unlock()
	h.Broadcast(msg)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// IsRunning reports whether Run is active.
func (h *Hub) IsRunning() bool {
	return h.running.Load()
}

// Stats returns broadcasts dropped on a full hub queue and messages
// replaced under KeepLatest.
func (h *Hub) Stats() (dropped, conflated uint64) {
	return h.dropped.Load(), h.conflated.Load()
}
