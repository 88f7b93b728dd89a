package hub

import (
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-chakraflow/pkg/protocol"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10

	// Dashboards only send protocol pings.
	maxMessageSize = 4 << 10

	// Per-client queue. At a 30 Hz tick this is about 8 s of snapshots.
	sendBuffer = 256
)

// Client is one dashboard websocket. Only the hub sends on and closes send;
// the read loop queues pong replies on pong, which is never closed.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan Message
	pong chan Message
}

// NewClient registers conn with h. On a stopped hub the client starts closed.
func NewClient(h *Hub, conn *websocket.Conn) *Client {
	c := &Client{
		hub:  h,
		conn: conn,
		send: make(chan Message, sendBuffer),
		pong: make(chan Message, 1),
	}
	h.join(c)
	return c
}

// Run pumps messages until the connection closes. It blocks, so call it from
// the websocket handler.
func (c *Client) Run() {
	go c.writeLoop()
	c.readLoop()
}

func (c *Client) readLoop() {
	defer func() {
		c.hub.leave(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	extend := func() { c.conn.SetReadDeadline(time.Now().Add(pongWait)) }
	extend()
	c.conn.SetPongHandler(func(string) error {
		extend()
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		extend()
		if reply, ok := pong(data); ok {
			c.queuePong(reply)
		}
	}
}

// queuePong hands a reply to the write loop, dropping it if one is pending.
func (c *Client) queuePong(m Message) {
	select {
	case c.pong <- m:
	default:
	}
}

// pong answers a protocol ping with the client's timestamp echoed back.
func pong(data []byte) (Message, bool) {
	msg, err := protocol.ParseMessage(data)
	if err != nil || msg.Type != protocol.TypePing {
		return Message{}, false
	}
	ping, err := msg.GetPingData()
	if err != nil {
		return Message{}, false
	}
	reply, err := protocol.NewPongMessage(ping.ID, ping.Timestamp, time.Now().UnixMilli())
	if err != nil {
		return Message{}, false
	}
	m, err := FromProtocol(reply)
	return m, err == nil
}

// writeLoop is the only writer on the connection.
func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case m, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, m.Data); err != nil {
				return
			}
		case m := <-c.pong:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, m.Data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
