package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-chakraflow/pkg/debug"
	"github.com/teslashibe/go-chakraflow/pkg/protocol"
)

// Client connects to a landmark producer's websocket (for example a
// MediaPipe sidecar) and feeds every landmarks message into a Mailbox.
type Client struct {
	URL        string
	Header     http.Header
	RetryDelay time.Duration
	Logger     *slog.Logger

	mailbox *Mailbox
	now     func() time.Time
}

// NewClient creates a client that fills mb.
func NewClient(url string, mb *Mailbox, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		URL:        url,
		RetryDelay: 2 * time.Second,
		Logger:     logger.With("component", "landmark-client"),
		mailbox:    mb,
		now:        time.Now,
	}
}

// Run connects and reads until ctx is done, reconnecting after failures.
func (c *Client) Run(ctx context.Context) error {
	for {
		err := c.Connect(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.Logger.Warn("landmark stream lost, reconnecting", "url", c.URL, "error", err, "retry_in", c.RetryDelay)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.RetryDelay):
		}
	}
}

// Connect runs a single connection until it fails or ctx is done.
func (c *Client) Connect(ctx context.Context) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	ws, _, err := dialer.DialContext(ctx, c.URL, c.Header)
	if err != nil {
		return fmt.Errorf("failed to connect to landmark source: %w", err)
	}
	defer ws.Close()

	c.Logger.Info("landmark stream connected", "url", c.URL)

	// Unblock ReadMessage when the caller cancels.
	stop := context.AfterFunc(ctx, func() {
		ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		ws.Close()
	})
	defer stop()

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return errors.New("landmark source closed the stream")
			}
			return fmt.Errorf("read landmark message: %w", err)
		}
		if reply := c.handle(data); reply != nil {
			if b, err := reply.Bytes(); err == nil {
				ws.WriteMessage(websocket.TextMessage, b)
			}
		}
	}
}

// handle processes one inbound message and returns an optional reply.
func (c *Client) handle(data []byte) *protocol.Message {
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		c.Logger.Warn("malformed landmark message", "error", err)
		return nil
	}

	switch msg.Type {
	case protocol.TypeLandmarks:
		lm, err := msg.GetLandmarksData()
		if err != nil {
			c.Logger.Warn("bad landmarks payload", "error", err)
			return nil
		}
		debug.LandmarkLog(c.Logger, "frame", "id", lm.FrameID, "hands", len(lm.Hands), "face", lm.HasFace())
		c.mailbox.Put(lm.Frame, c.now())
	case protocol.TypePing:
		ping, err := msg.GetPingData()
		if err != nil {
			return nil
		}
		pong, _ := protocol.NewPongMessage(ping.ID, ping.Timestamp, c.now().UnixMilli())
		return pong
	}
	return nil
}
