package web

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-chakraflow/pkg/chakra"
	"github.com/teslashibe/go-chakraflow/pkg/hub"
	"github.com/teslashibe/go-chakraflow/pkg/session"
)

// ChakraInfo describes one region for the dashboard legend
type ChakraInfo struct {
	Index     int          `json:"index"`
	Name      string       `json:"name"`
	Color     string       `json:"color"`
	Scripture chakra.Entry `json:"scripture"`
}

func chakraTable() []ChakraInfo {
	out := make([]ChakraInfo, 0, chakra.Count)
	for _, r := range chakra.All() {
		c := r.Color()
		out = append(out, ChakraInfo{
			Index:     int(r),
			Name:      r.String(),
			Color:     hexColor(c.R, c.G, c.B),
			Scripture: chakra.Scripture(r),
		})
	}
	return out
}

func hexColor(r, g, b uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// handleHealth reports liveness and hub status
func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":        "ok",
		"state_clients": s.stateHub.ClientCount(),
		"hub_running":   s.stateHub.IsRunning(),
	})
}

// handleState returns the latest snapshot
func (s *Server) handleState(c *fiber.Ctx) error {
	return c.JSON(s.live.Latest())
}

// handleSummary returns the running session's summary so far
func (s *Server) handleSummary(c *fiber.Ctx) error {
	return c.JSON(s.live.Summary(s.now()))
}

// handleConfig returns the engine configuration
func (s *Server) handleConfig(c *fiber.Ctx) error {
	return c.JSON(s.cfg)
}

// handleChakras returns the region table
func (s *Server) handleChakras(c *fiber.Ctx) error {
	return c.JSON(chakraTable())
}

// handleEvents returns recent events
func (s *Server) handleEvents(c *fiber.Ctx) error {
	return c.JSON(s.Events())
}

// handleListSessions returns stored summaries, newest first
func (s *Server) handleListSessions(c *fiber.Ctx) error {
	if s.store == nil {
		return c.JSON([]*session.Summary{})
	}
	list, err := s.store.List(c.UserContext())
	if err != nil {
		s.logger.Warn("list sessions", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if list == nil {
		list = []*session.Summary{}
	}
	return c.JSON(list)
}

// handleGetSession returns one stored summary
func (s *Server) handleGetSession(c *fiber.Ctx) error {
	if s.store == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no session store"})
	}
	sum, err := s.store.Get(c.UserContext(), c.Params("id"))
	if errors.Is(err, session.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		s.logger.Warn("get session", "id", c.Params("id"), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(sum)
}

// handleDeleteSession removes one stored summary
func (s *Server) handleDeleteSession(c *fiber.Ctx) error {
	if s.store == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no session store"})
	}
	err := s.store.Delete(c.UserContext(), c.Params("id"))
	if errors.Is(err, session.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		s.logger.Warn("delete session", "id", c.Params("id"), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// handleStateWS streams snapshots; the hub sends the retained one first
func (s *Server) handleStateWS(c *websocket.Conn) {
	hub.NewClient(s.stateHub, c).Run()
}

// handleEventsWS replays recent events, then streams new ones
func (s *Server) handleEventsWS(c *websocket.Conn) {
	c.SetWriteDeadline(time.Now().Add(5 * time.Second))
	for _, entry := range s.Events() {
		if err := c.WriteJSON(entry); err != nil {
			c.Close()
			return
		}
	}
	c.SetWriteDeadline(time.Time{})
	hub.NewClient(s.eventHub, c).Run()
}
