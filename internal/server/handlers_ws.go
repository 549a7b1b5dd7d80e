package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // session browsers connect from arbitrary origins
	},
}

// inboundMessage is the only client-to-server shape the real-time channel
// understands. Everything except pings is ignored.
type inboundMessage struct {
	Type string `json:"type"`
}

func (s *Server) handleWebSocket(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade WebSocket: %w", err)
	}

	if err := s.hub.Register(conn); err != nil {
		slog.Warn("Failed to register subscriber", "error", err)
		return nil
	}

	// Read pump: blocks until the connection closes. A read failure is the
	// explicit removal transition for this subscriber.
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		if msg.Type == "ping" {
			s.hub.SendPong(conn)
		}
	}

	s.hub.Unregister(conn)

	return nil
}
