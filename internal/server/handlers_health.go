package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":            "healthy",
		"active_sessions":   s.store.Count(),
		"connected_clients": s.hub.Count(),
		"uptime_seconds":    s.clock.Since(s.startTime).Seconds(),
	})
}
