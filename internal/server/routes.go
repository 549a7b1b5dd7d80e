package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Session API
	s.echo.GET("/api/sessions", s.handleListSessions)
	s.echo.POST("/api/sessions", s.handleCreateSession)
	s.echo.GET("/api/sessions/:id", s.handleGetSession)
	s.echo.PUT("/api/sessions/:id", s.handleUpdateSession)
	s.echo.DELETE("/api/sessions/:id", s.handleDeleteSession)
	s.echo.POST("/api/sessions/:id/heartbeat", s.handleHeartbeat)
	s.echo.POST("/api/sessions/:id/join", s.handleJoinSession)
	s.echo.POST("/api/sessions/:id/leave", s.handleLeaveSession)

	// Track availability
	s.echo.GET("/api/tracks", s.handleListTracks)
	s.echo.GET("/api/tracks/:map_id/:track_id", s.handleGetTrack)
	s.echo.POST("/api/tracks/check", s.handleCheckTrack)

	// Real-time session updates
	s.echo.GET("/ws", s.handleWebSocket)
}
